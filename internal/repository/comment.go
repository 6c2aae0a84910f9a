package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"afisha/internal/model"
)

// CommentRepository handles persistence for event comments.
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment on a published event.
func (r *CommentRepository) Create(ctx context.Context, userID, eventID int64, text string) (_ *model.Comment, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = getUser(ctx, tx, userID); err != nil {
		return nil, err
	}
	var state string
	err = tx.QueryRow(ctx, `SELECT state FROM events WHERE id = $1`, eventID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %d: %w", eventID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if model.EventState(state) != model.EventPublished {
		return nil, fmt.Errorf("%w: event %d", model.ErrNotPublished, eventID)
	}

	comment := &model.Comment{
		EventID:  eventID,
		AuthorID: userID,
		Text:     text,
		Created:  model.NewDateTime(time.Now()),
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO comments (event_id, author_id, text, created)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		comment.EventID, comment.AuthorID, comment.Text, comment.Created.Time,
	).Scan(&comment.ID)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return comment, nil
}

// Update replaces a comment's text. Only the author may edit.
func (r *CommentRepository) Update(ctx context.Context, userID, commentID int64, text string) (_ *model.Comment, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	comment, err := lockComment(ctx, tx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, fmt.Errorf("%w: user %d, comment %d", model.ErrNotAuthor, userID, commentID)
	}
	edited := model.NewDateTime(time.Now())
	comment.Text = text
	comment.Edited = &edited
	_, err = tx.Exec(ctx,
		`UPDATE comments SET text = $2, edited = $3 WHERE id = $1`,
		commentID, text, edited.Time)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return comment, nil
}

// Delete removes a comment. Only the author may delete.
func (r *CommentRepository) Delete(ctx context.Context, userID, commentID int64) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	comment, err := lockComment(ctx, tx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return fmt.Errorf("%w: user %d, comment %d", model.ErrNotAuthor, userID, commentID)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByEvent returns all comments on an event, oldest first.
func (r *CommentRepository) ListByEvent(ctx context.Context, eventID int64) ([]model.Comment, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("event %d: %w", eventID, model.ErrNotFound)
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, author_id, text, created, edited
		 FROM comments
		 WHERE event_id = $1
		 ORDER BY created`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func lockComment(ctx context.Context, tx pgx.Tx, id int64) (*model.Comment, error) {
	comment, err := scanComment(tx.QueryRow(ctx,
		`SELECT id, event_id, author_id, text, created, edited
		 FROM comments
		 WHERE id = $1
		 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("comment %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("lock comment row: %w", err)
	}
	return comment, nil
}

func scanComment(row scannable) (*model.Comment, error) {
	var (
		c       model.Comment
		created time.Time
		edited  *time.Time
	)
	if err := row.Scan(&c.ID, &c.EventID, &c.AuthorID, &c.Text, &created, &edited); err != nil {
		return nil, err
	}
	c.Created = model.DateTime{Time: created}
	if edited != nil {
		e := model.DateTime{Time: *edited}
		c.Edited = &e
	}
	return &c, nil
}
