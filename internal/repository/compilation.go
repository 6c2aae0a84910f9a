package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"afisha/internal/model"
)

// CompilationRepository handles persistence for curated event compilations.
type CompilationRepository struct {
	db *pgxpool.Pool
}

// NewCompilationRepository constructs a CompilationRepository.
func NewCompilationRepository(db *pgxpool.Pool) *CompilationRepository {
	return &CompilationRepository{db: db}
}

// Create inserts a compilation with its event set. Unknown event ids are
// skipped.
func (r *CompilationRepository) Create(ctx context.Context, nc model.NewCompilation) (_ *model.Compilation, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	compilation := &model.Compilation{Title: nc.Title, Pinned: nc.Pinned}
	err = tx.QueryRow(ctx,
		`INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id`,
		nc.Title, nc.Pinned,
	).Scan(&compilation.ID)
	if err != nil {
		return nil, fmt.Errorf("insert compilation: %w", err)
	}
	if err = replaceCompilationEvents(ctx, tx, compilation.ID, nc.Events); err != nil {
		return nil, err
	}
	if compilation.Events, err = compilationEvents(ctx, tx, compilation.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return compilation, nil
}

// Get returns a compilation with its events.
func (r *CompilationRepository) Get(ctx context.Context, id int64) (*model.Compilation, error) {
	var c model.Compilation
	err := r.db.QueryRow(ctx,
		`SELECT id, title, pinned FROM compilations WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Pinned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("compilation %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}
	if c.Events, err = compilationEvents(ctx, r.db, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns compilations, optionally filtered by the pinned flag.
func (r *CompilationRepository) List(ctx context.Context, pinned *bool) ([]model.Compilation, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if pinned != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, pinned FROM compilations WHERE pinned = $1 ORDER BY id`, *pinned)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, pinned FROM compilations ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()

	var compilations []model.Compilation
	for rows.Next() {
		var c model.Compilation
		if err := rows.Scan(&c.ID, &c.Title, &c.Pinned); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		compilations = append(compilations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range compilations {
		events, err := compilationEvents(ctx, r.db, compilations[i].ID)
		if err != nil {
			return nil, err
		}
		compilations[i].Events = events
	}
	return compilations, nil
}

// Update applies a partial compilation patch; a provided event set replaces
// the previous one entirely.
func (r *CompilationRepository) Update(ctx context.Context, id int64, p model.CompilationPatch) (_ *model.Compilation, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var c model.Compilation
	err = tx.QueryRow(ctx,
		`SELECT id, title, pinned FROM compilations WHERE id = $1 FOR UPDATE`, id,
	).Scan(&c.ID, &c.Title, &c.Pinned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("compilation %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("lock compilation row: %w", err)
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Pinned != nil {
		c.Pinned = *p.Pinned
	}
	_, err = tx.Exec(ctx,
		`UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1`, id, c.Title, c.Pinned)
	if err != nil {
		return nil, fmt.Errorf("update compilation: %w", err)
	}
	if p.Events != nil {
		if _, err = tx.Exec(ctx,
			`DELETE FROM compilation_events WHERE compilation_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear compilation events: %w", err)
		}
		if err = replaceCompilationEvents(ctx, tx, id, *p.Events); err != nil {
			return nil, err
		}
	}
	if c.Events, err = compilationEvents(ctx, tx, id); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &c, nil
}

// Delete removes a compilation and its event links.
func (r *CompilationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("compilation %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// replaceCompilationEvents links the existing events among ids to the
// compilation.
func replaceCompilationEvents(ctx context.Context, q querier, compilationID int64, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`INSERT INTO compilation_events (compilation_id, event_id)
		 SELECT $1, id FROM events WHERE id = ANY($2)
		 ON CONFLICT DO NOTHING`,
		compilationID, eventIDs)
	if err != nil {
		return fmt.Errorf("link compilation events: %w", err)
	}
	return nil
}

func compilationEvents(ctx context.Context, q querier, compilationID int64) ([]model.Event, error) {
	rows, err := q.Query(ctx,
		eventSelect+` WHERE e.id IN (
			SELECT event_id FROM compilation_events WHERE compilation_id = $1)
		 ORDER BY e.id`, compilationID)
	if err != nil {
		return nil, fmt.Errorf("list compilation events: %w", err)
	}
	return collectEvents(rows)
}
