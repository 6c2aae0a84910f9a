package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"afisha/internal/model"
)

// EventRepository handles persistence for events and owns the lifecycle
// transitions: patches are validated and applied by the model inside a
// transaction holding the event row lock.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create validates references and the date guard, resolves the location, and
// inserts the event in state PENDING with zeroed counters.
func (r *EventRepository) Create(ctx context.Context, initiatorID int64, ne model.NewEvent) (_ *model.Event, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	initiator, err := getUser(ctx, tx, initiatorID)
	if err != nil {
		return nil, err
	}
	category, err := getCategory(ctx, tx, ne.CategoryID)
	if err != nil {
		return nil, err
	}
	if err = model.ValidateEventDate(ne.EventDate, time.Now()); err != nil {
		return nil, err
	}
	location, err := resolveLocation(ctx, tx, ne.Location)
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:             ne.Title,
		Annotation:        ne.Annotation,
		Description:       ne.Description,
		Category:          *category,
		Initiator:         *initiator,
		Location:          location,
		EventDate:         ne.EventDate,
		CreatedOn:         model.NewDateTime(time.Now()),
		Paid:              ne.Paid,
		ParticipantLimit:  ne.ParticipantLimit,
		RequestModeration: ne.Moderation(),
		State:             model.EventPending,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO events (title, annotation, description, category_id, location_id,
		                     initiator_id, event_date, created_on, paid, participant_limit,
		                     request_moderation, confirmed_requests, views, state)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, 0, $12)
		 RETURNING id`,
		event.Title, event.Annotation, event.Description, event.Category.ID,
		event.Location.ID, event.Initiator.ID, event.EventDate.Time,
		event.CreatedOn.Time, event.Paid, event.ParticipantLimit,
		event.RequestModeration, string(event.State),
	).Scan(&event.ID)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return event, nil
}

// GetByID returns a single event with its references resolved.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// GetForAuthor returns an event for the author-facing view. The user must
// exist; ownership is not checked on reads.
func (r *EventRepository) GetForAuthor(ctx context.Context, userID, eventID int64) (*model.Event, error) {
	if _, err := getUser(ctx, r.db, userID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, eventID)
}

// GetPublished returns a published event or ErrNotFound.
func (r *EventRepository) GetPublished(ctx context.Context, id int64) (*model.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx,
		eventSelect+` WHERE e.id = $1 AND e.state = $2`, id, string(model.EventPublished)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("published event %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("get published event: %w", err)
	}
	return event, nil
}

// ListByInitiator returns all events created by the given user.
func (r *EventRepository) ListByInitiator(ctx context.Context, userID int64) ([]model.Event, error) {
	if _, err := getUser(ctx, r.db, userID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, eventSelect+` WHERE e.initiator_id = $1 ORDER BY e.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	return collectEvents(rows)
}

// ListForAdmin returns events matching the admin filter, ordered by event
// date ascending. Absent filter fields match everything.
func (r *EventRepository) ListForAdmin(ctx context.Context, f model.AdminEventFilter) ([]model.Event, error) {
	ds := eventDataset()
	if len(f.Users) > 0 {
		ds = ds.Where(goqu.I("e.initiator_id").In(f.Users))
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		ds = ds.Where(goqu.I("e.state").In(states))
	}
	if len(f.Categories) > 0 {
		ds = ds.Where(goqu.I("e.category_id").In(f.Categories))
	}
	if f.RangeStart != nil {
		ds = ds.Where(goqu.I("e.event_date").Gt(f.RangeStart.Time))
	}
	if f.RangeEnd != nil {
		ds = ds.Where(goqu.I("e.event_date").Lt(f.RangeEnd.Time))
	}
	ds = ds.Order(goqu.I("e.event_date").Asc())

	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build admin query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events for admin: %w", err)
	}
	return collectEvents(rows)
}

// Search returns published events matching the public filter. Text matches
// case-insensitively against annotation or description; when absent it
// matches everything, and every other clause still applies.
func (r *EventRepository) Search(ctx context.Context, f model.PublicEventFilter) ([]model.Event, error) {
	ds := eventDataset().Where(goqu.I("e.state").Eq(string(model.EventPublished)))
	if f.Text != "" {
		pattern := "%" + f.Text + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("e.annotation").ILike(pattern),
			goqu.I("e.description").ILike(pattern),
		))
	}
	if len(f.Categories) > 0 {
		ds = ds.Where(goqu.I("e.category_id").In(f.Categories))
	}
	if f.Paid != nil {
		ds = ds.Where(goqu.I("e.paid").Eq(*f.Paid))
	}
	if f.RangeStart != nil {
		ds = ds.Where(goqu.I("e.event_date").Gt(f.RangeStart.Time))
	}
	if f.RangeEnd != nil {
		ds = ds.Where(goqu.I("e.event_date").Lt(f.RangeEnd.Time))
	}
	if f.OnlyAvailable {
		ds = ds.Where(goqu.Or(
			goqu.I("e.participant_limit").Eq(0),
			goqu.I("e.confirmed_requests").Lt(goqu.I("e.participant_limit")),
		))
	}
	if f.Sort == model.SortViews {
		ds = ds.Order(goqu.I("e.views").Desc())
	} else {
		ds = ds.Order(goqu.I("e.event_date").Asc())
	}

	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return collectEvents(rows)
}

// UpdateByAuthor applies an initiator patch under the event row lock. The
// whole patch commits or none of it does.
func (r *EventRepository) UpdateByAuthor(ctx context.Context, userID, eventID int64, p model.EventPatch) (_ *model.Event, err error) {
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
	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Initiator.ID != userID {
		return nil, fmt.Errorf("%w: user %d, event %d", model.ErrNotInitiator, userID, eventID)
	}
	// Checked before reference resolution so a published event reports the
	// state conflict no matter which field the patch carries.
	if event.State == model.EventPublished {
		return nil, fmt.Errorf("%w: event %d", model.ErrEditPublished, eventID)
	}
	if err = r.applyPatch(ctx, tx, event, p, false); err != nil {
		return nil, err
	}

	updated, err := scanEvent(tx.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, eventID))
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

// UpdateByAdmin applies an admin patch under the event row lock.
func (r *EventRepository) UpdateByAdmin(ctx context.Context, eventID int64, p model.EventPatch) (_ *model.Event, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if err = r.applyPatch(ctx, tx, event, p, true); err != nil {
		return nil, err
	}

	updated, err := scanEvent(tx.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, eventID))
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

// applyPatch resolves patched references, lets the model run the state
// machine, and persists the result.
func (r *EventRepository) applyPatch(ctx context.Context, tx pgx.Tx, event *model.Event, p model.EventPatch, admin bool) error {
	if p.CategoryID != nil {
		category, err := getCategory(ctx, tx, *p.CategoryID)
		if err != nil {
			return err
		}
		event.Category = *category
	}
	if p.Location != nil {
		location, err := resolveLocation(ctx, tx, *p.Location)
		if err != nil {
			return err
		}
		event.Location = location
	}
	var err error
	if admin {
		err = event.ApplyAdminPatch(p, time.Now())
	} else {
		err = event.ApplyAuthorPatch(p, time.Now())
	}
	if err != nil {
		return err
	}
	return persistEvent(ctx, tx, event)
}

// IncrementViews bumps the view counter and returns the new value.
func (r *EventRepository) IncrementViews(ctx context.Context, id int64) (int64, error) {
	var views int64
	err := r.db.QueryRow(ctx,
		`UPDATE events SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("event %d: %w", id, model.ErrNotFound)
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}
