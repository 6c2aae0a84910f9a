// Package repository implements all database access for the event platform.
// It uses pgx directly for static queries and goqu to compose the dynamic
// admin/public search filters. Every state-changing operation runs as a
// single transaction; admission paths lock the event row with
// SELECT ... FOR UPDATE so concurrent capacity checks are serialized.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"afisha/internal/model"
)

const dialect = "postgres"

// pgUniqueViolation is the postgres error code for unique constraint breaks.
const pgUniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// eventSelect joins an event with its category, initiator, and location.
// Column order must match scanEvent.
const eventSelect = `
	SELECT e.id, e.title, e.annotation, e.description,
	       e.event_date, e.created_on, e.published_on,
	       e.paid, e.participant_limit, e.request_moderation,
	       e.confirmed_requests, e.views, e.state,
	       c.id, c.name,
	       u.id, u.name, u.email,
	       l.id, l.lat, l.lon
	FROM events e
	JOIN categories c ON c.id = e.category_id
	JOIN users u ON u.id = e.initiator_id
	JOIN locations l ON l.id = e.location_id`

// eventColumns mirrors eventSelect for goqu-built queries.
func eventColumns() []any {
	return []any{
		goqu.I("e.id"), goqu.I("e.title"), goqu.I("e.annotation"), goqu.I("e.description"),
		goqu.I("e.event_date"), goqu.I("e.created_on"), goqu.I("e.published_on"),
		goqu.I("e.paid"), goqu.I("e.participant_limit"), goqu.I("e.request_moderation"),
		goqu.I("e.confirmed_requests"), goqu.I("e.views"), goqu.I("e.state"),
		goqu.I("c.id"), goqu.I("c.name"),
		goqu.I("u.id"), goqu.I("u.name"), goqu.I("u.email"),
		goqu.I("l.id"), goqu.I("l.lat"), goqu.I("l.lon"),
	}
}

// eventDataset is the joined goqu base for dynamic event queries.
func eventDataset() *goqu.SelectDataset {
	return goqu.Dialect(dialect).
		From(goqu.T("events").As("e")).
		Join(goqu.T("categories").As("c"), goqu.On(goqu.Ex{"c.id": goqu.I("e.category_id")})).
		Join(goqu.T("users").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("e.initiator_id")})).
		Join(goqu.T("locations").As("l"), goqu.On(goqu.Ex{"l.id": goqu.I("e.location_id")})).
		Select(eventColumns()...)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEvent(row scannable) (*model.Event, error) {
	var (
		e           model.Event
		eventDate   time.Time
		createdOn   time.Time
		publishedOn *time.Time
		state       string
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description,
		&eventDate, &createdOn, &publishedOn,
		&e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&e.ConfirmedRequests, &e.Views, &state,
		&e.Category.ID, &e.Category.Name,
		&e.Initiator.ID, &e.Initiator.Name, &e.Initiator.Email,
		&e.Location.ID, &e.Location.Lat, &e.Location.Lon,
	)
	if err != nil {
		return nil, err
	}
	e.EventDate = model.DateTime{Time: eventDate}
	e.CreatedOn = model.DateTime{Time: createdOn}
	if publishedOn != nil {
		on := model.DateTime{Time: *publishedOn}
		e.PublishedOn = &on
	}
	e.State = model.EventState(state)
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func getUser(ctx context.Context, q querier, id int64) (*model.User, error) {
	var u model.User
	err := q.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func getCategory(ctx context.Context, q querier, id int64) (*model.Category, error) {
	var c model.Category
	err := q.QueryRow(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// resolveLocation returns the stored location with the exact same
// coordinates, inserting it first if none exists.
func resolveLocation(ctx context.Context, q querier, loc model.Location) (model.Location, error) {
	err := q.QueryRow(ctx,
		`SELECT id FROM locations WHERE lat = $1 AND lon = $2`, loc.Lat, loc.Lon,
	).Scan(&loc.ID)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Location{}, fmt.Errorf("find location: %w", err)
	}
	err = q.QueryRow(ctx,
		`INSERT INTO locations (lat, lon) VALUES ($1, $2) RETURNING id`, loc.Lat, loc.Lon,
	).Scan(&loc.ID)
	if err != nil {
		return model.Location{}, fmt.Errorf("insert location: %w", err)
	}
	return loc, nil
}

// lockEvent reads the event row under an exclusive row lock. It deliberately
// avoids the joins so only the events row is locked; references carry ids
// only.
func lockEvent(ctx context.Context, tx pgx.Tx, id int64) (*model.Event, error) {
	var (
		e           model.Event
		eventDate   time.Time
		createdOn   time.Time
		publishedOn *time.Time
		state       string
	)
	err := tx.QueryRow(ctx,
		`SELECT id, title, annotation, description, category_id, initiator_id, location_id,
		        event_date, created_on, published_on, paid, participant_limit,
		        request_moderation, confirmed_requests, views, state
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`, id,
	).Scan(&e.ID, &e.Title, &e.Annotation, &e.Description,
		&e.Category.ID, &e.Initiator.ID, &e.Location.ID,
		&eventDate, &createdOn, &publishedOn, &e.Paid, &e.ParticipantLimit,
		&e.RequestModeration, &e.ConfirmedRequests, &e.Views, &state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	e.EventDate = model.DateTime{Time: eventDate}
	e.CreatedOn = model.DateTime{Time: createdOn}
	if publishedOn != nil {
		on := model.DateTime{Time: *publishedOn}
		e.PublishedOn = &on
	}
	e.State = model.EventState(state)
	return &e, nil
}

// persistEvent writes every mutable event column back.
func persistEvent(ctx context.Context, tx pgx.Tx, e *model.Event) error {
	var publishedOn *time.Time
	if e.PublishedOn != nil {
		publishedOn = &e.PublishedOn.Time
	}
	_, err := tx.Exec(ctx,
		`UPDATE events
		 SET title = $2, annotation = $3, description = $4, category_id = $5,
		     location_id = $6, event_date = $7, published_on = $8, paid = $9,
		     participant_limit = $10, request_moderation = $11,
		     confirmed_requests = $12, views = $13, state = $14
		 WHERE id = $1`,
		e.ID, e.Title, e.Annotation, e.Description, e.Category.ID,
		e.Location.ID, e.EventDate.Time, publishedOn, e.Paid,
		e.ParticipantLimit, e.RequestModeration,
		e.ConfirmedRequests, e.Views, string(e.State))
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
