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

// RequestRepository handles persistence for participation requests. The
// capacity check-then-increment paths (create with auto-confirm, batch
// moderation) hold the event row lock for the whole transaction so two
// concurrent admissions can never jointly overshoot the participant limit.
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a participation request for a published event. The request
// is confirmed immediately when the event skips moderation, incrementing the
// confirmed counter atomically with the insert.
func (r *RequestRepository) Create(ctx context.Context, userID, eventID int64) (_ *model.Request, err error) {
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

	var duplicates int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests
		 WHERE event_id = $1 AND requester_id = $2 AND status <> $3`,
		eventID, userID, string(model.RequestCanceled),
	).Scan(&duplicates)
	if err != nil {
		return nil, fmt.Errorf("check duplicate request: %w", err)
	}
	if duplicates > 0 {
		return nil, fmt.Errorf("%w: user %d, event %d", model.ErrDuplicateRequest, userID, eventID)
	}
	if event.Initiator.ID == userID {
		return nil, fmt.Errorf("%w: user %d, event %d", model.ErrSelfRequest, userID, eventID)
	}
	if event.State != model.EventPublished {
		return nil, fmt.Errorf("%w: event %d", model.ErrNotPublished, eventID)
	}
	if event.IsFull() {
		return nil, fmt.Errorf("%w: event %d", model.ErrEventFull, eventID)
	}

	request := &model.Request{
		EventID:     eventID,
		RequesterID: userID,
		Status:      event.NewRequestStatus(),
		Created:     model.NewDateTime(time.Now()),
	}
	if request.Status == model.RequestConfirmed {
		_, err = tx.Exec(ctx,
			`UPDATE events SET confirmed_requests = confirmed_requests + 1 WHERE id = $1`,
			eventID)
		if err != nil {
			return nil, fmt.Errorf("increment confirmed requests: %w", err)
		}
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO requests (event_id, requester_id, status, created)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		request.EventID, request.RequesterID, string(request.Status), request.Created.Time,
	).Scan(&request.ID)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return request, nil
}

// Cancel moves the requester's own request to CANCELED. Capacity already
// granted to a confirmed request is not returned.
func (r *RequestRepository) Cancel(ctx context.Context, userID, requestID int64) (_ *model.Request, err error) {
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
	request, err := lockRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != userID {
		return nil, fmt.Errorf("%w: user %d, request %d", model.ErrNotRequester, userID, requestID)
	}
	if err = request.Cancel(); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx,
		`UPDATE requests SET status = $2 WHERE id = $1`, requestID, string(request.Status))
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return request, nil
}

// Moderate confirms or rejects the named pending requests on behalf of the
// event initiator, in the order the ids were supplied. The event row stays
// locked for the whole batch; either every status flip and the counter
// update commit together or nothing does.
func (r *RequestRepository) Moderate(ctx context.Context, userID, eventID int64, requestIDs []int64, target model.RequestStatus) (_ *model.AdmissionResult, err error) {
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
	if event.IsFull() {
		return nil, fmt.Errorf("%w: event %d", model.ErrEventFull, eventID)
	}

	requests, err := lockRequestsInOrder(ctx, tx, requestIDs)
	if err != nil {
		return nil, err
	}
	result, err := event.PlanAdmission(requests, target)
	if err != nil {
		return nil, err
	}

	if err = updateRequestStatuses(ctx, tx, result.Confirmed, model.RequestConfirmed); err != nil {
		return nil, err
	}
	if err = updateRequestStatuses(ctx, tx, result.Rejected, model.RequestRejected); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx,
		`UPDATE events SET confirmed_requests = $2 WHERE id = $1`,
		eventID, event.ConfirmedRequests)
	if err != nil {
		return nil, fmt.Errorf("update confirmed requests: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &result, nil
}

// ListByRequester returns all requests submitted by the user.
func (r *RequestRepository) ListByRequester(ctx context.Context, userID int64) ([]model.Request, error) {
	if _, err := getUser(ctx, r.db, userID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests
		 WHERE requester_id = $1
		 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	return collectRequests(rows)
}

// ListByEvent returns all requests for an event, visible to its initiator
// only.
func (r *RequestRepository) ListByEvent(ctx context.Context, userID, eventID int64) ([]model.Request, error) {
	if _, err := getUser(ctx, r.db, userID); err != nil {
		return nil, err
	}
	var initiatorID int64
	err := r.db.QueryRow(ctx,
		`SELECT initiator_id FROM events WHERE id = $1`, eventID,
	).Scan(&initiatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %d: %w", eventID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if initiatorID != userID {
		return nil, fmt.Errorf("%w: user %d, event %d", model.ErrNotInitiator, userID, eventID)
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests
		 WHERE event_id = $1
		 ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests by event: %w", err)
	}
	return collectRequests(rows)
}

func lockRequest(ctx context.Context, tx pgx.Tx, id int64) (*model.Request, error) {
	request, err := scanRequest(tx.QueryRow(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests
		 WHERE id = $1
		 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("lock request row: %w", err)
	}
	return request, nil
}

// lockRequestsInOrder locks the named requests and returns them in the order
// the ids were supplied. Ids that match no request are skipped.
func lockRequestsInOrder(ctx context.Context, tx pgx.Tx, ids []int64) ([]*model.Request, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests
		 WHERE id = ANY($1)
		 FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("lock request rows: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*model.Request, len(ids))
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		byID[request.ID] = request
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*model.Request, 0, len(byID))
	for _, id := range ids {
		if request, ok := byID[id]; ok {
			ordered = append(ordered, request)
		}
	}
	return ordered, nil
}

func updateRequestStatuses(ctx context.Context, tx pgx.Tx, requests []model.Request, status model.RequestStatus) error {
	if len(requests) == 0 {
		return nil
	}
	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	_, err := tx.Exec(ctx,
		`UPDATE requests SET status = $2 WHERE id = ANY($1)`, ids, string(status))
	if err != nil {
		return fmt.Errorf("update request statuses: %w", err)
	}
	return nil
}

func scanRequest(row scannable) (*model.Request, error) {
	var (
		r       model.Request
		status  string
		created time.Time
	)
	if err := row.Scan(&r.ID, &r.EventID, &r.RequesterID, &status, &created); err != nil {
		return nil, err
	}
	r.Status = model.RequestStatus(status)
	r.Created = model.DateTime{Time: created}
	return &r, nil
}

func collectRequests(rows pgx.Rows) ([]model.Request, error) {
	defer rows.Close()
	var requests []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}
