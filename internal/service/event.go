// Package service implements business orchestration between HTTP handlers
// and the repository layer: input validation, the best-effort view counting
// side channel, and logging of state changes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"afisha/internal/model"
)

// EventStore is the persistence surface the event service depends on.
type EventStore interface {
	Create(ctx context.Context, initiatorID int64, ne model.NewEvent) (*model.Event, error)
	GetForAuthor(ctx context.Context, userID, eventID int64) (*model.Event, error)
	GetPublished(ctx context.Context, id int64) (*model.Event, error)
	ListByInitiator(ctx context.Context, userID int64) ([]model.Event, error)
	ListForAdmin(ctx context.Context, f model.AdminEventFilter) ([]model.Event, error)
	Search(ctx context.Context, f model.PublicEventFilter) ([]model.Event, error)
	UpdateByAuthor(ctx context.Context, userID, eventID int64, p model.EventPatch) (*model.Event, error)
	UpdateByAdmin(ctx context.Context, eventID int64, p model.EventPatch) (*model.Event, error)
	IncrementViews(ctx context.Context, id int64) (int64, error)
}

// ViewCounter is the consumed surface of the external statistics service.
// Both calls are best-effort on the read paths: a failure degrades to "view
// not counted".
type ViewCounter interface {
	RecordHit(ctx context.Context, uri, ip string, at time.Time) error
	IsFirstVisit(ctx context.Context, uri, ip string) (bool, error)
}

// EventService owns the event lifecycle operations.
type EventService struct {
	events EventStore
	views  ViewCounter
	log    *slog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, views ViewCounter, log *slog.Logger) *EventService {
	return &EventService{events: events, views: views, log: log}
}

// Create validates the payload and stores a new pending event.
func (s *EventService) Create(ctx context.Context, userID int64, ne model.NewEvent) (*model.Event, error) {
	ne.Title = strings.TrimSpace(ne.Title)
	ne.Annotation = strings.TrimSpace(ne.Annotation)
	if ne.Title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	}
	if ne.Annotation == "" {
		return nil, fmt.Errorf("%w: annotation is required", model.ErrInvalidInput)
	}
	if ne.ParticipantLimit < 0 {
		return nil, fmt.Errorf("%w: participant limit cannot be negative", model.ErrInvalidInput)
	}
	event, err := s.events.Create(ctx, userID, ne)
	if err != nil {
		return nil, err
	}
	s.log.Info("event created", "event_id", event.ID, "title", event.Title, "initiator_id", userID)
	return event, nil
}

// GetByAuthor returns an event for its author's view.
func (s *EventService) GetByAuthor(ctx context.Context, userID, eventID int64) (*model.Event, error) {
	return s.events.GetForAuthor(ctx, userID, eventID)
}

// ListByInitiator returns the events created by the user.
func (s *EventService) ListByInitiator(ctx context.Context, userID int64) ([]model.Event, error) {
	return s.events.ListByInitiator(ctx, userID)
}

// UpdateByAuthor applies an initiator patch.
func (s *EventService) UpdateByAuthor(ctx context.Context, userID, eventID int64, p model.EventPatch) (*model.Event, error) {
	if p.ParticipantLimit != nil && *p.ParticipantLimit < 0 {
		return nil, fmt.Errorf("%w: participant limit cannot be negative", model.ErrInvalidInput)
	}
	event, err := s.events.UpdateByAuthor(ctx, userID, eventID, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("event updated by author", "event_id", eventID, "state", event.State)
	return event, nil
}

// UpdateByAdmin applies an admin patch, including publish/reject transitions.
func (s *EventService) UpdateByAdmin(ctx context.Context, eventID int64, p model.EventPatch) (*model.Event, error) {
	if p.ParticipantLimit != nil && *p.ParticipantLimit < 0 {
		return nil, fmt.Errorf("%w: participant limit cannot be negative", model.ErrInvalidInput)
	}
	event, err := s.events.UpdateByAdmin(ctx, eventID, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("event updated by admin", "event_id", eventID, "state", event.State)
	return event, nil
}

// ListForAdmin returns events matching the admin filter.
func (s *EventService) ListForAdmin(ctx context.Context, f model.AdminEventFilter) ([]model.Event, error) {
	return s.events.ListForAdmin(ctx, f)
}

// Search returns published events matching the public filter and records the
// endpoint hit. When neither range bound is given, the search covers
// upcoming events only.
func (s *EventService) Search(ctx context.Context, f model.PublicEventFilter, uri, ip string) ([]model.Event, error) {
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeStart.After(f.RangeEnd.Time) {
		return nil, fmt.Errorf("%w: %s > %s", model.ErrBadDateRange, f.RangeStart, f.RangeEnd)
	}
	if f.RangeStart == nil && f.RangeEnd == nil {
		start := model.NewDateTime(time.Now())
		f.RangeStart = &start
	}
	events, err := s.events.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	s.recordHit(ctx, uri, ip)
	return events, nil
}

// GetPublicByID returns a published event, bumping its view counter when the
// statistics service reports the (uri, ip) pair as first-seen. Statistics
// failures degrade to "view not counted".
func (s *EventService) GetPublicByID(ctx context.Context, id int64, uri, ip string) (*model.Event, error) {
	event, err := s.events.GetPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	first, err := s.views.IsFirstVisit(ctx, uri, ip)
	if err != nil {
		s.log.Warn("first-visit check failed, view not counted", "event_id", id, "error", err)
	} else if first {
		views, err := s.events.IncrementViews(ctx, id)
		if err != nil {
			return nil, err
		}
		event.Views = views
	}
	s.recordHit(ctx, uri, ip)
	return event, nil
}

func (s *EventService) recordHit(ctx context.Context, uri, ip string) {
	if err := s.views.RecordHit(ctx, uri, ip, time.Now()); err != nil {
		s.log.Warn("endpoint hit not recorded", "uri", uri, "error", err)
	}
}
