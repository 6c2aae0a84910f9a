package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventStore records calls and serves canned responses.
type fakeEventStore struct {
	EventStore

	event      *model.Event
	searched   *model.PublicEventFilter
	increments int
}

func (f *fakeEventStore) Create(_ context.Context, _ int64, _ model.NewEvent) (*model.Event, error) {
	return f.event, nil
}

func (f *fakeEventStore) GetPublished(_ context.Context, id int64) (*model.Event, error) {
	if f.event == nil || f.event.ID != id {
		return nil, model.ErrNotFound
	}
	ev := *f.event
	return &ev, nil
}

func (f *fakeEventStore) Search(_ context.Context, filter model.PublicEventFilter) ([]model.Event, error) {
	f.searched = &filter
	return []model.Event{*f.event}, nil
}

func (f *fakeEventStore) IncrementViews(_ context.Context, _ int64) (int64, error) {
	f.increments++
	return f.event.Views + int64(f.increments), nil
}

// fakeViewCounter simulates the statistics side channel.
type fakeViewCounter struct {
	first    bool
	firstErr error
	hitErr   error
	hits     int
}

func (f *fakeViewCounter) RecordHit(_ context.Context, _, _ string, _ time.Time) error {
	f.hits++
	return f.hitErr
}

func (f *fakeViewCounter) IsFirstVisit(_ context.Context, _, _ string) (bool, error) {
	return f.first, f.firstErr
}

func publishedEvent() *model.Event {
	return &model.Event{ID: 42, Title: "jazz night", State: model.EventPublished, Views: 10}
}

func TestEventServiceCreateValidation(t *testing.T) {
	svc := NewEventService(&fakeEventStore{event: publishedEvent()}, &fakeViewCounter{}, discardLogger())

	tests := []struct {
		name string
		ne   model.NewEvent
	}{
		{"missing title", model.NewEvent{Annotation: "a"}},
		{"blank title", model.NewEvent{Title: "   ", Annotation: "a"}},
		{"missing annotation", model.NewEvent{Title: "t"}},
		{"negative limit", model.NewEvent{Title: "t", Annotation: "a", ParticipantLimit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.ne)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	_, err := svc.Create(context.Background(), 1, model.NewEvent{Title: "t", Annotation: "a"})
	assert.NoError(t, err)
}

func TestEventServiceSearchRange(t *testing.T) {
	store := &fakeEventStore{event: publishedEvent()}
	views := &fakeViewCounter{}
	svc := NewEventService(store, views, discardLogger())

	start, _ := model.ParseDateTime("2026-07-01 00:00:00")
	end, _ := model.ParseDateTime("2026-06-01 00:00:00")
	_, err := svc.Search(context.Background(), model.PublicEventFilter{RangeStart: &start, RangeEnd: &end}, "/events", "1.2.3.4")
	assert.ErrorIs(t, err, model.ErrBadDateRange)
	assert.Zero(t, views.hits, "failed search must not record a hit")

	// With no bounds the search is anchored at "now".
	_, err = svc.Search(context.Background(), model.PublicEventFilter{}, "/events", "1.2.3.4")
	require.NoError(t, err)
	require.NotNil(t, store.searched)
	require.NotNil(t, store.searched.RangeStart)
	assert.Nil(t, store.searched.RangeEnd)
	assert.WithinDuration(t, time.Now(), store.searched.RangeStart.Time, 5*time.Second)
	assert.Equal(t, 1, views.hits)

	// An explicit lower bound passes through unchanged.
	past, _ := model.ParseDateTime("2020-01-01 00:00:00")
	_, err = svc.Search(context.Background(), model.PublicEventFilter{RangeStart: &past}, "/events", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, past, *store.searched.RangeStart)
}

func TestEventServiceSearchHitFailureIgnored(t *testing.T) {
	store := &fakeEventStore{event: publishedEvent()}
	views := &fakeViewCounter{hitErr: errors.New("stats down")}
	svc := NewEventService(store, views, discardLogger())

	events, err := svc.Search(context.Background(), model.PublicEventFilter{}, "/events", "1.2.3.4")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventServiceGetPublicCountsFirstVisit(t *testing.T) {
	store := &fakeEventStore{event: publishedEvent()}
	views := &fakeViewCounter{first: true}
	svc := NewEventService(store, views, discardLogger())

	event, err := svc.GetPublicByID(context.Background(), 42, "/events/42", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 1, store.increments)
	assert.Equal(t, int64(11), event.Views)
	assert.Equal(t, 1, views.hits)
}

func TestEventServiceGetPublicRepeatVisit(t *testing.T) {
	store := &fakeEventStore{event: publishedEvent()}
	views := &fakeViewCounter{first: false}
	svc := NewEventService(store, views, discardLogger())

	event, err := svc.GetPublicByID(context.Background(), 42, "/events/42", "1.2.3.4")
	require.NoError(t, err)
	assert.Zero(t, store.increments)
	assert.Equal(t, int64(10), event.Views)
	assert.Equal(t, 1, views.hits, "repeat visits still record a hit")
}

func TestEventServiceGetPublicStatsDegraded(t *testing.T) {
	// A failing uniqueness check must not fail the read or bump the counter.
	store := &fakeEventStore{event: publishedEvent()}
	views := &fakeViewCounter{firstErr: errors.New("stats down"), hitErr: errors.New("stats down")}
	svc := NewEventService(store, views, discardLogger())

	event, err := svc.GetPublicByID(context.Background(), 42, "/events/42", "1.2.3.4")
	require.NoError(t, err)
	assert.Zero(t, store.increments)
	assert.Equal(t, int64(10), event.Views)
}

func TestEventServiceGetPublicNotFound(t *testing.T) {
	store := &fakeEventStore{event: publishedEvent()}
	svc := NewEventService(store, &fakeViewCounter{}, discardLogger())

	_, err := svc.GetPublicByID(context.Background(), 99, "/events/99", "1.2.3.4")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEventServiceUpdateLimitValidation(t *testing.T) {
	svc := NewEventService(&fakeEventStore{event: publishedEvent()}, &fakeViewCounter{}, discardLogger())

	bad := int64(-5)
	_, err := svc.UpdateByAuthor(context.Background(), 1, 42, model.EventPatch{ParticipantLimit: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = svc.UpdateByAdmin(context.Background(), 42, model.EventPatch{ParticipantLimit: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
