package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func dtIn(d time.Duration) DateTime {
	return NewDateTime(testNow.Add(d))
}

func strPtr(s string) *string    { return &s }
func i64Ptr(v int64) *int64      { return &v }
func dtPtr(d DateTime) *DateTime { return &d }
func boolPtr(v bool) *bool       { return &v }

func pendingEvent() Event {
	return Event{
		ID:         7,
		Title:      "open mic",
		Annotation: "weekly open mic",
		State:      EventPending,
		EventDate:  dtIn(72 * time.Hour),
	}
}

func TestValidateEventDate(t *testing.T) {
	assert.NoError(t, ValidateEventDate(dtIn(2*time.Hour), testNow))
	assert.NoError(t, ValidateEventDate(dtIn(48*time.Hour), testNow))
	assert.ErrorIs(t, ValidateEventDate(dtIn(time.Hour), testNow), ErrBadEventDate)
	assert.ErrorIs(t, ValidateEventDate(dtIn(-time.Hour), testNow), ErrBadEventDate)
}

func TestApplyAuthorPatchFields(t *testing.T) {
	e := pendingEvent()
	err := e.ApplyAuthorPatch(EventPatch{
		Title:            strPtr("closed mic"),
		Description:      strPtr("invite only"),
		EventDate:        dtPtr(dtIn(96 * time.Hour)),
		Paid:             boolPtr(true),
		ParticipantLimit: i64Ptr(25),
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "closed mic", e.Title)
	assert.Equal(t, "invite only", e.Description)
	assert.Equal(t, dtIn(96*time.Hour), e.EventDate)
	assert.True(t, e.Paid)
	assert.Equal(t, int64(25), e.ParticipantLimit)
	assert.Equal(t, EventPending, e.State)
}

func TestApplyAuthorPatchStateActions(t *testing.T) {
	e := pendingEvent()
	require.NoError(t, e.ApplyAuthorPatch(EventPatch{StateAction: strPtr(ActionCancelReview)}, testNow))
	assert.Equal(t, EventCanceled, e.State)

	require.NoError(t, e.ApplyAuthorPatch(EventPatch{StateAction: strPtr(ActionSendToReview)}, testNow))
	assert.Equal(t, EventPending, e.State)

	// Admin keywords are not part of the author's vocabulary.
	err := e.ApplyAuthorPatch(EventPatch{StateAction: strPtr(ActionPublishEvent)}, testNow)
	assert.ErrorIs(t, err, ErrBadStateAction)
	err = e.ApplyAuthorPatch(EventPatch{StateAction: strPtr("APPROVE")}, testNow)
	assert.ErrorIs(t, err, ErrBadStateAction)
}

func TestApplyAuthorPatchGuards(t *testing.T) {
	t.Run("published event rejects any patch", func(t *testing.T) {
		e := pendingEvent()
		e.State = EventPublished
		err := e.ApplyAuthorPatch(EventPatch{Title: strPtr("x")}, testNow)
		assert.ErrorIs(t, err, ErrEditPublished)
		assert.Equal(t, "open mic", e.Title)
	})

	t.Run("date closer than two hours", func(t *testing.T) {
		e := pendingEvent()
		err := e.ApplyAuthorPatch(EventPatch{EventDate: dtPtr(dtIn(90 * time.Minute))}, testNow)
		assert.ErrorIs(t, err, ErrBadEventDate)
		assert.Equal(t, dtIn(72*time.Hour), e.EventDate)
	})

	t.Run("limit below confirmed count", func(t *testing.T) {
		e := pendingEvent()
		e.ConfirmedRequests = 5
		err := e.ApplyAuthorPatch(EventPatch{ParticipantLimit: i64Ptr(3)}, testNow)
		assert.ErrorIs(t, err, ErrLimitBelowConfirmed)
	})

	t.Run("failed guard leaves other fields untouched", func(t *testing.T) {
		e := pendingEvent()
		err := e.ApplyAuthorPatch(EventPatch{
			Title:     strPtr("x"),
			EventDate: dtPtr(dtIn(time.Minute)),
		}, testNow)
		require.Error(t, err)
		assert.Equal(t, "open mic", e.Title)
	})
}

func TestApplyAdminPatchPublish(t *testing.T) {
	e := pendingEvent()
	require.NoError(t, e.ApplyAdminPatch(EventPatch{StateAction: strPtr(ActionPublishEvent)}, testNow))
	assert.Equal(t, EventPublished, e.State)
	require.NotNil(t, e.PublishedOn)
	assert.Equal(t, NewDateTime(testNow), *e.PublishedOn)
}

func TestApplyAdminPatchPublishGuards(t *testing.T) {
	t.Run("only pending events publish", func(t *testing.T) {
		for _, state := range []EventState{EventPublished, EventCanceled, EventRejected} {
			e := pendingEvent()
			e.State = state
			err := e.ApplyAdminPatch(EventPatch{StateAction: strPtr(ActionPublishEvent)}, testNow)
			assert.ErrorIs(t, err, ErrWrongState, "state %s", state)
		}
	})

	t.Run("event starting within the hour", func(t *testing.T) {
		e := pendingEvent()
		e.EventDate = dtIn(30 * time.Minute)
		err := e.ApplyAdminPatch(EventPatch{StateAction: strPtr(ActionPublishEvent)}, testNow)
		assert.ErrorIs(t, err, ErrTooLateToPublish)
	})

	t.Run("lead time is checked against the patched date", func(t *testing.T) {
		e := pendingEvent()
		err := e.ApplyAdminPatch(EventPatch{
			StateAction: strPtr(ActionPublishEvent),
			EventDate:   dtPtr(dtIn(30 * time.Minute)),
		}, testNow)
		assert.ErrorIs(t, err, ErrTooLateToPublish)

		e = pendingEvent()
		e.EventDate = dtIn(30 * time.Minute)
		require.NoError(t, e.ApplyAdminPatch(EventPatch{
			StateAction: strPtr(ActionPublishEvent),
			EventDate:   dtPtr(dtIn(3 * time.Hour)),
		}, testNow))
		assert.Equal(t, EventPublished, e.State)
		assert.Equal(t, dtIn(3*time.Hour), e.EventDate)
	})
}

func TestApplyAdminPatchReject(t *testing.T) {
	e := pendingEvent()
	require.NoError(t, e.ApplyAdminPatch(EventPatch{StateAction: strPtr(ActionRejectEvent)}, testNow))
	assert.Equal(t, EventRejected, e.State)

	e = pendingEvent()
	e.State = EventPublished
	err := e.ApplyAdminPatch(EventPatch{StateAction: strPtr(ActionRejectEvent)}, testNow)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestApplyAdminPatchGuards(t *testing.T) {
	t.Run("past date", func(t *testing.T) {
		e := pendingEvent()
		err := e.ApplyAdminPatch(EventPatch{EventDate: dtPtr(dtIn(-time.Minute))}, testNow)
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("near-future date is fine without publishing", func(t *testing.T) {
		e := pendingEvent()
		require.NoError(t, e.ApplyAdminPatch(EventPatch{EventDate: dtPtr(dtIn(10 * time.Minute))}, testNow))
		assert.Equal(t, dtIn(10*time.Minute), e.EventDate)
	})

	t.Run("author keywords are not part of the admin vocabulary", func(t *testing.T) {
		e := pendingEvent()
		err := e.ApplyAdminPatch(EventPatch{StateAction: strPtr(ActionSendToReview)}, testNow)
		assert.ErrorIs(t, err, ErrBadStateAction)
	})

	t.Run("limit below confirmed count", func(t *testing.T) {
		e := pendingEvent()
		e.ConfirmedRequests = 2
		err := e.ApplyAdminPatch(EventPatch{ParticipantLimit: i64Ptr(1)}, testNow)
		assert.ErrorIs(t, err, ErrLimitBelowConfirmed)
	})
}
