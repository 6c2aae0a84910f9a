package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRequests(n int) []*Request {
	reqs := make([]*Request, n)
	for i := range reqs {
		reqs[i] = &Request{ID: int64(i + 1), EventID: 7, Status: RequestPending}
	}
	return reqs
}

func TestPlanAdmissionConfirm(t *testing.T) {
	e := Event{ID: 7, ParticipantLimit: 5, ConfirmedRequests: 2}
	reqs := pendingRequests(2)

	res, err := e.PlanAdmission(reqs, RequestConfirmed)
	require.NoError(t, err)
	assert.Len(t, res.Confirmed, 2)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, int64(4), e.ConfirmedRequests)
	for _, r := range reqs {
		assert.Equal(t, RequestConfirmed, r.Status)
	}
}

func TestPlanAdmissionForceRejectsPastCapacity(t *testing.T) {
	e := Event{ID: 7, ParticipantLimit: 1}
	reqs := pendingRequests(3)

	res, err := e.PlanAdmission(reqs, RequestConfirmed)
	require.NoError(t, err)
	require.Len(t, res.Confirmed, 1)
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, int64(1), res.Confirmed[0].ID)
	assert.Equal(t, int64(1), e.ConfirmedRequests)
	assert.Equal(t, RequestRejected, reqs[1].Status)
	assert.Equal(t, RequestRejected, reqs[2].Status)
}

func TestPlanAdmissionConfirmUnlimited(t *testing.T) {
	e := Event{ID: 7, ParticipantLimit: 0}
	reqs := pendingRequests(50)

	res, err := e.PlanAdmission(reqs, RequestConfirmed)
	require.NoError(t, err)
	assert.Len(t, res.Confirmed, 50)
	assert.Empty(t, res.Rejected)
}

func TestPlanAdmissionReject(t *testing.T) {
	// Rejection ignores capacity entirely.
	e := Event{ID: 7, ParticipantLimit: 1, ConfirmedRequests: 1}
	reqs := pendingRequests(3)

	res, err := e.PlanAdmission(reqs, RequestRejected)
	require.NoError(t, err)
	assert.Empty(t, res.Confirmed)
	assert.Len(t, res.Rejected, 3)
	assert.Equal(t, int64(1), e.ConfirmedRequests)
}

func TestPlanAdmissionNonPendingFailsBatch(t *testing.T) {
	e := Event{ID: 7, ParticipantLimit: 10}
	reqs := pendingRequests(3)
	reqs[1].Status = RequestConfirmed

	_, err := e.PlanAdmission(reqs, RequestConfirmed)
	assert.ErrorIs(t, err, ErrRequestNotPending)

	_, err = e.PlanAdmission(reqs, RequestRejected)
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

func TestPlanAdmissionBadTarget(t *testing.T) {
	e := Event{ID: 7}
	for _, target := range []RequestStatus{RequestPending, RequestCanceled} {
		_, err := e.PlanAdmission(pendingRequests(1), target)
		assert.ErrorIs(t, err, ErrNotModeratable, "target %s", target)
	}
}
