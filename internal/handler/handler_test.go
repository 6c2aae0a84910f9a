package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/model"
	"afisha/internal/service"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrNotInitiator, http.StatusForbidden},
		{model.ErrNotRequester, http.StatusForbidden},
		{model.ErrNotAuthor, http.StatusForbidden},
		{model.ErrEventFull, http.StatusConflict},
		{model.ErrDuplicateRequest, http.StatusConflict},
		{model.ErrSelfRequest, http.StatusConflict},
		{model.ErrNotPublished, http.StatusConflict},
		{model.ErrWrongState, http.StatusConflict},
		{model.ErrEditPublished, http.StatusConflict},
		{model.ErrTooLateToPublish, http.StatusConflict},
		{model.ErrBadEventDate, http.StatusConflict},
		{model.ErrLimitBelowConfirmed, http.StatusConflict},
		{model.ErrRequestNotPending, http.StatusConflict},
		{model.ErrNotModeratable, http.StatusConflict},
		{model.ErrCancelFinalized, http.StatusConflict},
		{model.ErrCategoryNotEmpty, http.StatusConflict},
		{model.ErrAlreadyExists, http.StatusConflict},
		{model.ErrInvalidInput, http.StatusBadRequest},
		{model.ErrBadStateAction, http.StatusBadRequest},
		{model.ErrBadStatus, http.StatusBadRequest},
		{model.ErrBadSort, http.StatusBadRequest},
		{model.ErrBadDateTime, http.StatusBadRequest},
		{model.ErrBadDateRange, http.StatusBadRequest},
		{model.ErrPastDate, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), "error %v", tt.err)
		// Wrapped errors map the same way.
		assert.Equal(t, tt.want, statusOf(errors.Join(errors.New("ctx"), tt.err)))
	}
}

func TestRespondErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, in := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := parseID(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("1,2, 3")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIDList("1,x")
	assert.Error(t, err)
}

func TestParseOptionalBool(t *testing.T) {
	b, err := parseOptionalBool("")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = parseOptionalBool("true")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	_, err = parseOptionalBool("yes")
	assert.Error(t, err)
}

func TestParseOptionalDateTime(t *testing.T) {
	d, err := parseOptionalDateTime("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseOptionalDateTime("2026-06-15 18:30:00")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2026-06-15 18:30:00", d.String())

	_, err = parseOptionalDateTime("2026-06-15")
	assert.ErrorIs(t, err, model.ErrBadDateTime)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", clientIP(r))

	r.RemoteAddr = "10.0.0.7"
	assert.Equal(t, "10.0.0.7", clientIP(r))
}

// moderateStore drives the moderation endpoint test.
type moderateStore struct {
	service.RequestStore

	err error
	ids []int64
}

func (s *moderateStore) Moderate(_ context.Context, _, _ int64, ids []int64, _ model.RequestStatus) (*model.AdmissionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.ids = ids
	return &model.AdmissionResult{}, nil
}

func moderationRouter(store service.RequestStore) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewRequestHandler(service.NewRequestService(store, log))
	r := chi.NewRouter()
	r.Patch("/users/{userId}/events/{eventId}/requests", h.Moderate)
	return r
}

func TestModerateEndpoint(t *testing.T) {
	store := &moderateStore{}
	router := moderationRouter(store)

	body := `{"requestIds":[3,1,2],"status":"CONFIRMED"}`
	req := httptest.NewRequest(http.MethodPatch, "/users/5/events/7/requests", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{3, 1, 2}, store.ids)

	var result model.AdmissionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotNil(t, result.Confirmed)
	assert.NotNil(t, result.Rejected)
}

func TestModerateEndpointErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		storeErr error
		want     int
	}{
		{"malformed user id", "/users/x/events/7/requests", `{"status":"CONFIRMED"}`, nil, http.StatusBadRequest},
		{"malformed body", "/users/5/events/7/requests", `{"status":`, nil, http.StatusBadRequest},
		{"unknown field", "/users/5/events/7/requests", `{"status":"CONFIRMED","extra":1}`, nil, http.StatusBadRequest},
		{"unknown status", "/users/5/events/7/requests", `{"status":"APPROVED"}`, nil, http.StatusBadRequest},
		{"capacity exhausted", "/users/5/events/7/requests", `{"status":"CONFIRMED"}`, model.ErrEventFull, http.StatusConflict},
		{"not the initiator", "/users/5/events/7/requests", `{"status":"CONFIRMED"}`, model.ErrNotInitiator, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := moderationRouter(&moderateStore{err: tt.storeErr})
			req := httptest.NewRequest(http.MethodPatch, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)

			var er model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
			assert.NotEmpty(t, er.Error)
		})
	}
}
