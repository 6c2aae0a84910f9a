// Package handler contains the chi HTTP handlers that translate requests and
// responses to and from the service layer, and the single mapping from
// domain errors to HTTP statuses.
package handler

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"afisha/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusOf maps domain errors onto HTTP statuses. Anything unrecognized is an
// internal error.
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNotInitiator),
		errors.Is(err, model.ErrNotRequester),
		errors.Is(err, model.ErrNotAuthor):
		return http.StatusForbidden
	case errors.Is(err, model.ErrEventFull),
		errors.Is(err, model.ErrDuplicateRequest),
		errors.Is(err, model.ErrSelfRequest),
		errors.Is(err, model.ErrNotPublished),
		errors.Is(err, model.ErrWrongState),
		errors.Is(err, model.ErrEditPublished),
		errors.Is(err, model.ErrTooLateToPublish),
		errors.Is(err, model.ErrBadEventDate),
		errors.Is(err, model.ErrLimitBelowConfirmed),
		errors.Is(err, model.ErrRequestNotPending),
		errors.Is(err, model.ErrNotModeratable),
		errors.Is(err, model.ErrCancelFinalized),
		errors.Is(err, model.ErrCategoryNotEmpty),
		errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrBadStateAction),
		errors.Is(err, model.ErrBadStatus),
		errors.Is(err, model.ErrBadSort),
		errors.Is(err, model.ErrBadDateTime),
		errors.Is(err, model.ErrBadDateRange),
		errors.Is(err, model.ErrPastDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("malformed id: " + s)
	}
	return id, nil
}

// splitList splits a comma-separated query value, trimming whitespace.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseIDList parses a comma-separated id list query value.
func parseIDList(s string) ([]int64, error) {
	parts := splitList(s)
	if parts == nil {
		return nil, nil
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, errors.New("malformed boolean: " + s)
	}
	return &b, nil
}

func parseOptionalDateTime(s string) (*model.DateTime, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDateTime(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// clientIP extracts the caller address. The RealIP middleware has already
// rewritten RemoteAddr when a forwarding header is present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
