package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"afisha/internal/model"
	"afisha/internal/service"
)

// RequestHandler holds the HTTP handlers for participation requests.
type RequestHandler struct {
	svc *service.RequestService
}

// NewRequestHandler constructs a RequestHandler.
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// Create handles POST /users/{userId}/requests?eventId={eventId}
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eventID, err := parseID(r.URL.Query().Get("eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	request, err := h.svc.Create(r.Context(), userID, eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

// Cancel handles PATCH /users/{userId}/requests/{requestId}/cancel
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestID, err := parseID(chi.URLParam(r, "requestId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	request, err := h.svc.Cancel(r.Context(), userID, requestID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

// ListForRequester handles GET /users/{userId}/requests
func (h *RequestHandler) ListForRequester(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	requests, err := h.svc.ListForRequester(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// ListForEvent handles GET /users/{userId}/events/{eventId}/requests
func (h *RequestHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eventID, err := parseID(chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	requests, err := h.svc.ListForEventOwner(r.Context(), userID, eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// moderationBody is the batch moderation payload.
type moderationBody struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}

// Moderate handles PATCH /users/{userId}/events/{eventId}/requests
func (h *RequestHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eventID, err := parseID(chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body moderationBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	result, err := h.svc.Moderate(r.Context(), userID, eventID, body.RequestIDs, body.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
