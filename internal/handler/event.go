package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"afisha/internal/model"
	"afisha/internal/service"
)

// EventHandler holds the HTTP handlers for the event lifecycle API.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create handles POST /users/{userId}/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var ne model.NewEvent
	if err := decodeJSON(r, &ne); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.Create(r.Context(), userID, ne)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListByInitiator handles GET /users/{userId}/events
func (h *EventHandler) ListByInitiator(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := h.svc.ListByInitiator(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetByAuthor handles GET /users/{userId}/events/{eventId}
func (h *EventHandler) GetByAuthor(w http.ResponseWriter, r *http.Request) {
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
	event, err := h.svc.GetByAuthor(r.Context(), userID, eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateByAuthor handles PATCH /users/{userId}/events/{eventId}
func (h *EventHandler) UpdateByAuthor(w http.ResponseWriter, r *http.Request) {
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
	var patch model.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.UpdateByAuthor(r.Context(), userID, eventID, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateByAdmin handles PATCH /admin/events/{eventId}
func (h *EventHandler) UpdateByAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var patch model.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.UpdateByAdmin(r.Context(), eventID, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ListForAdmin handles GET /admin/events
// Query: users, states, categories (comma-separated), rangeStart, rangeEnd.
func (h *EventHandler) ListForAdmin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		filter model.AdminEventFilter
		err    error
	)
	if filter.Users, err = parseIDList(q.Get("users")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Categories, err = parseIDList(q.Get("categories")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, s := range splitList(q.Get("states")) {
		state, err := model.ParseEventState(s)
		if err != nil {
			respondError(w, err)
			return
		}
		filter.States = append(filter.States, state)
	}
	if filter.RangeStart, err = parseOptionalDateTime(q.Get("rangeStart")); err != nil {
		respondError(w, err)
		return
	}
	if filter.RangeEnd, err = parseOptionalDateTime(q.Get("rangeEnd")); err != nil {
		respondError(w, err)
		return
	}

	events, err := h.svc.ListForAdmin(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Search handles GET /events
// Query: text, categories, paid, rangeStart, rangeEnd, onlyAvailable, sort.
func (h *EventHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		filter model.PublicEventFilter
		err    error
	)
	filter.Text = q.Get("text")
	if filter.Categories, err = parseIDList(q.Get("categories")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Paid, err = parseOptionalBool(q.Get("paid")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.RangeStart, err = parseOptionalDateTime(q.Get("rangeStart")); err != nil {
		respondError(w, err)
		return
	}
	if filter.RangeEnd, err = parseOptionalDateTime(q.Get("rangeEnd")); err != nil {
		respondError(w, err)
		return
	}
	onlyAvailable, err := parseOptionalBool(q.Get("onlyAvailable"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.OnlyAvailable = onlyAvailable != nil && *onlyAvailable
	if filter.Sort, err = model.ParseEventSort(q.Get("sort")); err != nil {
		respondError(w, err)
		return
	}

	events, err := h.svc.Search(r.Context(), filter, r.URL.RequestURI(), clientIP(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetPublic handles GET /events/{eventId}
func (h *EventHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := h.svc.GetPublicByID(r.Context(), id, r.URL.Path, clientIP(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
