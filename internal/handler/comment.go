package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"afisha/internal/model"
	"afisha/internal/service"
)

// CommentHandler holds the HTTP handlers for event comments.
type CommentHandler struct {
	svc *service.CommentService
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

type commentBody struct {
	Text string `json:"text"`
}

// Create handles POST /users/{userId}/comments?eventId={eventId}
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	var body commentBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	comment, err := h.svc.Create(r.Context(), userID, eventID, body.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// Update handles PATCH /users/{userId}/comments/{commentId}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	commentID, err := parseID(chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body commentBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	comment, err := h.svc.Update(r.Context(), userID, commentID, body.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /users/{userId}/comments/{commentId}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	commentID, err := parseID(chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), userID, commentID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByEvent handles GET /events/{eventId}/comments
func (h *CommentHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comments, err := h.svc.ListByEvent(r.Context(), eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}
