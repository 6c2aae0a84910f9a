package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"afisha/internal/model"
	"afisha/internal/service"
)

// CompilationHandler holds the HTTP handlers for curated compilations.
type CompilationHandler struct {
	svc *service.CompilationService
}

// NewCompilationHandler constructs a CompilationHandler.
func NewCompilationHandler(svc *service.CompilationService) *CompilationHandler {
	return &CompilationHandler{svc: svc}
}

// Create handles POST /admin/compilations
func (h *CompilationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var nc model.NewCompilation
	if err := decodeJSON(r, &nc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	compilation, err := h.svc.Create(r.Context(), nc)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, compilation)
}

// Update handles PATCH /admin/compilations/{compId}
func (h *CompilationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "compId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var patch model.CompilationPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	compilation, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compilation)
}

// Delete handles DELETE /admin/compilations/{compId}
func (h *CompilationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "compId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /compilations/{compId}
func (h *CompilationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "compId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	compilation, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compilation)
}

// List handles GET /compilations?pinned=true
func (h *CompilationHandler) List(w http.ResponseWriter, r *http.Request) {
	pinned, err := parseOptionalBool(r.URL.Query().Get("pinned"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	compilations, err := h.svc.List(r.Context(), pinned)
	if err != nil {
		respondError(w, err)
		return
	}
	if compilations == nil {
		compilations = []model.Compilation{}
	}
	writeJSON(w, http.StatusOK, compilations)
}
