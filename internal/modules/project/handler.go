package project

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes project HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.list)                              // GET    /api/projects?status=
		r.Post("/", h.create)                           // POST   /api/projects
		r.Get("/tasks", h.tasks)                        // GET    /api/projects/tasks
		r.Get("/{id}", h.get)                           // GET    /api/projects/{id}
		r.Put("/{id}", h.update)                        // PUT    /api/projects/{id}
		r.Patch("/{id}", h.changeStatus)                // PATCH  /api/projects/{id}
		r.Delete("/{id}", h.delete)                     // DELETE /api/projects/{id}
		r.Patch("/{id}/stage-completion", h.toggleItem) // PATCH  /api/projects/{id}/stage-completion
		r.Get("/{id}/progress", h.progress)             // GET    /api/projects/{id}/progress
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, err)
		return
	}
	if projects == nil {
		projects = []*Project{}
	}
	respond(w, http.StatusOK, projects)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.CreateProject(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.Tasks(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	respond(w, http.StatusOK, tasks)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.UpdateProject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleItem(w http.ResponseWriter, r *http.Request) {
	var req ToggleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.ToggleChecklistItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, progress)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, ErrStageRegression), errors.Is(err, ErrInvalidTransition):
		code = http.StatusConflict
	case errors.Is(err, ErrDealNotWon):
		code = http.StatusUnprocessableEntity
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
