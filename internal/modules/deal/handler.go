package deal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes deal HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/deals", func(r chi.Router) {
		r.Get("/", h.list)                       // GET    /api/deals?status=&q=
		r.Post("/", h.create)                    // POST   /api/deals
		r.Get("/{id}", h.get)                    // GET    /api/deals/{id}
		r.Put("/{id}", h.update)                 // PUT    /api/deals/{id}
		r.Delete("/{id}", h.delete)              // DELETE /api/deals/{id}
		r.Patch("/{id}/status", h.changeStatus)  // PATCH  /api/deals/{id}/status
		r.Post("/{id}/lost", h.markLost)         // POST   /api/deals/{id}/lost
		r.Post("/{id}/reactivate", h.reactivate) // POST   /api/deals/{id}/reactivate
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	deals, err := h.service.ListDeals(r.Context(), ListFilter{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	if deals == nil {
		deals = []*Deal{}
	}
	respond(w, http.StatusOK, deals)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := h.service.CreateDeal(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, d)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := h.service.UpdateDeal(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDeal(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) markLost(w http.ResponseWriter, r *http.Request) {
	var req MarkLostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := h.service.MarkLost(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Reactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, ErrLossDetailsRequired), errors.Is(err, ErrNotClosed):
		code = http.StatusUnprocessableEntity
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
