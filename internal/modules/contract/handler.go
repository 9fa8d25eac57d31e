package contract

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes contract HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/contracts", func(r chi.Router) {
		r.Get("/", h.list)                      // GET   /api/contracts?deal_id=&status=
		r.Post("/", h.create)                   // POST  /api/contracts
		r.Get("/{id}", h.get)                   // GET   /api/contracts/{id}
		r.Get("/{id}/preview", h.preview)       // GET   /api/contracts/{id}/preview
		r.Post("/{id}/send", h.send)            // POST  /api/contracts/{id}/send
		r.Patch("/{id}/status", h.updateStatus) // PATCH /api/contracts/{id}/status
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.service.ListContracts(r.Context(), r.URL.Query().Get("deal_id"), r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, err)
		return
	}
	if contracts == nil {
		contracts = []*Contract{}
	}
	respond(w, http.StatusOK, contracts)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.CreateContract(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.SendContract(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition):
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
