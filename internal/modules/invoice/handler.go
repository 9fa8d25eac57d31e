package invoice

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes invoice HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/invoices", func(r chi.Router) {
		r.Get("/", h.list)                       // GET    /api/invoices?project_id=&status=
		r.Post("/", h.create)                    // POST   /api/invoices
		r.Get("/number/{number}", h.getByNumber) // GET    /api/invoices/number/{number}
		r.Get("/{id}", h.get)                    // GET    /api/invoices/{id}
		r.Patch("/{id}", h.update)               // PATCH  /api/invoices/{id}
		r.Delete("/{id}", h.delete)              // DELETE /api/invoices/{id}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invs, err := h.service.ListInvoices(r.Context(), r.URL.Query().Get("project_id"), r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, err)
		return
	}
	if invs == nil {
		invs = []*Invoice{}
	}
	respond(w, http.StatusOK, invs)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoiceByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inv, err := h.service.UpdateInvoice(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrLocked), errors.Is(err, ErrNotDeletable):
		code = http.StatusConflict
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
