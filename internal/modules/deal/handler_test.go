package deal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(seed ...*Deal) (*chi.Mux, *memoryRepo) {
	svc, repo, _ := newTestService(seed...)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r, repo
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAcceptsStringAmounts(t *testing.T) {
	r, _ := newTestRouter()

	rec := do(r, http.MethodPost, "/api/deals", `{
		"client_name": "Acme Corp",
		"client_email": "events@acme.test",
		"event_title": "Annual Summit",
		"event_date": "2025-03-05",
		"deal_value": "10,000"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got Deal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 10000.0, got.DealValue)
	assert.Equal(t, 2000.0, got.Commission)
	assert.Equal(t, "2025-03-05", got.EventDate.String())
}

func TestHandler_QuickStatusLostIs422(t *testing.T) {
	d := seedDeal(StatusProposal)
	r, _ := newTestRouter(d)

	rec := do(r, http.MethodPatch, "/api/deals/"+d.ID.String()+"/status", `{"status":"lost"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestHandler_MarkLostThenReactivate(t *testing.T) {
	d := seedDeal(StatusNegotiation)
	r, repo := newTestRouter(d)

	rec := do(r, http.MethodPost, "/api/deals/"+d.ID.String()+"/lost", `{"reason":"Budget"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatusLost, repo.deals[d.ID].Status)

	rec = do(r, http.MethodPost, "/api/deals/"+d.ID.String()+"/reactivate", ``)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatusLead, repo.deals[d.ID].Status)
}

func TestHandler_NotFoundAndBadID(t *testing.T) {
	r, _ := newTestRouter()

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/deals/7f1c3c1e-9a0b-4c53-8f1e-2a3b4c5d6e7f", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/deals/abc", "").Code)
}

func TestHandler_ListReturnsEmptyArray(t *testing.T) {
	r, _ := newTestRouter()

	rec := do(r, http.MethodGet, "/api/deals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_Delete(t *testing.T) {
	d := seedDeal(StatusLead)
	r, repo := newTestRouter(d)

	rec := do(r, http.MethodDelete, "/api/deals/"+d.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.deals)
}
