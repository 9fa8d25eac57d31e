package finance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
)

func newTestRouter(deals ...*deal.Deal) *chi.Mux {
	svc, _ := newTestService(deals...)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Overview(t *testing.T) {
	r := newTestRouter(wonDeal(8000, deal.PaymentPending, calendar.Date{}))

	rec := do(r, http.MethodGet, "/api/admin/finances", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ov Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Equal(t, 8000.0, ov.Summary.PendingRevenue)
	assert.Equal(t, 1600.0, ov.Summary.PendingCommission)
}

func TestHandler_Export(t *testing.T) {
	r := newTestRouter(wonDeal(8000, deal.PaymentPending, calendar.Date{}))

	rec := do(r, http.MethodGet, "/api/admin/finances/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Client,"))
}

func TestHandler_RecordPaymentErrors(t *testing.T) {
	open := &deal.Deal{ID: uuid.New(), Status: deal.StatusLead}
	r := newTestRouter(open)

	rec := do(r, http.MethodPost, "/api/admin/finances", `{"deal_id":"`+open.ID.String()+`","payment_status":"paid"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(r, http.MethodPost, "/api/admin/finances", `{"deal_id":"`+uuid.NewString()+`","payment_status":"paid"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPost, "/api/admin/finances", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UpdateDealAcceptsStringAmounts(t *testing.T) {
	d := wonDeal(10000, deal.PaymentPending, calendar.Date{})
	r := newTestRouter(d)

	rec := do(r, http.MethodPut, "/api/admin/finances/deals/"+d.ID.String(), `{"commission_amount":"1,200"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got deal.Deal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.CommissionAmount)
	assert.Equal(t, 1200.0, *got.CommissionAmount)
}
