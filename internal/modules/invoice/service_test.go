package invoice

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/project"
)

type memoryRepo struct{ invoices map[uuid.UUID]*Invoice }

func (r *memoryRepo) Create(_ context.Context, inv *Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *memoryRepo) GetByNumber(_ context.Context, number string) (*Invoice, error) {
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) List(_ context.Context, f ListFilter) ([]*Invoice, error) {
	var out []*Invoice
	for _, inv := range r.invoices {
		if f.ProjectID != nil && inv.ProjectID != *f.ProjectID {
			continue
		}
		if f.Status != "" && string(inv.Status) != f.Status {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, inv *Invoice) error {
	if _, ok := r.invoices[inv.ID]; !ok {
		return ErrNotFound
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.invoices, id)
	return nil
}

func (r *memoryRepo) MarkOverdue(_ context.Context, today time.Time) (int64, error) {
	var n int64
	for _, inv := range r.invoices {
		if IsOverdue(inv, today) {
			inv.Status = StatusOverdue
			n++
		}
	}
	return n, nil
}

type fakeProjects map[string]*project.Project

func (f fakeProjects) GetProject(_ context.Context, id string) (*project.Project, error) {
	p, ok := f[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	return p, nil
}

type fakeDeals struct{ recorded []string }

func (f *fakeDeals) RecordDocument(_ context.Context, id string, doc deal.Document, _ string, _ time.Time) error {
	f.recorded = append(f.recorded, id+":"+string(doc))
	return nil
}

var today = time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc     Service
	repo    *memoryRepo
	deals   *fakeDeals
	rec     *events.Recorder
	project *project.Project
}

func newFixture() *fixture {
	dealID := uuid.New()
	p := &project.Project{ID: uuid.New(), DealID: &dealID, ProjectName: "Summit", EventTitle: "Annual Summit", Budget: 12000}
	f := &fixture{
		repo:    &memoryRepo{invoices: map[uuid.UUID]*Invoice{}},
		deals:   &fakeDeals{},
		rec:     &events.Recorder{},
		project: p,
	}
	svc := NewService(f.repo, fakeProjects{p.ID.String(): p}, f.deals, f.rec, zerolog.Nop()).(*service)
	svc.now = func() time.Time { return today }
	f.svc = svc
	return f
}

func (f *fixture) create(t *testing.T) *Invoice {
	t.Helper()
	inv, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{ProjectID: f.project.ID.String()})
	require.NoError(t, err)
	return inv
}

func setStatus(t *testing.T, f *fixture, id uuid.UUID, status string) (*Invoice, error) {
	t.Helper()
	return f.svc.UpdateInvoice(context.Background(), id.String(), UpdateInvoiceRequest{Status: &status})
}

func TestCreateInvoice_Defaults(t *testing.T) {
	f := newFixture()
	inv := f.create(t)

	assert.Regexp(t, regexp.MustCompile(`^INV-202502-\d{4}$`), inv.InvoiceNumber)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, calendar.New(2025, 2, 10), inv.IssueDate)
	assert.Equal(t, calendar.New(2025, 3, 12), inv.DueDate)
	assert.Equal(t, 12000.0, inv.Amount)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "Speaking engagement: Annual Summit", inv.LineItems[0].Description)
}

func TestCreateInvoice_AmountFromLineItems(t *testing.T) {
	f := newFixture()
	inv, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ProjectID:     f.project.ID.String(),
		InvoiceNumber: "INV-CUSTOM-1",
		LineItems: []LineItem{
			{Description: "Keynote", Quantity: 1, UnitPrice: 8000},
			{Description: "Travel", Amount: 1250.5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-CUSTOM-1", inv.InvoiceNumber)
	assert.Equal(t, 9250.5, inv.Amount)
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{ProjectID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ProjectID: f.project.ID.String(),
		IssueDate: calendar.New(2025, 2, 10),
		DueDate:   calendar.New(2025, 2, 1),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateInvoice_Lifecycle(t *testing.T) {
	f := newFixture()
	inv := f.create(t)

	sent, err := setStatus(t, f, inv.ID, "sent")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, sent.Status)
	assert.Equal(t, []string{f.project.DealID.String() + ":invoice"}, f.deals.recorded)

	paid, err := setStatus(t, f, inv.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, calendar.New(2025, 2, 10), paid.PaymentDate)
	assert.Equal(t, []string{events.InvoicePaid}, f.rec.Subjects())

	_, err = setStatus(t, f, inv.ID, "sent")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateInvoice_AmountOnlyWhileDraft(t *testing.T) {
	f := newFixture()
	inv := f.create(t)

	newDue := calendar.New(2025, 4, 1)
	got, err := f.svc.UpdateInvoice(context.Background(), inv.ID.String(), UpdateInvoiceRequest{DueDate: &newDue})
	require.NoError(t, err)
	assert.Equal(t, newDue, got.DueDate)

	_, err = setStatus(t, f, inv.ID, "sent")
	require.NoError(t, err)

	_, err = f.svc.UpdateInvoice(context.Background(), inv.ID.String(), UpdateInvoiceRequest{DueDate: &newDue})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestListInvoices_SweepsOverdue(t *testing.T) {
	f := newFixture()
	inv, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ProjectID: f.project.ID.String(),
		IssueDate: calendar.New(2025, 1, 1),
		DueDate:   calendar.New(2025, 1, 31),
	})
	require.NoError(t, err)
	_, err = setStatus(t, f, inv.ID, "sent")
	require.NoError(t, err)

	list, err := f.svc.ListInvoices(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, StatusOverdue, list[0].Status)

	paid, err := setStatus(t, f, inv.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
}

func TestDeleteInvoice(t *testing.T) {
	f := newFixture()
	draft := f.create(t)
	sent := f.create(t)
	_, err := setStatus(t, f, sent.ID, "sent")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteInvoice(context.Background(), sent.ID.String()), ErrNotDeletable)
	require.NoError(t, f.svc.DeleteInvoice(context.Background(), draft.ID.String()))
	assert.Len(t, f.repo.invoices, 1)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusSent))
	assert.True(t, CanTransition(StatusSent, StatusOverdue))
	assert.True(t, CanTransition(StatusOverdue, StatusPaid))
	assert.False(t, CanTransition(StatusDraft, StatusPaid))
	assert.False(t, CanTransition(StatusPaid, StatusCancelled))
}

func TestLineItemsTotal(t *testing.T) {
	assert.Equal(t, 0.0, LineItemsTotal(nil))
	assert.Equal(t, 350.0, LineItemsTotal([]LineItem{{Quantity: 2, UnitPrice: 100}, {Amount: 150}}))
}
