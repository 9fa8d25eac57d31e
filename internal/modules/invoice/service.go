package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/project"
)

// Projects looks up the project an invoice bills.
type Projects interface {
	GetProject(ctx context.Context, id string) (*project.Project, error)
}

// Deals records invoice sends on the originating deal.
type Deals interface {
	RecordDocument(ctx context.Context, id string, doc deal.Document, url string, sentAt time.Time) error
}

// Service defines invoice business logic.
type Service interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	// ListInvoices sweeps overdue invoices before listing.
	ListInvoices(ctx context.Context, projectID, status string) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (*Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	MarkOverdue(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	projects Projects
	deals    Deals
	events   events.Publisher
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a new invoice service.
func NewService(repo Repository, projects Projects, deals Deals, pub events.Publisher, log zerolog.Logger) Service {
	return &service{
		repo:     repo,
		projects: projects,
		deals:    deals,
		events:   pub,
		log:      log.With().Str("module", "invoice").Logger(),
		now:      time.Now,
	}
}

func (s *service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrValidation)
	}
	p, err := s.projects.GetProject(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) || errors.Is(err, project.ErrValidation) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}

	now := s.now()
	issue := req.IssueDate
	if issue.IsZero() {
		issue = calendar.FromTime(now)
	}
	due := req.DueDate
	if due.IsZero() {
		due = calendar.FromTime(issue.AddDate(0, 0, PaymentTermDays))
	}
	if due.Before(issue.Time) {
		return nil, fmt.Errorf("%w: due_date is before issue_date", ErrValidation)
	}

	amount := req.Amount.Float()
	if amount == 0 {
		amount = LineItemsTotal(req.LineItems)
	}
	if amount == 0 {
		amount = p.Budget
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		number = generateInvoiceNumber(now)
	}

	items := req.LineItems
	if len(items) == 0 {
		items = []LineItem{{
			Description: fmt.Sprintf("Speaking engagement: %s", firstNonEmpty(p.EventTitle, p.ProjectName)),
			Quantity:    1,
			UnitPrice:   amount,
			Amount:      amount,
		}}
	}

	inv := &Invoice{
		ID:            uuid.New(),
		ProjectID:     p.ID,
		InvoiceNumber: number,
		Amount:        money.Round2(amount),
		Status:        StatusDraft,
		IssueDate:     issue,
		DueDate:       due,
		LineItems:     items,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice", inv.InvoiceNumber).Str("project_id", p.ID.String()).Float64("amount", inv.Amount).Msg("invoice created")
	return inv, nil
}

func (s *service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *service) ListInvoices(ctx context.Context, projectID, status string) ([]*Invoice, error) {
	var f ListFilter
	if projectID != "" {
		uid, err := uuid.Parse(projectID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid project_id %q", ErrValidation, projectID)
		}
		f.ProjectID = &uid
	}
	if status != "" {
		if !Status(status).Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		f.Status = status
	}
	if _, err := s.MarkOverdue(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, f)
}

func (s *service) MarkOverdue(ctx context.Context) (int64, error) {
	today := calendar.FromTime(s.now())
	n, err := s.repo.MarkOverdue(ctx, today.Time)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("count", n).Msg("invoices marked overdue")
	}
	return n, nil
}

func (s *service) UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (*Invoice, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := inv.Status

	if req.Amount != nil || req.DueDate != nil {
		if inv.Status != StatusDraft {
			return nil, fmt.Errorf("%w (invoice is %s)", ErrLocked, inv.Status)
		}
		if req.Amount != nil {
			if req.Amount.Float() < 0 {
				return nil, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
			}
			inv.Amount = money.Round2(req.Amount.Float())
		}
		if req.DueDate != nil {
			if req.DueDate.Before(inv.IssueDate.Time) {
				return nil, fmt.Errorf("%w: due_date is before issue_date", ErrValidation)
			}
			inv.DueDate = *req.DueDate
		}
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if req.PaymentReference != nil {
		inv.PaymentReference = strings.TrimSpace(*req.PaymentReference)
	}

	if req.Status != nil {
		next := Status(strings.ToLower(*req.Status))
		if next != inv.Status {
			if err := checkTransition(inv.Status, next); err != nil {
				return nil, err
			}
			inv.Status = next
			if next == StatusPaid {
				inv.PaymentDate = calendar.FromTime(s.now())
				if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
					inv.PaymentDate = *req.PaymentDate
				}
			}
		}
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	if inv.Status != previous {
		s.afterTransition(ctx, inv, previous)
	}
	return inv, nil
}

func (s *service) afterTransition(ctx context.Context, inv *Invoice, previous Status) {
	s.log.Info().
		Str("invoice", inv.InvoiceNumber).
		Str("from", string(previous)).
		Str("to", string(inv.Status)).
		Msg("invoice status changed")

	switch inv.Status {
	case StatusSent:
		s.recordOnDeal(ctx, inv)
	case StatusPaid:
		s.events.Publish(ctx, events.InvoicePaid, map[string]interface{}{
			"invoice_id":     inv.ID.String(),
			"invoice_number": inv.InvoiceNumber,
			"project_id":     inv.ProjectID.String(),
			"amount":         inv.Amount,
			"payment_date":   inv.PaymentDate.String(),
		})
	}
}

// recordOnDeal stamps the invoice send on the deal the project came from.
func (s *service) recordOnDeal(ctx context.Context, inv *Invoice) {
	p, err := s.projects.GetProject(ctx, inv.ProjectID.String())
	if err != nil || p.DealID == nil {
		return
	}
	if err := s.deals.RecordDocument(ctx, p.DealID.String(), deal.DocumentInvoice, "", s.now()); err != nil {
		s.log.Warn().Err(err).Str("invoice", inv.InvoiceNumber).Msg("invoice sent but deal not updated")
	}
}

func (s *service) DeleteInvoice(ctx context.Context, id string) error {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if !inv.Status.Deletable() {
		return fmt.Errorf("%w (invoice is %s)", ErrNotDeletable, inv.Status)
	}
	if err := s.repo.Delete(ctx, inv.ID); err != nil {
		return err
	}
	s.log.Info().Str("invoice", inv.InvoiceNumber).Msg("invoice deleted")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

