package finance

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/project"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

// Deals is the part of the deal service the finance page reads and edits.
type Deals interface {
	GetDeal(ctx context.Context, id string) (*deal.Deal, error)
	ListDeals(ctx context.Context, f deal.ListFilter) ([]*deal.Deal, error)
	UpdateDeal(ctx context.Context, id string, req deal.UpdateDealRequest) (*deal.Deal, error)
}

// Projects lists projects for speaker payout figures.
type Projects interface {
	ListProjects(ctx context.Context, status string) ([]*project.Project, error)
}

// Service defines the finance page operations. Nothing here is stored: every
// figure is derived from deals and projects on each call.
type Service interface {
	// Overview loads every deal and project once and summarizes them.
	Overview(ctx context.Context) (*Overview, error)

	// Export writes the won deals as CSV.
	Export(ctx context.Context, w io.Writer) error

	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*deal.Deal, error)
	UpdateDeal(ctx context.Context, id string, req UpdateDealRequest) (*deal.Deal, error)
}

type service struct {
	deals    Deals
	projects Projects
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a new finance service.
func NewService(deals Deals, projects Projects, log zerolog.Logger) Service {
	return &service{
		deals:    deals,
		projects: projects,
		log:      log.With().Str("module", "finance").Logger(),
		now:      time.Now,
	}
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	deals, err := s.deals.ListDeals(ctx, deal.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	projects, err := s.projects.ListProjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &Overview{
		Summary: Summarize(deals, projects),
		Deals:   wonDeals(deals),
	}, nil
}

func (s *service) Export(ctx context.Context, w io.Writer) error {
	deals, err := s.deals.ListDeals(ctx, deal.ListFilter{Status: string(deal.StatusWon)})
	if err != nil {
		return fmt.Errorf("list deals: %w", err)
	}
	return ExportCSV(w, deals)
}

func (s *service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*deal.Deal, error) {
	if strings.TrimSpace(req.DealID) == "" {
		return nil, fmt.Errorf("%w: deal_id is required", ErrValidation)
	}
	d, err := s.deals.GetDeal(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	if d.Status != deal.StatusWon {
		return nil, ErrDealNotWon
	}

	status := deal.PaymentStatus(strings.ToLower(req.PaymentStatus))
	upd := deal.UpdateDealRequest{}
	switch status {
	case deal.PaymentPaid:
		date := calendar.FromTime(s.now())
		if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
			date = *req.PaymentDate
		}
		upd.PaymentDate = &date
	case deal.PaymentPartial:
		if req.PartialPaymentAmount == nil || req.PartialPaymentAmount.Float() <= 0 {
			return nil, fmt.Errorf("%w: partial_payment_amount must be greater than zero", ErrValidation)
		}
		if req.PartialPaymentAmount.Float() >= d.DealValue {
			return nil, fmt.Errorf("%w: a partial payment must be less than the deal value %s",
				ErrValidation, money.Format(d.DealValue))
		}
		upd.PartialPaymentAmount = req.PartialPaymentAmount
		upd.PaymentDate = req.PaymentDate
	case deal.PaymentPending:
		var zero money.Amount
		upd.PartialPaymentAmount = &zero
	default:
		return nil, fmt.Errorf("%w: unknown payment_status %q", ErrValidation, req.PaymentStatus)
	}
	ps := string(status)
	upd.PaymentStatus = &ps

	updated, err := s.deals.UpdateDeal(ctx, req.DealID, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("deal_id", req.DealID).Str("payment_status", ps).Msg("payment recorded")
	return updated, nil
}

func (s *service) UpdateDeal(ctx context.Context, id string, req UpdateDealRequest) (*deal.Deal, error) {
	if req.CommissionAmount != nil && req.CommissionAmount.Float() < 0 {
		return nil, fmt.Errorf("%w: commission_amount cannot be negative", ErrValidation)
	}
	if req.PartialPaymentAmount != nil && req.PartialPaymentAmount.Float() < 0 {
		return nil, fmt.Errorf("%w: partial_payment_amount cannot be negative", ErrValidation)
	}

	return s.deals.UpdateDeal(ctx, id, deal.UpdateDealRequest{
		CommissionPercentage: req.CommissionPercentage,
		CommissionAmount:     req.CommissionAmount,
		PaymentStatus:        req.PaymentStatus,
		PartialPaymentAmount: req.PartialPaymentAmount,
		PaymentDate:          req.PaymentDate,
		WonDate:              req.WonDate,
	})
}

func wonDeals(deals []*deal.Deal) []*deal.Deal {
	out := []*deal.Deal{}
	for _, d := range deals {
		if d.Status == deal.StatusWon {
			out = append(out, d)
		}
	}
	return out
}
