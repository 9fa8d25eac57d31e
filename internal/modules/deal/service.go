package deal

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/auth"
)

// Service defines the deal pipeline business logic.
type Service interface {
	// CreateDeal stores a new lead from the New Deal form.
	CreateDeal(ctx context.Context, req CreateDealRequest) (*Deal, error)

	GetDeal(ctx context.Context, id string) (*Deal, error)
	ListDeals(ctx context.Context, f ListFilter) ([]*Deal, error)

	// UpdateDeal applies a partial update. A status in the payload follows the
	// same rules as ChangeStatus.
	UpdateDeal(ctx context.Context, id string, req UpdateDealRequest) (*Deal, error)

	// ChangeStatus is the quick-status path. It refuses lost and turns a move
	// from won/lost back to lead into a reactivation.
	ChangeStatus(ctx context.Context, id string, req ChangeStatusRequest) (*Deal, error)

	// MarkLost closes the deal with the loss dialog's details.
	MarkLost(ctx context.Context, id string, req MarkLostRequest) (*Deal, error)

	// Reactivate reopens a won or lost deal as a lead.
	Reactivate(ctx context.Context, id string) (*Deal, error)

	DeleteDeal(ctx context.Context, id string) error

	// RecordDocument stores the link and send time of a generated contract or
	// invoice on the deal.
	RecordDocument(ctx context.Context, id string, doc Document, url string, sentAt time.Time) error
}

type service struct {
	repo              Repository
	events            events.Publisher
	log               zerolog.Logger
	defaultCommission float64
	now               func() time.Time
}

// Option customises the service.
type Option func(*service)

// WithDefaultCommission sets the percentage stored on new deals.
func WithDefaultCommission(pct float64) Option {
	return func(s *service) { s.defaultCommission = pct }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new deal service.
func NewService(repo Repository, pub events.Publisher, log zerolog.Logger, opts ...Option) Service {
	s := &service{
		repo:              repo,
		events:            pub,
		log:               log.With().Str("module", "deal").Logger(),
		defaultCommission: DefaultCommissionPercent,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateDeal(ctx context.Context, req CreateDealRequest) (*Deal, error) {
	if strings.TrimSpace(req.ClientName) == "" {
		return nil, fmt.Errorf("%w: client_name is required", ErrValidation)
	}
	if strings.TrimSpace(req.EventTitle) == "" {
		return nil, fmt.Errorf("%w: event_title is required", ErrValidation)
	}
	if err := validateEmail(req.ClientEmail); err != nil {
		return nil, err
	}
	if req.DealValue < 0 {
		return nil, fmt.Errorf("%w: deal_value cannot be negative", ErrValidation)
	}

	priority := PriorityMedium
	if req.Priority != "" {
		priority = Priority(strings.ToLower(req.Priority))
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, req.Priority)
		}
	}

	pct := s.defaultCommission
	if req.CommissionPercentage != nil {
		pct = req.CommissionPercentage.Float()
		if err := checkPercentage(pct); err != nil {
			return nil, err
		}
	}

	d := &Deal{
		ID:                   uuid.New(),
		ClientName:           strings.TrimSpace(req.ClientName),
		ClientEmail:          strings.TrimSpace(req.ClientEmail),
		ClientPhone:          req.ClientPhone,
		Organization:         req.Organization,
		EventTitle:           strings.TrimSpace(req.EventTitle),
		EventDate:            req.EventDate,
		EventLocation:        req.EventLocation,
		EventType:            req.EventType,
		AttendeeCount:        req.AttendeeCount,
		SpeakerName:          req.SpeakerName,
		SpeakerFee:           req.SpeakerFee.Float(),
		DealValue:            req.DealValue.Float(),
		Status:               StatusLead,
		Priority:             priority,
		Source:               req.Source,
		Notes:                req.Notes,
		CommissionPercentage: &pct,
		PaymentStatus:        PaymentPending,
	}
	if req.CommissionAmount != nil && req.CommissionAmount.Float() != 0 {
		amount := req.CommissionAmount.Float()
		d.CommissionAmount = &amount
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to persist deal: %w", err)
	}
	s.log.Info().Str("deal_id", d.ID.String()).Str("client", d.ClientName).Msg("deal created")
	return withCommission(d), nil
}

func (s *service) GetDeal(ctx context.Context, id string) (*Deal, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return withCommission(d), nil
}

func (s *service) ListDeals(ctx context.Context, f ListFilter) ([]*Deal, error) {
	if f.Status != "" && !Status(f.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	deals, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, d := range deals {
		withCommission(d)
	}
	return deals, nil
}

func (s *service) UpdateDeal(ctx context.Context, id string, req UpdateDealRequest) (*Deal, error) {
	d, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := d.Status

	if err := applyUpdate(d, req); err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := s.transition(d, previous, Status(strings.ToLower(*req.Status))); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, d, previous)
	return withCommission(d), nil
}

func (s *service) ChangeStatus(ctx context.Context, id string, req ChangeStatusRequest) (*Deal, error) {
	d, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := d.Status
	if err := s.transition(d, previous, Status(strings.ToLower(req.Status))); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, d, previous)
	return withCommission(d), nil
}

// transition applies the quick-status rules to d in memory.
func (s *service) transition(d *Deal, current, next Status) error {
	if next == current {
		return nil
	}
	if err := CheckStatusChange(next); err != nil {
		return err
	}
	if IsReactivation(current, next) {
		return Reactivate(d, s.now())
	}
	ApplyStatus(d, next, s.now())
	return nil
}

func (s *service) afterTransition(ctx context.Context, d *Deal, previous Status) {
	if d.Status == previous {
		return
	}
	by := actor(ctx)
	s.log.Info().
		Str("deal_id", d.ID.String()).
		Str("from", string(previous)).
		Str("to", string(d.Status)).
		Str("actor", by).
		Msg("deal status changed")

	payload := map[string]interface{}{
		"deal_id":    d.ID.String(),
		"from":       previous,
		"to":         d.Status,
		"deal_value": d.DealValue,
	}
	if by != "" {
		payload["actor"] = by
	}
	switch {
	case d.Status == StatusWon:
		s.events.Publish(ctx, events.DealWon, payload)
	case d.Status == StatusLost:
		s.events.Publish(ctx, events.DealLost, payload)
	case IsReactivation(previous, d.Status):
		s.events.Publish(ctx, events.DealReactivated, payload)
	}
}

// actor is the authenticated admin behind ctx, or "" outside a request.
func actor(ctx context.Context) string {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return ""
	}
	return p.Actor()
}

func (s *service) MarkLost(ctx context.Context, id string, req MarkLostRequest) (*Deal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := d.Status
	ApplyLoss(d, req)
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, d, previous)
	return withCommission(d), nil
}

func (s *service) Reactivate(ctx context.Context, id string) (*Deal, error) {
	d, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := d.Status
	if err := Reactivate(d, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, d, previous)
	return withCommission(d), nil
}

func (s *service) DeleteDeal(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	s.log.Info().Str("deal_id", id).Msg("deal deleted")
	return nil
}

func (s *service) RecordDocument(ctx context.Context, id string, doc Document, url string, sentAt time.Time) error {
	d, err := s.GetDeal(ctx, id)
	if err != nil {
		return err
	}
	at := sentAt.UTC()
	switch doc {
	case DocumentContract:
		if url != "" {
			d.ContractURL = url
		}
		d.ContractSentDate = &at
	case DocumentInvoice:
		if url != "" {
			d.InvoiceURL = url
		}
		d.InvoiceSentDate = &at
	default:
		return fmt.Errorf("%w: unknown document %q", ErrValidation, doc)
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return err
	}
	s.log.Info().Str("deal_id", id).Str("document", string(doc)).Msg("document recorded on deal")
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func applyUpdate(d *Deal, req UpdateDealRequest) error {
	if req.ClientName != nil {
		if strings.TrimSpace(*req.ClientName) == "" {
			return fmt.Errorf("%w: client_name cannot be empty", ErrValidation)
		}
		d.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.ClientEmail != nil {
		if err := validateEmail(*req.ClientEmail); err != nil {
			return err
		}
		d.ClientEmail = strings.TrimSpace(*req.ClientEmail)
	}
	if req.EventTitle != nil {
		if strings.TrimSpace(*req.EventTitle) == "" {
			return fmt.Errorf("%w: event_title cannot be empty", ErrValidation)
		}
		d.EventTitle = strings.TrimSpace(*req.EventTitle)
	}
	setString(&d.ClientPhone, req.ClientPhone)
	setString(&d.Organization, req.Organization)
	setString(&d.EventLocation, req.EventLocation)
	setString(&d.EventType, req.EventType)
	setString(&d.SpeakerName, req.SpeakerName)
	setString(&d.Source, req.Source)
	setString(&d.Notes, req.Notes)
	setString(&d.ContractURL, req.ContractURL)
	setString(&d.InvoiceURL, req.InvoiceURL)

	if req.EventDate != nil {
		d.EventDate = *req.EventDate
	}
	if req.AttendeeCount != nil {
		d.AttendeeCount = *req.AttendeeCount
	}
	if req.SpeakerFee != nil {
		d.SpeakerFee = req.SpeakerFee.Float()
	}
	if req.DealValue != nil {
		if req.DealValue.Float() < 0 {
			return fmt.Errorf("%w: deal_value cannot be negative", ErrValidation)
		}
		d.DealValue = req.DealValue.Float()
	}
	if req.Priority != nil {
		p := Priority(strings.ToLower(*req.Priority))
		if !p.Valid() {
			return fmt.Errorf("%w: unknown priority %q", ErrValidation, *req.Priority)
		}
		d.Priority = p
	}
	if req.CommissionPercentage != nil {
		pct := req.CommissionPercentage.Float()
		if err := checkPercentage(pct); err != nil {
			return err
		}
		d.CommissionPercentage = &pct
	}
	if req.CommissionAmount != nil {
		amount := req.CommissionAmount.Float()
		if amount == 0 {
			d.CommissionAmount = nil
		} else {
			d.CommissionAmount = &amount
		}
	}
	if req.PaymentStatus != nil {
		ps := PaymentStatus(strings.ToLower(*req.PaymentStatus))
		if !ps.Valid() {
			return fmt.Errorf("%w: unknown payment_status %q", ErrValidation, *req.PaymentStatus)
		}
		d.PaymentStatus = ps
	}
	if req.PartialPaymentAmount != nil {
		d.PartialPaymentAmount = req.PartialPaymentAmount.Float()
	}
	if req.PaymentDate != nil {
		d.PaymentDate = *req.PaymentDate
	}
	if req.WonDate != nil {
		d.WonDate = *req.WonDate
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: client_email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: client_email %q is not a valid address", ErrValidation, email)
	}
	return nil
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return uid, nil
}

func checkPercentage(pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: commission_percentage must be between 0 and 100", ErrValidation)
	}
	return nil
}
