package contract

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/storage"
)

// Deals is the part of the deal service contracts depend on.
type Deals interface {
	GetDeal(ctx context.Context, id string) (*deal.Deal, error)
	RecordDocument(ctx context.Context, id string, doc deal.Document, url string, sentAt time.Time) error
}

// Service defines contract business logic.
type Service interface {
	CreateContract(ctx context.Context, req CreateContractRequest) (*Contract, error)
	GetContract(ctx context.Context, id string) (*Contract, error)
	ListContracts(ctx context.Context, dealID, status string) ([]*Contract, error)
	Preview(ctx context.Context, id string) (*PreviewResponse, error)
	SendContract(ctx context.Context, id string, req SendRequest) (*Contract, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Contract, error)
}

type service struct {
	repo   Repository
	deals  Deals
	store  storage.DocumentStore
	events events.Publisher
	log    zerolog.Logger
	agency string
	now    func() time.Time
}

// NewService creates a new contract service. agency is the party name used in
// generated agreements.
func NewService(repo Repository, deals Deals, store storage.DocumentStore, pub events.Publisher, log zerolog.Logger, agency string) Service {
	return &service{
		repo:   repo,
		deals:  deals,
		store:  store,
		events: pub,
		log:    log.With().Str("module", "contract").Logger(),
		agency: agency,
		now:    time.Now,
	}
}

func (s *service) CreateContract(ctx context.Context, req CreateContractRequest) (*Contract, error) {
	if req.DealID == "" {
		return nil, fmt.Errorf("%w: deal_id is required", ErrValidation)
	}
	d, err := s.deals.GetDeal(ctx, req.DealID)
	if err != nil {
		if errors.Is(err, deal.ErrNotFound) || errors.Is(err, deal.ErrValidation) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	if d.Status != deal.StatusWon {
		return nil, fmt.Errorf("%w (deal is %s)", ErrDealNotWon, d.Status)
	}

	amount := req.Amount.Float()
	if amount == 0 {
		amount = d.DealValue
	}
	terms := termsFromRequest(req, d, amount)
	body, err := Render(s.agency, terms)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &Contract{
		ID:             uuid.New(),
		DealID:         d.ID,
		ContractNumber: ReferenceNumber(terms.EventDate),
		Status:         StatusDraft,
		Amount:         amount,
		Body:           body,
		Terms:          terms,
		GeneratedAt:    now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to persist contract: %w", err)
	}
	s.log.Info().Str("contract_id", c.ID.String()).Str("deal_id", d.ID.String()).Str("number", c.ContractNumber).Msg("contract generated")
	return c, nil
}

// termsFromRequest fills blank form fields from the deal.
func termsFromRequest(req CreateContractRequest, d *deal.Deal, amount float64) Terms {
	t := Terms{
		SpeakerName:       firstNonEmpty(req.SpeakerName, d.SpeakerName),
		ClientName:        firstNonEmpty(req.ClientName, d.ClientName),
		Organization:      firstNonEmpty(req.Organization, d.Organization),
		EventTitle:        firstNonEmpty(req.EventTitle, d.EventTitle),
		EventDate:         req.EventDate,
		EventLocation:     firstNonEmpty(req.EventLocation, d.EventLocation),
		EngagementType:    EngagementType(strings.ToLower(req.EngagementType)),
		Format:            Format(strings.ToLower(req.Format)),
		KeynoteMinutes:    req.KeynoteMinutes,
		QAMinutes:         req.QAMinutes,
		WorkshopMinutes:   req.WorkshopMinutes,
		ArrivalTime:       req.ArrivalTime,
		PresentationStart: req.PresentationStart,
		DepartureTime:     req.DepartureTime,
		Accommodation:     req.Accommodation,
		VirtualPlatform:   req.VirtualPlatform,
		AlignmentMeeting:  req.AlignmentMeeting,
		TechCheck:         req.TechCheck,
		RecordingAllowed:  req.RecordingAllowed,
		Fee:               amount,
		DepositPercent:    req.DepositPercent.Float(),
	}
	if t.EventDate.IsZero() {
		t.EventDate = d.EventDate
	}
	if t.Format == "" {
		t.Format = FormatInPerson
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (s *service) GetContract(ctx context.Context, id string) (*Contract, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) ListContracts(ctx context.Context, dealID, status string) ([]*Contract, error) {
	var f ListFilter
	if dealID != "" {
		uid, err := uuid.Parse(dealID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid deal_id %q", ErrValidation, dealID)
		}
		f.DealID = &uid
	}
	if status != "" {
		if !Status(status).Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		f.Status = status
	}
	return s.repo.List(ctx, f)
}

func (s *service) Preview(ctx context.Context, id string) (*PreviewResponse, error) {
	c, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PreviewResponse{
		ContractNumber: c.ContractNumber,
		HTML:           Preview(c.Body, Highlights(c.Terms)),
	}, nil
}

func (s *service) SendContract(ctx context.Context, id string, req SendRequest) (*Contract, error) {
	c, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(c.Status, StatusSent); err != nil {
		return nil, err
	}
	recipient := strings.TrimSpace(req.RecipientEmail)
	if _, err := mail.ParseAddress(recipient); err != nil {
		return nil, fmt.Errorf("%w: recipient_email %q is not a valid address", ErrValidation, recipient)
	}

	key := fmt.Sprintf("contracts/%s/%s.txt", c.DealID, c.ID)
	url, err := s.store.Put(ctx, key, "text/plain; charset=utf-8", []byte(c.Body))
	if err != nil {
		return nil, fmt.Errorf("store contract document: %w", err)
	}

	now := s.now().UTC()
	c.Status = StatusSent
	c.SentAt = &now
	c.RecipientEmail = recipient
	if url != "" {
		c.ContractURL = url
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	if err := s.deals.RecordDocument(ctx, c.DealID.String(), deal.DocumentContract, c.ContractURL, now); err != nil {
		s.log.Warn().Err(err).Str("contract_id", c.ID.String()).Msg("contract sent but deal not updated")
	}

	s.events.Publish(ctx, events.ContractSent, map[string]interface{}{
		"contract_id":     c.ID.String(),
		"deal_id":         c.DealID.String(),
		"contract_number": c.ContractNumber,
		"recipient_email": recipient,
		"contract_url":    c.ContractURL,
	})
	s.log.Info().Str("contract_id", c.ID.String()).Str("recipient", recipient).Msg("contract sent")
	return c, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Contract, error) {
	c, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	next := Status(strings.ToLower(req.Status))
	if next == StatusSent {
		return nil, fmt.Errorf("%w: use the send endpoint to send a contract", ErrInvalidTransition)
	}
	if err := checkTransition(c.Status, next); err != nil {
		return nil, err
	}
	c.Status = next
	if next == StatusFullyExecuted {
		now := s.now().UTC()
		c.CompletedAt = &now
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Str("contract_id", c.ID.String()).Str("status", string(next)).Msg("contract status updated")
	return c, nil
}
