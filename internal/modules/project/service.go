package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
)

// Deals looks up the deal a project is created from.
type Deals interface {
	GetDeal(ctx context.Context, id string) (*deal.Deal, error)
}

// Service defines project business logic.
type Service interface {
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context, status string) ([]*Project, error)
	UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error)
	ChangeStatus(ctx context.Context, id string, req ChangeStatusRequest) (*Project, error)
	// ToggleChecklistItem persists one checklist tick. It never moves the
	// project to another stage.
	ToggleChecklistItem(ctx context.Context, id string, req ToggleItemRequest) (*Project, error)
	Progress(ctx context.Context, id string) ([]StageProgress, error)
	Tasks(ctx context.Context) ([]Task, error)
	DeleteProject(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	deals  Deals
	events events.Publisher
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates a new project service.
func NewService(repo Repository, deals Deals, pub events.Publisher, log zerolog.Logger) Service {
	return &service{
		repo:   repo,
		deals:  deals,
		events: pub,
		log:    log.With().Str("module", "project").Logger(),
		now:    time.Now,
	}
}

func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	p := &Project{
		ID:              uuid.New(),
		ProjectName:     strings.TrimSpace(req.ProjectName),
		ClientName:      strings.TrimSpace(req.ClientName),
		ClientEmail:     strings.TrimSpace(req.ClientEmail),
		Organization:    strings.TrimSpace(req.Organization),
		EventTitle:      strings.TrimSpace(req.EventTitle),
		EventDate:       req.EventDate,
		EventLocation:   strings.TrimSpace(req.EventLocation),
		SpeakerName:     strings.TrimSpace(req.SpeakerName),
		SpeakerFee:      req.SpeakerFee.Float(),
		Budget:          req.Budget.Float(),
		Status:          StageInvoicing,
		StageCompletion: Checklist{},
		Notes:           req.Notes,
	}

	if req.Status != "" {
		status := Stage(strings.ToLower(req.Status))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
		}
		p.Status = status
	}
	if req.ContractID != "" {
		cid, err := uuid.Parse(req.ContractID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid contract_id %q", ErrValidation, req.ContractID)
		}
		p.ContractID = &cid
	}
	if req.DealID != "" {
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
		fillFromDeal(p, d)
	}

	if p.ProjectName == "" {
		p.ProjectName = p.EventTitle
	}
	if p.ProjectName == "" {
		return nil, fmt.Errorf("%w: project_name is required", ErrValidation)
	}
	if p.SpeakerFee < 0 || p.Budget < 0 {
		return nil, fmt.Errorf("%w: amounts cannot be negative", ErrValidation)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist project: %w", err)
	}
	s.log.Info().Str("project_id", p.ID.String()).Str("status", string(p.Status)).Msg("project created")
	return p, nil
}

// fillFromDeal copies client and event fields the form left blank.
func fillFromDeal(p *Project, d *deal.Deal) {
	id := d.ID
	p.DealID = &id
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&p.ClientName, d.ClientName)
	fill(&p.ClientEmail, d.ClientEmail)
	fill(&p.Organization, d.Organization)
	fill(&p.EventTitle, d.EventTitle)
	fill(&p.EventLocation, d.EventLocation)
	fill(&p.SpeakerName, d.SpeakerName)
	if p.EventDate.IsZero() {
		p.EventDate = d.EventDate
	}
	if p.SpeakerFee == 0 {
		p.SpeakerFee = d.SpeakerFee
	}
	if p.Budget == 0 {
		p.Budget = d.DealValue
	}
}

func (s *service) GetProject(ctx context.Context, id string) (*Project, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) ListProjects(ctx context.Context, status string) ([]*Project, error) {
	if status != "" && !Stage(status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.List(ctx, status)
}

func (s *service) UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := p.Status

	if req.ProjectName != nil {
		if strings.TrimSpace(*req.ProjectName) == "" {
			return nil, fmt.Errorf("%w: project_name cannot be empty", ErrValidation)
		}
		p.ProjectName = strings.TrimSpace(*req.ProjectName)
	}
	setString(&p.ClientName, req.ClientName)
	setString(&p.ClientEmail, req.ClientEmail)
	setString(&p.Organization, req.Organization)
	setString(&p.EventTitle, req.EventTitle)
	setString(&p.EventLocation, req.EventLocation)
	setString(&p.SpeakerName, req.SpeakerName)
	setString(&p.Notes, req.Notes)
	if req.EventDate != nil {
		p.EventDate = *req.EventDate
	}
	if req.SpeakerFee != nil {
		p.SpeakerFee = req.SpeakerFee.Float()
	}
	if req.Budget != nil {
		p.Budget = req.Budget.Float()
	}
	if req.Status != nil {
		next := Stage(strings.ToLower(*req.Status))
		if next != p.Status {
			if err := CheckStatusChange(p.Status, next); err != nil {
				return nil, err
			}
			p.Status = next
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, p, previous)
	return p, nil
}

func (s *service) ChangeStatus(ctx context.Context, id string, req ChangeStatusRequest) (*Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := p.Status
	next := Stage(strings.ToLower(req.Status))
	if next == previous {
		return p, nil
	}
	if err := CheckStatusChange(previous, next); err != nil {
		return nil, err
	}
	p.Status = next
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, p, previous)
	return p, nil
}

func (s *service) afterStatusChange(ctx context.Context, p *Project, previous Stage) {
	if p.Status == previous {
		return
	}
	s.log.Info().
		Str("project_id", p.ID.String()).
		Str("from", string(previous)).
		Str("to", string(p.Status)).
		Msg("project stage changed")
	s.events.Publish(ctx, events.ProjectStageChange, map[string]interface{}{
		"project_id": p.ID.String(),
		"from":       previous,
		"to":         p.Status,
	})
}

func (s *service) ToggleChecklistItem(ctx context.Context, id string, req ToggleItemRequest) (*Project, error) {
	stage := Stage(strings.ToLower(req.Stage))
	if err := ValidateItem(stage, req.Task); err != nil {
		return nil, err
	}
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.StageCompletion = p.StageCompletion.SetItem(stage, req.Task, req.Completed)
	if err := s.repo.UpdateChecklist(ctx, p.ID, p.StageCompletion); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("project_id", p.ID.String()).
		Str("stage", string(stage)).
		Str("task", req.Task).
		Bool("completed", req.Completed).
		Msg("checklist item toggled")
	return p, nil
}

func (s *service) Progress(ctx context.Context, id string) ([]StageProgress, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return Progress(p.Status, p.StageCompletion), nil
}

func (s *service) Tasks(ctx context.Context) ([]Task, error) {
	projects, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return Tasks(projects, s.now()), nil
}

func (s *service) DeleteProject(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	s.log.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return uid, nil
}
