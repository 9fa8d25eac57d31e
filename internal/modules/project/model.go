package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

// Stage is a project's position in the delivery pipeline.
type Stage string

const (
	StageInvoicing         Stage = "invoicing"
	StageLogisticsPlanning Stage = "logistics_planning"
	StagePreEvent          Stage = "pre_event"
	StageEventWeek         Stage = "event_week"
	StageFollowUp          Stage = "follow_up"
	StageCompleted         Stage = "completed"
	StageCancelled         Stage = "cancelled"
)

// Checklist records ticked items per stage: stage → item → done.
type Checklist map[Stage]map[string]bool

// Project is the delivery of a won engagement.
type Project struct {
	ID              uuid.UUID     `json:"id"`
	DealID          *uuid.UUID    `json:"deal_id,omitempty"`
	ContractID      *uuid.UUID    `json:"contract_id,omitempty"`
	ProjectName     string        `json:"project_name"`
	ClientName      string        `json:"client_name"`
	ClientEmail     string        `json:"client_email,omitempty"`
	Organization    string        `json:"organization,omitempty"`
	EventTitle      string        `json:"event_title"`
	EventDate       calendar.Date `json:"event_date"`
	EventLocation   string        `json:"event_location,omitempty"`
	SpeakerName     string        `json:"speaker_name,omitempty"`
	SpeakerFee      float64       `json:"speaker_fee"`
	Budget          float64       `json:"budget"`
	Status          Stage         `json:"status"`
	StageCompletion Checklist     `json:"stage_completion"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CreateProjectRequest is the New Project form. Blank client and event
// fields are copied from the linked deal.
type CreateProjectRequest struct {
	DealID        string        `json:"deal_id,omitempty"`
	ContractID    string        `json:"contract_id,omitempty"`
	ProjectName   string        `json:"project_name"`
	ClientName    string        `json:"client_name,omitempty"`
	ClientEmail   string        `json:"client_email,omitempty"`
	Organization  string        `json:"organization,omitempty"`
	EventTitle    string        `json:"event_title,omitempty"`
	EventDate     calendar.Date `json:"event_date"`
	EventLocation string        `json:"event_location,omitempty"`
	SpeakerName   string        `json:"speaker_name,omitempty"`
	SpeakerFee    money.Amount  `json:"speaker_fee,omitempty"`
	Budget        money.Amount  `json:"budget,omitempty"`
	Status        string        `json:"status,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// UpdateProjectRequest carries a partial update; nil fields are left unchanged.
type UpdateProjectRequest struct {
	ProjectName   *string        `json:"project_name,omitempty"`
	ClientName    *string        `json:"client_name,omitempty"`
	ClientEmail   *string        `json:"client_email,omitempty"`
	Organization  *string        `json:"organization,omitempty"`
	EventTitle    *string        `json:"event_title,omitempty"`
	EventDate     *calendar.Date `json:"event_date,omitempty"`
	EventLocation *string        `json:"event_location,omitempty"`
	SpeakerName   *string        `json:"speaker_name,omitempty"`
	SpeakerFee    *money.Amount  `json:"speaker_fee,omitempty"`
	Budget        *money.Amount  `json:"budget,omitempty"`
	Status        *string        `json:"status,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

// ChangeStatusRequest moves a project to another stage.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// ToggleItemRequest ticks or unticks one checklist item.
type ToggleItemRequest struct {
	Stage     string `json:"stage"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// ProgressState is how a stage is drawn on the progress bar.
type ProgressState string

const (
	ProgressDone    ProgressState = "done"
	ProgressCurrent ProgressState = "current"
	ProgressPending ProgressState = "pending"
)

// StageProgress is one segment of the progress bar.
type StageProgress struct {
	Stage Stage         `json:"stage"`
	State ProgressState `json:"state"`
	// Items lists the checklist of the stage with its ticked state.
	Items []ChecklistItem `json:"items"`
}

// ChecklistItem is a checklist entry with its current value.
type ChecklistItem struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// Urgency ranks a task by how close the event is.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Task is an open checklist item of a project's current stage.
type Task struct {
	ProjectID   uuid.UUID     `json:"project_id"`
	ProjectName string        `json:"project_name"`
	ClientName  string        `json:"client_name"`
	Stage       Stage         `json:"stage"`
	Item        string        `json:"item"`
	Label       string        `json:"label"`
	EventDate   calendar.Date `json:"event_date"`
	DaysUntil   *int          `json:"days_until,omitempty"`
	Urgency     Urgency       `json:"urgency"`
}
