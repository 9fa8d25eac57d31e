package contract

import (
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

// Status tracks a contract through signing.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusSent            Status = "sent"
	StatusPartiallySigned Status = "partially_signed"
	StatusFullyExecuted   Status = "fully_executed"
	StatusCancelled       Status = "cancelled"
)

// EngagementType selects the engagement description paragraph.
type EngagementType string

const (
	EngagementKeynote      EngagementType = "keynote"
	EngagementWorkshop     EngagementType = "workshop"
	EngagementPanel        EngagementType = "panel"
	EngagementFiresideChat EngagementType = "fireside_chat"
)

// Format is where the speaker delivers the engagement.
type Format string

const (
	FormatInPerson Format = "in_person"
	FormatVirtual  Format = "virtual"
)

// Contract is a speaking agreement generated from a won deal.
type Contract struct {
	ID             uuid.UUID `json:"id"`
	DealID         uuid.UUID `json:"deal_id"`
	ContractNumber string    `json:"contract_number"`
	Status         Status    `json:"status"`
	Amount         float64   `json:"amount"`
	Body           string    `json:"body"`
	Terms          Terms     `json:"terms"`
	ContractURL    string    `json:"contract_url,omitempty"`
	RecipientEmail string    `json:"recipient_email,omitempty"`

	GeneratedAt time.Time  `json:"generated_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Terms are the engagement details the contract text is rendered from. They
// are stored alongside the contract so the text can be regenerated.
type Terms struct {
	SpeakerName   string        `json:"speaker_name"`
	ClientName    string        `json:"client_name"`
	Organization  string        `json:"organization,omitempty"`
	EventTitle    string        `json:"event_title"`
	EventDate     calendar.Date `json:"event_date"`
	EventLocation string        `json:"event_location,omitempty"`

	EngagementType EngagementType `json:"engagement_type"`
	Format         Format         `json:"format"`

	// Durations in minutes.
	KeynoteMinutes  int `json:"keynote_minutes,omitempty"`
	QAMinutes       int `json:"qa_minutes,omitempty"`
	WorkshopMinutes int `json:"workshop_minutes,omitempty"`

	// Clock times as "15:04".
	ArrivalTime       string `json:"arrival_time,omitempty"`
	PresentationStart string `json:"presentation_start,omitempty"`
	DepartureTime     string `json:"departure_time,omitempty"`

	Accommodation   bool   `json:"accommodation"`
	VirtualPlatform string `json:"virtual_platform,omitempty"`

	AlignmentMeeting bool `json:"alignment_meeting"`
	TechCheck        bool `json:"tech_check"`
	RecordingAllowed bool `json:"recording_allowed"`

	Fee            float64 `json:"fee"`
	DepositPercent float64 `json:"deposit_percent"`
}

// CreateContractRequest is the contract form. Blank client and event fields
// are filled from the deal.
type CreateContractRequest struct {
	DealID string       `json:"deal_id"`
	Amount money.Amount `json:"amount,omitempty"`

	SpeakerName   string        `json:"speaker_name,omitempty"`
	ClientName    string        `json:"client_name,omitempty"`
	Organization  string        `json:"organization,omitempty"`
	EventTitle    string        `json:"event_title,omitempty"`
	EventDate     calendar.Date `json:"event_date"`
	EventLocation string        `json:"event_location,omitempty"`

	EngagementType    string `json:"engagement_type"`
	Format            string `json:"format"`
	KeynoteMinutes    int    `json:"keynote_minutes,omitempty"`
	QAMinutes         int    `json:"qa_minutes,omitempty"`
	WorkshopMinutes   int    `json:"workshop_minutes,omitempty"`
	ArrivalTime       string `json:"arrival_time,omitempty"`
	PresentationStart string `json:"presentation_start,omitempty"`
	DepartureTime     string `json:"departure_time,omitempty"`
	Accommodation     bool   `json:"accommodation"`
	VirtualPlatform   string `json:"virtual_platform,omitempty"`
	AlignmentMeeting  bool   `json:"alignment_meeting"`
	TechCheck         bool   `json:"tech_check"`
	RecordingAllowed  bool   `json:"recording_allowed"`

	DepositPercent money.Amount `json:"deposit_percent,omitempty"`
}

// SendRequest carries the recipient of a contract email.
type SendRequest struct {
	RecipientEmail string `json:"recipient_email"`
}

// UpdateStatusRequest records signing progress.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// PreviewResponse is the highlighted HTML shown before sending.
type PreviewResponse struct {
	ContractNumber string `json:"contract_number"`
	HTML           string `json:"html"`
}

// ListFilter narrows the contract list.
type ListFilter struct {
	DealID *uuid.UUID
	Status string
}
