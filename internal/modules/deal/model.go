package deal

import (
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

// Status is a deal's position in the sales pipeline.
type Status string

const (
	StatusLead        Status = "lead"
	StatusQualified   Status = "qualified"
	StatusProposal    Status = "proposal"
	StatusNegotiation Status = "negotiation"
	StatusWon         Status = "won"
	StatusLost        Status = "lost"
)

// Statuses lists the pipeline columns in display order.
var Statuses = []Status{StatusLead, StatusQualified, StatusProposal, StatusNegotiation, StatusWon, StatusLost}

// Priority ranks open deals for follow-up.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PaymentStatus tracks how much of a won deal the client has paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Document names a generated file linked from a deal.
type Document string

const (
	DocumentContract Document = "contract"
	DocumentInvoice  Document = "invoice"
)

// Deal is a sales opportunity for a speaking engagement.
type Deal struct {
	ID            uuid.UUID     `json:"id"`
	ClientName    string        `json:"client_name"`
	ClientEmail   string        `json:"client_email"`
	ClientPhone   string        `json:"client_phone,omitempty"`
	Organization  string        `json:"organization,omitempty"`
	EventTitle    string        `json:"event_title"`
	EventDate     calendar.Date `json:"event_date"`
	EventLocation string        `json:"event_location,omitempty"`
	EventType     string        `json:"event_type,omitempty"`
	AttendeeCount int           `json:"attendee_count"`
	SpeakerName   string        `json:"speaker_name,omitempty"`
	SpeakerFee    float64       `json:"speaker_fee"`
	DealValue     float64       `json:"deal_value"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	Source        string        `json:"source,omitempty"`
	Notes         string        `json:"notes"`

	LostReason       string        `json:"lost_reason,omitempty"`
	LostDetails      string        `json:"lost_details,omitempty"`
	LostFollowUp     bool          `json:"lost_follow_up"`
	LostFollowUpDate calendar.Date `json:"lost_follow_up_date"`

	CommissionPercentage *float64 `json:"commission_percentage"`
	CommissionAmount     *float64 `json:"commission_amount"`
	// Commission is derived on read and never stored.
	Commission float64 `json:"commission"`

	PaymentStatus        PaymentStatus `json:"payment_status"`
	PartialPaymentAmount float64       `json:"partial_payment_amount"`
	PaymentDate          calendar.Date `json:"payment_date"`
	WonDate              calendar.Date `json:"won_date"`

	ContractURL      string     `json:"contract_url,omitempty"`
	ContractSentDate *time.Time `json:"contract_sent_date,omitempty"`
	InvoiceURL       string     `json:"invoice_url,omitempty"`
	InvoiceSentDate  *time.Time `json:"invoice_sent_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateDealRequest is the payload of the New Deal form.
type CreateDealRequest struct {
	ClientName           string        `json:"client_name"`
	ClientEmail          string        `json:"client_email"`
	ClientPhone          string        `json:"client_phone,omitempty"`
	Organization         string        `json:"organization,omitempty"`
	EventTitle           string        `json:"event_title"`
	EventDate            calendar.Date `json:"event_date"`
	EventLocation        string        `json:"event_location,omitempty"`
	EventType            string        `json:"event_type,omitempty"`
	AttendeeCount        int           `json:"attendee_count,omitempty"`
	SpeakerName          string        `json:"speaker_name,omitempty"`
	SpeakerFee           money.Amount  `json:"speaker_fee,omitempty"`
	DealValue            money.Amount  `json:"deal_value"`
	Priority             string        `json:"priority,omitempty"`
	Source               string        `json:"source,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	CommissionPercentage *money.Amount `json:"commission_percentage,omitempty"`
	CommissionAmount     *money.Amount `json:"commission_amount,omitempty"`
}

// UpdateDealRequest carries a partial update; nil fields are left unchanged.
type UpdateDealRequest struct {
	ClientName    *string        `json:"client_name,omitempty"`
	ClientEmail   *string        `json:"client_email,omitempty"`
	ClientPhone   *string        `json:"client_phone,omitempty"`
	Organization  *string        `json:"organization,omitempty"`
	EventTitle    *string        `json:"event_title,omitempty"`
	EventDate     *calendar.Date `json:"event_date,omitempty"`
	EventLocation *string        `json:"event_location,omitempty"`
	EventType     *string        `json:"event_type,omitempty"`
	AttendeeCount *int           `json:"attendee_count,omitempty"`
	SpeakerName   *string        `json:"speaker_name,omitempty"`
	SpeakerFee    *money.Amount  `json:"speaker_fee,omitempty"`
	DealValue     *money.Amount  `json:"deal_value,omitempty"`
	Status        *string        `json:"status,omitempty"`
	Priority      *string        `json:"priority,omitempty"`
	Source        *string        `json:"source,omitempty"`
	Notes         *string        `json:"notes,omitempty"`

	CommissionPercentage *money.Amount  `json:"commission_percentage,omitempty"`
	CommissionAmount     *money.Amount  `json:"commission_amount,omitempty"`
	PaymentStatus        *string        `json:"payment_status,omitempty"`
	PartialPaymentAmount *money.Amount  `json:"partial_payment_amount,omitempty"`
	PaymentDate          *calendar.Date `json:"payment_date,omitempty"`
	WonDate              *calendar.Date `json:"won_date,omitempty"`

	ContractURL *string `json:"contract_url,omitempty"`
	InvoiceURL  *string `json:"invoice_url,omitempty"`
}

// ChangeStatusRequest is sent by the quick-status control on the pipeline board.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// MarkLostRequest is the payload of the lost-deal dialog.
type MarkLostRequest struct {
	Reason       string        `json:"reason"`
	Details      string        `json:"details"`
	FollowUp     bool          `json:"follow_up"`
	FollowUpDate calendar.Date `json:"follow_up_date"`
}

// ListFilter narrows the deal list.
type ListFilter struct {
	Status string
	Query  string
}
