package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

// Status represents the lifecycle state of a client invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// PaymentTermDays is the default window between issue and due date.
const PaymentTermDays = 30

// LineItem represents a single line on an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Invoice bills a client for a project.
type Invoice struct {
	ID               uuid.UUID     `json:"id"`
	ProjectID        uuid.UUID     `json:"project_id"`
	InvoiceNumber    string        `json:"invoice_number"`
	Amount           float64       `json:"amount"`
	Status           Status        `json:"status"`
	IssueDate        calendar.Date `json:"issue_date"`
	DueDate          calendar.Date `json:"due_date"`
	PaymentDate      calendar.Date `json:"payment_date"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	LineItems        []LineItem    `json:"line_items"`
	Notes            string        `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CreateInvoiceRequest is the payload for creating an invoice. A blank
// number is generated, a zero amount is taken from the line items or the
// project budget.
type CreateInvoiceRequest struct {
	ProjectID     string        `json:"project_id"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	Amount        money.Amount  `json:"amount,omitempty"`
	IssueDate     calendar.Date `json:"issue_date"`
	DueDate       calendar.Date `json:"due_date"`
	LineItems     []LineItem    `json:"line_items,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// UpdateInvoiceRequest changes the status and, while the invoice is a
// draft, its amount and due date.
type UpdateInvoiceRequest struct {
	Status           *string        `json:"status,omitempty"`
	Amount           *money.Amount  `json:"amount,omitempty"`
	DueDate          *calendar.Date `json:"due_date,omitempty"`
	PaymentDate      *calendar.Date `json:"payment_date,omitempty"`
	PaymentReference *string        `json:"payment_reference,omitempty"`
	Notes            *string        `json:"notes,omitempty"`
}

// ListFilter narrows the invoice list.
type ListFilter struct {
	ProjectID *uuid.UUID
	Status    string
}
