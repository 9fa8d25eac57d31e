package finance

import (
	"errors"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

var (
	ErrValidation = errors.New("invalid finance update")
	ErrDealNotWon = errors.New("payments can only be recorded on won deals")
)

// Overview is the finance page payload: the summary and the won deals it was
// computed from.
type Overview struct {
	Summary Summary      `json:"summary"`
	Deals   []*deal.Deal `json:"deals"`
}

// RecordPaymentRequest records a client payment against a won deal.
type RecordPaymentRequest struct {
	DealID               string         `json:"deal_id"`
	PaymentStatus        string         `json:"payment_status"`
	PartialPaymentAmount *money.Amount  `json:"partial_payment_amount,omitempty"`
	PaymentDate          *calendar.Date `json:"payment_date,omitempty"`
}

// UpdateDealRequest edits the commission and payment fields of a deal from the
// finance table.
type UpdateDealRequest struct {
	CommissionPercentage *money.Amount  `json:"commission_percentage,omitempty"`
	CommissionAmount     *money.Amount  `json:"commission_amount,omitempty"`
	PaymentStatus        *string        `json:"payment_status,omitempty"`
	PartialPaymentAmount *money.Amount  `json:"partial_payment_amount,omitempty"`
	PaymentDate          *calendar.Date `json:"payment_date,omitempty"`
	WonDate              *calendar.Date `json:"won_date,omitempty"`
}
