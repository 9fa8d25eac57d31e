package invoice

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrValidation        = errors.New("invalid invoice")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
	ErrLocked            = errors.New("only draft invoices can be edited")
	ErrNotDeletable      = errors.New("only draft or cancelled invoices can be deleted")
)

// validTransitions defines allowed invoice state machine transitions.
var validTransitions = map[Status][]Status{
	StatusDraft:     {StatusSent, StatusCancelled},
	StatusSent:      {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue:   {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// Valid reports whether s is a known invoice status.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition returns true if the invoice transition is valid.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Deletable reports whether an invoice in s may be removed.
func (s Status) Deletable() bool { return s == StatusDraft || s == StatusCancelled }

func checkTransition(current, next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	if !CanTransition(current, next) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, current, next)
	}
	return nil
}

// IsOverdue reports whether a sent invoice is past its due date on today.
func IsOverdue(inv *Invoice, today time.Time) bool {
	return inv.Status == StatusSent && !inv.DueDate.IsZero() && inv.DueDate.Before(today)
}

// LineItemsTotal sums the line amounts, computing missing ones from
// quantity × unit price.
func LineItemsTotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		amount := item.Amount
		if amount == 0 {
			amount = float64(item.Quantity) * item.UnitPrice
		}
		total += amount
	}
	return money.Round2(total)
}

func generateInvoiceNumber(t time.Time) string {
	suffix := fmt.Sprintf("%04d", rand.Intn(10000))
	return fmt.Sprintf("INV-%s-%s", t.Format("200601"), suffix)
}
