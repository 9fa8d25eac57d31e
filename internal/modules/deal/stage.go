package deal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
)

var (
	ErrNotFound            = errors.New("deal not found")
	ErrValidation          = errors.New("invalid deal")
	ErrLossDetailsRequired = errors.New("a deal can only be marked lost through the loss dialog")
	ErrNotClosed           = errors.New("only won or lost deals can be reactivated")
)

// Valid reports whether s is a known pipeline status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Closed reports whether the deal has reached won or lost.
func (s Status) Closed() bool { return s == StatusWon || s == StatusLost }

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// CheckStatusChange validates a move requested from the quick-status
// control. Open stages may move freely; lost needs loss details, which that
// control cannot supply.
func CheckStatusChange(next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	if next == StatusLost {
		return ErrLossDetailsRequired
	}
	return nil
}

// IsReactivation reports whether moving current → next reopens a closed deal.
func IsReactivation(current, next Status) bool {
	return current.Closed() && next == StatusLead
}

// ApplyStatus moves d to next and stamps the won date on first win.
func ApplyStatus(d *Deal, next Status, now time.Time) {
	d.Status = next
	if next == StatusWon && d.WonDate.IsZero() {
		d.WonDate = calendar.FromTime(now)
	}
}

// Validate checks the loss dialog input.
func (r MarkLostRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("%w: lost reason is required", ErrValidation)
	}
	if r.FollowUp && r.FollowUpDate.IsZero() {
		return fmt.Errorf("%w: follow_up_date is required when a follow-up is planned", ErrValidation)
	}
	return nil
}

// ApplyLoss records the loss details and closes the deal as lost.
func ApplyLoss(d *Deal, r MarkLostRequest) {
	d.Status = StatusLost
	d.LostReason = strings.TrimSpace(r.Reason)
	d.LostDetails = r.Details
	d.LostFollowUp = r.FollowUp
	d.LostFollowUpDate = calendar.Date{}
	if r.FollowUp {
		d.LostFollowUpDate = r.FollowUpDate
	}
}

// Reactivate reopens a won or lost deal as a lead. Previous loss details are
// kept; an audit line is appended to the notes.
func Reactivate(d *Deal, now time.Time) error {
	if !d.Status.Closed() {
		return fmt.Errorf("%w (current: %s)", ErrNotClosed, d.Status)
	}
	previous := d.Status
	d.Status = StatusLead
	d.Notes = AppendNote(d.Notes, fmt.Sprintf("Deal reactivated from %s", previous), now)
	return nil
}

// AppendNote adds a timestamped line to the free-text notes.
func AppendNote(notes, line string, now time.Time) string {
	entry := fmt.Sprintf("[%s] %s", now.UTC().Format(time.RFC3339), line)
	if strings.TrimSpace(notes) == "" {
		return entry
	}
	return strings.TrimRight(notes, "\n") + "\n" + entry
}
