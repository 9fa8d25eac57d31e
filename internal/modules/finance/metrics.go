package finance

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/project"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

// DefaultMonths is how many monthly buckets the finance page shows.
const DefaultMonths = 6

// Summary holds the finance figures derived from one load of deals and
// projects. Revenue and commission cover won deals only.
type Summary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	CollectedRevenue float64 `json:"collected_revenue"`
	// PendingRevenue counts the full value of unpaid and partially paid deals.
	PendingRevenue float64 `json:"pending_revenue"`

	TotalCommission   float64 `json:"total_commission"`
	PaidCommission    float64 `json:"paid_commission"`
	PendingCommission float64 `json:"pending_commission"`
	// NetCommission equals TotalCommission: speaker fees are paid separately.
	NetCommission         float64 `json:"net_commission"`
	AverageCommissionRate float64 `json:"average_commission_rate"`

	PartialPaymentsReceived float64 `json:"partial_payments_received"`
	SpeakerPayoutsDue       float64 `json:"speaker_payouts_due"`

	WonCount  int `json:"won_count"`
	LostCount int `json:"lost_count"`
	WinRate   int `json:"win_rate"`

	Monthly []MonthlyBucket `json:"monthly"`
}

// MonthlyBucket sums won deals by the month they were won (YYYY-MM).
type MonthlyBucket struct {
	Month      string  `json:"month"`
	Deals      int     `json:"deals"`
	Revenue    float64 `json:"revenue"`
	Commission float64 `json:"commission"`
	Collected  float64 `json:"collected"`
	Pending    float64 `json:"pending"`
}

// Summarize folds deals and their projects into a Summary.
func Summarize(deals []*deal.Deal, projects []*project.Project) Summary {
	byDeal := map[uuid.UUID][]*project.Project{}
	for _, p := range projects {
		if p.DealID != nil {
			byDeal[*p.DealID] = append(byDeal[*p.DealID], p)
		}
	}

	var s Summary
	for _, d := range deals {
		switch d.Status {
		case deal.StatusWon:
			s.WonCount++
		case deal.StatusLost:
			s.LostCount++
			continue
		default:
			continue
		}

		c := deal.Commission(d)
		s.TotalRevenue += d.DealValue
		s.TotalCommission += c

		if d.PaymentStatus == deal.PaymentPaid {
			s.CollectedRevenue += d.DealValue
			s.PaidCommission += c
			continue
		}
		s.PendingRevenue += d.DealValue
		s.PendingCommission += c
		if d.PaymentStatus == deal.PaymentPartial {
			s.PartialPaymentsReceived += d.PartialPaymentAmount
		}
		for _, p := range byDeal[d.ID] {
			s.SpeakerPayoutsDue += p.SpeakerFee
		}
	}

	s.NetCommission = s.TotalCommission
	if s.TotalRevenue != 0 {
		s.AverageCommissionRate = money.Round2(s.TotalCommission / s.TotalRevenue * 100)
	}
	s.WinRate = WinRate(s.WonCount, s.LostCount)
	s.Monthly = Monthly(deals, DefaultMonths)
	return s
}

// WinRate is won / (won + lost) as a rounded percentage, 0 with no closed deals.
func WinRate(won, lost int) int {
	if won+lost == 0 {
		return 0
	}
	return int(math.Round(float64(won) / float64(won+lost) * 100))
}

// Monthly groups won deals by won_date month, newest first, keeping at most
// n buckets (all of them when n <= 0). Deals without a won date are skipped.
func Monthly(deals []*deal.Deal, n int) []MonthlyBucket {
	buckets := map[string]*MonthlyBucket{}
	for _, d := range deals {
		if d.Status != deal.StatusWon || d.WonDate.IsZero() {
			continue
		}
		key := d.WonDate.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyBucket{Month: key}
			buckets[key] = b
		}
		c := deal.Commission(d)
		b.Deals++
		b.Revenue += d.DealValue
		b.Commission += c
		if d.PaymentStatus == deal.PaymentPaid {
			b.Collected += d.DealValue
		} else {
			b.Pending += d.DealValue
		}
	}

	out := make([]MonthlyBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
