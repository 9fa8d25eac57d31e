package finance

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
)

var exportHeader = []string{
	"Client", "Organization", "Event", "Event Date", "Status",
	"Deal Value", "Commission %", "Commission",
	"Payment Status", "Partial Payment", "Payment Date", "Won Date",
}

// ExportCSV writes one row per deal. Commission comes from deal.Commission so
// the export matches the list and the monthly breakdown. Amounts are written
// unrounded.
func ExportCSV(w io.Writer, deals []*deal.Deal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, d := range deals {
		row := []string{
			d.ClientName,
			d.Organization,
			d.EventTitle,
			d.EventDate.String(),
			string(d.Status),
			formatFloat(d.DealValue),
			formatFloat(deal.EffectiveCommissionPercent(d)),
			formatFloat(deal.Commission(d)),
			string(d.PaymentStatus),
			formatFloat(d.PartialPaymentAmount),
			d.PaymentDate.String(),
			d.WonDate.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
