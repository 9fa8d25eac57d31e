// Command finance-report prints the finance summary and the monthly
// breakdown from the database as terminal tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"

	"github.com/georgemunganga/speakerdesk-backend/internal/config"
	"github.com/georgemunganga/speakerdesk-backend/internal/database"
	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/deal"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/finance"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/project"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

func main() {
	months := flag.Int("months", finance.DefaultMonths, "monthly buckets to show (0 = all)")
	csvOut := flag.Bool("csv", false, "write the won deals as CSV instead of tables")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	quiet := log.Level(zerolog.WarnLevel)
	deals := deal.NewService(deal.NewPostgresRepository(db), events.Nop(), quiet,
		deal.WithDefaultCommission(cfg.DefaultCommissionPercent))
	projects := project.NewService(project.NewPostgresRepository(db), deals, events.Nop(), quiet)
	svc := finance.NewService(deals, projects, quiet)

	if *csvOut {
		if err := svc.Export(ctx, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("export")
		}
		return
	}

	ov, err := svc.Overview(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load finances")
	}
	s := ov.Summary

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("%s finances", cfg.AgencyName)
	t.AppendHeader(table.Row{"Figure", "Amount"})
	t.AppendRows([]table.Row{
		{"Total revenue", usd(s.TotalRevenue)},
		{"Collected", usd(s.CollectedRevenue)},
		{"Pending", usd(s.PendingRevenue)},
		{"Partial payments received", usd(s.PartialPaymentsReceived)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Total commission", usd(s.TotalCommission)},
		{"Paid commission", usd(s.PaidCommission)},
		{"Pending commission", usd(s.PendingCommission)},
		{"Net commission", usd(s.NetCommission)},
		{"Average commission rate", fmt.Sprintf("%s%%", money.Format(s.AverageCommissionRate))},
		{"Speaker payouts due", usd(s.SpeakerPayoutsDue)},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Won / lost", fmt.Sprintf("%d / %d", s.WonCount, s.LostCount)})
	t.AppendFooter(table.Row{"Win rate", fmt.Sprintf("%d%%", s.WinRate)})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	monthly := s.Monthly
	if *months != finance.DefaultMonths {
		monthly = finance.Monthly(ov.Deals, *months)
	}

	m := table.NewWriter()
	m.SetOutputMirror(os.Stdout)
	m.SetTitle("Monthly breakdown")
	m.AppendHeader(table.Row{"Month", "Deals", "Revenue", "Commission", "Collected", "Pending"})
	for _, b := range monthly {
		m.AppendRow(table.Row{b.Month, b.Deals, usd(b.Revenue), usd(b.Commission), usd(b.Collected), usd(b.Pending)})
	}
	m.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	m.Render()
}

func usd(v float64) string { return "$" + money.Format(v) }
