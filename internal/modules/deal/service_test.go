package deal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/events"
	"github.com/georgemunganga/speakerdesk-backend/internal/modules/auth"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(seed ...*Deal) (Service, *memoryRepo, *events.Recorder) {
	repo := newMemoryRepo(seed...)
	rec := &events.Recorder{}
	svc := NewService(repo, rec, zerolog.Nop(), WithClock(func() time.Time { return fixedNow }))
	return svc, repo, rec
}

func seedDeal(status Status) *Deal {
	return &Deal{
		ID:          uuid.New(),
		ClientName:  "Acme Corp",
		ClientEmail: "events@acme.test",
		EventTitle:  "Annual Summit",
		DealValue:   10000,
		Status:      status,
		Priority:    PriorityMedium,
	}
}

func TestCreateDeal_ForcesLeadAndDefaults(t *testing.T) {
	svc, repo, _ := newTestService()

	d, err := svc.CreateDeal(context.Background(), CreateDealRequest{
		ClientName:  "Acme Corp",
		ClientEmail: "events@acme.test",
		EventTitle:  "Annual Summit",
		DealValue:   money.Amount(10000),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusLead, d.Status)
	assert.Equal(t, PriorityMedium, d.Priority)
	require.NotNil(t, d.CommissionPercentage)
	assert.Equal(t, 20.0, *d.CommissionPercentage)
	assert.Equal(t, 2000.0, d.Commission)
	assert.Len(t, repo.deals, 1)
}

func TestCreateDeal_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := map[string]CreateDealRequest{
		"missing client":  {ClientEmail: "a@b.test", EventTitle: "x"},
		"missing title":   {ClientName: "A", ClientEmail: "a@b.test"},
		"bad email":       {ClientName: "A", ClientEmail: "not-an-email", EventTitle: "x"},
		"bad priority":    {ClientName: "A", ClientEmail: "a@b.test", EventTitle: "x", Priority: "someday"},
		"negative amount": {ClientName: "A", ClientEmail: "a@b.test", EventTitle: "x", DealValue: -1},
		"commission high": {ClientName: "A", ClientEmail: "a@b.test", EventTitle: "x", CommissionPercentage: amountPtr(150)},
		"commission low":  {ClientName: "A", ClientEmail: "a@b.test", EventTitle: "x", CommissionPercentage: amountPtr(-5)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateDeal(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateDeal_CommissionPercentageBounds(t *testing.T) {
	svc, _, _ := newTestService()

	for _, v := range []float64{0, 12.5, 100} {
		d, err := svc.CreateDeal(context.Background(), CreateDealRequest{
			ClientName:           "Acme Corp",
			ClientEmail:          "events@acme.test",
			EventTitle:           "Annual Summit",
			DealValue:            money.Amount(10000),
			CommissionPercentage: amountPtr(v),
		})
		require.NoError(t, err, "percentage %v", v)
		assert.Equal(t, v, *d.CommissionPercentage)
	}
}

func amountPtr(v float64) *money.Amount {
	a := money.Amount(v)
	return &a
}

func TestChangeStatus_ToWonPublishesAndStampsDate(t *testing.T) {
	d := seedDeal(StatusNegotiation)
	svc, repo, rec := newTestService(d)

	got, err := svc.ChangeStatus(context.Background(), d.ID.String(), ChangeStatusRequest{Status: "won"})
	require.NoError(t, err)

	assert.Equal(t, StatusWon, got.Status)
	assert.Equal(t, calendar.New(2025, 6, 1), repo.deals[d.ID].WonDate)
	assert.Equal(t, []string{events.DealWon}, rec.Subjects())
}

func TestChangeStatus_LostNeedsDialog(t *testing.T) {
	d := seedDeal(StatusProposal)
	svc, repo, rec := newTestService(d)

	_, err := svc.ChangeStatus(context.Background(), d.ID.String(), ChangeStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, ErrLossDetailsRequired)
	assert.Equal(t, StatusProposal, repo.deals[d.ID].Status)
	assert.Empty(t, rec.Events)
}

func TestChangeStatus_ClosedToLeadReactivates(t *testing.T) {
	d := seedDeal(StatusLost)
	d.LostReason = "Budget"
	svc, repo, rec := newTestService(d)

	got, err := svc.ChangeStatus(context.Background(), d.ID.String(), ChangeStatusRequest{Status: "lead"})
	require.NoError(t, err)

	assert.Equal(t, StatusLead, got.Status)
	assert.Contains(t, repo.deals[d.ID].Notes, "Deal reactivated from lost")
	assert.Equal(t, "Budget", repo.deals[d.ID].LostReason)
	assert.Equal(t, []string{events.DealReactivated}, rec.Subjects())
}

func TestChangeStatus_SameStatusIsNoop(t *testing.T) {
	d := seedDeal(StatusQualified)
	svc, _, rec := newTestService(d)

	_, err := svc.ChangeStatus(context.Background(), d.ID.String(), ChangeStatusRequest{Status: "qualified"})
	require.NoError(t, err)
	assert.Empty(t, rec.Events)
}

func TestMarkLost(t *testing.T) {
	d := seedDeal(StatusNegotiation)
	svc, repo, rec := newTestService(d)

	got, err := svc.MarkLost(context.Background(), d.ID.String(), MarkLostRequest{
		Reason:       "Budget",
		FollowUp:     true,
		FollowUpDate: calendar.New(2025, 12, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusLost, got.Status)
	assert.Equal(t, "Budget", repo.deals[d.ID].LostReason)
	assert.Equal(t, calendar.New(2025, 12, 1), repo.deals[d.ID].LostFollowUpDate)
	assert.Equal(t, []string{events.DealLost}, rec.Subjects())
}

func TestMarkLost_RequiresReason(t *testing.T) {
	d := seedDeal(StatusNegotiation)
	svc, repo, _ := newTestService(d)

	_, err := svc.MarkLost(context.Background(), d.ID.String(), MarkLostRequest{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusNegotiation, repo.deals[d.ID].Status)
}

func TestReactivate(t *testing.T) {
	won := seedDeal(StatusWon)
	open := seedDeal(StatusProposal)
	svc, repo, _ := newTestService(won, open)

	got, err := svc.Reactivate(context.Background(), won.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusLead, got.Status)
	assert.Equal(t, "[2025-06-01T12:00:00Z] Deal reactivated from won", repo.deals[won.ID].Notes)

	_, err = svc.Reactivate(context.Background(), open.ID.String())
	assert.ErrorIs(t, err, ErrNotClosed)
}

func TestReactivate_RecordsActingAdmin(t *testing.T) {
	won := seedDeal(StatusWon)
	lost := seedDeal(StatusLost)
	svc, _, rec := newTestService(won, lost)

	ctx := auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.NewString(), Email: "ops@agency.test"})
	_, err := svc.Reactivate(ctx, won.ID.String())
	require.NoError(t, err)

	ctx = auth.WithPrincipal(context.Background(), auth.Principal{Bypass: true})
	_, err = svc.Reactivate(ctx, lost.ID.String())
	require.NoError(t, err)

	require.Len(t, rec.Events, 2)
	assert.Equal(t, "ops@agency.test", rec.Events[0].Payload.(map[string]interface{})["actor"])
	assert.Equal(t, "bypass", rec.Events[1].Payload.(map[string]interface{})["actor"])
}

func TestReactivate_NoActorOutsideRequest(t *testing.T) {
	won := seedDeal(StatusWon)
	svc, _, rec := newTestService(won)

	_, err := svc.Reactivate(context.Background(), won.ID.String())
	require.NoError(t, err)

	require.Len(t, rec.Events, 1)
	assert.NotContains(t, rec.Events[0].Payload.(map[string]interface{}), "actor")
}

func TestUpdateDeal_PartialFieldsAndCommission(t *testing.T) {
	d := seedDeal(StatusProposal)
	svc, repo, _ := newTestService(d)

	title := "Leadership Summit"
	amount := money.Amount(1500)
	got, err := svc.UpdateDeal(context.Background(), d.ID.String(), UpdateDealRequest{
		EventTitle:       &title,
		CommissionAmount: &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, "Leadership Summit", got.EventTitle)
	assert.Equal(t, "Acme Corp", got.ClientName)
	assert.Equal(t, 1500.0, got.Commission)
	assert.Equal(t, "Leadership Summit", repo.deals[d.ID].EventTitle)
}

func TestUpdateDeal_StatusFollowsQuickStatusRules(t *testing.T) {
	d := seedDeal(StatusProposal)
	svc, _, _ := newTestService(d)

	lost := "lost"
	_, err := svc.UpdateDeal(context.Background(), d.ID.String(), UpdateDealRequest{Status: &lost})
	assert.ErrorIs(t, err, ErrLossDetailsRequired)
}

func TestGetDeal_Errors(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetDeal(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetDeal(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDeals_FiltersByStatus(t *testing.T) {
	svc, _, _ := newTestService(seedDeal(StatusWon), seedDeal(StatusLead), seedDeal(StatusWon))

	deals, err := svc.ListDeals(context.Background(), ListFilter{Status: "won"})
	require.NoError(t, err)
	assert.Len(t, deals, 2)
	for _, d := range deals {
		assert.Equal(t, 2000.0, d.Commission)
	}

	_, err = svc.ListDeals(context.Background(), ListFilter{Status: "archived"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteDeal(t *testing.T) {
	d := seedDeal(StatusLead)
	svc, repo, _ := newTestService(d)

	require.NoError(t, svc.DeleteDeal(context.Background(), d.ID.String()))
	assert.Empty(t, repo.deals)
	assert.ErrorIs(t, svc.DeleteDeal(context.Background(), d.ID.String()), ErrNotFound)
}

func TestRecordDocument(t *testing.T) {
	d := seedDeal(StatusWon)
	svc, repo, _ := newTestService(d)
	sentAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecordDocument(context.Background(), d.ID.String(), DocumentContract, "https://docs.test/c.txt", sentAt))
	stored := repo.deals[d.ID]
	assert.Equal(t, "https://docs.test/c.txt", stored.ContractURL)
	require.NotNil(t, stored.ContractSentDate)
	assert.True(t, sentAt.Equal(*stored.ContractSentDate))
	assert.Nil(t, stored.InvoiceSentDate)

	err := svc.RecordDocument(context.Background(), d.ID.String(), Document("receipt"), "", sentAt)
	assert.ErrorIs(t, err, ErrValidation)
}
