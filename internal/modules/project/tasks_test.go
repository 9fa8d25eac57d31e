package project

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
)

var taskNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func daysOut(n int) calendar.Date { return calendar.FromTime(taskNow.AddDate(0, 0, n)) }

func intPtr(v int) *int { return &v }

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		stage Stage
		days  *int
		want  Urgency
	}{
		{StageInvoicing, intPtr(45), UrgencyHigh},
		{StageInvoicing, intPtr(59), UrgencyHigh},
		{StageInvoicing, intPtr(60), UrgencyMedium},
		{StageInvoicing, intPtr(89), UrgencyMedium},
		{StageInvoicing, intPtr(90), UrgencyLow},
		{StagePreEvent, intPtr(29), UrgencyHigh},
		{StagePreEvent, intPtr(30), UrgencyMedium},
		{StagePreEvent, intPtr(45), UrgencyMedium},
		{StagePreEvent, intPtr(60), UrgencyLow},
		{StageFollowUp, intPtr(-3), UrgencyHigh},
		{StageInvoicing, nil, UrgencyLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UrgencyFor(tt.stage, tt.days))
	}
}

func TestTasks_OnlyCurrentStageOpenItems(t *testing.T) {
	p := &Project{
		ID:          uuid.New(),
		ProjectName: "Summit",
		Status:      StagePreEvent,
		EventDate:   daysOut(20),
		StageCompletion: Checklist{
			StageInvoicing: {"initial_invoice_sent": false},
			StagePreEvent:  {"speaker_briefing_held": true},
		},
	}

	tasks := Tasks([]*Project{p}, taskNow)

	require.Len(t, tasks, len(ChecklistSchema[StagePreEvent])-1)
	for _, task := range tasks {
		assert.Equal(t, StagePreEvent, task.Stage)
		assert.NotEqual(t, "speaker_briefing_held", task.Item)
		assert.Equal(t, UrgencyHigh, task.Urgency)
		require.NotNil(t, task.DaysUntil)
		assert.Equal(t, 20, *task.DaysUntil)
	}
}

func TestTasks_SkipsTerminalProjects(t *testing.T) {
	projects := []*Project{
		{ID: uuid.New(), Status: StageCompleted, EventDate: daysOut(5)},
		{ID: uuid.New(), Status: StageCancelled, EventDate: daysOut(5)},
	}
	assert.Empty(t, Tasks(projects, taskNow))
}

func TestTasks_Ordering(t *testing.T) {
	invoicingSoon := &Project{ID: uuid.New(), ProjectName: "invoicing-45", Status: StageInvoicing, EventDate: daysOut(45)}
	preEventSoon := &Project{ID: uuid.New(), ProjectName: "pre-event-10", Status: StagePreEvent, EventDate: daysOut(10)}
	preEventSooner := &Project{ID: uuid.New(), ProjectName: "pre-event-5", Status: StagePreEvent, EventDate: daysOut(5)}
	followUpMedium := &Project{ID: uuid.New(), ProjectName: "follow-up-40", Status: StageFollowUp, EventDate: daysOut(40)}
	undated := &Project{ID: uuid.New(), ProjectName: "undated", Status: StageInvoicing}

	tasks := Tasks([]*Project{undated, followUpMedium, preEventSoon, invoicingSoon, preEventSooner}, taskNow)

	var order []string
	for _, task := range tasks {
		if len(order) == 0 || order[len(order)-1] != task.ProjectName {
			order = append(order, task.ProjectName)
		}
	}
	assert.Equal(t, []string{"invoicing-45", "pre-event-5", "pre-event-10", "follow-up-40", "undated"}, order)
}

func TestTasks_LegacyStatusIsMigrated(t *testing.T) {
	p := &Project{ID: uuid.New(), Status: Stage("ready"), EventDate: daysOut(100)}
	tasks := Tasks([]*Project{p}, taskNow)

	require.NotEmpty(t, tasks)
	assert.Equal(t, StagePreEvent, tasks[0].Stage)
	assert.Equal(t, UrgencyLow, tasks[0].Urgency)
}
