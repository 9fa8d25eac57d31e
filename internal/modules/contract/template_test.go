package contract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
)

func keynoteTerms() Terms {
	return Terms{
		SpeakerName:       "Dr. Jane Rivera",
		ClientName:        "Acme Corp",
		EventTitle:        "Annual Summit",
		EventDate:         calendar.New(2025, 3, 5),
		EventLocation:     "Chicago, IL",
		EngagementType:    EngagementKeynote,
		Format:            FormatInPerson,
		KeynoteMinutes:    45,
		QAMinutes:         15,
		ArrivalTime:       "08:30",
		PresentationStart: "10:00",
		DepartureTime:     "13:00",
		Accommodation:     true,
		Fee:               10000,
	}
}

func TestReferenceNumber(t *testing.T) {
	assert.Equal(t, "#030525", ReferenceNumber(calendar.New(2025, 3, 5)))
	assert.Equal(t, "#123124", ReferenceNumber(calendar.New(2024, 12, 31)))
	assert.Equal(t, "", ReferenceNumber(calendar.Date{}))
}

func TestRender_InPersonKeynote(t *testing.T) {
	text, err := Render("Summit Speakers Agency", keynoteTerms())
	require.NoError(t, err)

	assert.Contains(t, text, "SPEAKER ENGAGEMENT AGREEMENT #030525")
	assert.Contains(t, text, `between Summit Speakers Agency, on behalf of Dr. Jane Rivera ("Speaker"), and Acme Corp ("Client") for Annual Summit on March 5, 2025 at Chicago, IL.`)
	assert.Contains(t, text, "a fee of $10,000.")
	assert.Contains(t, text, "The Speaker will deliver a 45-minute keynote presentation.\n"+
		"The keynote will be followed by a 15-minute question and answer session.\n"+
		"The Speaker will arrive at the venue by 8:30 AM.\n"+
		"The presentation will begin at 10:00 AM and end at 10:45 AM.\n"+
		"The question and answer session will run from 10:45 AM to 11:00 AM.\n"+
		"The Speaker will depart at 1:00 PM.\n"+
		"The Client will cover round-trip travel and one night accommodation for the Speaker.")
	assert.Contains(t, text, "A deposit of $5,000 (50% of the fee) is due upon signing. The balance of $5,000 is due")
}

func TestRender_SectionOrder(t *testing.T) {
	text, err := Render("Agency", keynoteTerms())
	require.NoError(t, err)

	sections := []string{"TAX", "PAYMENT SCHEDULE", "RECORDING RIGHTS", "CANCELLATION", "LIMITATION OF LIABILITY", "ARBITRATION"}
	last := -1
	for _, s := range sections {
		idx := strings.Index(text, "\n"+s+"\n")
		require.GreaterOrEqual(t, idx, 0, "missing section %s", s)
		assert.Greater(t, idx, last, "section %s out of order", s)
		last = idx
	}
}

func TestRender_ScheduleFollowsInputTimes(t *testing.T) {
	terms := keynoteTerms()
	terms.PresentationStart = "14:15"
	terms.KeynoteMinutes = 60
	terms.QAMinutes = 30

	text, err := Render("Agency", terms)
	require.NoError(t, err)
	assert.Contains(t, text, "The presentation will begin at 2:15 PM and end at 3:15 PM.")
	assert.Contains(t, text, "The question and answer session will run from 3:15 PM to 3:45 PM.")
}

func TestRender_VirtualKeynote(t *testing.T) {
	terms := keynoteTerms()
	terms.Format = FormatVirtual
	terms.VirtualPlatform = "Zoom"
	terms.TechCheck = true

	text, err := Render("Agency", terms)
	require.NoError(t, err)
	assert.Contains(t, text, "The Speaker will present remotely via the Zoom virtual platform for a total presentation time of 60 minutes.")
	assert.Contains(t, text, "The Speaker will complete a technical check with the Client's production team before the event.")
	assert.NotContains(t, text, "arrive at the venue")
	assert.NotContains(t, text, PhraseAccommodation)
}

func TestRender_EngagementBranches(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Terms)
		contains string
	}{
		{"keynote without Q&A", func(t *Terms) { t.QAMinutes = 0 }, "The Speaker will deliver a 45-minute keynote presentation.\nThe Speaker will arrive"},
		{"workshop", func(t *Terms) { t.EngagementType = EngagementWorkshop; t.WorkshopMinutes = 90 }, "The Speaker will facilitate a 90-minute workshop."},
		{"panel", func(t *Terms) { t.EngagementType = EngagementPanel }, "The Speaker will participate as a panelist in a moderated panel discussion."},
		{"fireside chat", func(t *Terms) { t.EngagementType = EngagementFiresideChat }, "The Speaker will take part in a moderated fireside chat."},
		{"panel schedule has no end time", func(t *Terms) { t.EngagementType = EngagementPanel }, "The session will begin at 10:00 AM."},
		{"no accommodation", func(t *Terms) { t.Accommodation = false }, "The Client will cover round-trip travel for the Speaker."},
		{"alignment meeting", func(t *Terms) { t.AlignmentMeeting = true }, "The Speaker will attend an alignment meeting with the Client prior to the event."},
		{"recording allowed", func(t *Terms) { t.RecordingAllowed = true }, "The Client may record the presentation for internal, non-commercial use."},
		{"organization", func(t *Terms) { t.Organization = "Acme Holdings" }, `Acme Corp of Acme Holdings ("Client")`},
		{"custom deposit", func(t *Terms) { t.DepositPercent = 30; t.Fee = 12345 }, "A deposit of $3,703.5 (30% of the fee)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := keynoteTerms()
			tt.mutate(&terms)
			text, err := Render("Agency", terms)
			require.NoError(t, err)
			assert.Contains(t, text, tt.contains)
		})
	}
}

func TestRender_Errors(t *testing.T) {
	tests := map[string]func(*Terms){
		"unknown engagement":     func(t *Terms) { t.EngagementType = "roast" },
		"keynote needs duration": func(t *Terms) { t.KeynoteMinutes = 0 },
		"workshop needs minutes": func(t *Terms) { t.EngagementType = EngagementWorkshop },
		"unknown format":         func(t *Terms) { t.Format = "hologram" },
		"bad clock":              func(t *Terms) { t.ArrivalTime = "8.30am" },
		"missing event date":     func(t *Terms) { t.EventDate = calendar.Date{} },
		"missing speaker":        func(t *Terms) { t.SpeakerName = "" },
		"deposit over 100":       func(t *Terms) { t.DepositPercent = 150 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			terms := keynoteTerms()
			mutate(&terms)
			_, err := Render("Agency", terms)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	a, err := Render("Agency", keynoteTerms())
	require.NoError(t, err)
	b, err := Render("Agency", keynoteTerms())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
