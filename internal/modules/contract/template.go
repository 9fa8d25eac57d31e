package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"

	"github.com/georgemunganga/speakerdesk-backend/internal/calendar"
	"github.com/georgemunganga/speakerdesk-backend/internal/money"
)

// DefaultDepositPercent is the share of the fee due on signing.
const DefaultDepositPercent = 50.0

const clockLayout = "15:04"

// Phrases the preview highlights. The templater must emit them verbatim.
const (
	PhraseAccommodation    = "one night accommodation"
	PhraseVirtualPlatform  = "virtual platform"
	PhraseAlignmentMeeting = "alignment meeting"
	PhraseTechCheck        = "technical check"
)

const agreementTemplate = `SPEAKER ENGAGEMENT AGREEMENT {{reference}}

This agreement is made between {{agency}}, on behalf of {{speaker}} ("Speaker"), and {{client}} ("Client") for {{event_title}} on {{event_date}}{{location}}. The Client agrees to pay the Speaker a fee of ${{fee}}.

{{engagement}}

TAX
The fee is exclusive of any applicable taxes. Taxes levied on the engagement are the responsibility of the Client.

PAYMENT SCHEDULE
A deposit of ${{deposit}} ({{deposit_percent}}% of the fee) is due upon signing. The balance of ${{balance}} is due no later than 30 days before the event.

RECORDING RIGHTS
{{recording}}

CANCELLATION
If the Client cancels more than 60 days before the event, the Speaker retains the deposit. If the Client cancels within 60 days of the event, the full fee is due.

LIMITATION OF LIABILITY
Neither party is liable for indirect or consequential damages. Each party's total liability under this agreement is limited to the fee.

ARBITRATION
Any dispute arising under this agreement shall be resolved by binding arbitration.`

var compiledAgreement = fasttemplate.New(agreementTemplate, "{{", "}}")

// ReferenceNumber derives the contract reference (#MMDDYY) from the event date.
func ReferenceNumber(eventDate calendar.Date) string {
	if eventDate.IsZero() {
		return ""
	}
	return "#" + eventDate.Format("010206")
}

// Render produces the contract text for t. The agency name appears in the
// parties clause.
func Render(agency string, t Terms) (string, error) {
	if err := validateTerms(t); err != nil {
		return "", err
	}
	engagement, err := engagementSection(t)
	if err != nil {
		return "", err
	}

	deposit, balance := paymentSplit(t)
	location := ""
	if strings.TrimSpace(t.EventLocation) != "" {
		location = " at " + strings.TrimSpace(t.EventLocation)
	}
	recording := "The presentation may not be recorded without the Speaker's written consent."
	if t.RecordingAllowed {
		recording = "The Client may record the presentation for internal, non-commercial use."
	}

	return compiledAgreement.ExecuteString(map[string]interface{}{
		"reference":       ReferenceNumber(t.EventDate),
		"agency":          agency,
		"speaker":         t.SpeakerName,
		"client":          partyName(t),
		"event_title":     t.EventTitle,
		"event_date":      longDate(t.EventDate),
		"location":        location,
		"fee":             money.Format(t.Fee),
		"engagement":      engagement,
		"deposit":         money.Format(deposit),
		"deposit_percent": strconv.FormatFloat(depositPercent(t), 'f', -1, 64),
		"balance":         money.Format(balance),
		"recording":       recording,
	}), nil
}

func validateTerms(t Terms) error {
	switch {
	case strings.TrimSpace(t.SpeakerName) == "":
		return fmt.Errorf("%w: speaker_name is required", ErrValidation)
	case strings.TrimSpace(t.ClientName) == "":
		return fmt.Errorf("%w: client_name is required", ErrValidation)
	case strings.TrimSpace(t.EventTitle) == "":
		return fmt.Errorf("%w: event_title is required", ErrValidation)
	case t.EventDate.IsZero():
		return fmt.Errorf("%w: event_date is required", ErrValidation)
	case t.Fee < 0:
		return fmt.Errorf("%w: fee cannot be negative", ErrValidation)
	case t.DepositPercent < 0 || t.DepositPercent > 100:
		return fmt.Errorf("%w: deposit_percent must be between 0 and 100", ErrValidation)
	case t.KeynoteMinutes < 0 || t.QAMinutes < 0 || t.WorkshopMinutes < 0:
		return fmt.Errorf("%w: durations cannot be negative", ErrValidation)
	}
	if t.Format != FormatInPerson && t.Format != FormatVirtual {
		return fmt.Errorf("%w: unknown format %q", ErrValidation, t.Format)
	}
	for name, v := range map[string]string{
		"arrival_time":       t.ArrivalTime,
		"presentation_start": t.PresentationStart,
		"departure_time":     t.DepartureTime,
	} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(clockLayout, v); err != nil {
			return fmt.Errorf("%w: %s must be HH:MM", ErrValidation, name)
		}
	}
	return nil
}

// engagementSection describes what the speaker delivers and, for in-person
// events, the day's schedule.
func engagementSection(t Terms) (string, error) {
	var lines []string
	var mainMinutes int

	switch t.EngagementType {
	case EngagementKeynote:
		if t.KeynoteMinutes <= 0 {
			return "", fmt.Errorf("%w: keynote_minutes is required for a keynote", ErrValidation)
		}
		mainMinutes = t.KeynoteMinutes
		lines = append(lines, fmt.Sprintf("The Speaker will deliver a %d-minute keynote presentation.", t.KeynoteMinutes))
		if t.QAMinutes > 0 {
			lines = append(lines, fmt.Sprintf("The keynote will be followed by a %d-minute question and answer session.", t.QAMinutes))
		}
	case EngagementWorkshop:
		if t.WorkshopMinutes <= 0 {
			return "", fmt.Errorf("%w: workshop_minutes is required for a workshop", ErrValidation)
		}
		mainMinutes = t.WorkshopMinutes
		lines = append(lines, fmt.Sprintf("The Speaker will facilitate a %d-minute workshop.", t.WorkshopMinutes))
	case EngagementPanel:
		lines = append(lines, "The Speaker will participate as a panelist in a moderated panel discussion.")
	case EngagementFiresideChat:
		lines = append(lines, "The Speaker will take part in a moderated fireside chat.")
	default:
		return "", fmt.Errorf("%w: unknown engagement_type %q", ErrValidation, t.EngagementType)
	}

	if t.Format == FormatVirtual {
		lines = append(lines, virtualParagraph(t))
	} else {
		lines = append(lines, inPersonSchedule(t, mainMinutes)...)
	}

	if t.AlignmentMeeting {
		lines = append(lines, "The Speaker will attend an "+PhraseAlignmentMeeting+" with the Client prior to the event.")
	}
	if t.TechCheck {
		lines = append(lines, "The Speaker will complete a "+PhraseTechCheck+" with the Client's production team before the event.")
	}
	return strings.Join(lines, "\n"), nil
}

func virtualParagraph(t Terms) string {
	total := t.KeynoteMinutes + t.QAMinutes
	if t.EngagementType == EngagementWorkshop {
		total = t.WorkshopMinutes
	}
	platform := "a " + PhraseVirtualPlatform
	if p := strings.TrimSpace(t.VirtualPlatform); p != "" {
		platform = "the " + p + " " + PhraseVirtualPlatform
	}
	if total <= 0 {
		return fmt.Sprintf("The Speaker will present remotely via %s.", platform)
	}
	return fmt.Sprintf("The Speaker will present remotely via %s for a total presentation time of %d minutes.", platform, total)
}

// inPersonSchedule derives every schedule line from the structured times and
// durations. Lines whose inputs are missing are left out.
func inPersonSchedule(t Terms, mainMinutes int) []string {
	var lines []string
	if t.ArrivalTime != "" {
		lines = append(lines, fmt.Sprintf("The Speaker will arrive at the venue by %s.", clock(t.ArrivalTime, 0)))
	}
	if t.PresentationStart != "" {
		if mainMinutes > 0 {
			lines = append(lines, fmt.Sprintf("The presentation will begin at %s and end at %s.",
				clock(t.PresentationStart, 0), clock(t.PresentationStart, mainMinutes)))
		} else {
			lines = append(lines, fmt.Sprintf("The session will begin at %s.", clock(t.PresentationStart, 0)))
		}
		if t.EngagementType == EngagementKeynote && t.QAMinutes > 0 {
			lines = append(lines, fmt.Sprintf("The question and answer session will run from %s to %s.",
				clock(t.PresentationStart, mainMinutes), clock(t.PresentationStart, mainMinutes+t.QAMinutes)))
		}
	}
	if t.DepartureTime != "" {
		lines = append(lines, fmt.Sprintf("The Speaker will depart at %s.", clock(t.DepartureTime, 0)))
	}
	if t.Accommodation {
		lines = append(lines, "The Client will cover round-trip travel and "+PhraseAccommodation+" for the Speaker.")
	} else {
		lines = append(lines, "The Client will cover round-trip travel for the Speaker.")
	}
	return lines
}

// clock renders an "HH:MM" value shifted by offset minutes as "3:04 PM".
// Inputs are validated before rendering.
func clock(hhmm string, offsetMinutes int) string {
	t, _ := time.Parse(clockLayout, hhmm)
	return t.Add(time.Duration(offsetMinutes) * time.Minute).Format("3:04 PM")
}

func longDate(d calendar.Date) string {
	return d.Format("January 2, 2006")
}

func partyName(t Terms) string {
	if org := strings.TrimSpace(t.Organization); org != "" && org != strings.TrimSpace(t.ClientName) {
		return t.ClientName + " of " + org
	}
	return t.ClientName
}

func depositPercent(t Terms) float64 {
	if t.DepositPercent == 0 {
		return DefaultDepositPercent
	}
	return t.DepositPercent
}

func paymentSplit(t Terms) (deposit, balance float64) {
	deposit = money.Round2(t.Fee * depositPercent(t) / 100)
	return deposit, money.Round2(t.Fee - deposit)
}

// Highlights lists the rendered values of t that the preview marks as
// dynamic content, followed by the fixed conditional phrases.
func Highlights(t Terms) []string {
	deposit, balance := paymentSplit(t)
	out := []string{
		ReferenceNumber(t.EventDate),
		t.SpeakerName,
		partyName(t),
		t.EventTitle,
		longDate(t.EventDate),
		strings.TrimSpace(t.EventLocation),
		"$" + money.Format(t.Fee),
		"$" + money.Format(deposit),
		"$" + money.Format(balance),
	}
	for _, v := range []string{t.ArrivalTime, t.PresentationStart, t.DepartureTime} {
		if v != "" {
			out = append(out, clock(v, 0))
		}
	}
	if p := strings.TrimSpace(t.VirtualPlatform); p != "" {
		out = append(out, p)
	}
	return append(out, PhraseAccommodation, PhraseVirtualPlatform, PhraseAlignmentMeeting, PhraseTechCheck)
}
