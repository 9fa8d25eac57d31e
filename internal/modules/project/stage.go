package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("project not found")
	ErrValidation        = errors.New("invalid project")
	ErrStageRegression   = errors.New("projects cannot move back to an earlier stage")
	ErrInvalidTransition = errors.New("invalid project status transition")
	ErrDealNotWon        = errors.New("projects can only be created from won deals")
)

// Stages is the delivery pipeline in order. A stage's index is its rank.
var Stages = []Stage{
	StageInvoicing,
	StageLogisticsPlanning,
	StagePreEvent,
	StageEventWeek,
	StageFollowUp,
}

// ChecklistSchema lists the items tracked in each stage.
var ChecklistSchema = map[Stage][]string{
	StageInvoicing: {
		"initial_invoice_sent",
		"final_invoice_sent",
		"kickoff_meeting_planned",
		"client_contacts_documented",
		"project_folder_created",
		"internal_team_briefed",
		"event_details_confirmed",
	},
	StageLogisticsPlanning: {
		"travel_booked",
		"accommodation_booked",
		"ground_transport_arranged",
		"av_requirements_confirmed",
		"run_of_show_received",
	},
	StagePreEvent: {
		"speaker_briefing_held",
		"presentation_materials_received",
		"client_prep_call_completed",
		"final_itinerary_sent",
		"tech_check_completed",
	},
	StageEventWeek: {
		"speaker_arrival_confirmed",
		"onsite_contact_confirmed",
		"materials_delivered",
		"event_day_check_in",
	},
	StageFollowUp: {
		"thank_you_sent",
		"client_feedback_collected",
		"final_payment_received",
		"speaker_paid",
		"testimonial_requested",
	},
}

// legacyStatuses maps pipeline values from before the checklist stages to
// their replacements.
var legacyStatuses = map[Stage]Stage{
	"planning":         StageInvoicing,
	"contracts_signed": StageInvoicing,
	"preparation":      StageLogisticsPlanning,
	"ready":            StagePreEvent,
	"in_progress":      StageEventWeek,
}

// Rank returns the index of s in Stages, or -1 for terminal and unknown
// stages.
func Rank(s Stage) int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether s ends the pipeline.
func (s Stage) Terminal() bool { return s == StageCompleted || s == StageCancelled }

// Valid reports whether s may be written to a project.
func (s Stage) Valid() bool { return Rank(s) >= 0 || s.Terminal() }

// MigrateLegacyStatus rewrites a legacy status to its current stage. Other
// values are returned unchanged.
func MigrateLegacyStatus(s Stage) Stage {
	if mapped, ok := legacyStatuses[s]; ok {
		return mapped
	}
	return s
}

// CheckStatusChange enforces forward-only advancement. Terminal stages can
// be reached from any open stage and never left.
func CheckStatusChange(current, next Stage) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	if current.Terminal() {
		return fmt.Errorf("%w: project is %s", ErrInvalidTransition, current)
	}
	if next.Terminal() {
		return nil
	}
	if Rank(next) < Rank(current) {
		return fmt.Errorf("%w (%s → %s)", ErrStageRegression, current, next)
	}
	return nil
}

// Progress draws the progress bar for a project at current. A stage is done
// once the project has moved past it, whatever its checklist says.
func Progress(current Stage, checklist Checklist) []StageProgress {
	currentRank := Rank(current)
	out := make([]StageProgress, 0, len(Stages))
	for i, stage := range Stages {
		state := ProgressPending
		switch {
		case current == StageCompleted:
			state = ProgressDone
		case currentRank < 0:
			// cancelled: how far the project got is unknown.
		case i < currentRank:
			state = ProgressDone
		case i == currentRank:
			state = ProgressCurrent
		}
		out = append(out, StageProgress{Stage: stage, State: state, Items: items(stage, checklist)})
	}
	return out
}

func items(stage Stage, checklist Checklist) []ChecklistItem {
	keys := ChecklistSchema[stage]
	out := make([]ChecklistItem, 0, len(keys))
	for _, key := range keys {
		out = append(out, ChecklistItem{Key: key, Label: Label(key), Completed: checklist[stage][key]})
	}
	return out
}

// ValidateItem checks that item belongs to stage's checklist.
func ValidateItem(stage Stage, item string) error {
	keys, ok := ChecklistSchema[stage]
	if !ok {
		return fmt.Errorf("%w: stage %q has no checklist", ErrValidation, stage)
	}
	for _, key := range keys {
		if key == item {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a %s checklist item", ErrValidation, item, stage)
}

// SetItem records item's value without touching any other stage.
func (c Checklist) SetItem(stage Stage, item string, done bool) Checklist {
	if c == nil {
		c = Checklist{}
	}
	if c[stage] == nil {
		c[stage] = map[string]bool{}
	}
	c[stage][item] = done
	return c
}

// Label turns a checklist key into display text.
func Label(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
