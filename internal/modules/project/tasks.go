package project

import (
	"sort"
	"time"
)

// stageWeight orders tasks of equal urgency: earlier stages first.
var stageWeight = map[Stage]int{
	StageInvoicing:         5,
	StageLogisticsPlanning: 4,
	StagePreEvent:          3,
	StageEventWeek:         2,
	StageFollowUp:          1,
}

var urgencyRank = map[Urgency]int{UrgencyHigh: 3, UrgencyMedium: 2, UrgencyLow: 1}

// UrgencyFor rates a task in stage for an event daysUntil days away.
// Invoicing needs a longer lead time than the later stages.
func UrgencyFor(stage Stage, daysUntil *int) Urgency {
	if daysUntil == nil {
		return UrgencyLow
	}
	high, medium := 30, 60
	if stage == StageInvoicing {
		high, medium = 60, 90
	}
	switch d := *daysUntil; {
	case d < high:
		return UrgencyHigh
	case d < medium:
		return UrgencyMedium
	}
	return UrgencyLow
}

// Tasks lists one task per unticked checklist item of each open project's
// current stage, most urgent first.
func Tasks(projects []*Project, now time.Time) []Task {
	var tasks []Task
	for _, p := range projects {
		stage := MigrateLegacyStatus(p.Status)
		if Rank(stage) < 0 {
			continue
		}
		var days *int
		if !p.EventDate.IsZero() {
			d := p.EventDate.DaysFrom(now)
			days = &d
		}
		urgency := UrgencyFor(stage, days)
		for _, item := range ChecklistSchema[stage] {
			if p.StageCompletion[stage][item] {
				continue
			}
			tasks = append(tasks, Task{
				ProjectID:   p.ID,
				ProjectName: p.ProjectName,
				ClientName:  p.ClientName,
				Stage:       stage,
				Item:        item,
				Label:       Label(item),
				EventDate:   p.EventDate,
				DaysUntil:   days,
				Urgency:     urgency,
			})
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if urgencyRank[a.Urgency] != urgencyRank[b.Urgency] {
			return urgencyRank[a.Urgency] > urgencyRank[b.Urgency]
		}
		if stageWeight[a.Stage] != stageWeight[b.Stage] {
			return stageWeight[a.Stage] > stageWeight[b.Stage]
		}
		return eventBefore(a, b)
	})
	return tasks
}

// eventBefore puts earlier events first and undated events last.
func eventBefore(a, b Task) bool {
	switch {
	case a.EventDate.IsZero():
		return false
	case b.EventDate.IsZero():
		return true
	}
	return a.EventDate.Before(b.EventDate.Time)
}
