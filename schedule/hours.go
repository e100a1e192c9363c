/*
hours.go - Work-duration summaries over generated events

PURPOSE:
  Aggregates raw worked hours from a slice of ScheduleEvents: per team and
  overall, split into regular and overtime, with unpaid breaks deducted.
  This is duration arithmetic only - no pay rules, no compliance checks.

PRECISION:
  Totals use decimal.Decimal so that break deductions expressed in minutes
  (e.g. 45 min on an 8h shift) sum exactly across long ranges instead of
  accumulating binary floating point error.
*/
package schedule

import (
	"sort"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// TeamHours is the aggregate for one team.
type TeamHours struct {
	Team          string
	Shifts        int
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
}

// Total returns regular plus overtime hours.
func (t TeamHours) Total() decimal.Decimal {
	return t.RegularHours.Add(t.OvertimeHours)
}

// HoursSummary aggregates worked durations across a set of events.
type HoursSummary struct {
	Shifts        int
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	ByTeam        []TeamHours
}

// Total returns regular plus overtime hours.
func (s HoursSummary) Total() decimal.Decimal {
	return s.RegularHours.Add(s.OvertimeHours)
}

// eventWorkedMinutes returns the payable span of one event: the shift window
// (crossing midnight when it does) minus the unpaid break.
func eventWorkedMinutes(ev ScheduleEvent) int {
	if !ev.IsWork() {
		return 0
	}
	minutes := ev.Shift.DurationMinutes() - ev.Shift.BreakMinutes
	if minutes < 0 {
		return 0
	}
	return minutes
}

// SummarizeHours computes worked-hour totals over the events. Rest events
// contribute nothing; overtime-flagged events accrue to the overtime bucket.
func SummarizeHours(events []ScheduleEvent) HoursSummary {
	summary := HoursSummary{
		RegularHours:  decimal.Zero,
		OvertimeHours: decimal.Zero,
	}
	byTeam := make(map[string]*TeamHours)

	for _, ev := range events {
		minutes := eventWorkedMinutes(ev)
		if minutes == 0 {
			continue
		}
		hours := decimal.NewFromInt(int64(minutes)).Div(sixty)

		summary.Shifts++
		if ev.Overtime {
			summary.OvertimeHours = summary.OvertimeHours.Add(hours)
		} else {
			summary.RegularHours = summary.RegularHours.Add(hours)
		}

		for _, team := range ev.Teams {
			th, ok := byTeam[team]
			if !ok {
				th = &TeamHours{Team: team, RegularHours: decimal.Zero, OvertimeHours: decimal.Zero}
				byTeam[team] = th
			}
			th.Shifts++
			if ev.Overtime {
				th.OvertimeHours = th.OvertimeHours.Add(hours)
			} else {
				th.RegularHours = th.RegularHours.Add(hours)
			}
		}
	}

	for _, th := range byTeam {
		summary.ByTeam = append(summary.ByTeam, *th)
	}
	sort.Slice(summary.ByTeam, func(i, j int) bool {
		return summary.ByTeam[i].Team < summary.ByTeam[j].Team
	})
	return summary
}
