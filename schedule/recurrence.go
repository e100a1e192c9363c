/*
recurrence.go - RRULE-style recurrence evaluation

PURPOSE:
  RecurrenceRule decides which calendar dates a schedule applies to. The
  calendar frequencies (daily/weekly/monthly/yearly) follow the usual RRULE
  semantics of interval stepping from a start date, optionally narrowed by
  by-weekday / by-month-day sets. On top of those, FreqQuattroDueCycle ignores
  the calendar entirely and evaluates a fixed-length work/rest cycle: the
  first WorkDays offsets of the cycle are work positions, the remaining
  RestDays offsets are rest.

CYCLE OFFSETS:
  The cycle offset of a date is FlooredMod(DaysBetween(start, date),
  CycleLength). The floored form matters: for dates before the start the raw
  day difference is negative, and Go's truncating % would produce a negative
  offset instead of wrapping into [0, CycleLength).

END CONDITIONS:
  - EndNever:  the rule never expires
  - EndUntil:  dates after Until are excluded; Until itself still matches
  - EndCount:  only the first Count occurrences match, counted under the
               rule's own stepping; the nth occurrence is the last match

A rule only decides cadence. Which shift is worked on a given work offset
comes from the WorkScheduleTemplate the rule is paired with.

SEE ALSO:
  - provider.go: uses CycleOffset to pick the day's pattern
  - engine.go:   gates per-user generation on Matches
*/
package schedule

import (
	"time"
)

// =============================================================================
// FREQUENCY AND END CONDITION
// =============================================================================

// Frequency enumerates the supported recurrence cadences.
type Frequency string

const (
	FreqDaily           Frequency = "DAILY"
	FreqWeekly          Frequency = "WEEKLY"
	FreqMonthly         Frequency = "MONTHLY"
	FreqYearly          Frequency = "YEARLY"
	FreqQuattroDueCycle Frequency = "QUATTRODUE_CYCLE"
)

// EndType enumerates how a rule stops producing occurrences.
type EndType string

const (
	EndNever EndType = "NEVER"
	EndCount EndType = "COUNT"
	EndUntil EndType = "UNTIL_DATE"
)

// =============================================================================
// RECURRENCE RULE
// =============================================================================

// RecurrenceRule is a pure value; it is evaluated, never mutated, except for
// soft deactivation.
type RecurrenceRule struct {
	ID        string
	Frequency Frequency

	// Every Nth occurrence of the frequency. Zero behaves as 1.
	Interval int

	// Start is a hard lower bound: dates before it never match.
	Start Date

	// End condition.
	EndType EndType
	Count   int
	Until   Date

	// Weekly rules may restrict matching to these weekdays; monthly rules to
	// these days of the month. Empty sets fall back to the start date's
	// weekday / day-of-month.
	ByWeekdays  []time.Weekday
	ByMonthDays []int

	// QuattroDue cycle geometry; only meaningful for FreqQuattroDueCycle.
	// CycleLength mirrors the paired template's CycleDays by convention.
	CycleLength int
	WorkDays    int
	RestDays    int

	Active bool
}

func (r *RecurrenceRule) interval() int {
	if r.Interval <= 0 {
		return 1
	}
	return r.Interval
}

// CycleOffset returns the zero-based position of the date within the rule's
// cycle, normalized into [0, CycleLength). Returns -1 for non-cyclic rules or
// a non-positive cycle length.
func (r *RecurrenceRule) CycleOffset(d Date) int {
	if r.Frequency != FreqQuattroDueCycle || r.CycleLength <= 0 {
		return -1
	}
	return FlooredMod(DaysBetween(r.Start, d), r.CycleLength)
}

// Matches reports whether the rule produces an occurrence on the date.
func (r *RecurrenceRule) Matches(d Date) bool {
	if r == nil || r.Start.IsZero() {
		return false
	}
	if d.Before(r.Start) {
		return false
	}
	if r.EndType == EndUntil && d.After(r.Until) {
		return false
	}
	if !r.matchesBase(d) {
		return false
	}
	if r.EndType == EndCount {
		return r.occurrencesUpTo(d) <= r.Count
	}
	return true
}

// matchesBase evaluates frequency stepping only, ignoring end conditions.
func (r *RecurrenceRule) matchesBase(d Date) bool {
	switch r.Frequency {
	case FreqDaily:
		return DaysBetween(r.Start, d)%r.interval() == 0

	case FreqWeekly:
		weeks := DaysBetween(startOfWeek(r.Start), startOfWeek(d)) / 7
		if weeks%r.interval() != 0 {
			return false
		}
		if len(r.ByWeekdays) == 0 {
			return d.Weekday() == r.Start.Weekday()
		}
		for _, wd := range r.ByWeekdays {
			if d.Weekday() == wd {
				return true
			}
		}
		return false

	case FreqMonthly:
		if MonthsBetween(r.Start, d)%r.interval() != 0 {
			return false
		}
		if len(r.ByMonthDays) == 0 {
			return d.Day() == r.Start.Day()
		}
		for _, md := range r.ByMonthDays {
			if d.Day() == md {
				return true
			}
		}
		return false

	case FreqYearly:
		years := d.Year() - r.Start.Year()
		return years%r.interval() == 0 &&
			d.Month() == r.Start.Month() && d.Day() == r.Start.Day()

	case FreqQuattroDueCycle:
		if r.CycleLength <= 0 || r.WorkDays <= 0 {
			return false
		}
		return r.CycleOffset(d) < r.WorkDays

	default:
		return false
	}
}

// occurrencesUpTo counts base matches in [Start, d]. Used only for EndCount,
// where ranges are short-lived; a day walk keeps the stepping semantics exact
// for every frequency, including by-day narrowed weekly rules.
func (r *RecurrenceRule) occurrencesUpTo(d Date) int {
	count := 0
	for cur := r.Start; cur.BeforeOrEqual(d); cur = cur.AddDays(1) {
		if r.matchesBase(cur) {
			count++
			if count > r.Count {
				break
			}
		}
	}
	return count
}

// startOfWeek returns the Monday of the date's week.
func startOfWeek(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDays(-offset)
}
