package schedule

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Timezone-naive calendar day
// =============================================================================

// Date is a local calendar date, not an instant. All schedule arithmetic works
// on whole days; there is deliberately no timezone handling anywhere in the
// engine. Internally the day is pinned to UTC midnight so comparisons are
// exact.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON encodes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes "2006-01-02"; null and "" yield the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the signed whole-day distance from one date to another.
// Negative when to is before from.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MonthsBetween returns the signed whole-month distance, ignoring day-of-month.
func MonthsBetween(from, to Date) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// FlooredMod returns a mod n normalized into [0, n). Go's % truncates toward
// zero, so -1 % 18 == -1; cycle offsets for dates before the reference date
// require the floored form, e.g. FlooredMod(-1, 18) == 17.
func FlooredMod(a, n int) int {
	return ((a % n) + n) % n
}

// =============================================================================
// DATE RANGE
// =============================================================================

// DateRange is an inclusive [Start, End] span of calendar dates.
type DateRange struct {
	Start Date
	End   Date
}

// Valid reports whether the range is usable (both set, start not after end).
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.Start.BeforeOrEqual(r.End)
}

// Contains reports whether d falls within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days returns the number of dates in the range, or 0 when invalid.
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// =============================================================================
// TIME OF DAY - Clock time within a shift day
// =============================================================================

// TimeOfDay is a clock time expressed as minutes since midnight [0, 1440).
// Shift windows are pairs of TimeOfDay; a window whose end is at or before its
// start crosses midnight into the next calendar day.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "15:04".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON encodes the time as "15:04".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes "15:04".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = 0
		return nil
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// minutesInDay is the length of one calendar day for interval arithmetic.
const minutesInDay = 24 * 60

// spanMinutes returns the duration in minutes of the window [start, end),
// extending past midnight when end <= start.
func spanMinutes(start, end TimeOfDay) int {
	if end > start {
		return int(end - start)
	}
	return int(end) + minutesInDay - int(start)
}

// windowsOverlap reports whether two shift windows intersect, treating a
// window whose end is at or before its start as continuing into the next day.
func windowsOverlap(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	a0, a1 := int(aStart), int(aEnd)
	if a1 <= a0 {
		a1 += minutesInDay
	}
	b0, b1 := int(bStart), int(bEnd)
	if b1 <= b0 {
		b1 += minutesInDay
	}
	// Compare on a 48h axis; also test each window shifted by one day so an
	// overnight tail meets the other's early-morning window. Both directions
	// are shifted, keeping the relation symmetric.
	if a0 < b1 && b0 < a1 {
		return true
	}
	if a0 < b1+minutesInDay && b0+minutesInDay < a1 {
		return true
	}
	return a0+minutesInDay < b1 && b0 < a1+minutesInDay
}
