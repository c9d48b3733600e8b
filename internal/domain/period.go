package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDay drops the clock part of t, keeping its calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

func ParseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, NewValidationError(field, "required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// DayBefore is the as-of date for an opening balance of a window starting at t.
func DayBefore(t time.Time) time.Time {
	return TruncateDay(t).AddDate(0, 0, -1)
}

// Window bounds a balance query. Nil ends are open; both ends are inclusive.
type Window struct {
	Start *time.Time
	End   *time.Time
}

func AsOf(t time.Time) Window {
	end := TruncateDay(t)
	return Window{End: &end}
}

func Between(start, end time.Time) Window {
	s, e := TruncateDay(start), TruncateDay(end)
	return Window{Start: &s, End: &e}
}

func (w Window) Validate() error {
	if w.Start != nil && w.End != nil && w.End.Before(*w.Start) {
		return NewValidationError("end_date", "must not be before start_date")
	}
	return nil
}

type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodAnnual    PeriodType = "annual"
)

func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodAnnual:
		return true
	}
	return false
}

type Period struct {
	Number int
	Label  string
	Start  time.Time
	End    time.Time
}

func (p Period) Overlaps(start, end time.Time) bool {
	return !p.End.Before(start) && !p.Start.After(end)
}

// GeneratePeriods splits a year into budget periods. The numbering it returns
// is what budget lines store, so it must stay stable.
func GeneratePeriods(pt PeriodType, year int) ([]Period, error) {
	if year < 1900 || year > 9999 {
		return nil, NewValidationError("year", "must be between 1900 and 9999")
	}

	switch pt {
	case PeriodMonthly:
		periods := make([]Period, 0, 12)
		for m := time.January; m <= time.December; m++ {
			start := Date(year, m, 1)
			periods = append(periods, Period{
				Number: int(m),
				Label:  m.String(),
				Start:  start,
				End:    start.AddDate(0, 1, -1),
			})
		}
		return periods, nil
	case PeriodQuarterly:
		periods := make([]Period, 0, 4)
		for q := 1; q <= 4; q++ {
			start := Date(year, time.Month((q-1)*3+1), 1)
			periods = append(periods, Period{
				Number: q,
				Label:  fmt.Sprintf("Q%d %d", q, year),
				Start:  start,
				End:    start.AddDate(0, 3, -1),
			})
		}
		return periods, nil
	case PeriodAnnual:
		return []Period{{
			Number: 1,
			Label:  fmt.Sprintf("%d", year),
			Start:  Date(year, time.January, 1),
			End:    Date(year, time.December, 31),
		}}, nil
	}
	return nil, NewValidationError("period_type", "must be monthly, quarterly or annual")
}
