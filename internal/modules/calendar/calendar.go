// Package calendar provides month arithmetic and business day calculations
// for forecast time axes.
//
// Periods are calendar months identified by "YYYY-MM" keys. Business days
// are Monday through Friday with no holiday calendar, so ratios between
// months stay deterministic regardless of locale.
package calendar

import (
	"fmt"
	"time"
)

// Period identifies a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a "YYYY-MM" key into a Period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// String returns the canonical "YYYY-MM" key for the period.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label returns a short human-readable label such as "Jan 2024".
func (p Period) Label() string {
	return p.Time().Format("Jan 2006")
}

// Time returns midnight UTC on the first day of the month.
func (p Period) Time() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	t := p.Time().AddDate(0, 1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// PriorYear returns the same month one year earlier. Used as the baseline
// for year-over-year business day comparisons.
func (p Period) PriorYear() Period {
	return Period{Year: p.Year - 1, Month: p.Month}
}

// Before reports whether p is chronologically before other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// BusinessDays counts the weekdays (Monday through Friday) in the period.
func BusinessDays(p Period) int {
	count := 0
	for d := p.Time(); d.Month() == p.Month; d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// BusinessDayRatio returns the ratio of business days in cur relative to
// base. Returns 1.0 when the base month has no business days so callers
// never divide by zero.
func BusinessDayRatio(cur, base Period) float64 {
	baseDays := BusinessDays(base)
	if baseDays == 0 {
		return 1.0
	}
	return float64(BusinessDays(cur)) / float64(baseDays)
}

// ForecastAxis returns the n consecutive months after cutoff, oldest first.
func ForecastAxis(cutoff Period, n int) []Period {
	if n <= 0 {
		return nil
	}
	axis := make([]Period, 0, n)
	p := cutoff
	for i := 0; i < n; i++ {
		p = p.Next()
		axis = append(axis, p)
	}
	return axis
}

// ParsePeriods parses a list of "YYYY-MM" keys, preserving order.
func ParsePeriods(keys []string) ([]Period, error) {
	periods := make([]Period, 0, len(keys))
	for _, key := range keys {
		p, err := ParsePeriod(key)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}
