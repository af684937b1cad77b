// Package marketdata ingests B3 DI x Pre referential rate tables and turns
// them into observation sets, deriving business-day counts from a holiday
// calendar.
package marketdata

import "time"

// Calendar knows which dates are Brazilian market holidays. Weekends are
// always non-business days.
type Calendar struct {
	holidays map[string]bool
}

// NewCalendar creates a calendar from a holiday list. An empty list gives a
// weekends-only calendar.
func NewCalendar(holidays []time.Time) *Calendar {
	m := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		m[h.Format("2006-01-02")] = true
	}
	return &Calendar{holidays: m}
}

// IsBusinessDay reports whether d is a settlement day.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.holidays[d.Format("2006-01-02")]
}

// BusinessDays counts settlement days in (start, end], the DI convention for
// the "saques" day count between trade date and maturity.
func (c *Calendar) BusinessDays(start, end time.Time) int {
	n := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			n++
		}
	}
	return n
}
