package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/brcurves/svenfit/internal/curve"
)

// ParseReferenceRates reads a B3 "taxas referenciais" DI x Pre export and
// returns one observation per tenor row. The expected layout is
// semicolon-separated with the calendar-day count in the first column and
// the 252-business-day annualized rate, in percent, in the second; extra
// columns (such as the 360-day rate) are ignored. Header rows and blank
// lines are skipped. Business-day counts are derived from tradeDate using
// the calendar.
func ParseReferenceRates(r io.Reader, tradeDate time.Time, cal *Calendar) (curve.ObservationSet, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	obs := make(curve.ObservationSet, 0)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rates: %w", err)
		}
		line++

		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		calendarDays, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			// Non-numeric first column: header row.
			continue
		}

		rate, err := parseBrazilianPercent(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		maturity := tradeDate.AddDate(0, 0, calendarDays)
		obs = append(obs, curve.ObservationPoint{
			CalendarDays: calendarDays,
			BusinessDays: cal.BusinessDays(tradeDate, maturity),
			Rate:         rate,
		})
	}

	if err := obs.Validate(); err != nil {
		return nil, err
	}
	return obs, nil
}

// parseBrazilianPercent parses "14,90" (percent, comma decimal separator)
// into a fraction, 0.1490. A dot decimal separator is accepted too.
func parseBrazilianPercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	return v / 100, nil
}
