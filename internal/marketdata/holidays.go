package marketdata

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// LoadHolidays reads a holiday file with one ISO date (YYYY-MM-DD) per line.
// Blank lines and lines starting with # are ignored.
func LoadHolidays(path string) ([]time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holidays: %w", err)
	}
	defer f.Close()

	var holidays []time.Time
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		d, err := time.Parse("2006-01-02", text)
		if err != nil {
			return nil, fmt.Errorf("holidays line %d: invalid date %q", line, text)
		}
		holidays = append(holidays, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read holidays: %w", err)
	}
	return holidays, nil
}
