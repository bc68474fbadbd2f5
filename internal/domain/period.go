package domain

import (
	"fmt"
	"strings"
	"time"
)

// MonthPeriod is a (year, month) bucket for monthly time series.
type MonthPeriod struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) MonthPeriod {
	return MonthPeriod{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" period key.
func ParsePeriod(s string) (MonthPeriod, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthPeriod{}, fmt.Errorf("%w: period %q: expected YYYY-MM", ErrInvalidInput, s)
	}
	return PeriodOf(t), nil
}

// ParsePeriods parses a comma-separated list of "YYYY-MM" keys, ignoring blanks.
func ParsePeriods(s string) ([]MonthPeriod, error) {
	var out []MonthPeriod
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := ParsePeriod(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// String renders the period as "YYYY-MM".
func (p MonthPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC on the first day of the period.
func (p MonthPeriod) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Before reports whether p sorts strictly before q.
func (p MonthPeriod) Before(q MonthPeriod) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// Season is a meteorological season.
type Season string

const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
	Winter Season = "Winter"
)

// Seasons lists every season in display order.
var Seasons = []Season{Spring, Summer, Fall, Winter}

// SeasonOf maps a month to its season. Winter wraps the year boundary, so its
// membership test is month >= 12 || month <= 2 rather than a linear range.
func SeasonOf(m time.Month) Season {
	switch {
	case m >= time.December || m <= time.February:
		return Winter
	case m >= time.March && m <= time.May:
		return Spring
	case m >= time.June && m <= time.August:
		return Summer
	default:
		return Fall
	}
}
