package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Filter selects a partition of the incident table. It is passed explicitly
// into every aggregation; there is no shared filter state.
//
// A non-zero Year takes precedence over the date range. From and To are
// inclusive calendar days; either may be zero to leave that side open.
// Category, when set, keeps only rows of that crime category.
type Filter struct {
	Year     int       `json:"year,omitempty"`
	From     time.Time `json:"from,omitzero"`
	To       time.Time `json:"to,omitzero"`
	Category string    `json:"category,omitempty"`
}

// Validate rejects an inverted date range or a negative year.
func (f Filter) Validate() error {
	if f.Year < 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidInput, f.Year)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return fmt.Errorf("%w: date range ends before it starts", ErrInvalidInput)
	}
	return nil
}

// Key returns a canonical string for use in cache keys.
func (f Filter) Key() string {
	var b strings.Builder
	b.WriteString("y=")
	if f.Year != 0 {
		b.WriteString(strconv.Itoa(f.Year))
	} else {
		b.WriteString("|from=")
		if !f.From.IsZero() {
			b.WriteString(f.From.Format(time.DateOnly))
		}
		b.WriteString("|to=")
		if !f.To.IsZero() {
			b.WriteString(f.To.Format(time.DateOnly))
		}
	}
	b.WriteString("|cat=")
	b.WriteString(f.Category)
	return b.String()
}

// Matches reports whether a single incident falls inside the partition.
func (f Filter) Matches(in Incident) bool {
	if f.Year != 0 {
		if in.Year != f.Year {
			return false
		}
	} else {
		if !f.From.IsZero() && in.OccurredAt.Before(dayStart(f.From)) {
			return false
		}
		if !f.To.IsZero() && in.OccurredAt.After(dayStart(f.To)) {
			return false
		}
	}
	return f.Category == "" || in.Category == f.Category
}

// Apply returns the partition of t selected by f as a new Table.
func (f Filter) Apply(t *Table) *Table {
	if f == (Filter{}) {
		return t
	}
	return t.Where(f.Matches)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
