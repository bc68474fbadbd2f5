package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the accepted spellings of DATE OCC. Both are MM/DD/YYYY;
// the export appends a constant time-of-day that carries no information.
var dateLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"01/02/2006",
}

// Preprocess parses raw source rows into an immutable Table, deriving the
// normalized time, year, month period, hour, weekday, and season of each row.
//
// Loading is all-or-nothing: the first malformed row fails the whole batch
// with ErrDataUnavailable wrapping the row's cause.
func Preprocess(records []RawRecord, loadedAt time.Time) (*Table, error) {
	rows := make([]Incident, 0, len(records))
	for i, rec := range records {
		in, err := ParseIncident(rec)
		if err != nil {
			// Row numbers are 1-based data rows, excluding the header.
			return nil, fmt.Errorf("%w: row %d: %w", ErrDataUnavailable, i+1, err)
		}
		rows = append(rows, in)
	}
	return NewTable(rows, loadedAt), nil
}

// ParseIncident converts one raw row into an Incident with derived fields.
func ParseIncident(rec RawRecord) (Incident, error) {
	occurred, err := ParseOccurredAt(rec.DateOcc)
	if err != nil {
		return Incident{}, err
	}

	raw, err := ParseRawTime(rec.TimeOcc)
	if err != nil {
		return Incident{}, err
	}
	norm, err := NormalizeTime(raw)
	if err != nil {
		return Incident{}, err
	}
	hour, err := HourOf(norm)
	if err != nil {
		return Incident{}, err
	}

	geo := Geo{Lat: parseFloatOrZero(rec.Lat), Lon: parseFloatOrZero(rec.Lon)}

	return Incident{
		OccurredAt:  occurred,
		TimeRaw:     raw,
		TimeNorm:    norm,
		Year:        occurred.Year(),
		Period:      PeriodOf(occurred),
		Hour:        hour,
		Weekday:     occurred.Weekday(),
		Season:      SeasonOf(occurred.Month()),
		AreaName:    strings.TrimSpace(rec.AreaName),
		Category:    strings.TrimSpace(rec.CrimeDesc),
		Geo:         geo,
		HasLocation: HasValidCoordinates(geo),
	}, nil
}

// ParseOccurredAt parses DATE OCC as MM/DD/YYYY, discarding any time-of-day
// suffix. The result is midnight UTC on that day.
func ParseOccurredAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: expected MM/DD/YYYY", s)
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
// Zero coordinates are the dataset's "location withheld" sentinel anyway.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
