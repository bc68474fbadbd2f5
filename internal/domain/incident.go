package domain

import (
	"math"
	"sort"
	"time"
)

// RawRecord is one source row with only the columns the dashboard uses.
// JSON tags match the CSV header so upstream collectors can publish rows as-is.
type RawRecord struct {
	DateOcc   string `json:"DATE OCC"`    // MM/DD/YYYY, optional " hh:mm:ss AM" suffix
	TimeOcc   string `json:"TIME OCC"`    // HHMM integer, leading zeros stripped
	AreaName  string `json:"AREA NAME"`   // patrol division, e.g. "77th Street"
	CrimeDesc string `json:"Crm Cd Desc"` // free-text crime category
	Lat       string `json:"LAT"`
	Lon       string `json:"LON"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Incident is a preprocessed crime report with its derived temporal fields.
type Incident struct {
	OccurredAt  time.Time    `json:"occurred_at"`
	TimeRaw     int          `json:"time_raw"`
	TimeNorm    string       `json:"time_norm"`
	Year        int          `json:"year"`
	Period      MonthPeriod  `json:"period"`
	Hour        int          `json:"hour"`
	Weekday     time.Weekday `json:"weekday"`
	Season      Season       `json:"season"`
	AreaName    string       `json:"area_name"`
	Category    string       `json:"category"`
	Geo         Geo          `json:"geo"`
	HasLocation bool         `json:"has_location"`
}

// Table is an immutable, in-memory set of incidents. Filtering returns a new
// Table; no method mutates the receiver's rows.
type Table struct {
	rows     []Incident
	loadedAt time.Time
}

// NewTable wraps rows in a Table. The slice is owned by the Table afterwards.
func NewTable(rows []Incident, loadedAt time.Time) *Table {
	return &Table{rows: rows, loadedAt: loadedAt}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// LoadedAt returns when the underlying snapshot was built.
func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

// Each calls fn for every row in order. Rows are passed by value.
func (t *Table) Each(fn func(Incident)) {
	if t == nil {
		return
	}
	for i := range t.rows {
		fn(t.rows[i])
	}
}

// Where returns a new Table holding the rows for which keep returns true.
func (t *Table) Where(keep func(Incident) bool) *Table {
	if t == nil {
		return NewTable(nil, time.Time{})
	}
	out := make([]Incident, 0, len(t.rows)/4)
	for i := range t.rows {
		if keep(t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return NewTable(out, t.loadedAt)
}

// Years lists the distinct occurrence years in ascending order.
func (t *Table) Years() []int {
	seen := make(map[int]struct{})
	t.Each(func(in Incident) { seen[in.Year] = struct{}{} })
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Categories lists the distinct crime categories in ascending order.
func (t *Table) Categories() []string {
	return t.distinct(func(in Incident) string { return in.Category })
}

// Areas lists the distinct area names in ascending order.
func (t *Table) Areas() []string {
	return t.distinct(func(in Incident) string { return in.AreaName })
}

// DateRange returns the earliest and latest occurrence dates. ok is false for an empty table.
func (t *Table) DateRange() (first, last time.Time, ok bool) {
	t.Each(func(in Incident) {
		if !ok || in.OccurredAt.Before(first) {
			first = in.OccurredAt
		}
		if !ok || in.OccurredAt.After(last) {
			last = in.OccurredAt
		}
		ok = true
	})
	return first, last, ok
}

func (t *Table) distinct(field func(Incident) string) []string {
	seen := make(map[string]struct{})
	t.Each(func(in Incident) { seen[field(in)] = struct{}{} })
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// HasValidCoordinates reports whether g is a usable map position: finite,
// within WGS-84 bounds, and not the (0, 0) "location withheld" sentinel.
func HasValidCoordinates(g Geo) bool {
	if math.IsNaN(g.Lat) || math.IsNaN(g.Lon) || math.IsInf(g.Lat, 0) || math.IsInf(g.Lon, 0) {
		return false
	}
	if g.Lat == 0 && g.Lon == 0 {
		return false
	}
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}
