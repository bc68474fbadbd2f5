package domain

import (
	"fmt"
	"sort"
	"time"
)

// AreaCount is one row of the per-area summary.
type AreaCount struct {
	AreaName   string  `json:"area_name"`
	Count      int     `json:"crime_count"`
	Percentage float64 `json:"crime_percentage"`
}

// HourCount is one row of the hourly heatmap.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"crime_count"`
}

// WeekdayCount is one row of the weekly heatmap.
type WeekdayCount struct {
	DayOfWeek string `json:"day_of_week"`
	Count     int    `json:"crime_count"`
}

// SeasonShare is one season's share of a partition.
type SeasonShare struct {
	Season     Season  `json:"season"`
	Count      int     `json:"crime_count"`
	Percentage float64 `json:"crime_percentage"`
}

// MonthCount is one point of a monthly time series.
type MonthCount struct {
	Period      string    `json:"period"`
	MonthStart  time.Time `json:"month_start"`
	Occurrences int       `json:"occurrences"`
}

// weekOrder is calendar order starting Monday, matching the predictor's DayOfWeek encoding.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Percent returns 100*part/whole. A zero whole yields ErrEmptyPartition
// instead of a division by zero.
func Percent(part, whole int) (float64, error) {
	if whole == 0 {
		return 0, fmt.Errorf("%w: percentage of %d over 0 rows", ErrEmptyPartition, part)
	}
	return 100.0 * float64(part) / float64(whole), nil
}

// AggregateAreas counts incidents per area and each area's share of the
// partition. An empty partition yields an empty result.
func AggregateAreas(t *Table) []AreaCount {
	counts := make(map[string]int)
	t.Each(func(in Incident) { counts[in.AreaName]++ })

	out := make([]AreaCount, 0, len(counts))
	total := t.Len()
	for area, n := range counts {
		pct, err := Percent(n, total)
		if err != nil {
			return []AreaCount{}
		}
		out = append(out, AreaCount{AreaName: area, Count: n, Percentage: pct})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AreaName < out[j].AreaName })
	return out
}

// AggregateHourly counts incidents per hour of day, ascending. Hours with no
// incidents are omitted; see DenseHours.
func AggregateHourly(t *Table) []HourCount {
	var counts [24]int
	t.Each(func(in Incident) {
		if in.Hour >= 0 && in.Hour < 24 {
			counts[in.Hour]++
		}
	})

	out := make([]HourCount, 0, 24)
	for h, n := range counts {
		if n > 0 {
			out = append(out, HourCount{Hour: h, Count: n})
		}
	}
	return out
}

// DenseHours expands a sparse hourly result to all 24 hours, zero-filled.
func DenseHours(sparse []HourCount) []HourCount {
	out := make([]HourCount, 24)
	for h := range out {
		out[h].Hour = h
	}
	for _, hc := range sparse {
		if hc.Hour >= 0 && hc.Hour < 24 {
			out[hc.Hour].Count = hc.Count
		}
	}
	return out
}

// AggregateWeekly counts incidents per weekday, Monday first. Days with no
// incidents are omitted.
func AggregateWeekly(t *Table) []WeekdayCount {
	var counts [7]int
	t.Each(func(in Incident) { counts[in.Weekday]++ })

	out := make([]WeekdayCount, 0, 7)
	for _, d := range weekOrder {
		if counts[d] > 0 {
			out = append(out, WeekdayCount{DayOfWeek: d.String(), Count: counts[d]})
		}
	}
	return out
}

// AggregateSeasons computes each season's share of all seasonal incidents.
// The four seasons partition the table, so the denominator equals its row
// count and the percentages sum to 100. An empty partition yields an empty result.
func AggregateSeasons(t *Table) []SeasonShare {
	counts := make(map[Season]int, len(Seasons))
	t.Each(func(in Incident) { counts[SeasonOf(in.OccurredAt.Month())]++ })

	total := 0
	for _, s := range Seasons {
		total += counts[s]
	}

	out := make([]SeasonShare, 0, len(Seasons))
	for _, s := range Seasons {
		pct, err := Percent(counts[s], total)
		if err != nil {
			return []SeasonShare{}
		}
		out = append(out, SeasonShare{Season: s, Count: counts[s], Percentage: pct})
	}
	return out
}

// MonthlySeries counts incidents per calendar month, ascending by period,
// dropping the excluded periods (known-incomplete trailing months).
func MonthlySeries(t *Table, exclude []MonthPeriod) []MonthCount {
	skip := make(map[MonthPeriod]struct{}, len(exclude))
	for _, p := range exclude {
		skip[p] = struct{}{}
	}

	counts := make(map[MonthPeriod]int)
	t.Each(func(in Incident) {
		if _, ok := skip[in.Period]; !ok {
			counts[in.Period]++
		}
	})

	periods := make([]MonthPeriod, 0, len(counts))
	for p := range counts {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	out := make([]MonthCount, len(periods))
	for i, p := range periods {
		out[i] = MonthCount{Period: p.String(), MonthStart: p.Start(), Occurrences: counts[p]}
	}
	return out
}

// CategoryMonthlySeries is MonthlySeries over the rows of one crime category.
func CategoryMonthlySeries(t *Table, category string, exclude []MonthPeriod) []MonthCount {
	return MonthlySeries(t.Where(func(in Incident) bool { return in.Category == category }), exclude)
}
