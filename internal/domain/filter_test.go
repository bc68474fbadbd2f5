package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilter_Apply(t *testing.T) {
	table := sampleTable(t)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 6},
		{"year", Filter{Year: 2023}, 4},
		{"year wins over range", Filter{Year: 2022, From: day(2023, 1, 1)}, 1},
		{"inclusive range", Filter{From: day(2023, 6, 1), To: day(2023, 6, 2)}, 2},
		{"open start", Filter{To: day(2023, 1, 15)}, 2},
		{"open end", Filter{From: day(2024, 1, 1)}, 1},
		{"category", Filter{Category: "VANDALISM"}, 2},
		{"year and category", Filter{Year: 2023, Category: "BURGLARY"}, 3},
		{"no matches", Filter{Year: 2019}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Apply(table).Len())
		})
	}
	assert.Equal(t, 6, table.Len(), "filtering must not mutate the source table")
}

func TestFilter_RangeIgnoresTimeOfDay(t *testing.T) {
	table := sampleTable(t)
	f := Filter{From: time.Date(2023, 6, 1, 18, 0, 0, 0, time.UTC), To: time.Date(2023, 6, 1, 6, 0, 0, 0, time.UTC)}

	assert.Equal(t, 1, f.Apply(table).Len())
}

func TestFilter_Validate(t *testing.T) {
	require.NoError(t, Filter{}.Validate())
	require.NoError(t, Filter{From: day(2023, 1, 1), To: day(2023, 1, 1)}.Validate())

	assert.ErrorIs(t, Filter{Year: -1}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Filter{From: day(2023, 2, 1), To: day(2023, 1, 1)}.Validate(), ErrInvalidInput)
}

func TestFilter_Key(t *testing.T) {
	a := Filter{Year: 2023}
	b := Filter{Year: 2023, From: day(2020, 1, 1)}
	c := Filter{From: day(2023, 1, 1), To: day(2023, 12, 31)}

	assert.Equal(t, a.Key(), b.Key(), "range is ignored when a year is set")
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, c.Key(), Filter{From: day(2023, 1, 1)}.Key())
	assert.NotEqual(t, a.Key(), Filter{Year: 2023, Category: "ARSON"}.Key())
}

func TestParsePeriods(t *testing.T) {
	got, err := ParsePeriods("2024-05, 2023-12,")
	require.NoError(t, err)
	assert.Equal(t, []MonthPeriod{{2024, time.May}, {2023, time.December}}, got)
	assert.Equal(t, "2024-05", got[0].String())
	assert.True(t, got[1].Before(got[0]))

	_, err = ParsePeriods("May 2024")
	assert.ErrorIs(t, err, ErrInvalidInput)

	none, err := ParsePeriods("")
	require.NoError(t, err)
	assert.Empty(t, none)
}
