package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAreaCentral = "Central"
	testCategory    = "VEHICLE - STOLEN"
)

func rawRow(date, tm, area string) RawRecord {
	return RawRecord{
		DateOcc:   date,
		TimeOcc:   tm,
		AreaName:  area,
		CrimeDesc: testCategory,
		Lat:       "34.0425",
		Lon:       "-118.2468",
	}
}

func TestParseIncident(t *testing.T) {
	t.Run("export date with time suffix", func(t *testing.T) {
		in, err := ParseIncident(rawRow("01/15/2023 12:00:00 AM", "930", testAreaCentral))

		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), in.OccurredAt)
		assert.Equal(t, 930, in.TimeRaw)
		assert.Equal(t, "09:30", in.TimeNorm)
		assert.Equal(t, 9, in.Hour)
		assert.Equal(t, 2023, in.Year)
		assert.Equal(t, MonthPeriod{Year: 2023, Month: time.January}, in.Period)
		assert.Equal(t, time.Sunday, in.Weekday)
		assert.Equal(t, Winter, in.Season)
		assert.Equal(t, testAreaCentral, in.AreaName)
		assert.Equal(t, testCategory, in.Category)
		assert.True(t, in.HasLocation)
	})

	t.Run("bare date", func(t *testing.T) {
		in, err := ParseIncident(rawRow("06/01/2023", "2215", testAreaCentral))

		require.NoError(t, err)
		assert.Equal(t, "22:15", in.TimeNorm)
		assert.Equal(t, 22, in.Hour)
		assert.Equal(t, time.Thursday, in.Weekday)
		assert.Equal(t, Summer, in.Season)
	})

	t.Run("withheld location", func(t *testing.T) {
		rec := rawRow("06/01/2023", "2215", testAreaCentral)
		rec.Lat, rec.Lon = "0", "0"
		in, err := ParseIncident(rec)

		require.NoError(t, err)
		assert.False(t, in.HasLocation)
	})

	t.Run("trims area and category", func(t *testing.T) {
		rec := rawRow("06/01/2023", "1", "  Topanga ")
		rec.CrimeDesc = " BATTERY - SIMPLE ASSAULT "
		in, err := ParseIncident(rec)

		require.NoError(t, err)
		assert.Equal(t, "Topanga", in.AreaName)
		assert.Equal(t, "BATTERY - SIMPLE ASSAULT", in.Category)
		assert.Equal(t, "01:00", in.TimeNorm)
	})

	t.Run("day-first date rejected", func(t *testing.T) {
		_, err := ParseIncident(rawRow("2023-06-01", "2215", testAreaCentral))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MM/DD/YYYY")
	})

	t.Run("non-numeric time", func(t *testing.T) {
		_, err := ParseIncident(rawRow("06/01/2023", "noon", testAreaCentral))
		require.ErrorIs(t, err, ErrMalformedTime)
	})

	t.Run("out of range time", func(t *testing.T) {
		_, err := ParseIncident(rawRow("06/01/2023", "2400", testAreaCentral))
		require.ErrorIs(t, err, ErrMalformedTime)
	})
}

func TestPreprocess(t *testing.T) {
	loadedAt := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("all rows parsed", func(t *testing.T) {
		table, err := Preprocess([]RawRecord{
			rawRow("01/15/2023 12:00:00 AM", "930", testAreaCentral),
			rawRow("06/01/2023 12:00:00 AM", "2215", testAreaCentral),
		}, loadedAt)

		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())
		assert.Equal(t, loadedAt, table.LoadedAt())
	})

	t.Run("one malformed row fails the whole load", func(t *testing.T) {
		table, err := Preprocess([]RawRecord{
			rawRow("01/15/2023", "930", testAreaCentral),
			rawRow("01/16/2023", "x", testAreaCentral),
		}, loadedAt)

		require.Error(t, err)
		assert.Nil(t, table)
		assert.ErrorIs(t, err, ErrDataUnavailable)
		assert.ErrorIs(t, err, ErrMalformedTime)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("empty input", func(t *testing.T) {
		table, err := Preprocess(nil, loadedAt)

		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})
}

func TestTableMetadata(t *testing.T) {
	table, err := Preprocess([]RawRecord{
		rawRow("03/02/2021", "100", "Harbor"),
		rawRow("12/31/2023", "2359", testAreaCentral),
		rawRow("07/04/2022", "1200", testAreaCentral),
	}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []int{2021, 2022, 2023}, table.Years())
	assert.Equal(t, []string{testAreaCentral, "Harbor"}, table.Areas())
	assert.Equal(t, []string{testCategory}, table.Categories())

	first, last, ok := table.DateRange()
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), last)

	_, _, ok = NewTable(nil, time.Time{}).DateRange()
	assert.False(t, ok)
}

func TestHasValidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		geo  Geo
		want bool
	}{
		{"downtown", Geo{Lat: 34.0425, Lon: -118.2468}, true},
		{"sentinel", Geo{}, false},
		{"latitude out of range", Geo{Lat: 91, Lon: -118}, false},
		{"longitude out of range", Geo{Lat: 34, Lon: -181}, false},
		{"zero latitude only", Geo{Lat: 0, Lon: -118.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasValidCoordinates(tt.geo))
		})
	}
}

func TestCurrentPeriod(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, 5, 17, 23, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	assert.Equal(t, MonthPeriod{Year: 2024, Month: time.May}, CurrentPeriod())
	assert.Equal(t, time.Date(2024, 5, 17, 23, 0, 0, 0, time.UTC), Now())
}
