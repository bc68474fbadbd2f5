package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name     string
		raw      int
		expected string
	}{
		{"midnight", 0, "00:00"},
		{"one digit hour", 5, "05:00"},
		{"two digit hour", 12, "12:00"},
		{"two digit last hour", 23, "23:00"},
		{"two digit minutes past midnight", 45, "00:45"},
		{"three digits", 930, "09:30"},
		{"three digits early", 105, "01:05"},
		{"four digits", 2215, "22:15"},
		{"four digits noon", 1200, "12:00"},
		{"latest", 2359, "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTime(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeTime_OneAndTwoDigitBranchesAgree(t *testing.T) {
	for raw := 0; raw <= 9; raw++ {
		one, err := NormalizeTime(raw)
		require.NoError(t, err)
		assert.Regexp(t, `^0\d:00$`, one)
	}
	for raw := 10; raw <= 23; raw++ {
		two, err := NormalizeTime(raw)
		require.NoError(t, err)
		assert.Regexp(t, `^\d{2}:00$`, two)
	}
}

func TestNormalizeTime_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  int
	}{
		{"negative", -1},
		{"above range", 2360},
		{"far above range", 99999},
		{"minutes overflow", 1299},
		{"two digit minutes overflow", 75},
		{"three digit minutes overflow", 961},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeTime(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedTime)
		})
	}
}

func TestNormalizeTime_ShapeAndHourForAllValidInputs(t *testing.T) {
	shape := regexp.MustCompile(`^\d{2}:\d{2}$`)
	for raw := 0; raw <= 2359; raw++ {
		norm, err := NormalizeTime(raw)
		if err != nil {
			require.ErrorIs(t, err, ErrMalformedTime)
			continue
		}
		require.Truef(t, shape.MatchString(norm), "raw %d produced %q", raw, norm)

		hour, err := HourOf(norm)
		require.NoError(t, err)
		require.GreaterOrEqual(t, hour, 0)
		require.LessOrEqual(t, hour, 23)
	}
}

func TestParseRawTime(t *testing.T) {
	v, err := ParseRawTime(" 930 ")
	require.NoError(t, err)
	assert.Equal(t, 930, v)

	_, err = ParseRawTime("9:30")
	require.ErrorIs(t, err, ErrMalformedTime)

	_, err = ParseRawTime("")
	require.ErrorIs(t, err, ErrMalformedTime)
}

func TestHourOf(t *testing.T) {
	h, err := HourOf("22:15")
	require.NoError(t, err)
	assert.Equal(t, 22, h)

	for _, bad := range []string{"", "2215", "24:00", "ab:00", "9:30"} {
		_, err := HourOf(bad)
		assert.ErrorIs(t, err, ErrMalformedTime, bad)
	}
}

func TestNormalizeTime_HourAlwaysInRange(t *testing.T) {
	for raw := 0; raw <= 2359; raw++ {
		norm, err := NormalizeTime(raw)
		if err != nil {
			require.ErrorIs(t, err, ErrMalformedTime, "raw %d", raw)
			continue
		}
		h, err := HourOf(norm)
		require.NoError(t, err, "raw %d -> %s", raw, norm)
		assert.True(t, h >= 0 && h <= 23, "raw %d -> %s", raw, norm)
		if raw >= 24 && raw <= 59 {
			assert.Equal(t, "00", norm[:2], "raw %d reads as minutes past midnight", raw)
		}
	}
}
