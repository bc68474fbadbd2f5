package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/crime-insights-service/internal/adapter/csvsource"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

var (
	mockStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	mockEnd   = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
)

func generate(t *testing.T, seed uint64, n int) ([]byte, []domain.RawRecord) {
	t.Helper()
	gen, err := newMockGenerator(seed, mockStart, mockEnd)
	require.NoError(t, err)
	var buf bytes.Buffer
	records, err := writeMockCSV(&buf, gen, n)
	require.NoError(t, err)
	return buf.Bytes(), records
}

// execute runs crimectl with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MODEL_URL", "")
	t.Setenv("EXCLUDE_PERIODS", "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeMockFile(t *testing.T, rows int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crime_mock.csv")
	_, err := execute(t, "genmock", "--rows", strconv.Itoa(rows), "--start", "2023-01-01", "--end", "2023-12-31", "--out", path)
	require.NoError(t, err)
	return path
}


func TestGenmock_Deterministic(t *testing.T) {
	a, _ := generate(t, 7, 200)
	b, _ := generate(t, 7, 200)
	c, _ := generate(t, 8, 200)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenmock_DecodesAndPreprocesses(t *testing.T) {
	data, records := generate(t, 42, 300)

	decoded, err := csvsource.Decode(bytes.NewReader(data), charmap.ISO8859_1, 0)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)

	table, err := domain.Preprocess(decoded, mockEnd)
	require.NoError(t, err)
	assert.Equal(t, 300, table.Len())
	assert.Equal(t, []int{2023}, table.Years())
}

func TestGenmock_RejectsInvertedRange(t *testing.T) {
	_, err := newMockGenerator(1, mockEnd, mockStart)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunValidation_Passes(t *testing.T) {
	_, records := generate(t, 42, 500)
	var out bytes.Buffer

	ok := runValidation(&out, records)

	assert.True(t, ok, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Records: 500 decoded, 500 parsed")
}

func TestRunValidation_ReportsEveryBadRow(t *testing.T) {
	_, records := generate(t, 42, 10)
	records[2].TimeOcc = "2575"
	records[5].DateOcc = "2023-05-01"
	records[7].AreaName = " "
	var out bytes.Buffer

	ok := runValidation(&out, records)

	assert.False(t, ok)
	report := out.String()
	assert.Contains(t, report, "Row parsing")
	assert.Contains(t, report, "FAIL (3 errors)")
	assert.Contains(t, report, "row 3:")
	assert.Contains(t, report, "row 6:")
	assert.Contains(t, report, "row 8: empty AREA NAME")
	assert.Contains(t, report, "Validation FAILED.")
}

func TestRunValidation_FlagsOutOfTownCoordinates(t *testing.T) {
	_, records := generate(t, 42, 10)
	records[0].Lat, records[0].Lon = "40.7128", "-74.0060"
	var out bytes.Buffer

	ok := runValidation(&out, records)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "outside Los Angeles")
}

func TestRunValidation_Empty(t *testing.T) {
	var out bytes.Buffer
	assert.False(t, runValidation(&out, nil))
	assert.Contains(t, out.String(), "export has no data rows")
}

func TestValidateCmd(t *testing.T) {
	path := writeMockFile(t, 120)

	out, err := execute(t, "validate", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
}

func TestValidateCmd_Fails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("DATE OCC,TIME OCC,AREA NAME,Crm Cd Desc,LAT,LON\nnot-a-date,100,Central,BURGLARY,0,0\n"), 0o600))

	out, err := execute(t, "validate", "--file", path)

	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "Validation FAILED.")
}

func TestSummaryCmd_JSON(t *testing.T) {
	path := writeMockFile(t, 150)

	out, err := execute(t, "summary", "--data-file", path, "--json")
	require.NoError(t, err)

	var got struct {
		Options struct {
			Rows  int   `json:"rows"`
			Years []int `json:"years"`
		} `json:"options"`
		Areas   []domain.AreaCount    `json:"areas"`
		Seasons []domain.SeasonShare  `json:"seasons"`
		Weekly  []domain.WeekdayCount `json:"weekly"`
		Hourly  []domain.HourCount    `json:"hourly"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 150, got.Options.Rows)
	assert.Equal(t, []int{2023}, got.Options.Years)
	assert.NotEmpty(t, got.Areas)
	assert.Len(t, got.Weekly, 7)
	assert.Len(t, got.Hourly, 24)
}

func TestSummaryCmd_Table(t *testing.T) {
	path := writeMockFile(t, 80)

	out, err := execute(t, "summary", "--data-file", path, "--year", "2023")

	require.NoError(t, err)
	assert.Contains(t, out, "Rows loaded: 80")
	assert.Contains(t, out, "AREA")
	assert.Contains(t, out, "SEASON")
	assert.Contains(t, out, "Monday")
}

func TestSummaryCmd_EmptyYear(t *testing.T) {
	path := writeMockFile(t, 40)

	out, err := execute(t, "summary", "--data-file", path, "--year", "2021")

	require.NoError(t, err)
	assert.Contains(t, out, "No incidents match the filter.")
}

func TestSummaryCmd_BadDate(t *testing.T) {
	path := writeMockFile(t, 10)

	_, err := execute(t, "summary", "--data-file", path, "--from", "05/01/2023")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTrendCmd(t *testing.T) {
	path := writeMockFile(t, 200)

	out, err := execute(t, "trend", "--data-file", path, "--category", "VEHICLE - STOLEN")

	require.NoError(t, err)
	assert.Contains(t, out, "PERIOD")
	assert.Contains(t, out, "VEHICLE - STOLEN")
	assert.Contains(t, out, "2023-01")
}

func TestGeoCmd_Limit(t *testing.T) {
	path := writeMockFile(t, 200)

	out, err := execute(t, "geo", "--data-file", path, "--limit", "3", "--json")
	require.NoError(t, err)

	var points []domain.GeoPoint
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 3)
	assert.GreaterOrEqual(t, points[0].Count, points[1].Count)
	assert.GreaterOrEqual(t, points[1].Count, points[2].Count)
}

func TestPredictCmd_Disabled(t *testing.T) {
	path := writeMockFile(t, 10)

	_, err := execute(t, "predict", "--data-file", path, "--area", "Central")

	require.ErrorIs(t, err, domain.ErrPredictorDisabled)
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
	}{
		{"predict needs area", []string{"predict"}, "area"},
		{"validate needs file", []string{"validate"}, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), `required flag(s) "`+tt.flag+`" not set`)
		})
	}
}
