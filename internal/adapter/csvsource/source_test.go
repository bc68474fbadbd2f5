package csvsource

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

const sampleCSV = `DR_NO,Date Rptd,DATE OCC,TIME OCC,AREA,AREA NAME,Crm Cd,Crm Cd Desc,LAT,LON
190326475,03/01/2020 12:00:00 AM,03/01/2020 12:00:00 AM,2130,07,Wilshire,510,VEHICLE - STOLEN,34.0375,-118.3506
200106753,02/09/2020 12:00:00 AM,02/08/2020 12:00:00 AM,1800,01,Central,330,BURGLARY FROM VEHICLE,34.0444,-118.2628
200320258,11/11/2020 12:00:00 AM,11/04/2020 12:00:00 AM,1700,03,Southwest,480,BIKE - STOLEN,34.021,-118.3002
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"ISO-8859-1", "latin1", " iso8859-1 "} {
		enc, err := LookupEncoding(name)
		require.NoError(t, err, name)
		assert.Equal(t, charmap.ISO8859_1, enc)
	}

	enc, err := LookupEncoding("UTF-8")
	require.NoError(t, err)
	assert.Equal(t, unicode.UTF8, enc)

	_, err = LookupEncoding("auto")
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(sampleCSV), unicode.UTF8, 0)

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, domain.RawRecord{
		DateOcc:   "03/01/2020 12:00:00 AM",
		TimeOcc:   "2130",
		AreaName:  "Wilshire",
		CrimeDesc: "VEHICLE - STOLEN",
		Lat:       "34.0375",
		Lon:       "-118.3506",
	}, records[0])
}

func TestDecode_MaxRows(t *testing.T) {
	records, err := Decode(strings.NewReader(sampleCSV), unicode.UTF8, 2)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDecode_Latin1(t *testing.T) {
	// "SEÑAL" with Ñ as the single byte 0xD1.
	data := "DATE OCC,TIME OCC,AREA NAME,Crm Cd Desc,LAT,LON\n01/01/2023,100,Central,SE\xd1AL,34.0,-118.2\n"

	records, err := Decode(strings.NewReader(data), charmap.ISO8859_1, 0)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SEÑAL", records[0].CrimeDesc)
}

func TestDecode_MissingColumns(t *testing.T) {
	_, err := Decode(strings.NewReader("DATE OCC,TIME OCC\n01/01/2023,100\n"), unicode.UTF8, 0)

	require.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "AREA NAME")
	assert.Contains(t, err.Error(), "Crm Cd Desc")
}

func TestDecode_ShortRow(t *testing.T) {
	data := "DATE OCC,TIME OCC,AREA NAME,Crm Cd Desc,LAT,LON\n01/01/2023,100,Central\n"
	_, err := Decode(strings.NewReader(data), unicode.UTF8, 0)

	require.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "row 1")
}

func TestDecode_EmptyInput(t *testing.T) {
	_, err := Decode(strings.NewReader(""), unicode.UTF8, 0)
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crime.csv")
	encoded, err := charmap.ISO8859_1.NewEncoder().String(sampleCSV)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))

	src := NewFileSource(path, charmap.ISO8859_1, 0)
	records, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "file:"+path, src.Identity())
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.csv"), charmap.ISO8859_1, 0)
	_, err := src.Fetch(context.Background())

	require.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DOWNLOAD", r.URL.Query().Get("accessType"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, sampleCSV)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/rows.csv?accessType=DOWNLOAD", unicode.UTF8, 0, 5*time.Second, discardLogger())
	records, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "http:"+srv.URL+"/rows.csv?accessType=DOWNLOAD", src.Identity())
}

func TestHTTPSource_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, unicode.UTF8, 0, 5*time.Second, discardLogger())
	records, err := src.Fetch(context.Background())

	require.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, unicode.UTF8, 0, 50*time.Millisecond, discardLogger())
	_, err := src.Fetch(context.Background())

	require.ErrorIs(t, err, domain.ErrDataUnavailable)
}
