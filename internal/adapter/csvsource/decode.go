// Package csvsource reads LAPD incident exports from a local file or over HTTP.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

// Column headers of the export that the dashboard reads.
const (
	ColDateOcc   = "DATE OCC"
	ColTimeOcc   = "TIME OCC"
	ColAreaName  = "AREA NAME"
	ColCrimeDesc = "Crm Cd Desc"
	ColLat       = "LAT"
	ColLon       = "LON"
)

var requiredColumns = []string{ColDateOcc, ColTimeOcc, ColAreaName, ColCrimeDesc, ColLat, ColLon}

// LookupEncoding resolves a declared character encoding name. Only the
// encodings the export is published in are accepted; nothing is sniffed.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// Decode parses a CSV export in the given encoding into raw records. A
// positive maxRows stops after that many data rows. Structural problems
// (unreadable CSV, missing columns) are reported as ErrDataUnavailable.
func Decode(r io.Reader, enc encoding.Encoding, maxRows int) ([]domain.RawRecord, error) {
	reader := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrDataUnavailable, err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for row := 1; maxRows <= 0 || row <= maxRows; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrDataUnavailable, row, err)
		}
		if len(fields) < len(header) {
			return nil, fmt.Errorf("%w: row %d: %d fields, header has %d",
				domain.ErrDataUnavailable, row, len(fields), len(header))
		}
		records = append(records, domain.RawRecord{
			DateOcc:   fields[idx[ColDateOcc]],
			TimeOcc:   fields[idx[ColTimeOcc]],
			AreaName:  fields[idx[ColAreaName]],
			CrimeDesc: fields[idx[ColCrimeDesc]],
			Lat:       fields[idx[ColLat]],
			Lon:       fields[idx[ColLon]],
		})
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// Strip a UTF-8 byte order mark left on the first header cell.
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrDataUnavailable, strings.Join(missing, ", "))
	}
	return idx, nil
}
