package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/crime-insights-service/internal/adapter/kafka"
	"github.com/couchcryptid/crime-insights-service/internal/config"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

// mockAreas are the LAPD geographic divisions in AREA code order.
var mockAreas = []string{
	"Central", "Rampart", "Southwest", "Hollenbeck", "Harbor", "Hollywood",
	"Wilshire", "West LA", "Van Nuys", "West Valley", "Northeast", "77th Street",
	"Newton", "Pacific", "N Hollywood", "Foothill", "Devonshire", "Southeast",
	"Mission", "Olympic", "Topanga",
}

// mockCategories are drawn with the given relative weights.
var mockCategories = []struct {
	desc   string
	weight int
}{
	{"VEHICLE - STOLEN", 12},
	{"BATTERY - SIMPLE ASSAULT", 9},
	{"THEFT OF IDENTITY", 7},
	{"BURGLARY FROM VEHICLE", 7},
	{"BURGLARY", 6},
	{"VANDALISM - FELONY ($400 & OVER, ALL CHURCH VANDALISMS)", 6},
	{"ASSAULT WITH DEADLY WEAPON, AGGRAVATED ASSAULT", 5},
	{"INTIMATE PARTNER - SIMPLE ASSAULT", 5},
	{"THEFT PLAIN - PETTY ($950 & UNDER)", 5},
	{"ROBBERY", 3},
	{"BIKE - STOLEN", 1},
}

var mockHeader = []string{
	"DR_NO", "Date Rptd", "DATE OCC", "TIME OCC", "AREA", "AREA NAME",
	"Crm Cd Desc", "LAT", "LON",
}

// mockGenerator produces a reproducible stream of incident rows.
type mockGenerator struct {
	rng         *rand.Rand
	start       time.Time
	days        int
	weightSum   int
	withheldPct int
}

func newMockGenerator(seed uint64, start, end time.Time) (*mockGenerator, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: --end must be after --start", domain.ErrInvalidInput)
	}
	g := &mockGenerator{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		start:       start,
		days:        int(end.Sub(start).Hours()/24) + 1,
		withheldPct: 2,
	}
	for _, c := range mockCategories {
		g.weightSum += c.weight
	}
	return g, nil
}

func (g *mockGenerator) category() string {
	n := g.rng.IntN(g.weightSum)
	for _, c := range mockCategories {
		if n < c.weight {
			return c.desc
		}
		n -= c.weight
	}
	return mockCategories[0].desc
}

// row returns the CSV columns of the i-th incident and its raw record.
func (g *mockGenerator) row(i int) ([]string, domain.RawRecord) {
	occurred := g.start.AddDate(0, 0, g.rng.IntN(g.days))
	reported := occurred.AddDate(0, 0, g.rng.IntN(10))
	areaIdx := g.rng.IntN(len(mockAreas))
	area := mockAreas[areaIdx]
	// HHMM with leading zeros stripped, as the export stores it.
	timeOcc := strconv.Itoa(g.rng.IntN(24)*100 + g.rng.IntN(60))

	lat, lon := "0", "0"
	if g.rng.IntN(100) >= g.withheldPct {
		center, ok := domain.AreaLocation(area)
		if !ok {
			center = domain.CityCenter
		}
		lat = strconv.FormatFloat(center.Lat+(g.rng.Float64()-0.5)*0.04, 'f', 4, 64)
		lon = strconv.FormatFloat(center.Lon+(g.rng.Float64()-0.5)*0.04, 'f', 4, 64)
	}

	rec := domain.RawRecord{
		DateOcc:   occurred.Format("01/02/2006") + " 12:00:00 AM",
		TimeOcc:   timeOcc,
		AreaName:  area,
		CrimeDesc: g.category(),
		Lat:       lat,
		Lon:       lon,
	}
	cols := []string{
		strconv.Itoa(200000000 + i),
		reported.Format("01/02/2006") + " 12:00:00 AM",
		rec.DateOcc,
		rec.TimeOcc,
		fmt.Sprintf("%02d", areaIdx+1),
		rec.AreaName,
		rec.CrimeDesc,
		rec.Lat,
		rec.Lon,
	}
	return cols, rec
}

// writeMockCSV writes n rows as an ISO-8859-1 CSV and returns the records written.
func writeMockCSV(w io.Writer, g *mockGenerator, n int) ([]domain.RawRecord, error) {
	enc := transform.NewWriter(w, charmap.ISO8859_1.NewEncoder())
	cw := csv.NewWriter(enc)

	if err := cw.Write(mockHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	records := make([]domain.RawRecord, 0, n)
	for i := range n {
		cols, rec := g.row(i)
		if err := cw.Write(cols); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return records, nil
}

func newGenmockCmd() *cobra.Command {
	var (
		rows     int
		seed     uint64
		out      string
		startStr string
		endStr   string
		publish  bool
	)

	cmd := &cobra.Command{
		Use:   "genmock",
		Short: "Generate a deterministic mock incident export",
		Long: `genmock writes an ISO-8859-1 CSV shaped like the LAPD incident export. The
same --seed always produces the same file. With --publish the rows are also
produced to KAFKA_TOPIC on KAFKA_BROKERS for the kafka data source.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rows < 1 {
				return fmt.Errorf("%w: --rows must be positive", domain.ErrInvalidInput)
			}
			start, err := time.Parse(time.DateOnly, startStr)
			if err != nil {
				return fmt.Errorf("%w: --start %q is not YYYY-MM-DD", domain.ErrInvalidInput, startStr)
			}
			end, err := time.Parse(time.DateOnly, endStr)
			if err != nil {
				return fmt.Errorf("%w: --end %q is not YYYY-MM-DD", domain.ErrInvalidInput, endStr)
			}
			gen, err := newMockGenerator(seed, start, end)
			if err != nil {
				return err
			}

			// Fixed clock for reproducible published_at headers.
			domain.SetClock(clockwork.NewFakeClockAt(end.Add(24 * time.Hour)))
			defer domain.SetClock(nil)

			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			records, err := writeMockCSV(w, gen, rows)
			if err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(records), out)
			}

			if !publish {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			pub := kafka.NewPublisher(cfg, logger)
			defer pub.Close()
			return pub.PublishBatch(cmd.Context(), records)
		},
	}
	f := cmd.Flags()
	f.IntVar(&rows, "rows", 1000, "number of incidents to generate")
	f.Uint64Var(&seed, "seed", 42, "random seed")
	f.StringVar(&out, "out", "-", "output path, - for stdout")
	f.StringVar(&startStr, "start", "2020-01-01", "first occurrence date, YYYY-MM-DD")
	f.StringVar(&endStr, "end", "2024-05-31", "last occurrence date, YYYY-MM-DD")
	f.BoolVar(&publish, "publish", false, "also publish the rows to Kafka")
	return cmd
}
