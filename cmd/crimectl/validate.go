package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/crime-insights-service/internal/adapter/csvsource"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

// maxPhaseErrors caps the per-phase detail so a bad export stays readable.
const maxPhaseErrors = 20

var errValidationFailed = errors.New("validation failed")

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	dropped int
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) >= maxPhaseErrors {
		p.dropped++
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var (
		file     string
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an incident export for rows the dashboard would reject",
		Long: `validate decodes an incident CSV and runs integrity checks over it: every
row must parse, normalized times must agree with their hour, seasons must
match months, and every aggregate must account for every row. Unlike the
service, which rejects the whole export at the first bad row, validate
reports each bad row.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := csvsource.LookupEncoding(encoding)
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()

			records, err := csvsource.Decode(f, enc, 0)
			if err != nil {
				return err
			}
			if !runValidation(cmd.OutOrStdout(), records) {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "incident CSV to validate")
	cmd.Flags().StringVar(&encoding, "encoding", "ISO-8859-1", "character encoding of the file")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	return cmd
}

// runValidation prints the phase report and reports whether every phase passed.
func runValidation(out io.Writer, records []domain.RawRecord) bool {
	fmt.Fprintln(out, "=== Crime Data Integrity Validation ===")
	fmt.Fprintln(out)

	parse, rows := validateRows(records)
	table := domain.NewTable(rows, domain.Now())

	phases := []*phase{
		parse,
		validateDerivedFields(table),
		validateAggregates(table),
		validateCoordinates(table),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors)+p.dropped)
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d decoded, %d parsed\n", len(records), table.Len())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		if p.dropped > 0 {
			fmt.Fprintf(out, "  ... and %d more\n", p.dropped)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return false
}

// validateRows parses every row, collecting failures instead of stopping at the first.
func validateRows(records []domain.RawRecord) (*phase, []domain.Incident) {
	p := &phase{name: "Row parsing"}
	if len(records) == 0 {
		p.errorf("export has no data rows")
	}
	rows := make([]domain.Incident, 0, len(records))
	for i, rec := range records {
		in, err := domain.ParseIncident(rec)
		if err != nil {
			p.errorf("row %d: %v", i+1, err)
			continue
		}
		if in.AreaName == "" {
			p.errorf("row %d: empty AREA NAME", i+1)
		}
		if in.Category == "" {
			p.errorf("row %d: empty Crm Cd Desc", i+1)
		}
		rows = append(rows, in)
	}
	return p, rows
}

func validateDerivedFields(t *domain.Table) *phase {
	p := &phase{name: "Derived fields"}
	row := 0
	t.Each(func(in domain.Incident) {
		row++
		if in.Hour < 0 || in.Hour > 23 {
			p.errorf("parsed row %d: hour %d out of range", row, in.Hour)
		}
		if h, err := domain.HourOf(in.TimeNorm); err != nil || h != in.Hour {
			p.errorf("parsed row %d: time %q disagrees with hour %d", row, in.TimeNorm, in.Hour)
		}
		if want := domain.SeasonOf(in.OccurredAt.Month()); in.Season != want {
			p.errorf("parsed row %d: season %s for %s, want %s", row, in.Season, in.OccurredAt.Month(), want)
		}
		if in.Year != in.OccurredAt.Year() || in.Period != domain.PeriodOf(in.OccurredAt) {
			p.errorf("parsed row %d: year/period disagree with %s", row, in.OccurredAt.Format("2006-01-02"))
		}
	})
	return p
}

func validateAggregates(t *domain.Table) *phase {
	p := &phase{name: "Aggregate consistency"}
	if t.Len() == 0 {
		return p
	}
	total := t.Len()

	areas := domain.AggregateAreas(t)
	var areaSum int
	var pctSum float64
	for _, a := range areas {
		areaSum += a.Count
		pctSum += a.Percentage
	}
	if areaSum != total {
		p.errorf("area counts sum to %d, want %d", areaSum, total)
	}
	if math.Abs(pctSum-100) > 1e-6 {
		p.errorf("area shares sum to %.4f%%, want 100%%", pctSum)
	}

	var hourSum int
	for _, h := range domain.AggregateHourly(t) {
		hourSum += h.Count
	}
	if hourSum != total {
		p.errorf("hourly counts sum to %d, want %d", hourSum, total)
	}

	var daySum int
	for _, d := range domain.AggregateWeekly(t) {
		daySum += d.Count
	}
	if daySum != total {
		p.errorf("weekday counts sum to %d, want %d", daySum, total)
	}

	var seasonSum int
	for _, s := range domain.AggregateSeasons(t) {
		seasonSum += s.Count
	}
	if seasonSum != total {
		p.errorf("season counts sum to %d, want %d", seasonSum, total)
	}

	var monthSum int
	series := domain.MonthlySeries(t, nil)
	for i, m := range series {
		monthSum += m.Occurrences
		if i > 0 && !series[i-1].MonthStart.Before(m.MonthStart) {
			p.errorf("monthly series not ascending at %s", m.Period)
		}
	}
	if monthSum != total {
		p.errorf("monthly counts sum to %d, want %d", monthSum, total)
	}
	return p
}

// validateCoordinates flags coordinates outside the LA basin. Zero
// coordinates are the export's withheld-location marker and pass.
func validateCoordinates(t *domain.Table) *phase {
	p := &phase{name: "Coordinates"}
	row := 0
	t.Each(func(in domain.Incident) {
		row++
		if !in.HasLocation {
			return
		}
		if in.Geo.Lat < 33.3 || in.Geo.Lat > 34.9 || in.Geo.Lon < -119.0 || in.Geo.Lon > -117.6 {
			p.errorf("parsed row %d: (%.4f, %.4f) is outside Los Angeles", row, in.Geo.Lat, in.Geo.Lon)
		}
	})
	return p
}
