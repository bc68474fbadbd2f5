package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/crime-insights-service/internal/app"
	"github.com/couchcryptid/crime-insights-service/internal/config"
	"github.com/couchcryptid/crime-insights-service/internal/dashboard"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
	"github.com/couchcryptid/crime-insights-service/internal/observability"
)

// globalOptions are the flags shared by every data-reading subcommand.
type globalOptions struct {
	dataFile string
	year     int
	from     string
	to       string
	jsonOut  bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "crimectl",
		Short: "Explore LAPD crime incident data",
		Long: `crimectl loads the LAPD incident export through the same pipeline as the
dashboard service and prints its summaries. Data source settings come from
the DATA_* and KAFKA_* environment variables unless --data-file is given.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.dataFile, "data-file", "", "read incidents from this CSV instead of the configured source")
	pf.IntVar(&opts.year, "year", 0, "restrict to one occurrence year")
	pf.StringVar(&opts.from, "from", "", "first occurrence date, YYYY-MM-DD")
	pf.StringVar(&opts.to, "to", "", "last occurrence date, YYYY-MM-DD")
	pf.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of tables")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")

	root.AddCommand(
		newSummaryCmd(opts),
		newTrendCmd(opts),
		newGeoCmd(opts),
		newPredictCmd(opts),
		newValidateCmd(),
		newGenmockCmd(),
	)
	return root
}

// loadService builds the dashboard service from the environment and flags.
func loadService(cmd *cobra.Command, opts *globalOptions) (*dashboard.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.dataFile != "" {
		cfg.DataSource = config.SourceFile
		cfg.DataFile = opts.dataFile
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// CLI runs are one-shot, so metrics stay unregistered.
	svc, _, err := app.NewService(cfg, observability.NewMetricsForTesting(), logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (o *globalOptions) filter() (domain.Filter, error) {
	f := domain.Filter{Year: o.year}
	for _, p := range []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"--from", o.from, &f.From},
		{"--to", o.to, &f.To},
	} {
		if p.raw == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, p.raw)
		if err != nil {
			return f, fmt.Errorf("%w: %s %q is not YYYY-MM-DD", domain.ErrInvalidInput, p.name, p.raw)
		}
		*p.dst = d
	}
	return f, f.Validate()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
