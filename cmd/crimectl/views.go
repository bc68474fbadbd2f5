package main

import (
	"cmp"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print area, season, weekday and hourly breakdowns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := loadService(cmd, opts)
			if err != nil {
				return err
			}
			f, err := opts.filter()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			info, err := svc.Options(ctx)
			if err != nil {
				return err
			}
			areas, err := svc.Areas(ctx, f)
			if err != nil {
				return err
			}
			seasons, err := svc.Seasons(ctx, f)
			if err != nil {
				return err
			}
			weekly, err := svc.Weekly(ctx, f)
			if err != nil {
				return err
			}
			hourly, err := svc.Hourly(ctx, f, true)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"options": info,
					"areas":   areas,
					"seasons": seasons,
					"weekly":  weekly,
					"hourly":  hourly,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rows loaded: %d (years %v)\n", info.Rows, info.Years)
			if info.First != nil {
				fmt.Fprintf(out, "Date range:  %s to %s\n", info.First.Format("2006-01-02"), info.Last.Format("2006-01-02"))
			}
			if len(areas) == 0 {
				fmt.Fprintln(out, "\nNo incidents match the filter.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\nAREA\tCRIMES\tSHARE")
			for _, a := range areas {
				fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", a.AreaName, a.Count, a.Percentage)
			}
			fmt.Fprintln(tw, "\nSEASON\tCRIMES\tSHARE")
			for _, s := range seasons {
				fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", s.Season, s.Count, s.Percentage)
			}
			fmt.Fprintln(tw, "\nWEEKDAY\tCRIMES\t")
			for _, d := range weekly {
				fmt.Fprintf(tw, "%s\t%d\t\n", d.DayOfWeek, d.Count)
			}
			fmt.Fprintln(tw, "\nHOUR\tCRIMES\t")
			for _, h := range hourly {
				fmt.Fprintf(tw, "%02d:00\t%d\t\n", h.Hour, h.Count)
			}
			return tw.Flush()
		},
	}
}

func newTrendCmd(opts *globalOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print the monthly incident trend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := loadService(cmd, opts)
			if err != nil {
				return err
			}
			f, err := opts.filter()
			if err != nil {
				return err
			}
			trend, err := svc.Monthly(cmd.Context(), f, category)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), trend)
			}

			byPeriod := make(map[string]int, len(trend.Series))
			for _, m := range trend.Series {
				byPeriod[m.Period] = m.Occurrences
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if category != "" {
				fmt.Fprintf(tw, "PERIOD\tALL\t%s\n", category)
			} else {
				fmt.Fprintln(tw, "PERIOD\tALL\t")
			}
			for _, m := range trend.Overall {
				if category != "" {
					fmt.Fprintf(tw, "%s\t%d\t%d\n", m.Period, m.Occurrences, byPeriod[m.Period])
				} else {
					fmt.Fprintf(tw, "%s\t%d\t\n", m.Period, m.Occurrences)
				}
			}
			if len(trend.Excluded) > 0 {
				fmt.Fprintf(tw, "\nexcluded: %v\n", trend.Excluded)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "crime category to chart next to the overall trend")
	return cmd
}

func newGeoCmd(opts *globalOptions) *cobra.Command {
	var (
		categories []string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Print the busiest incident locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := loadService(cmd, opts)
			if err != nil {
				return err
			}
			f, err := opts.filter()
			if err != nil {
				return err
			}
			points, err := svc.Geo(cmd.Context(), f, categories)
			if err != nil {
				return err
			}

			top := slices.Clone(points)
			slices.SortStableFunc(top, func(a, b domain.GeoPoint) int { return cmp.Compare(b.Count, a.Count) })
			if limit > 0 && len(top) > limit {
				top = top[:limit]
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), top)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LAT\tLON\tCATEGORY\tCOUNT")
			for _, p := range top {
				fmt.Fprintf(tw, "%.4f\t%.4f\t%s\t%d\n", p.Lat, p.Lon, p.Category, p.Count)
			}
			fmt.Fprintf(tw, "\n%d distinct points\n", len(points))
			return tw.Flush()
		},
	}
	cmd.Flags().StringArrayVar(&categories, "category", nil, "keep only this category (repeatable; default all)")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of points to print, 0 for all")
	return cmd
}

func newPredictCmd(opts *globalOptions) *cobra.Command {
	var in domain.PredictionInput

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the most likely crime category (requires MODEL_URL)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := loadService(cmd, opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("weekend") && in.DayOfWeek >= 5 {
				in.IsWeekend = 1
			}
			p, err := svc.Predict(cmd.Context(), in)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), p)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Predicted category: %s\n", p.Category)
			if p.AreaLocation != nil {
				fmt.Fprintf(out, "Area location:      %.4f, %.4f\n", p.AreaLocation.Lat, p.AreaLocation.Lon)
			}
			if p.UnseenArea {
				fmt.Fprintf(out, "Note: %s was not part of the model's training areas\n", p.AreaName)
			}
			if p.Warning != "" {
				fmt.Fprintf(out, "Warning: %s\n", p.Warning)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.AreaName, "area", "", "area name, e.g. \"77th Street\"")
	f.IntVar(&in.DayOfWeek, "day", 0, "day of week, 0=Monday .. 6=Sunday")
	f.IntVar(&in.HourOfDay, "hour", 12, "hour of day, 0-23")
	f.IntVar(&in.Month, "month", 1, "month, 1-12")
	f.IntVar(&in.IsWeekend, "weekend", 0, "1 for a weekend day (defaults from --day)")
	cobra.CheckErr(cmd.MarkFlagRequired("area"))
	return cmd
}
