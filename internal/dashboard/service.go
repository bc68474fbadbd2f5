// Package dashboard answers the dashboard's views over the shared incident
// snapshot and runs crime-category predictions.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/crime-insights-service/internal/cache"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
	"github.com/couchcryptid/crime-insights-service/internal/observability"
)

// Snapshots provides the current incident table.
type Snapshots interface {
	Identity() string
	Get(ctx context.Context) (*domain.Table, error)
	Reload(ctx context.Context) (*domain.Table, error)
	OnInvalidate(fn func(identity string))
	CheckReadiness(ctx context.Context) error
}

// Config tunes the service.
type Config struct {
	// ExcludePeriods are months left out of the monthly trend.
	ExcludePeriods []domain.MonthPeriod
	// ExcludeCurrentPeriod also drops the month containing now.
	ExcludeCurrentPeriod bool
	// FeatureColumns is the classifier's column schema, in order.
	FeatureColumns []string
}

// Service composes the snapshot store, the aggregate cache and the classifier.
type Service struct {
	data       Snapshots
	aggregates *cache.Aggregates
	classifier domain.Classifier
	cfg        Config
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a Service. A nil classifier disables Predict.
func New(data Snapshots, aggregates *cache.Aggregates, classifier domain.Classifier, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Service {
	s := &Service{
		data:       data,
		aggregates: aggregates,
		classifier: classifier,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
	data.OnInvalidate(func(identity string) {
		n := aggregates.InvalidateSource(identity)
		logger.Debug("aggregate cache invalidated", "source", identity, "entries", n)
	})
	if classifier != nil {
		metrics.ClassifierEnabled.Set(1)
	}
	return s
}

// CheckReadiness reports whether a snapshot is loaded.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.data.CheckReadiness(ctx)
}

// PredictorEnabled reports whether a classifier is configured.
func (s *Service) PredictorEnabled() bool {
	return s.classifier != nil
}

// Areas returns per-area counts and shares for the partition.
func (s *Service) Areas(ctx context.Context, f domain.Filter) ([]domain.AreaCount, error) {
	return cached(ctx, s, "areas", f, "", domain.AggregateAreas)
}

// Hourly returns incidents per hour. Dense fills absent hours with zero.
func (s *Service) Hourly(ctx context.Context, f domain.Filter, dense bool) ([]domain.HourCount, error) {
	hours, err := cached(ctx, s, "hourly", f, "", domain.AggregateHourly)
	if err != nil || !dense {
		return hours, err
	}
	return domain.DenseHours(hours), nil
}

// Weekly returns incidents per weekday, Monday first.
func (s *Service) Weekly(ctx context.Context, f domain.Filter) ([]domain.WeekdayCount, error) {
	return cached(ctx, s, "weekly", f, "", domain.AggregateWeekly)
}

// Seasons returns each season's share of the partition.
func (s *Service) Seasons(ctx context.Context, f domain.Filter) ([]domain.SeasonShare, error) {
	return cached(ctx, s, "seasons", f, "", domain.AggregateSeasons)
}

// MonthlyTrend holds the overall series and, when requested, one category's series.
type MonthlyTrend struct {
	Excluded []string            `json:"excluded_periods"`
	Overall  []domain.MonthCount `json:"overall"`
	Category string              `json:"category,omitempty"`
	Series   []domain.MonthCount `json:"category_series,omitempty"`
}

// Monthly returns the monthly trend with the excluded periods dropped.
func (s *Service) Monthly(ctx context.Context, f domain.Filter, category string) (MonthlyTrend, error) {
	exclude := s.excludedPeriods()
	names := make([]string, len(exclude))
	for i, p := range exclude {
		names[i] = p.String()
	}
	variant := "x=" + strings.Join(names, ",")

	overall, err := cached(ctx, s, "monthly", f, variant, func(t *domain.Table) []domain.MonthCount {
		return domain.MonthlySeries(t, exclude)
	})
	if err != nil {
		return MonthlyTrend{}, err
	}
	trend := MonthlyTrend{Excluded: names, Overall: overall}
	if category == "" {
		return trend, nil
	}

	series, err := cached(ctx, s, "monthly_category", f, variant+"|c="+category, func(t *domain.Table) []domain.MonthCount {
		return domain.CategoryMonthlySeries(t, category, exclude)
	})
	if err != nil {
		return MonthlyTrend{}, err
	}
	trend.Category = category
	trend.Series = series
	return trend, nil
}

// Geo returns sized map points for the allowed categories, all when empty.
func (s *Service) Geo(ctx context.Context, f domain.Filter, categories []string) ([]domain.GeoPoint, error) {
	allowed := slices.Clone(categories)
	slices.Sort(allowed)
	allowed = slices.Compact(allowed)

	return cached(ctx, s, "geo", f, "c="+strings.Join(allowed, "\x1f"), func(t *domain.Table) []domain.GeoPoint {
		return domain.AggregateGeo(t, allowed)
	})
}

// FilterOptions lists the values the dashboard offers in its filter widgets.
type FilterOptions struct {
	Years            []int      `json:"years"`
	Categories       []string   `json:"categories"`
	Areas            []string   `json:"areas"`
	First            *time.Time `json:"first_date,omitempty"`
	Last             *time.Time `json:"last_date,omitempty"`
	LoadedAt         time.Time  `json:"loaded_at"`
	Rows             int        `json:"rows"`
	PredictorEnabled bool       `json:"predictor_enabled"`
}

// Options describes the loaded snapshot for the filter widgets.
func (s *Service) Options(ctx context.Context) (FilterOptions, error) {
	table, err := s.data.Get(ctx)
	if err != nil {
		return FilterOptions{}, err
	}
	opts := FilterOptions{
		Years:            table.Years(),
		Categories:       table.Categories(),
		Areas:            table.Areas(),
		LoadedAt:         table.LoadedAt(),
		Rows:             table.Len(),
		PredictorEnabled: s.PredictorEnabled(),
	}
	if first, last, ok := table.DateRange(); ok {
		opts.First, opts.Last = &first, &last
	}
	return opts, nil
}

// ReloadResult describes a freshly loaded snapshot.
type ReloadResult struct {
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Reload fetches a new snapshot. The previous one keeps serving on failure.
func (s *Service) Reload(ctx context.Context) (ReloadResult, error) {
	table, err := s.data.Reload(ctx)
	if err != nil {
		return ReloadResult{}, err
	}
	return ReloadResult{Rows: table.Len(), LoadedAt: table.LoadedAt()}, nil
}

// excludedPeriods merges the configured periods with the current month when enabled.
func (s *Service) excludedPeriods() []domain.MonthPeriod {
	out := slices.Clone(s.cfg.ExcludePeriods)
	if s.cfg.ExcludeCurrentPeriod {
		if cur := domain.CurrentPeriod(); !slices.Contains(out, cur) {
			out = append(out, cur)
		}
	}
	slices.SortFunc(out, func(a, b domain.MonthPeriod) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	return out
}

// cached applies the filter to the current snapshot and memoizes compute's
// result per (source, fn, snapshot, filter, variant).
func cached[T any](ctx context.Context, s *Service, fn string, f domain.Filter, variant string, compute func(*domain.Table) T) (T, error) {
	var zero T
	if err := f.Validate(); err != nil {
		return zero, err
	}
	table, err := s.data.Get(ctx)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", fn, err)
	}

	// The snapshot stamp keeps results of a replaced snapshot from being served.
	key := cache.Key(s.data.Identity(), fn,
		fmt.Sprintf("%d|%s|%s", table.LoadedAt().UnixNano(), f.Key(), variant))
	if v, ok := cache.Get[T](s.aggregates, key); ok {
		s.metrics.AggregateCache.WithLabelValues(fn, "hit").Inc()
		return v, nil
	}
	s.metrics.AggregateCache.WithLabelValues(fn, "miss").Inc()

	start := time.Now()
	v := compute(f.Apply(table))
	s.metrics.AggregationDuration.WithLabelValues(fn).Observe(time.Since(start).Seconds())
	cache.Put(s.aggregates, key, v)
	return v, nil
}
