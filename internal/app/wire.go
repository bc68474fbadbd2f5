// Package app assembles the service graph from configuration. Both the
// dashboard server and the crimectl CLI build on it.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/crime-insights-service/internal/adapter/classifier"
	"github.com/couchcryptid/crime-insights-service/internal/adapter/csvsource"
	kafkaadapter "github.com/couchcryptid/crime-insights-service/internal/adapter/kafka"
	"github.com/couchcryptid/crime-insights-service/internal/cache"
	"github.com/couchcryptid/crime-insights-service/internal/config"
	"github.com/couchcryptid/crime-insights-service/internal/dashboard"
	"github.com/couchcryptid/crime-insights-service/internal/dataset"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
	"github.com/couchcryptid/crime-insights-service/internal/observability"
)

// NewSource builds the incident source selected by DATA_SOURCE.
func NewSource(cfg *config.Config, logger *slog.Logger) (dataset.Source, error) {
	switch cfg.DataSource {
	case config.SourceKafka:
		return kafkaadapter.NewReader(cfg, logger), nil
	case config.SourceFile, config.SourceHTTP:
		enc, err := csvsource.LookupEncoding(cfg.DataEncoding)
		if err != nil {
			return nil, fmt.Errorf("DATA_ENCODING: %w", err)
		}
		if cfg.DataSource == config.SourceHTTP {
			return csvsource.NewHTTPSource(cfg.DataURL, enc, cfg.DataMaxRows, cfg.DataFetchTimeout, logger), nil
		}
		return csvsource.NewFileSource(cfg.DataFile, enc, cfg.DataMaxRows), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

// NewClassifier builds the cached model client, or returns nil when no
// MODEL_URL is configured. The feature columns are returned alongside.
func NewClassifier(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.Classifier, []string, error) {
	if !cfg.ModelEnabled {
		logger.Info("crime category predictor disabled")
		return nil, nil, nil
	}
	columns, err := classifier.LoadFeatureColumns(cfg.FeatureColumnsFile)
	if err != nil {
		return nil, nil, err
	}
	client := classifier.NewClient(cfg.ModelURL, cfg.ModelTimeout, metrics, logger)
	cached, err := classifier.NewCachedClassifier(client, cfg.ModelCacheSize, metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("classifier cache: %w", err)
	}
	logger.Info("crime category predictor enabled",
		"columns", len(columns),
		"cache_size", cfg.ModelCacheSize,
		"timeout", cfg.ModelTimeout,
	)
	return cached, columns, nil
}

// NewService wires the source, snapshot store, aggregate cache and classifier.
func NewService(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*dashboard.Service, *dataset.Store, error) {
	source, err := NewSource(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	excluded, err := domain.ParsePeriods(strings.Join(cfg.ExcludePeriods, ","))
	if err != nil {
		return nil, nil, fmt.Errorf("EXCLUDE_PERIODS: %w", err)
	}
	aggregates, err := cache.NewAggregates(cfg.AggregateCacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate cache: %w", err)
	}
	cls, columns, err := NewClassifier(cfg, metrics, logger)
	if err != nil {
		return nil, nil, err
	}

	store := dataset.NewStore(source, cfg.DataTTL, metrics, logger)
	svc := dashboard.New(store, aggregates, cls, dashboard.Config{
		ExcludePeriods:       excluded,
		ExcludeCurrentPeriod: cfg.ExcludeCurrentPeriod,
		FeatureColumns:       columns,
	}, metrics, logger)
	return svc, store, nil
}
