package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data source kinds accepted by DATA_SOURCE.
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// DefaultDataURL is the LA open-data export of incidents from 2020 onwards.
const DefaultDataURL = "https://data.lacity.org/api/views/2nrs-mtv8/rows.csv?accessType=DOWNLOAD"

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataSource       string
	DataFile         string
	DataURL          string
	DataEncoding     string
	DataMaxRows      int
	DataFetchTimeout time.Duration
	DataTTL          time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	// Months left out of the monthly trend, as YYYY-MM.
	ExcludePeriods       []string
	ExcludeCurrentPeriod bool

	AggregateCacheSize int

	// Classifier configuration. An empty ModelURL disables prediction.
	ModelURL           string
	ModelEnabled       bool
	ModelTimeout       time.Duration
	ModelCacheSize     int
	FeatureColumnsFile string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("data_source", SourceFile)
	v.SetDefault("data_file", "Crime_Data_from_2020_to_Present.csv")
	v.SetDefault("data_url", DefaultDataURL)
	v.SetDefault("data_encoding", "ISO-8859-1")
	v.SetDefault("data_max_rows", "0")
	v.SetDefault("data_fetch_timeout", "60s")
	v.SetDefault("data_ttl", "1h")
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_topic", "raw-crime-incidents")
	v.SetDefault("exclude_periods", "2024-05")
	v.SetDefault("exclude_current_period", "false")
	v.SetDefault("aggregate_cache_size", "512")
	v.SetDefault("model_url", "")
	v.SetDefault("model_timeout", "5s")
	v.SetDefault("model_cache_size", "1000")
	v.SetDefault("feature_columns_file", "models/feature_columns.yaml")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", "10s")
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	cfg := &Config{
		DataSource:   strings.ToLower(v.GetString("data_source")),
		DataFile:     v.GetString("data_file"),
		DataURL:      v.GetString("data_url"),
		DataEncoding: v.GetString("data_encoding"),

		KafkaBrokers: splitList(v.GetString("kafka_brokers")),
		KafkaTopic:   v.GetString("kafka_topic"),

		ExcludePeriods: splitList(v.GetString("exclude_periods")),

		ModelURL:           v.GetString("model_url"),
		FeatureColumnsFile: v.GetString("feature_columns_file"),

		HTTPAddr:  v.GetString("http_addr"),
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}
	cfg.ModelEnabled = cfg.ModelURL != ""

	var err error
	if cfg.DataMaxRows, err = parseInt(v, "data_max_rows", 0); err != nil {
		return nil, err
	}
	if cfg.AggregateCacheSize, err = parseInt(v, "aggregate_cache_size", 1); err != nil {
		return nil, err
	}
	if cfg.ModelCacheSize, err = parseInt(v, "model_cache_size", 1); err != nil {
		return nil, err
	}
	if cfg.DataFetchTimeout, err = parseDuration(v, "data_fetch_timeout"); err != nil {
		return nil, err
	}
	if cfg.DataTTL, err = parseDuration(v, "data_ttl"); err != nil {
		return nil, err
	}
	if cfg.ModelTimeout, err = parseDuration(v, "model_timeout"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration(v, "shutdown_timeout"); err != nil {
		return nil, err
	}
	if cfg.ExcludeCurrentPeriod, err = strconv.ParseBool(v.GetString("exclude_current_period")); err != nil {
		return nil, errors.New("invalid EXCLUDE_CURRENT_PERIOD")
	}

	switch cfg.DataSource {
	case SourceFile:
		if cfg.DataFile == "" {
			return nil, errors.New("DATA_FILE is required when DATA_SOURCE is file")
		}
	case SourceHTTP:
		if cfg.DataURL == "" {
			return nil, errors.New("DATA_URL is required when DATA_SOURCE is http")
		}
	case SourceKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when DATA_SOURCE is kafka")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when DATA_SOURCE is kafka")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q", cfg.DataSource)
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", strings.ToUpper(key))
	}
	return d, nil
}

func parseInt(v *viper.Viper, key string, minimum int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid %s", strings.ToUpper(key))
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
