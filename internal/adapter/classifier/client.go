// Package classifier calls an external model-serving endpoint that predicts
// the most likely crime category for an encoded feature vector.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
	"github.com/couchcryptid/crime-insights-service/internal/observability"
)

// Client implements domain.Classifier over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a model-serving client with a per-request timeout.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Predict sends a single-row instance and returns the predicted category label.
func (c *Client) Predict(ctx context.Context, v domain.FeatureVector) (string, error) {
	body, err := json.Marshal(request{
		Columns:   v.Columns,
		Instances: [][]float64{v.Values},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", domain.ErrClassifier, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", domain.ErrClassifier, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ClassifierDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClassifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrClassifier, resp.StatusCode, msg)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrClassifier, err)
	}
	if len(out.Predictions) == 0 || out.Predictions[0] == "" {
		return "", fmt.Errorf("%w: empty prediction", domain.ErrClassifier)
	}

	c.logger.Debug("classifier prediction",
		"label", out.Predictions[0],
		"duration", time.Since(start),
	)
	return out.Predictions[0], nil
}

// Model-serving wire types.

type request struct {
	Columns   []string    `json:"columns"`
	Instances [][]float64 `json:"instances"`
}

type response struct {
	Predictions []string `json:"predictions"`
}
