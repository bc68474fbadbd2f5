package classifier

import (
	"context"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
	"github.com/couchcryptid/crime-insights-service/internal/observability"
)

// CachedClassifier wraps a Classifier with an in-memory LRU cache keyed by
// the encoded feature vector.
type CachedClassifier struct {
	inner   domain.Classifier
	cache   *lru.Cache[string, string]
	metrics *observability.Metrics
}

// NewCachedClassifier creates a cache decorator around a classifier.
func NewCachedClassifier(inner domain.Classifier, maxEntries int, metrics *observability.Metrics) (*CachedClassifier, error) {
	c, err := lru.New[string, string](maxEntries)
	if err != nil {
		return nil, err
	}
	return &CachedClassifier{inner: inner, cache: c, metrics: metrics}, nil
}

func (c *CachedClassifier) Predict(ctx context.Context, v domain.FeatureVector) (string, error) {
	key := vectorKey(v)
	if label, ok := c.cache.Get(key); ok {
		c.metrics.ClassifierCache.WithLabelValues("hit").Inc()
		return label, nil
	}
	c.metrics.ClassifierCache.WithLabelValues("miss").Inc()

	label, err := c.inner.Predict(ctx, v)
	if err != nil {
		return "", err
	}
	// Empty labels are not cached so a misbehaving model can recover.
	if label != "" {
		c.cache.Add(key, label)
	}
	return label, nil
}

// Len reports the number of cached predictions.
func (c *CachedClassifier) Len() int {
	return c.cache.Len()
}

func vectorKey(v domain.FeatureVector) string {
	var b strings.Builder
	for i, col := range v.Columns {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(col)
		b.WriteByte('=')
		if i < len(v.Values) {
			b.WriteString(strconv.FormatFloat(v.Values[i], 'g', -1, 64))
		}
	}
	return b.String()
}
