// Package cache memoizes aggregation results per dataset snapshot.
package cache

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Aggregates is a bounded LRU of aggregation results keyed by source
// identity, aggregation function and filter key.
type Aggregates struct {
	lru *lru.Cache[string, any]
}

// NewAggregates creates a cache holding at most size results.
func NewAggregates(size int) (*Aggregates, error) {
	c, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &Aggregates{lru: c}, nil
}

// Key builds the cache key for one aggregation.
func Key(source, fn, filterKey string) string {
	return source + "\x00" + fn + "\x00" + filterKey
}

// Get returns a cached result. A stored value of another type is a miss.
func Get[T any](a *Aggregates, key string) (T, bool) {
	var zero T
	v, ok := a.lru.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Put stores a result.
func Put[T any](a *Aggregates, key string, v T) {
	a.lru.Add(key, v)
}

// InvalidateSource drops every entry computed from the given source.
func (a *Aggregates) InvalidateSource(source string) int {
	prefix := source + "\x00"
	removed := 0
	for _, k := range a.lru.Keys() {
		if strings.HasPrefix(k, prefix) && a.lru.Remove(k) {
			removed++
		}
	}
	return removed
}

// Purge drops everything.
func (a *Aggregates) Purge() {
	a.lru.Purge()
}

// Len reports the number of cached results.
func (a *Aggregates) Len() int {
	return a.lru.Len()
}
