// Package store holds the shared in-memory document merging all weather
// facets by key. It is rebuilt from scratch on process start; the first
// scheduled refresh of each facet is the recovery mechanism.
package store

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a facet has no data yet.
var ErrNotFound = errors.New("no data for facet")

// Facet identifies one independently refreshed category of weather data.
type Facet string

const (
	FacetCurrent  Facet = "current"
	FacetIndices  Facet = "indices"
	FacetAlarms   Facet = "alarms"
	FacetDaily    Facet = "daily"
	FacetHourly   Facet = "hourly"
	FacetMinutely Facet = "minutely"
	FacetObserve  Facet = "observation_history"
)

// Facets lists every known facet key.
var Facets = []Facet{
	FacetCurrent, FacetIndices, FacetAlarms,
	FacetDaily, FacetHourly, FacetMinutely, FacetObserve,
}

// ErrorKey returns the sibling key holding the raw failing response text
// for a facet, set on degraded refreshes and cleared on the next success.
func ErrorKey(f Facet) string {
	return string(f) + "_error_text"
}

// AggregateStore is a concurrency-safe mapping from facet key to an opaque
// structured value. Each facet key is fully overwritten on a successful
// refresh; only one job ever writes a given facet key, so facets never
// partially overwrite each other.
type AggregateStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewAggregateStore creates an empty store.
func NewAggregateStore() *AggregateStore {
	return &AggregateStore{data: make(map[string]any)}
}

// Replace overwrites the facet's structured value.
func (s *AggregateStore) Replace(f Facet, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[string(f)] = value
}

// Get returns the facet's current value.
func (s *AggregateStore) Get(f Facet) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(f)]
	return v, ok
}

// SetErrorText records the raw failing response body for a facet without
// touching the facet's last good value.
func (s *AggregateStore) SetErrorText(f Facet, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ErrorKey(f)] = text
}

// ClearErrorText removes the facet's error annotation.
func (s *AggregateStore) ClearErrorText(f Facet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, ErrorKey(f))
}

// ErrorText returns the raw failing response body recorded for a facet.
func (s *AggregateStore) ErrorText(f Facet) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[ErrorKey(f)]
	if !ok {
		return "", false
	}
	text, _ := v.(string)
	return text, true
}

// Snapshot returns a shallow copy of the whole document. Decode passes read
// the snapshot so they observe a consistent set of keys even while other
// facets' jobs keep writing.
func (s *AggregateStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
