package resilience

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// breakerView is the part of a Client the registry reads.
type breakerView interface {
	CircuitBreakerState() gobreaker.State
	CircuitBreakerCounts() gobreaker.Counts
}

// ProviderHealth is a point-in-time view of one upstream.
// Zero times mean the event has not happened since startup.
type ProviderHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt time.Time
	LastFailureAt time.Time
	LastError     string
}

// IsDegraded reports a half-open breaker that is probing the upstream.
func (h *ProviderHealth) IsDegraded() bool { return h.CircuitState == gobreaker.StateHalfOpen }

// IsUnhealthy reports an open breaker.
func (h *ProviderHealth) IsUnhealthy() bool { return h.CircuitState == gobreaker.StateOpen }

// Registry tracks every upstream client and the outcome of its last calls,
// for the ops status endpoint and the worker's breaker gauges.
type Registry struct {
	mu        sync.RWMutex
	upstreams map[string]*upstreamRecord
	now       func() time.Time
}

type upstreamRecord struct {
	breaker   breakerView
	lastOK    time.Time
	lastFail  time.Time
	lastError string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{upstreams: make(map[string]*upstreamRecord), now: time.Now}
}

// Register adds client under name, replacing and resetting any previous entry.
func (r *Registry) Register(name string, client breakerView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upstreams[name] = &upstreamRecord{breaker: client}
}

// Record stamps the outcome of one call: nil err is a success. Names that
// were never registered are ignored.
func (r *Registry) Record(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.upstreams[name]
	if !ok {
		return
	}
	if err == nil {
		rec.lastOK = r.now()
		return
	}
	rec.lastFail = r.now()
	rec.lastError = err.Error()
}

// GetHealth returns the health of name, or nil when it is not registered.
func (r *Registry) GetHealth(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rec, ok := r.upstreams[name]; ok {
		return rec.snapshot(name)
	}
	return nil
}

// GetAllHealth returns every upstream ordered by name.
func (r *Registry) GetAllHealth() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ProviderHealth, 0, len(r.upstreams))
	for name, rec := range r.upstreams {
		out = append(out, rec.snapshot(name))
	}
	slices.SortFunc(out, func(a, b *ProviderHealth) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (u *upstreamRecord) snapshot(name string) *ProviderHealth {
	return &ProviderHealth{
		Name:          name,
		CircuitState:  u.breaker.CircuitBreakerState(),
		Counts:        u.breaker.CircuitBreakerCounts(),
		LastSuccessAt: u.lastOK,
		LastFailureAt: u.lastFail,
		LastError:     u.lastError,
	}
}
