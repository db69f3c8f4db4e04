// Package ratelimit provides token-bucket rate limiters and per-user action budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Service names understood by ServiceLimiter.
const (
	ServiceSearch = "search"
	ServiceEngine = "engine"
)

// ServiceRates configures per-backend request rates (requests per second).
// A zero rate disables limiting for that backend.
type ServiceRates struct {
	Search float64
	Engine float64
}

// DefaultServiceRates returns rates that keep a bulk reindex from starving
// interactive traffic on a small cluster.
func DefaultServiceRates() ServiceRates {
	return ServiceRates{
		Search: 200,
		Engine: 20,
	}
}

// ServiceLimiter rate-limits calls to downstream backends using token buckets.
type ServiceLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewServiceLimiter creates a limiter with the given per-backend rates.
func NewServiceLimiter(rates ServiceRates) *ServiceLimiter {
	limiters := make(map[string]*rate.Limiter)
	if rates.Search > 0 {
		limiters[ServiceSearch] = newLimiter(rates.Search)
	}
	if rates.Engine > 0 {
		limiters[ServiceEngine] = newLimiter(rates.Engine)
	}
	return &ServiceLimiter{limiters: limiters}
}

func newLimiter(rps float64) *rate.Limiter {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until a token is available for the named backend, or ctx is cancelled.
// A nil limiter never blocks.
func (sl *ServiceLimiter) Wait(ctx context.Context, service string) error {
	if sl == nil {
		return nil
	}
	sl.mu.RLock()
	limiter, ok := sl.limiters[service]
	sl.mu.RUnlock()
	if !ok {
		return nil // unknown service = no limit
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", service, err)
	}
	return nil
}
