package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles actions per key.
type Limiter[K comparable] interface {
	// Allow reports whether an action for key may happen now
	Allow(key K) bool
	// Wait blocks until an action for key may happen or ctx is done
	Wait(ctx context.Context, key K) error
}

// InMemoryLimiter keeps one token bucket per key in memory
type InMemoryLimiter[K comparable] struct {
	buckets map[K]*rate.Limiter
	mu      sync.Mutex
	r       rate.Limit
	b       int
}

// NewInMemoryLimiter allows requests actions per duration with the given burst.
// NewInMemoryLimiter[int64](1, 5*time.Second, 3) allows one command every 5 seconds, three in a row.
func NewInMemoryLimiter[K comparable](requests int, per time.Duration, burst int) *InMemoryLimiter[K] {
	return &InMemoryLimiter[K]{
		buckets: make(map[K]*rate.Limiter),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
	}
}

// NewSpacing enforces at least min between two actions of the same key.
func NewSpacing[K comparable](min time.Duration) *InMemoryLimiter[K] {
	if min <= 0 {
		return &InMemoryLimiter[K]{buckets: make(map[K]*rate.Limiter), r: rate.Inf, b: 1}
	}
	return NewInMemoryLimiter[K](1, min, 1)
}

func (l *InMemoryLimiter[K]) bucket(key K) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.buckets[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.buckets[key] = limiter
	}
	return limiter
}

func (l *InMemoryLimiter[K]) Allow(key K) bool {
	return l.bucket(key).Allow()
}

func (l *InMemoryLimiter[K]) Wait(ctx context.Context, key K) error {
	return l.bucket(key).Wait(ctx)
}
