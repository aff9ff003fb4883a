package ratelimit

import (
	"sync"
	"time"
)

// bucket implements the token bucket algorithm for one rate limit key.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	perSecond  float64
	lastRefill time.Time
}

func newBucket(capacity int, perSecond float64) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		perSecond:  perSecond,
		lastRefill: time.Now(),
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.perSecond
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

func (b *bucket) idleSince(now time.Time, ttl time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastRefill) > ttl
}

// Limiter tracks one token bucket per key. Keys are typically client
// addresses; inactive buckets are swept after the TTL so the map does not grow
// with one entry per client forever.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	capacity  int
	perSecond float64
	ttl       time.Duration
}

// NewLimiter creates a keyed rate limiter allowing bursts of capacity and a
// sustained perSecond rate per key. A ttl of zero keeps buckets forever.
func NewLimiter(capacity int, perSecond float64, ttl time.Duration) *Limiter {
	l := &Limiter{
		buckets:   make(map[string]*bucket),
		capacity:  capacity,
		perSecond: perSecond,
		ttl:       ttl,
	}
	if ttl > 0 {
		go l.sweep()
	}
	return l
}

// Allow reports whether a request under key is within the limit, consuming a
// token when it is.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(l.capacity, l.perSecond)
		l.buckets[key] = b
	}
	l.mu.Unlock()

	return b.allow()
}

// Reset refills the bucket for key
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		b.mu.Lock()
		b.tokens = b.capacity
		b.lastRefill = time.Now()
		b.mu.Unlock()
	}
}

// ActiveKeys returns the number of keys currently tracked
func (l *Limiter) ActiveKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for key, b := range l.buckets {
			if b.idleSince(now, l.ttl) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}
