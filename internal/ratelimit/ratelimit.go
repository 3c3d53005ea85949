// Package ratelimit implements a fixed-window request counter keyed by identifier.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultWindow           = 60 * time.Second
	DefaultMaxRequests      = 5
	DefaultCleanupThreshold = 1000
)

type Result struct {
	Allowed       bool
	RemainingTime time.Duration
}

// RemainingSeconds is the time until the window resets, rounded up.
func (r Result) RemainingSeconds() int64 {
	if r.RemainingTime <= 0 {
		return 0
	}
	return int64((r.RemainingTime + time.Second - 1) / time.Second)
}

type Limiter interface {
	Check(ctx context.Context, identifier string) (Result, error)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Config struct {
	Window           time.Duration
	MaxRequests      int
	CleanupThreshold int
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.CleanupThreshold <= 0 {
		c.CleanupThreshold = DefaultCleanupThreshold
	}
	return c
}

type entry struct {
	count   int
	resetAt time.Time
}

// Memory keeps counters in process memory. State is per process: several
// instances behind a balancer each count on their own.
type Memory struct {
	cfg   Config
	clock Clock

	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemory(cfg Config, clock Clock) *Memory {
	if clock == nil {
		clock = systemClock{}
	}
	return &Memory{
		cfg:     cfg.withDefaults(),
		clock:   clock,
		entries: make(map[string]*entry),
	}
}

func (m *Memory) Check(_ context.Context, identifier string) (Result, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) > m.cfg.CleanupThreshold {
		for k, e := range m.entries {
			if now.After(e.resetAt) {
				delete(m.entries, k)
			}
		}
	}

	e, ok := m.entries[identifier]
	if !ok || now.After(e.resetAt) {
		m.entries[identifier] = &entry{count: 1, resetAt: now.Add(m.cfg.Window)}
		return Result{Allowed: true}, nil
	}

	if e.count >= m.cfg.MaxRequests {
		return Result{Allowed: false, RemainingTime: e.resetAt.Sub(now)}, nil
	}

	e.count++
	return Result{Allowed: true}, nil
}

// Len returns the number of tracked identifiers.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
