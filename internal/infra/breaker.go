package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Breaker ───────────────────────────────────────────────────────────────────
// Closed → Open → Half-Open guard around an unreliable dependency (SMTP).
//
//   - Closed:    calls pass through; consecutive failures are counted
//   - Open:      calls fail with ErrBreakerOpen until the cool-down elapses
//   - Half-Open: a single probe runs; success closes, failure reopens

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerConfig struct {
	MaxFailures int           // consecutive failures before opening (default 5)
	CoolDown    time.Duration // time spent open before a probe (default 60s)
}

type Breaker struct {
	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	probing  bool
	maxFail  int
	coolDown time.Duration
	now      func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 60 * time.Second
	}
	return &Breaker{maxFail: cfg.MaxFailures, coolDown: cfg.CoolDown, now: time.Now}
}

// State reports the current state, moving Open to Half-Open once the
// cool-down has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// advance must be called with mu held.
func (b *Breaker) advance() {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.coolDown {
		b.state = BreakerHalfOpen
		b.probing = false
	}
}

// Do runs fn unless the breaker is open or a half-open probe is in flight.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	b.advance()
	switch b.state {
	case BreakerOpen:
		b.mu.Unlock()
		return ErrBreakerOpen
	case BreakerHalfOpen:
		if b.probing {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.probing = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.state == BreakerHalfOpen || b.failures >= b.maxFail {
			b.state = BreakerOpen
			b.openedAt = b.now()
			b.probing = false
		}
		return err
	}
	b.state = BreakerClosed
	b.failures = 0
	b.probing = false
	return nil
}
