// Package ratelimit bounds requests per client address over a trailing window.
package ratelimit

import (
	"net/netip"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/rs/zerolog/log"
)

// Window is the trailing interval over which requests are counted
const Window = 60 * time.Second

// Limiter admits at most Limit() requests per address within any Window.
//
// The per-minute and burst settings collapse into a single cap,
// max(perMinute, burst, 1); there is no separate burst tier.
type Limiter struct {
	mu      sync.Mutex
	windows map[netip.Addr][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

func New(perMinute, burst int) *Limiter {
	return &Limiter{
		windows: make(map[netip.Addr][]time.Time),
		limit:   max(perMinute, burst, 1),
		window:  Window,
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Limit() int {
	return l.limit
}

// Check records a request from addr, or rejects it with a too-many-requests
// error when addr already has Limit() requests inside the window. Rejected
// requests are not recorded.
func (l *Limiter) Check(addr netip.Addr) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	timestamps := l.windows[addr]
	evict := 0
	for evict < len(timestamps) && timestamps[evict].Before(cutoff) {
		evict++
	}
	if evict > 0 {
		timestamps = append(timestamps[:0:0], timestamps[evict:]...)
	}

	if len(timestamps) >= l.limit {
		l.windows[addr] = timestamps
		log.Warn().Str("client_ip", addr.String()).Msg("rate limit exceeded for client")
		return apperrors.TooManyRequests()
	}

	l.windows[addr] = append(timestamps, now)
	return nil
}
