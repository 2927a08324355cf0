package objectstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/harun/atrium/internal/observability"
)

// ExpiryMonitor sweeps a store on a cron schedule, expiring entries by TTL,
// age and per-partition count.
type ExpiryMonitor struct {
	logger     zerolog.Logger
	store      Expirable
	schedule   cron.Schedule
	maxAge     time.Duration
	maxEntries int

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewExpiryMonitor creates a monitor sweeping the store on the given cron
// expression. Descriptors like "@every 5m" and "@hourly" are accepted.
// maxAge and maxEntries are passed to every sweep; zero disables each.
func NewExpiryMonitor(logger zerolog.Logger, store Expirable, expr string, maxAge time.Duration, maxEntries int) (*ExpiryMonitor, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry schedule: %w", err)
	}

	return &ExpiryMonitor{
		logger:     logger.With().Str("component", "expiry-monitor").Logger(),
		store:      store,
		schedule:   schedule,
		maxAge:     maxAge,
		maxEntries: maxEntries,
	}, nil
}

// Start schedules the first sweep. Starting an already started monitor is a
// no-op.
func (m *ExpiryMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || m.timer != nil {
		return
	}
	m.scheduleNextLocked()
}

// Stop cancels the pending sweep. The monitor cannot be restarted.
func (m *ExpiryMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
	}
}

// SweepNow runs one sweep synchronously, outside the schedule.
func (m *ExpiryMonitor) SweepNow() (int, error) {
	removed, err := m.store.Expire(m.maxAge, m.maxEntries)
	if err != nil {
		m.logger.Error().Err(err).Msg("Expiry sweep failed")
		return removed, err
	}

	if removed > 0 {
		observability.RecordStoreExpiry(removed)
		m.logger.Debug().Int("removed", removed).Msg("Expired store entries")
	}
	return removed, nil
}

// scheduleNextLocked arms the timer for the next scheduled sweep (must hold
// lock).
func (m *ExpiryMonitor) scheduleNextLocked() {
	next := m.schedule.Next(time.Now())
	m.timer = time.AfterFunc(time.Until(next), m.sweep)
}

func (m *ExpiryMonitor) sweep() {
	m.SweepNow()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.scheduleNextLocked()
}
