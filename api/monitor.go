/*
monitor.go - Renewal deadline monitor

PURPOSE:
  Periodically scans active licenses, computes each one's current
  reporting window, and records a renewal alert when the deadline falls
  within the warning horizon.

DESIGN:
  - Runs a background goroutine with configurable scan interval
  - Alerts are keyed by (license, window end) in the store, so a scan
    that runs every hour records each deadline exactly once
  - The engine stays clock-free: the monitor resolves "today" itself
    and passes it in

CONFIGURATION:
  - Interval:    How often to scan (default: 1 hour)
  - HorizonDays: How close a deadline must be to alert (default: 90)

USAGE:
  monitor := NewRenewalMonitor(store, generator, logger)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: ListAlerts endpoint serving what the scan records
  - report: UrgencyFor, the shared urgency scale
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/compliance-engine/accountancy"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/report"
	"github.com/warp/compliance-engine/store"
)

// RenewalMonitor watches active licenses for approaching deadlines.
type RenewalMonitor struct {
	Store       store.Store
	Generator   *engine.Generator
	Interval    time.Duration
	HorizonDays int
	Logger      zerolog.Logger

	// Now resolves the scan date. Overridable for tests.
	Now func() engine.Date

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRenewalMonitor creates a monitor with default interval and horizon.
func NewRenewalMonitor(st store.Store, gen *engine.Generator, logger zerolog.Logger) *RenewalMonitor {
	return &RenewalMonitor{
		Store:       st,
		Generator:   gen,
		Interval:    1 * time.Hour,
		HorizonDays: 90,
		Logger:      logger,
		Now:         func() engine.Date { return engine.DateOf(time.Now().UTC()) },
	}
}

// Start begins the background scan loop.
func (m *RenewalMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticker != nil {
		return
	}

	m.ticker = time.NewTicker(m.Interval)
	m.stop = make(chan struct{})
	m.wg.Add(1)
	go m.run()

	m.Logger.Info().Dur("interval", m.Interval).Int("horizon_days", m.HorizonDays).
		Msg("renewal monitor started")
}

// Stop ends the scan loop and waits for the current pass to finish.
func (m *RenewalMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticker == nil {
		return
	}

	m.ticker.Stop()
	close(m.stop)
	m.wg.Wait()
	m.ticker = nil

	m.Logger.Info().Msg("renewal monitor stopped")
}

func (m *RenewalMonitor) run() {
	defer m.wg.Done()

	// Scan immediately on start
	m.scan(context.Background(), m.Now())

	for {
		select {
		case <-m.ticker.C:
			m.scan(context.Background(), m.Now())
		case <-m.stop:
			return
		}
	}
}

// RunNow triggers an immediate scan (for testing/admin).
func (m *RenewalMonitor) RunNow(ctx context.Context) int {
	return m.scan(ctx, m.Now())
}

// scan walks the active roster once and returns how many new alerts
// it recorded.
func (m *RenewalMonitor) scan(ctx context.Context, asOf engine.Date) int {
	licenses, err := m.Store.ListLicenses(ctx, store.LicenseFilter{Status: accountancy.StatusActive})
	if err != nil {
		m.Logger.Error().Err(err).Msg("renewal scan: failed to list licenses")
		return 0
	}

	recorded := 0
	for _, rec := range licenses {
		window, ok, err := m.Generator.CurrentWindow(rec.License(), asOf)
		if err != nil {
			m.Logger.Warn().Err(err).Str("license", rec.Number).
				Msg("renewal scan: skipping license")
			continue
		}
		if !ok {
			continue
		}

		days := engine.DaysBetween(asOf, window.End)
		if days > m.HorizonDays {
			continue
		}

		alert := store.RenewalAlert{
			LicenseNumber: rec.Number,
			WindowEnd:     window.End,
			DaysRemaining: days,
			Urgency:       string(report.UrgencyFor(days)),
			Message: fmt.Sprintf("License %s renewal window ends %s: %d days remaining",
				rec.Number, window.End, days),
		}

		created, err := m.Store.RecordAlert(ctx, alert)
		if err != nil {
			m.Logger.Error().Err(err).Str("license", rec.Number).
				Msg("renewal scan: failed to record alert")
			continue
		}
		if created {
			recorded++
			alertsRecorded.Inc()
			m.Logger.Info().Str("license", rec.Number).
				Str("window_end", window.End.String()).
				Int("days_remaining", days).
				Str("urgency", alert.Urgency).
				Msg("renewal alert recorded")
		}
	}

	if recorded > 0 {
		m.Logger.Info().Int("recorded", recorded).Int("scanned", len(licenses)).
			Msg("renewal scan complete")
	}
	return recorded
}
