/*
scheduler.go - Background penalty digest

PURPOSE:
  Periodically fetches a fresh period snapshot and logs the team's penalty
  standings, so the server log carries a running digest without anyone
  opening the dashboard.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick fetches one snapshot and computes the team rollup against it
  - Errors are logged and retried on the next tick, never fatal

CONFIGURATION:
  - CheckInterval: How often to compute the digest (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewDigestScheduler(h)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - kpi/engine.go: TeamPenalties
  - cmd/server/main.go: Startup wiring
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/kpi-engine/kpi"
)

// DigestScheduler logs periodic team penalty digests.
type DigestScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDigestScheduler creates a new scheduler.
func NewDigestScheduler(h *Handler) *DigestScheduler {
	return &DigestScheduler{
		Handler:       h,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ds *DigestScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.CheckInterval)
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Scheduler] Started with check interval: %v", ds.CheckInterval)
}

// Stop stops the scheduler.
func (ds *DigestScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ds *DigestScheduler) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.digest()

	for {
		select {
		case <-ds.ticker.C:
			ds.digest()
		case <-ds.stop:
			return
		}
	}
}

func (ds *DigestScheduler) digest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := ds.Handler
	now := h.now()
	p := kpi.CurrentPeriod(now)

	snap, err := kpi.FetchSnapshot(ctx, h.Data, h.Settings, p)
	if err != nil {
		log.Printf("[Scheduler] Error loading snapshot: %v", err)
		return
	}

	reps, err := h.Users.SalesUsers(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing sales users: %v", err)
		return
	}
	names := make([]string, len(reps))
	for i, u := range reps {
		names[i] = u.Name
	}

	penalties, total := h.Engine.TeamPenalties(snap, names, kpi.DateOf(now))
	breakdown := h.Engine.ValidationBreakdown(snap, "")

	log.Printf("[Scheduler] Period %s: total penalty %s, %d pending / %d rejected of %d records",
		p, total, breakdown.Pending, breakdown.Rejected, breakdown.Total)
	for _, name := range names {
		if pen, ok := penalties[name]; ok && !pen.IsZero() {
			log.Printf("[Scheduler]   %s: penalty %s", name, pen)
		}
	}
}

// RunNow triggers an immediate digest (for testing/admin).
func (ds *DigestScheduler) RunNow() {
	ds.digest()
}
