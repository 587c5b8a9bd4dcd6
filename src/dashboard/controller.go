// Package dashboard orchestrates the refresh cycle: fetch, merge into
// history, persist, re-derive rows and series, and hand the result to
// the UI thread. The controller owns all mutable application state so
// the presentation layer holds no data of its own.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/quakewatch/QuakeWatch/src/history"
	"github.com/quakewatch/QuakeWatch/src/logx"
	"github.com/quakewatch/QuakeWatch/src/quake"
	"github.com/quakewatch/QuakeWatch/src/types"
)

// Fetcher is the one outbound dependency of a refresh cycle.
type Fetcher interface {
	Fetch(ctx context.Context) ([]types.Event, error)
}

// Snapshot is everything the presentation layer needs to redraw after a
// successful cycle. Rows arrive sorted by event time descending and
// capped at quake.MaxTableRows; the series cover the full (filtered)
// history in map iteration order.
type Snapshot struct {
	Rows    []quake.Row
	Series  quake.Series
	Total   int       // events held in history
	Fetched int       // events returned by the fetch that produced this snapshot
	At      time.Time // completion time, UTC
}

// Controller runs refresh cycles off the UI thread and marshals results
// back through the injected runOnUI hook. It has two states, idle and
// refreshing; a trigger that arrives while a cycle is in flight is
// dropped rather than queued, so at most one worker touches the history
// map and file at a time.
type Controller struct {
	store   *history.Store
	clock   clockwork.Clock
	runOnUI func(func())

	onSnapshot func(Snapshot)
	onError    func(error)

	mu         sync.Mutex
	fetcher    Fetcher
	hist       map[string]types.Event
	minMag     float64
	refreshing bool
}

// NewController loads the persisted history and wires the controller to
// a fetcher and a UI marshaling hook. runOnUI must schedule the given
// function onto the UI-owning thread; passing nil runs sinks inline
// (tests only).
func NewController(fetcher Fetcher, store *history.Store, runOnUI func(func())) *Controller {
	c := &Controller{
		store:   store,
		clock:   clockwork.NewRealClock(),
		runOnUI: runOnUI,
		fetcher: fetcher,
		hist:    store.Load(),
	}
	if c.runOnUI == nil {
		c.runOnUI = func(f func()) { f() }
	}
	logx.Infof("loaded %d historical events from %s", len(c.hist), store.Path())
	return c
}

// SetSinks registers the UI callbacks. Both are invoked via runOnUI.
func (c *Controller) SetSinks(onSnapshot func(Snapshot), onError func(error)) {
	c.onSnapshot = onSnapshot
	c.onError = onError
}

// SetClock swaps the time source; tests inject a fake for deterministic
// timestamps and ticker control.
func (c *Controller) SetClock(clk clockwork.Clock) {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	c.mu.Lock()
	c.clock = clk
	c.mu.Unlock()
}

// SetFetcher swaps the feed source. The running cycle, if any, finishes
// against the fetcher it started with.
func (c *Controller) SetFetcher(f Fetcher) {
	c.mu.Lock()
	c.fetcher = f
	c.mu.Unlock()
}

// SetMinMagnitude changes the display filter. History is unaffected;
// call Rebuild to redraw with the new threshold.
func (c *Controller) SetMinMagnitude(min float64) {
	c.mu.Lock()
	c.minMag = min
	c.mu.Unlock()
}

// HistorySize reports how many events the store currently holds.
func (c *Controller) HistorySize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hist)
}

// Refresh starts one cycle on a worker goroutine. Returns false when a
// cycle is already in flight and the trigger was dropped.
func (c *Controller) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		logx.Debugf("refresh already in flight, dropping trigger")
		return false
	}
	c.refreshing = true
	fetcher := c.fetcher
	c.mu.Unlock()

	go c.runCycle(ctx, fetcher)
	return true
}

// Rebuild re-derives a snapshot from the current history without
// fetching, for filter changes. Runs synchronously on the caller's
// goroutine and delivers through runOnUI like any other result.
func (c *Controller) Rebuild() {
	c.mu.Lock()
	snap := c.snapshotLocked(0)
	c.mu.Unlock()
	c.deliverSnapshot(snap)
}

// Run drives periodic refreshes until the context is cancelled. A
// non-positive interval disables the ticker. Ticks share the
// single-flight rule with manual triggers.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.mu.Lock()
	clk := c.clock
	c.mu.Unlock()

	ticker := clk.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			c.Refresh(ctx)
		}
	}
}

func (c *Controller) runCycle(ctx context.Context, fetcher Fetcher) {
	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	events, err := fetcher.Fetch(ctx)
	if err != nil {
		logx.Warnf("refresh failed: %v", err)
		c.deliverError(err)
		return
	}

	c.mu.Lock()
	applied := history.Merge(c.hist, events)
	if err := c.store.Save(c.hist); err != nil {
		// Best effort: the next successful fetch writes again.
		logx.Warnf("history save failed: %v", err)
	}
	snap := c.snapshotLocked(len(events))
	c.mu.Unlock()

	logx.Debugf("refresh merged %d of %d fetched events, history now %d", applied, len(events), snap.Total)
	c.deliverSnapshot(snap)
}

// snapshotLocked re-derives rows and series from the entire history.
// Callers hold c.mu.
func (c *Controller) snapshotLocked(fetched int) Snapshot {
	all := make([]types.Event, 0, len(c.hist))
	for _, ev := range c.hist {
		all = append(all, ev)
	}
	rows, series := quake.Parse(quake.AtOrAbove(all, c.minMag))
	quake.SortRows(rows)
	rows = quake.CapRows(rows, quake.MaxTableRows)
	return Snapshot{
		Rows:    rows,
		Series:  series,
		Total:   len(c.hist),
		Fetched: fetched,
		At:      c.clock.Now().UTC(),
	}
}

func (c *Controller) deliverSnapshot(snap Snapshot) {
	if c.onSnapshot == nil {
		return
	}
	c.runOnUI(func() { c.onSnapshot(snap) })
}

func (c *Controller) deliverError(err error) {
	if c.onError == nil {
		return
	}
	c.runOnUI(func() { c.onError(err) })
}
