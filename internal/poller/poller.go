// Package poller keeps a branch's order list in sync with the backend by
// fixed-interval polling and routes status changes through the backend.
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andreasstove999/tableorder/internal/middleware"
	"github.com/andreasstove999/tableorder/internal/notify"
	"github.com/andreasstove999/tableorder/internal/order"
)

var (
	ErrTerminalStatus    = errors.New("order is in a terminal status")
	ErrIllegalTransition = errors.New("status transition not allowed")
	ErrUnknownOrder      = errors.New("order not in snapshot")
)

const DefaultInterval = 5 * time.Second

type OrderSource interface {
	List(ctx context.Context, branchID string) ([]order.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status order.Status) error
}

// RevenueRecorder persists per-day rollups after each applied snapshot.
type RevenueRecorder interface {
	Record(ctx context.Context, branchID string, rows []order.DaySummary) error
}

// ArrivalRecorder persists newly signaled orders.
type ArrivalRecorder interface {
	RecordArrival(ctx context.Context, branchID string, o order.Normalized) error
}

type Config struct {
	BranchID          string
	Interval          time.Duration
	OffsetMinutes     int
	Flow              order.Flow
	RevenueWindowDays int
}

type Option func(*Poller)

func WithLogger(l *log.Logger) Option              { return func(p *Poller) { p.logger = l } }
func WithNotifier(n notify.Notifier) Option        { return func(p *Poller) { p.notifier = n } }
func WithRevenueRecorder(r RevenueRecorder) Option { return func(p *Poller) { p.revenue = r } }
func WithArrivalRecorder(r ArrivalRecorder) Option { return func(p *Poller) { p.arrivals = r } }
func WithClock(now func() time.Time) Option        { return func(p *Poller) { p.now = now } }

type Stats struct {
	Flow                string    `json:"flow"`
	Interval            string    `json:"interval"`
	SnapshotSize        int       `json:"snapshotSize"`
	Generation          uint64    `json:"generation"`
	LastSuccess         time.Time `json:"lastSuccess"`
	LastError           string    `json:"lastError,omitempty"`
	LastErrorAt         time.Time `json:"lastErrorAt"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	Fetches             uint64    `json:"fetches"`
	Failures            uint64    `json:"failures"`
	Discarded           uint64    `json:"discarded"`
	SkippedTicks        uint64    `json:"skippedTicks"`
	Arrivals            uint64    `json:"arrivals"`
}

type Poller struct {
	src      OrderSource
	cfg      Config
	logger   *log.Logger
	notifier notify.Notifier
	revenue  RevenueRecorder
	arrivals ArrivalRecorder
	now      func() time.Time

	sf      singleflight.Group
	ticking atomic.Bool
	wg      sync.WaitGroup

	mu         sync.RWMutex
	snapshot   []order.Normalized
	generation uint64
	detector   ArrivalDetector
	stats      Stats
	lastRollup string
}

func New(src OrderSource, cfg Config, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if len(cfg.Flow.Steps) == 0 {
		cfg.Flow = order.KitchenFlow
	}
	if cfg.RevenueWindowDays <= 0 {
		cfg.RevenueWindowDays = 7
	}
	p := &Poller{
		src:      src,
		cfg:      cfg,
		logger:   log.New(io.Discard, "", 0),
		notifier: notify.Discard,
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	p.stats.Flow = cfg.Flow.Name
	p.stats.Interval = cfg.Interval.String()
	return p
}

func (p *Poller) Flow() order.Flow { return p.cfg.Flow }

// FetchSnapshot performs one fetch of the order list. Concurrent callers
// share a single request. A failed fetch leaves the previous snapshot in
// place. A response issued before a newer fetch or a write-through status
// change was applied is discarded and the current snapshot returned instead.
func (p *Poller) FetchSnapshot(ctx context.Context) ([]order.Normalized, error) {
	v, err, _ := p.sf.Do("orders", func() (any, error) {
		return p.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]order.Normalized), nil
}

func (p *Poller) fetch(ctx context.Context) ([]order.Normalized, error) {
	p.mu.RLock()
	issued := p.generation
	p.mu.RUnlock()

	raw, err := p.src.List(ctx, p.cfg.BranchID)

	p.mu.Lock()
	p.stats.Fetches++
	if err != nil {
		p.stats.Failures++
		p.stats.ConsecutiveFailures++
		p.stats.LastError = err.Error()
		p.stats.LastErrorAt = p.now().UTC()
		p.mu.Unlock()
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	next := make([]order.Normalized, 0, len(raw))
	for _, o := range raw {
		next = append(next, order.Normalize(o, p.cfg.OffsetMinutes))
	}
	order.SortNewestFirst(next)

	p.stats.ConsecutiveFailures = 0
	p.stats.LastError = ""
	p.stats.LastSuccess = p.now().UTC()

	if p.generation != issued {
		p.stats.Discarded++
		cur := p.copySnapshot()
		p.mu.Unlock()
		p.logger.Printf("discarded stale order list (issued at generation %d)", issued)
		return cur, nil
	}

	p.snapshot = next
	p.generation++
	p.stats.SnapshotSize = len(next)
	p.stats.Generation = p.generation

	ids := make([]string, len(next))
	for i := range next {
		ids[i] = next[i].ID
	}
	var arrived *order.Normalized
	if p.detector.Observe(ids) {
		top := next[0]
		arrived = &top
		p.stats.Arrivals++
	}

	rows := order.Summarize(next, p.now(), p.cfg.RevenueWindowDays, p.cfg.OffsetMinutes)
	key := rollupKey(rows)
	rollupChanged := key != p.lastRollup
	if rollupChanged {
		p.lastRollup = key
	}
	out := p.copySnapshot()
	p.mu.Unlock()

	if arrived != nil {
		p.onArrival(ctx, *arrived)
	}
	if rollupChanged && p.revenue != nil {
		if err := p.revenue.Record(ctx, p.cfg.BranchID, rows); err != nil {
			p.logger.Printf("record revenue: %v", err)
			p.mu.Lock()
			p.lastRollup = ""
			p.mu.Unlock()
		}
	}
	return out, nil
}

func (p *Poller) onArrival(ctx context.Context, o order.Normalized) {
	notify.Send(ctx, p.notifier, notify.Notice{
		Kind:        notify.KindOrderArrived,
		Message:     fmt.Sprintf("New order from table %s", o.TableNumber),
		OrderID:     o.ID,
		TableNumber: o.TableNumber,
		Status:      o.Status.String(),
	})
	if p.arrivals != nil {
		if err := p.arrivals.RecordArrival(ctx, p.cfg.BranchID, o); err != nil {
			p.logger.Printf("record arrival of order %s: %v", o.ID, err)
		}
	}
}

// Advance moves an order to the next step of the configured flow.
func (p *Poller) Advance(ctx context.Context, orderID string) (order.Normalized, error) {
	p.mu.RLock()
	cur, ok := p.find(orderID)
	p.mu.RUnlock()
	if !ok {
		return order.Normalized{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	next, ok := p.cfg.Flow.Next(cur.Status)
	if !ok {
		if p.cfg.Flow.Terminal(cur.Status) {
			return order.Normalized{}, fmt.Errorf("%w: order %s is %s", ErrTerminalStatus, orderID, cur.Status)
		}
		return order.Normalized{}, fmt.Errorf("%w: %s has no next step in %s flow", ErrIllegalTransition, cur.Status, p.cfg.Flow.Name)
	}
	return p.ChangeStatus(ctx, orderID, next)
}

// ChangeStatus moves an order to status. The request is rejected without
// contacting the backend when the order is terminal or the move is not part
// of the configured flow. The snapshot changes only after the backend
// accepted the update.
func (p *Poller) ChangeStatus(ctx context.Context, orderID string, status order.Status) (order.Normalized, error) {
	p.mu.RLock()
	cur, ok := p.find(orderID)
	p.mu.RUnlock()
	if !ok {
		return order.Normalized{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}

	flow := p.cfg.Flow
	if flow.Terminal(cur.Status) {
		return order.Normalized{}, fmt.Errorf("%w: order %s is %s", ErrTerminalStatus, orderID, cur.Status)
	}
	if !flow.CanTransition(cur.Status, status) {
		return order.Normalized{}, fmt.Errorf("%w: %s -> %s in %s flow", ErrIllegalTransition, cur.Status, status, flow.Name)
	}

	if err := p.src.UpdateStatus(ctx, orderID, status); err != nil {
		return order.Normalized{}, fmt.Errorf("change status of order %s: %w", orderID, err)
	}

	p.mu.Lock()
	for i := range p.snapshot {
		if p.snapshot[i].ID == orderID {
			p.snapshot[i].Status = status
			p.snapshot[i].RawStatus = status.BackendValue()
			cur = p.snapshot[i]
			break
		}
	}
	p.generation++
	p.stats.Generation = p.generation
	p.lastRollup = ""
	p.mu.Unlock()

	notify.Send(ctx, p.notifier, notify.Notice{
		Kind:        notify.KindStatusChanged,
		Message:     fmt.Sprintf("Order %s is now %s", orderID, status),
		OrderID:     orderID,
		TableNumber: cur.TableNumber,
		Status:      status.String(),
	})
	return cur, nil
}

// Run polls until ctx is cancelled. The first fetch happens immediately.
// A tick that fires while the previous fetch is still running is skipped.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Printf("polling branch %s every %s (%s flow)", p.cfg.BranchID, p.cfg.Interval, p.cfg.Flow.Name)
	t := time.NewTicker(p.cfg.Interval)
	defer t.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return ctx.Err()
		case <-t.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !p.ticking.CompareAndSwap(false, true) {
		p.mu.Lock()
		p.stats.SkippedTicks++
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.ticking.Store(false)

		ctx := middleware.EnsureCorrelationID(ctx)
		p.mu.RLock()
		wasFailing := p.stats.ConsecutiveFailures > 0
		p.mu.RUnlock()

		if _, err := p.FetchSnapshot(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Printf("poll failed: %v", err)
			if !wasFailing {
				notify.Send(ctx, p.notifier, notify.Notice{
					Kind:    notify.KindError,
					Message: "Could not refresh orders: " + err.Error(),
				})
			}
		}
	}()
}

// Snapshot returns a copy of the current orders, newest first.
func (p *Poller) Snapshot() []order.Normalized {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.copySnapshot()
}

// Order looks up one order in the snapshot.
func (p *Poller) Order(id string) (order.Normalized, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.find(id)
}

// Today returns the orders whose local date is the local date of now.
func (p *Poller) Today(now time.Time) []order.Normalized {
	day := order.LocalDate(now, p.cfg.OffsetMinutes)
	var out []order.Normalized
	for _, o := range p.Snapshot() {
		if o.LocalDate == day {
			out = append(out, o)
		}
	}
	return out
}

// LastNDays summarizes the snapshot over the n local days ending today.
func (p *Poller) LastNDays(now time.Time, n int) []order.DaySummary {
	return order.Summarize(p.Snapshot(), now, n, p.cfg.OffsetMinutes)
}

func (p *Poller) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

func (p *Poller) find(id string) (order.Normalized, bool) {
	for _, o := range p.snapshot {
		if o.ID == id {
			return o, true
		}
	}
	return order.Normalized{}, false
}

func (p *Poller) copySnapshot() []order.Normalized {
	out := make([]order.Normalized, len(p.snapshot))
	copy(out, p.snapshot)
	return out
}

func rollupKey(rows []order.DaySummary) string {
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s|%d|%d|%s;", r.Date, r.Orders, r.Cancelled, r.Revenue.String())
	}
	return b.String()
}
