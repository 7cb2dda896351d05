// Package notify delivers user-visible notices (toasts, kitchen alerts) to
// whatever sinks a binary wires up.
package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

type Kind string

const (
	KindItemAdded     Kind = "cart.item_added"
	KindItemRemoved   Kind = "cart.item_removed"
	KindOrderPlaced   Kind = "cart.order_placed"
	KindOrderArrived  Kind = "order.arrived"
	KindStatusChanged Kind = "order.status_changed"
	KindError         Kind = "error"
)

type Notice struct {
	Kind        Kind      `json:"kind"`
	Message     string    `json:"message"`
	OrderID     string    `json:"orderId,omitempty"`
	TableNumber string    `json:"tableNumber,omitempty"`
	Status      string    `json:"status,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier must not block for long and must not fail the caller; sinks log
// their own delivery errors.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type Func func(ctx context.Context, n Notice)

func (f Func) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Notice) {})

// Multi fans a notice out to every sink in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}

type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notice) {
	if n.OrderID != "" {
		l.logger.Printf("notice %s order=%s table=%s: %s", n.Kind, n.OrderID, n.TableNumber, n.Message)
		return
	}
	l.logger.Printf("notice %s: %s", n.Kind, n.Message)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Count returns how many recorded notices have the given kind.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notices {
		if x.Kind == kind {
			n++
		}
	}
	return n
}

func stamp(n Notice) Notice {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	return n
}

// Send stamps the notice and hands it to n, tolerating a nil notifier.
func Send(ctx context.Context, to Notifier, n Notice) {
	if to == nil {
		return
	}
	to.Notify(ctx, stamp(n))
}
