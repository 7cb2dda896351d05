package order

import (
	"fmt"
	"strings"
)

// Flow is an ordered status progression. Cancelled is reachable from every
// non-terminal state; the last state of the progression and Cancelled are
// terminal.
type Flow struct {
	Name  string
	Steps []Status
}

var (
	KitchenFlow   = Flow{Name: "kitchen", Steps: []Status{StatusPending, StatusPreparing, StatusReady, StatusServed}}
	DashboardFlow = Flow{Name: "dashboard", Steps: []Status{StatusPending, StatusInProgress, StatusServed, StatusPaid}}
)

// FlowByName resolves the deployment setting; empty selects KitchenFlow.
func FlowByName(name string) (Flow, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", KitchenFlow.Name:
		return KitchenFlow, nil
	case DashboardFlow.Name:
		return DashboardFlow, nil
	default:
		return Flow{}, fmt.Errorf("unknown status flow %q", name)
	}
}

func (f Flow) rank(s Status) int {
	for i, st := range f.Steps {
		if st == s {
			return i
		}
	}
	return -1
}

// Contains reports whether s belongs to the flow (Cancelled always does).
func (f Flow) Contains(s Status) bool {
	return s == StatusCancelled || f.rank(s) >= 0
}

// Terminal states accept no further transitions.
func (f Flow) Terminal(s Status) bool {
	if s == StatusCancelled {
		return true
	}
	return len(f.Steps) > 0 && s == f.Steps[len(f.Steps)-1]
}

// CanTransition allows forward moves along the progression and cancellation
// from any non-terminal state. A status outside the flow can only move to a
// known state (it is treated like the start of the flow).
func (f Flow) CanTransition(from, to Status) bool {
	if f.Terminal(from) || from == to || !f.Contains(to) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return f.rank(to) > f.rank(from)
}

// Next returns the following step, false when from is terminal or unknown.
func (f Flow) Next(from Status) (Status, bool) {
	r := f.rank(from)
	if r < 0 || r+1 >= len(f.Steps) {
		return "", false
	}
	return f.Steps[r+1], true
}
