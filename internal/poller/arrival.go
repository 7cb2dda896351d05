package poller

// maxSignaled bounds the ids remembered after they signaled; the oldest is
// evicted first.
const maxSignaled = 1024

// ArrivalDetector reports when the newest order of a snapshot is one it has
// not seen before. The first observation only primes it, even when that
// snapshot is empty.
type ArrivalDetector struct {
	primed   bool
	previous map[string]struct{}

	signaled    map[string]struct{}
	signalOrder []string
}

// Observe takes the ids of an applied snapshot, newest first, and reports
// whether its top id is a new arrival. An id signals at most once while it
// stays in the snapshot or among the recently signaled ids; an older order
// that surfaces as the newest, for example after a deletion, never signals.
func (d *ArrivalDetector) Observe(ids []string) bool {
	top := ""
	if len(ids) > 0 {
		top = ids[0]
	}
	arrived := d.primed && top != "" && !d.known(top)

	d.primed = true
	d.previous = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			d.previous[id] = struct{}{}
		}
	}
	if arrived {
		d.remember(top)
	}
	return arrived
}

func (d *ArrivalDetector) known(id string) bool {
	if _, ok := d.previous[id]; ok {
		return true
	}
	_, ok := d.signaled[id]
	return ok
}

func (d *ArrivalDetector) remember(id string) {
	if d.signaled == nil {
		d.signaled = make(map[string]struct{})
	}
	if len(d.signalOrder) >= maxSignaled {
		delete(d.signaled, d.signalOrder[0])
		d.signalOrder = d.signalOrder[1:]
	}
	d.signaled[id] = struct{}{}
	d.signalOrder = append(d.signalOrder, id)
}
