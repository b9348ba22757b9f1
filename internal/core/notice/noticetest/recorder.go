// Package noticetest provides test helpers for code that publishes to a
// notice.Bus.
package noticetest

import (
	"slices"
	"sync"
	"testing"

	"github.com/colonyops/petpix/internal/core/notice"
)

// Recorder subscribes to a bus and captures every broadcast.
type Recorder struct {
	mu         sync.Mutex
	broadcasts [][]notice.Notice
}

// New subscribes a Recorder to bus. The subscription is removed when the
// test completes.
func New(t testing.TB, bus *notice.Bus) *Recorder {
	t.Helper()

	r := &Recorder{}
	unsubscribe := bus.Subscribe(r.record)
	t.Cleanup(unsubscribe)
	return r
}

func (r *Recorder) record(live []notice.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, live)
}

// Broadcasts returns every captured payload in delivery order.
func (r *Recorder) Broadcasts() [][]notice.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.broadcasts)
}

// Count returns the number of broadcasts received.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.broadcasts)
}

// Last returns the most recent payload, or nil if nothing was received.
func (r *Recorder) Last() []notice.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.broadcasts) == 0 {
		return nil
	}
	return r.broadcasts[len(r.broadcasts)-1]
}

// Published returns each distinct notice seen, in order of first appearance.
func (r *Recorder) Published() []notice.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[notice.ID]bool)
	var out []notice.Notice
	for _, b := range r.broadcasts {
		for _, n := range b {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			out = append(out, n)
		}
	}
	return out
}

// Reset discards captured broadcasts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = nil
}
