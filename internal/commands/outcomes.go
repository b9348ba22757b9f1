package commands

import (
	"sync"

	"github.com/colonyops/petpix/internal/core/notice"
)

// outcomes records notices as they first appear on the bus so a command can
// report what its dispatches produced and derive an exit status.
type outcomes struct {
	mu     sync.Mutex
	seen   map[notice.ID]bool
	fresh  []notice.Notice
	errors int
	stop   func()
}

func watch(bus *notice.Bus) *outcomes {
	o := &outcomes{seen: make(map[notice.ID]bool)}
	o.stop = bus.Subscribe(o.observe)
	return o
}

func (o *outcomes) observe(live []notice.Notice) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, n := range live {
		if o.seen[n.ID] {
			continue
		}
		o.seen[n.ID] = true
		o.fresh = append(o.fresh, n)
		if n.Kind == notice.KindError {
			o.errors++
		}
	}
}

// Take returns the notices that appeared since the last call.
func (o *outcomes) Take() []notice.Notice {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := o.fresh
	o.fresh = nil
	return out
}

// Errors returns how many error notices have appeared in total.
func (o *outcomes) Errors() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errors
}

func (o *outcomes) Close() {
	o.stop()
}

// firstError returns the text of the first error notice in ns.
func firstError(ns []notice.Notice) string {
	for _, n := range ns {
		if n.Kind == notice.KindError {
			return n.Text
		}
	}
	return ""
}
