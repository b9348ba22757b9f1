package notice

import (
	"bytes"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a notice stays live unless dismissed first.
const DefaultTTL = 4000 * time.Millisecond

type subscription struct {
	fn      Subscriber
	removed atomic.Bool
}

// Bus is the in-process fan-out channel for notices. It owns the live set,
// expires each notice after its TTL, and broadcasts the whole set to every
// subscriber on each change.
//
// Broadcasts are delivered one at a time, in the order the changes were
// made. Publish and Dismiss return once their own broadcast has reached
// every subscriber. A change made from another goroutine while a broadcast
// is in flight waits for the dispatching goroutine to deliver it. A change
// made from inside a subscriber is queued and delivered after the current
// broadcast, so it returns before its broadcast is seen.
type Bus struct {
	clock  clockwork.Clock
	ttl    time.Duration
	logger zerolog.Logger

	mu          sync.Mutex
	delivered   *sync.Cond
	live        []Notice
	timers      map[ID]clockwork.Timer
	subs        []*subscription
	pending     []snapshot
	seq         uint64
	done        uint64 // seq of the last fully delivered snapshot
	dispatching bool
	dispatcher  uint64 // goroutine delivering while dispatching is set
}

type snapshot struct {
	seq  uint64
	live []Notice
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock sets the clock used for timestamps and expiry timers.
func WithClock(c clockwork.Clock) Option {
	return func(b *Bus) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.ttl = d
		}
	}
}

// WithLogger sets the logger used for bus diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		clock:  clockwork.NewRealClock(),
		ttl:    DefaultTTL,
		logger: log.With().Str("cmp", "notice").Logger(),
		timers: make(map[ID]clockwork.Timer),
	}
	b.delivered = sync.NewCond(&b.mu)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish appends a notice to the live set and broadcasts it. The notice is
// removed automatically once the TTL elapses. Text is not validated.
func (b *Bus) Publish(kind Kind, text string) ID {
	n := Notice{
		ID:        ID(uuid.NewString()),
		Kind:      kind,
		Text:      text,
		CreatedAt: b.clock.Now(),
	}

	b.mu.Lock()
	b.live = append(b.live, n)
	seq := b.enqueueLocked()
	b.mu.Unlock()

	b.logger.Debug().Str("id", string(n.ID)).Str("kind", string(kind)).Str("text", text).Msg("notice published")

	// The timer is armed outside the lock: a clock may fire callbacks while
	// holding its own lock, and expire needs b.mu.
	timer := b.clock.AfterFunc(b.ttl, func() { b.expire(n.ID) })

	b.mu.Lock()
	stale := b.indexLocked(n.ID) < 0
	if !stale {
		b.timers[n.ID] = timer
	}
	b.mu.Unlock()

	if stale {
		timer.Stop()
	}

	b.drain(seq)
	return n.ID
}

// Successf publishes a success notice.
func (b *Bus) Successf(format string, args ...any) ID {
	return b.Publish(KindSuccess, fmt.Sprintf(format, args...))
}

// Errorf publishes an error notice.
func (b *Bus) Errorf(format string, args ...any) ID {
	return b.Publish(KindError, fmt.Sprintf(format, args...))
}

// Warnf publishes a warning notice.
func (b *Bus) Warnf(format string, args ...any) ID {
	return b.Publish(KindWarning, fmt.Sprintf(format, args...))
}

// Dismiss removes the notice immediately and cancels its expiry. Dismissing
// an id that is not live does nothing and broadcasts nothing.
func (b *Bus) Dismiss(id ID) {
	timer, seq, ok := b.remove(id)
	if !ok {
		return
	}
	if timer != nil {
		timer.Stop()
	}
	b.drain(seq)
}

// Subscribe registers fn for all future broadcasts. Past notices are not
// replayed; use Live for the current set. The returned function removes
// this subscription and is safe to call more than once.
func (b *Bus) Subscribe(fn Subscriber) (unsubscribe func()) {
	s := &subscription{fn: fn}

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.removed.Store(true)
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(other *subscription) bool { return other == s })
		})
	}
}

// Live returns a copy of the notices that are currently live, oldest first.
func (b *Bus) Live() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.live)
}

func (b *Bus) expire(id ID) {
	_, seq, ok := b.remove(id)
	if !ok {
		return
	}
	b.logger.Debug().Str("id", string(id)).Msg("notice expired")
	b.drain(seq)
}

// remove deletes id from the live set and queues a broadcast. It returns the
// pending timer for the notice, if any, the broadcast's sequence number, and
// whether anything was removed.
func (b *Bus) remove(id ID) (clockwork.Timer, uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexLocked(id)
	if idx < 0 {
		return nil, 0, false
	}

	b.live = slices.Delete(b.live, idx, idx+1)
	timer := b.timers[id]
	delete(b.timers, id)
	return timer, b.enqueueLocked(), true
}

func (b *Bus) indexLocked(id ID) int {
	return slices.IndexFunc(b.live, func(n Notice) bool { return n.ID == id })
}

func (b *Bus) enqueueLocked() uint64 {
	b.seq++
	b.pending = append(b.pending, snapshot{seq: b.seq, live: slices.Clone(b.live)})
	return b.seq
}

// drain returns once the snapshot numbered seq has been delivered. If no
// goroutine is dispatching, the caller delivers everything queued. If the
// caller is the dispatching goroutine, it is a subscriber changing the bus
// and returns at once; the outer loop delivers its snapshot next.
func (b *Bus) drain(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dispatching {
		if b.dispatcher == goroutineID() {
			return
		}
		for b.dispatching && b.done < seq {
			b.delivered.Wait()
		}
		if b.done >= seq {
			return
		}
	}

	b.dispatching = true
	b.dispatcher = goroutineID()

	for len(b.pending) > 0 {
		next := b.pending[0]
		b.pending = b.pending[1:]
		subs := slices.Clone(b.subs)
		b.mu.Unlock()

		for _, s := range subs {
			if s.removed.Load() {
				continue
			}
			b.deliver(s, next.live)
		}

		b.mu.Lock()
		b.done = next.seq
		b.delivered.Broadcast()
	}

	b.dispatching = false
	b.dispatcher = 0
	b.delivered.Broadcast()
}

func (b *Bus) deliver(s *subscription, live []Notice) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("notice subscriber panicked")
		}
	}()
	s.fn(slices.Clone(live))
}

// goroutineID parses the current goroutine's id from the "goroutine N [...]"
// header of its stack trace.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, _ := strconv.ParseUint(string(fields[1]), 10, 64)
	return id
}
