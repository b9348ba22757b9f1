package notice_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/core/notice/noticetest"
)

func newTestBus(t *testing.T) (*notice.Bus, *clockwork.FakeClock, *noticetest.Recorder) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	bus := notice.NewBus(notice.WithClock(clock))
	return bus, clock, noticetest.New(t, bus)
}

func texts(ns []notice.Notice) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Text
	}
	return out
}

func TestBus_Publish_broadcasts_full_live_set_in_order(t *testing.T) {
	bus, _, rec := newTestBus(t)

	bus.Successf("first")
	bus.Errorf("second: %d", 2)
	bus.Warnf("third")

	broadcasts := rec.Broadcasts()
	require.Len(t, broadcasts, 3)
	assert.Equal(t, []string{"first"}, texts(broadcasts[0]))
	assert.Equal(t, []string{"first", "second: 2"}, texts(broadcasts[1]))
	assert.Equal(t, []string{"first", "second: 2", "third"}, texts(broadcasts[2]))

	last := rec.Last()
	assert.Equal(t, notice.KindSuccess, last[0].Kind)
	assert.Equal(t, notice.KindError, last[1].Kind)
	assert.Equal(t, notice.KindWarning, last[2].Kind)
}

func TestBus_Publish_assigns_unique_ids(t *testing.T) {
	bus, _, _ := newTestBus(t)

	seen := make(map[notice.ID]bool)
	for range 50 {
		id := bus.Publish(notice.KindSuccess, "x")
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestBus_Publish_empty_text_is_published(t *testing.T) {
	bus, _, rec := newTestBus(t)

	id := bus.Publish(notice.KindError, "")

	require.Equal(t, 1, rec.Count())
	require.Len(t, rec.Last(), 1)
	assert.Equal(t, id, rec.Last()[0].ID)
	assert.Empty(t, rec.Last()[0].Text)
}

func TestBus_Publish_sets_created_at_from_clock(t *testing.T) {
	bus, clock, _ := newTestBus(t)

	bus.Successf("stamped")

	live := bus.Live()
	require.Len(t, live, 1)
	assert.Equal(t, clock.Now(), live[0].CreatedAt)
}

func TestBus_expires_after_ttl(t *testing.T) {
	bus, clock, rec := newTestBus(t)

	bus.Successf("short lived")

	clock.Advance(notice.DefaultTTL - time.Millisecond)
	assert.Len(t, bus.Live(), 1)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return rec.Count() == 2 }, time.Second, time.Millisecond)
	assert.Empty(t, bus.Live())
	assert.Empty(t, rec.Last())
}

func TestBus_overlapping_expiry_reflects_current_live_set(t *testing.T) {
	bus, clock, rec := newTestBus(t)

	bus.Successf("a")
	clock.Advance(2 * time.Second)
	bus.Successf("b")

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return rec.Count() == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"b"}, texts(rec.Last()))

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return rec.Count() == 4 }, time.Second, time.Millisecond)
	assert.Empty(t, rec.Last())
}

func TestBus_WithTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	bus := notice.NewBus(notice.WithClock(clock), notice.WithTTL(time.Second))

	bus.Successf("quick")
	clock.Advance(time.Second)

	require.Eventually(t, func() bool { return len(bus.Live()) == 0 }, time.Second, time.Millisecond)
}

func TestBus_Dismiss_removes_and_broadcasts(t *testing.T) {
	bus, _, rec := newTestBus(t)

	keep := bus.Successf("keep")
	drop := bus.Errorf("drop")

	bus.Dismiss(drop)

	require.Equal(t, 3, rec.Count())
	require.Len(t, rec.Last(), 1)
	assert.Equal(t, keep, rec.Last()[0].ID)
}

func TestBus_Dismiss_twice_only_first_has_effect(t *testing.T) {
	bus, _, rec := newTestBus(t)

	id := bus.Successf("once")
	bus.Dismiss(id)
	bus.Dismiss(id)

	assert.Equal(t, 2, rec.Count())
	assert.Empty(t, bus.Live())
}

func TestBus_Dismiss_unknown_id_is_noop(t *testing.T) {
	bus, _, rec := newTestBus(t)

	bus.Dismiss("missing")

	assert.Zero(t, rec.Count())
}

func TestBus_Dismiss_cancels_pending_expiry(t *testing.T) {
	bus, clock, rec := newTestBus(t)

	id := bus.Successf("dismissed early")
	bus.Dismiss(id)
	require.Equal(t, 2, rec.Count())

	clock.Advance(notice.DefaultTTL * 2)

	assert.Never(t, func() bool { return rec.Count() != 2 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Empty(t, bus.Live())
}

func TestBus_Subscribe_does_not_replay(t *testing.T) {
	bus, _, _ := newTestBus(t)
	bus.Successf("before")

	late := noticetest.New(t, bus)
	assert.Zero(t, late.Count())

	bus.Successf("after")
	require.Equal(t, 1, late.Count())
	assert.Equal(t, []string{"before", "after"}, texts(late.Last()))
}

func TestBus_subscribers_receive_identical_broadcasts(t *testing.T) {
	bus, _, first := newTestBus(t)
	second := noticetest.New(t, bus)

	bus.Successf("a")
	bus.Warnf("b")

	assert.Equal(t, first.Broadcasts(), second.Broadcasts())
}

func TestBus_Unsubscribe_is_idempotent_and_scoped(t *testing.T) {
	bus, _, kept := newTestBus(t)

	var calls int
	unsubscribe := bus.Subscribe(func([]notice.Notice) { calls++ })

	bus.Successf("one")
	unsubscribe()
	unsubscribe()
	bus.Successf("two")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, kept.Count())
}

func TestBus_publish_from_subscriber_is_delivered_after_current_broadcast(t *testing.T) {
	bus, _, _ := newTestBus(t)

	var got [][]string
	var once sync.Once
	bus.Subscribe(func(live []notice.Notice) {
		got = append(got, texts(live))
		once.Do(func() { bus.Warnf("nested") })
	})

	bus.Successf("outer")

	require.Len(t, got, 2)
	assert.Equal(t, []string{"outer"}, got[0])
	assert.Equal(t, []string{"outer", "nested"}, got[1])
}

func TestBus_concurrent_publishes_are_serialized(t *testing.T) {
	bus, _, rec := newTestBus(t)

	const n = 64
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Successf("concurrent")
		}()
	}
	wg.Wait()

	broadcasts := rec.Broadcasts()
	require.Len(t, broadcasts, n)
	for i, b := range broadcasts {
		assert.Len(t, b, i+1, "broadcast %d", i)
	}
}

func TestBus_Publish_returns_after_in_flight_broadcast_delivers_it(t *testing.T) {
	bus, _, rec := newTestBus(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	bus.Subscribe(func([]notice.Notice) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	go bus.Successf("first")
	<-entered

	returned := make(chan struct{})
	go func() {
		bus.Errorf("second")
		close(returned)
	}()

	isReturned := func() bool {
		select {
		case <-returned:
			return true
		default:
			return false
		}
	}

	assert.Never(t, isReturned, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	require.Eventually(t, isReturned, time.Second, 5*time.Millisecond)

	broadcasts := rec.Broadcasts()
	require.Len(t, broadcasts, 2)
	assert.Equal(t, []string{"first", "second"}, texts(broadcasts[1]))
}

func TestBus_Dismiss_waits_for_in_flight_broadcast(t *testing.T) {
	bus, _, rec := newTestBus(t)
	id := bus.Successf("kept briefly")

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	bus.Subscribe(func([]notice.Notice) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	go bus.Warnf("blocking")
	<-entered

	returned := make(chan struct{})
	go func() {
		bus.Dismiss(id)
		close(returned)
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Dismiss did not return")
	}
	assert.Equal(t, []string{"blocking"}, texts(rec.Last()))
}

func TestBus_panicking_subscriber_does_not_block_others(t *testing.T) {
	bus, _, rec := newTestBus(t)
	bus.Subscribe(func([]notice.Notice) { panic("boom") })

	bus.Successf("still delivered")
	bus.Successf("and again")

	assert.Equal(t, 2, rec.Count())
}

func TestBus_Live_returns_copy(t *testing.T) {
	bus, _, _ := newTestBus(t)
	bus.Successf("original")

	live := bus.Live()
	live[0].Text = "changed"

	assert.Equal(t, "original", bus.Live()[0].Text)
}
