package tui

import (
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/petpix/internal/core/notice"
)

// noticesMsg signals that a new bus snapshot is ready.
type noticesMsg struct{}

// SnapshotBuffer holds the most recent notice snapshot from the bus and emits
// coalesced signals so the program reads it on its own goroutine.
type SnapshotBuffer struct {
	mu     sync.Mutex
	latest []notice.Notice
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewSnapshotBuffer constructs an empty buffer.
func NewSnapshotBuffer() *SnapshotBuffer {
	return &SnapshotBuffer{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Attach subscribes the buffer to bus. The returned func unsubscribes and
// releases any pending WaitForSignal command.
func (b *SnapshotBuffer) Attach(bus *notice.Bus) (detach func()) {
	unsubscribe := bus.Subscribe(b.Push)
	return func() {
		unsubscribe()
		b.once.Do(func() { close(b.done) })
	}
}

// Push replaces the held snapshot and emits a non-blocking signal.
func (b *SnapshotBuffer) Push(snapshot []notice.Notice) {
	b.mu.Lock()
	b.latest = slices.Clone(snapshot)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Latest returns a copy of the most recent snapshot.
func (b *SnapshotBuffer) Latest() []notice.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.latest)
}

// WaitForSignal blocks until a snapshot has been pushed since the last
// signal. After detach it returns nil instead.
func (b *SnapshotBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return noticesMsg{}
		case <-b.done:
			return nil
		}
	}
}
