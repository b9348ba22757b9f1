package printer

import (
	"bytes"
	"io"
	"sync"
)

// heldWriter buffers all writes in memory until flushed.
type heldWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (h *heldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Write(p)
}

func (h *heldWriter) flush(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.buf.Len() == 0 {
		return nil
	}

	_, err := h.buf.WriteTo(w)
	return err
}

// NewDeferred returns a Printer whose output is held in memory until flush
// is called, for output produced while a full screen program owns the
// terminal. flush writes everything held so far to w and clears it.
func NewDeferred() (p *Printer, flush func(w io.Writer) error) {
	h := &heldWriter{}
	return New(h), h.flush
}
