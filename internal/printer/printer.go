// Package printer writes user-facing CLI output and renders notices as
// they are published.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/core/styles"
)

type ctxKey struct{}

// Printer renders styled lines to a writer. It is safe for concurrent use.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, s)
}

// Infof prints a plain line.
func (p *Printer) Infof(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Mutedf prints a de-emphasized line.
func (p *Printer) Mutedf(format string, args ...any) {
	p.line(styles.MutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...any) {
	p.Notice(notice.Notice{Kind: notice.KindSuccess, Text: fmt.Sprintf(format, args...)})
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.Notice(notice.Notice{Kind: notice.KindError, Text: fmt.Sprintf(format, args...)})
}

// Notice prints a single notice with its icon.
func (p *Printer) Notice(n notice.Notice) {
	style := styles.NoticeStyle(n.Kind)
	p.line(style.Render(styles.NoticeIcon(n.Kind) + " " + n.Text))
}

// Follow subscribes to bus and prints each notice once, when it first
// appears. Removals are not printed. The returned function stops following.
func (p *Printer) Follow(bus *notice.Bus) (stop func()) {
	var (
		mu   sync.Mutex
		seen = make(map[notice.ID]bool)
	)

	return bus.Subscribe(func(live []notice.Notice) {
		mu.Lock()
		defer mu.Unlock()

		for _, n := range live {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			p.Notice(n)
		}
	})
}
