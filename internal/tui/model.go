// Package tui implements the interactive terminal interface. The model is a
// passive renderer: orchestrators own busy state and outcomes, and the bus
// owns the notices shown as toasts.
package tui

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/logging"
	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/core/styles"
	"github.com/colonyops/petpix/internal/orchestrate"
	"github.com/colonyops/petpix/internal/preview"
)

// Options configures the TUI.
type Options struct {
	Bus       *notice.Bus
	Uploader  *orchestrate.Uploader
	Retriever *orchestrate.Retriever
	Loader    *preview.Loader // optional; without it no preview is decoded
	Label     label.Label     // initially selected label
	Path      string          // initial file path
}

type (
	uploadDoneMsg struct{ dispatched bool }
	fetchDoneMsg  struct{ dispatched bool }

	previewLoadedMsg struct {
		url  string
		info preview.Info
		err  error
	}
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx       context.Context
	bus       *notice.Bus
	uploader  *orchestrate.Uploader
	retriever *orchestrate.Retriever
	loader    *preview.Loader
	buffer    *SnapshotBuffer
	detach    func()
	logger    zerolog.Logger

	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model

	label    label.Label
	notices  []notice.Notice
	pending  int // dispatched commands not yet settled
	spinning bool

	previewURL     string
	previewInfo    *preview.Info
	previewLoading bool

	width  int
	height int
}

// New creates the model and subscribes it to the bus. Call Close when the
// program exits.
func New(ctx context.Context, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "path/to/image.jpg"
	input.Prompt = styles.IconUpload + " "
	input.CharLimit = 4096
	input.Width = 48
	input.SetValue(opts.Path)
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.TitleStyle

	l := opts.Label
	if !l.Valid() {
		l = label.All()[0]
	}

	buffer := NewSnapshotBuffer()
	detach := buffer.Attach(opts.Bus)

	return Model{
		ctx:       ctx,
		bus:       opts.Bus,
		uploader:  opts.Uploader,
		retriever: opts.Retriever,
		loader:    opts.Loader,
		buffer:    buffer,
		detach:    detach,
		logger:    logging.Component("tui"),
		keys:      defaultKeyMap(),
		help:      help.New(),
		input:     input,
		spinner:   sp,
		label:     l,
		notices:   opts.Bus.Live(),
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Close unsubscribes the model from the bus.
func (m Model) Close() {
	if m.detach != nil {
		m.detach()
	}
}

// Label returns the selected label.
func (m Model) Label() label.Label {
	return m.label
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.buffer.WaitForSignal())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(min(msg.Width-8, 72), 16)
		return m, nil

	case noticesMsg:
		m.notices = m.buffer.Latest()
		return m, m.buffer.WaitForSignal()

	case uploadDoneMsg:
		m.pending--
		return m, nil

	case fetchDoneMsg:
		m.pending--
		return m.handleFetchDone(msg)

	case previewLoadedMsg:
		if msg.url != m.previewURL {
			return m, nil
		}
		m.previewLoading = false
		if msg.err == nil {
			info := msg.info
			m.previewInfo = &info
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Upload):
		return m.startUpload()
	case key.Matches(msg, m.keys.Random):
		return m.startFetch()
	case key.Matches(msg, m.keys.NextLabel):
		m.label = m.label.Next()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		if n := len(m.notices); n > 0 {
			m.bus.Dismiss(m.notices[n-1].ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startUpload() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		m.bus.Warnf("Choose an image to upload first")
		return m, nil
	}

	ctx, uploader, bus, logger := m.ctx, m.uploader, m.bus, m.logger
	l := m.label
	upload := func() tea.Msg {
		img, err := orchestrate.LoadImage(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("cannot read image")
			bus.Errorf("Cannot read %s", filepath.Base(path))
			return uploadDoneMsg{}
		}
		return uploadDoneMsg{dispatched: uploader.Upload(ctx, img, l)}
	}

	m.pending++
	m, tick := m.startSpinner()
	return m, tea.Batch(upload, tick)
}

func (m Model) startFetch() (tea.Model, tea.Cmd) {
	ctx, retriever := m.ctx, m.retriever
	l := m.label
	fetch := func() tea.Msg {
		return fetchDoneMsg{dispatched: retriever.FetchRandom(ctx, l)}
	}

	m.pending++
	m, tick := m.startSpinner()
	return m, tea.Batch(fetch, tick)
}

func (m Model) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	if !msg.dispatched {
		return m, nil
	}

	url := m.retriever.LastResult()
	m.previewURL = url
	m.previewInfo = nil
	m.previewLoading = false
	if url == "" || m.loader == nil {
		return m, nil
	}

	m.previewLoading = true
	return m, m.loadPreview(url)
}

func (m Model) loadPreview(url string) tea.Cmd {
	ctx, loader, retriever := m.ctx, m.loader, m.retriever
	return func() tea.Msg {
		info, err := loader.Load(ctx, url)
		if err != nil {
			retriever.ReportRenderFailure(err)
		}
		return previewLoadedMsg{url: url, info: info, err: err}
	}
}

func (m Model) startSpinner() (Model, tea.Cmd) {
	if m.spinning {
		return m, nil
	}
	m.spinning = true
	return m, m.spinner.Tick
}

// busy reports whether any dispatch is outstanding from this model or
// either orchestrator is in flight.
func (m Model) busy() bool {
	return m.pending > 0 || m.uploader.Busy() || m.retriever.Busy()
}
