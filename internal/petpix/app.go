// Package petpix wires the core components into a single App consumed by
// commands and the TUI.
package petpix

import (
	"fmt"
	"net/http"

	"github.com/colonyops/petpix/internal/core/config"
	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/orchestrate"
	"github.com/colonyops/petpix/internal/petapi"
	"github.com/colonyops/petpix/internal/preview"
)

// App is the central entry point for all petpix operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config    *config.Config
	Bus       *notice.Bus
	API       *petapi.Client
	Uploader  *orchestrate.Uploader
	Retriever *orchestrate.Retriever
	Loader    *preview.Loader
}

// Snapshot is a point-in-time view of the App's observable state.
type Snapshot struct {
	APIBase  string            `json:"api_base"`
	Upload   orchestrate.State `json:"upload"`
	Retrieve orchestrate.State `json:"retrieve"`
	Notices  []notice.Notice   `json:"notices"`
}

// Snapshot returns the current state of both orchestrators and the live
// notices.
func (a *App) Snapshot() Snapshot {
	return Snapshot{
		APIBase:  a.API.Base(),
		Upload:   a.Uploader.State(),
		Retrieve: a.Retriever.State(),
		Notices:  a.Bus.Live(),
	}
}

// Option customizes App construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
	busOpts    []notice.Option
}

// WithHTTPClient sets the client used for the service and preview downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithBusOptions passes options through to the notice bus.
func WithBusOptions(opts ...notice.Option) Option {
	return func(o *options) { o.busOpts = append(o.busOpts, opts...) }
}

// New constructs an App from a loaded configuration.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}

	api, err := petapi.New(cfg.APIBase,
		petapi.WithHTTPClient(o.httpClient),
		petapi.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	bus := notice.NewBus(o.busOpts...)

	return &App{
		Config:    cfg,
		Bus:       bus,
		API:       api,
		Uploader:  orchestrate.NewUploader(api, bus),
		Retriever: orchestrate.NewRetriever(api, bus),
		Loader:    preview.NewLoader(o.httpClient),
	}, nil
}
