package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/logging"
	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/petapi"
)

const (
	msgNoResult     = "No image URL received from API"
	msgFetchFailed  = "Failed to fetch image"
	msgRenderFailed = "Failed to load image"
)

// RandomAPI is the remote call a Retriever drives.
type RandomAPI interface {
	Random(ctx context.Context, l label.Label) (string, error)
}

// Retriever fetches a random image reference by label, one request at a
// time, and holds the most recent result.
type Retriever struct {
	api    RandomAPI
	bus    *notice.Bus
	busy   atomic.Bool
	logger zerolog.Logger

	mu   sync.RWMutex
	last string
}

// NewRetriever creates a Retriever reporting through bus.
func NewRetriever(api RandomAPI, bus *notice.Bus) *Retriever {
	return &Retriever{
		api:    api,
		bus:    bus,
		logger: logging.Component("retriever"),
	}
}

// FetchRandom requests a random image for l and blocks until the call
// settles. The previous result is cleared as soon as the call is dispatched
// and replaced only on success. It returns false without contacting the
// service if a retrieval is already in flight or the label is invalid.
func (r *Retriever) FetchRandom(ctx context.Context, l label.Label) bool {
	ctx = logging.Operation(ctx, "random", l.String())

	if !l.Valid() {
		r.logger.Warn().Ctx(ctx).Msg("retrieval rejected: invalid label")
		r.bus.Errorf("label must be one of %v", label.All())
		return false
	}

	if !r.busy.CompareAndSwap(false, true) {
		r.logger.Debug().Ctx(ctx).Msg("retrieval rejected: already in flight")
		return false
	}

	r.setLast("")

	kind, text := r.settle(ctx, l)
	r.bus.Publish(kind, text)
	return true
}

func (r *Retriever) settle(ctx context.Context, l label.Label) (notice.Kind, string) {
	defer r.busy.Store(false)

	r.logger.Info().Ctx(ctx).Msg("fetching random image")

	url, err := r.api.Random(ctx, l)
	if err == nil {
		r.setLast(url)
		r.logger.Info().Ctx(ctx).Str("url", url).Msg("random image received")
		return notice.KindSuccess, fmt.Sprintf("Found a random %s!", l)
	}

	r.logger.Error().Ctx(ctx).Err(err).Msg("random image failed")

	if errors.Is(err, petapi.ErrMalformedResponse) {
		return notice.KindError, msgNoResult
	}

	if apiErr, ok := petapi.AsAPIError(err); ok {
		if apiErr.Detail == "" {
			return notice.KindError, fmt.Sprintf("API Error: %d", apiErr.StatusCode)
		}
		return notice.KindError, fmt.Sprintf("API Error: %d - %s", apiErr.StatusCode, apiErr.Detail)
	}

	return notice.KindError, msgFetchFailed
}

// ReportRenderFailure lets a presentation layer report that the last result
// could not be loaded or displayed. It publishes an error notice and leaves
// the result in place.
func (r *Retriever) ReportRenderFailure(err error) {
	r.logger.Error().Err(err).Str("url", r.LastResult()).Msg("render failed")
	r.bus.Publish(notice.KindError, msgRenderFailed)
}

// Busy reports whether a retrieval is in flight.
func (r *Retriever) Busy() bool {
	return r.busy.Load()
}

// LastResult returns the most recent image reference, or "" if the last
// attempt has not succeeded.
func (r *Retriever) LastResult() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// State returns the Retriever's current state.
func (r *Retriever) State() State {
	return State{Busy: r.Busy(), LastResult: r.LastResult()}
}

func (r *Retriever) setLast(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = url
}
