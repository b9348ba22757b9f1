package orchestrate

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/logging"
	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/petapi"
)

const (
	msgUploaded     = "🎉 Uploaded!"
	msgUploadFailed = "Upload failed"
)

// UploadAPI is the remote call an Uploader drives.
type UploadAPI interface {
	Upload(ctx context.Context, l label.Label, contentType string, body io.Reader) error
}

// Uploader sends images to the remote service one at a time.
type Uploader struct {
	api    UploadAPI
	bus    *notice.Bus
	busy   atomic.Bool
	logger zerolog.Logger
}

// NewUploader creates an Uploader reporting through bus.
func NewUploader(api UploadAPI, bus *notice.Bus) *Uploader {
	return &Uploader{
		api:    api,
		bus:    bus,
		logger: logging.Component("uploader"),
	}
}

// Upload sends img under l and blocks until the call settles. It returns
// false without contacting the service if an upload is already in flight or
// the label is invalid. The outcome is published to the bus, never returned.
func (u *Uploader) Upload(ctx context.Context, img Image, l label.Label) bool {
	ctx = logging.Operation(ctx, "upload", l.String())

	if !l.Valid() {
		u.logger.Warn().Ctx(ctx).Msg("upload rejected: invalid label")
		u.bus.Errorf("label must be one of %v", label.All())
		return false
	}

	if !u.busy.CompareAndSwap(false, true) {
		u.logger.Debug().Ctx(ctx).Str("file", img.Name).Msg("upload rejected: already in flight")
		return false
	}

	kind, text := u.settle(ctx, img, l)
	u.bus.Publish(kind, text)
	return true
}

// settle performs the call and resolves its notice. busy is cleared before
// it returns so subscribers of the resulting notice observe an idle Uploader.
func (u *Uploader) settle(ctx context.Context, img Image, l label.Label) (notice.Kind, string) {
	defer u.busy.Store(false)

	u.logger.Info().Ctx(ctx).
		Str("file", img.Name).
		Str("content_type", img.ContentType).
		Int("bytes", img.Size()).
		Msg("uploading")

	err := u.api.Upload(ctx, l, img.ContentType, img.Reader())
	if err == nil {
		u.logger.Info().Ctx(ctx).Str("file", img.Name).Msg("upload complete")
		return notice.KindSuccess, msgUploaded
	}

	u.logger.Error().Ctx(ctx).Err(err).Str("file", img.Name).Msg("upload failed")

	if apiErr, ok := petapi.AsAPIError(err); ok {
		if apiErr.Detail != "" {
			return notice.KindError, apiErr.Detail
		}
		return notice.KindError, fmt.Sprintf("%s (HTTP %d)", msgUploadFailed, apiErr.StatusCode)
	}

	return notice.KindError, msgUploadFailed
}

// Busy reports whether an upload is in flight.
func (u *Uploader) Busy() bool {
	return u.busy.Load()
}

// State returns the Uploader's current state.
func (u *Uploader) State() State {
	return State{Busy: u.Busy()}
}
