// Package preview loads the image a retrieval points at, the way a viewer
// would, so a reference that cannot be rendered is detected and reported.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"

	// Registered decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes caps how much of a referenced image is downloaded.
const DefaultMaxBytes = 32 << 20

// Info describes a loaded image.
type Info struct {
	URL    string
	Format string
	Width  int
	Height int
	Size   int64
}

func (i Info) String() string {
	return fmt.Sprintf("%s %dx%d (%s)", i.Format, i.Width, i.Height, humanize.Bytes(uint64(i.Size)))
}

// Loader downloads and decodes image references.
type Loader struct {
	http     *http.Client
	maxBytes int64
}

// NewLoader creates a Loader. A nil client uses http.DefaultClient.
func NewLoader(hc *http.Client) *Loader {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Loader{http: hc, maxBytes: DefaultMaxBytes}
}

// Load fetches url and decodes its image header.
func (l *Loader) Load(ctx context.Context, url string) (Info, error) {
	_, info, err := l.fetch(ctx, url)
	return info, err
}

// Save fetches url, checks that it decodes as an image, and writes it to
// path, creating parent directories as needed.
func (l *Loader) Save(ctx context.Context, url, path string) (Info, error) {
	data, info, err := l.fetch(ctx, url)
	if err != nil {
		return Info{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Info{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Info{}, fmt.Errorf("write image: %w", err)
	}
	return info, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Info{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, Info{}, fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Info{}, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, Info{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, Info{}, fmt.Errorf("image exceeds %s", humanize.Bytes(uint64(l.maxBytes)))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode image: %w", err)
	}

	return data, Info{
		URL:    url,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   int64(len(data)),
	}, nil
}
