// Package petapi is a client for the remote image service: upload an image
// under a label and fetch a random image reference for a label.
package petapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/petpix/internal/core/label"
)

// maxErrorBody bounds how much of a failed response is kept as detail text.
const maxErrorBody = 64 << 10

// Client talks to the image service rooted at a base URL.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The default applies no
// request timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the service at base, which must be an absolute
// http or https URL. Any path on base is kept as a prefix.
func New(base string, opts ...Option) (*Client, error) {
	u, err := ParseBase(base)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:      u,
		http:      &http.Client{},
		userAgent: "petpix",
		logger:    log.With().Str("cmp", "petapi").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ParseBase validates a service base URL.
func ParseBase(base string) (*url.URL, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("api base is required")
	}

	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("parse api base: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api base %q has no host", base)
	}
	return u, nil
}

// Base returns the service base URL.
func (c *Client) Base() string {
	return c.base.String()
}

// Upload sends body to the service under l. contentType is sent as the
// request Content-Type and must describe body.
func (c *Client) Upload(ctx context.Context, l label.Label, contentType string, body io.Reader) error {
	const op = "upload"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload", l), body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	defer c.closeBody(op, resp)

	if !ok(resp.StatusCode) {
		return c.apiError(op, resp)
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type randomResponse struct {
	URL string `json:"url"`
}

// Random returns a reference to a random image stored under l.
func (c *Client) Random(ctx context.Context, l label.Label) (string, error) {
	const op = "random"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("random", l), nil)
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(op, req)
	if err != nil {
		return "", err
	}
	defer c.closeBody(op, resp)

	if !ok(resp.StatusCode) {
		return "", c.apiError(op, resp)
	}

	var out randomResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s: decode body: %w: %w", op, ErrMalformedResponse, err)
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", fmt.Errorf("%s: %w: missing url", op, ErrMalformedResponse)
	}

	return out.URL, nil
}

func (c *Client) endpoint(name string, l label.Label) string {
	u := c.base.JoinPath(name)
	u.RawQuery = url.Values{"label": []string{l.String()}}.Encode()
	return u.String()
}

func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().Str("op", op).Str("method", req.Method).Str("url", req.URL.String()).Msg("sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	c.logger.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("response received")
	return resp, nil
}

func (c *Client) apiError(op string, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("read error body")
	}
	return &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Detail:     detailText(body),
	}
}

// detailText returns the error body as text. The service encodes plain
// messages as JSON strings, so a quoted body is unquoted.
func detailText(body []byte) string {
	text := strings.TrimSpace(string(body))

	var s string
	if strings.HasPrefix(text, `"`) && json.Unmarshal([]byte(text), &s) == nil {
		return strings.TrimSpace(s)
	}
	return text
}

func (c *Client) closeBody(op string, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("close response body")
	}
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
