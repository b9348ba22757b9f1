package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/petpix/internal/core/config"
	"github.com/colonyops/petpix/internal/petpix"
	"github.com/colonyops/petpix/internal/printer"
)

// 1x1 RGBA PNG header; enough for image.DecodeConfig.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// service is a fake image service. uploadStatus and uploadBody control the
// upload response unless respond is set, in which case it picks the status
// for the nth upload (1-based). random always points at /img/pet.png on itself.
type service struct {
	srv *httptest.Server

	mu           sync.Mutex
	uploadStatus int
	uploadBody   string
	imageStatus  int
	respond      func(n int) int
	uploads      []string // labels
}

func newService(t *testing.T) *service {
	t.Helper()
	s := &service{uploadStatus: http.StatusOK, imageStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		s.mu.Lock()
		s.uploads = append(s.uploads, r.URL.Query().Get("label"))
		n := len(s.uploads)
		status, body, respond := s.uploadStatus, s.uploadBody, s.respond
		s.mu.Unlock()

		if respond != nil {
			status = respond(n)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("GET /random", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"url":"`+s.srv.URL+`/img/pet.png"}`)
	})
	mux.HandleFunc("GET /img/pet.png", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.imageStatus
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write(pngHeader)
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *service) uploadLabels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

type env struct {
	flags   *Flags
	app     *petpix.App
	stdout  bytes.Buffer
	printed bytes.Buffer
}

func newEnv(t *testing.T, s *service, opts ...petpix.Option) *env {
	t.Helper()

	cfg := &config.Config{APIBase: s.srv.URL, DefaultLabel: "cat", UserAgent: "petpix"}
	opts = append([]petpix.Option{petpix.WithHTTPClient(s.srv.Client())}, opts...)
	app, err := petpix.New(cfg, opts...)
	require.NoError(t, err)

	return &env{
		flags: &Flags{Config: cfg},
		app:   app,
	}
}

// run registers the command built by register on a fresh root and runs it
// with args.
func (e *env) run(t *testing.T, register func(*cli.Command) *cli.Command, args ...string) error {
	t.Helper()

	root := register(&cli.Command{
		Name:      "petpix",
		Writer:    &e.stdout,
		ErrWriter: &e.stdout,
	})

	ctx := printer.NewContext(context.Background(), printer.New(&e.printed))
	return root.Run(ctx, append([]string{"petpix"}, args...))
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))
	return path
}
