package petpix

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/petpix/internal/core/config"
	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/notice"
)

func TestNew_WiresComponents(t *testing.T) {
	gotUA := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA <- r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"url":"https://cdn.example.com/cat.jpg"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{APIBase: srv.URL + "/prod", DefaultLabel: "cat", UserAgent: "petpix-test"}
	app, err := New(cfg, WithHTTPClient(srv.Client()), WithBusOptions(notice.WithTTL(time.Minute)))
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/prod", app.API.Base())
	assert.Same(t, cfg, app.Config)

	require.True(t, app.Retriever.FetchRandom(context.Background(), label.Cat))
	assert.Equal(t, "https://cdn.example.com/cat.jpg", app.Retriever.LastResult())
	assert.Equal(t, "petpix-test", <-gotUA)

	live := app.Bus.Live()
	require.Len(t, live, 1)
	assert.Equal(t, notice.KindSuccess, live[0].Kind)
}

func TestNew_InvalidBase(t *testing.T) {
	_, err := New(&config.Config{APIBase: "not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create api client")
}

func TestApp_Snapshot(t *testing.T) {
	cfg := &config.Config{APIBase: "https://api.example.com/prod", DefaultLabel: "cat"}
	app, err := New(cfg)
	require.NoError(t, err)

	app.Bus.Warnf("heads up")

	snap := app.Snapshot()
	assert.Equal(t, "https://api.example.com/prod", snap.APIBase)
	assert.False(t, snap.Upload.Busy)
	assert.False(t, snap.Retrieve.Busy)
	assert.Empty(t, snap.Retrieve.LastResult)
	require.Len(t, snap.Notices, 1)
	assert.Equal(t, "heads up", snap.Notices[0].Text)
}
