package commands

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCmd_JSON(t *testing.T) {
	s := newService(t)
	e := newEnv(t, s)

	require.NoError(t, e.run(t, NewRandomCmd(e.flags, e.app).Register, "random", "--label", "dog", "--json"))

	var out RandomResult
	require.NoError(t, json.Unmarshal(e.stdout.Bytes(), &out))
	assert.EqualValues(t, "dog", out.Label)
	assert.Equal(t, s.srv.URL+"/img/pet.png", out.URL)
	assert.Equal(t, "png", out.Format)
	assert.Equal(t, 1, out.Width)
	assert.Equal(t, 1, out.Height)
	assert.Empty(t, out.Error)
	assert.Empty(t, e.printed.String(), "json mode prints no notices")
}

func TestRandomCmd_Text(t *testing.T) {
	s := newService(t)
	e := newEnv(t, s)

	require.NoError(t, e.run(t, NewRandomCmd(e.flags, e.app).Register, "random"))

	printed := e.printed.String()
	assert.Contains(t, printed, "Found a random cat!")
	assert.Contains(t, printed, "/img/pet.png")
	assert.Contains(t, printed, "png 1x1")
}

func TestRandomCmd_Save(t *testing.T) {
	s := newService(t)
	e := newEnv(t, s)

	dest := filepath.Join(t.TempDir(), "out", "pet.png")
	require.NoError(t, e.run(t, NewRandomCmd(e.flags, e.app).Register, "random", "--save", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Contains(t, e.printed.String(), "Saved to "+dest)
}

func TestRandomCmd_RenderFailure(t *testing.T) {
	s := newService(t)
	s.imageStatus = http.StatusForbidden
	e := newEnv(t, s)

	err := e.run(t, NewRandomCmd(e.flags, e.app).Register, "random", "--json")
	require.Error(t, err)

	var out RandomResult
	require.NoError(t, json.Unmarshal(e.stdout.Bytes(), &out))
	assert.Equal(t, s.srv.URL+"/img/pet.png", out.URL)
	assert.Equal(t, "Failed to load image", out.Error)
	assert.Empty(t, out.Format)

	// The fetch itself succeeded; the render failure does not clear it.
	assert.Equal(t, out.URL, e.app.Retriever.LastResult())
}

func TestRandomCmd_ServiceDown(t *testing.T) {
	s := newService(t)
	e := newEnv(t, s)
	s.srv.Close()

	err := e.run(t, NewRandomCmd(e.flags, e.app).Register, "random", "--json")
	require.Error(t, err)

	var out RandomResult
	require.NoError(t, json.Unmarshal(e.stdout.Bytes(), &out))
	assert.Empty(t, out.URL)
	assert.Equal(t, "Failed to fetch image", out.Error)
}
