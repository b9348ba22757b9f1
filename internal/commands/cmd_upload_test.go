package commands

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCmd_Glob(t *testing.T) {
	s := newService(t)
	e := newEnv(t, s)

	dir := t.TempDir()
	writeImage(t, dir, "a/one.png")
	writeImage(t, dir, "b/two.png")

	err := e.run(t, NewUploadCmd(e.flags, e.app).Register, "upload", "--label", "dog", filepath.Join(dir, "**", "*.png"))
	require.NoError(t, err)

	assert.Equal(t, []string{"dog", "dog"}, s.uploadLabels())
	assert.Contains(t, e.printed.String(), "Uploaded!")
}

func TestUploadCmd_DefaultLabelWithoutTerminal(t *testing.T) {
	s := newService(t)
	e := newEnv(t, s)

	path := writeImage(t, t.TempDir(), "pet.png")

	require.NoError(t, e.run(t, NewUploadCmd(e.flags, e.app).Register, "upload", path))
	assert.Equal(t, []string{"cat"}, s.uploadLabels())
}

func TestUploadCmd_RejectedUpload(t *testing.T) {
	s := newService(t)
	s.uploadStatus = http.StatusBadRequest
	s.uploadBody = `"Invalid label. Must be 'cat' or 'dog'"`
	e := newEnv(t, s)

	path := writeImage(t, t.TempDir(), "pet.png")

	err := e.run(t, NewUploadCmd(e.flags, e.app).Register, "upload", "-y", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 uploads failed")
	assert.Contains(t, e.printed.String(), "Invalid label. Must be 'cat' or 'dog'")
}

func TestUploadCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no args", args: []string{"upload"}, want: "at least one file"},
		{name: "no match", args: []string{"upload", "/nonexistent/**/*.png"}, want: "no images match"},
		{name: "bad label", args: []string{"upload", "--label", "hamster", "x.png"}, want: "--label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t)
			e := newEnv(t, s)

			err := e.run(t, NewUploadCmd(e.flags, e.app).Register, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, s.uploadLabels())
		})
	}
}

func TestUploadCmd_NotConfigured(t *testing.T) {
	s := newService(t)
	e := newEnv(t, s)
	e.flags.ConfigErr = assert.AnError

	err := e.run(t, NewUploadCmd(e.flags, e.app).Register, "upload", "x.png")
	require.ErrorIs(t, err, assert.AnError)
}
