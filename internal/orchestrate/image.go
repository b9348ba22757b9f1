package orchestrate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrUnsupportedType is returned for files that are not JPEG, PNG or WebP.
var ErrUnsupportedType = errors.New("unsupported image type")

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Image is an upload payload with its declared content type.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Reader returns a new reader over the image bytes.
func (i Image) Reader() io.Reader {
	return bytes.NewReader(i.Data)
}

// Size returns the payload size in bytes.
func (i Image) Size() int {
	return len(i.Data)
}

// LoadImage reads an image file from disk.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	return NewImage(filepath.Base(path), data)
}

// NewImage builds an Image, taking the content type from the file extension
// and falling back to sniffing the data.
func NewImage(name string, data []byte) (Image, error) {
	ct, err := ContentType(name, data)
	if err != nil {
		return Image{}, err
	}
	return Image{Name: name, ContentType: ct, Data: data}, nil
}

// ContentType resolves the content type for an image name and its bytes.
func ContentType(name string, data []byte) (string, error) {
	if ct, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct, nil
	}

	sniffed := http.DetectContentType(data)
	for _, ct := range extensionTypes {
		if sniffed == ct {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, name, sniffed)
}

// Accepted reports whether path has an accepted image extension.
func Accepted(path string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExpandImagePaths resolves file arguments into image paths. Patterns may use
// doublestar globs (photos/**/*.jpg); glob matches without an accepted
// extension are skipped. Plain paths are kept as given. Duplicates are
// dropped and a pattern that matches nothing is an error.
func ExpandImagePaths(patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			if !slices.Contains(out, pattern) {
				out = append(out, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}

		found := false
		for _, m := range matches {
			if !Accepted(m) {
				continue
			}
			found = true
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
		if !found {
			return nil, fmt.Errorf("no images match %q", pattern)
		}
	}
	return out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
