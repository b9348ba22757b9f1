// Package label defines the fixed set of classification tags images are
// uploaded and retrieved under.
package label

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned by Parse for values outside the label set.
var ErrUnknown = errors.New("unknown label")

// Label is a classification tag for an image.
type Label string

const (
	Cat Label = "cat"
	Dog Label = "dog"
)

var all = []Label{Cat, Dog}

// All returns every label in display order.
func All() []Label {
	out := make([]Label, len(all))
	copy(out, all)
	return out
}

// Parse converts user input into a Label. Matching ignores case and
// surrounding whitespace.
func Parse(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w %q: must be one of %s", ErrUnknown, s, joined())
	}
	return l, nil
}

// Valid reports whether l is a member of the label set.
func (l Label) Valid() bool {
	for _, v := range all {
		if l == v {
			return true
		}
	}
	return false
}

func (l Label) String() string {
	return string(l)
}

// Next returns the label after l, wrapping around. Unknown labels map to
// the first label.
func (l Label) Next() Label {
	for i, v := range all {
		if v == l {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func joined() string {
	parts := make([]string, len(all))
	for i, v := range all {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
