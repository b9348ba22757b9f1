package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/styles"
)

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// flagLabel parses the value of a --label flag, falling back to def when
// the flag is empty.
func flagLabel(value string, def label.Label) (label.Label, error) {
	if value == "" {
		return def, nil
	}
	l, err := label.Parse(value)
	if err != nil {
		return "", fmt.Errorf("--label: %w", err)
	}
	return l, nil
}

// promptLabel asks for a label, preselecting def.
func promptLabel(def label.Label) (label.Label, error) {
	selected := def

	opts := make([]huh.Option[label.Label], 0, len(label.All()))
	for _, l := range label.All() {
		opts = append(opts, huh.NewOption(l.String(), l))
	}

	err := huh.NewSelect[label.Label]().
		Title("Label").
		Description("What is in the picture?").
		Options(opts...).
		Value(&selected).
		WithTheme(styles.FormTheme()).
		Run()
	if err != nil {
		return "", err
	}
	return selected, nil
}
