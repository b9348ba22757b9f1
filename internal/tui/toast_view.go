package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/core/styles"
)

const (
	toastWidth     = 40
	maxToastsShown = 4
)

// renderToasts renders the newest notices stacked vertically (oldest at top,
// newest at bottom), right aligned within width.
func renderToasts(notices []notice.Notice, width int) string {
	if len(notices) == 0 {
		return ""
	}

	if len(notices) > maxToastsShown {
		notices = notices[len(notices)-maxToastsShown:]
	}

	rendered := make([]string, 0, len(notices))
	for _, n := range notices {
		rendered = append(rendered, renderToast(n))
	}

	stack := strings.Join(rendered, "\n")
	if width <= 0 {
		return stack
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}

func renderToast(n notice.Notice) string {
	content := styles.NoticeIcon(n.Kind) + " " + n.Text
	return styles.ToastStyle(n.Kind).Width(toastWidth).Render(content)
}
