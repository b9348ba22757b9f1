package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/styles"
)

const previewWidth = 56

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{
		styles.TitleStyle.Render("petpix"),
		m.renderLabels(),
		m.input.View(),
		m.renderStatus(),
		m.renderPreview(),
	}

	if toasts := renderToasts(m.notices, m.width); toasts != "" {
		sections = append(sections, toasts)
	}

	sections = append(sections, styles.HelpStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderLabels() string {
	labels := label.All()
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == m.label {
			parts = append(parts, styles.LabelSelectedStyle.Render(l.String()))
			continue
		}
		parts = append(parts, styles.LabelNormalStyle.Render(l.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderStatus() string {
	var parts []string
	if m.uploader.Busy() {
		parts = append(parts, "uploading")
	}
	if m.retriever.Busy() {
		parts = append(parts, "fetching")
	}
	if len(parts) == 0 && m.pending == 0 {
		return styles.MutedStyle.Render("idle")
	}
	if len(parts) == 0 {
		parts = append(parts, "working")
	}
	return m.spinner.View() + " " + strings.Join(parts, ", ") + "..."
}

func (m Model) renderPreview() string {
	var body string
	switch {
	case m.previewURL == "":
		body = styles.MutedStyle.Render("Nothing fetched yet. Press ctrl+r for a random " + m.label.String() + ".")
	case m.previewLoading:
		body = styles.LinkStyle.Render(m.previewURL) + "\n" + styles.MutedStyle.Render("loading preview...")
	case m.previewInfo != nil:
		body = styles.LinkStyle.Render(m.previewURL) + "\n" + styles.IconImage + " " + m.previewInfo.String()
	default:
		body = styles.LinkStyle.Render(m.previewURL)
	}

	title := styles.PanelTitleStyle.Render("Last result")
	return styles.PanelStyle.Width(previewWidth).Render(title + "\n" + body)
}
