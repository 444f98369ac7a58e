package feed

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// wrapAndTruncate word-wraps text to width, cutting it to maxLines with an
// ellipsis.
func wrapAndTruncate(text string, width int, maxLines int) []string {
	width = max(width, 8)
	maxLines = max(maxLines, 1)
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, maxLines)
	line := ""
	for _, word := range words {
		w := []rune(word)
		for len(w) > width && len(lines) < maxLines {
			if line != "" {
				lines = append(lines, line)
				line = ""
				continue
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		if len(lines) == maxLines {
			break
		}
		switch {
		case line == "":
			line = string(w)
		case len([]rune(line))+1+len(w) <= width:
			line += " " + string(w)
		default:
			lines = append(lines, line)
			line = string(w)
		}
		if len(lines) == maxLines {
			line = ""
			break
		}
	}
	if len(lines) < maxLines && line != "" {
		lines = append(lines, line)
	}
	full := strings.Join(words, " ")
	visible := strings.Join(lines, " ")
	if len([]rune(visible)) < len([]rune(full)) && len(lines) > 0 {
		last := []rune(lines[len(lines)-1])
		if len(last) > width-3 {
			last = last[:max(width-3, 0)]
		}
		lines[len(lines)-1] = strings.TrimSpace(string(last) + "...")
	}
	return lines
}

// renderPreview returns the focused post's image preview tile.
func (m Model) renderPreview(imageURL string) string {
	if !m.showMediaPreview {
		return ""
	}
	k := mediaPreviewKey(strings.TrimSpace(imageURL))
	content := "queued"
	if m.mediaLoading[k] {
		content = m.spinner.View() + " loading image..."
	} else if preview, ok := m.mediaPreview[k]; ok {
		if preview == "" {
			content = "preview unavailable"
		} else {
			content = preview
		}
	}
	return lipgloss.NewStyle().
		Width(previewWidth).
		Height(previewHeight).
		AlignHorizontal(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
