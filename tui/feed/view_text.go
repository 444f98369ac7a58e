package feed

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func truncateToTwoLines(text string, width int) string {
	if width < 12 {
		width = 12
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	if len(lines) <= 2 {
		return wrapped
	}
	return strings.Join(lines[:2], "\n") + "..."
}

var hashtagRe = regexp.MustCompile(`(?i)#[a-z0-9_]+`)

// splitCaptionAndTags removes hashtags from a caption and returns them
// separately, lowercased and deduplicated.
func splitCaptionAndTags(caption string) (string, []string) {
	found := hashtagRe.FindAllString(caption, -1)
	tags := uniqueLower(found)
	lines := strings.Split(caption, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, ln := range lines {
		line := hashtagRe.ReplaceAllString(ln, "")
		line = strings.Join(strings.Fields(line), " ")
		cleaned = append(cleaned, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n")), tags
}

func uniqueLower(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		low := strings.ToLower(strings.TrimSpace(t))
		if low == "" {
			continue
		}
		if _, ok := seen[low]; ok {
			continue
		}
		seen[low] = struct{}{}
		out = append(out, low)
	}
	return out
}

func renderCompactTags(tags []string, limit int) string {
	if len(tags) == 0 {
		return ""
	}
	limit = max(limit, 1)
	show := tags
	if len(show) > limit {
		show = show[:limit]
	}
	capStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#A9A9A9")).
		Background(lipgloss.Color("#2F2F2F")).
		Padding(0, 1).
		Faint(true)
	parts := make([]string, 0, len(show)+1)
	for _, t := range show {
		parts = append(parts, capStyle.Render(t))
	}
	if len(tags) > limit {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")).Faint(true).Render(fmt.Sprintf("+%d more", len(tags)-limit)))
	}
	return strings.Join(parts, " ")
}

func authorStyleFor(username string, isOwn bool) lipgloss.Style {
	if isOwn {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6DA95"))
	}
	palette := []string{
		"#7DC4E4", "#8BD5CA", "#F5A97F", "#C6A0F6", "#EBA0AC",
		"#A6DA95", "#F9E2AF", "#89B4FA", "#F38BA8", "#94E2D5",
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(username))))
	idx := int(h.Sum32() % uint32(len(palette)))
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(palette[idx]))
}

func renderAuthor(username string, isOwn bool) string {
	name := strings.TrimSpace(username)
	if name == "" {
		name = "unknown"
	}
	out := authorStyleFor(name, isOwn).Render("@" + name)
	if isOwn {
		out += lipgloss.NewStyle().Foreground(lipgloss.Color("#8BD5CA")).Faint(true).Render(" (you)")
	}
	return out
}

func clipLines(text string, maxLines int) string {
	if maxLines < 1 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[:maxLines], "\n")
}

func clampLinesToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if ansi.StringWidth(ln) <= width {
			continue
		}
		lines[i] = ansi.Cut(ln, 0, width)
	}
	return strings.Join(lines, "\n")
}
