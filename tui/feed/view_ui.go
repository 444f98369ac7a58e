package feed

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cardjinho/Instagram-v0/tui/common"
)

func (m Model) helpView() string {
	var items []string

	switch {
	case m.inputActive:
		items = []string{
			"enter: send",
			"esc: cancel",
		}
	case m.showProfile:
		items = []string{
			"j/k: focus",
			"f: follow",
			"o: open image",
			"r: refresh",
			"esc/q: back",
			"?: all keys",
		}
	case m.showComments:
		items = []string{
			"i: write",
			"l: like",
			"p: profile",
			"r: refresh",
			"esc/q: back",
			"?: all keys",
		}
	case len(m.view.Items) > 0:
		items = []string{
			"j/k: focus",
			"l: like",
			"c: comments",
			"n/N: post",
			"p/P: profile",
			"q: quit",
			"?: all keys",
		}
	default:
		items = []string{
			"n/N: post",
			"r: refresh",
			"q: quit",
			"?: all keys",
		}
	}

	wrapWidth := max(m.width-2, 16)
	return common.StatusBarStyle.
		Width(wrapWidth).
		Render("  " + strings.Join(items, " • "))
}

func (m Model) renderKeyDialog() string {
	var (
		core        []string
		includeMove bool
	)
	switch {
	case m.showProfile:
		includeMove = true
		core = []string{
			"f               follow/unfollow profile owner",
			"o               open selected post image",
			"r               refresh profile",
			"esc / q         back",
		}
	case m.showComments:
		core = []string{
			"i               write a comment",
			"enter           send comment (while writing)",
			"l               like/unlike post",
			"p               open author profile",
			"o               open post image",
			"r               refresh comments",
			"esc / q         back",
		}
	default:
		includeMove = len(m.view.Items) > 0
		core = []string{
			"enter / c       open comments",
			"i               comment on selected post",
			"l               like/unlike selected post",
			"p               open author profile",
			"P               open own profile",
			"n / N           new post inline / via editor",
			"m               toggle image previews",
			"s               toggle stories bar",
			"o               open selected image",
			"g               jump to top",
			"r               refresh feed",
			"q               quit",
		}
	}
	lines := buildKeyDialogLines(core, includeMove)

	body := "Keyboard Shortcuts\n\n" + strings.Join(lines, "\n") + "\n\nPress ? or esc to close."
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(common.Accent).
		Padding(1, 2).
		Margin(1, 2).
		Render(body)
}

func buildKeyDialogLines(core []string, includeMove bool) []string {
	out := make([]string, 0, len(core)+3)
	if includeMove {
		out = append(out, "j/k or up/down  move focus")
	}
	out = append(out, core...)
	out = append(out, "ctrl+c          force quit", "?               toggle this dialog")
	return out
}
