package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/feedsync"
	"github.com/Cardjinho/Instagram-v0/tui/common"
)

// View renders the feed, or the open overlay.
func (m Model) View() string {
	if m.showAllHints {
		return m.renderHeader() + "\n" + m.renderKeyDialog()
	}
	if m.showProfile {
		return m.renderProfileView()
	}
	if m.showComments {
		return m.renderCommentsView()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n")
	if !m.hideStories && len(m.stories) > 0 {
		b.WriteString(m.renderStoriesBar() + "\n")
	}

	switch {
	case m.loading && !m.hasLoaded && m.err == nil:
		b.WriteString(fmt.Sprintf("  %s Loading feed...\n", m.spinner.View()))
	case m.err != nil && len(m.view.Items) == 0:
		b.WriteString(common.ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n  Press r to retry.\n")
	case len(m.view.Items) == 0:
		b.WriteString("  No posts yet. Press n to share the first one.\n")
	default:
		b.WriteString(m.renderFeedList())
	}

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n" + m.helpView())
	return b.String()
}

func (m Model) renderHeader() string {
	title := common.AppTitleStyle.Padding(1, 0, 0, 1).Render(domain.DisplayAppTitle())
	sub := "feed"
	if m.ownUsername != "" {
		sub = "@" + m.ownUsername
	}
	return title + common.TaglineStyle.Render(sub)
}

func (m Model) renderStoriesBar() string {
	rings := make([]string, 0, len(m.stories))
	width := 0
	limit := max(m.width-4, 40)
	for _, g := range m.stories {
		label := "@" + g.Author.Username
		if g.Author.Username == "" {
			label = "@" + g.UserID
		}
		if len(g.Stories) > 1 {
			label += fmt.Sprintf(" ·%d", len(g.Stories))
		}
		ring := common.StoryRingStyle.Render(label)
		w := lipgloss.Width(ring) + 1
		if width+w > limit {
			rings = append(rings, common.TimestampStyle.Render(fmt.Sprintf("+%d", len(m.stories)-len(rings))))
			break
		}
		width += w
		rings = append(rings, ring)
	}
	return " " + strings.Join(rings, " ")
}

func (m Model) renderFeedList() string {
	now := time.Now()
	if m.sync != nil && !m.view.LoadedAt.IsZero() {
		now = m.view.LoadedAt
	}
	end := min(m.startIndex+m.visibleCount(), len(m.view.Items))
	cardWidth := min(max(m.width-4, 40), 96)

	var b strings.Builder
	for i := m.startIndex; i < end; i++ {
		card := m.renderCard(m.view.Items[i], i == m.cursor, cardWidth, now)
		if i == m.cursor {
			card = common.SelectedStyle.Width(cardWidth).Render(card)
		} else {
			card = common.UnselectedStyle.Width(cardWidth).Render(card)
		}
		b.WriteString(card + "\n")
	}
	if end < len(m.view.Items) {
		b.WriteString(common.TimestampStyle.Render(fmt.Sprintf("  ↓ %d more", len(m.view.Items)-end)) + "\n")
	}
	return b.String()
}

func (m Model) isOwn(p domain.Post) bool {
	return m.sync != nil && p.UserID == m.sync.Viewer().ID
}

func (m Model) renderCard(it feedsync.FeedItem, selected bool, width int, now time.Time) string {
	p := it.Post
	head := renderAuthor(p.Author.Username, m.isOwn(p)) + "  " +
		common.TimestampStyle.Render(common.RelativeTime(p.CreatedAt, now))

	var parts []string
	parts = append(parts, head)
	if selected && m.showMediaPreview {
		parts = append(parts, m.renderPreview(p.ImageURL))
	}
	caption, tags := splitCaptionAndTags(p.CaptionText())
	if caption != "" {
		parts = append(parts, common.ContentStyle.Render(truncateToTwoLines(caption, width-4)))
	}
	if len(tags) > 0 {
		parts = append(parts, renderCompactTags(tags, 4))
	}
	parts = append(parts, renderCounters(it))
	return clampLinesToWidth(strings.Join(parts, "\n"), width)
}

func renderCounters(it feedsync.FeedItem) string {
	heart := common.CounterStyle.Render("♡")
	if it.Post.LikedByViewer {
		heart = common.LikedStyle.Render("♥")
	}
	out := heart + " " + common.CounterStyle.Render(common.Plural(it.Post.LikesCount, "like")) +
		"   " + common.CounterStyle.Render("💬 "+common.Plural(it.Post.CommentsCount, "comment"))
	if it.Pending {
		out += common.PendingStyle.Render("  saving...")
	}
	return out
}

func (m Model) renderStatusLine() string {
	switch {
	case m.err != nil && len(m.view.Items) > 0:
		return "\n" + common.ErrorStyle.Render("  "+errorText(m.err))
	case m.refreshing:
		return "\n  " + m.spinner.View() + " Refreshing..."
	case m.notice != "":
		return "\n" + common.SuccessStyle.Render("  "+m.notice)
	}
	return ""
}

// errorText phrases failures for the status bar.
func errorText(err error) string {
	if me, ok := asMutation(err); ok {
		if me.Reverted {
			return fmt.Sprintf("Couldn't save %s, change undone: %v", me.Op, me.Err)
		}
		return fmt.Sprintf("Couldn't save %s: %v", me.Op, me.Err)
	}
	return "Error: " + err.Error()
}
