package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cardjinho/Instagram-v0/tui/common"
)

var crumbStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))

func (m Model) renderCrumb(label string) string {
	return m.renderHeader() + "\n" + crumbStyle.MarginLeft(2).Render("feed > "+label) + "\n\n"
}

func (m Model) renderCommentsView() string {
	var b strings.Builder
	b.WriteString(m.renderCrumb("comments"))

	item, ok := m.view.Find(m.commentsPostID)
	if ok {
		width := min(max(m.width-4, 40), 96)
		card := m.renderCard(item, true, width, time.Now())
		b.WriteString(common.SelectedStyle.Width(width).Render(card) + "\n\n")
	}

	textWidth := max(min(m.width, 100)-12, 24)
	switch {
	case m.commentsLoading && len(m.comments) == 0:
		b.WriteString("  " + m.spinner.View() + " Loading comments...\n")
	case m.commentsErr != nil && len(m.comments) == 0:
		b.WriteString(common.ErrorStyle.Render("  Error: "+m.commentsErr.Error()) + "\n")
	case len(m.comments) == 0:
		b.WriteString("  No comments yet. Press i to write one.\n")
	default:
		now := time.Now()
		for _, c := range m.comments {
			own := m.sync != nil && c.UserID == m.sync.Viewer().ID
			head := "  " + renderAuthor(c.Author.Username, own) + " " +
				common.TimestampStyle.Render(common.RelativeTime(c.CreatedAt, now))
			b.WriteString(head + "\n")
			for _, ln := range wrapAndTruncate(c.Content, textWidth, 4) {
				b.WriteString("    " + common.ContentStyle.Render(ln) + "\n")
			}
		}
		if m.commentsLoading {
			b.WriteString("  " + m.spinner.View() + "\n")
		}
	}

	if m.inputActive || m.input.Value() != "" {
		b.WriteString("\n  " + m.input.View() + "\n")
	}
	if m.commentsErr != nil && len(m.comments) > 0 {
		b.WriteString(common.ErrorStyle.Render("  "+m.commentsErr.Error()) + "\n")
	}
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n" + m.helpView())
	return b.String()
}

func (m Model) renderProfileView() string {
	var b strings.Builder
	label := "profile"
	if u := strings.TrimSpace(m.page.Profile.Username); u != "" {
		label = "@" + u
	}
	b.WriteString(m.renderCrumb(label))

	if m.profileLoading && m.page.Profile.ID == "" {
		b.WriteString("  " + m.spinner.View() + " Loading profile...\n")
		b.WriteString("\n" + m.helpView())
		return b.String()
	}
	if m.profileErr != nil && m.page.Profile.ID == "" {
		b.WriteString(common.ErrorStyle.Render("  Error: " + m.profileErr.Error()))
		b.WriteString("\n\n" + m.helpView())
		return b.String()
	}

	p := m.page.Profile
	width := min(max(m.width-4, 40), 80)
	var card strings.Builder
	head := renderAuthor(p.Username, m.page.IsOwn)
	if name := strings.TrimSpace(p.FullName); name != "" {
		head += " " + common.TimestampStyle.Render("("+name+")")
	}
	card.WriteString(head + "\n")
	card.WriteString(common.CounterStyle.Render(fmt.Sprintf("%s  %s  %d following",
		common.Plural(p.PostsCount, "post"),
		common.Plural(p.FollowersCount, "follower"),
		p.FollowingCount)) + "\n")
	if !m.page.IsOwn {
		state := "not following"
		if m.page.Following {
			state = "following"
		}
		if m.followBusy {
			state += common.PendingStyle.Render("  saving...")
		}
		card.WriteString(common.TimestampStyle.Render("Follow: "+state+" • f: follow/unfollow") + "\n")
	}
	if bio := strings.TrimSpace(p.Bio); bio != "" {
		card.WriteString("\n" + common.ContentStyle.Width(width-6).Render(bio) + "\n")
	}
	if w := strings.TrimSpace(p.Website); w != "" {
		card.WriteString(common.TimestampStyle.Render(w) + "\n")
	}
	b.WriteString(common.UnselectedStyle.Width(width).Render(strings.TrimSuffix(card.String(), "\n")) + "\n")

	b.WriteString("\n  " + lipgloss.NewStyle().Bold(true).Underline(true).Render("Posts") + "\n")
	if len(m.page.Posts) == 0 {
		b.WriteString("\n  No posts.\n")
	}
	now := time.Now()
	limit := len(m.page.Posts)
	if m.height > 0 {
		limit = max((m.height-18)/3, 3)
	}
	start := 0
	if m.profileCursor >= limit {
		start = m.profileCursor - limit + 1
	}
	for i := start; i < len(m.page.Posts) && i < start+limit; i++ {
		post := m.page.Posts[i]
		caption, _ := splitCaptionAndTags(post.CaptionText())
		if caption == "" {
			caption = "(no caption)"
		}
		prefix := "  "
		if i == m.profileCursor {
			prefix = lipgloss.NewStyle().Foreground(common.Accent).Render("▶ ")
		}
		line := fmt.Sprintf("%s%s  %s  %s",
			prefix,
			common.TimestampStyle.Render(common.RelativeTime(post.CreatedAt, now)),
			clipLines(truncateToTwoLines(caption, width-24), 1),
			common.CounterStyle.Render(fmt.Sprintf("♥ %d  💬 %d", post.LikesCount, post.CommentsCount)))
		b.WriteString(clampLinesToWidth(line, max(m.width, width)) + "\n")
	}

	if m.profileErr != nil {
		b.WriteString("\n" + common.ErrorStyle.Render("  "+errorText(m.profileErr)))
	}
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n" + m.helpView())
	return b.String()
}
