package feed

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cardjinho/Instagram-v0/feedsync"
)

func (m Model) selectedItem() (feedsync.FeedItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Items) {
		return feedsync.FeedItem{}, false
	}
	return m.view.Items[m.cursor], true
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.inputActive {
		return m.handleInputKey(msg)
	}
	if key.Matches(msg, m.keys.ToggleHints) {
		m.showAllHints = !m.showAllHints
		return m, nil
	}
	if m.showAllHints {
		if key.Matches(msg, m.keys.Back) {
			m.showAllHints = false
		}
		return m, nil
	}
	if m.showProfile {
		return m.handleProfileKey(msg)
	}
	if m.showComments {
		return m.handleCommentsKey(msg)
	}
	return m.handleFeedKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputActive = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		if m.posting {
			return m, nil
		}
		m.posting = true
		m.notice = "Posting comment..."
		return m, m.postComment(m.commentsPostID, m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleFeedKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.notice = ""
		}
		m.ensureFeedCursorVisible()
		return m, m.ensureMediaPreviewCmd()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Items)-1 {
			m.cursor++
			m.notice = ""
		}
		m.ensureFeedCursorVisible()
		return m, m.ensureMediaPreviewCmd()

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.startIndex = 0
		return m, m.ensureMediaPreviewCmd()

	case key.Matches(msg, m.keys.Refresh):
		m.refreshing = true
		m.notice = ""
		return m, m.loadHome()

	case key.Matches(msg, m.keys.Like):
		cmd := m.beginLike()
		return m, cmd

	case key.Matches(msg, m.keys.Comments):
		cmd := m.openComments(false)
		return m, cmd

	case key.Matches(msg, m.keys.Comment):
		cmd := m.openComments(true)
		return m, cmd

	case key.Matches(msg, m.keys.Profile):
		if p, ok := m.SelectedPost(); ok {
			cmd := m.openProfile(p.Author.Username)
			return m, cmd
		}

	case key.Matches(msg, m.keys.OwnProfile):
		cmd := m.openProfile(m.ownUsername)
		return m, cmd

	case key.Matches(msg, m.keys.NewPost):
		return m, func() tea.Msg { return ComposeRequestMsg{} }

	case key.Matches(msg, m.keys.NewPostEdit):
		return m, func() tea.Msg { return ComposeRequestMsg{UseEditor: true} }

	case key.Matches(msg, m.keys.Media):
		m.showMediaPreview = !m.showMediaPreview
		m.ensureFeedCursorVisible()
		return m, m.ensureMediaPreviewCmd()

	case key.Matches(msg, m.keys.Stories):
		m.hideStories = !m.hideStories
		m.ensureFeedCursorVisible()

	case key.Matches(msg, m.keys.Open):
		if p, ok := m.SelectedPost(); ok {
			return m, openURL(p.ImageURL)
		}
	}
	return m, nil
}

func (m Model) handleCommentsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.closeComments()
	case key.Matches(msg, m.keys.Comment):
		m.inputActive = true
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Like):
		cmd := m.beginLike()
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		m.commentsLoading = true
		return m, m.fetchComments(m.commentsPostID)
	case key.Matches(msg, m.keys.Profile):
		if p, ok := m.SelectedPost(); ok {
			cmd := m.openProfile(p.Author.Username)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Open):
		if p, ok := m.SelectedPost(); ok {
			return m, openURL(p.ImageURL)
		}
	}
	return m, nil
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.showProfile = false
		m.profileErr = nil
	case key.Matches(msg, m.keys.Up):
		if m.profileCursor > 0 {
			m.profileCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.profileCursor < len(m.page.Posts)-1 {
			m.profileCursor++
		}
	case key.Matches(msg, m.keys.Follow):
		if m.profileLoading || m.followBusy || m.page.IsOwn || m.page.Profile.ID == "" {
			return m, nil
		}
		m.followBusy = true
		return m, m.toggleFollow(m.page.Profile.ID, m.page.Following)
	case key.Matches(msg, m.keys.Refresh):
		if m.page.Profile.Username != "" {
			m.profileLoading = true
			cmd := m.requestProfile(m.page.Profile.Username)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Open):
		if m.profileCursor < len(m.page.Posts) {
			return m, openURL(m.page.Posts[m.profileCursor].ImageURL)
		}
	}
	return m, nil
}

// openComments shows the selected post's comments, serving the cached list
// while a fresh one loads.
func (m *Model) openComments(focus bool) tea.Cmd {
	p, ok := m.SelectedPost()
	if !ok || m.sync == nil {
		return nil
	}
	m.showComments = true
	m.commentsErr = nil
	if m.commentsPostID != p.ID {
		m.input.Reset()
	}
	m.commentsPostID = p.ID
	m.comments, _ = m.sync.Comments(p.ID)
	m.commentsLoading = true
	cmds := []tea.Cmd{m.fetchComments(p.ID)}
	if focus {
		m.inputActive = true
		cmds = append(cmds, m.input.Focus())
	}
	return tea.Batch(cmds...)
}

func (m *Model) closeComments() {
	m.showComments = false
	m.inputActive = false
	m.input.Blur()
	m.commentsErr = nil
}

func (m *Model) openProfile(username string) tea.Cmd {
	cmd := m.requestProfile(username)
	if cmd == nil {
		return nil
	}
	m.showProfile = true
	m.profileLoading = true
	m.profileErr = nil
	m.page = feedsync.ProfilePage{}
	return cmd
}

// requestProfile fetches username's page and makes it the only response the
// profile overlay will accept.
func (m *Model) requestProfile(username string) tea.Cmd {
	cmd := m.fetchProfile(username)
	if cmd != nil {
		m.profileWanted = strings.TrimSpace(username)
	}
	return cmd
}
