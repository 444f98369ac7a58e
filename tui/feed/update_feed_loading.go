package feed

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleFeedLoadingMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HomeLoadedMsg:
		// A newer load cancelled this one; its result is already discarded.
		if errors.Is(msg.Err, context.Canceled) {
			return m, nil
		}
		m.loading = false
		m.refreshing = false
		if msg.Err != nil {
			m.err = msg.Err
			m.syncView()
			return m, nil
		}
		selected := m.restoreID
		if p, ok := m.SelectedPost(); ok && selected == "" {
			selected = p.ID
		}
		m.restoreID = ""
		m.err = nil
		m.stories = msg.Home.Stories
		m.syncView()
		m.cursor = 0
		if i := m.view.Index(selected); i >= 0 {
			m.cursor = i
		}
		m.startIndex = 0
		m.ensureFeedCursorVisible()
		return m, m.ensureMediaPreviewCmd()

	case PostCreatedMsg:
		m.notice = "Post shared."
		m.restoreID = msg.Post.ID
		m.refreshing = true
		return m, m.loadHome()
	}
	return m, nil
}

// syncView pulls the synchronizer's current view, keeping the cursor on the
// same post when it is still present.
func (m *Model) syncView() {
	if m.sync == nil {
		return
	}
	prev, hadPrev := m.SelectedPost()
	m.view = m.sync.View()
	m.hasLoaded = m.sync.Loaded()
	if hadPrev {
		if i := m.view.Index(prev.ID); i >= 0 {
			m.cursor = i
		}
	}
	if m.cursor >= len(m.view.Items) {
		m.cursor = max(len(m.view.Items)-1, 0)
	}
}

// visibleCount is how many post cards fit on screen.
func (m Model) visibleCount() int {
	reserved := 10
	if !m.hideStories && len(m.stories) > 0 {
		reserved += 3
	}
	per := 6
	if m.showMediaPreview {
		per += previewHeight
	}
	if m.height <= 0 {
		return 3
	}
	return max((m.height-reserved)/per, 1)
}

func (m *Model) ensureFeedCursorVisible() {
	n := m.visibleCount()
	if m.cursor < m.startIndex {
		m.startIndex = m.cursor
	}
	if m.cursor >= m.startIndex+n {
		m.startIndex = m.cursor - n + 1
	}
	if m.startIndex < 0 {
		m.startIndex = 0
	}
}
