package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.width-8, 20)
		m.ensureFeedCursorVisible()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch msg.(type) {
	case HomeLoadedMsg, PostCreatedMsg:
		return m.handleFeedLoadingMsg(msg)
	case LikeWrittenMsg, CommentsLoadedMsg, CommentPostedMsg, ProfileLoadedMsg, FollowResultMsg:
		return m.handleOptimisticMsg(msg)
	case MediaPreviewLoadedMsg:
		return m.handleMediaMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg.(tea.KeyMsg))
	}

	if m.inputActive {
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}
