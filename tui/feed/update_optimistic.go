package feed

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// beginLike applies the toggle locally and returns the remote write.
func (m *Model) beginLike() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok || m.sync == nil {
		return nil
	}
	t, err := m.sync.BeginToggleLike(item.Post.ID, item.Post.LikedByViewer)
	if err != nil {
		if errors.Is(err, domain.ErrToggleInFlight) {
			m.notice = "Still saving your last like..."
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			m.syncView()
			m.notice = "Post changed, press l again."
			return nil
		}
		m.err = err
		return nil
	}
	m.notice = ""
	m.syncView()
	return writeLike(m.sync, t)
}

func (m Model) handleOptimisticMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LikeWrittenMsg:
		err := m.sync.FinishToggleLike(msg.Toggle, msg.Err)
		m.syncView()
		if err != nil {
			m.err = err
		}
		return m, nil

	case CommentsLoadedMsg:
		if msg.PostID != m.commentsPostID {
			return m, nil
		}
		m.commentsLoading = false
		if msg.Err != nil {
			m.commentsErr = msg.Err
			return m, nil
		}
		m.commentsErr = nil
		m.comments = msg.Comments
		return m, nil

	case CommentPostedMsg:
		m.posting = false
		if msg.Err != nil {
			if domain.IsValidation(msg.Err) {
				m.notice = "Comment cannot be empty."
				return m, nil
			}
			var syncErr *domain.SyncError
			if errors.As(msg.Err, &syncErr) {
				// Stored; only the re-query failed. Clear the input so it is not sent twice.
				m.syncView()
				m.input.Reset()
				m.notice = "Comment posted, but the list couldn't refresh. Press r to retry."
				return m, nil
			}
			m.commentsErr = msg.Err
			return m, nil
		}
		m.syncView()
		if msg.PostID == m.commentsPostID {
			m.comments = msg.Comments
			m.commentsErr = nil
		}
		m.input.Reset()
		m.notice = "Comment posted."
		return m, nil

	case ProfileLoadedMsg:
		if !m.showProfile || msg.Username != m.profileWanted {
			return m, nil
		}
		m.profileLoading = false
		if msg.Err != nil {
			m.profileErr = msg.Err
			return m, nil
		}
		m.profileErr = nil
		m.page = msg.Page
		m.profileCursor = 0
		return m, nil

	case FollowResultMsg:
		m.followBusy = false
		if msg.Err != nil {
			if errors.Is(msg.Err, domain.ErrSelfFollow) {
				m.notice = "You can't follow yourself."
				return m, nil
			}
			m.profileErr = msg.Err
			return m, nil
		}
		if m.page.Profile.ID == msg.TargetID && m.page.Following != msg.Following {
			m.page.Following = msg.Following
			if msg.Following {
				m.page.Profile.FollowersCount++
			} else if m.page.Profile.FollowersCount > 0 {
				m.page.Profile.FollowersCount--
			}
		}
		return m, nil
	}
	return m, nil
}
