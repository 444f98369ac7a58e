package feed

import (
	"context"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cardjinho/Instagram-v0/feedsync"
)

const remoteTimeout = 20 * time.Second

func (m Model) loadHome() tea.Cmd {
	sync := m.sync
	if sync == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		home, err := sync.LoadHome(ctx)
		return HomeLoadedMsg{Home: home, Err: err}
	}
}

func writeLike(sync *feedsync.Synchronizer, t feedsync.LikeToggle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		return LikeWrittenMsg{Toggle: t, Err: sync.WriteLike(ctx, t)}
	}
}

func (m Model) fetchComments(postID string) tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		comments, err := sync.LoadComments(ctx, postID)
		return CommentsLoadedMsg{PostID: postID, Comments: comments, Err: err}
	}
}

func (m Model) postComment(postID, text string) tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		comments, err := sync.PostComment(ctx, postID, text)
		return CommentPostedMsg{PostID: postID, Comments: comments, Err: err}
	}
}

func (m Model) fetchProfile(username string) tea.Cmd {
	sync := m.sync
	username = strings.TrimSpace(username)
	if sync == nil || username == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		page, err := sync.LoadProfile(ctx, username)
		return ProfileLoadedMsg{Username: username, Page: page, Err: err}
	}
}

func (m Model) toggleFollow(targetID string, following bool) tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		now, err := sync.ToggleFollow(ctx, targetID, following)
		return FollowResultMsg{TargetID: targetID, Following: now, Err: err}
	}
}

func openURL(rawURL string) tea.Cmd {
	return func() tea.Msg {
		if !isSafeExternalURL(rawURL) {
			return nil
		}
		_ = exec.Command(openerCommand(), rawURL).Start()
		return nil
	}
}

func openerCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

func isSafeExternalURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
