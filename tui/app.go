package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/feedsync"
	"github.com/Cardjinho/Instagram-v0/infra/config"
	"github.com/Cardjinho/Instagram-v0/infra/editor"
	"github.com/Cardjinho/Instagram-v0/tui/common"
	"github.com/Cardjinho/Instagram-v0/tui/compose"
	"github.com/Cardjinho/Instagram-v0/tui/feed"
)

const uploadTimeout = 90 * time.Second

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Sync        *feedsync.Synchronizer
	Editor      *editor.EnvEditor
	OwnUsername string
	UIState     config.UIState
	StatePath   string // empty disables persistence
}

type activeView int

const (
	feedView activeView = iota
	composeView
)

// postResultMsg carries the outcome of an upload started from the composer.
type postResultMsg struct {
	Post domain.Post
	Err  error
}

// App is the root Bubble Tea model. It routes between sub-views.
type App struct {
	deps    Deps
	active  activeView
	feed    feed.Model
	compose compose.Model
	keys    common.KeyMap
	status  string
	size    tea.WindowSizeMsg
	posting bool
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		deps:   deps,
		active: feedView,
		feed: feed.New(feed.Options{
			Sync:             deps.Sync,
			OwnUsername:      deps.OwnUsername,
			HideMediaPreview: deps.UIState.HideMediaPreview,
			HideStories:      deps.UIState.HideStories,
			LastPostID:       deps.UIState.LastPostID,
		}),
		keys: common.DefaultKeyMap(),
	}
}

// Init delegates to the feed.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.size = msg
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		if a.active == composeView {
			a.compose, _ = a.compose.Update(msg)
		}
		return a, cmd

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			a.saveState()
			return a, tea.Quit
		}
		if a.active == feedView && key.Matches(msg, a.keys.Quit) && !a.feed.InOverlay() && !a.feed.CapturesInput() {
			a.saveState()
			return a, tea.Quit
		}
		if a.active == feedView {
			a.status = ""
		}

	case feed.ComposeRequestMsg:
		if a.posting {
			a.status = "Still sharing your last post..."
			return a, nil
		}
		a.active = composeView
		a.status = ""
		if msg.UseEditor {
			a.compose = compose.NewEditor(a.deps.Editor)
		} else {
			a.compose = compose.NewInline()
		}
		if a.size.Width > 0 {
			a.compose, _ = a.compose.Update(a.size)
		}
		return a, a.compose.Init()

	case compose.DoneMsg:
		a.active = feedView
		if msg.Err != nil {
			a.status = "Error: " + msg.Err.Error()
			return a, nil
		}
		if msg.ImagePath == "" {
			a.status = "Cancelled."
			return a, nil
		}
		a.posting = true
		a.status = "Sharing..."
		return a, a.createPost(msg.ImagePath, msg.Caption)

	case postResultMsg:
		a.posting = false
		if msg.Err != nil {
			a.status = "Error: " + msg.Err.Error()
			return a, nil
		}
		a.status = ""
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(feed.PostCreatedMsg{Post: msg.Post})
		return a, cmd
	}

	switch a.active {
	case feedView:
		updated, cmd := a.feed.Update(msg)
		a.feed = updated
		return a, cmd
	case composeView:
		updated, cmd := a.compose.Update(msg)
		a.compose = updated
		// Keep feed spinners and background results flowing while composing.
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var feedCmd tea.Cmd
			a.feed, feedCmd = a.feed.Update(msg)
			return a, tea.Batch(cmd, feedCmd)
		}
		return a, cmd
	}

	return a, nil
}

func (a App) createPost(path, caption string) tea.Cmd {
	sync := a.deps.Sync
	return func() tea.Msg {
		in, f, err := feedsync.OpenImage(path, caption)
		if err != nil {
			return postResultMsg{Err: err}
		}
		defer f.Close()
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		post, err := sync.CreatePost(ctx, in)
		return postResultMsg{Post: post, Err: err}
	}
}

// State returns the UI state to persist.
func (a App) State() config.UIState {
	st := config.UIState{
		HideMediaPreview: a.feed.MediaPreviewHidden(),
		HideStories:      a.feed.StoriesHidden(),
	}
	if p, ok := a.feed.SelectedPost(); ok {
		st.LastPostID = p.ID
	}
	return st
}

func (a App) saveState() {
	if a.deps.StatePath == "" {
		return
	}
	_ = config.SaveUIState(a.deps.StatePath, a.State())
}

// View renders the active sub-model.
func (a App) View() string {
	var s string

	switch a.active {
	case feedView:
		s = a.feed.View()
	case composeView:
		s = a.compose.View()
	}

	if a.status != "" {
		s += "\n" + common.StatusBarStyle.Render(a.status)
	}
	return s
}
