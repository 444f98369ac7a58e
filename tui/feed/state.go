package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/feedsync"
	"github.com/Cardjinho/Instagram-v0/tui/common"
)

const commentCharLimit = 2200

// HomeLoadedMsg is sent when a feed and stories load completes.
type HomeLoadedMsg struct {
	Home feedsync.Home
	Err  error
}

// LikeWrittenMsg carries the outcome of the remote half of a like toggle.
type LikeWrittenMsg struct {
	Toggle feedsync.LikeToggle
	Err    error
}

// CommentsLoadedMsg is sent when a post's comments arrive.
type CommentsLoadedMsg struct {
	PostID   string
	Comments []domain.Comment
	Err      error
}

// CommentPostedMsg is sent after a comment insert and re-query.
type CommentPostedMsg struct {
	PostID   string
	Comments []domain.Comment
	Err      error
}

// ProfileLoadedMsg is sent when a profile page has been fetched.
type ProfileLoadedMsg struct {
	Username string
	Page     feedsync.ProfilePage
	Err      error
}

// FollowResultMsg is sent after a follow toggle.
type FollowResultMsg struct {
	TargetID  string
	Following bool
	Err       error
}

// MediaPreviewLoadedMsg delivers a rendered image preview.
type MediaPreviewLoadedMsg struct {
	Key     string
	Preview string
	Err     error
}

// ComposeRequestMsg asks the root model to open the post composer.
type ComposeRequestMsg struct {
	UseEditor bool
}

// PostCreatedMsg is sent by the root model once a new post is stored.
type PostCreatedMsg struct {
	Post domain.Post
}

// Options configures a feed model.
type Options struct {
	Sync             *feedsync.Synchronizer
	OwnUsername      string
	HideMediaPreview bool
	HideStories      bool
	LastPostID       string
}

type modelServices struct {
	sync        *feedsync.Synchronizer
	ownUsername string
}

type feedState struct {
	view       feedsync.FeedView
	stories    []feedsync.StoryGroup
	cursor     int
	loading    bool
	err        error
	notice     string
	restoreID  string
	hasLoaded  bool
	refreshing bool
}

type uiState struct {
	keys         common.KeyMap
	spinner      spinner.Model
	width        int
	height       int
	startIndex   int
	showAllHints bool
}

type commentState struct {
	showComments    bool
	commentsPostID  string
	comments        []domain.Comment
	commentsLoading bool
	commentsErr     error
	input           textinput.Model
	inputActive     bool
	posting         bool
}

type profileState struct {
	showProfile    bool
	profileWanted  string // username of the latest profile request
	profileLoading bool
	profileErr     error
	page           feedsync.ProfilePage
	profileCursor  int
	followBusy     bool
}

type storyState struct {
	hideStories bool
}

type mediaState struct {
	showMediaPreview bool
	mediaPreview     map[string]string
	mediaLoading     map[string]bool
}

// Model holds the state for the feed view and its overlays.
type Model struct {
	modelServices
	feedState
	uiState
	commentState
	profileState
	storyState
	mediaState
}

// New creates a feed model around a synchronizer.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(common.Accent)

	in := textinput.New()
	in.Placeholder = "Add a comment..."
	in.CharLimit = commentCharLimit
	in.Prompt = "💬 "

	return Model{
		modelServices: modelServices{
			sync:        opts.Sync,
			ownUsername: opts.OwnUsername,
		},
		feedState: feedState{
			loading:   true,
			restoreID: opts.LastPostID,
		},
		uiState: uiState{
			keys:    common.DefaultKeyMap(),
			spinner: s,
		},
		commentState: commentState{
			input: in,
		},
		storyState: storyState{
			hideStories: opts.HideStories,
		},
		mediaState: mediaState{
			showMediaPreview: !opts.HideMediaPreview,
			mediaPreview:     make(map[string]string),
			mediaLoading:     make(map[string]bool),
		},
	}
}

// Init starts the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadHome(),
		m.spinner.Tick,
	)
}

// Refresh returns a Cmd that reloads the feed and stories.
func (m Model) Refresh() tea.Cmd {
	return m.loadHome()
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m.update(msg)
}

// SelectedPost returns the focused post, if any.
func (m Model) SelectedPost() (domain.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Items) {
		return domain.Post{}, false
	}
	return m.view.Items[m.cursor].Post, true
}

// CapturesInput reports whether keys go to a text input, so global
// bindings such as quit must not fire.
func (m Model) CapturesInput() bool {
	return m.inputActive
}

// InOverlay reports whether comments or a profile are open on top of the feed.
func (m Model) InOverlay() bool {
	return m.showComments || m.showProfile
}

// MediaPreviewHidden reports the preview toggle for persistence.
func (m Model) MediaPreviewHidden() bool { return !m.showMediaPreview }

// StoriesHidden reports the stories toggle for persistence.
func (m Model) StoriesHidden() bool { return m.hideStories }
