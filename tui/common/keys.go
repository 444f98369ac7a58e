package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines shared key bindings across all views.
type KeyMap struct {
	Quit        key.Binding
	ForceQuit   key.Binding
	Back        key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Like        key.Binding // l — like/unlike selected post
	Comments    key.Binding // c — open comments
	Comment     key.Binding // i — write a comment inline
	Profile     key.Binding // p — open author profile
	OwnProfile  key.Binding // P — open own profile
	Follow      key.Binding // f — follow/unfollow profile owner
	NewPost     key.Binding // n — new post, caption inline
	NewPostEdit key.Binding // N — new post, caption via $EDITOR
	Media       key.Binding // m — toggle image previews
	Stories     key.Binding // s — toggle stories bar
	Open        key.Binding // o — open image in browser
	ToggleHints key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Like: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "like"),
		),
		Comments: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "comments"),
		),
		Comment: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "comment"),
		),
		Profile: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "profile"),
		),
		OwnProfile: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "my profile"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow"),
		),
		NewPost: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new post"),
		),
		NewPostEdit: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "new post ($EDITOR)"),
		),
		Media: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "previews"),
		),
		Stories: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stories"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open image"),
		),
		ToggleHints: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "all keys"),
		),
	}
}
