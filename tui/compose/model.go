package compose

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cardjinho/Instagram-v0/feedsync"
	"github.com/Cardjinho/Instagram-v0/infra/editor"
)

const captionCharLimit = 2200

type mode int

const (
	editorMode mode = iota
	inlineMode
)

type stage int

const (
	pickImage stage = iota
	writeCaption
	waitEditor
)

// DoneMsg is sent when composing is complete. ImagePath is empty when the
// user cancelled.
type DoneMsg struct {
	ImagePath string
	Caption   string
	Err       error
}

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

// Model asks for an image path and then a caption, inline or via $EDITOR.
type Model struct {
	mode      mode
	stage     stage
	editor    *editor.EnvEditor
	pathInput textinput.Model
	textarea  textarea.Model
	imagePath string
	err       error
	status    string
	width     int
}

func newPathInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "~/Pictures/photo.jpg"
	in.Prompt = "Image: "
	in.CharLimit = 1024
	in.Width = 60
	in.Focus()
	return in
}

// NewEditor creates a compose model that writes the caption in $EDITOR.
func NewEditor(ed *editor.EnvEditor) Model {
	return Model{
		mode:      editorMode,
		editor:    ed,
		pathInput: newPathInput(),
	}
}

// NewInline creates a compose model with an inline caption textarea.
func NewInline() Model {
	ta := textarea.New()
	ta.Placeholder = "Write a caption..."
	ta.CharLimit = captionCharLimit
	ta.SetWidth(72)
	ta.SetHeight(5)

	return Model{
		mode:      inlineMode,
		pathInput: newPathInput(),
		textarea:  ta,
	}
}

// Init starts the cursor blink on the path input.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// launchEditor uses tea.ExecProcess so Bubble Tea's raw terminal mode is
// suspended while the editor runs.
func (m *Model) launchEditor() tea.Cmd {
	cmd, tmpPath, err := m.editor.Cmd("", "Caption for "+filepath.Base(m.imagePath))
	if err != nil {
		return done(DoneMsg{Err: fmt.Errorf("preparing editor: %w", err)})
	}
	m.stage = waitEditor
	m.status = "Opening editor..."
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.pathInput.Width = max(min(msg.Width-12, 80), 20)
		m.textarea.SetWidth(max(min(msg.Width-6, 80), 20))
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			return m, done(DoneMsg{Err: fmt.Errorf("editor: %w", msg.err)})
		}
		caption, err := m.editor.ReadContent(msg.tmpPath)
		if err != nil {
			return m, done(DoneMsg{Err: err})
		}
		return m, done(DoneMsg{ImagePath: m.imagePath, Caption: caption})

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, done(DoneMsg{})
		}
		switch m.stage {
		case pickImage:
			return m.updatePickImage(msg)
		case writeCaption:
			if msg.String() == "ctrl+d" {
				return m, done(DoneMsg{ImagePath: m.imagePath, Caption: m.textarea.Value()})
			}
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.stage {
	case pickImage:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case writeCaption:
		m.textarea, cmd = m.textarea.Update(msg)
	}
	return m, cmd
}

func (m Model) updatePickImage(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		m.err = nil
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}
	p, err := feedsync.CheckImagePath(m.pathInput.Value())
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.imagePath = p
	m.pathInput.Blur()
	if m.mode == editorMode {
		cmd := m.launchEditor()
		return m, cmd
	}
	m.stage = writeCaption
	cmd := m.textarea.Focus()
	return m, cmd
}

// done wraps a DoneMsg into a tea.Cmd for immediate delivery.
func done(msg DoneMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
