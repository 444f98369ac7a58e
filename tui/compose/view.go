package compose

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/tui/common"
)

// View renders the compose view for the current stage.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render(domain.DisplayAppTitle()))
	b.WriteString("  New Post\n\n")

	switch m.stage {
	case pickImage:
		b.WriteString(m.pathInput.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(common.ErrorStyle.Render("  "+errText(m.err)) + "\n\n")
		}
		next := "caption"
		if m.mode == editorMode {
			next = "caption in $EDITOR"
		}
		b.WriteString(common.StatusBarStyle.Render("  enter: " + next + " • esc: cancel"))

	case writeCaption:
		b.WriteString(common.TimestampStyle.Render("  "+filepath.Base(m.imagePath)) + "\n\n")
		b.WriteString(m.textarea.View())
		b.WriteString("\n\n")
		b.WriteString(common.StatusBarStyle.Render(
			fmt.Sprintf("  ctrl+d: share • esc: cancel • %d/%d chars",
				len([]rune(m.textarea.Value())), captionCharLimit),
		))

	case waitEditor:
		b.WriteString(m.status + "\n")
	}
	return b.String()
}

func errText(err error) string {
	if domain.IsValidation(err) {
		msg := err.Error()
		if _, rest, ok := strings.Cut(msg, ": "); ok {
			return rest
		}
		return msg
	}
	return "Error: " + err.Error()
}
