package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Cardjinho/Instagram-v0/app"
)

// EnvEditor prepares an external editor command using $EDITOR (fallback: "vi").
// The TUI runs the returned *exec.Cmd through tea.ExecProcess so Bubble Tea
// can suspend raw terminal mode; the CLI runs it directly via Compose.
type EnvEditor struct{}

var _ app.Composer = (*EnvEditor)(nil)

// NewEnvEditor creates an EnvEditor.
func NewEnvEditor() *EnvEditor {
	return &EnvEditor{}
}

const instructionComment = `<!--
InstaTerm: write your text below.

- SAVE and EXIT to submit (e.g., :wq in vi).
- Emptying the file cancels.
-->

`

// Cmd prepares an *exec.Cmd for the editor and a temp file path.
// It writes the provided content (and an instruction comment) to the temp file.
// A non-empty about line (e.g. "Caption for beach.jpg") is added to the comment.
func (e *EnvEditor) Cmd(content, about string) (*exec.Cmd, string, error) {
	editorCmd := strings.TrimSpace(os.Getenv("EDITOR"))
	if editorCmd == "" {
		editorCmd = "vi"
	}

	tmpFile, err := os.CreateTemp("", "instaterm-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	header := instructionComment
	if about = strings.TrimSpace(about); about != "" {
		header = strings.Replace(header, "-->", about+"\n-->", 1)
	}
	if _, err := tmpFile.WriteString(header + content); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	fields := strings.Fields(editorCmd)
	args := append(fields[1:], tmpPath)
	cmd := exec.Command(fields[0], args...)
	return cmd, tmpPath, nil
}

// ReadContent reads the temp file, trims whitespace, and removes the file.
// It strips the instruction comment before returning.
func (e *EnvEditor) ReadContent(path string) (string, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	content := string(data)
	if idx := strings.Index(content, "-->"); idx != -1 {
		content = content[idx+3:]
	}
	return strings.TrimSpace(content), nil
}

// Compose runs the editor attached to the current terminal and returns the
// saved text.
func (e *EnvEditor) Compose(ctx context.Context, initial string) (string, error) {
	cmd, path, err := e.Cmd(initial, "")
	if err != nil {
		return "", err
	}
	run := exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)
	run.Stdin, run.Stdout, run.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := run.Run(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("running editor: %w", err)
	}
	return e.ReadContent(path)
}
