package editor

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestCmd_UsesEditorAndWritesTemplate(t *testing.T) {
	t.Setenv("EDITOR", "cat")
	e := NewEnvEditor()

	cmd, path, err := e.Cmd("hello", "Caption for beach.jpg")
	if err != nil {
		t.Fatalf("cmd failed: %v", err)
	}
	defer os.Remove(path)
	if cmd.Path == "" || cmd.Args[0] != "cat" || cmd.Args[len(cmd.Args)-1] != path {
		t.Fatalf("unexpected command: %v", cmd.Args)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file failed: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Caption for beach.jpg") || !strings.Contains(text, "hello") {
		t.Fatalf("unexpected template content: %q", text)
	}
}

func TestCmd_SplitsEditorArguments(t *testing.T) {
	t.Setenv("EDITOR", "code --wait")
	cmd, path, err := NewEnvEditor().Cmd("", "")
	if err != nil {
		t.Fatalf("cmd failed: %v", err)
	}
	defer os.Remove(path)
	if len(cmd.Args) != 3 || cmd.Args[1] != "--wait" || cmd.Args[2] != path {
		t.Fatalf("unexpected args: %v", cmd.Args)
	}
}

func TestReadContent_StripsInstructionAndDeletesFile(t *testing.T) {
	e := NewEnvEditor()
	f, err := os.CreateTemp("", "instaterm-test-*.md")
	if err != nil {
		t.Fatalf("create temp failed: %v", err)
	}
	path := f.Name()
	_, _ = f.WriteString(instructionComment + "\nline1\nline2\n")
	_ = f.Close()

	content, err := e.ReadContent(path)
	if err != nil {
		t.Fatalf("read content failed: %v", err)
	}
	if content != "line1\nline2" {
		t.Fatalf("unexpected content: %q", content)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be deleted")
	}
}

func TestCompose_ReturnsSavedText(t *testing.T) {
	// "true" leaves the file untouched, so the initial text comes back.
	t.Setenv("EDITOR", "true")
	got, err := NewEnvEditor().Compose(context.Background(), "  keep me  ")
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if got != "keep me" {
		t.Fatalf("unexpected composed text: %q", got)
	}
}
