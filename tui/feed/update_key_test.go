package feed

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cardjinho/Instagram-v0/feedsync"
)

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func keyEsc() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEsc} }

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func TestUpdateKey_MoveKeepsCursorInRange(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, _ = press(m, 'k')
	if m.cursor != 0 {
		t.Fatalf("cursor should not go above 0, got %d", m.cursor)
	}
	m, _ = press(m, 'j')
	m, _ = press(m, 'j')
	if m.cursor != 1 {
		t.Fatalf("cursor should stop at last item, got %d", m.cursor)
	}
	m, _ = press(m, 'g')
	if m.cursor != 0 || m.startIndex != 0 {
		t.Fatalf("top should reset cursor and scroll")
	}
}

func TestUpdateKey_HintsDialogBlocksFeedKeys(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, _ = press(m, '?')
	if !m.showAllHints {
		t.Fatalf("expected hints dialog")
	}
	m, cmd := press(m, 'l')
	if cmd != nil || item(t, m, "p-1").Post.LikedByViewer {
		t.Fatalf("feed keys must not fire under the dialog")
	}
	m, _ = m.Update(keyEsc())
	if m.showAllHints {
		t.Fatalf("esc should close the dialog")
	}
}

func TestUpdateKey_InputCapturesQuit(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, _ = press(m, 'c')
	m.inputActive = true
	m.input.Focus()
	if !m.CapturesInput() || !m.InOverlay() {
		t.Fatalf("expected input capture inside comments overlay")
	}
	m, _ = press(m, 'q')
	if !m.showComments || m.input.Value() != "q" {
		t.Fatalf("q should be typed into the comment, got %q", m.input.Value())
	}
	m, _ = m.Update(keyEsc())
	if m.inputActive || !m.showComments {
		t.Fatalf("esc should leave input but keep the overlay")
	}
	m, _ = m.Update(keyEsc())
	if m.showComments {
		t.Fatalf("second esc should close comments")
	}
}

func TestUpdateKey_TogglesPersistedFlags(t *testing.T) {
	m := New(Options{HideMediaPreview: true})
	m, _ = press(m, 's')
	if !m.StoriesHidden() {
		t.Fatalf("expected stories hidden")
	}
	m, _ = press(m, 'm')
	if m.MediaPreviewHidden() {
		t.Fatalf("expected media previews shown")
	}
}

func TestUpdateKey_NewPostRequestsComposer(t *testing.T) {
	m := New(Options{})
	_, cmd := press(m, 'N')
	if cmd == nil {
		t.Fatalf("expected compose request")
	}
	req, ok := cmd().(ComposeRequestMsg)
	if !ok || !req.UseEditor {
		t.Fatalf("expected editor compose request, got %#v", req)
	}
}

func TestHomeLoaded_StaleResultIgnored(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	m.cursor = 1

	updated, _ := m.Update(HomeLoadedMsg{Err: context.Canceled})
	if updated.cursor != 1 || updated.err != nil || len(updated.view.Items) != 2 {
		t.Fatalf("cancelled load must leave the model untouched")
	}
}

func TestHomeLoaded_ErrorKeepsPreviousFeed(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	h.store.FailNext("SelectPosts", errBoom)

	m, cmd := press(m, 'r')
	if !m.refreshing {
		t.Fatalf("expected refreshing")
	}
	m = apply(t, m, cmd)
	if m.err == nil || len(m.view.Items) != 2 {
		t.Fatalf("expected error with previous feed kept, got err=%v items=%d", m.err, len(m.view.Items))
	}
}

func TestHomeLoaded_RestoresSelection(t *testing.T) {
	h := newHarness(t)
	m := New(Options{Sync: h.sync, LastPostID: "p-2", HideMediaPreview: true})
	m = apply(t, m, m.loadHome())
	if p, ok := m.SelectedPost(); !ok || p.ID != "p-2" {
		t.Fatalf("expected restored selection p-2, got %+v", p)
	}

	m, _ = m.Update(HomeLoadedMsg{Home: feedsync.Home{Feed: h.sync.View()}})
	if p, _ := m.SelectedPost(); p.ID != "p-2" {
		t.Fatalf("reload should keep the focused post, got %s", p.ID)
	}
}
