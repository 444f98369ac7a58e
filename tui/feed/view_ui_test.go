package feed

import (
	"strings"
	"testing"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/feedsync"
)

func TestView_RendersFeedSections(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	out := m.View()
	if !strings.Contains(out, domain.AppName) {
		t.Fatalf("feed view missing title")
	}
	if !containsAll(out, "@bob", "@me", "(you)") {
		t.Fatalf("feed view missing authors: %q", out)
	}
	if !strings.Contains(out, "sunset at the pier") || !strings.Contains(out, "#travel") {
		t.Fatalf("expected caption and tag")
	}
	if !strings.Contains(out, "2 likes") {
		t.Fatalf("expected like counter")
	}
}

func TestView_StoriesBarFollowsToggle(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	if len(m.stories) != 1 {
		t.Fatalf("expected one story group, got %d", len(m.stories))
	}
	if bar := m.renderStoriesBar(); !strings.Contains(bar, "@bob") {
		t.Fatalf("stories bar missing owner: %q", bar)
	}

	before := strings.Count(m.View(), "@bob")
	m.hideStories = true
	if after := strings.Count(m.View(), "@bob"); after != before-1 {
		t.Fatalf("hiding stories should drop the ring, got %d -> %d", before, after)
	}
}

func TestRenderCounters_PendingAndLiked(t *testing.T) {
	it := feedsync.FeedItem{Post: domain.Post{LikesCount: 1, LikedByViewer: true, CommentsCount: 2}, Pending: true}
	out := renderCounters(it)
	if !containsAll(out, "♥", "1 like", "2 comments", "saving...") {
		t.Fatalf("unexpected counters: %q", out)
	}

	it.Pending = false
	it.Post.LikedByViewer = false
	out = renderCounters(it)
	if strings.Contains(out, "saving") || !strings.Contains(out, "♡") {
		t.Fatalf("unexpected counters: %q", out)
	}
}

func TestView_EmptyAndLoadingStates(t *testing.T) {
	m := New(Options{})
	if out := m.View(); !strings.Contains(out, "Loading feed") {
		t.Fatalf("expected loading state")
	}
	m.loading = false
	m.hasLoaded = true
	if out := m.View(); !strings.Contains(out, "No posts yet") {
		t.Fatalf("expected empty state")
	}
	m.err = errBoom
	if out := m.View(); !containsAll(out, "boom", "retry") {
		t.Fatalf("expected error state")
	}
}

func TestView_Overlays(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, cmd := press(m, 'c')
	m = apply(t, m, cmd)
	if out := m.View(); !containsAll(out, "feed > comments", "No comments yet") {
		t.Fatalf("comments overlay missing sections")
	}
	m.comments = []domain.Comment{{ID: "c1", UserID: "u-bob", Content: "lovely light", CreatedAt: testNow, Author: domain.AuthorSummary{Username: "bob"}}}
	if out := m.View(); !strings.Contains(out, "lovely light") {
		t.Fatalf("comments overlay missing comment")
	}

	m, _ = m.Update(keyEsc())
	m, cmd = press(m, 'p')
	m = apply(t, m, cmd)
	out := m.View()
	if !containsAll(out, "feed > @bob", "Follow: not following", "(Bob B)", "sunset at the pier") {
		t.Fatalf("profile overlay missing sections: %q", out)
	}
}

func TestRenderKeyDialog_ModeSpecific(t *testing.T) {
	m := New(Options{})
	if out := m.renderKeyDialog(); !containsAll(out, "Keyboard Shortcuts", "new post") {
		t.Fatalf("feed dialog missing entries")
	}
	m.showProfile = true
	if out := m.renderKeyDialog(); !strings.Contains(out, "follow/unfollow") {
		t.Fatalf("profile dialog missing follow entry")
	}
	if lines := buildKeyDialogLines([]string{"x"}, false); lines[0] != "x" {
		t.Fatalf("move hint should be omitted, got %v", lines)
	}
}

func TestErrorText(t *testing.T) {
	kept := &domain.MutationError{Op: "comment", Err: errBoom}
	if got := errorText(kept); !strings.HasPrefix(got, "Couldn't save comment:") {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := errorText(errBoom); got != "Error: boom" {
		t.Fatalf("unexpected text: %q", got)
	}
}
