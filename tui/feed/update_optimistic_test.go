package feed

import (
	"errors"
	"testing"

	"github.com/Cardjinho/Instagram-v0/domain"
)

func TestLikeKey_AppliesBeforeRemoteWrite(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	calls := h.store.TotalCalls()

	updated, cmd := press(m, 'l')
	it := item(t, updated, "p-1")
	if !it.Post.LikedByViewer || it.Post.LikesCount != 3 || !it.Pending {
		t.Fatalf("expected optimistic like with pending marker, got %+v", it)
	}
	if h.store.TotalCalls() != calls {
		t.Fatalf("local phase must not reach the store")
	}
	if cmd == nil {
		t.Fatalf("expected remote write cmd")
	}

	updated = apply(t, updated, cmd)
	it = item(t, updated, "p-1")
	if it.Pending || !it.Post.LikedByViewer || it.Post.LikesCount != 3 {
		t.Fatalf("expected confirmed like, got %+v", it)
	}
	if updated.err != nil {
		t.Fatalf("unexpected error: %v", updated.err)
	}
}

func TestLikeKey_SecondToggleWhileInFlightIsRejected(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, first := press(m, 'l')
	m, second := press(m, 'l')
	if second != nil {
		t.Fatalf("expected no second write while the first is in flight")
	}
	if m.notice == "" {
		t.Fatalf("expected in-flight notice")
	}
	m = apply(t, m, first)
	if it := item(t, m, "p-1"); !it.Post.LikedByViewer {
		t.Fatalf("first toggle should stand, got %+v", it)
	}
}

func TestLikeKey_FailureRevertsAndReports(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	h.store.FailNext("InsertLike", errBoom)

	m, cmd := press(m, 'l')
	m = apply(t, m, cmd)

	it := item(t, m, "p-1")
	if it.Post.LikedByViewer || it.Post.LikesCount != 2 || it.Pending {
		t.Fatalf("expected reverted like, got %+v", it)
	}
	var me *domain.MutationError
	if !errors.As(m.err, &me) || !me.Reverted {
		t.Fatalf("expected reverted mutation error, got %v", m.err)
	}
	if out := m.View(); !containsAll(out, "change undone") {
		t.Fatalf("expected status line to mention the revert")
	}
}

func TestPostComment_UpdatesListAndCounter(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, cmd := m.Update(keyEnter())
	if !m.showComments || m.commentsPostID != "p-1" {
		t.Fatalf("expected comments overlay for p-1")
	}
	m = apply(t, m, cmd)
	if m.commentsLoading || len(m.comments) != 0 {
		t.Fatalf("expected empty loaded comments, got %d loading=%v", len(m.comments), m.commentsLoading)
	}

	m.inputActive = true
	m.input.SetValue("  great shot  ")
	m, cmd = m.Update(keyEnter())
	if !m.posting || cmd == nil {
		t.Fatalf("expected comment post to start")
	}
	m = apply(t, m, cmd)

	if len(m.comments) != 1 || m.comments[0].Content != "great shot" {
		t.Fatalf("expected re-queried comment list, got %+v", m.comments)
	}
	if it := item(t, m, "p-1"); it.Post.CommentsCount != 1 {
		t.Fatalf("expected comment counter 1, got %d", it.Post.CommentsCount)
	}
	if m.input.Value() != "" || m.notice != "Comment posted." {
		t.Fatalf("expected input reset and notice, got %q / %q", m.input.Value(), m.notice)
	}
}

func TestPostComment_BlankIsRejectedLocally(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	m.showComments = true
	m.commentsPostID = "p-1"
	m.inputActive = true
	m.input.SetValue("   ")
	calls := h.store.Calls("InsertComment")

	m, cmd := m.Update(keyEnter())
	m = apply(t, m, cmd)

	if h.store.Calls("InsertComment") != calls {
		t.Fatalf("blank comment must not reach the store")
	}
	if m.notice != "Comment cannot be empty." || m.posting {
		t.Fatalf("expected validation notice, got %q posting=%v", m.notice, m.posting)
	}
}

func TestCommentsLoaded_IgnoresOtherPost(t *testing.T) {
	m := New(Options{})
	m.showComments = true
	m.commentsPostID = "p-1"
	m.commentsLoading = true

	m, _ = m.Update(CommentsLoadedMsg{PostID: "p-2", Comments: []domain.Comment{{ID: "c"}}})
	if len(m.comments) != 0 || !m.commentsLoading {
		t.Fatalf("comments for another post must be dropped")
	}
}

func TestFollowFromProfile_UpdatesPage(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, cmd := press(m, 'p')
	if !m.showProfile || !m.profileLoading {
		t.Fatalf("expected profile overlay to open loading")
	}
	m = apply(t, m, cmd)
	if m.page.Profile.Username != "bob" || m.page.Following || m.page.IsOwn {
		t.Fatalf("unexpected profile page: %+v", m.page)
	}

	m, cmd = press(m, 'f')
	if !m.followBusy {
		t.Fatalf("expected follow to be in flight")
	}
	m = apply(t, m, cmd)
	if !m.page.Following || m.page.Profile.FollowersCount != 1 || m.followBusy {
		t.Fatalf("expected following with one follower, got %+v busy=%v", m.page, m.followBusy)
	}
}

func TestFollowOwnProfile_IsIgnored(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m, cmd := press(m, 'P')
	m = apply(t, m, cmd)
	if !m.page.IsOwn {
		t.Fatalf("expected own profile page")
	}
	_, cmd = press(m, 'f')
	if cmd != nil {
		t.Fatalf("follow on own profile must not issue a request")
	}
}

func TestProfileLoaded_DropsSupersededRequest(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	bobCmd := m.openProfile("bob")
	meCmd := m.openProfile("me")
	m = apply(t, m, meCmd)
	m = apply(t, m, bobCmd)

	if m.page.Profile.Username != "me" || !m.page.IsOwn {
		t.Fatalf("late response for an earlier profile replaced the page: %+v", m.page.Profile)
	}
	if m.profileLoading {
		t.Fatalf("expected loading to end with the requested profile")
	}
}

func TestPostComment_RefreshFailureStillClearsInput(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	m, cmd := m.Update(keyEnter())
	m = apply(t, m, cmd)

	m.inputActive = true
	m.input.SetValue("nice")
	h.store.FailNext("SelectComments", errBoom)
	m, cmd = m.Update(keyEnter())
	m = apply(t, m, cmd)

	if h.store.Calls("InsertComment") != 1 {
		t.Fatalf("expected the comment to be stored once")
	}
	if m.input.Value() != "" || m.posting {
		t.Fatalf("stored comment must not stay in the input, got %q posting=%v", m.input.Value(), m.posting)
	}
	if m.commentsErr != nil || !containsAll(m.notice, "posted", "refresh") {
		t.Fatalf("expected posted-but-not-refreshed notice, got %q err=%v", m.notice, m.commentsErr)
	}
	if it := item(t, m, "p-1"); it.Post.CommentsCount != 1 {
		t.Fatalf("expected comment counter 1, got %d", it.Post.CommentsCount)
	}
}

func TestLikeKey_OutdatedViewIsResynced(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	// Another path liked p-1 after the model last read the view.
	if err := h.sync.ToggleLike(t.Context(), "p-1", false); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	m, cmd := press(m, 'l')
	if cmd != nil {
		t.Fatalf("outdated toggle must not issue a write")
	}
	if it := item(t, m, "p-1"); !it.Post.LikedByViewer || it.Post.LikesCount != 3 {
		t.Fatalf("expected view resynced to the liked post, got %+v", it.Post)
	}
	if m.notice == "" {
		t.Fatalf("expected a notice asking to retry")
	}
}
