package feedsync

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cardjinho/Instagram-v0/domain"
)

func contents(cs []domain.Comment) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Content
	}
	return out
}

func TestPostCommentTrimsAndRequeries(t *testing.T) {
	pub := &recordingPublisher{}
	f := newFixture(t, WithEvents(pub))
	f.load(t)
	ctx := context.Background()

	_, err := f.sync.PostComment(ctx, "p-a", "first")
	require.NoError(t, err)
	got, err := f.sync.PostComment(ctx, "p-a", "  second  \n")
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"first", "second"}, contents(got)); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "alice", got[1].Author.Username)
	assert.Equal(t, 2, f.store.Calls("SelectComments"), "each post re-queries")
	assert.Equal(t, 2, f.item(t, "p-a").Post.CommentsCount)

	cached, ok := f.sync.Comments("p-a")
	require.True(t, ok)
	assert.Equal(t, got, cached)
	f.flush(t)
	assert.Equal(t, []domain.EventType{domain.EventCommentCreated, domain.EventCommentCreated}, pub.types())
}

func TestPostCommentRejectsBlankWithoutRemoteCall(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	f := newFixture(t, WithMetrics(m))
	f.load(t)
	calls := f.store.TotalCalls()

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := f.sync.PostComment(context.Background(), "p-a", text)
		require.ErrorIs(t, err, domain.ErrEmptyComment)
		assert.True(t, domain.IsValidation(err))
	}
	assert.Equal(t, calls, f.store.TotalCalls())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.validations))
	assert.Zero(t, f.item(t, "p-a").Post.CommentsCount)
}

func TestPostCommentInsertFailure(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.store.FailNext("InsertComment", errBoom)

	_, err := f.sync.PostComment(context.Background(), "p-a", "hello")

	var mutErr *domain.MutationError
	require.ErrorAs(t, err, &mutErr)
	assert.Equal(t, "comment", mutErr.Op)
	assert.Zero(t, f.store.Calls("SelectComments"))
	assert.Zero(t, f.item(t, "p-a").Post.CommentsCount)
}

func TestLoadCommentsOldestFirstAndLeavesCountsAlone(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()
	for _, c := range []string{"one", "two", "three"} {
		require.NoError(t, f.store.InsertComment(ctx, bob.ID, "p-new", c))
	}
	before := f.item(t, "p-new")

	got, err := f.sync.LoadComments(ctx, "p-new")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, contents(got))
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].CreatedAt.Before(got[i-1].CreatedAt))
	}
	assert.Equal(t, before, f.item(t, "p-new"))
}

func TestLoadCommentsFailureIsSyncError(t *testing.T) {
	f := newFixture(t)
	f.store.FailNext("SelectComments", errBoom)

	_, err := f.sync.LoadComments(context.Background(), "p-a")

	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	_, ok := f.sync.Comments("p-a")
	assert.False(t, ok)
}

func TestSortCommentsTieBreaksByID(t *testing.T) {
	cs := []domain.Comment{
		{ID: "c3", CreatedAt: base},
		{ID: "c1", CreatedAt: base},
		{ID: "c0", CreatedAt: base.Add(1)},
	}
	sortComments(cs)
	assert.Equal(t, []string{"c1", "c3", "c0"}, []string{cs[0].ID, cs[1].ID, cs[2].ID})
}
