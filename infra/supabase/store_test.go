package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

type staticToken string

func (s staticToken) AccessToken() (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) AccessToken() (string, error) { return "", errors.New("no session") }

type handlerRoundTripper struct {
	h http.Handler
}

func (rt handlerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := newResponseRecorder()
	rt.h.ServeHTTP(rec, req)
	return rec.response(req), nil
}

type responseRecorder struct {
	header http.Header
	body   strings.Builder
	code   int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header         { return r.header }
func (r *responseRecorder) Write(p []byte) (int, error) { return r.body.Write(p) }
func (r *responseRecorder) WriteHeader(statusCode int)  { r.code = statusCode }

func (r *responseRecorder) response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: r.code,
		Header:     r.header.Clone(),
		Body:       io.NopCloser(strings.NewReader(r.body.String())),
		Request:    req,
	}
}

func newTestClient(h http.Handler) *Client {
	return &Client{
		baseURL:       "http://example.test",
		apiKey:        "anon-key",
		tokenProvider: staticToken("tok"),
		http:          &http.Client{Transport: handlerRoundTripper{h: h}},
	}
}

func TestStore_SelectPosts_RequestShapeAndMapping(t *testing.T) {
	var gotPath string
	var gotSelect, gotOrder string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSelect = r.URL.Query().Get("select")
		gotOrder = r.URL.Query().Get("order")
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Fatalf("missing auth header: %q", auth)
		}
		if key := r.Header.Get("apikey"); key != "anon-key" {
			t.Fatalf("missing apikey header: %q", key)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":             "p1",
			"user_id":        "u1",
			"image_url":      "https://img/p1.jpg",
			"caption":        "sunset \x1b[31mred\x1b[0m",
			"likes_count":    3,
			"comments_count": 1,
			"created_at":     "2025-03-01T10:00:00.123456+00:00",
			"profiles": map[string]any{
				"username":   "ann",
				"avatar_url": nil,
				"full_name":  "Ann",
			},
		}, {
			"id":             "p2",
			"user_id":        "u2",
			"image_url":      "https://img/p2.jpg",
			"caption":        nil,
			"likes_count":    0,
			"comments_count": 0,
			"created_at":     "2025-02-01T10:00:00Z",
			"profiles":       nil,
		}})
	})

	posts, err := NewStore(newTestClient(h)).SelectPosts(context.Background())
	if err != nil {
		t.Fatalf("select posts failed: %v", err)
	}
	if gotPath != "/rest/v1/posts" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotSelect != "*,profiles(username,avatar_url,full_name)" {
		t.Fatalf("unexpected select: %q", gotSelect)
	}
	if gotOrder != "created_at.desc,id.asc" {
		t.Fatalf("unexpected order: %q", gotOrder)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	p := posts[0]
	if p.ID != "p1" || p.LikesCount != 3 || p.Author.Username != "ann" {
		t.Fatalf("unexpected mapping: %+v", p)
	}
	if strings.Contains(p.CaptionText(), "\x1b") || !strings.Contains(p.CaptionText(), "red") {
		t.Fatalf("expected sanitized caption: %q", p.CaptionText())
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("expected created_at parsed")
	}
	if posts[1].Caption != nil {
		t.Fatalf("expected nil caption, got %q", *posts[1].Caption)
	}
}

func TestStore_LikedPostIDs_SingleBatchedQuery(t *testing.T) {
	calls := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		q := r.URL.Query()
		if r.URL.Path != "/rest/v1/likes" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if q.Get("user_id") != "eq.viewer" {
			t.Fatalf("unexpected user filter: %q", q.Get("user_id"))
		}
		if q.Get("post_id") != `in.("a","b","c")` {
			t.Fatalf("unexpected post filter: %q", q.Get("post_id"))
		}
		_, _ = w.Write([]byte(`[{"post_id":"b"}]`))
	})

	liked, err := NewStore(newTestClient(h)).LikedPostIDs(context.Background(), "viewer", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("liked ids failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one request, got %d", calls)
	}
	if !liked["b"] || liked["a"] || liked["c"] {
		t.Fatalf("unexpected liked set: %+v", liked)
	}
}

func TestStore_LikedPostIDs_ChunksLargeFeeds(t *testing.T) {
	ids := make([]string, 250)
	for i := range ids {
		ids[i] = "post-" + strconv.Itoa(i)
	}
	var sizes []int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter := strings.TrimSuffix(strings.TrimPrefix(r.URL.Query().Get("post_id"), "in.("), ")")
		parts := strings.Split(filter, ",")
		sizes = append(sizes, len(parts))
		// Every chunk reports its first id as liked.
		_, _ = w.Write([]byte(`[{"post_id":` + parts[0] + `}]`))
	})

	liked, err := NewStore(newTestClient(h)).LikedPostIDs(context.Background(), "viewer", ids)
	if err != nil {
		t.Fatalf("liked ids failed: %v", err)
	}
	if len(sizes) != 3 || sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Fatalf("unexpected chunk sizes: %v", sizes)
	}
	if len(liked) != 3 || !liked["post-0"] || !liked["post-100"] || !liked["post-200"] {
		t.Fatalf("results from every chunk must be merged: %+v", liked)
	}
}

func TestStore_LikedPostIDs_EmptySkipsRequest(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL)
	})
	liked, err := NewStore(newTestClient(h)).LikedPostIDs(context.Background(), "viewer", nil)
	if err != nil || len(liked) != 0 {
		t.Fatalf("expected empty result, got %v %v", liked, err)
	}
}

func TestStore_InsertLike_ConflictMapsToDomain(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/likes" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Fatalf("missing Prefer header")
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["user_id"] != "viewer" || body["post_id"] != "p1" {
			t.Fatalf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value"}`))
	})

	err := NewStore(newTestClient(h)).InsertLike(context.Background(), "viewer", "p1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected APIError with 409, got %v", err)
	}
}

func TestStore_DeleteLike_FiltersByViewerAndPost(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", r.Method)
		}
		if q.Get("user_id") != "eq.viewer" || q.Get("post_id") != "eq.p1" {
			t.Fatalf("unexpected filters: %v", q)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := NewStore(newTestClient(h)).DeleteLike(context.Background(), "viewer", "p1"); err != nil {
		t.Fatalf("delete like failed: %v", err)
	}
}

func TestStore_SelectProfile_EmptyIsNotFound(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != "eq.ghost" {
			t.Fatalf("unexpected filter: %v", r.URL.Query())
		}
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := NewStore(newTestClient(h)).SelectProfile(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_InsertPost_SendsNullCaption(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if v, ok := body["caption"]; !ok || v != nil {
			t.Fatalf("expected explicit null caption, got %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"new","user_id":"u1","image_url":"https://x","caption":null,"created_at":"2025-03-01T10:00:00Z","profiles":{"username":"ann"}}]`))
	})
	p, err := NewStore(newTestClient(h)).InsertPost(context.Background(), app.NewPostRow{UserID: "u1", ImageURL: "https://x"})
	if err != nil {
		t.Fatalf("insert post failed: %v", err)
	}
	if p.ID != "new" || p.Author.Username != "ann" {
		t.Fatalf("unexpected post: %+v", p)
	}
}

func TestStore_SelectStories_FiltersExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("expires_at"); got != "gt.2025-03-01T11:00:00Z" {
			t.Fatalf("unexpected expiry filter: %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "created_at.desc" {
			t.Fatalf("unexpected order: %q", got)
		}
		_, _ = w.Write([]byte(`[{"id":"s1","user_id":"u1","image_url":"https://s","created_at":"2025-03-01T10:00:00Z","expires_at":"2025-03-02T10:00:00Z","profiles":{"username":"ann"}}]`))
	})
	stories, err := NewStore(newTestClient(h)).SelectStories(context.Background(), now)
	if err != nil {
		t.Fatalf("select stories failed: %v", err)
	}
	if len(stories) != 1 || stories[0].Author.Username != "ann" {
		t.Fatalf("unexpected stories: %+v", stories)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized: domain.ErrUnauthorized,
		http.StatusNotFound:     domain.ErrNotFound,
		http.StatusConflict:     domain.ErrConflict,
	}
	for status, want := range cases {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := newTestClient(h).Get(context.Background(), "/rest/v1/posts")
		if !errors.Is(err, want) {
			t.Fatalf("status %d: expected %v, got %v", status, want, err)
		}
	}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := newTestClient(h).Get(context.Background(), "/rest/v1/posts")
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected plain API error, got %v", err)
	}
}

func TestClient_MissingTokenIsUnauthorized(t *testing.T) {
	c := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("request should not be sent")
	}))
	c.tokenProvider = failingToken{}
	_, err := c.Get(context.Background(), "/rest/v1/posts")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSanitizeForTerminal_RemovesEscapesAndControls(t *testing.T) {
	in := "ok\x1b[31mred\x1b[0m\x1b]8;;http://x\x07bad\x01\x02\nnext"
	got := sanitizeForTerminal(in)
	if strings.Contains(got, "\x1b") {
		t.Fatalf("expected ansi removed: %q", got)
	}
	if strings.ContainsRune(got, '\x01') || strings.ContainsRune(got, '\x02') {
		t.Fatalf("expected controls removed: %q", got)
	}
	if !strings.Contains(got, "ok") || !strings.Contains(got, "red") || !strings.Contains(got, "\nnext") {
		t.Fatalf("expected plain text preserved: %q", got)
	}
}
