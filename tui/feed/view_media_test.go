package feed

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderANSIThumbnail_Dimensions(t *testing.T) {
	out := renderANSIThumbnail(solid(40, 40, color.RGBA{R: 255, A: 255}), 10, 5)
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(lines))
	}
	if strings.Count(lines[0], "▀") != 10 {
		t.Fatalf("expected 10 cells per row")
	}
	if !strings.Contains(lines[0], "38;2;255;0;0") {
		t.Fatalf("expected red foreground")
	}
	if renderANSIThumbnail(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 5) != "" {
		t.Fatalf("empty image should render nothing")
	}
}

func TestLoadMediaPreview_DecodesServedImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, solid(8, 8, color.RGBA{B: 255, A: 255}))
	}))
	defer srv.Close()

	out, err := loadMediaPreview(srv.URL+"/ok.png", 4, 2)
	if err != nil {
		t.Fatalf("loadMediaPreview: %v", err)
	}
	if strings.Count(out, "▀") != 8 {
		t.Fatalf("expected 4x2 cells, got %q", out)
	}
	if _, err := loadMediaPreview(srv.URL+"/missing.png", 4, 2); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestEnsureMediaPreviewCmd_QueuesOnce(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	if m.ensureMediaPreviewCmd() != nil {
		t.Fatalf("hidden previews must not fetch")
	}
	m.showMediaPreview = true
	if cmd := m.ensureMediaPreviewCmd(); cmd == nil {
		t.Fatalf("expected fetch for focused post")
	}
	if cmd := m.ensureMediaPreviewCmd(); cmd != nil {
		t.Fatalf("in-flight preview must not be fetched twice")
	}
	k := mediaPreviewKey("https://img.test/1.jpg")
	if !m.mediaLoading[k] {
		t.Fatalf("expected loading marker for %s", k)
	}
}

func TestRenderPreview_States(t *testing.T) {
	m := New(Options{})
	k := mediaPreviewKey("u1")
	if out := m.renderPreview("u1"); !strings.Contains(out, "queued") {
		t.Fatalf("expected queued state")
	}
	m.mediaLoading[k] = true
	if out := m.renderPreview("u1"); !strings.Contains(out, "loading image") {
		t.Fatalf("expected loading state")
	}

	m, _ = m.Update(MediaPreviewLoadedMsg{Key: k, Err: errors.New("bad gif")})
	if m.mediaLoading[k] {
		t.Fatalf("loading marker should clear")
	}
	if out := m.renderPreview("u1"); !strings.Contains(out, "preview unavailable") {
		t.Fatalf("failed preview should be cached as unavailable")
	}

	m, _ = m.Update(MediaPreviewLoadedMsg{Key: k, Preview: "PIXELS"})
	if out := m.renderPreview("u1"); !strings.Contains(out, "PIXELS") {
		t.Fatalf("expected rendered preview")
	}
	m.showMediaPreview = false
	if m.renderPreview("u1") != "" {
		t.Fatalf("hidden previews render nothing")
	}
}

func TestWrapAndTruncate(t *testing.T) {
	lines := wrapAndTruncate("one two three four five six seven eight nine ten", 10, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	if !strings.HasSuffix(lines[1], "...") {
		t.Fatalf("expected ellipsis on last line: %v", lines)
	}
	for _, ln := range lines {
		if len([]rune(ln)) > 10 {
			t.Fatalf("line %q exceeds width", ln)
		}
	}
	if got := wrapAndTruncate("short", 10, 2); len(got) != 1 || got[0] != "short" {
		t.Fatalf("unexpected: %v", got)
	}
}
