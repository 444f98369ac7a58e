package feed

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestSplitCaptionAndTags(t *testing.T) {
	caption, tags := splitCaptionAndTags("hi #One there #two\n#ONE")
	if strings.Contains(caption, "#") {
		t.Fatalf("caption still has hashtag: %q", caption)
	}
	if caption != "hi there" {
		t.Fatalf("unexpected caption: %q", caption)
	}
	if len(tags) != 2 || tags[0] != "#one" || tags[1] != "#two" {
		t.Fatalf("unexpected tags: %#v", tags)
	}
}

func TestRenderCompactTags_Overflow(t *testing.T) {
	out := renderCompactTags([]string{"#a", "#b", "#c"}, 2)
	if !strings.Contains(out, "+1 more") || strings.Contains(out, "#c") {
		t.Fatalf("unexpected tags: %q", out)
	}
	if renderCompactTags(nil, 2) != "" {
		t.Fatalf("no tags should render empty")
	}
}

func TestTruncateToTwoLines(t *testing.T) {
	got := truncateToTwoLines("a b c d e f g h i j k l m n o p q r s t u v w x y z", 12)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected two lines with ellipsis: %q", got)
	}
}

func TestRenderAuthor(t *testing.T) {
	if out := renderAuthor("  ", false); !strings.Contains(out, "@unknown") {
		t.Fatalf("blank username should fall back: %q", out)
	}
	if out := renderAuthor("me", true); !strings.Contains(out, "(you)") {
		t.Fatalf("own author should be marked: %q", out)
	}
}

func TestClipLines(t *testing.T) {
	got := clipLines("a\nb\nc\nd", 2)
	if got != "a\nb" {
		t.Fatalf("unexpected clipped output: %q", got)
	}
	if clipLines("a", 0) != "" {
		t.Fatalf("zero lines should clip everything")
	}
}

func TestClampLinesToWidth(t *testing.T) {
	got := clampLinesToWidth("abcdefgh\nab", 4)
	for _, ln := range strings.Split(got, "\n") {
		if ansi.StringWidth(ln) > 4 {
			t.Fatalf("line %q exceeds width", ln)
		}
	}
}
