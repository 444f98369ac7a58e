package feed

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	previewWidth  = 28
	previewHeight = 14
	maxImageBytes = 8 << 20
)

var previewClient = &http.Client{Timeout: 8 * time.Second}

func mediaPreviewKey(url string) string {
	return "post|" + url
}

// ensureMediaPreviewCmd queues a preview fetch for the focused post image.
func (m *Model) ensureMediaPreviewCmd() tea.Cmd {
	if !m.showMediaPreview {
		return nil
	}
	p, ok := m.SelectedPost()
	if !ok {
		return nil
	}
	url := strings.TrimSpace(p.ImageURL)
	if url == "" {
		return nil
	}
	k := mediaPreviewKey(url)
	if _, ok := m.mediaPreview[k]; ok || m.mediaLoading[k] {
		return nil
	}
	m.mediaLoading[k] = true
	return fetchMediaPreview(url, k, previewWidth, previewHeight)
}

func (m Model) handleMediaMsg(msg tea.Msg) (Model, tea.Cmd) {
	loaded, ok := msg.(MediaPreviewLoadedMsg)
	if !ok {
		return m, nil
	}
	delete(m.mediaLoading, loaded.Key)
	if loaded.Err != nil {
		// Cache the failure so the same URL is not retried on every move.
		m.mediaPreview[loaded.Key] = ""
		return m, nil
	}
	m.mediaPreview[loaded.Key] = loaded.Preview
	return m, nil
}

func fetchMediaPreview(url, key string, w, h int) tea.Cmd {
	return func() tea.Msg {
		preview, err := loadMediaPreview(url, w, h)
		return MediaPreviewLoadedMsg{Key: key, Preview: preview, Err: err}
	}
}

func loadMediaPreview(url string, w, h int) (string, error) {
	resp, err := previewClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("preview status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return renderANSIThumbnail(img, w, h), nil
}

// renderANSIThumbnail draws img as w×h cells. Each cell is a half block, so
// one cell carries two vertically stacked pixels.
func renderANSIThumbnail(img image.Image, w, h int) string {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ""
	}
	w = max(w, 4)
	h = max(h, 2)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var out strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			top := color.NRGBAModel.Convert(dst.At(x, y*2)).(color.NRGBA)
			bot := color.NRGBAModel.Convert(dst.At(x, y*2+1)).(color.NRGBA)
			fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		out.WriteString("\x1b[0m")
		if y < h-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}
