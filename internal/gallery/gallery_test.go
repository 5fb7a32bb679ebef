package gallery

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/Simplici0/weddingquote/internal/siteconfig"
	"github.com/Simplici0/weddingquote/internal/validation"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestOptimizeFitsLargeImages(t *testing.T) {
	out, err := Optimize(pngBytes(t, 3200, 1600))
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %q, want jpeg", format)
	}
	if got := img.Bounds().Size(); got != image.Pt(1600, 800) {
		t.Fatalf("size = %v, want 1600x800", got)
	}
}

func TestOptimizeKeepsSmallImages(t *testing.T) {
	out, err := Optimize(pngBytes(t, 640, 480))
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(640, 480) {
		t.Fatalf("size = %v, want 640x480", got)
	}
}

func TestOptimizeRejectsGarbage(t *testing.T) {
	if _, err := Optimize([]byte("not an image")); err == nil {
		t.Fatalf("expected error for non-image input")
	}
}

func TestStoreSaveAndAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewStore(dir, "/uploads/")

	img, err := s.Save(pngBytes(t, 100, 100), siteconfig.LocalizedText{IT: "Sposi al tramonto"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(img.URL, "/uploads/img_") || !strings.HasSuffix(img.URL, ".jpg") {
		t.Fatalf("url = %q", img.URL)
	}
	if _, err := os.Stat(filepath.Join(dir, strings.TrimPrefix(img.URL, "/uploads/"))); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if !validation.IsSlug(img.ID) {
		t.Fatalf("id %q is not a valid identifier", img.ID)
	}

	cfg := siteconfig.Default()
	cfg.Site.Gallery = siteconfig.Gallery{{ID: "a", URL: "/a.jpg", Order: 4}}
	Append(cfg, img)
	if n := len(cfg.Site.Gallery); n != 2 || cfg.Site.Gallery[1].Order != 5 {
		t.Fatalf("gallery = %+v", cfg.Site.Gallery)
	}
	if err := siteconfig.Validate(cfg); err != nil {
		t.Fatalf("config invalid after append: %v", err)
	}
}
