// Package gallery stores images uploaded for the site gallery, resized and
// re-encoded as JPEG.
package gallery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/Simplici0/weddingquote/internal/siteconfig"
	"github.com/Simplici0/weddingquote/internal/validation"
)

const (
	maxDimension = 1600
	jpegQuality  = 82
)

// Optimize decodes data, fits it within maxDimension on both sides and
// returns it as JPEG.
func Optimize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &validation.ParseError{What: "image", Err: err}
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Store writes optimized images under dir and serves them from urlPrefix.
type Store struct {
	dir       string
	urlPrefix string
}

func NewStore(dir, urlPrefix string) *Store {
	return &Store{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Save optimizes data, writes it to disk and returns the gallery entry
// pointing at it. The entry is not yet part of any configuration.
func (s *Store) Save(data []byte, alt siteconfig.LocalizedText) (siteconfig.GalleryImage, error) {
	optimized, err := Optimize(data)
	if err != nil {
		return siteconfig.GalleryImage{}, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return siteconfig.GalleryImage{}, fmt.Errorf("create upload directory: %w", err)
	}

	id := "img_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	name := id + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, name), optimized, 0o644); err != nil {
		return siteconfig.GalleryImage{}, fmt.Errorf("write image: %w", err)
	}

	return siteconfig.GalleryImage{ID: id, URL: s.urlPrefix + "/" + name, Alt: alt}, nil
}

// Append adds img after the last image of cfg's gallery.
func Append(cfg *siteconfig.AppConfig, img siteconfig.GalleryImage) {
	next := 0
	for _, existing := range cfg.Site.Gallery {
		if existing.Order >= next {
			next = existing.Order + 1
		}
	}
	img.Order = next
	cfg.Site.Gallery = append(cfg.Site.Gallery, img)
}
