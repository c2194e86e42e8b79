// Package imagefile treats an uploaded scan image as a one-page document.
package imagefile

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// DefaultMaxSide caps the longer edge of a normalized scan, roughly A4 at 200 dpi.
const DefaultMaxSide = 2339

type Rasterizer struct {
	maxSide int
}

func New(maxSide int) *Rasterizer {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	return &Rasterizer{maxSide: maxSide}
}

// Render decodes the scan, applies its EXIF orientation, downsizes oversized
// images and writes the single page as PNG into dir.
func (r *Rasterizer) Render(ctx context.Context, doc domain.SourceDocument, dir string) ([]domain.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Open(doc.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = r.fit(img)
	path := filepath.Join(dir, "page_0000.png")
	if err := imaging.Save(img, path); err != nil {
		return nil, fmt.Errorf("save page: %w", err)
	}
	return []domain.PageImage{{Index: 0, Path: path}}, nil
}

func (r *Rasterizer) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if longest <= r.maxSide {
		return src
	}
	scale := float64(r.maxSide) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
