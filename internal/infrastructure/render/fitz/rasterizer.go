// Package fitz renders PDF pages to PNG rasters with MuPDF.
package fitz

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/disintegration/imaging"
	gofitz "github.com/gen2brain/go-fitz"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

const DefaultDPI = 200

type Rasterizer struct {
	dpi float64
}

func New(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{dpi: float64(dpi)}
}

// Render writes one PNG per page into dir, in page order.
func (r *Rasterizer) Render(ctx context.Context, doc domain.SourceDocument, dir string) ([]domain.PageImage, error) {
	pdf, err := gofitz.New(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rendering: %w", err)
	}
	defer pdf.Close()

	count := pdf.NumPage()
	if doc.PageCount > 0 && count != doc.PageCount {
		return nil, fmt.Errorf("page count mismatch: renderer sees %d, document has %d", count, doc.PageCount)
	}

	pages := make([]domain.PageImage, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := pdf.ImageDPI(i, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("page_%04d.png", i))
		if err := imaging.Save(img, path); err != nil {
			return nil, fmt.Errorf("save page %d: %w", i+1, err)
		}
		pages = append(pages, domain.PageImage{Index: i, Path: path})
	}
	return pages, nil
}

// CountPages reports how many pages MuPDF sees in the file.
func CountPages(path string) (int, error) {
	pdf, err := gofitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer pdf.Close()
	return pdf.NumPage(), nil
}
