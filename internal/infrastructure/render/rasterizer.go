// Package render picks the rasterizer that fits a source document.
package render

import (
	"context"
	"fmt"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/document"
)

type Rasterizer struct {
	pdf   ports.Rasterizer
	image ports.Rasterizer
}

func New(pdf, image ports.Rasterizer) *Rasterizer {
	return &Rasterizer{pdf: pdf, image: image}
}

func (r *Rasterizer) Render(ctx context.Context, doc domain.SourceDocument, dir string) ([]domain.PageImage, error) {
	switch kind := document.Detect(doc.Path, doc.MimeType); kind {
	case document.KindPDF:
		return r.pdf.Render(ctx, doc, dir)
	case document.KindImage:
		return r.image.Render(ctx, doc, dir)
	default:
		return nil, fmt.Errorf("no rasterizer for %s source", kind)
	}
}
