package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

// SignatureDetector scans rendered pages in order and stops at the first page
// carrying a signature-like mark.
type SignatureDetector struct {
	marker ports.SignatureMarker
}

func NewSignatureDetector(marker ports.SignatureMarker) *SignatureDetector {
	return &SignatureDetector{marker: marker}
}

// Detect returns Found for the first matching page, NotFound after a clean
// scan of every page, and Error when a page cannot be examined.
func (d *SignatureDetector) Detect(ctx context.Context, pages []domain.PageImage) domain.SignatureVerdict {
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return domain.SignatureFailed(err.Error())
		}
		found, err := d.marker.HasSignature(ctx, page)
		if err != nil {
			return domain.SignatureFailed(fmt.Sprintf("page %d: %v", page.Index+1, err))
		}
		if found {
			return domain.SignatureFoundOn(page.Index)
		}
	}
	return domain.SignatureAbsent()
}
