package ports

import (
	"context"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// DocumentOpener locates and opens a source document, fixing its page count.
type DocumentOpener interface {
	Open(ctx context.Context, path, mimeType string) (domain.SourceDocument, error)
}

// Rasterizer renders every page of a document into dir, in page order.
type Rasterizer interface {
	Render(ctx context.Context, doc domain.SourceDocument, dir string) ([]domain.PageImage, error)
}

// LabelInferencer is the learned image classifier.
type LabelInferencer interface {
	Infer(ctx context.Context, page domain.PageImage) (label string, confidence float64, err error)
}

// TextRecognizer extracts page text. Implementations return "" instead of failing.
type TextRecognizer interface {
	ExtractText(ctx context.Context, page domain.PageImage) string
}

// KeywordClassifier maps page text to a category.
type KeywordClassifier interface {
	Classify(text string) domain.Category
}

// SignatureMarker tests a single page raster for a signature-like mark.
type SignatureMarker interface {
	HasSignature(ctx context.Context, page domain.PageImage) (bool, error)
}

// Summarizer produces the narrative summary of a verified document.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string, classes []domain.Category) (string, error)
}

// ReportExporter renders a report into a downloadable artifact.
type ReportExporter interface {
	Export(report domain.VerificationReport) ([]byte, error)
	ContentType() string
	FileExtension() string
}
