package usecase

import (
	"context"
	"log/slog"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

// DefaultConfidenceThreshold is the model confidence above which OCR is skipped.
const DefaultConfidenceThreshold = 0.75

// HybridPageClassifier combines the learned image classifier with OCR keyword
// rules. A confident model answer is final; otherwise a keyword match overrides
// the model label.
type HybridPageClassifier struct {
	inferencer ports.LabelInferencer
	ocr        ports.TextRecognizer
	keywords   ports.KeywordClassifier
	threshold  float64
	logger     *slog.Logger
}

func NewHybridPageClassifier(
	inferencer ports.LabelInferencer,
	ocr ports.TextRecognizer,
	keywords ports.KeywordClassifier,
	threshold float64,
	logger *slog.Logger,
) *HybridPageClassifier {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridPageClassifier{
		inferencer: inferencer,
		ocr:        ocr,
		keywords:   keywords,
		threshold:  threshold,
		logger:     logger,
	}
}

// Classify decides the final class of one rendered page.
func (c *HybridPageClassifier) Classify(ctx context.Context, page domain.PageImage) domain.PageRecord {
	record := domain.PageRecord{
		Index:      page.Index,
		ImageRef:   page.Path,
		FinalClass: domain.CategoryUnknown,
		ModelClass: domain.CategoryUnknown,
		Provenance: domain.ProvenanceModel,
	}

	label, confidence, err := c.inferencer.Infer(ctx, page)
	if err != nil {
		c.logger.Warn("inference_unavailable", "page", page.Index, "error", err)
	} else {
		record.ModelClass = domain.ParseCategory(label)
		record.ModelConfidence = domain.ClampConfidence(confidence)
		record.FinalClass = record.ModelClass
	}

	if record.ModelConfidence > c.threshold {
		return record
	}

	text := c.ocr.ExtractText(ctx, page)
	record.Text = text
	record.TextExtracted = true

	keywordClass := c.keywords.Classify(text)
	record.KeywordClass = keywordClass
	if keywordClass != domain.CategoryUnknown {
		record.FinalClass = keywordClass
		record.Provenance = domain.ProvenanceKeywordOverride
	}
	return record
}
