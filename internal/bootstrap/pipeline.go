package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/kirillkom/acceptance-verifier/internal/config"
	"github.com/kirillkom/acceptance-verifier/internal/core/checklist"
	"github.com/kirillkom/acceptance-verifier/internal/core/keywords"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/core/usecase"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/document/pdftext"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/inference/onnx"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/ocr/tesseract"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/render"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/render/fitz"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/render/imagefile"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/summary"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/summary/regex"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/vision"
)

// Pipeline is the verification engine and the adapters it owns.
type Pipeline struct {
	Verifier *usecase.VerifyDocumentUseCase
	Keywords *keywords.Engine
	Checks   *checklist.Comparator

	classifier *onnx.Classifier
}

// NewPipeline wires the document verifier. It needs no database or broker,
// so the CLI can run it against local files.
func NewPipeline(cfg config.Config, logger *slog.Logger, observer usecase.VerificationObserver, executor *resilience.Executor) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	engine, err := NewKeywordEngine(cfg)
	if err != nil {
		return nil, err
	}

	ocr := tesseract.New(tesseract.Options{
		Languages: cfg.OCRLanguages,
		DPI:       cfg.RenderDPI,
		Enhance:   true,
		Logger:    logger,
	})
	classifier := onnx.New(onnx.Config{
		ModelPath:         cfg.ModelPath,
		LabelsPath:        cfg.ClassNamesPath,
		SharedLibraryPath: cfg.ONNXRuntimeSharedLibraryPath,
		InputSize:         cfg.ModelInputSize,
	})
	pages := usecase.NewHybridPageClassifier(classifier, ocr, engine, cfg.HybridConfidenceThreshold, logger)

	signatures := usecase.NewSignatureDetector(vision.NewSignatureMarker(vision.SignatureOptions{
		MinArea:   cfg.SignatureMinArea,
		MinAspect: cfg.SignatureMinAspect,
	}))

	rasterizer := render.New(fitz.New(cfg.RenderDPI), imagefile.New(0))
	checks := checklist.Default()

	verifier := usecase.NewVerifyDocumentUseCase(
		pdftext.NewOpener(cfg.MaxPages, pdftext.WithFallbackCounter(fitz.CountPages)),
		rasterizer,
		pages,
		signatures,
		checks,
		newSummarizer(cfg, logger, executor),
		ocr,
		usecase.VerifyOptions{
			WorkDir:         cfg.WorkDir,
			AcceptThreshold: cfg.AcceptThreshold,
			Observer:        observer,
			Logger:          logger,
		},
	)

	return &Pipeline{
		Verifier:   verifier,
		Keywords:   engine,
		Checks:     checks,
		classifier: classifier,
	}, nil
}

func (p *Pipeline) Close() error {
	return p.classifier.Close()
}

// NewKeywordEngine builds the rule engine with the configured thresholds.
func NewKeywordEngine(cfg config.Config) (*keywords.Engine, error) {
	opts := []keywords.Option{keywords.WithDefaultThreshold(cfg.KeywordDefaultThreshold)}
	if cfg.KeywordRulesPath != "" {
		overrides, err := keywords.LoadOverrides(cfg.KeywordRulesPath)
		if err != nil {
			return nil, fmt.Errorf("load keyword overrides: %w", err)
		}
		opts = append(opts, keywords.WithOverrides(overrides))
	}
	return keywords.New(opts...), nil
}

// newSummarizer puts the LLM in front of the regex extractor when asked to;
// the regex backend is always the last resort.
func newSummarizer(cfg config.Config, logger *slog.Logger, executor *resilience.Executor) ports.Summarizer {
	backends := []ports.Summarizer{}
	if cfg.SummaryBackend == "ollama" {
		backends = append(backends, ollama.NewSummarizer(ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, executor)))
	}
	backends = append(backends, regex.New())
	return summary.NewChain(logger, backends...)
}
