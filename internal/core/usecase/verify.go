package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

// DefaultSummary is reported when the summarizer fails.
const DefaultSummary = "Summary unavailable for this document."

// Run outcomes reported to the observer.
const (
	OutcomeDone      = "done"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// PageClassifier decides the final class of one page.
type PageClassifier interface {
	Classify(ctx context.Context, page domain.PageImage) domain.PageRecord
}

// SignatureScanner produces the document-level signature verdict.
type SignatureScanner interface {
	Detect(ctx context.Context, pages []domain.PageImage) domain.SignatureVerdict
}

// ChecklistComparator scores classified pages against a checklist.
type ChecklistComparator interface {
	Compare(pages []domain.PageRecord, docType domain.DocumentType, verdict domain.SignatureVerdict) ([]domain.VerificationItemResult, error)
}

// VerificationObserver receives pipeline measurements.
type VerificationObserver interface {
	StartRun()
	ObservePage(record domain.PageRecord)
	ObserveSignature(verdict domain.SignatureVerdict)
	FinishRun(outcome string, duration time.Duration, report *domain.VerificationReport)
}

type nopObserver struct{}

func (nopObserver) StartRun() {}

func (nopObserver) ObservePage(domain.PageRecord) {}

func (nopObserver) ObserveSignature(domain.SignatureVerdict) {}

func (nopObserver) FinishRun(string, time.Duration, *domain.VerificationReport) {}

type VerifyOptions struct {
	// WorkDir is the parent of per-run raster directories; "" means os.TempDir.
	WorkDir         string
	AcceptThreshold float64
	Observer        VerificationObserver
	Logger          *slog.Logger
}

// VerifyDocumentUseCase drives one document through opening, rendering,
// signature scanning, page classification, checklist comparison and
// summarization, reporting progress as it goes.
type VerifyDocumentUseCase struct {
	opener     ports.DocumentOpener
	rasterizer ports.Rasterizer
	classifier PageClassifier
	signatures SignatureScanner
	comparator ChecklistComparator
	summarizer ports.Summarizer
	ocr        ports.TextRecognizer

	workDir         string
	acceptThreshold float64
	observer        VerificationObserver
	logger          *slog.Logger
}

func NewVerifyDocumentUseCase(
	opener ports.DocumentOpener,
	rasterizer ports.Rasterizer,
	classifier PageClassifier,
	signatures SignatureScanner,
	comparator ChecklistComparator,
	summarizer ports.Summarizer,
	ocr ports.TextRecognizer,
	opts VerifyOptions,
) *VerifyDocumentUseCase {
	uc := &VerifyDocumentUseCase{
		opener:          opener,
		rasterizer:      rasterizer,
		classifier:      classifier,
		signatures:      signatures,
		comparator:      comparator,
		summarizer:      summarizer,
		ocr:             ocr,
		workDir:         opts.WorkDir,
		acceptThreshold: opts.AcceptThreshold,
		observer:        opts.Observer,
		logger:          opts.Logger,
	}
	if uc.acceptThreshold <= 0 {
		uc.acceptThreshold = domain.DefaultAcceptThreshold
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	if uc.logger == nil {
		uc.logger = slog.Default()
	}
	return uc
}

// Verify returns a single-use event sequence for req. Stopping the range loop
// or cancelling ctx ends the run at the next checkpoint; the raster directory
// and, with DiscardSource, the source file are removed before the loop exits.
func (uc *VerifyDocumentUseCase) Verify(ctx context.Context, req domain.VerificationRequest) iter.Seq[domain.ProgressEvent] {
	var consumed atomic.Bool
	return func(yield func(domain.ProgressEvent) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}
		run := &verificationRun{uc: uc, ctx: ctx, req: req, yield: yield}
		run.execute()
	}
}

var errStopped = errors.New("event consumer stopped")

type verificationRun struct {
	uc    *VerifyDocumentUseCase
	ctx   context.Context
	req   domain.VerificationRequest
	yield func(domain.ProgressEvent) bool

	percent   int
	workspace string
	outcome   string
}

func (r *verificationRun) execute() {
	started := time.Now()
	r.uc.observer.StartRun()
	r.outcome = OutcomeCancelled
	var report *domain.VerificationReport

	defer func() {
		r.cleanup()
		r.uc.observer.FinishRun(r.outcome, time.Since(started), report)
		r.uc.logger.Info("verification_finished",
			"outcome", r.outcome,
			"document_type", r.req.DocumentType,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}()

	result, err := r.pipeline()
	switch {
	case err == nil:
		report = result
		r.outcome = OutcomeDone
		r.emitTerminal(domain.ProgressEvent{
			Kind:    domain.EventDone,
			Stage:   domain.StageDone,
			Message: "verification complete",
			Percent: 100,
			Report:  result,
		})
	case errors.Is(err, errStopped), domain.IsKind(err, domain.ErrCancelled), r.ctx.Err() != nil:
		r.outcome = OutcomeCancelled
	default:
		r.outcome = OutcomeError
		r.uc.logger.Error("verification_failed", "document_type", r.req.DocumentType, "error", err)
		r.emitTerminal(domain.ProgressEvent{
			Kind:    domain.EventError,
			Stage:   domain.StageError,
			Message: errorMessage(err),
			Percent: r.percent,
			Err:     err,
		})
	}
}

func (r *verificationRun) pipeline() (*domain.VerificationReport, error) {
	uc := r.uc

	if err := r.step(domain.StageOpening, "opening document", 0); err != nil {
		return nil, err
	}
	doc, err := uc.opener.Open(r.ctx, r.req.SourcePath, r.req.MimeType)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDocumentOpen, "open document", err)
	}
	if err := r.step(domain.StageOpening, fmt.Sprintf("document has %d pages", doc.PageCount), 5); err != nil {
		return nil, err
	}

	if err := r.step(domain.StageRendering, "rendering pages", 5); err != nil {
		return nil, err
	}
	pages, err := r.render(doc)
	if err != nil {
		return nil, err
	}
	if err := r.step(domain.StageRendering, fmt.Sprintf("rendered %d pages", len(pages)), 10); err != nil {
		return nil, err
	}

	if err := r.step(domain.StageScanningSignature, "scanning for signatures", 10); err != nil {
		return nil, err
	}
	verdict := uc.signatures.Detect(r.ctx, pages)
	uc.observer.ObserveSignature(verdict)
	uc.logger.Info("signature_scan", "status", verdict.Status, "page", verdict.Page, "reason", verdict.Reason)
	if err := r.step(domain.StageScanningSignature, signatureMessage(verdict), 20); err != nil {
		return nil, err
	}

	records := make([]domain.PageRecord, 0, len(pages))
	for i, page := range pages {
		if err := r.checkpoint(); err != nil {
			return nil, err
		}
		record := r.classifyPage(page)
		records = append(records, record)
		uc.observer.ObservePage(record)
		uc.logger.Debug("page_classified",
			"page", record.Index,
			"final_class", record.FinalClass,
			"provenance", record.Provenance,
			"model_class", record.ModelClass,
			"model_confidence", record.ModelConfidence,
		)
		msg := fmt.Sprintf("page %d/%d classified as %s", i+1, len(pages), record.FinalClass)
		if err := r.step(domain.StageClassifying, msg, 20+70*(i+1)/len(pages)); err != nil {
			return nil, err
		}
	}

	if err := r.step(domain.StageComparing, "comparing with checklist", 95); err != nil {
		return nil, err
	}
	items, err := uc.comparator.Compare(records, r.req.DocumentType, verdict)
	if err != nil {
		return nil, err
	}
	score := domain.Score(items)

	if err := r.step(domain.StageSummarizing, "composing summary", 98); err != nil {
		return nil, err
	}
	summary := r.summarize(doc, records)
	if err := r.checkpoint(); err != nil {
		return nil, err
	}

	return &domain.VerificationReport{
		DocumentType: r.req.DocumentType,
		Items:        items,
		Score:        score,
		Level:        domain.LevelFor(score, uc.acceptThreshold),
		Summary:      summary,
		Signature:    verdict,
		Pages:        records,
	}, nil
}

func (r *verificationRun) render(doc domain.SourceDocument) ([]domain.PageImage, error) {
	dir, err := os.MkdirTemp(r.uc.workDir, "verify-*")
	if err != nil {
		return nil, domain.WrapError(domain.ErrRender, "create raster workspace", err)
	}
	r.workspace = dir

	pages, err := r.uc.rasterizer.Render(r.ctx, doc, dir)
	if err != nil {
		if r.ctx.Err() != nil {
			return nil, domain.WrapError(domain.ErrCancelled, "render pages", r.ctx.Err())
		}
		return nil, domain.WrapError(domain.ErrRender, "render pages", err)
	}
	return pages, nil
}

// classifyPage contains any per-page failure to that page.
func (r *verificationRun) classifyPage(page domain.PageImage) (record domain.PageRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			r.uc.logger.Error("page_classification_failed", "page", page.Index, "panic", fmt.Sprint(rec))
			record = domain.PageRecord{
				Index:      page.Index,
				ImageRef:   page.Path,
				FinalClass: domain.CategoryUnknown,
				ModelClass: domain.CategoryUnknown,
				Provenance: domain.ProvenanceModel,
			}
		}
	}()

	record = r.uc.classifier.Classify(r.ctx, page)
	record.Index = page.Index
	record.ModelConfidence = domain.ClampConfidence(record.ModelConfidence)
	if !record.FinalClass.IsKnown() {
		record.FinalClass = domain.CategoryUnknown
	}
	return record
}

// summarize feeds every page's text to the summarizer. Pages classified by
// the model alone take their text from the document text layer or OCR.
func (r *verificationRun) summarize(doc domain.SourceDocument, records []domain.PageRecord) string {
	texts := make([]string, len(records))
	classes := make([]domain.Category, len(records))
	for i, rec := range records {
		classes[i] = rec.FinalClass
		switch {
		case rec.TextExtracted:
			texts[i] = rec.Text
		case doc.PageText(rec.Index) != "":
			texts[i] = doc.PageText(rec.Index)
		case r.uc.ocr != nil:
			texts[i] = r.uc.ocr.ExtractText(r.ctx, domain.PageImage{Index: rec.Index, Path: rec.ImageRef})
		}
	}

	summary, err := r.uc.summarizer.Summarize(r.ctx, texts, classes)
	if err != nil {
		r.uc.logger.Warn("summary_failed", "error", err)
		return DefaultSummary
	}
	if summary == "" {
		return DefaultSummary
	}
	return summary
}

// step is a checkpoint followed by a progress event.
func (r *verificationRun) step(stage domain.Stage, message string, percent int) error {
	if err := r.checkpoint(); err != nil {
		return err
	}
	if percent < r.percent {
		percent = r.percent
	}
	r.percent = percent
	r.uc.logger.Debug("verification_stage", "stage", stage, "progress", percent, "message", message)
	if !r.yield(domain.ProgressEvent{
		Kind:    domain.EventProgress,
		Stage:   stage,
		Message: message,
		Percent: percent,
	}) {
		return errStopped
	}
	return nil
}

func (r *verificationRun) checkpoint() error {
	if err := r.ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCancelled, "verification checkpoint", err)
	}
	return nil
}

func (r *verificationRun) emitTerminal(event domain.ProgressEvent) {
	if event.Percent < r.percent {
		event.Percent = r.percent
	}
	r.percent = event.Percent
	r.yield(event)
}

func (r *verificationRun) cleanup() {
	if r.workspace != "" {
		if err := os.RemoveAll(r.workspace); err != nil {
			r.uc.logger.Warn("workspace_cleanup_failed", "path", r.workspace, "error", err)
		}
	}
	if r.outcome != OutcomeDone && r.req.DiscardSource && r.req.SourcePath != "" {
		if err := os.Remove(r.req.SourcePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.uc.logger.Warn("source_cleanup_failed", "path", r.req.SourcePath, "error", err)
		}
	}
}

func signatureMessage(v domain.SignatureVerdict) string {
	switch v.Status {
	case domain.SignatureFound:
		return fmt.Sprintf("signature found on page %d", v.Page+1)
	case domain.SignatureError:
		return "signature scan failed: " + v.Reason
	default:
		return "no signature found"
	}
}

func errorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrDocumentOpen):
		return "document cannot be opened"
	case domain.IsKind(err, domain.ErrRender):
		return "document pages cannot be rendered"
	case domain.IsKind(err, domain.ErrUnknownDocumentType):
		return "document type is not supported"
	default:
		return "verification failed"
	}
}
