package ports

import (
	"context"
	"io"
	"iter"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// DocumentVerifier runs one verification pipeline and streams its events.
// The sequence is single-use; breaking out of the range loop cancels the run.
type DocumentVerifier interface {
	Verify(ctx context.Context, req domain.VerificationRequest) iter.Seq[domain.ProgressEvent]
}

// VerificationSubmitter is the inbound contract for asynchronous submission.
type VerificationSubmitter interface {
	Submit(ctx context.Context, filename, mimeType string, docType domain.DocumentType, body io.Reader) (*domain.Verification, error)
}

// VerificationStreamer verifies an upload synchronously and records the outcome.
type VerificationStreamer interface {
	Stream(ctx context.Context, filename, mimeType string, docType domain.DocumentType, body io.Reader) (iter.Seq[domain.ProgressEvent], error)
	DiscardUpload(ctx context.Context, key string) error
}

// VerificationReader is the read model for verification records.
type VerificationReader interface {
	GetByID(ctx context.Context, id string) (*domain.Verification, error)
	List(ctx context.Context, limit int) ([]domain.Verification, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id string) (domain.ExportedReport, error)
}

// VerificationProcessor is the inbound contract for queued verification jobs.
type VerificationProcessor interface {
	ProcessByID(ctx context.Context, verificationID string) error
}
