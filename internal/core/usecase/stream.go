package usecase

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

// StreamVerificationUseCase verifies an upload while the caller watches and
// stores the outcome only when the run completes.
type StreamVerificationUseCase struct {
	repo            ports.VerificationRepository
	storage         ports.ObjectStorage
	verifier        ports.DocumentVerifier
	acceptThreshold float64
	logger          *slog.Logger
}

func NewStreamVerificationUseCase(
	repo ports.VerificationRepository,
	storage ports.ObjectStorage,
	verifier ports.DocumentVerifier,
	acceptThreshold float64,
	logger *slog.Logger,
) *StreamVerificationUseCase {
	if acceptThreshold <= 0 {
		acceptThreshold = domain.DefaultAcceptThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamVerificationUseCase{
		repo:            repo,
		storage:         storage,
		verifier:        verifier,
		acceptThreshold: acceptThreshold,
		logger:          logger,
	}
}

// Stream saves the upload and returns the run's event sequence. Abandoning
// the sequence or a failed run removes the upload.
func (uc *StreamVerificationUseCase) Stream(
	ctx context.Context,
	filename, mimeType string,
	docType domain.DocumentType,
	body io.Reader,
) (iter.Seq[domain.ProgressEvent], error) {
	if !docType.IsKnown() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "stream verification", fmt.Errorf("unsupported document type %q", docType))
	}

	v := newVerification(filename, mimeType, docType, domain.VerificationProcessing)
	if err := uc.storage.Save(ctx, v.StorageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}
	path, err := uc.storage.Path(v.StorageKey)
	if err != nil {
		uc.discard(ctx, v.StorageKey)
		return nil, fmt.Errorf("resolve stored document: %w", err)
	}

	events := uc.verifier.Verify(ctx, domain.VerificationRequest{
		SourcePath:    path,
		MimeType:      mimeType,
		DocumentType:  docType,
		DiscardSource: true,
	})

	return func(yield func(domain.ProgressEvent) bool) {
		first := true
		for event := range events {
			if first {
				event.UploadKey = v.StorageKey
				first = false
			}
			if event.Kind == domain.EventDone && event.Report != nil {
				event = uc.persist(ctx, v, event)
			}
			if !yield(event) {
				return
			}
		}
	}, nil
}

// persist stores a finished run. A storage failure turns the done event into
// an error event and drops the upload.
func (uc *StreamVerificationUseCase) persist(ctx context.Context, v *domain.Verification, event domain.ProgressEvent) domain.ProgressEvent {
	v.ApplyReport(*event.Report, uc.acceptThreshold)
	if err := uc.repo.Create(ctx, v); err != nil {
		uc.logger.Error("verification_persist_failed", "verification_id", v.ID, "error", err)
		uc.discard(ctx, v.StorageKey)
		return domain.ProgressEvent{
			Kind:    domain.EventError,
			Stage:   domain.StageError,
			Message: "verification result could not be saved",
			Percent: event.Percent,
			Err:     fmt.Errorf("create verification record: %w", err),
		}
	}
	event.VerificationID = v.ID
	return event
}

// DiscardUpload removes an upload the client abandoned before it was stored.
// Keys that back a stored verification are refused; those files go away with
// the record.
func (uc *StreamVerificationUseCase) DiscardUpload(ctx context.Context, key string) error {
	if err := validateStorageKey(key); err != nil {
		return err
	}
	id, _, ok := strings.Cut(key, "_")
	if _, err := uuid.Parse(id); !ok || err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "discard upload", fmt.Errorf("%q is not an upload key", key))
	}
	existing, err := uc.repo.GetByID(ctx, id)
	switch {
	case err == nil && existing.StorageKey == key:
		return domain.WrapError(domain.ErrConflict, "discard upload", fmt.Errorf("upload belongs to verification %s", id))
	case err != nil && !domain.IsKind(err, domain.ErrVerificationNotFound):
		return fmt.Errorf("look up verification: %w", err)
	}
	if err := uc.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

func (uc *StreamVerificationUseCase) discard(ctx context.Context, key string) {
	if err := uc.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		uc.logger.Warn("upload_cleanup_failed", "key", key, "error", err)
	}
}
