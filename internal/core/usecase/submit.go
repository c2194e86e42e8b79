package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

type SubmitVerificationUseCase struct {
	repo    ports.VerificationRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewSubmitVerificationUseCase(
	repo ports.VerificationRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *SubmitVerificationUseCase {
	return &SubmitVerificationUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Submit stores the upload, records it as queued and hands it to the worker.
func (uc *SubmitVerificationUseCase) Submit(
	ctx context.Context,
	filename, mimeType string,
	docType domain.DocumentType,
	body io.Reader,
) (*domain.Verification, error) {
	if !docType.IsKnown() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit verification", fmt.Errorf("unsupported document type %q", docType))
	}

	v := newVerification(filename, mimeType, docType, domain.VerificationQueued)
	if err := uc.storage.Save(ctx, v.StorageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create verification record: %w", err)
	}

	if err := uc.queue.PublishVerificationRequested(ctx, v.ID); err != nil {
		return nil, fmt.Errorf("publish verification request: %w", err)
	}

	return v, nil
}

func newVerification(filename, mimeType string, docType domain.DocumentType, status domain.VerificationStatus) *domain.Verification {
	id := uuid.NewString()
	now := time.Now().UTC()
	return &domain.Verification{
		ID:           id,
		Filename:     filename,
		MimeType:     mimeType,
		StorageKey:   fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)),
		DocumentType: docType,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// validateStorageKey rejects keys that could address files outside storage.
func validateStorageKey(key string) error {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return domain.WrapError(domain.ErrInvalidInput, "validate storage key", errors.New("invalid upload key"))
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "document.pdf"
	}
	return base
}
