package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

type VerificationQueryUseCase struct {
	repo     ports.VerificationRepository
	storage  ports.ObjectStorage
	exporter ports.ReportExporter
}

func NewVerificationQueryUseCase(
	repo ports.VerificationRepository,
	storage ports.ObjectStorage,
	exporter ports.ReportExporter,
) *VerificationQueryUseCase {
	return &VerificationQueryUseCase{repo: repo, storage: storage, exporter: exporter}
}

func (uc *VerificationQueryUseCase) GetByID(ctx context.Context, id string) (*domain.Verification, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch verification by id: %w", err)
	}
	return v, nil
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// List returns recent verifications, newest first.
func (uc *VerificationQueryUseCase) List(ctx context.Context, limit int) ([]domain.Verification, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	out, err := uc.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return out, nil
}

// Delete removes the record and its stored document.
func (uc *VerificationQueryUseCase) Delete(ctx context.Context, id string) error {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch verification by id: %w", err)
	}
	if v.StorageKey != "" {
		if err := uc.storage.Delete(ctx, v.StorageKey); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete stored document: %w", err)
		}
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete verification record: %w", err)
	}
	return nil
}

// Export renders the stored report of a finished verification.
func (uc *VerificationQueryUseCase) Export(ctx context.Context, id string) (domain.ExportedReport, error) {
	v, err := uc.GetByID(ctx, id)
	if err != nil {
		return domain.ExportedReport{}, err
	}
	if v.Report == nil {
		return domain.ExportedReport{}, domain.WrapError(domain.ErrInvalidInput, "export report", fmt.Errorf("verification %s has no report yet", id))
	}
	data, err := uc.exporter.Export(*v.Report)
	if err != nil {
		return domain.ExportedReport{}, fmt.Errorf("export report: %w", err)
	}
	return domain.ExportedReport{
		Filename:    fmt.Sprintf("verification_%s%s", v.ID, uc.exporter.FileExtension()),
		ContentType: uc.exporter.ContentType(),
		Data:        data,
	}, nil
}
