package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

// ProcessVerificationUseCase runs queued verifications on the worker.
type ProcessVerificationUseCase struct {
	repo            ports.VerificationRepository
	storage         ports.ObjectStorage
	verifier        ports.DocumentVerifier
	queue           ports.MessageQueue
	acceptThreshold float64
	logger          *slog.Logger
}

func NewProcessVerificationUseCase(
	repo ports.VerificationRepository,
	storage ports.ObjectStorage,
	verifier ports.DocumentVerifier,
	queue ports.MessageQueue,
	acceptThreshold float64,
	logger *slog.Logger,
) *ProcessVerificationUseCase {
	if acceptThreshold <= 0 {
		acceptThreshold = domain.DefaultAcceptThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessVerificationUseCase{
		repo:            repo,
		storage:         storage,
		verifier:        verifier,
		queue:           queue,
		acceptThreshold: acceptThreshold,
		logger:          logger,
	}
}

func (uc *ProcessVerificationUseCase) ProcessByID(ctx context.Context, verificationID string) error {
	if err := uc.markStatus(ctx, verificationID, domain.VerificationProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	v, report, err := uc.processPipeline(ctx, verificationID)
	if err != nil {
		if failErr := uc.markFailed(ctx, verificationID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	v.ApplyReport(*report, uc.acceptThreshold)
	if err := uc.repo.SaveReport(ctx, v.ID, v.Status, *report); err != nil {
		err = fmt.Errorf("save report: %w", err)
		if failErr := uc.markFailed(ctx, verificationID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.queue.PublishVerificationCompleted(ctx, *v); err != nil {
		// The report is already stored; a lost notification must not re-run the job.
		uc.logger.Warn("verification_completed_publish_failed", "verification_id", v.ID, "error", err)
	}
	return nil
}

func (uc *ProcessVerificationUseCase) processPipeline(ctx context.Context, verificationID string) (*domain.Verification, *domain.VerificationReport, error) {
	v, err := uc.repo.GetByID(ctx, verificationID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch verification by id: %w", err)
	}

	path, err := uc.storage.Path(v.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve stored document: %w", err)
	}

	report, err := uc.run(ctx, domain.VerificationRequest{
		SourcePath:   path,
		MimeType:     v.MimeType,
		DocumentType: v.DocumentType,
	})
	if err != nil {
		return nil, nil, err
	}
	return v, report, nil
}

// run drains the event sequence and returns the final report.
func (uc *ProcessVerificationUseCase) run(ctx context.Context, req domain.VerificationRequest) (*domain.VerificationReport, error) {
	for event := range uc.verifier.Verify(ctx, req) {
		switch event.Kind {
		case domain.EventDone:
			if event.Report == nil {
				return nil, domain.WrapError(domain.ErrInvalidInput, "verify document", errors.New("done event without report"))
			}
			return event.Report, nil
		case domain.EventError:
			if event.Err != nil {
				return nil, fmt.Errorf("verify document: %w", event.Err)
			}
			return nil, fmt.Errorf("verify document: %s", event.Message)
		}
	}
	cause := ctx.Err()
	if cause == nil {
		cause = errors.New("event sequence ended without a result")
	}
	return nil, domain.WrapError(domain.ErrCancelled, "verify document", cause)
}

func (uc *ProcessVerificationUseCase) markStatus(ctx context.Context, verificationID string, status domain.VerificationStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, verificationID, status, errMessage)
}

func (uc *ProcessVerificationUseCase) markFailed(ctx context.Context, verificationID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	// The job context may already be cancelled; record the failure regardless.
	return uc.markStatus(context.WithoutCancel(ctx), verificationID, domain.VerificationFailed, processErr.Error())
}
