package ports

import (
	"context"
	"io"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// VerificationRepository persists verification records and their reports.
type VerificationRepository interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByID(ctx context.Context, id string) (*domain.Verification, error)
	// List returns the most recent records first, without their reports.
	List(ctx context.Context, limit int) ([]domain.Verification, error)
	UpdateStatus(ctx context.Context, id string, status domain.VerificationStatus, errMessage string) error
	SaveReport(ctx context.Context, id string, status domain.VerificationStatus, report domain.VerificationReport) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Path(key string) (string, error)
}

// MessageQueue carries asynchronous verification requests and completion events.
type MessageQueue interface {
	PublishVerificationRequested(ctx context.Context, verificationID string) error
	SubscribeVerificationRequested(ctx context.Context, handler func(context.Context, string) error) error
	PublishVerificationCompleted(ctx context.Context, v domain.Verification) error
}
