package resilience

import (
	"context"
	"errors"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// Rules classify the errors of one remote dependency.
type Rules struct {
	// Transient errors are retried and count against the breaker.
	Transient func(error) bool
	// Benign errors are neither retried nor counted, e.g. a rejected request.
	Benign func(error) bool
}

// Classify is an ErrorClassifier. Cancellation is never retried or counted;
// an open breaker is retried so a half-open probe can succeed.
func (r Rules) Classify(err error) ErrorClassification {
	switch {
	case err == nil:
		return ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassification{}
	case IsCircuitOpen(err):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	case r.Benign != nil && r.Benign(err):
		return ErrorClassification{}
	case r.Transient != nil && r.Transient(err):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return ErrorClassification{RecordFailure: true}
	}
}

// WrapTemporary tags an error the rules would retry with domain.ErrTemporary,
// so callers upstream can answer "try again later".
func (r Rules) WrapTemporary(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if r.Classify(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
