package summary

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

// Chain tries each summarizer in order and returns the first non-empty result.
type Chain struct {
	backends []ports.Summarizer
	logger   *slog.Logger
}

var _ ports.Summarizer = (*Chain)(nil)

func NewChain(logger *slog.Logger, backends ...ports.Summarizer) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{backends: backends, logger: logger}
}

func (c *Chain) Summarize(ctx context.Context, texts []string, classes []domain.Category) (string, error) {
	var errs []error
	for i, backend := range c.backends {
		out, err := backend.Summarize(ctx, texts, classes)
		if err == nil && strings.TrimSpace(out) != "" {
			return out, nil
		}
		if err == nil {
			err = errors.New("empty summary")
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn("summary_backend_failed", "backend", i, "error", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", errors.New("no summary backend configured")
	}
	return "", errors.Join(errs...)
}
