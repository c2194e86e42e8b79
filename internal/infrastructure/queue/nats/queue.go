package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

type Queue struct {
	conn          *nats.Conn
	pub           publisher
	subject       string
	resultSubject string
	executor      *resilience.Executor
}

var _ ports.MessageQueue = (*Queue)(nil)

// CompletionEvent is published on the result subject when a verification
// reaches a terminal state.
type CompletionEvent struct {
	ID           string                    `json:"id"`
	Filename     string                    `json:"filename"`
	DocumentType domain.DocumentType       `json:"document_type"`
	Status       domain.VerificationStatus `json:"status"`
	Score        int                       `json:"score"`
	Error        string                    `json:"error,omitempty"`
	CompletedAt  time.Time                 `json:"completed_at"`
}

func New(url, subject, resultSubject string) (*Queue, error) {
	return NewWithOptions(url, subject, resultSubject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject, resultSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("acceptance-verifier"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:          conn,
		pub:           conn,
		subject:       subject,
		resultSubject: resultSubject,
		executor:      options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishVerificationRequested(ctx context.Context, verificationID string) error {
	return q.publish(ctx, q.subject, []byte(verificationID))
}

func (q *Queue) PublishVerificationCompleted(ctx context.Context, v domain.Verification) error {
	if q.resultSubject == "" {
		return nil
	}
	payload, err := json.Marshal(CompletionEvent{
		ID:           v.ID,
		Filename:     v.Filename,
		DocumentType: v.DocumentType,
		Status:       v.Status,
		Score:        v.Score,
		Error:        v.Error,
		CompletedAt:  v.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal completion event: %w", err)
	}
	return q.publish(ctx, q.resultSubject, payload)
}

func (q *Queue) publish(ctx context.Context, subject string, data []byte) error {
	call := func(_ context.Context) error {
		if err := q.pub.Publish(subject, data); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, natsRules.Classify)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return natsRules.WrapTemporary("nats publish", err)
	}
	return nil
}

func (q *Queue) SubscribeVerificationRequested(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, string(msg.Data)); err != nil {
			slog.Error("worker_handler_failed", "verification_id", string(msg.Data), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
