package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/acceptance-verifier/internal/config"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/core/usecase"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/queue/nats"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/acceptance-verifier/internal/observability/metrics"
)

type Options struct {
	Service string
	Logger  *slog.Logger
	// Registerer receives pipeline and resilience metrics when set.
	Registerer prometheus.Registerer
}

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.VerificationRepository
	SubmitUC  ports.VerificationSubmitter
	StreamUC  ports.VerificationStreamer
	ReaderUC  ports.VerificationReader
	ProcessUC ports.VerificationProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var observer usecase.VerificationObserver
	executorOpts := []resilience.Option{resilience.WithLogger(logger)}
	if opts.Registerer != nil {
		pipelineMetrics := metrics.NewPipelineMetrics(opts.Service, opts.Registerer)
		observer = pipelineMetrics
		executorOpts = append(executorOpts, resilience.WithObserver(pipelineMetrics))
	}
	queueExecutor := resilience.NewExecutor(resilience.QueueConfig(), executorOpts...)
	summaryExecutor := resilience.NewExecutor(resilience.SummaryConfig(), executorOpts...)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewVerificationRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, cfg.NATSResultSubject, nats.Options{
		ResilienceExecutor: queueExecutor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	pipeline, err := NewPipeline(cfg, logger, observer, summaryExecutor)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init verification pipeline: %w", err)
	}

	submitUC := usecase.NewSubmitVerificationUseCase(repo, storage, queue)
	streamUC := usecase.NewStreamVerificationUseCase(repo, storage, pipeline.Verifier, cfg.AcceptThreshold, logger)
	readerUC := usecase.NewVerificationQueryUseCase(repo, storage, xlsx.New())
	processUC := usecase.NewProcessVerificationUseCase(repo, storage, pipeline.Verifier, queue, cfg.AcceptThreshold, logger)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		SubmitUC:  submitUC,
		StreamUC:  streamUC,
		ReaderUC:  readerUC,
		ProcessUC: processUC,

		closeFn: func() {
			if err := pipeline.Close(); err != nil {
				logger.Warn("inference_close_failed", "error", err)
			}
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
