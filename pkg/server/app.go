package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PulseLab/internal/domain/models"
	drepo "PulseLab/internal/domain/repository"
	"PulseLab/internal/handler/api"
	"PulseLab/internal/service/live"
	"PulseLab/internal/usecase"
	pkgch "PulseLab/pkg/clickhouse"
	"PulseLab/pkg/config"
	xhttp "PulseLab/pkg/http"
	pkgkafka "PulseLab/pkg/kafka"
	applogger "PulseLab/pkg/logger"
	pkgqueue "PulseLab/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.FrameCollector
	manager     *usecase.SessionManager
	reports     *usecase.ReportService
	status      *live.Status
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	jobs        *pkgqueue.RedisQueue
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.FrameCollector,
	manager *usecase.SessionManager,
	reports *usecase.ReportService,
	status *live.Status,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	jobs *pkgqueue.RedisQueue,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		manager:   manager,
		reports:   reports,
		status:    status,
		consumer:  consumer,
		kh:        kh,
		jobs:      jobs,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// Setup Echo HTTP server using pkg/http and register routes via handler
	httpHandler := a.httpHandler
	if httpHandler == nil {
		httpHandler = api.NewSessionsEchoHandler(l, a.manager, a.reports, a.status)
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)

	// Start the job queue and hook report precompute to session sealing
	if a.jobs != nil {
		if err := a.jobs.Start(); err != nil {
			l.Error("job queue start error", applogger.Error(err))
		} else {
			a.jobs.StartRetryProcessor()
			// Aggregate repeated error logs into the queue for offline review
			l.AddCollector(&applogger.CollectionConfig{
				TimeInterval:   30 * time.Second,
				CountThreshold: 100,
				Topic:          "logs.aggregated",
				Publisher:      a.jobs,
			})
			a.manager.OnSealed(func(participant string) {
				if err := a.jobs.Enqueue(context.Background(), "session.sealed", usecase.SessionSealedPayload{Participant: participant}); err != nil {
					l.Warn("report precompute enqueue error", applogger.Error(err))
				}
			})
		}
	}

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.String("gateway", a.cfg.Gateway.URL))
	for _, sig := range models.SignalTypes {
		info := drepo.InfoFor(sig)
		l.Info("stream outlet declared",
			applogger.String("signal", string(info.Signal)),
			applogger.String("topic", a.cfg.Kafka.TopicPrefix+"."+string(info.Signal)),
			applogger.Int("channels", info.Channels),
			applogger.Float64("nominal_rate_hz", info.NominalRate))
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	// Seal any session still recording so its tail is flushed to storage
	if _, active := a.manager.Active(); active {
		if _, err := a.manager.StopSession(ctx); err != nil {
			l.Warn("session seal on shutdown error", applogger.Error(err))
		}
	}

	// Stop collector (gateway stream)
	if err := a.collector.Stop(); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Stop job queue
	if a.jobs != nil {
		l.RemoveCollector()
		if err := a.jobs.Stop(shutdownCtx); err != nil {
			l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	// Close outlet and recorder handles
	a.manager.Close()

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
