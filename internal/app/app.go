// Package app assembles the study-spot service from its configuration and
// owns the lifecycle of every long-lived dependency.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ratemystudyspots/studyspots/internal/catalog"
	"github.com/ratemystudyspots/studyspots/internal/config"
	"github.com/ratemystudyspots/studyspots/internal/event"
	handler "github.com/ratemystudyspots/studyspots/internal/handler/http"
	"github.com/ratemystudyspots/studyspots/internal/service"
	"github.com/ratemystudyspots/studyspots/pkg/database"
	"github.com/ratemystudyspots/studyspots/pkg/health"
	pkgkafka "github.com/ratemystudyspots/studyspots/pkg/kafka"
	"github.com/ratemystudyspots/studyspots/pkg/middleware"
	"github.com/ratemystudyspots/studyspots/pkg/tracing"
)

const (
	startupTimeout        = 30 * time.Second
	httpShutdownTimeout   = 10 * time.Second
	tracerShutdownTimeout = 3 * time.Second
)

// App is the running service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	store          *ReviewStore
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp loads the catalog, opens the review store and builds the HTTP
// server. Kafka is optional: when it is enabled but unreachable the service
// starts anyway and reports itself degraded.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}

	spots, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("study spot catalog loaded",
		slog.Int("spots", spots.Len()),
		slog.String("path", cfg.CatalogPath),
	)

	if a.store, err = OpenReviewStore(ctx, cfg, logger); err != nil {
		return nil, err
	}

	events := a.eventPublisher(ctx)
	reviews := a.store.Repository
	directory := service.NewDirectoryService(reviews, spots, cfg.DirectoryConcurrency, logger)
	reviewService := service.NewReviewService(reviews, spots, events, logger)

	router := handler.NewRouter(directory, reviewService, a.healthChecks(), handler.RouterConfig{
		ServiceName: config.ServiceName,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		PprofCIDRs:      cfg.PprofAllowedCIDRs,
		DirectoryMaxAge: cfg.DirectoryCacheMaxAge,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.HTTPPort)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

// eventPublisher returns the Kafka-backed review publisher, or a publisher
// that drops events when Kafka is disabled.
func (a *App) eventPublisher(ctx context.Context) service.ReviewEventPublisher {
	if !a.cfg.KafkaEnabled {
		return event.NoopProducer{}
	}

	a.producer = pkgkafka.NewProducer(a.cfg.Kafka(), a.logger)
	err := database.DefaultRetryPolicy().Do(ctx, a.logger, "ping kafka", a.producer.Ping)
	if err != nil {
		a.logger.Warn("kafka unreachable, review events will fail until it recovers",
			slog.String("error", err.Error()),
		)
	} else {
		a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	}
	return event.NewProducer(a.producer, a.logger)
}

func (a *App) healthChecks() *health.Handler {
	h := health.NewHandler()
	h.RegisterCritical("review_store", a.store.Backend.Ping)
	if a.producer != nil {
		h.RegisterNonCritical("kafka", a.producer.Ping)
	}
	return h
}

// Run serves HTTP until ctx is canceled or the listener fails, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-serveErr:
		return errors.Join(err, a.Shutdown())
	}
	return a.Shutdown()
}

// Shutdown stops accepting requests first, then flushes spans, closes the
// producer and finally releases the review store. Every step runs even when
// an earlier one fails.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application")

	steps := []struct {
		name string
		stop func() error
	}{
		{"http server", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()
			return a.httpServer.Shutdown(ctx)
		}},
		{"tracer", func() error {
			if a.tracerShutdown == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
			defer cancel()
			return a.tracerShutdown(ctx)
		}},
		{"kafka producer", func() error {
			if a.producer == nil {
				return nil
			}
			return a.producer.Close()
		}},
		{"review store", a.store.Close},
	}

	var errs []error
	for _, s := range steps {
		if err := s.stop(); err != nil {
			a.logger.Error("shutdown step failed",
				slog.String("component", s.name),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
