// Command seed fills the configured review store with deterministic demo
// reviews. It reads the same environment as the server, plus SEED_PER_SPOT,
// SEED_RANDOM_SEED and SEED_STEP, which flags override.
//
//	REVIEW_STORE=redis SEED_STEP=1h go run ./cmd/seed -per-spot 8 -seed 7
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ratemystudyspots/studyspots/internal/app"
	"github.com/ratemystudyspots/studyspots/internal/catalog"
	"github.com/ratemystudyspots/studyspots/internal/config"
	"github.com/ratemystudyspots/studyspots/internal/event"
	"github.com/ratemystudyspots/studyspots/internal/seed"
	"github.com/ratemystudyspots/studyspots/internal/service"
	"github.com/ratemystudyspots/studyspots/pkg/logger"
)

func main() {
	settings, err := seed.LoadSettings()
	if err != nil {
		slog.Error("failed to load seed settings", slog.String("error", err.Error()))
		os.Exit(1)
	}
	flag.IntVar(&settings.PerSpot, "per-spot", settings.PerSpot, "reviews to seed per study spot")
	flag.Uint64Var(&settings.RandomSeed, "seed", settings.RandomSeed, "random seed; equal seeds produce equal reviews")
	flag.Parse()
	if err := settings.Validate(); err != nil {
		slog.Error("invalid flags", slog.String("error", err.Error()))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(config.ServiceName+"-seed", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, settings, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, settings *seed.Settings, log *slog.Logger) error {
	spots, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	store, err := app.OpenReviewStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	inputs := seed.NewGenerator(settings.RandomSeed, settings.PerSpot).Reviews(spots.Spots())
	start := seed.StartFor(time.Now().UTC(), settings.Step, len(inputs))

	reviews := service.NewReviewService(store.Repository, spots, event.NoopProducer{}, log).
		WithClock(seed.Clock(start, settings.Step))

	log.Info("seeding reviews",
		slog.Int("spots", spots.Len()),
		slog.Int("reviews", len(inputs)),
		slog.String("review_store", cfg.ReviewStore),
	)

	res, err := seed.Run(ctx, reviews, inputs, log)
	if err != nil {
		return err
	}

	log.Info("seed complete",
		slog.Int("submitted", res.Submitted),
		slog.Int("failed", res.Failed),
	)
	return nil
}
