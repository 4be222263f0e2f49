// Package breaker wraps a review store with a circuit breaker so a failing
// backend is given time to recover instead of receiving every request.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	"github.com/ratemystudyspots/studyspots/internal/repository"
	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
)

// Config holds configuration for the store circuit breaker.
type Config struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once reached, after MinRequests requests.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultConfig returns the breaker defaults used for the review store.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var breakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "review_store_circuit_breaker_state",
		Help: "Current state of the review store circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func init() {
	prometheus.MustRegister(breakerState)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ReviewRepository decorates another review repository with a circuit
// breaker. Only storage failures count against the breaker; while it is open
// calls fail fast with a storage failure.
type ReviewRepository struct {
	next    repository.ReviewRepository
	breaker *gobreaker.CircuitBreaker[any]
}

// NewReviewRepository wraps next with a circuit breaker.
func NewReviewRepository(next repository.ReviewRepository, cfg Config, logger *slog.Logger) *ReviewRepository {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, apperrors.ErrStorage)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("review store circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &ReviewRepository{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State returns the current breaker state.
func (r *ReviewRepository) State() gobreaker.State {
	return r.breaker.State()
}

func (r *ReviewRepository) execute(fn func() (any, error)) (any, error) {
	res, err := r.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.StorageFailure(err)
	}
	return res, err
}

// Put writes through the breaker.
func (r *ReviewRepository) Put(ctx context.Context, review *domain.Review) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.next.Put(ctx, review)
	})
	return err
}

// Get reads through the breaker.
func (r *ReviewRepository) Get(ctx context.Context, spotKey, authorKey string) (*domain.Review, error) {
	res, err := r.execute(func() (any, error) {
		return r.next.Get(ctx, spotKey, authorKey)
	})
	if err != nil {
		return nil, err
	}
	rv, _ := res.(*domain.Review)
	return rv, nil
}

// List reads through the breaker.
func (r *ReviewRepository) List(ctx context.Context, spotKey string) (map[string]domain.Review, error) {
	res, err := r.execute(func() (any, error) {
		return r.next.List(ctx, spotKey)
	})
	if err != nil {
		return nil, err
	}
	reviews, _ := res.(map[string]domain.Review)
	return reviews, nil
}

// Delete is passed straight to the wrapped store.
func (r *ReviewRepository) Delete(ctx context.Context, spotKey, authorKey string) error {
	return r.next.Delete(ctx, spotKey, authorKey)
}

// Ping bypasses the breaker so health checks report the backend itself.
func (r *ReviewRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
