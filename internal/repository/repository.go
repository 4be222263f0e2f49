package repository

import (
	"context"

	"github.com/ratemystudyspots/studyspots/internal/domain"
)

// ReviewRepository stores reviews partitioned by spot key, with one slot per
// (spot, author) pair. Backend failures are reported as storage failures
// (errors.Is(err, apperrors.ErrStorage)); a missing review is never an error.
type ReviewRepository interface {
	// Put creates or overwrites the review at (review.SpotKey, review.AuthorKey).
	Put(ctx context.Context, review *domain.Review) error

	// Get returns the review at (spotKey, authorKey), or nil when the slot is empty.
	Get(ctx context.Context, spotKey, authorKey string) (*domain.Review, error)

	// List returns every review of a spot keyed by author key. A spot without
	// reviews yields an empty map.
	List(ctx context.Context, spotKey string) (map[string]domain.Review, error)

	// Delete is not supported by any backend and always returns
	// apperrors.ErrNotSupported.
	Delete(ctx context.Context, spotKey, authorKey string) error

	// Ping verifies that the backend is reachable.
	Ping(ctx context.Context) error
}
