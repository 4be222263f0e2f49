package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
)

// ReviewRepository is an in-memory review store. It is safe for concurrent use
// and loses its contents on restart.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]map[string]domain.Review
}

// NewReviewRepository creates an empty in-memory review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[string]map[string]domain.Review),
	}
}

// Put creates or overwrites the review slot of the author for the spot.
func (r *ReviewRepository) Put(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, ok := r.reviews[review.SpotKey]
	if !ok {
		spot = make(map[string]domain.Review)
		r.reviews[review.SpotKey] = spot
	}
	spot[review.AuthorKey] = clone(*review)
	return nil
}

// Get returns the stored review or nil when the slot is empty.
func (r *ReviewRepository) Get(_ context.Context, spotKey, authorKey string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rv, ok := r.reviews[spotKey][authorKey]
	if !ok {
		return nil, nil
	}
	out := clone(rv)
	return &out, nil
}

// List returns a snapshot of the reviews of the spot.
func (r *ReviewRepository) List(_ context.Context, spotKey string) (map[string]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spot := r.reviews[spotKey]
	out := make(map[string]domain.Review, len(spot))
	for k, rv := range spot {
		out[k] = clone(rv)
	}
	return out, nil
}

// Delete is not supported.
func (r *ReviewRepository) Delete(_ context.Context, _, _ string) error {
	return apperrors.NotSupported("deleting a review")
}

// Ping always succeeds.
func (r *ReviewRepository) Ping(_ context.Context) error {
	return nil
}

// clone detaches the slices and pointers of a review from the stored copy.
func clone(rv domain.Review) domain.Review {
	rv.Tags = slices.Clone(rv.Tags)
	if rv.Amenities != nil {
		a := *rv.Amenities
		a.NoiseLevel = clonePtr(a.NoiseLevel)
		a.OutletAvailability = clonePtr(a.OutletAvailability)
		a.WifiStrength = clonePtr(a.WifiStrength)
		a.Lighting = clonePtr(a.Lighting)
		rv.Amenities = &a
	}
	return rv
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
