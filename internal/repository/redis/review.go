package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
)

const keyPrefix = "spots:"

// reviewsKey returns the hash holding every review of a spot. Hash fields are
// author keys.
func reviewsKey(spotKey string) string {
	return keyPrefix + spotKey + ":reviews"
}

// document is the stored form of a review. Spot and author keys are part of
// the address, not the value.
type document struct {
	Text      string            `json:"text"`
	Rating    int               `json:"rating"`
	Author    string            `json:"author"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Amenities *domain.Amenities `json:"amenities,omitempty"`
}

func toDocument(rv *domain.Review) document {
	doc := document{
		Text:      rv.Text,
		Rating:    rv.Rating,
		Author:    rv.Author,
		Tags:      rv.Tags,
		Amenities: rv.Amenities,
	}
	if !rv.Timestamp.IsZero() {
		ts := rv.Timestamp.UTC()
		doc.Timestamp = &ts
	}
	return doc
}

func (d document) toReview(spotKey, authorKey string) domain.Review {
	rv := domain.Review{
		SpotKey:   spotKey,
		AuthorKey: authorKey,
		Author:    d.Author,
		Text:      d.Text,
		Rating:    d.Rating,
		Tags:      d.Tags,
		Amenities: d.Amenities,
	}
	if d.Timestamp != nil {
		rv.Timestamp = *d.Timestamp
	}
	return rv
}

// ReviewRepository implements repository.ReviewRepository using one Redis hash
// per spot.
type ReviewRepository struct {
	client *redis.Client
}

// NewReviewRepository creates a new Redis-backed review repository.
func NewReviewRepository(client *redis.Client) *ReviewRepository {
	return &ReviewRepository{client: client}
}

// Put writes the review into the author's field of the spot hash.
func (r *ReviewRepository) Put(ctx context.Context, review *domain.Review) error {
	data, err := json.Marshal(toDocument(review))
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}

	if err := r.client.HSet(ctx, reviewsKey(review.SpotKey), review.AuthorKey, data).Err(); err != nil {
		return apperrors.StorageFailure(fmt.Errorf("redis hset review: %w", err))
	}

	return nil
}

// Get reads one review. A missing field yields (nil, nil).
func (r *ReviewRepository) Get(ctx context.Context, spotKey, authorKey string) (*domain.Review, error) {
	data, err := r.client.HGet(ctx, reviewsKey(spotKey), authorKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.StorageFailure(fmt.Errorf("redis hget review: %w", err))
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.StorageFailure(fmt.Errorf("unmarshal review %s/%s: %w", spotKey, authorKey, err))
	}

	rv := doc.toReview(spotKey, authorKey)
	return &rv, nil
}

// List reads the whole hash of the spot.
func (r *ReviewRepository) List(ctx context.Context, spotKey string) (map[string]domain.Review, error) {
	fields, err := r.client.HGetAll(ctx, reviewsKey(spotKey)).Result()
	if err != nil {
		return nil, apperrors.StorageFailure(fmt.Errorf("redis hgetall reviews: %w", err))
	}

	reviews := make(map[string]domain.Review, len(fields))
	for authorKey, raw := range fields {
		var doc document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, apperrors.StorageFailure(fmt.Errorf("unmarshal review %s/%s: %w", spotKey, authorKey, err))
		}
		reviews[authorKey] = doc.toReview(spotKey, authorKey)
	}

	return reviews, nil
}

// Delete is not supported.
func (r *ReviewRepository) Delete(_ context.Context, _, _ string) error {
	return apperrors.NotSupported("deleting a review")
}

// Ping checks the Redis connection.
func (r *ReviewRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return apperrors.StorageFailure(fmt.Errorf("redis ping: %w", err))
	}
	return nil
}
