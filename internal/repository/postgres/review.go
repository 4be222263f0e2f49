package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	"github.com/ratemystudyspots/studyspots/pkg/database"
	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
)

// Pool is the connection surface the repository needs.
type Pool interface {
	database.DBTX
	database.Pinger
}

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool Pool
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const putReviewQuery = `
		INSERT INTO spot_reviews (spot_key, author_key, author, body, rating, tags, amenities, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (spot_key, author_key) DO UPDATE SET
			author       = EXCLUDED.author,
			body         = EXCLUDED.body,
			rating       = EXCLUDED.rating,
			tags         = EXCLUDED.tags,
			amenities    = EXCLUDED.amenities,
			submitted_at = EXCLUDED.submitted_at`

// Put upserts the review keyed by (spot_key, author_key).
func (r *ReviewRepository) Put(ctx context.Context, review *domain.Review) (err error) {
	amenitiesJSON, err := marshalAmenities(review.Amenities)
	if err != nil {
		return err
	}

	tags := review.Tags
	if tags == nil {
		tags = []string{}
	}

	ctx, end := database.TraceQuery(ctx, "PutReview", putReviewQuery)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, putReviewQuery,
		review.SpotKey,
		review.AuthorKey,
		review.Author,
		review.Text,
		review.Rating,
		tags,
		amenitiesJSON,
		nullableTime(review.Timestamp),
	)
	if err != nil {
		return apperrors.StorageFailure(fmt.Errorf("upsert review: %w", err))
	}

	return nil
}

const getReviewQuery = `
		SELECT author_key, author, body, rating, tags, amenities, submitted_at
		FROM spot_reviews
		WHERE spot_key = $1 AND author_key = $2`

// Get returns one review, or nil when the row does not exist.
func (r *ReviewRepository) Get(ctx context.Context, spotKey, authorKey string) (_ *domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "GetReview", getReviewQuery)
	defer func() { end(err) }()

	rv, err := scanReview(r.pool.QueryRow(ctx, getReviewQuery, spotKey, authorKey), spotKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.StorageFailure(fmt.Errorf("get review: %w", err))
	}

	return rv, nil
}

const listReviewsQuery = `
		SELECT author_key, author, body, rating, tags, amenities, submitted_at
		FROM spot_reviews
		WHERE spot_key = $1`

// List returns every review of the spot keyed by author key.
func (r *ReviewRepository) List(ctx context.Context, spotKey string) (_ map[string]domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "ListReviews", listReviewsQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listReviewsQuery, spotKey)
	if err != nil {
		return nil, apperrors.StorageFailure(fmt.Errorf("list reviews: %w", err))
	}
	defer rows.Close()

	reviews := make(map[string]domain.Review)
	for rows.Next() {
		rv, err := scanReview(rows, spotKey)
		if err != nil {
			return nil, apperrors.StorageFailure(fmt.Errorf("scan review row: %w", err))
		}
		reviews[rv.AuthorKey] = *rv
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.StorageFailure(fmt.Errorf("iterate review rows: %w", err))
	}

	return reviews, nil
}

// Delete is not supported.
func (r *ReviewRepository) Delete(_ context.Context, _, _ string) error {
	return apperrors.NotSupported("deleting a review")
}

// Ping checks the database connection.
func (r *ReviewRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return apperrors.StorageFailure(fmt.Errorf("postgres ping: %w", err))
	}
	return nil
}

func scanReview(row pgx.Row, spotKey string) (*domain.Review, error) {
	var (
		rv            domain.Review
		amenitiesJSON []byte
		submittedAt   *time.Time
	)

	if err := row.Scan(
		&rv.AuthorKey,
		&rv.Author,
		&rv.Text,
		&rv.Rating,
		&rv.Tags,
		&amenitiesJSON,
		&submittedAt,
	); err != nil {
		return nil, err
	}

	rv.SpotKey = spotKey
	if submittedAt != nil {
		rv.Timestamp = submittedAt.UTC()
	}
	if len(rv.Tags) == 0 {
		rv.Tags = nil
	}
	if len(amenitiesJSON) > 0 {
		var a domain.Amenities
		if err := json.Unmarshal(amenitiesJSON, &a); err != nil {
			return nil, fmt.Errorf("unmarshal amenities: %w", err)
		}
		rv.Amenities = &a
	}

	return &rv, nil
}

func marshalAmenities(a *domain.Amenities) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal amenities: %w", err)
	}
	return data, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
