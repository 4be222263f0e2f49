package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	"github.com/ratemystudyspots/studyspots/internal/filter"
	"github.com/ratemystudyspots/studyspots/internal/repository"
	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
	"github.com/ratemystudyspots/studyspots/pkg/tracing"
)

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	SpotKey   string
	Author    string
	Text      string
	Rating    int
	Tags      []string
	Amenities *domain.Amenities
}

// ReviewService implements the write path and single-spot read path for reviews.
type ReviewService struct {
	repo    repository.ReviewRepository
	catalog SpotCatalog
	events  ReviewEventPublisher
	clock   func() time.Time
	logger  *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, catalog SpotCatalog, events ReviewEventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:    repo,
		catalog: catalog,
		events:  events,
		clock:   func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

// WithClock replaces the clock used to timestamp reviews.
func (s *ReviewService) WithClock(clock func() time.Time) *ReviewService {
	s.clock = clock
	return s
}

// SubmitReview validates the input and stores the review, replacing any
// earlier review by the same author for the same spot. The timestamp is
// always assigned here, including on overwrite.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewService.SubmitReview",
		attribute.String("spot_key", input.SpotKey),
	)
	defer span.End()

	review, err := s.submitReview(ctx, input)
	tracing.RecordError(span, err)
	return review, err
}

func (s *ReviewService) submitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	text := strings.TrimSpace(input.Text)
	author := strings.TrimSpace(input.Author)

	if text == "" {
		return nil, apperrors.InvalidInput("review text is required")
	}
	if author == "" {
		return nil, apperrors.InvalidInput("author name is required")
	}
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	for name, v := range input.Amenities.Fields() {
		if v < domain.MinRating || v > domain.MaxRating {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be between %d and %d", name, domain.MinRating, domain.MaxRating))
		}
	}
	tags, err := cleanTags(input.Tags)
	if err != nil {
		return nil, err
	}

	authorKey := domain.AuthorKey(author)
	if strings.Trim(authorKey, "-") == "" {
		return nil, apperrors.InvalidInput("author name is required")
	}

	if _, ok := s.catalog.Lookup(input.SpotKey); !ok {
		return nil, apperrors.NotFound("study spot", input.SpotKey)
	}

	review := &domain.Review{
		SpotKey:   input.SpotKey,
		AuthorKey: authorKey,
		Author:    author,
		Text:      text,
		Rating:    input.Rating,
		Timestamp: s.clock(),
		Tags:      tags,
		Amenities: input.Amenities,
	}

	if err := s.repo.Put(ctx, review); err != nil {
		return nil, fmt.Errorf("put review: %w", err)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("spot_key", review.SpotKey),
		slog.String("author_key", review.AuthorKey),
		slog.Int("rating", review.Rating),
	)

	if err := s.events.PublishReviewSubmitted(ctx, review); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.submitted event",
			slog.String("spot_key", review.SpotKey),
			slog.String("error", err.Error()),
		)
	}

	return review, nil
}

// cleanTags trims tags, drops empty ones and duplicates, and enforces the
// count and length limits.
func cleanTags(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > domain.MaxTagLength {
			return nil, apperrors.InvalidInput(fmt.Sprintf("tag %q is longer than %d characters", t, domain.MaxTagLength))
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, t)
	}

	if len(tags) > domain.MaxTags {
		return nil, apperrors.InvalidInput(fmt.Sprintf("at most %d tags are allowed", domain.MaxTags))
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// GetReview returns the review the named author left on the spot.
func (s *ReviewService) GetReview(ctx context.Context, spotKey, author string) (*domain.Review, error) {
	if _, ok := s.catalog.Lookup(spotKey); !ok {
		return nil, apperrors.NotFound("study spot", spotKey)
	}

	authorKey := domain.AuthorKey(author)
	review, err := s.repo.Get(ctx, spotKey, authorKey)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, apperrors.NotFound("review", spotKey+"/"+authorKey)
	}

	return review, nil
}

// ListReviews returns the reviews of a spot filtered by minimum rating and
// ordered by sortOrder.
func (s *ReviewService) ListReviews(ctx context.Context, spotKey, minRating, sortOrder string) ([]domain.Review, error) {
	if _, ok := filter.ParseMinRating(minRating); !ok {
		return nil, apperrors.InvalidInput("min_rating must be \"all\" or an integer")
	}
	if !domain.IsValidReviewSort(sortOrder) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("sort must be one of: %s", strings.Join(domain.ValidReviewSorts(), ", ")))
	}
	if _, ok := s.catalog.Lookup(spotKey); !ok {
		return nil, apperrors.NotFound("study spot", spotKey)
	}

	reviews, err := s.repo.List(ctx, spotKey)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return filter.FilterAndSortReviews(reviews, minRating, sortOrder), nil
}

// DeleteReview is passed to the store, which does not support deletion. The
// error is returned so callers never assume the review is gone.
func (s *ReviewService) DeleteReview(ctx context.Context, spotKey, author string) error {
	if _, ok := s.catalog.Lookup(spotKey); !ok {
		return apperrors.NotFound("study spot", spotKey)
	}

	if err := s.repo.Delete(ctx, spotKey, domain.AuthorKey(author)); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
