package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	"github.com/ratemystudyspots/studyspots/internal/filter"
	"github.com/ratemystudyspots/studyspots/internal/rating"
	"github.com/ratemystudyspots/studyspots/internal/repository"
	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
	"github.com/ratemystudyspots/studyspots/pkg/tracing"
)

const (
	// DefaultDirectoryConcurrency bounds the per-spot review reads of a directory listing.
	DefaultDirectoryConcurrency = 8

	similarSpotsLimit = 3
)

// SpotRef identifies a catalog spot without rating data.
type SpotRef struct {
	Key  string           `json:"key"`
	Spot domain.StudySpot `json:"spot"`
}

// SpotDetail is everything the detail view of a single spot shows.
type SpotDetail struct {
	Key       string               `json:"key"`
	Spot      domain.StudySpot     `json:"spot"`
	Rating    domain.RatingSummary `json:"rating"`
	Reviews   []domain.Review      `json:"reviews"`
	Breakdown map[int]int          `json:"breakdown"`
	Similar   []SpotRef            `json:"similar"`
	// Degraded is set when the reviews could not be read and the detail
	// carries the empty summary instead.
	Degraded bool `json:"degraded,omitempty"`
}

// DirectoryService joins the catalog with the aggregated ratings of each spot.
type DirectoryService struct {
	repo        repository.ReviewRepository
	catalog     SpotCatalog
	concurrency int
	logger      *slog.Logger
}

// NewDirectoryService creates a new directory service. A concurrency below 1
// falls back to DefaultDirectoryConcurrency.
func NewDirectoryService(repo repository.ReviewRepository, catalog SpotCatalog, concurrency int, logger *slog.Logger) *DirectoryService {
	if concurrency < 1 {
		concurrency = DefaultDirectoryConcurrency
	}
	return &DirectoryService{
		repo:        repo,
		catalog:     catalog,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ListSpotsWithRatings returns every catalog spot, in catalog order, with its
// rating summary. A spot whose reviews cannot be read gets the empty summary;
// the listing itself never fails because of one spot.
func (s *DirectoryService) ListSpotsWithRatings(ctx context.Context) []domain.SpotWithRating {
	spots := s.catalog.Spots()
	out := make([]domain.SpotWithRating, len(spots))

	ctx, span := tracing.StartSpan(ctx, tracerName, "DirectoryService.ListSpotsWithRatings",
		attribute.Int("spots", len(spots)),
		attribute.Int("concurrency", s.concurrency),
	)
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, spot := range spots {
		g.Go(func() error {
			out[i] = domain.NewSpotWithRating(spot, s.summary(gctx, spot.Key()))
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *DirectoryService) summary(ctx context.Context, key string) domain.RatingSummary {
	reviews, err := s.repo.List(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to aggregate spot rating",
			slog.String("spot_key", key),
			slog.String("error", err.Error()),
		)
		return domain.RatingSummary{}
	}
	return rating.Aggregate(reviews)
}

// Search filters the rated directory by q and orders it by sortOrder.
func (s *DirectoryService) Search(ctx context.Context, q filter.SpotQuery, sortOrder string) ([]domain.SpotWithRating, error) {
	if sortOrder != "" && !slices.Contains(domain.ValidSpotSorts(), sortOrder) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("sort must be one of: %s", strings.Join(domain.ValidSpotSorts(), ", ")))
	}
	if q.Capacity != "" && !slices.Contains(domain.ValidCapacityFilters(), q.Capacity) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("capacity must be one of: %s", strings.Join(domain.ValidCapacityFilters(), ", ")))
	}

	spots := filter.FilterSpots(s.ListSpotsWithRatings(ctx), q)
	return filter.SortSpots(spots, sortOrder), nil
}

// SpaceTypes returns the space-type menu of the catalog.
func (s *DirectoryService) SpaceTypes() []string {
	return filter.SpaceTypeOptions(s.catalog.Spots())
}

// GetSpotDetail returns the detail view of one spot. Reviews are filtered by
// minRating and ordered by sortOrder; the summary and breakdown always cover
// the full review set.
func (s *DirectoryService) GetSpotDetail(ctx context.Context, key, minRating, sortOrder string) (*SpotDetail, error) {
	if _, ok := filter.ParseMinRating(minRating); !ok {
		return nil, apperrors.InvalidInput("min_rating must be \"all\" or an integer")
	}
	if !domain.IsValidReviewSort(sortOrder) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("sort must be one of: %s", strings.Join(domain.ValidReviewSorts(), ", ")))
	}

	spot, ok := s.catalog.Lookup(key)
	if !ok {
		return nil, apperrors.NotFound("study spot", key)
	}

	detail := &SpotDetail{
		Key:     key,
		Spot:    spot,
		Similar: s.similar(spot),
	}

	reviews, err := s.repo.List(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read spot reviews",
			slog.String("spot_key", key),
			slog.String("error", err.Error()),
		)
		reviews = nil
		detail.Degraded = true
	}

	detail.Rating = rating.Aggregate(reviews)
	detail.Breakdown = rating.Breakdown(reviews)
	detail.Reviews = filter.FilterAndSortReviews(reviews, minRating, sortOrder)

	return detail, nil
}

func (s *DirectoryService) similar(spot domain.StudySpot) []SpotRef {
	spots := filter.SimilarSpots(s.catalog.Spots(), spot, similarSpotsLimit)
	out := make([]SpotRef, 0, len(spots))
	for _, sp := range spots {
		out = append(out, SpotRef{Key: sp.Key(), Spot: sp})
	}
	return out
}
