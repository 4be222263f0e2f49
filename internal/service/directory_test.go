package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	"github.com/ratemystudyspots/studyspots/internal/filter"
	"github.com/ratemystudyspots/studyspots/internal/repository/memory"
	apperrors "github.com/ratemystudyspots/studyspots/pkg/errors"
)

func seedReviews(t *testing.T, repo *memory.ReviewRepository, spotKey string, ratings ...int) {
	t.Helper()
	for i, r := range ratings {
		author := string(rune('a' + i))
		err := repo.Put(context.Background(), &domain.Review{
			SpotKey:   spotKey,
			AuthorKey: author,
			Author:    author,
			Text:      "review",
			Rating:    r,
			Timestamp: fixedNow.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func spotKeys(spots []domain.SpotWithRating) []string {
	out := make([]string, 0, len(spots))
	for _, s := range spots {
		out = append(out, s.Key)
	}
	return out
}

// ============================================================================
// ListSpotsWithRatings
// ============================================================================

func TestListSpotsWithRatings_CatalogOrderAndSummaries(t *testing.T) {
	repo := memory.NewReviewRepository()
	seedReviews(t, repo, robartsKey, 4, 5)
	seedReviews(t, repo, bahenKey, 3)

	svc := NewDirectoryService(repo, newTestCatalog(t), 2, newTestLogger())

	spots := svc.ListSpotsWithRatings(context.Background())

	assert.Equal(t, []string{robartsKey, gersteinKey, bahenKey, commonsKey, myhalKey}, spotKeys(spots))
	assert.Equal(t, domain.RatingSummary{Average: 4.5, TotalReviews: 2}, spots[0].Rating)
	assert.False(t, spots[1].Rating.HasRatings())
	assert.Equal(t, domain.RatingSummary{Average: 3, TotalReviews: 1}, spots[2].Rating)
}

func TestListSpotsWithRatings_FailingSpotDegrades(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("List", mock.Anything, bahenKey).Return(nil, apperrors.StorageFailure(errors.New("timeout")))
	repo.On("List", mock.Anything, robartsKey).Return(map[string]domain.Review{
		"a": {AuthorKey: "a", Rating: 2},
	}, nil)
	repo.On("List", mock.Anything, mock.Anything).Return(map[string]domain.Review{}, nil)

	svc := NewDirectoryService(repo, newTestCatalog(t), 0, newTestLogger())

	spots := svc.ListSpotsWithRatings(context.Background())

	require.Len(t, spots, 5)
	assert.Equal(t, bahenKey, spots[2].Key)
	assert.Equal(t, domain.RatingSummary{}, spots[2].Rating)
	assert.Equal(t, domain.RatingSummary{Average: 2, TotalReviews: 1}, spots[0].Rating)
}

// ============================================================================
// Search
// ============================================================================

func TestSearch_FilterAndSort(t *testing.T) {
	repo := memory.NewReviewRepository()
	seedReviews(t, repo, robartsKey, 3)
	seedReviews(t, repo, myhalKey, 5)

	svc := NewDirectoryService(repo, newTestCatalog(t), 4, newTestLogger())

	spots, err := svc.Search(context.Background(), filter.SpotQuery{Type: "library"}, domain.SpotSortRating)

	require.NoError(t, err)
	assert.Equal(t, []string{myhalKey, robartsKey}, spotKeys(spots))
}

func TestSearch_CapacityBucket(t *testing.T) {
	svc := NewDirectoryService(memory.NewReviewRepository(), newTestCatalog(t), 4, newTestLogger())

	spots, err := svc.Search(context.Background(), filter.SpotQuery{Capacity: domain.CapacityLarge}, "")

	require.NoError(t, err)
	assert.Equal(t, []string{gersteinKey, myhalKey}, spotKeys(spots))
}

func TestSearch_InvalidParams(t *testing.T) {
	svc := NewDirectoryService(memory.NewReviewRepository(), newTestCatalog(t), 4, newTestLogger())

	_, err := svc.Search(context.Background(), filter.SpotQuery{}, "popularity")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Search(context.Background(), filter.SpotQuery{Capacity: "huge"}, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSpaceTypes(t *testing.T) {
	svc := NewDirectoryService(memory.NewReviewRepository(), newTestCatalog(t), 4, newTestLogger())

	assert.Equal(t, []string{"all", "Library", "Study Room", "Lab", "Lounge"}, svc.SpaceTypes())
}

// ============================================================================
// GetSpotDetail
// ============================================================================

func TestGetSpotDetail_Success(t *testing.T) {
	repo := memory.NewReviewRepository()
	seedReviews(t, repo, robartsKey, 5, 2, 5)

	svc := NewDirectoryService(repo, newTestCatalog(t), 4, newTestLogger())

	detail, err := svc.GetSpotDetail(context.Background(), robartsKey, "3", domain.ReviewSortNewest)

	require.NoError(t, err)
	assert.Equal(t, robartsKey, detail.Key)
	assert.Equal(t, "Robarts Library", detail.Spot.Building)
	assert.Equal(t, 3, detail.Rating.TotalReviews)
	assert.InDelta(t, 4.0, detail.Rating.Average, 1e-9)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 0, 4: 0, 5: 2}, detail.Breakdown)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "c", detail.Reviews[0].AuthorKey)
	assert.Equal(t, "a", detail.Reviews[1].AuthorKey)
	require.Len(t, detail.Similar, 1)
	assert.Equal(t, myhalKey, detail.Similar[0].Key)
	assert.False(t, detail.Degraded)
}

func TestGetSpotDetail_UnknownSpot(t *testing.T) {
	svc := NewDirectoryService(memory.NewReviewRepository(), newTestCatalog(t), 4, newTestLogger())

	detail, err := svc.GetSpotDetail(context.Background(), "nowhere-000", "all", "")

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetSpotDetail_StorageFailureDegrades(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("List", mock.Anything, gersteinKey).Return(nil, apperrors.StorageFailure(errors.New("down")))

	svc := NewDirectoryService(repo, newTestCatalog(t), 4, newTestLogger())

	detail, err := svc.GetSpotDetail(context.Background(), gersteinKey, "all", "")

	require.NoError(t, err)
	assert.True(t, detail.Degraded)
	assert.Equal(t, domain.RatingSummary{}, detail.Rating)
	assert.Empty(t, detail.Reviews)
	assert.Equal(t, 0, detail.Breakdown[5])
}

func TestGetSpotDetail_InvalidParams(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := NewDirectoryService(repo, newTestCatalog(t), 4, newTestLogger())

	_, err := svc.GetSpotDetail(context.Background(), robartsKey, "high", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.GetSpotDetail(context.Background(), robartsKey, "all", "best")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
