package rating

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ratemystudyspots/studyspots/internal/domain"
)

func reviewsWithRatings(ratings ...int) map[string]domain.Review {
	out := make(map[string]domain.Review, len(ratings))
	for i, r := range ratings {
		key := fmt.Sprintf("author-%d", i)
		out[key] = domain.Review{AuthorKey: key, Rating: r}
	}
	return out
}

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, domain.RatingSummary{Average: 0, TotalReviews: 0}, Aggregate(nil))
	assert.Equal(t, domain.RatingSummary{Average: 0, TotalReviews: 0}, Aggregate(map[string]domain.Review{}))
	assert.False(t, Aggregate(nil).HasRatings())
}

func TestAggregate_Mean(t *testing.T) {
	tests := []struct {
		ratings []int
		avg     float64
	}{
		{[]int{5}, 5},
		{[]int{4, 5}, 4.5},
		{[]int{1, 2, 2}, 5.0 / 3.0},
		{[]int{2, 5, 5, 3}, 3.75},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.ratings), func(t *testing.T) {
			got := Aggregate(reviewsWithRatings(tt.ratings...))
			assert.Equal(t, len(tt.ratings), got.TotalReviews)
			assert.InDelta(t, tt.avg, got.Average, 1e-9)
			assert.True(t, got.HasRatings())
		})
	}
}

func TestAggregate_NoRounding(t *testing.T) {
	got := Aggregate(reviewsWithRatings(4, 4, 5))
	assert.InDelta(t, 4.333333333, got.Average, 1e-9)
}

func TestAggregate_PropertyCountAndMean(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		n := rng.IntN(40)
		ratings := make([]int, n)
		sum := 0
		for j := range ratings {
			ratings[j] = 1 + rng.IntN(5)
			sum += ratings[j]
		}

		got := Aggregate(reviewsWithRatings(ratings...))
		assert.Equal(t, n, got.TotalReviews)
		if n == 0 {
			assert.Zero(t, got.Average)
			continue
		}
		assert.InDelta(t, float64(sum)/float64(n), got.Average, 1e-9)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	reviews := reviewsWithRatings(1, 3, 5, 2, 4, 4, 5)
	first := Aggregate(reviews)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Aggregate(reviews))
	}
}

func TestBreakdown(t *testing.T) {
	got := Breakdown(reviewsWithRatings(5, 5, 4, 1))
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 1, 5: 2}, got)
}

func TestBreakdown_EmptyHasAllKeys(t *testing.T) {
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, Breakdown(nil))
}

func TestBreakdown_IgnoresOutOfRange(t *testing.T) {
	got := Breakdown(reviewsWithRatings(0, 6, 3))
	assert.Equal(t, 1, got[3])
	assert.Len(t, got, 5)
}
