package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratemystudyspots/studyspots/internal/domain"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func review(author string, rating int, ts time.Time) domain.Review {
	return domain.Review{
		SpotKey:   "robarts-library-4033",
		AuthorKey: author,
		Author:    author,
		Text:      "text by " + author,
		Rating:    rating,
		Timestamp: ts,
	}
}

func toMap(reviews ...domain.Review) map[string]domain.Review {
	out := make(map[string]domain.Review, len(reviews))
	for _, r := range reviews {
		out[r.AuthorKey] = r
	}
	return out
}

func authors(reviews []domain.Review) []string {
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.AuthorKey)
	}
	return out
}

func TestFilterAndSortReviews_HighestTieBreaksByNewest(t *testing.T) {
	reviews := toMap(
		review("a", 2, base.Add(1*time.Hour)),
		review("b", 5, base.Add(2*time.Hour)),
		review("c", 5, base.Add(4*time.Hour)),
		review("d", 3, base.Add(3*time.Hour)),
	)

	got := FilterAndSortReviews(reviews, "all", domain.ReviewSortHighest)

	assert.Equal(t, []string{"c", "b", "d", "a"}, authors(got))
}

func TestFilterAndSortReviews_LowestTieBreaksByNewest(t *testing.T) {
	reviews := toMap(
		review("a", 1, base.Add(1*time.Hour)),
		review("b", 1, base.Add(3*time.Hour)),
		review("c", 4, base),
	)

	got := FilterAndSortReviews(reviews, "all", domain.ReviewSortLowest)

	assert.Equal(t, []string{"b", "a", "c"}, authors(got))
}

func TestFilterAndSortReviews_MinRating(t *testing.T) {
	reviews := toMap(
		review("a", 5, base),
		review("b", 4, base.Add(time.Minute)),
		review("c", 3, base.Add(2*time.Minute)),
		review("d", 2, base.Add(3*time.Minute)),
	)

	got := FilterAndSortReviews(reviews, "4", domain.ReviewSortHighest)

	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Rating)
	assert.Equal(t, 4, got[1].Rating)
}

func TestFilterAndSortReviews_NewestAndOldest(t *testing.T) {
	reviews := toMap(
		review("a", 3, base.Add(2*time.Hour)),
		review("b", 3, base),
		review("c", 3, base.Add(1*time.Hour)),
	)

	assert.Equal(t, []string{"a", "c", "b"}, authors(FilterAndSortReviews(reviews, "all", domain.ReviewSortNewest)))
	assert.Equal(t, []string{"b", "c", "a"}, authors(FilterAndSortReviews(reviews, "all", domain.ReviewSortOldest)))
}

func TestFilterAndSortReviews_DefaultIsNewest(t *testing.T) {
	reviews := toMap(
		review("a", 3, base),
		review("b", 3, base.Add(time.Hour)),
	)

	assert.Equal(t, []string{"b", "a"}, authors(FilterAndSortReviews(reviews, "", "")))
	assert.Equal(t, []string{"b", "a"}, authors(FilterAndSortReviews(reviews, "", "bogus")))
}

func TestFilterAndSortReviews_MissingTimestampSortsAsEpoch(t *testing.T) {
	reviews := toMap(
		review("missing", 5, time.Time{}),
		review("old", 5, time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)),
		review("new", 5, base),
	)

	assert.Equal(t, []string{"new", "old", "missing"}, authors(FilterAndSortReviews(reviews, "all", domain.ReviewSortNewest)))
	assert.Equal(t, []string{"missing", "old", "new"}, authors(FilterAndSortReviews(reviews, "all", domain.ReviewSortOldest)))
}

func TestFilterAndSortReviews_EqualKeysAreDeterministic(t *testing.T) {
	reviews := toMap(
		review("carol", 4, base),
		review("alice", 4, base),
		review("bob", 4, base),
	)

	for i := 0; i < 20; i++ {
		assert.Equal(t, []string{"alice", "bob", "carol"}, authors(FilterAndSortReviews(reviews, "all", domain.ReviewSortHighest)))
	}
}

func TestFilterAndSortReviews_InvalidMinRatingDoesNotFilter(t *testing.T) {
	reviews := toMap(review("a", 1, base), review("b", 5, base))
	assert.Len(t, FilterAndSortReviews(reviews, "four", domain.ReviewSortNewest), 2)
}

func TestFilterAndSortReviews_Empty(t *testing.T) {
	got := FilterAndSortReviews(nil, "all", domain.ReviewSortNewest)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterAndSortReviews_DoesNotMutateInput(t *testing.T) {
	reviews := toMap(review("a", 1, base), review("b", 5, base))
	_ = FilterAndSortReviews(reviews, "3", domain.ReviewSortHighest)
	assert.Len(t, reviews, 2)
}

func TestParseMinRating(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"", 0, true},
		{"all", 0, true},
		{"4", 4, true},
		{" 3 ", 3, true},
		{"x", 0, false},
		{"4.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMinRating(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
