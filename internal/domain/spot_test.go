package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Spot key
// ============================================================================

func TestSpotKey_Reproducible(t *testing.T) {
	assert.Equal(t, "robarts-library-4033", SpotKey("Robarts Library", "4033"))
	assert.Equal(t, "robarts-library-4033", SpotKey("Robarts   Library", "4033"))
	assert.Equal(t, "robarts-library-4033", SpotKey("Robarts\tLibrary", " 4033"))
}

func TestStudySpot_Key(t *testing.T) {
	s := StudySpot{Building: "Gerstein", RoomNumber: "Main Reading Room"}
	assert.Equal(t, "gerstein-main-reading-room", s.Key())
}

// ============================================================================
// Capacity parsing
// ============================================================================

func TestStudySpot_Capacity(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"25", 25, true},
		{" 40", 40, true},
		{"120 seats", 120, true},
		{"0", 0, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"approx. 30", 0, false},
		{"-", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			n, ok := StudySpot{SeatingSpaces: tt.raw}.Capacity()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestStudySpot_CapacityBucket(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"10", CapacitySmall},
		{"20", CapacitySmall},
		{"21", CapacityMedium},
		{"25", CapacityMedium},
		{"40", CapacityMedium},
		{"41", CapacityLarge},
		{"45", CapacityLarge},
		{"lots", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, StudySpot{SeatingSpaces: tt.raw}.CapacityBucket())
		})
	}
}

func TestValidCapacityFilters(t *testing.T) {
	assert.ElementsMatch(t, []string{"all", "small", "medium", "large"}, ValidCapacityFilters())
}

func TestNewSpotWithRating_FillsKey(t *testing.T) {
	s := StudySpot{Building: "Robarts Library", RoomNumber: "4033"}
	swr := NewSpotWithRating(s, RatingSummary{Average: 4, TotalReviews: 2})
	assert.Equal(t, "robarts-library-4033", swr.Key)
	assert.Equal(t, 2, swr.Rating.TotalReviews)
}
