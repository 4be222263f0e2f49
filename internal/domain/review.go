package domain

import (
	"time"

	"github.com/ratemystudyspots/studyspots/pkg/slug"
)

// Rating bounds, inclusive. Amenity sub-ratings use the same scale.
const (
	MinRating = 1
	MaxRating = 5
)

// Review sort orders.
const (
	ReviewSortNewest  = "newest"
	ReviewSortOldest  = "oldest"
	ReviewSortHighest = "highest"
	ReviewSortLowest  = "lowest"
)

// Limits applied to review tags.
const (
	MaxTags      = 10
	MaxTagLength = 32
)

// ValidReviewSorts returns the accepted review sort orders.
func ValidReviewSorts() []string {
	return []string{ReviewSortNewest, ReviewSortOldest, ReviewSortHighest, ReviewSortLowest}
}

// IsValidReviewSort reports whether s is a known review sort order.
// The empty string selects the default order.
func IsValidReviewSort(s string) bool {
	if s == "" {
		return true
	}
	for _, v := range ValidReviewSorts() {
		if v == s {
			return true
		}
	}
	return false
}

// Amenities holds the optional per-review amenity sub-ratings.
type Amenities struct {
	NoiseLevel         *int `json:"noise_level,omitempty"`
	OutletAvailability *int `json:"outlet_availability,omitempty"`
	WifiStrength       *int `json:"wifi_strength,omitempty"`
	Lighting           *int `json:"lighting,omitempty"`
}

// Fields returns the sub-ratings by name; unset sub-ratings are omitted.
func (a *Amenities) Fields() map[string]int {
	out := make(map[string]int, 4)
	if a == nil {
		return out
	}
	for name, v := range map[string]*int{
		"noise_level":         a.NoiseLevel,
		"outlet_availability": a.OutletAvailability,
		"wifi_strength":       a.WifiStrength,
		"lighting":            a.Lighting,
	} {
		if v != nil {
			out[name] = *v
		}
	}
	return out
}

// Review is one author's review of one spot. A spot holds at most one review
// per author key; a later submission replaces the earlier one.
type Review struct {
	SpotKey   string     `json:"spot_key"`
	AuthorKey string     `json:"author_key"`
	Author    string     `json:"author"`
	Text      string     `json:"text"`
	Rating    int        `json:"rating"`
	Timestamp time.Time  `json:"timestamp"`
	Tags      []string   `json:"tags,omitempty"`
	Amenities *Amenities `json:"amenities,omitempty"`
}

// AuthorKey derives the per-spot storage key of an author from the display name.
// Case and whitespace runs fold, so "Jane  Doe" and "jane doe" share a key.
func AuthorKey(author string) string {
	return slug.Generate(author)
}

// RatingSummary is the derived average rating and review count of a spot.
// The zero value means "no reviews" and must be shown as unavailable, not as
// a zero-star rating.
type RatingSummary struct {
	Average      float64 `json:"average"`
	TotalReviews int     `json:"total_reviews"`
}

// HasRatings reports whether the summary is backed by at least one review.
func (s RatingSummary) HasRatings() bool {
	return s.TotalReviews > 0
}
