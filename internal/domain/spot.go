package domain

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ratemystudyspots/studyspots/pkg/slug"
)

// FilterAll is the catch-all value accepted by every directory and review filter.
const FilterAll = "all"

// Capacity buckets for the directory filter.
const (
	CapacitySmall  = "small"
	CapacityMedium = "medium"
	CapacityLarge  = "large"
)

// Bucket upper bounds (inclusive).
const (
	SmallMaxSeats  = 20
	MediumMaxSeats = 40
)

// Directory sort options.
const (
	SpotSortCatalog  = "catalog"
	SpotSortRating   = "rating"
	SpotSortCapacity = "capacity"
	SpotSortName     = "name"
)

// StudySpot is a single entry of the static study-spot catalog. Field tags
// match the column names of the catalog source file.
type StudySpot struct {
	Building      string `json:"Building" yaml:"Building"`
	RoomNumber    string `json:"Room Number" yaml:"Room Number"`
	SeatingSpaces string `json:"Seating Spaces" yaml:"Seating Spaces"`
	Grouping      string `json:"Group/Individual" yaml:"Group/Individual"`
	SpaceType     string `json:"Type of space" yaml:"Type of space"`
}

// SpotKey derives the storage and URL key of a spot from its building and room.
// Every caller must go through this function so the derivation can be replaced
// by a stable identifier in one place.
func SpotKey(building, roomNumber string) string {
	return slug.Generate(building, roomNumber)
}

// Key returns the derived key of the spot.
func (s StudySpot) Key() string {
	return SpotKey(s.Building, s.RoomNumber)
}

// Capacity parses the seating capacity. Leading whitespace and trailing text
// are ignored ("25 seats" is 25). The second return value is false when the
// field does not start with a number.
func (s StudySpot) Capacity() (int, bool) {
	return parseLeadingInt(s.SeatingSpaces)
}

// CapacityBucket returns the capacity bucket of the spot, or "" when the
// capacity is not numeric.
func (s StudySpot) CapacityBucket() string {
	n, ok := s.Capacity()
	if !ok {
		return ""
	}
	switch {
	case n <= SmallMaxSeats:
		return CapacitySmall
	case n <= MediumMaxSeats:
		return CapacityMedium
	default:
		return CapacityLarge
	}
}

// ValidCapacityFilters returns the accepted capacity filter values.
func ValidCapacityFilters() []string {
	return []string{FilterAll, CapacitySmall, CapacityMedium, CapacityLarge}
}

// ValidSpotSorts returns the accepted directory sort options.
func ValidSpotSorts() []string {
	return []string{SpotSortCatalog, SpotSortRating, SpotSortCapacity, SpotSortName}
}

// SpotWithRating pairs a catalog entry with its aggregated rating.
type SpotWithRating struct {
	Key    string        `json:"key"`
	Spot   StudySpot     `json:"spot"`
	Rating RatingSummary `json:"rating"`
}

// NewSpotWithRating builds a SpotWithRating with the derived key filled in.
func NewSpotWithRating(spot StudySpot, rating RatingSummary) SpotWithRating {
	return SpotWithRating{Key: spot.Key(), Spot: spot, Rating: rating}
}

func parseLeadingInt(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
