// Package rating derives per-spot rating statistics from a review set.
// Everything here is pure: no I/O, no state, no dependence on map order.
package rating

import "github.com/ratemystudyspots/studyspots/internal/domain"

// Aggregate returns the arithmetic mean and count of the review ratings.
// An empty set yields the zero RatingSummary. No rounding is applied.
func Aggregate(reviews map[string]domain.Review) domain.RatingSummary {
	if len(reviews) == 0 {
		return domain.RatingSummary{}
	}

	var total int64
	for _, r := range reviews {
		total += int64(r.Rating)
	}

	return domain.RatingSummary{
		Average:      float64(total) / float64(len(reviews)),
		TotalReviews: len(reviews),
	}
}

// Breakdown counts reviews per star value. Keys 1 through 5 are always
// present; ratings outside that range are not counted.
func Breakdown(reviews map[string]domain.Review) map[int]int {
	out := make(map[int]int, domain.MaxRating)
	for star := domain.MinRating; star <= domain.MaxRating; star++ {
		out[star] = 0
	}
	for _, r := range reviews {
		if r.Rating >= domain.MinRating && r.Rating <= domain.MaxRating {
			out[r.Rating]++
		}
	}
	return out
}
