package filter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ratemystudyspots/studyspots/internal/domain"
)

// ParseMinRating converts a minimum-rating filter value into a threshold.
// "all" and "" disable the filter (ok is true, threshold 0); anything that is
// not an integer is rejected with ok false.
func ParseMinRating(raw string) (threshold int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == domain.FilterAll {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FilterAndSortReviews keeps reviews rated at or above minRating and orders
// them by sortOrder (newest when empty or unknown).
//
// A review without a timestamp is treated as written at the Unix epoch, so it
// never jumps to the top of a newest-first listing. Rating orders break ties
// by timestamp, most recent first. Reviews are first arranged by author key,
// so the output does not depend on map iteration order.
func FilterAndSortReviews(reviews map[string]domain.Review, minRating, sortOrder string) []domain.Review {
	threshold, ok := ParseMinRating(minRating)
	if !ok {
		threshold = 0
	}

	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Rating >= threshold {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].AuthorKey < out[j].AuthorKey
	})

	switch sortOrder {
	case domain.ReviewSortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return effectiveTime(out[i]).Before(effectiveTime(out[j]))
		})
	case domain.ReviewSortHighest:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return effectiveTime(out[i]).After(effectiveTime(out[j]))
		})
	case domain.ReviewSortLowest:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating < out[j].Rating
			}
			return effectiveTime(out[i]).After(effectiveTime(out[j]))
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return effectiveTime(out[i]).After(effectiveTime(out[j]))
		})
	}

	return out
}

var epoch = time.Unix(0, 0).UTC()

func effectiveTime(r domain.Review) time.Time {
	if r.Timestamp.IsZero() {
		return epoch
	}
	return r.Timestamp
}
