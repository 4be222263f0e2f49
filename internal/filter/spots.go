// Package filter selects and orders study spots and reviews for display.
// Inputs are never modified; every function returns a new slice.
package filter

import (
	"sort"
	"strings"

	"github.com/ratemystudyspots/studyspots/internal/domain"
)

// SpotQuery holds the directory filter criteria. Empty fields match everything.
type SpotQuery struct {
	Search   string
	Type     string
	Capacity string
}

// SpotPredicate reports whether a spot should stay in the result.
type SpotPredicate func(domain.StudySpot) bool

// MatchSearch matches the term case-insensitively against building, room
// number and space type.
func MatchSearch(term string) SpotPredicate {
	needle := strings.ToLower(term)
	return func(s domain.StudySpot) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(s.Building), needle) ||
			strings.Contains(strings.ToLower(s.RoomNumber), needle) ||
			strings.Contains(strings.ToLower(s.SpaceType), needle)
	}
}

// MatchType matches the space type exactly, ignoring case. "all" and "" match
// every spot.
func MatchType(spaceType string) SpotPredicate {
	return func(s domain.StudySpot) bool {
		if spaceType == "" || spaceType == domain.FilterAll {
			return true
		}
		return strings.EqualFold(s.SpaceType, spaceType)
	}
}

// MatchCapacity matches the capacity bucket. Spots with a non-numeric
// capacity only pass "all". Unknown bucket names do not filter.
func MatchCapacity(bucket string) SpotPredicate {
	return func(s domain.StudySpot) bool {
		switch bucket {
		case domain.CapacitySmall, domain.CapacityMedium, domain.CapacityLarge:
			return s.CapacityBucket() == bucket
		default:
			return true
		}
	}
}

// Predicates returns the predicates described by the query.
func (q SpotQuery) Predicates() []SpotPredicate {
	return []SpotPredicate{
		MatchSearch(q.Search),
		MatchType(q.Type),
		MatchCapacity(q.Capacity),
	}
}

// ApplySpotPredicates keeps the spots that satisfy every predicate, in input order.
func ApplySpotPredicates(spots []domain.SpotWithRating, preds ...SpotPredicate) []domain.SpotWithRating {
	out := make([]domain.SpotWithRating, 0, len(spots))
outer:
	for _, s := range spots {
		for _, p := range preds {
			if !p(s.Spot) {
				continue outer
			}
		}
		out = append(out, s)
	}
	return out
}

// FilterSpots returns the spots matching the search term, type filter and
// capacity filter, combined with AND, preserving catalog order.
func FilterSpots(spots []domain.SpotWithRating, q SpotQuery) []domain.SpotWithRating {
	return ApplySpotPredicates(spots, q.Predicates()...)
}

// SortSpots returns a copy of spots in the requested order. The sort is stable
// so equal keys keep catalog order. Unknown orders keep catalog order.
func SortSpots(spots []domain.SpotWithRating, order string) []domain.SpotWithRating {
	out := make([]domain.SpotWithRating, len(spots))
	copy(out, spots)

	switch order {
	case domain.SpotSortRating:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Rating, out[j].Rating
			if a.Average != b.Average {
				return a.Average > b.Average
			}
			return a.TotalReviews > b.TotalReviews
		})
	case domain.SpotSortCapacity:
		sort.SliceStable(out, func(i, j int) bool {
			a, aok := out[i].Spot.Capacity()
			b, bok := out[j].Spot.Capacity()
			if aok != bok {
				return aok
			}
			return a > b
		})
	case domain.SpotSortName:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Spot, out[j].Spot
			if ab, bb := strings.ToLower(a.Building), strings.ToLower(b.Building); ab != bb {
				return ab < bb
			}
			return strings.ToLower(a.RoomNumber) < strings.ToLower(b.RoomNumber)
		})
	}

	return out
}

// SpaceTypeOptions returns "all" followed by the distinct space types of the
// catalog in first-seen order.
func SpaceTypeOptions(spots []domain.StudySpot) []string {
	seen := make(map[string]struct{}, len(spots))
	out := []string{domain.FilterAll}
	for _, s := range spots {
		if _, ok := seen[s.SpaceType]; ok {
			continue
		}
		seen[s.SpaceType] = struct{}{}
		out = append(out, s.SpaceType)
	}
	return out
}

// SimilarSpots returns up to limit catalog spots sharing the space type of
// target, excluding target itself, in catalog order.
func SimilarSpots(catalog []domain.StudySpot, target domain.StudySpot, limit int) []domain.StudySpot {
	out := make([]domain.StudySpot, 0, limit)
	targetKey := target.Key()
	for _, s := range catalog {
		if len(out) >= limit {
			break
		}
		if s.SpaceType != target.SpaceType || s.Key() == targetKey {
			continue
		}
		out = append(out, s)
	}
	return out
}
