// Package seed fills a review store with deterministic demo reviews. Reviews
// go through the review service, so they obey the same validation and
// overwrite rules as submissions over HTTP.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	"github.com/ratemystudyspots/studyspots/internal/service"
)

// DefaultReviewsPerSpot is the number of reviews seeded per spot.
const DefaultReviewsPerSpot = 5

var authors = []string{
	"Avery Chen", "Jordan Patel", "Sam Okafor", "Riley Nguyen", "Morgan Silva",
	"Casey Kim", "Taylor Haddad", "Jamie Rossi", "Quinn Adeyemi", "Alex Novak",
	"Drew Tanaka", "Robin Mensah",
}

var tagPool = []string{
	"quiet", "outlets", "natural light", "group friendly", "late hours",
	"crowded", "cold", "good wifi", "whiteboards", "comfy chairs",
}

var textsByRating = map[int][]string{
	1: {"Too loud to focus and nowhere to plug in.", "Always packed, I gave up finding a seat."},
	2: {"Usable in a pinch but the wifi keeps dropping.", "Chairs are rough after an hour."},
	3: {"Decent spot, gets busy around midterms.", "Fine for reading, not great for long sessions."},
	4: {"Reliable seats and plenty of outlets.", "Good light and mostly quiet in the mornings."},
	5: {"My favourite place to study on campus.", "Quiet, bright, and never short on outlets."},
}

// Generator produces reproducible review inputs from a seed.
type Generator struct {
	rng     *rand.Rand
	perSpot int
}

// NewGenerator creates a generator. A perSpot below 1 falls back to
// DefaultReviewsPerSpot; it is capped at the number of distinct authors.
func NewGenerator(seed uint64, perSpot int) *Generator {
	if perSpot < 1 {
		perSpot = DefaultReviewsPerSpot
	}
	if perSpot > len(authors) {
		perSpot = len(authors)
	}
	return &Generator{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		perSpot: perSpot,
	}
}

// Reviews returns perSpot inputs for each spot, each by a different author.
func (g *Generator) Reviews(spots []domain.StudySpot) []service.SubmitReviewInput {
	out := make([]service.SubmitReviewInput, 0, len(spots)*g.perSpot)
	for _, spot := range spots {
		order := g.rng.Perm(len(authors))
		for _, idx := range order[:g.perSpot] {
			rating := 1 + g.rng.IntN(domain.MaxRating)
			texts := textsByRating[rating]
			out = append(out, service.SubmitReviewInput{
				SpotKey:   spot.Key(),
				Author:    authors[idx],
				Text:      texts[g.rng.IntN(len(texts))],
				Rating:    rating,
				Tags:      g.tags(),
				Amenities: g.amenities(rating),
			})
		}
	}
	return out
}

func (g *Generator) tags() []string {
	n := g.rng.IntN(4)
	if n == 0 {
		return nil
	}
	perm := g.rng.Perm(len(tagPool))
	tags := make([]string, n)
	for i := range n {
		tags[i] = tagPool[perm[i]]
	}
	return tags
}

// amenities scores each sub-rating near the overall rating; about half of
// them are left unset.
func (g *Generator) amenities(rating int) *domain.Amenities {
	score := func() *int {
		if g.rng.IntN(2) == 0 {
			return nil
		}
		v := min(max(rating+g.rng.IntN(3)-1, domain.MinRating), domain.MaxRating)
		return &v
	}
	a := &domain.Amenities{
		NoiseLevel:         score(),
		OutletAvailability: score(),
		WifiStrength:       score(),
		Lighting:           score(),
	}
	if len(a.Fields()) == 0 {
		return nil
	}
	return a
}

// Clock returns a clock that starts at start and moves forward by step on
// every call, so seeded reviews get distinct, increasing timestamps.
func Clock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

// StartFor returns the start time that lets count steps of a Clock end at
// end, keeping every seeded timestamp in the past.
func StartFor(end time.Time, step time.Duration, count int) time.Time {
	return end.Add(-step * time.Duration(count))
}

// Submitter stores one review.
type Submitter interface {
	SubmitReview(ctx context.Context, input *service.SubmitReviewInput) (*domain.Review, error)
}

// Result counts the outcome of a seed run.
type Result struct {
	Submitted int
	Failed    int
}

// Run submits every input. A failed review is logged and skipped; Run only
// stops early when ctx is done.
func Run(ctx context.Context, submitter Submitter, inputs []service.SubmitReviewInput, logger *slog.Logger) (Result, error) {
	var res Result
	for i := range inputs {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("seed interrupted after %d reviews: %w", res.Submitted, err)
		}
		in := inputs[i]
		if _, err := submitter.SubmitReview(ctx, &in); err != nil {
			res.Failed++
			logger.WarnContext(ctx, "failed to seed review",
				slog.String("spot_key", in.SpotKey),
				slog.String("author", in.Author),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Submitted++
	}
	return res, nil
}
