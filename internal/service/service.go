// Package service holds the study-spot directory and review use cases.
package service

import (
	"context"

	"github.com/ratemystudyspots/studyspots/internal/domain"
)

const tracerName = "github.com/ratemystudyspots/studyspots/internal/service"

// SpotCatalog is the read-only view of the study-spot catalog.
type SpotCatalog interface {
	Spots() []domain.StudySpot
	Lookup(key string) (domain.StudySpot, bool)
}

// ReviewEventPublisher announces accepted reviews to other systems.
type ReviewEventPublisher interface {
	PublishReviewSubmitted(ctx context.Context, review *domain.Review) error
}
