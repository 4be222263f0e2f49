package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	pkgkafka "github.com/ratemystudyspots/studyspots/pkg/kafka"
	"github.com/ratemystudyspots/studyspots/pkg/logger"
)

// TopicReviewSubmitted is the Kafka topic review submissions are published to.
var TopicReviewSubmitted = pkgkafka.Topic("review", "submitted")

// AggregateTypeSpot is the aggregate type of review events; the aggregate id
// is the spot key so events of one spot stay ordered on one partition.
const AggregateTypeSpot = "study_spot"

// SourceStudySpots identifies events originating from this service.
const SourceStudySpots = "studyspots"

// ReviewSubmittedData is the payload for a review.submitted event.
type ReviewSubmittedData struct {
	SpotKey   string            `json:"spot_key"`
	AuthorKey string            `json:"author_key"`
	Author    string            `json:"author"`
	Rating    int               `json:"rating"`
	Tags      []string          `json:"tags,omitempty"`
	Amenities *domain.Amenities `json:"amenities,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	data := ReviewSubmittedData{
		SpotKey:   review.SpotKey,
		AuthorKey: review.AuthorKey,
		Author:    review.Author,
		Rating:    review.Rating,
		Tags:      review.Tags,
		Amenities: review.Amenities,
		Timestamp: review.Timestamp,
	}

	event, err := pkgkafka.NewEvent(SourceStudySpots, "review.submitted",
		pkgkafka.Aggregate{ID: review.SpotKey, Type: AggregateTypeSpot}, data,
		pkgkafka.CorrelatedWith(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMetadata("trace_id", traceID(ctx)),
	)
	if err != nil {
		return fmt.Errorf("create review.submitted event: %w", err)
	}

	if err := p.publisher.Publish(ctx, TopicReviewSubmitted, event); err != nil {
		return fmt.Errorf("publish review.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.submitted event",
		slog.String("spot_key", review.SpotKey),
		slog.String("author_key", review.AuthorKey),
	)

	return nil
}

// NoopProducer drops every event. It is used when Kafka is disabled.
type NoopProducer struct{}

// PublishReviewSubmitted does nothing.
func (NoopProducer) PublishReviewSubmitted(context.Context, *domain.Review) error {
	return nil
}

// traceID returns the trace id carried by ctx, or "" outside a trace.
func traceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
