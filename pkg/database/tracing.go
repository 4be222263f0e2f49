package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ratemystudyspots/studyspots/pkg/database"

type slowQueryPolicy struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowQueries atomic.Pointer[slowQueryPolicy]

// SetSlowQueryLogging makes TraceQuery warn about statements that take at
// least threshold. A zero threshold or nil logger turns it off.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowQueries.Store(nil)
		return
	}
	slowQueries.Store(&slowQueryPolicy{threshold: threshold, logger: logger})
}

func (p *slowQueryPolicy) observe(ctx context.Context, operation, statement string, elapsed time.Duration, err error) {
	if p == nil || elapsed < p.threshold {
		return
	}
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("statement", statement),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	p.logger.LogAttrs(ctx, slog.LevelWarn, "slow query detected", attrs...)
}

// TraceQuery opens a client span named "db.<operation>" around one statement.
// Call the returned func with the statement's error once it finishes:
//
//	ctx, end := database.TraceQuery(ctx, "ListReviews", listReviewsQuery)
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	started := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		slowQueries.Load().observe(ctx, operation, statement, time.Since(started), err)
	}
}
