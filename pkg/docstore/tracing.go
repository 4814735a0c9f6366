package docstore

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracedStore struct {
	next   Store
	tracer trace.Tracer
}

// WithTracing wraps a store so every call runs inside a span named docstore.<Op>.
// Not-found results are recorded as span events, not errors.
func WithTracing(store Store, tracer trace.Tracer) Store {
	return &tracedStore{next: store, tracer: tracer}
}

func (s *tracedStore) start(ctx context.Context, op, collection string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("docstore.collection", collection))
	return s.tracer.Start(ctx, "docstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		return
	}
	if errors.Is(err, ErrNotFound) {
		span.AddEvent("not found")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (s *tracedStore) Get(ctx context.Context, collection, id string) (Document, error) {
	ctx, span := s.start(ctx, "Get", collection, attribute.String("docstore.id", id))
	doc, err := s.next.Get(ctx, collection, id)
	finish(span, err)
	return doc, err
}

func (s *tracedStore) Set(ctx context.Context, collection, id string, doc Document) error {
	ctx, span := s.start(ctx, "Set", collection, attribute.String("docstore.id", id))
	err := s.next.Set(ctx, collection, id, doc)
	finish(span, err)
	return err
}

func (s *tracedStore) Update(ctx context.Context, collection, id string, fields Document) error {
	ctx, span := s.start(ctx, "Update", collection,
		attribute.String("docstore.id", id),
		attribute.Int("docstore.fields", len(fields)),
	)
	err := s.next.Update(ctx, collection, id, fields)
	finish(span, err)
	return err
}

func (s *tracedStore) Delete(ctx context.Context, collection, id string) error {
	ctx, span := s.start(ctx, "Delete", collection, attribute.String("docstore.id", id))
	err := s.next.Delete(ctx, collection, id)
	finish(span, err)
	return err
}

func (s *tracedStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	fields := make([]string, 0, len(filters))
	for _, f := range filters {
		fields = append(fields, f.Field)
	}
	ctx, span := s.start(ctx, "Query", collection, attribute.StringSlice("docstore.filters", fields))
	results, err := s.next.Query(ctx, collection, filters...)
	if err == nil {
		span.SetAttributes(attribute.Int("docstore.results", len(results)))
	}
	finish(span, err)
	return results, err
}

func (s *tracedStore) Close() error {
	return s.next.Close()
}
