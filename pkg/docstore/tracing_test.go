package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jakechorley/hostelhub/pkg/docstore"
	"github.com/jakechorley/hostelhub/pkg/docstore/docstoretest"
)

func newTracedStore() (docstore.Store, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return docstore.WithTracing(docstore.NewMemory(), provider.Tracer("test")), recorder
}

func TestWithTracing_Contract(t *testing.T) {
	docstoretest.RunStoreTests(t, func(t *testing.T) docstore.Store {
		store, _ := newTracedStore()
		return store
	})
}

func TestWithTracing_RecordsSpans(t *testing.T) {
	store, recorder := newTracedStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tasks", "t1", docstore.Document{"title": "x"}))
	_, err := store.Query(ctx, "tasks", docstore.Eq("title", "x"))
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "docstore.Set", spans[0].Name())
	assert.Equal(t, "docstore.Query", spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.String("docstore.collection", "tasks"))
	assert.Contains(t, spans[1].Attributes(), attribute.Int("docstore.results", 1))
}

func TestWithTracing_NotFoundIsNotAnError(t *testing.T) {
	store, recorder := newTracedStore()

	_, err := store.Get(context.Background(), "tasks", "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "not found", spans[0].Events()[0].Name)
}

func TestWithTracing_ErrorsMarkSpan(t *testing.T) {
	store, recorder := newTracedStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Delete(ctx, "tasks", "t1")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
