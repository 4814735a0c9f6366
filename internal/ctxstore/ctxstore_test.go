package ctxstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFrom(t *testing.T) {
	const key = Key("userId")
	ctx := With(context.Background(), key, "u1")

	got, ok := From[string](ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "u1", got)

	_, ok = From[int](ctx, key)
	assert.False(t, ok, "wrong type")

	_, ok = From[string](context.Background(), key)
	assert.False(t, ok)
}

func TestMustFrom(t *testing.T) {
	const key = Key("traceId")
	assert.Equal(t, "t1", MustFrom[string](With(context.Background(), key, "t1"), key))
	assert.PanicsWithValue(t, "ctxstore: traceId not found", func() {
		MustFrom[string](context.Background(), key)
	})
}
