package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
	"github.com/jakechorley/hostelhub/pkg/docstore"
)

// testClock replaces timeNow for the duration of a test
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func setClock(t *testing.T, start time.Time) *testClock {
	t.Helper()
	clock := &testClock{now: start}
	prev := timeNow
	timeNow = clock.Now
	t.Cleanup(func() { timeNow = prev })
	return clock
}

func newTestDB() *db.DB {
	return db.NewDB(docstore.NewMemory())
}

func testConfig() *config.Config {
	return &config.Config{
		HostelName: "Test Hostel",
		Store:      config.StoreConfig{Backend: config.BackendMemory},
		Schedule:   config.ScheduleConfig{RetryDelay: time.Millisecond},
		Laundry:    config.LaundryConfig{Machines: 2},
	}
}

func TestWriteWithRetry(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		failWith  error
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", failures: 0, wantCalls: 1},
		{name: "retry succeeds", failures: 1, failWith: errBoom, wantCalls: 2},
		{name: "retry fails", failures: 2, failWith: errBoom, wantCalls: 2, wantErr: model.ErrTransientWrite},
		{name: "not found is not retried", failures: 2, failWith: model.ErrNotFound, wantCalls: 1, wantErr: model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := writeWithRetry(context.Background(), zap.NewNop(), time.Millisecond, "save thing", func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteWithRetry_KeepsCause(t *testing.T) {
	errBoom := errors.New("boom")

	err := writeWithRetry(context.Background(), zap.NewNop(), time.Millisecond, "save thing", func() error {
		return errBoom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransientWrite)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "failed to save thing")
}

func TestRequireID(t *testing.T) {
	assert.NoError(t, requireID("user id", "u1"))

	err := requireID("user id", "  ")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "user id")
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, uniqueStrings([]string{"b", "a", "b", "c", "a"}))
	assert.Empty(t, uniqueStrings(nil))
}
