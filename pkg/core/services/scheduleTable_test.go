package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
	"github.com/jakechorley/hostelhub/pkg/docstore"
	"github.com/jakechorley/hostelhub/pkg/sqlitedb"
)

// flakyScheduleStore counts writes and can fail or silently drop them
type flakyScheduleStore struct {
	db.ScheduleStore
	writes int
	// failWrites is how many of the next writes return an error
	failWrites int
	// dropWrites is how many of the next writes report success without persisting
	dropWrites int
}

func (s *flakyScheduleStore) SetSchedule(ctx context.Context, table model.ScheduleTable, updatedAt time.Time) error {
	s.writes++
	if s.failWrites > 0 {
		s.failWrites--
		return errors.New("deadline exceeded")
	}
	if s.dropWrites > 0 {
		s.dropWrites--
		return nil
	}
	return s.ScheduleStore.SetSchedule(ctx, table, updatedAt)
}

func seedSchedule(t *testing.T, store db.ScheduleStore, table model.ScheduleTable) {
	t.Helper()
	require.NoError(t, store.SetSchedule(context.Background(), table, time.Now()))
}

func storedSchedule(t *testing.T, store db.ScheduleStore) model.ScheduleTable {
	t.Helper()
	schedule, err := store.GetSchedule(context.Background())
	require.NoError(t, err)
	return schedule.Data
}

func TestAssign_AddsVolunteer(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()

	table, err := Assign(ctx, database, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, table.Volunteers("2024-01-10", "morning"))

	table, err = Assign(ctx, database, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v2")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, table.Volunteers("2024-01-10", "morning"))

	assert.Equal(t, model.ScheduleTable{"2024-01-10": {"morning": {"v1", "v2"}}}, storedSchedule(t, database))
}

func TestAssign_TwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &flakyScheduleStore{ScheduleStore: newTestDB()}

	first, err := Assign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1")
	require.NoError(t, err)
	second, err := Assign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"v1"}, second.Volunteers("2024-01-10", "morning"))
	assert.Equal(t, 1, store.writes, "second assign must not write")
	assert.Equal(t, []string{"v1"}, storedSchedule(t, store).Volunteers("2024-01-10", "morning"))
}

func TestAssign_Validation(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()

	tests := []struct {
		name      string
		date      string
		slot      model.ScheduleSlot
		volunteer string
	}{
		{"bad date", "10/01/2024", model.SlotMorning, "v1"},
		{"bad slot", "2024-01-10", model.ScheduleSlot("brunch"), "v1"},
		{"missing volunteer", "2024-01-10", model.SlotMorning, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assign(ctx, database, testConfig(), zap.NewNop(), tt.date, tt.slot, tt.volunteer)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	assert.Empty(t, storedSchedule(t, database))
}

func TestAssign_ClosedDate(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	cfg := testConfig()
	cfg.ScheduleOverrides = []config.ScheduleOverride{
		{RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", Closed: true, Reason: "Christmas"},
	}

	_, err := Assign(ctx, database, cfg, zap.NewNop(), "2024-12-25", model.SlotEvening, "v1")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrClosed)
	assert.Contains(t, err.Error(), "Christmas")

	_, err = Assign(ctx, database, cfg, zap.NewNop(), "2024-12-24", model.SlotEvening, "v1")
	require.NoError(t, err)
}

func TestAssign_RetriesFailedWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := &flakyScheduleStore{ScheduleStore: newTestDB(), failWrites: 1}

	table, err := Assign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotNight, "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, table.Volunteers("2024-01-10", "night"))
	assert.Equal(t, 2, store.writes)
	assert.True(t, storedSchedule(t, store).Contains("2024-01-10", "night", "v1"))
}

func TestAssign_SecondFailureIsTransient(t *testing.T) {
	ctx := context.Background()
	store := &flakyScheduleStore{ScheduleStore: newTestDB(), failWrites: 2}

	table, err := Assign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotNight, "v1")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransientWrite)
	assert.Nil(t, table)
	assert.Equal(t, 2, store.writes)
	assert.Empty(t, storedSchedule(t, store))
}

func TestUnassign_LastVolunteerRemovesDate(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	seedSchedule(t, database, model.ScheduleTable{
		"2024-01-10": {"morning": {"v1"}},
		"2024-01-11": {"evening": {"v2"}},
	})

	result, err := Unassign(ctx, database, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1", false)
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.NotContains(t, result.Table, "2024-01-10")

	stored := storedSchedule(t, database)
	assert.NotContains(t, stored, "2024-01-10")
	assert.Equal(t, []string{"v2"}, stored.Volunteers("2024-01-11", "evening"))
}

func TestUnassign_LastVolunteerRemovesSlotOnly(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	seedSchedule(t, database, model.ScheduleTable{
		"2024-01-10": {"morning": {"v1"}, "night": {"v3"}},
	})

	result, err := Unassign(ctx, database, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1", false)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleTable{"2024-01-10": {"night": {"v3"}}}, result.Table)
	assert.Equal(t, result.Table, storedSchedule(t, database))
}

func TestUnassign_KeepsOtherVolunteers(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	seedSchedule(t, database, model.ScheduleTable{
		"2024-01-10": {"morning": {"v1", "v2", "v3"}},
	})

	result, err := Unassign(ctx, database, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v2", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v3"}, result.Table.Volunteers("2024-01-10", "morning"))
}

func TestUnassign_WholeSlot(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	seedSchedule(t, database, model.ScheduleTable{
		"2024-01-10": {"morning": {"v1", "v2"}},
	})

	result, err := Unassign(ctx, database, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "", false)
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.Empty(t, result.Table)
	assert.Empty(t, storedSchedule(t, database))
}

func TestUnassign_AbsentVolunteerDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := &flakyScheduleStore{ScheduleStore: newTestDB()}
	seedSchedule(t, store, model.ScheduleTable{"2024-01-10": {"morning": {"v1"}}})
	store.writes = 0

	result, err := Unassign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v9", true)
	require.NoError(t, err)
	assert.False(t, result.Removed)
	assert.False(t, result.Corrected)
	assert.Equal(t, 0, store.writes)
}

func TestUnassign_VerifyCorrectsLostWrite(t *testing.T) {
	ctx := context.Background()
	store := &flakyScheduleStore{ScheduleStore: newTestDB()}
	seedSchedule(t, store, model.ScheduleTable{"2024-01-10": {"morning": {"v1", "v2"}}})
	store.dropWrites = 1

	result, err := Unassign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1", true)
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.True(t, result.Corrected)
	assert.Equal(t, []string{"v2"}, result.Table.Volunteers("2024-01-10", "morning"))

	assert.False(t, storedSchedule(t, store).Contains("2024-01-10", "morning", "v1"))
}

func TestUnassign_VerifyWithoutCorrection(t *testing.T) {
	ctx := context.Background()
	store := &flakyScheduleStore{ScheduleStore: newTestDB()}
	seedSchedule(t, store, model.ScheduleTable{"2024-01-10": {"morning": {"v1"}}})
	store.writes = 0

	result, err := Unassign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1", true)
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.False(t, result.Corrected)
	assert.Equal(t, 1, store.writes)
}

func TestUnassign_SecondFailureIsTransient(t *testing.T) {
	ctx := context.Background()
	store := &flakyScheduleStore{ScheduleStore: newTestDB()}
	seedSchedule(t, store, model.ScheduleTable{"2024-01-10": {"morning": {"v1"}}})
	store.failWrites = 2

	_, err := Unassign(ctx, store, testConfig(), zap.NewNop(), "2024-01-10", model.SlotMorning, "v1", false)
	assert.ErrorIs(t, err, model.ErrTransientWrite)
	assert.True(t, storedSchedule(t, store).Contains("2024-01-10", "morning", "v1"))
}

func TestForceRemove(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	seedSchedule(t, database, model.ScheduleTable{"2024-01-10": {"afternoon": {"v1"}}})

	removed, err := ForceRemove(ctx, database, zap.NewNop(), "2024-01-10", model.SlotAfternoon, "v1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, storedSchedule(t, database))

	removed, err = ForceRemove(ctx, database, zap.NewNop(), "2024-01-10", model.SlotAfternoon, "v1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGetSchedule_Range(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	seedSchedule(t, database, model.ScheduleTable{
		"2024-01-09": {"morning": {"v1"}},
		"2024-01-10": {"morning": {"v2"}},
		"2024-01-12": {"night": {"v3"}},
	})

	table, err := GetSchedule(ctx, database, "2024-01-10", "2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-10", "2024-01-12"}, table.Dates())

	table, err = GetSchedule(ctx, database, "", "")
	require.NoError(t, err)
	assert.Len(t, table, 3)

	_, err = GetSchedule(ctx, database, "2024-01-12", "2024-01-10")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = GetSchedule(ctx, database, "yesterday", "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestScheduleRoundTrip(t *testing.T) {
	stores := map[string]func(t *testing.T) docstore.Store{
		"memory": func(t *testing.T) docstore.Store {
			return docstore.NewMemory()
		},
		"sqlite": func(t *testing.T) docstore.Store {
			store, err := sqlitedb.Open(filepath.Join(t.TempDir(), "hostel.db"))
			require.NoError(t, err)
			return store
		},
	}

	table := model.ScheduleTable{
		"2024-01-10": {"morning": {"v1", "v2"}, "night": {"v3"}},
		"2024-01-11": {"afternoon": {"v2"}},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			database := db.NewDB(newStore(t))
			t.Cleanup(func() { _ = database.Close() })

			require.NoError(t, database.SetSchedule(context.Background(), table, time.Now()))
			assert.Equal(t, table, storedSchedule(t, database))
		})
	}
}
