package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleTable_AddIsIdempotent(t *testing.T) {
	table := ScheduleTable{}

	assert.True(t, table.Add("2024-01-10", "morning", "v1"))
	assert.False(t, table.Add("2024-01-10", "morning", "v1"))

	assert.Equal(t, []string{"v1"}, table.Volunteers("2024-01-10", "morning"))
}

func TestScheduleTable_AddKeepsOrder(t *testing.T) {
	table := ScheduleTable{}
	table.Add("2024-01-10", "morning", "v2")
	table.Add("2024-01-10", "morning", "v1")
	table.Add("2024-01-10", "morning", "v3")

	assert.Equal(t, []string{"v2", "v1", "v3"}, table.Volunteers("2024-01-10", "morning"))
}

func TestScheduleTable_RemoveLastVolunteerPrunesDate(t *testing.T) {
	table := ScheduleTable{
		"2024-01-10": {"morning": {"v1"}},
	}

	assert.True(t, table.Remove("2024-01-10", "morning", "v1"))

	_, ok := table["2024-01-10"]
	assert.False(t, ok, "date should be removed once it has no slots")
}

func TestScheduleTable_RemoveLastVolunteerKeepsOtherSlots(t *testing.T) {
	table := ScheduleTable{
		"2024-01-10": {
			"morning": {"v1"},
			"evening": {"v2"},
		},
	}

	assert.True(t, table.Remove("2024-01-10", "morning", "v1"))

	require.Contains(t, table, "2024-01-10")
	_, ok := table["2024-01-10"]["morning"]
	assert.False(t, ok, "empty slot should be removed")
	assert.Equal(t, []string{"v2"}, table.Volunteers("2024-01-10", "evening"))
}

func TestScheduleTable_RemoveOneOfMany(t *testing.T) {
	table := ScheduleTable{
		"2024-01-10": {"morning": {"v1", "v2", "v3"}},
	}

	assert.True(t, table.Remove("2024-01-10", "morning", "v2"))
	assert.Equal(t, []string{"v1", "v3"}, table.Volunteers("2024-01-10", "morning"))
}

func TestScheduleTable_RemoveMissing(t *testing.T) {
	table := ScheduleTable{
		"2024-01-10": {"morning": {"v1"}},
	}

	assert.False(t, table.Remove("2024-01-10", "morning", "v9"))
	assert.False(t, table.Remove("2024-01-10", "night", "v1"))
	assert.False(t, table.Remove("2024-02-01", "morning", "v1"))
	assert.Equal(t, []string{"v1"}, table.Volunteers("2024-01-10", "morning"))
}

func TestScheduleTable_RemoveSlot(t *testing.T) {
	table := ScheduleTable{
		"2024-01-10": {"morning": {"v1", "v2"}},
		"2024-01-11": {"morning": {"v1"}, "night": {"v3"}},
	}

	assert.True(t, table.RemoveSlot("2024-01-10", "morning"))
	assert.NotContains(t, table, "2024-01-10")

	assert.True(t, table.RemoveSlot("2024-01-11", "night"))
	assert.Equal(t, []string{"v1"}, table.Volunteers("2024-01-11", "morning"))

	assert.False(t, table.RemoveSlot("2024-01-11", "night"))
}

func TestScheduleTable_CloneIsDeep(t *testing.T) {
	table := ScheduleTable{
		"2024-01-10": {"morning": {"v1"}},
	}

	clone := table.Clone()
	clone.Add("2024-01-10", "morning", "v2")
	clone.Add("2024-01-12", "night", "v3")

	assert.Equal(t, []string{"v1"}, table.Volunteers("2024-01-10", "morning"))
	assert.NotContains(t, table, "2024-01-12")
}

func TestScheduleTable_Prune(t *testing.T) {
	table := ScheduleTable{
		"2024-01-10": {"morning": {}, "night": {"v1"}},
		"2024-01-11": {"morning": {}},
		"2024-01-12": {},
	}

	table.Prune()

	assert.Equal(t, ScheduleTable{"2024-01-10": {"night": {"v1"}}}, table)
}

func TestScheduleTable_Between(t *testing.T) {
	table := ScheduleTable{
		"2024-01-09": {"morning": {"v1"}},
		"2024-01-10": {"morning": {"v2"}},
		"2024-01-11": {"morning": {"v3"}},
	}

	view := table.Between("2024-01-10", "2024-01-11")
	assert.Equal(t, []string{"2024-01-10", "2024-01-11"}, view.Dates())

	all := table.Between("", "")
	assert.Len(t, all, 3)
}
