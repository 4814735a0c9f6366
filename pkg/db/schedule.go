package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const scheduleEntity = "schedule"

// GetSchedule reads the schedule document. A missing document is an empty table.
func (db *DB) GetSchedule(ctx context.Context) (*ScheduleDocument, error) {
	doc, err := db.store.Get(ctx, SchedulesCollection, MainScheduleID)
	if errors.Is(err, docstore.ErrNotFound) {
		return &ScheduleDocument{Data: model.ScheduleTable{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	var schedule ScheduleDocument
	if err := docstore.Decode(doc, &schedule); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	if schedule.Data == nil {
		schedule.Data = model.ScheduleTable{}
	}
	schedule.Data.Prune()

	return &schedule, nil
}

// SetSchedule overwrites the whole schedule document
func (db *DB) SetSchedule(ctx context.Context, table model.ScheduleTable, updatedAt time.Time) error {
	if table == nil {
		table = model.ScheduleTable{}
	}
	return setAs(ctx, db.store, SchedulesCollection, MainScheduleID, scheduleEntity, ScheduleDocument{
		Data:      table,
		UpdatedAt: updatedAt,
	})
}
