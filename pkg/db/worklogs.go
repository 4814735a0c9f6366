package db

import (
	"context"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const workLogEntity = "work log"

// GetWorkLogs retrieves every shift record
func (db *DB) GetWorkLogs(ctx context.Context) ([]ShiftRecord, error) {
	return queryAs[ShiftRecord](ctx, db.store, WorkLogsCollection, workLogEntity)
}

// GetWorkLogsByUser retrieves a user's shift records. Callers test EndTime on the decoded
// records rather than querying on it, so null and missing end times are treated alike.
func (db *DB) GetWorkLogsByUser(ctx context.Context, userID string) ([]ShiftRecord, error) {
	return queryAs[ShiftRecord](ctx, db.store, WorkLogsCollection, workLogEntity, docstore.Eq("userId", userID))
}

func (db *DB) GetWorkLog(ctx context.Context, id string) (*ShiftRecord, error) {
	return getAs[ShiftRecord](ctx, db.store, WorkLogsCollection, id, workLogEntity)
}

// InsertWorkLog writes a new shift record, assigning an id if it has none.
// Writing the same record twice is harmless since the id is fixed before the first attempt.
func (db *DB) InsertWorkLog(ctx context.Context, record *ShiftRecord) error {
	record.ID = newID(record.ID)
	return setAs(ctx, db.store, WorkLogsCollection, record.ID, workLogEntity, record)
}

// CloseWorkLog persists the end of a shift: endTime, totalMinutes, notes and forceClosed
func (db *DB) CloseWorkLog(ctx context.Context, record *ShiftRecord) error {
	fields := docstore.Document{
		"endTime":      record.EndTime,
		"totalMinutes": record.TotalMinutes,
		"forceClosed":  record.ForceClosed,
	}
	if record.Notes != "" {
		fields["notes"] = record.Notes
	}
	return update(ctx, db.store, WorkLogsCollection, record.ID, workLogEntity, fields)
}

func (db *DB) DeleteWorkLog(ctx context.Context, id string) error {
	return remove(ctx, db.store, WorkLogsCollection, id, workLogEntity)
}
