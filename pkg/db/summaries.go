package db

import (
	"context"
)

const workSummaryEntity = "work summary"

func (db *DB) GetWorkSummary(ctx context.Context, userID string) (*WorkHoursSummary, error) {
	summary, err := getAs[WorkHoursSummary](ctx, db.store, WorkSummariesCollection, userID, workSummaryEntity)
	if err != nil {
		return nil, err
	}
	// Older documents may not carry their own key
	if summary.UserID == "" {
		summary.UserID = userID
	}
	return summary, nil
}

// GetWorkSummaries returns every cached summary as stored
func (db *DB) GetWorkSummaries(ctx context.Context) ([]WorkHoursSummary, error) {
	snaps, err := queryAs[struct {
		ID string `json:"id"`
		WorkHoursSummary
	}](ctx, db.store, WorkSummariesCollection, workSummaryEntity)
	if err != nil {
		return nil, err
	}

	summaries := make([]WorkHoursSummary, 0, len(snaps))
	for _, s := range snaps {
		summary := s.WorkHoursSummary
		if summary.UserID == "" {
			summary.UserID = s.ID
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// SetWorkSummary overwrites the user's summary in full
func (db *DB) SetWorkSummary(ctx context.Context, summary *WorkHoursSummary) error {
	return setAs(ctx, db.store, WorkSummariesCollection, summary.UserID, workSummaryEntity, summary)
}

func (db *DB) DeleteWorkSummary(ctx context.Context, userID string) error {
	return remove(ctx, db.store, WorkSummariesCollection, userID, workSummaryEntity)
}
