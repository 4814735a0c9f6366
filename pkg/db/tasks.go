package db

import (
	"context"
	"time"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const taskEntity = "task"

// GetTasks retrieves the tasks on a board, or every task when board is empty
func (db *DB) GetTasks(ctx context.Context, board string) ([]Task, error) {
	var filters []docstore.Filter
	if board != "" {
		filters = append(filters, docstore.Eq("board", board))
	}
	return queryAs[Task](ctx, db.store, TasksCollection, taskEntity, filters...)
}

func (db *DB) GetTask(ctx context.Context, id string) (*Task, error) {
	return getAs[Task](ctx, db.store, TasksCollection, id, taskEntity)
}

func (db *DB) InsertTask(ctx context.Context, task *Task) error {
	task.ID = newID(task.ID)
	return setAs(ctx, db.store, TasksCollection, task.ID, taskEntity, task)
}

func (db *DB) UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus, updatedAt time.Time) error {
	return update(ctx, db.store, TasksCollection, id, taskEntity, docstore.Document{
		"status":    status,
		"updatedAt": updatedAt,
	})
}

func (db *DB) UpdateTaskAssignee(ctx context.Context, id, assigneeID string, updatedAt time.Time) error {
	return update(ctx, db.store, TasksCollection, id, taskEntity, docstore.Document{
		"assigneeId": assigneeID,
		"updatedAt":  updatedAt,
	})
}

func (db *DB) DeleteTask(ctx context.Context, id string) error {
	return remove(ctx, db.store, TasksCollection, id, taskEntity)
}
