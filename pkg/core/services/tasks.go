package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

// DefaultBoard is used for tasks created without a board
const DefaultBoard = "general"

type TaskInput struct {
	Board       string
	Title       string
	Description string
	AssigneeID  string
	DueDate     string
	CreatedBy   string
}

// TaskFilter narrows ListTasks; empty fields match everything
type TaskFilter struct {
	Board      string
	Status     model.TaskStatus
	AssigneeID string
}

// CreateTask adds a todo card to a board
func CreateTask(ctx context.Context, store db.TaskStore, logger *zap.Logger, input TaskInput) (*db.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewError("task title", fmt.Errorf("is required: %w", model.ErrInvalidInput))
	}
	if err := requireID("creator id", input.CreatedBy); err != nil {
		return nil, err
	}
	if input.DueDate != "" {
		if _, err := model.ParseDate(input.DueDate); err != nil {
			return nil, err
		}
	}

	board := strings.TrimSpace(input.Board)
	if board == "" {
		board = DefaultBoard
	}

	now := timeNow().UTC()
	task := &db.Task{
		Board:       board,
		Title:       title,
		Description: input.Description,
		Status:      model.TaskTodo,
		AssigneeID:  input.AssigneeID,
		CreatedBy:   input.CreatedBy,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := store.InsertTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	logger.Info("Task created", zap.String("task_id", task.ID), zap.String("board", board))
	return task, nil
}

// ListTasks returns matching tasks, oldest first
func ListTasks(ctx context.Context, store db.TaskStore, filter TaskFilter) ([]db.Task, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalidTaskStatus(filter.Status)
	}

	tasks, err := store.GetTasks(ctx, filter.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	filtered := tasks[:0]
	for _, task := range tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.AssigneeID != "" && task.AssigneeID != filter.AssigneeID {
			continue
		}
		filtered = append(filtered, task)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// UpdateTaskStatus moves a task to status and returns the updated task
func UpdateTaskStatus(ctx context.Context, store db.TaskStore, logger *zap.Logger, id string, status model.TaskStatus) (*db.Task, error) {
	if !status.IsValid() {
		return nil, invalidTaskStatus(status)
	}

	if err := store.UpdateTaskStatus(ctx, id, status, timeNow().UTC()); err != nil {
		return nil, err
	}

	logger.Info("Task status updated", zap.String("task_id", id), zap.String("status", string(status)))
	return store.GetTask(ctx, id)
}

// AssignTask sets the task's assignee; an empty assigneeID clears it
func AssignTask(ctx context.Context, store db.TaskStore, logger *zap.Logger, id, assigneeID string) (*db.Task, error) {
	if err := store.UpdateTaskAssignee(ctx, id, assigneeID, timeNow().UTC()); err != nil {
		return nil, err
	}

	logger.Info("Task assigned", zap.String("task_id", id), zap.String("assignee_id", assigneeID))
	return store.GetTask(ctx, id)
}

// DeleteTask removes a task. Deleting a task that does not exist is not an error.
func DeleteTask(ctx context.Context, store db.TaskStore, logger *zap.Logger, id string) error {
	if err := requireID("task id", id); err != nil {
		return err
	}
	if err := store.DeleteTask(ctx, id); err != nil {
		return err
	}

	logger.Info("Task deleted", zap.String("task_id", id))
	return nil
}

func invalidTaskStatus(status model.TaskStatus) error {
	return model.NewError("task status", fmt.Errorf("%q is not one of todo, inProgress, done: %w", status, model.ErrInvalidInput))
}
