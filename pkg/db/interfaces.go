package db

import (
	"context"
	"time"

	"github.com/jakechorley/hostelhub/pkg/core/model"
)

// WorkLogStore defines the work log (shift ledger) operations
type WorkLogStore interface {
	GetWorkLogs(ctx context.Context) ([]ShiftRecord, error)
	GetWorkLogsByUser(ctx context.Context, userID string) ([]ShiftRecord, error)
	GetWorkLog(ctx context.Context, id string) (*ShiftRecord, error)
	InsertWorkLog(ctx context.Context, record *ShiftRecord) error
	CloseWorkLog(ctx context.Context, record *ShiftRecord) error
	DeleteWorkLog(ctx context.Context, id string) error
}

// WorkSummaryStore defines the cached work-hour summary operations
type WorkSummaryStore interface {
	GetWorkSummary(ctx context.Context, userID string) (*WorkHoursSummary, error)
	GetWorkSummaries(ctx context.Context) ([]WorkHoursSummary, error)
	SetWorkSummary(ctx context.Context, summary *WorkHoursSummary) error
	DeleteWorkSummary(ctx context.Context, userID string) error
}

// ShiftStore is what the shift ledger needs: work logs plus the summaries it recomputes
type ShiftStore interface {
	WorkLogStore
	WorkSummaryStore
}

// ScheduleStore reads and overwrites the single schedule document
type ScheduleStore interface {
	GetSchedule(ctx context.Context) (*ScheduleDocument, error)
	SetSchedule(ctx context.Context, table model.ScheduleTable, updatedAt time.Time) error
}

// TaskStore defines the task board operations
type TaskStore interface {
	GetTasks(ctx context.Context, board string) ([]Task, error)
	GetTask(ctx context.Context, id string) (*Task, error)
	InsertTask(ctx context.Context, task *Task) error
	UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus, updatedAt time.Time) error
	UpdateTaskAssignee(ctx context.Context, id, assigneeID string, updatedAt time.Time) error
	DeleteTask(ctx context.Context, id string) error
}

// EventStore defines the event operations
type EventStore interface {
	GetEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	InsertEvent(ctx context.Context, event *Event) error
	UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error
	DeleteEvent(ctx context.Context, id string) error
}

// MessageStore defines the messaging operations
type MessageStore interface {
	GetMessagesForRecipient(ctx context.Context, recipientID string) ([]Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	InsertMessage(ctx context.Context, msg *Message) error
	MarkMessageRead(ctx context.Context, id string) error
	DeleteMessage(ctx context.Context, id string) error
}

// LaundryStore defines the laundry booking operations
type LaundryStore interface {
	GetLaundryBookings(ctx context.Context, date string) ([]LaundryBooking, error)
	GetLaundryBooking(ctx context.Context, id string) (*LaundryBooking, error)
	InsertLaundryBooking(ctx context.Context, booking *LaundryBooking) error
	DeleteLaundryBooking(ctx context.Context, id string) error
}

// Database defines the interface for all database operations.
// db.DB implements it over any docstore.Store backend.
type Database interface {
	ShiftStore
	ScheduleStore
	TaskStore
	EventStore
	MessageStore
	LaundryStore
	Close() error
}
