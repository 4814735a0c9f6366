package db

import (
	"time"

	"github.com/jakechorley/hostelhub/pkg/core/model"
)

// Collection names in the document store
const (
	WorkLogsCollection        = "workLogs"
	WorkSummariesCollection   = "workSummaries"
	SchedulesCollection       = "schedules"
	TasksCollection           = "tasks"
	EventsCollection          = "events"
	MessagesCollection        = "messages"
	LaundryBookingsCollection = "laundrySchedule"
)

// MainScheduleID is the id of the single schedule document
const MainScheduleID = "main"

// ShiftRecord is one volunteer shift in the work log. EndTime is nil while the shift is
// in progress; a stored null and a missing field both decode to nil.
type ShiftRecord struct {
	ID           string          `json:"id,omitempty"`
	UserID       string          `json:"userId"`
	ShiftDate    string          `json:"shiftDate"`
	ShiftTime    model.ShiftTime `json:"shiftTime"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime,omitempty"`
	TotalMinutes *int            `json:"totalMinutes,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	ForceClosed  bool            `json:"forceClosed,omitempty"`
}

// IsActive reports whether the shift has not been ended
func (r ShiftRecord) IsActive() bool {
	return r.EndTime == nil
}

// Minutes returns TotalMinutes, or 0 when unset
func (r ShiftRecord) Minutes() int {
	if r.TotalMinutes == nil {
		return 0
	}
	return *r.TotalMinutes
}

// WorkHoursSummary is the cached aggregate of a user's completed shifts, keyed by user id
type WorkHoursSummary struct {
	UserID     string       `json:"userId"`
	WeekTotal  int          `json:"weekTotal"`
	MonthTotal int          `json:"monthTotal"`
	TotalLogs  int          `json:"totalLogs"`
	LastShift  *ShiftRecord `json:"lastShift,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ScheduleDocument is the stored shape of the schedule table
type ScheduleDocument struct {
	Data      model.ScheduleTable `json:"data"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Task is a card on one of the hostel task boards
type Task struct {
	ID          string           `json:"id,omitempty"`
	Board       string           `json:"board"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      model.TaskStatus `json:"status"`
	AssigneeID  string           `json:"assigneeId,omitempty"`
	CreatedBy   string           `json:"createdBy"`
	DueDate     string           `json:"dueDate,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Event is a hostel event, optionally recurring by RRULE
type Event struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Location    string            `json:"location,omitempty"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Status      model.EventStatus `json:"status"`
	Recurrence  string            `json:"recurrence,omitempty"`
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Message is a direct message, or a broadcast when RecipientID is empty
type Message struct {
	ID             string    `json:"id,omitempty"`
	SenderID       string    `json:"senderId"`
	RecipientID    string    `json:"recipientId"`
	RecipientEmail string    `json:"recipientEmail,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Body           string    `json:"body"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsBroadcast reports whether the message is addressed to everyone
func (m Message) IsBroadcast() bool {
	return m.RecipientID == ""
}

// LaundryBooking reserves one machine for one slot on one day
type LaundryBooking struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"userId"`
	Date      string          `json:"date"`
	Slot      model.ShiftTime `json:"slot"`
	Machine   int             `json:"machine"`
	CreatedAt time.Time       `json:"createdAt"`
}
