package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for shift dates, schedule keys and bookings
const DateLayout = "2006-01-02"

// ShiftTime is one of the fixed time ranges a volunteer can work (also used for laundry slots)
type ShiftTime string

const (
	ShiftEarlyMorning ShiftTime = "08:00-10:00"
	ShiftLateMorning  ShiftTime = "10:00-13:00"
	ShiftAfternoon    ShiftTime = "13:00-16:00"
	ShiftLateDay      ShiftTime = "16:00-19:00"
	ShiftEvening      ShiftTime = "19:00-22:00"
)

// ShiftTimes lists every valid shift time in day order
var ShiftTimes = []ShiftTime{
	ShiftEarlyMorning,
	ShiftLateMorning,
	ShiftAfternoon,
	ShiftLateDay,
	ShiftEvening,
}

func (s ShiftTime) IsValid() bool {
	for _, st := range ShiftTimes {
		if s == st {
			return true
		}
	}
	return false
}

// ScheduleSlot is one of the named staffing slots of the schedule table
type ScheduleSlot string

const (
	SlotMorning   ScheduleSlot = "morning"
	SlotAfternoon ScheduleSlot = "afternoon"
	SlotEvening   ScheduleSlot = "evening"
	SlotNight     ScheduleSlot = "night"
)

// ScheduleSlots lists every valid schedule slot in day order
var ScheduleSlots = []ScheduleSlot{
	SlotMorning,
	SlotAfternoon,
	SlotEvening,
	SlotNight,
}

func (s ScheduleSlot) IsValid() bool {
	for _, slot := range ScheduleSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// TaskStatus is the lifecycle state of a task board card
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "inProgress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) IsValid() bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskDone
}

// EventStatus is the lifecycle state of a hostel event
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventCompleted, EventCancelled:
		return true
	}
	return false
}

// ParseDate parses a calendar day in DateLayout
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, NewError("date", fmt.Errorf("%q is not in YYYY-MM-DD format: %w", date, ErrInvalidInput))
	}
	return t, nil
}

// ElapsedMinutes returns the whole minutes between start and end, truncating any
// fractional minute. A clock that went backwards yields zero.
func ElapsedMinutes(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// StartOfWeek returns Monday 00:00 of the week containing t, in t's location
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// Weekday is 0 for Sunday; shift so Monday is 0
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of t's month at 00:00, in t's location
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
