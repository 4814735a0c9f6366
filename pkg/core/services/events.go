package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

type EventInput struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	// Recurrence is an optional RRULE, e.g. "FREQ=WEEKLY;BYDAY=FR"
	Recurrence string
	CreatedBy  string
}

// CreateEvent stores a new event. Its status is derived from the clock at creation.
func CreateEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, input EventInput) (*db.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewError("event title", fmt.Errorf("is required: %w", model.ErrInvalidInput))
	}
	if err := requireID("creator id", input.CreatedBy); err != nil {
		return nil, err
	}
	if input.StartTime.IsZero() || !input.StartTime.Before(input.EndTime) {
		return nil, model.NewError("event times", fmt.Errorf("start must be before end: %w", model.ErrInvalidInput))
	}

	event := &db.Event{
		Title:       title,
		Description: input.Description,
		Location:    input.Location,
		StartTime:   input.StartTime.UTC(),
		EndTime:     input.EndTime.UTC(),
		Recurrence:  strings.TrimSpace(input.Recurrence),
		CreatedBy:   input.CreatedBy,
		CreatedAt:   timeNow().UTC(),
	}

	if event.Recurrence != "" {
		if _, err := eventRule(*event); err != nil {
			return nil, err
		}
	}

	status, err := eventStatusAt(*event, timeNow())
	if err != nil {
		return nil, err
	}
	event.Status = status

	if err := store.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	logger.Info("Event created",
		zap.String("event_id", event.ID),
		zap.Time("start_time", event.StartTime),
		zap.String("recurrence", event.Recurrence))
	return event, nil
}

// ListEvents returns events ordered by start time, optionally only those with status
func ListEvents(ctx context.Context, store db.EventStore, status model.EventStatus) ([]db.Event, error) {
	if status != "" && !status.IsValid() {
		return nil, invalidEventStatus(status)
	}

	events, err := store.GetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	filtered := events[:0]
	for _, event := range events {
		if status == "" || event.Status == status {
			filtered = append(filtered, event)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartTime.Before(filtered[j].StartTime)
	})
	return filtered, nil
}

// UpdateEventStatus sets an event's status by hand, e.g. to cancel it
func UpdateEventStatus(ctx context.Context, store db.EventStore, logger *zap.Logger, id string, status model.EventStatus) (*db.Event, error) {
	if !status.IsValid() {
		return nil, invalidEventStatus(status)
	}

	if err := store.UpdateEventStatus(ctx, id, status); err != nil {
		return nil, err
	}

	logger.Info("Event status updated", zap.String("event_id", id), zap.String("status", string(status)))
	return store.GetEvent(ctx, id)
}

// RefreshEventStatuses moves events along upcoming -> ongoing -> completed by the clock.
// Cancelled events are left alone. Returns how many events changed.
func RefreshEventStatuses(ctx context.Context, store db.EventStore, logger *zap.Logger) (int, error) {
	events, err := store.GetEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch events: %w", err)
	}

	now := timeNow()
	changed := 0
	for _, event := range events {
		if event.Status == model.EventCancelled {
			continue
		}

		status, err := eventStatusAt(event, now)
		if err != nil {
			logger.Warn("Skipping event with invalid recurrence",
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}
		if status == event.Status {
			continue
		}

		if err := store.UpdateEventStatus(ctx, event.ID, status); err != nil {
			return changed, fmt.Errorf("failed to update event %s: %w", event.ID, err)
		}
		logger.Debug("Event status refreshed",
			zap.String("event_id", event.ID),
			zap.String("from", string(event.Status)),
			zap.String("to", string(status)))
		changed++
	}

	logger.Info("Event statuses refreshed", zap.Int("changed", changed))
	return changed, nil
}

// EventOccurrences returns the start times of the event within [from, to]. A one-off
// event has at most one occurrence.
func EventOccurrences(event db.Event, from, to time.Time) ([]time.Time, error) {
	if to.Before(from) {
		return nil, model.NewError("occurrence range", fmt.Errorf("end before start: %w", model.ErrInvalidInput))
	}

	if event.Recurrence == "" {
		if within(event.StartTime, from, to) || event.StartTime.Equal(to) {
			return []time.Time{event.StartTime}, nil
		}
		return nil, nil
	}

	rule, err := eventRule(event)
	if err != nil {
		return nil, err
	}
	return rule.Between(from, to, true), nil
}

// DeleteEvent removes an event; deleting a missing event is not an error
func DeleteEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, id string) error {
	if err := requireID("event id", id); err != nil {
		return err
	}
	if err := store.DeleteEvent(ctx, id); err != nil {
		return err
	}

	logger.Info("Event deleted", zap.String("event_id", id))
	return nil
}

// eventRule builds the event's recurrence anchored at its start time
func eventRule(event db.Event) (*rrule.RRule, error) {
	opts, err := rrule.StrToROption(event.Recurrence)
	if err != nil {
		return nil, model.NewError("event recurrence", fmt.Errorf("%v: %w", err, model.ErrInvalidInput))
	}
	opts.Dtstart = event.StartTime

	rule, err := rrule.NewRRule(*opts)
	if err != nil {
		return nil, model.NewError("event recurrence", fmt.Errorf("%v: %w", err, model.ErrInvalidInput))
	}
	return rule, nil
}

// eventStatusAt derives the status of an event at now. For a recurring event it is ongoing
// during any occurrence and completed only once the rule has no occurrence left.
func eventStatusAt(event db.Event, now time.Time) (model.EventStatus, error) {
	if event.Recurrence == "" {
		switch {
		case now.Before(event.StartTime):
			return model.EventUpcoming, nil
		case now.Before(event.EndTime):
			return model.EventOngoing, nil
		default:
			return model.EventCompleted, nil
		}
	}

	rule, err := eventRule(event)
	if err != nil {
		return "", err
	}

	duration := event.EndTime.Sub(event.StartTime)
	if last := rule.Before(now, true); !last.IsZero() && now.Before(last.Add(duration)) {
		return model.EventOngoing, nil
	}
	if !rule.After(now, false).IsZero() {
		return model.EventUpcoming, nil
	}
	return model.EventCompleted, nil
}

func invalidEventStatus(status model.EventStatus) error {
	return model.NewError("event status", fmt.Errorf("%q is not one of upcoming, ongoing, completed, cancelled: %w", status, model.ErrInvalidInput))
}
