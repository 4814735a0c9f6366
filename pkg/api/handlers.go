package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/core/services"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, envelope{
		"status": "available",
		"hostel": s.cfg.HostelName,
	})
}

// targetUser returns the userId query parameter when an admin acts for someone else,
// otherwise the caller. Non-admins naming another user get ErrForbidden.
func targetUser(r *http.Request, requested string) (string, error) {
	user := currentUser(r)
	if requested == "" || requested == user.ID {
		return user.ID, nil
	}
	if !user.IsAdmin() {
		return "", model.NewError("user "+requested, model.ErrForbidden)
	}
	return requested, nil
}

// Shifts

func (s *Server) handleShiftHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := targetUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	logs, err := services.GetShiftHistory(r.Context(), s.database, userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"shifts": logs})
}

func (s *Server) handleActiveShift(w http.ResponseWriter, r *http.Request) {
	userID, err := targetUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	shift, err := services.GetActiveShift(r.Context(), s.database, s.logger, userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"shift": shift})
}

func (s *Server) handleStartShift(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ShiftTime model.ShiftTime `json:"shiftTime"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	shift, err := services.StartShift(r.Context(), s.database, s.logger, currentUser(r).ID, input.ShiftTime)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, envelope{"shift": shift})
}

func (s *Server) handleEndShift(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Notes string `json:"notes"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &input); err != nil {
			s.badRequest(w, r, err)
			return
		}
	}

	shift, err := services.EndShift(r.Context(), s.database, s.logger, currentUser(r).ID, input.Notes)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"shift": shift})
}

func (s *Server) handleDeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteWorkLog(r.Context(), s.database, s.logger, chi.URLParam(r, "shiftId")); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteShifts(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	deleted, err := services.DeleteWorkLogs(r.Context(), s.database, s.logger, input.IDs)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"deleted": deleted})
}

func (s *Server) handlePurgeShifts(w http.ResponseWriter, r *http.Request) {
	deleted, err := services.PurgeWorkLogs(r.Context(), s.database, s.logger, chi.URLParam(r, "userId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"deleted": deleted})
}

// Summaries

func (s *Server) handleMySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := services.GetWorkSummary(r.Context(), s.database, currentUser(r).ID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"summary": summary})
}

func (s *Server) handleAllSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := services.GetAllWorkSummaries(r.Context(), s.database)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"summaries": summaries})
}

func (s *Server) handleRecomputeSummaries(w http.ResponseWriter, r *http.Request) {
	count, err := services.RecomputeAllWorkSummaries(r.Context(), s.database, s.logger)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"recomputed": count})
}

// Schedule

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	table, err := services.GetSchedule(r.Context(), s.database, query.Get("from"), query.Get("to"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"schedule": table})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	volunteerID, err := targetUser(r, chi.URLParam(r, "volunteerId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	table, err := services.Assign(r.Context(), s.database, s.cfg, s.logger,
		chi.URLParam(r, "date"), model.ScheduleSlot(chi.URLParam(r, "slot")), volunteerID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"schedule": table})
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	volunteerID, err := targetUser(r, chi.URLParam(r, "volunteerId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.unassign(w, r, volunteerID)
}

func (s *Server) handleClearSlot(w http.ResponseWriter, r *http.Request) {
	s.unassign(w, r, "")
}

func (s *Server) unassign(w http.ResponseWriter, r *http.Request, volunteerID string) {
	verify := false
	if raw := r.URL.Query().Get("verify"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.badRequest(w, r, fmt.Errorf("verify must be a boolean"))
			return
		}
		verify = v
	}

	result, err := services.Unassign(r.Context(), s.database, s.cfg, s.logger,
		chi.URLParam(r, "date"), model.ScheduleSlot(chi.URLParam(r, "slot")), volunteerID, verify)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{
		"schedule":  result.Table,
		"removed":   result.Removed,
		"corrected": result.Corrected,
	})
}

// Tasks

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tasks, err := services.ListTasks(r.Context(), s.database, services.TaskFilter{
		Board:      query.Get("board"),
		Status:     model.TaskStatus(query.Get("status")),
		AssigneeID: query.Get("assigneeId"),
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Board       string `json:"board"`
		Title       string `json:"title"`
		Description string `json:"description"`
		AssigneeID  string `json:"assigneeId"`
		DueDate     string `json:"dueDate"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	task, err := services.CreateTask(r.Context(), s.database, s.logger, services.TaskInput{
		Board:       input.Board,
		Title:       input.Title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		CreatedBy:   currentUser(r).ID,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, envelope{"task": task})
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status model.TaskStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	task, err := services.UpdateTaskStatus(r.Context(), s.database, s.logger, chi.URLParam(r, "taskId"), input.Status)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"task": task})
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	var input struct {
		AssigneeID string `json:"assigneeId"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	task, err := services.AssignTask(r.Context(), s.database, s.logger, chi.URLParam(r, "taskId"), input.AssigneeID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"task": task})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteTask(r.Context(), s.database, s.logger, chi.URLParam(r, "taskId")); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Events

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := services.ListEvents(r.Context(), s.database, model.EventStatus(r.URL.Query().Get("status")))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"events": events})
}

func (s *Server) handleEventOccurrences(w http.ResponseWriter, r *http.Request) {
	from, to, err := occurrenceWindow(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	event, err := s.database.GetEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	occurrences, err := services.EventOccurrences(*event, from, to)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"occurrences": occurrences})
}

// occurrenceWindow reads from/to as RFC 3339 times, defaulting to the next 30 days
func occurrenceWindow(r *http.Request) (time.Time, time.Time, error) {
	from := time.Now().UTC()
	to := from.AddDate(0, 0, 30)

	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be an RFC 3339 time")
		}
		from = t
	}
	if raw := query.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be an RFC 3339 time")
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not be before from")
	}
	return from, to, nil
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartTime   time.Time `json:"startTime"`
		EndTime     time.Time `json:"endTime"`
		Recurrence  string    `json:"recurrence"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	event, err := services.CreateEvent(r.Context(), s.database, s.logger, services.EventInput{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Recurrence:  input.Recurrence,
		CreatedBy:   currentUser(r).ID,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, envelope{"event": event})
}

func (s *Server) handleRefreshEvents(w http.ResponseWriter, r *http.Request) {
	updated, err := services.RefreshEventStatuses(r.Context(), s.database, s.logger)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"updated": updated})
}

func (s *Server) handleUpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status model.EventStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	event, err := services.UpdateEventStatus(r.Context(), s.database, s.logger, chi.URLParam(r, "eventId"), input.Status)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"event": event})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteEvent(r.Context(), s.database, s.logger, chi.URLParam(r, "eventId")); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Messages

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := services.ListMessages(r.Context(), s.database, currentUser(r).ID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"messages": messages})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RecipientID    string `json:"recipientId"`
		RecipientEmail string `json:"recipientEmail"`
		Subject        string `json:"subject"`
		Body           string `json:"body"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	user := currentUser(r)
	if input.RecipientID == "" && !user.IsAdmin() {
		s.forbidden(w, r)
		return
	}

	var notifier services.Notifier
	if s.cfg.Google.NotifyByEmail {
		notifier = s.notifier
	}

	message, err := services.SendMessage(r.Context(), s.database, notifier, s.logger, services.MessageInput{
		SenderID:       user.ID,
		RecipientID:    input.RecipientID,
		RecipientEmail: input.RecipientEmail,
		Subject:        input.Subject,
		Body:           input.Body,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, envelope{"message": message})
}

func (s *Server) handleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := services.MarkMessageRead(r.Context(), s.database, s.logger, chi.URLParam(r, "messageId"), currentUser(r).ID); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteMessage(r.Context(), s.database, s.logger, chi.URLParam(r, "messageId"), currentUser(r).ID); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Laundry

func (s *Server) handleListLaundry(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(model.DateLayout)
	}

	bookings, err := services.ListLaundry(r.Context(), s.database, date)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, envelope{"bookings": bookings})
}

func (s *Server) handleBookLaundry(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Date    string          `json:"date"`
		Slot    model.ShiftTime `json:"slot"`
		Machine int             `json:"machine"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		s.badRequest(w, r, err)
		return
	}

	booking, err := services.BookLaundry(r.Context(), s.database, s.cfg, s.logger,
		currentUser(r).ID, input.Date, input.Slot, input.Machine)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, envelope{"booking": booking})
}

func (s *Server) handleCancelLaundry(w http.ResponseWriter, r *http.Request) {
	if err := services.CancelLaundry(r.Context(), s.database, s.logger, chi.URLParam(r, "bookingId"), currentUser(r).ID); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
