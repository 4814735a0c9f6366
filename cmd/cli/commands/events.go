package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// eventTimeLayout is how event times are typed on the command line, in local time
const eventTimeLayout = "2006-01-02T15:04"

func parseEventTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(eventTimeLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected YYYY-MM-DDTHH:MM: %w", value, model.ErrInvalidInput)
	}
	return t, nil
}

// AddEventCmd creates the addEvent command
func AddEventCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addEvent <created_by> <title> <start> <end>",
		Short: "Add an event (times as YYYY-MM-DDTHH:MM, local time)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			location, _ := cmd.Flags().GetString("location")
			recurrence, _ := cmd.Flags().GetString("rrule")

			start, err := parseEventTime(args[2])
			if err != nil {
				return err
			}
			end, err := parseEventTime(args[3])
			if err != nil {
				return err
			}

			event, err := services.CreateEvent(app.Ctx, app.Database, app.Logger, services.EventInput{
				Title:       args[1],
				Description: description,
				Location:    location,
				StartTime:   start,
				EndTime:     end,
				Recurrence:  recurrence,
				CreatedBy:   args[0],
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Event created\n")
			fmt.Fprintln(out, formatEvent(*event))
			return nil
		},
	}

	cmd.Flags().String("description", "", "Event description")
	cmd.Flags().String("location", "", "Where the event takes place")
	cmd.Flags().String("rrule", "", "Recurrence rule, e.g. FREQ=WEEKLY;BYDAY=FR")

	return cmd
}

// ListEventsCmd creates the listEvents command
func ListEventsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listEvents",
		Short: "List events by start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")

			events, err := services.ListEvents(app.Ctx, app.Database, model.EventStatus(status))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events found.")
				return nil
			}
			for _, event := range events {
				fmt.Fprintln(out, formatEvent(event))
			}
			return nil
		},
	}

	cmd.Flags().String("status", "", "Only events with this status (upcoming, ongoing, completed, cancelled)")

	return cmd
}

// RefreshEventsCmd creates the refreshEvents command
func RefreshEventsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refreshEvents",
		Short: "Recompute event statuses from the clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := services.RefreshEventStatuses(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d events updated\n", changed)
			return nil
		},
	}
}

// SetEventStatusCmd creates the setEventStatus command
func SetEventStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setEventStatus <event_id> <status>",
		Short: "Set an event's status, e.g. to cancel it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := services.UpdateEventStatus(app.Ctx, app.Database, app.Logger, args[0], model.EventStatus(args[1]))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", event.Title, event.Status)
			return nil
		},
	}
}

// EventOccurrencesCmd creates the eventOccurrences command
func EventOccurrencesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventOccurrences <event_id>",
		Short: "List when an event takes place over the coming days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days < 1 {
				return fmt.Errorf("days must be positive, got %d", days)
			}

			event, err := app.Database.GetEvent(app.Ctx, args[0])
			if err != nil {
				return err
			}

			from := time.Now()
			occurrences, err := services.EventOccurrences(*event, from, from.AddDate(0, 0, days))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(occurrences) == 0 {
				fmt.Fprintf(out, "%s does not take place in the next %d days.\n", event.Title, days)
				return nil
			}
			duration := event.EndTime.Sub(event.StartTime)
			fmt.Fprintf(out, "%s (%s each):\n", event.Title, formatDuration(duration))
			for _, start := range occurrences {
				fmt.Fprintf(out, "  %s\n", start.Local().Format("Mon 2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().Int("days", 30, "How many days ahead to look")

	return cmd
}

// DeleteEventCmd creates the deleteEvent command
func DeleteEventCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteEvent <event_id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteEvent(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Event %s deleted\n", args[0])
			return nil
		},
	}
}
