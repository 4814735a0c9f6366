package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// BookLaundryCmd creates the bookLaundry command
func BookLaundryCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bookLaundry <user_id> <date> <slot> <machine>",
		Short: "Book a washing machine for a time slot",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("machine must be a number, got: %s", args[3])
			}

			booking, err := services.BookLaundry(app.Ctx, app.Database, app.Cfg, app.Logger,
				args[0], args[1], model.ShiftTime(args[2]), machine)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Machine %d booked for %s %s (booking %s)\n",
				booking.Machine, booking.Date, booking.Slot, booking.ID)
			return nil
		},
	}
}

// CancelLaundryCmd creates the cancelLaundry command
func CancelLaundryCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelLaundry <booking_id> <user_id>",
		Short: "Cancel a laundry booking on behalf of its owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.CancelLaundry(app.Ctx, app.Database, app.Logger, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Booking cancelled")
			return nil
		},
	}
}

// LaundryCmd creates the laundry command
func LaundryCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "laundry [date]",
		Short: "Show the day's laundry bookings (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now().Format(model.DateLayout)
			if len(args) == 1 {
				date = args[0]
			}

			bookings, err := services.ListLaundry(app.Ctx, app.Database, date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nLaundry on %s (%d machines):\n\n", date, app.Cfg.Laundry.Machines)
			if len(bookings) == 0 {
				fmt.Fprintln(out, "  All machines free.")
				return nil
			}
			for _, booking := range bookings {
				fmt.Fprintf(out, "  %s  machine %d  %-12s %s\n", booking.Slot, booking.Machine, booking.UserID, booking.ID)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
