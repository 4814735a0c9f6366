package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

// BookLaundry reserves a machine for a slot. A machine can be booked once per slot, and a
// user can hold one booking per slot.
func BookLaundry(ctx context.Context, store db.LaundryStore, cfg *config.Config, logger *zap.Logger, userID, date string, slot model.ShiftTime, machine int) (*db.LaundryBooking, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}
	if !slot.IsValid() {
		return nil, model.NewError("laundry slot", fmt.Errorf("%q is not a slot: %w", slot, model.ErrInvalidInput))
	}
	if machine < 1 || machine > cfg.Laundry.Machines {
		return nil, model.NewError("laundry machine", fmt.Errorf("must be between 1 and %d: %w", cfg.Laundry.Machines, model.ErrInvalidInput))
	}

	bookings, err := store.GetLaundryBookings(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch laundry bookings: %w", err)
	}

	for _, b := range bookings {
		if b.Slot != slot {
			continue
		}
		if b.Machine == machine {
			return nil, model.NewError("laundry machine", fmt.Errorf("%d is already booked for %s %s: %w", machine, date, slot, model.ErrConflict))
		}
		if b.UserID == userID {
			return nil, model.NewError("laundry booking", fmt.Errorf("user already holds machine %d for %s %s: %w", b.Machine, date, slot, model.ErrConflict))
		}
	}

	booking := &db.LaundryBooking{
		UserID:    userID,
		Date:      date,
		Slot:      slot,
		Machine:   machine,
		CreatedAt: timeNow().UTC(),
	}

	if err := store.InsertLaundryBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to insert laundry booking: %w", err)
	}

	logger.Info("Laundry booked",
		zap.String("booking_id", booking.ID),
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.String("slot", string(slot)),
		zap.Int("machine", machine))
	return booking, nil
}

// CancelLaundry removes a booking. Only the user holding it may cancel.
func CancelLaundry(ctx context.Context, store db.LaundryStore, logger *zap.Logger, id, userID string) error {
	booking, err := store.GetLaundryBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return model.NewError("laundry booking", fmt.Errorf("belongs to another user: %w", model.ErrForbidden))
	}

	if err := store.DeleteLaundryBooking(ctx, id); err != nil {
		return err
	}

	logger.Info("Laundry booking cancelled", zap.String("booking_id", id))
	return nil
}

// ListLaundry returns the day's bookings ordered by slot then machine
func ListLaundry(ctx context.Context, store db.LaundryStore, date string) ([]db.LaundryBooking, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}

	bookings, err := store.GetLaundryBookings(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch laundry bookings: %w", err)
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Slot != bookings[j].Slot {
			return bookings[i].Slot < bookings[j].Slot
		}
		return bookings[i].Machine < bookings[j].Machine
	})
	return bookings, nil
}
