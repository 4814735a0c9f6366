package db

import (
	"context"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const laundryEntity = "laundry booking"

// GetLaundryBookings retrieves the bookings for one day
func (db *DB) GetLaundryBookings(ctx context.Context, date string) ([]LaundryBooking, error) {
	return queryAs[LaundryBooking](ctx, db.store, LaundryBookingsCollection, laundryEntity, docstore.Eq("date", date))
}

func (db *DB) GetLaundryBooking(ctx context.Context, id string) (*LaundryBooking, error) {
	return getAs[LaundryBooking](ctx, db.store, LaundryBookingsCollection, id, laundryEntity)
}

func (db *DB) InsertLaundryBooking(ctx context.Context, booking *LaundryBooking) error {
	booking.ID = newID(booking.ID)
	return setAs(ctx, db.store, LaundryBookingsCollection, booking.ID, laundryEntity, booking)
}

func (db *DB) DeleteLaundryBooking(ctx context.Context, id string) error {
	return remove(ctx, db.store, LaundryBookingsCollection, id, laundryEntity)
}
