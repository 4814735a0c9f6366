package db

import (
	"context"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const eventEntity = "event"

func (db *DB) GetEvents(ctx context.Context) ([]Event, error) {
	return queryAs[Event](ctx, db.store, EventsCollection, eventEntity)
}

func (db *DB) GetEvent(ctx context.Context, id string) (*Event, error) {
	return getAs[Event](ctx, db.store, EventsCollection, id, eventEntity)
}

func (db *DB) InsertEvent(ctx context.Context, event *Event) error {
	event.ID = newID(event.ID)
	return setAs(ctx, db.store, EventsCollection, event.ID, eventEntity, event)
}

func (db *DB) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	return update(ctx, db.store, EventsCollection, id, eventEntity, docstore.Document{"status": status})
}

func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	return remove(ctx, db.store, EventsCollection, id, eventEntity)
}
