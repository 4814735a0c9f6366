package db

import (
	"context"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const messageEntity = "message"

// GetMessagesForRecipient retrieves messages addressed to recipientID. An empty id
// selects broadcasts.
func (db *DB) GetMessagesForRecipient(ctx context.Context, recipientID string) ([]Message, error) {
	return queryAs[Message](ctx, db.store, MessagesCollection, messageEntity, docstore.Eq("recipientId", recipientID))
}

func (db *DB) GetMessage(ctx context.Context, id string) (*Message, error) {
	return getAs[Message](ctx, db.store, MessagesCollection, id, messageEntity)
}

func (db *DB) InsertMessage(ctx context.Context, msg *Message) error {
	msg.ID = newID(msg.ID)
	return setAs(ctx, db.store, MessagesCollection, msg.ID, messageEntity, msg)
}

func (db *DB) MarkMessageRead(ctx context.Context, id string) error {
	return update(ctx, db.store, MessagesCollection, id, messageEntity, docstore.Document{"read": true})
}

func (db *DB) DeleteMessage(ctx context.Context, id string) error {
	return remove(ctx, db.store, MessagesCollection, id, messageEntity)
}
