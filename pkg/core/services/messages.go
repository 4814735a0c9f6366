package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

// Notifier delivers a copy of a message by e-mail. Satisfied by *gmailclient.Client.
type Notifier interface {
	SendEmail(to, subject, body string) error
}

type MessageInput struct {
	SenderID string
	// RecipientID is empty for a broadcast
	RecipientID    string
	RecipientEmail string
	Subject        string
	Body           string
}

// SendMessage stores a message. When notifier is non-nil and the message has a recipient
// e-mail, a copy is mailed; a failed notification is logged and does not fail the send.
func SendMessage(ctx context.Context, store db.MessageStore, notifier Notifier, logger *zap.Logger, input MessageInput) (*db.Message, error) {
	if err := requireID("sender id", input.SenderID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, model.NewError("message body", fmt.Errorf("is required: %w", model.ErrInvalidInput))
	}

	msg := &db.Message{
		SenderID:       input.SenderID,
		RecipientID:    input.RecipientID,
		RecipientEmail: input.RecipientEmail,
		Subject:        input.Subject,
		Body:           input.Body,
		CreatedAt:      timeNow().UTC(),
	}

	if err := store.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	logger.Info("Message sent",
		zap.String("message_id", msg.ID),
		zap.String("sender_id", msg.SenderID),
		zap.Bool("broadcast", msg.IsBroadcast()))

	if notifier != nil && msg.RecipientEmail != "" {
		subject := msg.Subject
		if subject == "" {
			subject = "New message"
		}
		if err := notifier.SendEmail(msg.RecipientEmail, subject, msg.Body); err != nil {
			logger.Warn("Failed to send message notification",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}

	return msg, nil
}

// ListMessages returns the user's direct messages and every broadcast, newest first
func ListMessages(ctx context.Context, store db.MessageStore, userID string) ([]db.Message, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}

	direct, err := store.GetMessagesForRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	broadcasts, err := store.GetMessagesForRecipient(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch broadcasts: %w", err)
	}

	messages := append(direct, broadcasts...)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

// MarkMessageRead marks a direct message read. Only its recipient may do so.
func MarkMessageRead(ctx context.Context, store db.MessageStore, logger *zap.Logger, id, userID string) error {
	msg, err := store.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	if msg.RecipientID != userID {
		return model.NewError("message", fmt.Errorf("only the recipient can mark it read: %w", model.ErrForbidden))
	}
	if msg.Read {
		return nil
	}

	if err := store.MarkMessageRead(ctx, id); err != nil {
		return err
	}

	logger.Debug("Message marked read", zap.String("message_id", id))
	return nil
}

// DeleteMessage removes a message. Only its sender may do so.
func DeleteMessage(ctx context.Context, store db.MessageStore, logger *zap.Logger, id, userID string) error {
	msg, err := store.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return model.NewError("message", fmt.Errorf("only the sender can delete it: %w", model.ErrForbidden))
	}

	if err := store.DeleteMessage(ctx, id); err != nil {
		return err
	}

	logger.Info("Message deleted", zap.String("message_id", id))
	return nil
}
