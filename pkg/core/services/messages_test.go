package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/model"
)

type sentEmail struct {
	to, subject, body string
}

type mockNotifier struct {
	sent []sentEmail
	err  error
}

func (n *mockNotifier) SendEmail(to, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()
	notifier := &mockNotifier{}

	msg, err := SendMessage(ctx, database, notifier, zap.NewNop(), MessageInput{
		SenderID:       "admin",
		RecipientID:    "v1",
		RecipientEmail: "v1@example.com",
		Body:           "Your shift moved to Friday",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Read)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "v1@example.com", notifier.sent[0].to)
	assert.Equal(t, "New message", notifier.sent[0].subject)
	assert.Equal(t, "Your shift moved to Friday", notifier.sent[0].body)
}

func TestSendMessage_NotificationFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()

	msg, err := SendMessage(ctx, database, &mockNotifier{err: errors.New("smtp down")}, zap.NewNop(), MessageInput{
		SenderID:       "admin",
		RecipientID:    "v1",
		RecipientEmail: "v1@example.com",
		Body:           "hello",
	})
	require.NoError(t, err)

	stored, err := database.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Body)
}

func TestSendMessage_Validation(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()

	_, err := SendMessage(ctx, database, nil, zap.NewNop(), MessageInput{SenderID: "admin", Body: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = SendMessage(ctx, database, nil, zap.NewNop(), MessageInput{Body: "hi"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestListMessages_DirectAndBroadcastNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := setClock(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	database := newTestDB()
	logger := zap.NewNop()

	inputs := []MessageInput{
		{SenderID: "admin", RecipientID: "v1", Body: "first"},
		{SenderID: "admin", Body: "broadcast"},
		{SenderID: "admin", RecipientID: "v2", Body: "not for v1"},
		{SenderID: "v2", RecipientID: "v1", Body: "latest"},
	}
	for _, in := range inputs {
		_, err := SendMessage(ctx, database, nil, logger, in)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	messages, err := ListMessages(ctx, database, "v1")
	require.NoError(t, err)

	var bodies []string
	for _, m := range messages {
		bodies = append(bodies, m.Body)
	}
	assert.Equal(t, []string{"latest", "broadcast", "first"}, bodies)
}

func TestMarkMessageRead(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()

	msg, err := SendMessage(ctx, database, nil, zap.NewNop(), MessageInput{SenderID: "admin", RecipientID: "v1", Body: "hi"})
	require.NoError(t, err)

	err = MarkMessageRead(ctx, database, zap.NewNop(), msg.ID, "v2")
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, MarkMessageRead(ctx, database, zap.NewNop(), msg.ID, "v1"))
	stored, err := database.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.Read)

	err = MarkMessageRead(ctx, database, zap.NewNop(), "missing", "v1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()
	database := newTestDB()

	msg, err := SendMessage(ctx, database, nil, zap.NewNop(), MessageInput{SenderID: "admin", RecipientID: "v1", Body: "hi"})
	require.NoError(t, err)

	err = DeleteMessage(ctx, database, zap.NewNop(), msg.ID, "v1")
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, DeleteMessage(ctx, database, zap.NewNop(), msg.ID, "admin"))
	_, err = database.GetMessage(ctx, msg.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
