package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// broadcastRecipient addresses a message to everyone
const broadcastRecipient = "all"

// SendMessageCmd creates the sendMessage command
func SendMessageCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sendMessage <sender_id> <recipient_id|all> <body>",
		Short: "Send a direct message, or a broadcast to 'all'",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			email, _ := cmd.Flags().GetString("email")

			recipient := args[1]
			if recipient == broadcastRecipient {
				recipient = ""
			}

			// A nil *gmailclient.Client must not become a non-nil Notifier
			var notifier services.Notifier
			if app.GmailClient != nil && app.Cfg.Google.NotifyByEmail {
				notifier = app.GmailClient
			}

			msg, err := services.SendMessage(app.Ctx, app.Database, notifier, app.Logger, services.MessageInput{
				SenderID:       args[0],
				RecipientID:    recipient,
				RecipientEmail: email,
				Subject:        subject,
				Body:           args[2],
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Message %s sent\n", msg.ID)
			return nil
		},
	}

	cmd.Flags().String("subject", "", "Message subject")
	cmd.Flags().String("email", "", "Also e-mail a copy to this address when notifications are enabled")

	return cmd
}

// InboxCmd creates the inbox command
func InboxCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox <user_id>",
		Short: "List a user's direct and broadcast messages, newest first (* marks unread)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := services.ListMessages(app.Ctx, app.Database, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(messages) == 0 {
				fmt.Fprintln(out, "No messages.")
				return nil
			}
			for _, msg := range messages {
				fmt.Fprintln(out, formatMessage(msg))
			}
			return nil
		},
	}
}

// MarkReadCmd creates the markRead command
func MarkReadCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "markRead <message_id> <user_id>",
		Short: "Mark a message read on behalf of its recipient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.MarkMessageRead(app.Ctx, app.Database, app.Logger, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Marked read")
			return nil
		},
	}
}

// DeleteMessageCmd creates the deleteMessage command
func DeleteMessageCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteMessage <message_id> <sender_id>",
		Short: "Delete a message on behalf of its sender",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteMessage(app.Ctx, app.Database, app.Logger, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Message deleted")
			return nil
		},
	}
}
