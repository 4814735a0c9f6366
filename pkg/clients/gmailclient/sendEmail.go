package gmailclient

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

// EmailInterval is the minimum gap between two sends, to stay inside Gmail API rate limits
const EmailInterval = 3 * time.Second

// SendEmail sends a plain text email, waiting out EmailInterval since the previous send
func (c *Client) SendEmail(to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if elapsed := time.Since(c.lastSendTime); elapsed < c.interval {
			time.Sleep(c.interval - elapsed)
		}
	}

	raw := base64.URLEncoding.EncodeToString([]byte(buildMessage(c.sender, to, subject, body)))

	if _, err := c.service.Users.Messages.Send(c.userID, &gmail.Message{Raw: raw}).Do(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	return nil
}

// buildMessage renders an RFC 2822 message. Header values are stripped of line breaks.
func buildMessage(from, to, subject, body string) string {
	clean := strings.NewReplacer("\r", "", "\n", " ")

	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", clean.Replace(from))
	}
	fmt.Fprintf(&b, "To: %s\r\n", clean.Replace(to))
	fmt.Fprintf(&b, "Subject: %s\r\n", clean.Replace(subject))
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
