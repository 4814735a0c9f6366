package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/utils"
)

// Client wraps the Gmail API client for message notifications
type Client struct {
	service      *gmail.Service
	userID       string
	sender       string
	interval     time.Duration
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a Gmail client from a token obtained by sheetsclient, which already
// carries the gmail.send scope. userID is the Gmail user to send as ("me" by default);
// sender, if set, becomes the From header.
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token, google config.GoogleConfig) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return NewWithService(service, google.GmailUserID, google.GmailSender), nil
}

// NewWithService wraps an already configured service
func NewWithService(service *gmail.Service, userID, sender string) *Client {
	if userID == "" {
		userID = "me"
	}
	return &Client{
		service:  service,
		userID:   userID,
		sender:   sender,
		interval: EmailInterval,
	}
}
