package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validOAuthJSON = `{
  "installed": {
    "client_id": "desk.apps.googleusercontent.com",
    "project_id": "harbour-house",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost"]
  }
}`

func validOAuthClient() *OAuthClientConfig {
	return &OAuthClientConfig{
		Installed: OAuthInstalled{
			ClientID:                "desk.apps.googleusercontent.com",
			ProjectID:               "harbour-house",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "test-secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}
}

func TestValidateOAuthClient(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *OAuthClientConfig)
		wantErr bool
	}{
		{"valid", func(c *OAuthClientConfig) {}, false},
		{"missing client id", func(c *OAuthClientConfig) { c.Installed.ClientID = "" }, true},
		{"invalid auth uri", func(c *OAuthClientConfig) { c.Installed.AuthURI = "not-a-valid-url" }, true},
		{"no redirect uris", func(c *OAuthClientConfig) { c.Installed.RedirectURIs = nil }, true},
		{"bad redirect uri", func(c *OAuthClientConfig) { c.Installed.RedirectURIs = []string{"not a uri"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validOAuthClient()
			tt.mutate(cfg)

			err := ValidateOAuthClient(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "validation failed")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauthClient.json")
	require.NoError(t, os.WriteFile(path, []byte(validOAuthJSON), 0644))

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "harbour-house", cfg.Installed.ProjectID)
	assert.Equal(t, []string{"http://localhost"}, cfg.Installed.RedirectURIs)
}

func TestLoadOAuthClientFromPath_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauthClient.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installed": {`), 0644))

	_, err := LoadOAuthClientFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse oauth client file")
}

func TestLoadOAuthClientFromPath_FileNotFound(t *testing.T) {
	_, err := LoadOAuthClientFromPath("/nonexistent/path/oauthClient.json")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read oauth client file")
}

func TestLoadOAuthClientWithEnv_EnvironmentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk-client.json")
	require.NoError(t, os.WriteFile(path, []byte(validOAuthJSON), 0644))
	t.Setenv("HOSTEL_OAUTH_CLIENT_FILE", path)

	cfg, err := LoadOAuthClientWithEnv("prod")
	require.NoError(t, err)
	assert.Equal(t, "desk.apps.googleusercontent.com", cfg.Installed.ClientID)
}
