package config

import (
	"context"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuthConfig holds the client-credentials grant used to obtain match tokens
// when no static access token is configured.
type OAuthConfig struct {
	ClientCredentials *clientcredentials.Config
}

func LoadOAuthConfig() *OAuthConfig {
	clientID := os.Getenv("OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("OAUTH_CLIENT_SECRET")
	tokenURL := os.Getenv("OAUTH_TOKEN_URL")

	if clientID == "" || tokenURL == "" {
		return &OAuthConfig{}
	}

	var scopes []string
	for _, scope := range strings.Split(os.Getenv("OAUTH_SCOPES"), ",") {
		if trimmed := strings.TrimSpace(scope); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}

	return &OAuthConfig{
		ClientCredentials: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

func (c OAuthConfig) Enabled() bool {
	return c.ClientCredentials != nil
}

// TokenSource returns a refreshing token source, or nil when OAuth is not configured.
func (c OAuthConfig) TokenSource(ctx context.Context) oauth2.TokenSource {
	if !c.Enabled() {
		return nil
	}
	return c.ClientCredentials.TokenSource(ctx)
}
