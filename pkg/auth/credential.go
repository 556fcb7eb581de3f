package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/httputil"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	ErrOfflineCredential = errors.New("offline credentials cannot authenticate with the server")
	ErrEmptyToken        = errors.New("access token is empty")
	ErrTokenExpired      = errors.New("access token has expired")
)

// Credential is the account a match connection is opened with. The set of
// implementations is closed: OfflineCredential, TokenCredential and
// OAuthCredential.
type Credential interface {
	// Apply adds whatever the handshake request needs to authenticate.
	Apply(header http.Header) error
	// Offline reports a local-only identity the server has never seen.
	Offline() bool
	credential()
}

// OfflineCredential is a locally generated identity for local play.
type OfflineCredential struct {
	ID   uuid.UUID
	Name string
}

func NewOfflineCredential(name string) OfflineCredential {
	return OfflineCredential{ID: uuid.New(), Name: name}
}

func (OfflineCredential) Apply(http.Header) error { return ErrOfflineCredential }
func (OfflineCredential) Offline() bool           { return true }
func (OfflineCredential) credential()             {}

// TokenCredential carries a bearer token issued by the account service. When
// the token is a JWT its expiry is checked before it is sent.
type TokenCredential struct {
	AccessToken string
	// Now is used for expiry checks; nil means time.Now.
	Now func() time.Time
}

func NewTokenCredential(token string) TokenCredential {
	return TokenCredential{AccessToken: token}
}

func (c TokenCredential) Apply(header http.Header) error {
	if c.AccessToken == "" {
		return ErrEmptyToken
	}

	// opaque tokens are passed through untouched
	if claims, err := InspectToken(c.AccessToken); err == nil && claims.ExpiresAt != nil {
		now := time.Now
		if c.Now != nil {
			now = c.Now
		}
		if !now().Before(claims.ExpiresAt.Time) {
			return ErrTokenExpired
		}
	}

	httputil.SetBearer(header, "", c.AccessToken)
	return nil
}

func (TokenCredential) Offline() bool { return false }
func (TokenCredential) credential()   {}

// OAuthCredential fetches (and refreshes) its token from an oauth2 source on
// every handshake.
type OAuthCredential struct {
	Source oauth2.TokenSource
}

func NewOAuthCredential(source oauth2.TokenSource) OAuthCredential {
	return OAuthCredential{Source: oauth2.ReuseTokenSource(nil, source)}
}

func (c OAuthCredential) Apply(header http.Header) error {
	if c.Source == nil {
		return ErrEmptyToken
	}
	token, err := c.Source.Token()
	if err != nil {
		return fmt.Errorf("failed to fetch oauth token: %w", err)
	}
	if token.AccessToken == "" {
		return ErrEmptyToken
	}
	httputil.SetBearer(header, token.Type(), token.AccessToken)
	return nil
}

func (OAuthCredential) Offline() bool { return false }
func (OAuthCredential) credential()   {}
