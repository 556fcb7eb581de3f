package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestOfflineCredential(t *testing.T) {
	cred := NewOfflineCredential("Guest")

	assert.True(t, cred.Offline())
	assert.NotEqual(t, uuid.Nil, cred.ID)

	header := http.Header{}
	assert.ErrorIs(t, cred.Apply(header), ErrOfflineCredential)
	assert.Empty(t, header.Get("Authorization"))
}

func TestTokenCredential(t *testing.T) {
	t.Run("sends opaque tokens as bearer", func(t *testing.T) {
		header := http.Header{}
		require.NoError(t, NewTokenCredential("opaque-token").Apply(header))
		assert.Equal(t, "Bearer opaque-token", header.Get("Authorization"))
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		assert.ErrorIs(t, TokenCredential{}.Apply(http.Header{}), ErrEmptyToken)
	})

	t.Run("checks jwt expiry", func(t *testing.T) {
		token, err := GenerateAccessToken("secret", uuid.New(), "alice", time.Minute)
		require.NoError(t, err)

		fresh := NewTokenCredential(token)
		header := http.Header{}
		require.NoError(t, fresh.Apply(header))
		assert.Equal(t, "Bearer "+token, header.Get("Authorization"))

		stale := TokenCredential{AccessToken: token, Now: func() time.Time { return time.Now().Add(time.Hour) }}
		assert.ErrorIs(t, stale.Apply(http.Header{}), ErrTokenExpired)
	})

	assert.False(t, TokenCredential{}.Offline())
}

func TestOAuthCredential(t *testing.T) {
	header := http.Header{}
	cred := NewOAuthCredential(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "from-oauth"}))

	require.NoError(t, cred.Apply(header))
	assert.Equal(t, "Bearer from-oauth", header.Get("Authorization"))
	assert.False(t, cred.Offline())

	failing := OAuthCredential{Source: failingSource{}}
	assert.Error(t, failing.Apply(http.Header{}))
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("token endpoint unavailable")
}
