package httputil

import (
	"errors"
	"net/http"
	"strings"
)

const (
	AuthorizationHeader = "Authorization"
	bearerScheme        = "Bearer"
	tokenQueryParam     = "token"
)

var (
	ErrMissingToken = errors.New("authorization token not found")
	ErrEmptyToken   = errors.New("authorization token is empty")
)

// SetBearer writes "Authorization: <scheme> <token>". An empty scheme means Bearer.
func SetBearer(header http.Header, scheme, token string) {
	if scheme == "" {
		scheme = bearerScheme
	}
	header.Set(AuthorizationHeader, scheme+" "+token)
}

// GetTokenFromRequest extracts the bearer token from the Authorization header,
// falling back to the token query parameter for clients that cannot set headers
// on a websocket upgrade.
func GetTokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get(AuthorizationHeader); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, bearerScheme) {
			return "", ErrMissingToken
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return "", ErrEmptyToken
		}
		return token, nil
	}

	if token := r.URL.Query().Get(tokenQueryParam); token != "" {
		return token, nil
	}

	return "", ErrMissingToken
}
