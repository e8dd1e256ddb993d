// Package auth provides the credential providers used by the HTTP transport.
package auth

import (
	"context"
	"errors"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrEmptyToken    = errors.New("access token is empty")
	ErrEmptyUsername = errors.New("username is empty")
)

// Authenticator decorates an outgoing request with credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, req *http.Request) error
}

// BasicAuth sends HTTP basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Authenticate implements Authenticator.
func (a *BasicAuth) Authenticate(ctx context.Context, req *http.Request) error {
	if a.Username == "" {
		return ErrEmptyUsername
	}

	req.SetBasicAuth(a.Username, a.Password)

	return nil
}

// StaticToken sends a fixed Bearer token.
type StaticToken struct {
	Token string
}

// Authenticate implements Authenticator.
func (a *StaticToken) Authenticate(ctx context.Context, req *http.Request) error {
	if a.Token == "" {
		return ErrEmptyToken
	}

	req.Header.Set("Authorization", "Bearer "+a.Token)

	return nil
}

// New picks the authenticator for the given credentials: a token wins over a
// username and password. It returns nil when no credentials are set.
func New(username, password, accessToken string) Authenticator {
	if accessToken != "" {
		return &StaticToken{Token: accessToken}
	}

	if username != "" {
		return &BasicAuth{Username: username, Password: password}
	}

	return nil
}
