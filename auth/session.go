// Package auth implements the three-legged OAuth2 authorization code flow against
// the Autodesk Platform Services authentication endpoints, using a loopback
// listener for the redirect, and keeps the resulting session fresh.
package auth

import (
	"errors"
	"fmt"
	"time"
)

// Margin is how long before its expiry an access token stops being used.
const Margin = 2 * time.Minute

// Fallback lifetime when the token response omits expires_in.
const DefaultLifetime = 3000 * time.Second

var (
	ErrAuthTimeout      = errors.New("timed out waiting for authorization")
	ErrStateMismatch    = errors.New("authorization response state does not match request")
	ErrNoRefreshToken   = errors.New("session has no refresh token")
	ErrInProgress       = errors.New("authorization already in progress")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrSessionExpired   = errors.New("session expired")
)

// ProviderError is an error reported by the authorization server, either on the
// redirect (error=...) or from the token endpoint.
type ProviderError struct {
	Code        string
	Description string
	StatusCode  int
	Body        string
}

func (e *ProviderError) Error() string {
	switch {
	case e.Description != "":
		return fmt.Sprintf("authorization server error: %v (%v)", e.Code, e.Description)

	case e.Body != "":
		return fmt.Sprintf("authorization server error: %v (%v)", e.Code, e.Body)

	default:
		return fmt.Sprintf("authorization server error: %v", e.Code)
	}
}

type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	ClientID     string
	ClientSecret string
}

// Usable returns true if the access token may still be used at 'now'.
func (s Session) Usable(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.Expiry.Add(-Margin))
}

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Refreshing
	Expired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("state:%d", int(s))
	}
}
