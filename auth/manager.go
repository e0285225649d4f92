package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	AuthURL     = "https://developer.api.autodesk.com/authentication/v2/authorize"
	TokenURL    = "https://developer.api.autodesk.com/authentication/v2/token"
	RedirectURI = "http://127.0.0.1:8765/callback/"
)

var Scopes = []string{"data:read", "data:write", "account:read"}

// Manager owns the OAuth2 session. Only one authorization attempt runs at a time
// and refreshes are serialized, so callers of AccessToken never see a token that
// is being replaced.
type Manager struct {
	sync.RWMutex
	session *Session
	state   State

	pending atomic.Bool
	flight  singleflight.Group

	authURL  string
	tokenURL string
	redirect string
	scopes   []string
	browser  func(string) error
	client   *http.Client
	now      func() time.Time
	debug    bool
}

type Option func(*Manager)

func WithEndpoint(authURL, tokenURL string) Option {
	return func(m *Manager) {
		m.authURL = authURL
		m.tokenURL = tokenURL
	}
}

func WithRedirectURI(uri string) Option {
	return func(m *Manager) {
		m.redirect = uri
	}
}

func WithScopes(scopes ...string) Option {
	return func(m *Manager) {
		m.scopes = scopes
	}
}

// WithBrowser replaces the function used to open the authorization URL.
func WithBrowser(open func(string) error) Option {
	return func(m *Manager) {
		m.browser = open
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func WithDebug(debug bool) Option {
	return func(m *Manager) {
		m.debug = debug
	}
}

func NewManager(opts ...Option) *Manager {
	m := Manager{
		state:    Unauthenticated,
		authURL:  AuthURL,
		tokenURL: TokenURL,
		redirect: RedirectURI,
		scopes:   Scopes,
		browser:  OpenBrowser,
		client:   http.DefaultClient,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return &m
}

func (m *Manager) State() State {
	m.RLock()
	defer m.RUnlock()

	return m.state
}

// Session returns a copy of the current session.
func (m *Manager) Session() (Session, bool) {
	m.RLock()
	defer m.RUnlock()

	if m.session == nil {
		return Session{}, false
	}

	return *m.session, true
}

// Authenticate runs the authorization code flow: it starts the loopback listener,
// opens the authorization page in the browser, waits for the redirect and
// exchanges the code for tokens. The listener is shut down before returning.
func (m *Manager) Authenticate(ctx context.Context, clientID, clientSecret string, timeout time.Duration) error {
	if !m.pending.CompareAndSwap(false, true) {
		return ErrInProgress
	}

	defer m.pending.Store(false)

	previous := m.setState(Authenticating)

	if err := m.authenticate(ctx, clientID, clientSecret, timeout); err != nil {
		m.setState(previous)
		return err
	}

	return nil
}

func (m *Manager) authenticate(ctx context.Context, clientID, clientSecret string, timeout time.Duration) error {
	config := m.config(clientID, clientSecret)
	browser := func(url string) error {
		if m.debug {
			debugf("authorization URL %v", url)
		}

		return m.browser(url)
	}

	token, err := Authorize(m.context(ctx, config), config, timeout, browser, oauth2.SetAuthURLParam("prompt", "login"))
	if err != nil {
		return err
	}

	m.Lock()
	defer m.Unlock()

	m.session = &Session{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}

	m.update(token)
	m.state = Authenticated

	return nil
}

// Authorize runs an authorization code grant for any OAuth2 provider. It listens on
// the config's loopback redirect URL, opens the authorization page and exchanges
// the returned code for a token. The HTTP client for the exchange is taken from
// the context (oauth2.HTTPClient).
func Authorize(ctx context.Context, config *oauth2.Config, timeout time.Duration, open func(string) error, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	state := uuid.NewString()

	cb, err := listen(config.RedirectURL, state)
	if err != nil {
		return nil, err
	}

	defer cb.close()

	url := config.AuthCodeURL(state, opts...)
	if err := open(url); err != nil {
		warnf("could not open the sign-in page in your browser (%v)", err)
		infof("please open %v", url)
	}

	wait, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var code string
	select {
	case <-wait.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, ErrAuthTimeout

	case rsp := <-cb.result:
		if rsp.err != nil {
			return nil, rsp.err
		}

		code = rsp.code
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange failed (%w)", providerError(err))
	}

	return token, nil
}

// Refresh exchanges the refresh token for a new access token.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresh(ctx, true)
}

// AccessToken returns a usable access token, refreshing the session first if the
// token is within Margin of its expiry.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.RLock()
	if m.session == nil {
		m.RUnlock()
		return "", ErrNotAuthenticated
	}

	if m.session.Usable(m.now()) {
		token := m.session.AccessToken
		m.RUnlock()
		return token, nil
	}

	m.RUnlock()

	if err := m.refresh(ctx, false); err != nil {
		return "", err
	}

	m.RLock()
	defer m.RUnlock()

	if m.session == nil {
		return "", ErrNotAuthenticated
	}

	return m.session.AccessToken, nil
}

func (m *Manager) refresh(ctx context.Context, force bool) error {
	_, err, _ := m.flight.Do("refresh", func() (any, error) {
		m.Lock()
		defer m.Unlock()

		if m.session == nil {
			return nil, ErrNotAuthenticated
		}

		if !force && m.session.Usable(m.now()) {
			return nil, nil
		}

		if m.session.RefreshToken == "" {
			m.session = nil
			m.state = Expired
			return nil, ErrNoRefreshToken
		}

		m.state = Refreshing

		config := m.config(m.session.ClientID, m.session.ClientSecret)
		source := config.TokenSource(m.context(ctx, config), &oauth2.Token{RefreshToken: m.session.RefreshToken})

		token, err := source.Token()
		if err != nil {
			err = providerError(err)

			var pe *ProviderError
			if errors.As(err, &pe) && pe.Code == "invalid_grant" {
				m.session = nil
				m.state = Expired
			} else {
				m.state = Authenticated
			}

			return nil, fmt.Errorf("token refresh failed (%w)", err)
		}

		m.update(token)
		m.state = Authenticated

		if m.debug {
			debugf("access token refreshed, expires %v", m.session.Expiry.Format(time.RFC3339))
		}

		return nil, nil
	})

	return err
}

// Restore reinstates a cached session. A session within Margin of its expiry is
// rejected. A missing expiry is taken from the access token's 'exp' claim.
func (m *Manager) Restore(s Session) error {
	if s.AccessToken == "" {
		return ErrNotAuthenticated
	}

	if s.Expiry.IsZero() {
		if exp, err := expiry(s.AccessToken); err != nil {
			return fmt.Errorf("%w (%v)", ErrSessionExpired, err)
		} else {
			s.Expiry = exp
		}
	}

	if !s.Usable(m.now()) {
		return ErrSessionExpired
	}

	m.Lock()
	defer m.Unlock()

	m.session = &s
	m.state = Authenticated

	return nil
}

func (m *Manager) SignOut() {
	m.Lock()
	defer m.Unlock()

	m.session = nil
	m.state = Unauthenticated
}

func (m *Manager) setState(state State) State {
	m.Lock()
	defer m.Unlock()

	previous := m.state
	m.state = state

	return previous
}

func (m *Manager) config(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   m.authURL,
			TokenURL:  m.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: m.redirect,
		Scopes:      m.scopes,
	}
}

// context returns a context carrying the HTTP client for token requests. The
// client sends the client credentials as Basic auth without the form encoding
// applied by the oauth2 package.
func (m *Manager) context(ctx context.Context, config *oauth2.Config) context.Context {
	client := http.Client{}
	if m.client != nil {
		client = *m.client
	}

	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	client.Transport = &basicAuth{
		id:     config.ClientID,
		secret: config.ClientSecret,
		next:   next,
	}

	return context.WithValue(ctx, oauth2.HTTPClient, &client)
}

type basicAuth struct {
	id     string
	secret string
	next   http.RoundTripper
}

func (b *basicAuth) RoundTrip(rq *http.Request) (*http.Response, error) {
	r := rq.Clone(rq.Context())
	r.SetBasicAuth(b.id, b.secret)

	return b.next.RoundTrip(r)
}

// update overwrites the session tokens in place. Caller holds the write lock.
func (m *Manager) update(token *oauth2.Token) {
	lifetime := DefaultLifetime
	if v := seconds(token.Extra("expires_in")); v > 0 {
		lifetime = time.Duration(v) * time.Second
	}

	m.session.AccessToken = token.AccessToken
	m.session.Expiry = m.now().Add(lifetime).UTC()

	if token.RefreshToken != "" {
		m.session.RefreshToken = token.RefreshToken
	}
}

func seconds(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

// expiry extracts the 'exp' claim from a JWT access token without verifying the
// signature.
func expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	} else if exp == nil {
		return time.Time{}, fmt.Errorf("access token has no expiry")
	}

	return exp.Time, nil
}

func providerError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err
	}

	pe := ProviderError{
		Code:        re.ErrorCode,
		Description: re.ErrorDescription,
		Body:        string(re.Body),
	}

	if re.Response != nil {
		pe.StatusCode = re.Response.StatusCode
	}

	if pe.Code == "" {
		pe.Code = fmt.Sprintf("http_%v", pe.StatusCode)
	}

	return &pe
}
