package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"stravagpx/internal/config"
	"stravagpx/internal/logging"
)

const (
	// RedirectURL is registered with the Strava application; the browser
	// lands on it after authorization and the code is copied from its query.
	RedirectURL = "http://localhost/authorize"
	// Scope is the comma-separated scope list Strava expects.
	Scope = "read_all,profile:read_all,activity:read_all"
)

// Endpoint is the Strava OAuth endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// ErrEmptyCode is returned when the operator submits no authorization code.
var ErrEmptyCode = errors.New("no authorization code entered")

// TokenStore persists the token inside the configuration document.
type TokenStore interface {
	Document() config.Document
	SetAuthToken(config.AuthToken) error
}

// Provider hands out a valid bearer token.
type Provider struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	in         *bufio.Reader
	out        io.Writer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithEndpoint overrides the OAuth endpoint (used in tests).
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *Provider) {
		p.oauth.Endpoint = endpoint
	}
}

// WithHTTPClient overrides the client used for token requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithPrompt sets where the authorization prompt is written and the code read.
func WithPrompt(in io.Reader, out io.Writer) Option {
	return func(p *Provider) {
		if in != nil {
			p.in = bufio.NewReader(in)
		}
		if out != nil {
			p.out = out
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logging.NewComponentLogger(logger, "auth")
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Provider for the Strava application credentials.
func New(clientID int64, clientSecret string, opts ...Option) *Provider {
	p := &Provider{
		oauth: &oauth2.Config{
			ClientID:     strconv.FormatInt(clientID, 10),
			ClientSecret: clientSecret,
			Endpoint:     Endpoint,
			RedirectURL:  RedirectURL,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		logger:     logging.NewComponentLogger(nil, "auth"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AuthCodeURL returns the page the operator opens to authorize stravagpx.
func (p *Provider) AuthCodeURL() string {
	return p.oauth.AuthCodeURL("",
		oauth2.SetAuthURLParam("scope", Scope),
		oauth2.SetAuthURLParam("approval_prompt", "force"))
}

// Ensure returns a bearer token that is valid now, persisting any new token
// through store.
func (p *Provider) Ensure(ctx context.Context, store TokenStore) (config.AuthToken, error) {
	current := store.Document().API.AuthToken
	now := p.now()

	if current != nil && !current.Expired(now) {
		p.logger.Debug("stored token valid",
			logging.Args(logging.DecisionAttrs("auth_token", "reuse", "token not expired")...)...)
		return *current, nil
	}

	if current != nil && strings.TrimSpace(current.RefreshToken) != "" {
		token, err := p.refresh(ctx, current.RefreshToken)
		if err == nil {
			if err := store.SetAuthToken(token); err != nil {
				return config.AuthToken{}, fmt.Errorf("store refreshed token: %w", err)
			}
			p.logger.Info("access token refreshed",
				logging.Time("expires_at", token.Expiry()))
			return token, nil
		}
		logging.WarnWithContext(p.logger, "token refresh failed; falling back to interactive authorization", "token_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "authorize again in the browser"),
			logging.String(logging.FieldImpact, "interactive authorization required"))
	}

	token, err := p.authorize(ctx)
	if err != nil {
		return config.AuthToken{}, err
	}
	if err := store.SetAuthToken(token); err != nil {
		return config.AuthToken{}, fmt.Errorf("store new token: %w", err)
	}
	p.logger.Info("authorization complete",
		logging.Time("expires_at", token.Expiry()))
	return token, nil
}

func (p *Provider) refresh(ctx context.Context, refreshToken string) (config.AuthToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: p.now().Add(-time.Minute)}
	tok, err := p.oauth.TokenSource(ctx, expired).Token()
	if err != nil {
		return config.AuthToken{}, fmt.Errorf("refresh token: %w", err)
	}
	return convertToken(tok)
}

func (p *Provider) authorize(ctx context.Context) (config.AuthToken, error) {
	fmt.Fprintf(p.out, "Go to %q, authorize with Strava and paste the \"code\" from the return URL: ", p.AuthCodeURL())

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return config.AuthToken{}, fmt.Errorf("read authorization code: %w", err)
	}
	code := extractCode(line)
	if code == "" {
		return config.AuthToken{}, ErrEmptyCode
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return config.AuthToken{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	return convertToken(tok)
}

// extractCode accepts either the bare code or the full redirect URL.
func extractCode(input string) string {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "://") {
		if parsed, err := url.Parse(input); err == nil {
			if code := parsed.Query().Get("code"); code != "" {
				return code
			}
		}
	}
	return input
}

func convertToken(tok *oauth2.Token) (config.AuthToken, error) {
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		return config.AuthToken{}, errors.New("token response missing access_token")
	}
	out := config.AuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	switch v := tok.Extra("expires_at").(type) {
	case float64:
		out.ExpiresAt = int64(v)
	case string:
		out.ExpiresAt, _ = strconv.ParseInt(v, 10, 64)
	}
	if out.ExpiresAt == 0 && !tok.Expiry.IsZero() {
		out.ExpiresAt = tok.Expiry.Unix()
	}
	return out, nil
}
