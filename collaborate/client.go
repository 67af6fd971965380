// Package collaborate is a client for the Collaborate web-conferencing REST
// API. It manages the bearer token itself; callers only see typed records and
// errors.
//
// Failures are returned as errors and never panic. Expected absence (no such
// user, enrolment or recording) is reported with errors.ErrNotFound so callers
// can tell "nothing to do" apart from a failed call, which matches
// errors.ErrRemoteCall or errors.ErrTokenAcquisition.
package collaborate

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-collaborate/internal/config"
	"github.com/jrsteele09/go-collaborate/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// TokenProvider supplies a currently valid bearer token.
type TokenProvider interface {
	ValidToken(ctx context.Context) (*xoauth2.Token, error)
}

// Client talks to one vendor deployment with one set of credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	nowFunc    func() time.Time
	logger     zerolog.Logger

	tokenOptions []token.ManagerOption
}

type Option func(*Client)

// WithHTTPClient sets the HTTP client used for both token and API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNowFunc sets the clock used for token expiry and user timestamps.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTokenProvider replaces the built-in token manager.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) {
		c.tokens = tp
	}
}

// WithTokenOptions passes extra options to the built-in token manager.
func WithTokenOptions(opts ...token.ManagerOption) Option {
	return func(c *Client) {
		c.tokenOptions = append(c.tokenOptions, opts...)
	}
}

// New creates a client for the API at baseURL, authenticating with key and
// secret.
func New(baseURL, key, secret string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.Logger.With().Str("component", "collaborate").Logger(),
	}

	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	if c.tokens == nil {
		opts := []token.ManagerOption{
			token.WithHTTPClient(c.httpClient),
			token.WithNowFunc(c.nowFunc),
			token.WithLogger(c.logger),
		}
		c.tokens = token.New(c.baseURL, key, secret, append(opts, c.tokenOptions...)...)
	}
	return c
}

// NewFromConfig creates a client from process configuration.
func NewFromConfig(cfg config.CollaborateConfig, options ...Option) *Client {
	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.GetCollaborateTimeout()}),
		WithTokenOptions(token.WithAssertionTTL(cfg.GetAssertionTTL())),
	}
	return New(cfg.GetCollaborateURL(), cfg.GetCollaborateKey(), cfg.GetCollaborateSecret(), append(opts, options...)...)
}
