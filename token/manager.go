package token

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/internal/utils"
	"github.com/jrsteele09/go-collaborate/oauth2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// TokenPath is the vendor token endpoint, relative to the API base URL.
const TokenPath = "/token"

// Manager obtains and caches the bearer token used for every vendor call.
// Refreshes are serialised, so concurrent callers that find the token expired
// share a single exchange.
type Manager struct {
	tokenURL     string
	key          string
	signer       Signer
	httpClient   *http.Client
	assertionTTL time.Duration
	nowFunc      func() time.Time
	logger       zerolog.Logger

	lock  sync.Mutex
	token *xoauth2.Token
}

var _ xoauth2.TokenSource = (*Manager)(nil)

type ManagerOption func(*Manager)

func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithAssertionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.assertionTTL = ttl
	}
}

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

func New(baseURL, key, secret string, options ...ManagerOption) *Manager {
	m := &Manager{
		tokenURL: strings.TrimRight(baseURL, "/") + TokenPath,
		key:      key,
		signer:   NewHMACSigner(secret),
		logger:   log.Logger,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.httpClient == nil {
		m.httpClient = http.DefaultClient
	}
	if m.assertionTTL <= 0 {
		m.assertionTTL = DefaultAssertionTTL
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// Token implements oauth2.TokenSource.
func (m *Manager) Token() (*xoauth2.Token, error) {
	return m.ValidToken(context.Background())
}

// ValidToken returns the cached token, refreshing it first when none has been
// fetched or it has expired.
func (m *Manager) ValidToken(ctx context.Context) (*xoauth2.Token, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.token != nil && !m.token.Expiry.Before(m.nowFunc()) {
		return m.token, nil
	}
	return m.refresh(ctx)
}

// Refresh unconditionally exchanges a new assertion for a token and replaces
// the cached one.
func (m *Manager) Refresh(ctx context.Context) (*xoauth2.Token, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.refresh(ctx)
}

// Expiry returns the expiry of the cached token and false when none is held.
func (m *Manager) Expiry() (time.Time, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.token == nil {
		return time.Time{}, false
	}
	return m.token.Expiry, true
}

// refresh must be called with m.lock held.
func (m *Manager) refresh(ctx context.Context) (*xoauth2.Token, error) {
	now := m.nowFunc()

	assertion, err := CreateAssertion(m.key, m.signer, now, m.assertionTTL)
	if err != nil {
		m.logger.Error().Err(err).Caller().Msg("Error getting access token: cannot sign assertion")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenAcquisition, err)
	}

	form := url.Values{}
	form.Set(oauth2.ParamGrantType, string(oauth2.GrantTypeJWTBearer))
	form.Set(oauth2.ParamAssertion, assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenAcquisition, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Error().Err(err).Caller().Str("url", m.tokenURL).Msg("Error getting access token")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenAcquisition, err)
	}
	defer resp.Body.Close()

	if !utils.IsSuccess(resp.StatusCode) {
		m.logger.Error().
			Caller().
			Int("status", resp.StatusCode).
			Str("reason", utils.ReasonPhrase(resp)).
			Str("url", m.tokenURL).
			Msg("Error getting access token")
		return nil, fmt.Errorf("%w: token endpoint returned %d %s", apperrors.ErrTokenAcquisition, resp.StatusCode, utils.ReasonPhrase(resp))
	}

	var tr oauth2.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		m.logger.Error().Err(err).Caller().Int("status", resp.StatusCode).Msg("Error getting access token: undecodable response")
		return nil, fmt.Errorf("%w: decoding token response: %w", apperrors.ErrTokenAcquisition, err)
	}
	if tr.AccessToken == "" {
		m.logger.Error().Caller().Int("status", resp.StatusCode).Msg("Error getting access token: empty access_token")
		return nil, fmt.Errorf("%w: empty access_token in token response", apperrors.ErrTokenAcquisition)
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = oauth2.TokenTypeBearer
	}
	m.token = &xoauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tokenType,
		Expiry:      now.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	m.logger.Debug().Time("expires_at", m.token.Expiry).Msg("Collaborate access token refreshed")
	return m.token, nil
}
