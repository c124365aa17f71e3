// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gardener/novactl/pkg/apierrors"
	"github.com/gardener/novactl/pkg/auth"
	slogutils "github.com/gardener/novactl/pkg/utils/slog"
	"github.com/gardener/novactl/pkg/version"
)

// HeaderGlobalRequestID is the header which tags all requests belonging to a
// single logical operation, so that they can be correlated across services.
const HeaderGlobalRequestID = "X-OpenStack-Global-Request-Id"

// ErrNoCredentials is an error, which is returned when a session is created
// without resolved credentials.
var ErrNoCredentials = errors.New("no credentials provided")

// NewGlobalRequestID returns a new globally unique request id suitable for
// the [HeaderGlobalRequestID] header.
func NewGlobalRequestID() string {
	return "req-" + uuid.NewString()
}

// Session authenticates against the identity service and manages the token
// for a single cloud. A session is safe for concurrent use.
type Session struct {
	opts            auth.Options
	httpClient      *http.Client
	logger          *slog.Logger
	userAgent       string
	globalRequestID string

	mu    sync.Mutex
	token *Token
}

// Option is a function which configures a [Session].
type Option func(s *Session)

// WithHTTPClient configures the session to use the given HTTP client.
func WithHTTPClient(c *http.Client) Option {
	opt := func(s *Session) {
		s.httpClient = c
	}

	return opt
}

// WithLogger configures the session to use the given logger.
func WithLogger(logger *slog.Logger) Option {
	opt := func(s *Session) {
		s.logger = logger
	}

	return opt
}

// WithUserAgent configures the session to use the given User-Agent string.
func WithUserAgent(userAgent string) Option {
	opt := func(s *Session) {
		s.userAgent = userAgent
	}

	return opt
}

// WithGlobalRequestID configures the session to tag every request with the
// given global request id. Use [NewGlobalRequestID] to generate one.
func WithGlobalRequestID(id string) Option {
	opt := func(s *Session) {
		s.globalRequestID = id
	}

	return opt
}

// NewSession creates a new [Session] from the given resolved credentials.
func NewSession(opts *auth.Options, options ...Option) (*Session, error) {
	if opts == nil {
		return nil, ErrNoCredentials
	}

	s := &Session{
		opts:       *opts,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
		userAgent:  fmt.Sprintf("novactl/%s", version.Version),
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Options returns a copy of the resolved credentials the session was created
// with.
func (s *Session) Options() auth.Options {
	return s.opts
}

// HTTPClient returns the HTTP client used by the session.
func (s *Session) HTTPClient() *http.Client {
	return s.httpClient
}

// UserAgent returns the User-Agent string used by the session.
func (s *Session) UserAgent() string {
	return s.userAgent
}

// GlobalRequestID returns the global request id of the session, if any.
func (s *Session) GlobalRequestID() string {
	return s.globalRequestID
}

// Token returns a valid token for the session. A cached token is reused
// until it expires. An absent or expired token triggers a single
// authentication round trip, also when multiple callers ask for a token
// concurrently.
func (s *Session) Token(ctx context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent caller may have refreshed the token already while we
	// were waiting on the lock.
	if s.token.Valid(time.Now()) {
		return s.token, nil
	}

	return s.authenticate(ctx)
}

// Authenticate forces a fresh authentication round trip, regardless of
// whether the cached token is still valid.
func (s *Session) Authenticate(ctx context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authenticate(ctx)
}

// Invalidate drops the cached token, if it still is the given one. Callers
// pass in the token their failed request was using, which prevents
// discarding a newer token obtained by a concurrent caller in the meantime.
func (s *Session) Invalidate(tok *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == tok {
		s.token = nil
	}
}

// Endpoint returns the public URL of the service with the given type from
// the catalog, honoring the configured region. The session authenticates
// first when it does not hold a valid token yet.
func (s *Session) Endpoint(ctx context.Context, serviceType string) (string, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return "", err
	}

	return tok.Catalog.EndpointFor(serviceType, s.opts.Region)
}

// passwordCredentials represents the credentials part of an authentication
// request.
type passwordCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authPayload represents the payload of an authentication request.
type authPayload struct {
	PasswordCredentials passwordCredentials `json:"passwordCredentials"`
	TenantName          string              `json:"tenantName,omitempty"`
}

// authRequest represents an authentication request against the identity
// service.
type authRequest struct {
	Auth authPayload `json:"auth"`
}

// tokenData represents the token part of an authentication response.
type tokenData struct {
	ID      string    `json:"id"`
	Expires time.Time `json:"expires"`
}

// accessData represents the access part of an authentication response.
type accessData struct {
	Token          tokenData      `json:"token"`
	ServiceCatalog []CatalogEntry `json:"serviceCatalog"`
}

// authResponse represents an authentication response from the identity
// service.
type authResponse struct {
	Access accessData `json:"access"`
}

// authenticate performs the authentication round trip against the identity
// service and replaces the cached token. Callers must hold the session lock.
func (s *Session) authenticate(ctx context.Context) (*Token, error) {
	payload := authRequest{
		Auth: authPayload{
			PasswordCredentials: passwordCredentials{
				Username: s.opts.Username,
				Password: s.opts.Password,
			},
			TenantName: s.opts.ProjectName,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(s.opts.IdentityEndpoint, "/") + "/tokens"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if s.globalRequestID != "" {
		req.Header.Set(HeaderGlobalRequestID, s.globalRequestID)
	}

	s.logger.Debug(
		"authenticating",
		"endpoint", endpoint,
		"username", s.opts.Username,
		"project", s.opts.ProjectName,
	)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.EndpointUnreachable(endpoint, err)
	}
	defer resp.Body.Close() // nolint: errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.EndpointUnreachable(endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apierrors.AuthenticationFailed(resp.Status, string(body))
	}

	var decoded authResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apierrors.AuthenticationFailed(resp.Status, fmt.Sprintf("unable to decode response: %s", err))
	}

	tok := &Token{
		Value:     decoded.Access.Token.ID,
		ExpiresAt: decoded.Access.Token.Expires,
		Catalog:   ServiceCatalog{Entries: decoded.Access.ServiceCatalog},
	}
	if tok.Value == "" {
		return nil, apierrors.AuthenticationFailed(resp.Status, "response contains no token")
	}

	s.token = tok
	s.logger.Debug(
		"authenticated",
		"project", s.opts.ProjectName,
		"token", slogutils.Redact(tok.Value),
		"expires_at", tok.ExpiresAt,
	)

	return tok, nil
}
