// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package compute provides a client for the compute service of an
// OpenStack-style cloud.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gardener/novactl/pkg/apierrors"
	"github.com/gardener/novactl/pkg/apiversions"
	"github.com/gardener/novactl/pkg/identity"
	"github.com/gardener/novactl/pkg/metrics"
)

// HeaderAuthToken is the request header carrying the authentication token.
const HeaderAuthToken = "X-Auth-Token"

// HeaderRequestID is the response header with the request id assigned by the
// service.
const HeaderRequestID = "X-OpenStack-Request-Id"

// HeaderComputeRequestID is the legacy response header with the request id
// assigned by the compute service.
const HeaderComputeRequestID = "X-Compute-Request-Id"

// ErrNoSession is an error, which is returned when a client is created
// without a session.
var ErrNoSession = errors.New("no session provided")

// ErrNoItem is an error, which is returned when a response does not contain
// the expected item key.
var ErrNoItem = errors.New("item key not found in response")

// Client talks to the compute service of a cloud. It resolves the service
// endpoint from the catalog of its session and authenticates requests with
// the session token. A client is safe for concurrent use.
type Client struct {
	session     *identity.Session
	httpClient  *http.Client
	logger      *slog.Logger
	serviceType string
	apiVersion  apiversions.APIVersion
	timings     *metrics.TimingsRecorder
}

// Option is a function which configures a [Client].
type Option func(c *Client)

// WithHTTPClient configures the client to use the given HTTP client instead
// of the one used by the session.
func WithHTTPClient(client *http.Client) Option {
	opt := func(c *Client) {
		c.httpClient = client
	}

	return opt
}

// WithLogger configures the client to use the given logger.
func WithLogger(logger *slog.Logger) Option {
	opt := func(c *Client) {
		c.logger = logger
	}

	return opt
}

// WithServiceType configures the client to look up its endpoint under the
// given service type instead of [identity.ServiceTypeCompute].
func WithServiceType(serviceType string) Option {
	opt := func(c *Client) {
		c.serviceType = serviceType
	}

	return opt
}

// WithAPIVersion configures the client to request the given API version
// instead of the one from the resolved credentials.
func WithAPIVersion(v apiversions.APIVersion) Option {
	opt := func(c *Client) {
		c.apiVersion = v
	}

	return opt
}

// WithTimingsRecorder configures the client to record the duration of each
// request with the given recorder.
func WithTimingsRecorder(r *metrics.TimingsRecorder) Option {
	opt := func(c *Client) {
		c.timings = r
	}

	return opt
}

// New creates a new compute [Client] on top of the given session.
func New(session *identity.Session, opts ...Option) (*Client, error) {
	if session == nil {
		return nil, ErrNoSession
	}

	c := &Client{
		session:     session,
		httpClient:  session.HTTPClient(),
		logger:      slog.Default(),
		serviceType: identity.ServiceTypeCompute,
		apiVersion:  session.Options().APIVersion,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Session returns the session the client was created with.
func (c *Client) Session() *identity.Session {
	return c.session
}

// buildURL builds the full request URL for the given path relative to the
// catalog-resolved service endpoint. Query parameters are encoded in sorted
// order, so that the same inputs always produce the same URL.
func (c *Client) buildURL(ctx context.Context, path string, query url.Values) (string, error) {
	endpoint, err := c.session.Endpoint(ctx, c.serviceType)
	if err != nil {
		return "", err
	}

	requestURL := strings.TrimSuffix(endpoint, "/") + path
	if len(query) > 0 {
		requestURL = requestURL + "?" + query.Encode()
	}

	return requestURL, nil
}

// response represents a raw response from the compute service.
type response struct {
	status     string
	statusCode int
	headers    http.Header
	body       []byte
}

// requestID returns the request id reported by the service, if any.
func requestID(headers http.Header) string {
	if id := headers.Get(HeaderRequestID); id != "" {
		return id
	}

	return headers.Get(HeaderComputeRequestID)
}

// roundTrip performs a single HTTP round trip with the given token. A nil
// body means a request without payload. Transport failures are reported as
// [apierrors.ErrTransientRequest].
func (c *Client) roundTrip(ctx context.Context, method string, requestURL string, body any, tok *identity.Token) (*response, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, payload)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.session.UserAgent())
	req.Header.Set(HeaderAuthToken, tok.Value)
	if v := c.apiVersion.HeaderValue(); v != "" {
		req.Header.Set(apiversions.Header, v)
	}
	if id := c.session.GlobalRequestID(); id != "" {
		req.Header.Set(identity.HeaderGlobalRequestID, id)
	}

	c.logger.Debug("api request", "method", method, "url", requestURL)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if c.timings != nil {
		c.timings.Record(metrics.Timing{Method: method, URL: requestURL, Duration: duration})
	}

	if err != nil {
		metrics.ObserveRequest(c.serviceType, method, 0, duration)
		return nil, fmt.Errorf("%w: %v", apierrors.ErrTransientRequest, err)
	}
	defer resp.Body.Close() // nolint: errcheck

	metrics.ObserveRequest(c.serviceType, method, resp.StatusCode, duration)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrTransientRequest, err)
	}

	c.logger.Debug(
		"api response",
		"method", method,
		"url", requestURL,
		"status", resp.Status,
		"request_id", requestID(resp.Header),
	)

	out := &response{
		status:     resp.Status,
		statusCode: resp.StatusCode,
		headers:    resp.Header,
		body:       data,
	}

	return out, nil
}

// responseError builds the error for a non-success response.
func (c *Client) responseError(method string, requestURL string, resp *response) error {
	return &apierrors.ResponseError{
		Method:     method,
		URL:        requestURL,
		StatusCode: resp.statusCode,
		Status:     resp.status,
		Body:       string(resp.body),
		RequestID:  requestID(resp.headers),
	}
}

// do performs an authenticated request against the compute service and
// returns the raw response body.
//
// An unauthorized response invalidates the session token and the request is
// silently retried exactly once with a fresh token. When the retry is
// rejected as well, the error of the original request is returned and no
// further attempts are made.
func (c *Client) do(ctx context.Context, method string, requestURL string, body any) ([]byte, error) {
	tok, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.roundTrip(ctx, method, requestURL, body, tok)
	if err != nil {
		return nil, err
	}

	if resp.statusCode == http.StatusUnauthorized {
		origErr := c.responseError(method, requestURL, resp)
		c.logger.Info(
			"unauthorized response, re-authenticating",
			"method", method,
			"url", requestURL,
		)

		c.session.Invalidate(tok)
		fresh, err := c.session.Token(ctx)
		if err != nil {
			if errors.Is(err, apierrors.ErrAuthenticationFailed) {
				return nil, origErr
			}
			return nil, err
		}

		resp, err = c.roundTrip(ctx, method, requestURL, body, fresh)
		if err != nil {
			return nil, err
		}
		if resp.statusCode == http.StatusUnauthorized {
			return nil, origErr
		}
	}

	if resp.statusCode >= http.StatusBadRequest {
		return nil, c.responseError(method, requestURL, resp)
	}

	return resp.body, nil
}

// extractItem decodes the value under the given key of the response body
// into v.
func extractItem(body []byte, key string, v any) error {
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		return err
	}

	raw, ok := decoded[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoItem, key)
	}

	return json.Unmarshal(raw, v)
}

// get fetches the resource at the given path and decodes the item under the
// given key into v.
func (c *Client) get(ctx context.Context, path string, itemKey string, v any) error {
	requestURL, err := c.buildURL(ctx, path, nil)
	if err != nil {
		return err
	}

	body, err := c.do(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}

	return extractItem(body, itemKey, v)
}

// post sends the given payload to the given path. With a non-empty item key
// the item of the response is decoded into v.
func (c *Client) post(ctx context.Context, path string, payload any, itemKey string, v any) error {
	requestURL, err := c.buildURL(ctx, path, nil)
	if err != nil {
		return err
	}

	body, err := c.do(ctx, http.MethodPost, requestURL, payload)
	if err != nil {
		return err
	}

	if itemKey == "" || v == nil {
		return nil
	}

	return extractItem(body, itemKey, v)
}

// delete removes the resource at the given path.
func (c *Client) delete(ctx context.Context, path string) error {
	requestURL, err := c.buildURL(ctx, path, nil)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodDelete, requestURL, nil)

	return err
}

// fetchPage fetches a single page of a collection listing.
func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, pageURL, nil)
}
