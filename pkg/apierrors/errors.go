// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package apierrors provides the error taxonomy shared by the credential
// resolver, the identity session and the compute client.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingCredential is an error which is returned when a required
// credential field was supplied neither explicitly nor via the environment.
var ErrMissingCredential = errors.New("missing credential")

// ErrAuthenticationFailed is an error which is returned when the identity
// service rejected an authentication request.
var ErrAuthenticationFailed = errors.New("authentication failed")

// ErrEndpointUnreachable is an error which is returned when the identity
// endpoint could not be reached at the transport level.
var ErrEndpointUnreachable = errors.New("endpoint unreachable")

// ErrRegionNotFound is an error which is returned when the service catalog
// contains no endpoint for the requested region.
var ErrRegionNotFound = errors.New("region not found")

// ErrEndpointNotFound is an error which is returned when the service catalog
// contains no endpoints at all for the requested service type.
var ErrEndpointNotFound = errors.New("endpoint not found in service catalog")

// ErrResourceNotSupported is an error which is returned when a resource type
// is not known to the compute client.
var ErrResourceNotSupported = errors.New("resource not supported")

// ErrUnauthorized is an error which is returned when the remote service
// rejected the token and re-authenticating did not help.
var ErrUnauthorized = errors.New("unauthorized")

// ErrTransientRequest is an error which is returned on server-side failures
// and transport errors, which the caller may choose to retry.
var ErrTransientRequest = errors.New("transient request failure")

// MissingCredential wraps [ErrMissingCredential] with the option name and the
// environment variable which may be used to provide it.
func MissingCredential(option string, envVar string) error {
	return fmt.Errorf("%w: you must provide %s via --%s or env[%s]", ErrMissingCredential, option, option, envVar)
}

// AuthenticationFailed wraps [ErrAuthenticationFailed] with the remote status
// and response body.
func AuthenticationFailed(status string, body string) error {
	return fmt.Errorf("%w: %s: %s", ErrAuthenticationFailed, status, strings.TrimSpace(body))
}

// EndpointUnreachable wraps [ErrEndpointUnreachable] with the underlying
// transport error.
func EndpointUnreachable(endpoint string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrEndpointUnreachable, endpoint, err)
}

// RegionNotFound wraps [ErrRegionNotFound] with the requested region and the
// regions which were actually present in the service catalog.
func RegionNotFound(region string, available []string) error {
	return fmt.Errorf("%w: %s (catalog has: %s)", ErrRegionNotFound, region, strings.Join(available, ", "))
}

// EndpointNotFound wraps [ErrEndpointNotFound] with the given service type.
func EndpointNotFound(serviceType string) error {
	return fmt.Errorf("%w: %s", ErrEndpointNotFound, serviceType)
}

// ResourceNotSupported wraps [ErrResourceNotSupported] with the given
// resource type.
func ResourceNotSupported(resource string) error {
	return fmt.Errorf("%w: %s", ErrResourceNotSupported, resource)
}

// ResponseError represents a non-success response from the remote service.
type ResponseError struct {
	// Method is the HTTP method of the failed request.
	Method string

	// URL is the requested URL.
	URL string

	// StatusCode is the remote status code.
	StatusCode int

	// Status is the remote status line, e.g. "401 Unauthorized".
	Status string

	// Body is the raw response body.
	Body string

	// RequestID is the request id reported by the remote service, if any.
	RequestID string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	if e.RequestID != "" {
		msg = fmt.Sprintf("%s (request-id %s)", msg, e.RequestID)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		msg = fmt.Sprintf("%s: %s", msg, body)
	}

	return msg
}

// Is maps the remote status code onto the sentinel errors from this package,
// so that callers can test response errors with [errors.Is].
func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrTransientRequest:
		return e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}

// IsTransient reports whether the given error may succeed when retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientRequest)
}
