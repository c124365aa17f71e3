// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gardener/novactl/pkg/apierrors"
	"github.com/gardener/novactl/pkg/apiversions"
	"github.com/gardener/novactl/pkg/compute"
	"github.com/gardener/novactl/pkg/identity"
)

func TestRequestHeaders(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Header.Get(compute.HeaderAuthToken), "token-1"; got != want {
			t.Errorf("got token header %q wanted %q", got, want)
		}
		if got, want := r.Header.Get(apiversions.Header), "2.1"; got != want {
			t.Errorf("got api version header %q wanted %q", got, want)
		}
		if got, want := r.Header.Get("Accept"), "application/json"; got != want {
			t.Errorf("got accept header %q wanted %q", got, want)
		}
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "novactl/") {
			t.Errorf("got user agent %q wanted novactl prefix", got)
		}
		if got := r.Header.Get(identity.HeaderGlobalRequestID); !strings.HasPrefix(got, "req-") {
			t.Errorf("got global request id %q wanted req- prefix", got)
		}

		writeJSON(w, `{"server": {"id": "srv-1", "name": "web-0"}}`)
	})

	client := tc.newClient(t)
	server, err := client.Servers().Get(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("failed to get server: %v", err)
	}
	if server.ID != "srv-1" {
		t.Fatalf("got server id %q wanted %q", server.ID, "srv-1")
	}
}

func TestMicroversionHeader(t *testing.T) {
	testCases := []struct {
		desc string
		opts []compute.Option
		want string
	}{
		{
			desc: "default version",
			opts: nil,
			want: "2.1",
		},
		{
			desc: "legacy version omits header",
			opts: []compute.Option{compute.WithAPIVersion(apiversions.APIVersion{Major: 2})},
			want: "",
		},
		{
			desc: "explicit microversion",
			opts: []compute.Option{compute.WithAPIVersion(apiversions.MustParse("2.87"))},
			want: "2.87",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var got atomic.Value
			cloud := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
				got.Store(r.Header.Get(apiversions.Header))
				writeJSON(w, `{"server": {"id": "srv-1"}}`)
			})

			client := cloud.newClient(t, tc.opts...)
			if _, err := client.Servers().Get(context.Background(), "srv-1"); err != nil {
				t.Fatalf("failed to get server: %v", err)
			}
			if got.Load() != tc.want {
				t.Fatalf("got api version header %q wanted %q", got.Load(), tc.want)
			}
		})
	}
}

func TestUnauthorizedRetriesOnce(t *testing.T) {
	var tc *testCloud
	tc = newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		// The first token is treated as revoked by the service.
		token := r.Header.Get(compute.HeaderAuthToken)
		if token == "token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"unauthorized": {"message": "Token expired"}}`) // nolint: errcheck
			return
		}
		if token != tc.currentToken() {
			t.Errorf("got token %q wanted %q", token, tc.currentToken())
		}

		writeJSON(w, `{"server": {"id": "srv-1", "name": "web-0", "status": "ACTIVE"}}`)
	})

	client := tc.newClient(t)
	server, err := client.Servers().Get(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("failed to get server: %v", err)
	}
	if server.Status != "ACTIVE" {
		t.Fatalf("got server status %q wanted %q", server.Status, "ACTIVE")
	}

	if got := tc.authCalls.Load(); got != 2 {
		t.Fatalf("got %d authentication requests wanted 2", got)
	}
	if got := tc.computeCalls.Load(); got != 2 {
		t.Fatalf("got %d compute requests wanted 2", got)
	}
}

func TestUnauthorizedTwiceSurfacesOriginal(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"unauthorized": {"message": "Token revoked"}}`) // nolint: errcheck
	})

	client := tc.newClient(t)
	_, err := client.Servers().Get(context.Background(), "srv-1")
	if !errors.Is(err, apierrors.ErrUnauthorized) {
		t.Fatalf("got %v wanted %v", err, apierrors.ErrUnauthorized)
	}

	var respErr *apierrors.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("got %T wanted a response error", err)
	}
	if respErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got status code %d wanted %d", respErr.StatusCode, http.StatusUnauthorized)
	}

	// One retry with a fresh token, nothing beyond that.
	if got := tc.computeCalls.Load(); got != 2 {
		t.Fatalf("got %d compute requests wanted 2", got)
	}
	if got := tc.authCalls.Load(); got != 2 {
		t.Fatalf("got %d authentication requests wanted 2", got)
	}
}

func TestServerErrorIsTransient(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"serviceUnavailable": {"message": "The service is down for maintenance"}}`) // nolint: errcheck
	})

	client := tc.newClient(t)
	_, err := client.Servers().Get(context.Background(), "srv-1")
	if !apierrors.IsTransient(err) {
		t.Fatalf("got %v wanted a transient error", err)
	}

	var respErr *apierrors.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("got %T wanted a response error", err)
	}
	if respErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("got status code %d wanted %d", respErr.StatusCode, http.StatusServiceUnavailable)
	}

	if got := tc.computeCalls.Load(); got != 1 {
		t.Fatalf("got %d compute requests wanted 1", got)
	}
}

func TestTransportErrorIsTransient(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Errorf("response writer does not support hijacking")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("failed to hijack connection: %v", err)
			return
		}
		conn.Close() // nolint: errcheck
	})

	client := tc.newClient(t)
	_, err := client.Servers().Get(context.Background(), "srv-1")
	if !apierrors.IsTransient(err) {
		t.Fatalf("got %v wanted a transient error", err)
	}

	if got := tc.computeCalls.Load(); got != 1 {
		t.Fatalf("got %d compute requests wanted 1", got)
	}
}

func TestTokenReuseAcrossRequests(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"flavors": []}`)
	})

	client := tc.newClient(t)
	for i := 0; i < 2; i++ {
		pager, err := client.Flavors().List(context.Background(), compute.FlavorListOpts{})
		if err != nil {
			t.Fatalf("failed to list flavors: %v", err)
		}
		collectPages(t, pager, compute.ExtractFlavors)
	}

	if got := tc.authCalls.Load(); got != 1 {
		t.Fatalf("got %d authentication requests wanted 1", got)
	}
	if got := tc.computeCalls.Load(); got != 2 {
		t.Fatalf("got %d compute requests wanted 2", got)
	}
}

func TestUnknownResource(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected compute request: %s %s", r.Method, r.URL.Path)
	})

	client := tc.newClient(t)
	_, err := client.List(context.Background(), compute.ResourceType("volumes"), compute.ListOpts{})
	if !errors.Is(err, apierrors.ErrResourceNotSupported) {
		t.Fatalf("got %v wanted %v", err, apierrors.ErrResourceNotSupported)
	}

	// The resource type is rejected before any request is made.
	if got := tc.authCalls.Load(); got != 0 {
		t.Fatalf("got %d authentication requests wanted none", got)
	}
	if got := tc.computeCalls.Load(); got != 0 {
		t.Fatalf("got %d compute requests wanted none", got)
	}
}

func TestResponseErrorDetails(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(compute.HeaderRequestID, "req-0123")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"itemNotFound": {"message": "Instance could not be found"}}`) // nolint: errcheck
	})

	client := tc.newClient(t)
	_, err := client.Servers().Get(context.Background(), "missing")

	var respErr *apierrors.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("got %T wanted a response error", err)
	}
	if respErr.StatusCode != http.StatusNotFound {
		t.Fatalf("got status code %d wanted %d", respErr.StatusCode, http.StatusNotFound)
	}
	if respErr.RequestID != "req-0123" {
		t.Fatalf("got request id %q wanted %q", respErr.RequestID, "req-0123")
	}
	if !strings.Contains(err.Error(), "Instance could not be found") {
		t.Fatalf("error %q does not carry the response body", err)
	}
}

func TestNewWithoutSession(t *testing.T) {
	_, err := compute.New(nil)
	if !errors.Is(err, compute.ErrNoSession) {
		t.Fatalf("got %v wanted %v", err, compute.ErrNoSession)
	}
}
