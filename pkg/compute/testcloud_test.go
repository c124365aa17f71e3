// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gardener/novactl/pkg/apiversions"
	"github.com/gardener/novactl/pkg/auth"
	"github.com/gardener/novactl/pkg/compute"
	"github.com/gardener/novactl/pkg/identity"
	"github.com/gardener/novactl/pkg/pagination"
)

// testCloud simulates an identity service and a compute service behind a
// single test server. Authentication requests are answered with a fresh
// token and a catalog pointing back at the compute endpoint of the server,
// everything below /compute/ is dispatched to the configured handler.
type testCloud struct {
	srv     *httptest.Server
	handler http.HandlerFunc

	authCalls    atomic.Int32
	computeCalls atomic.Int32
	token        atomic.Value
}

func newTestCloud(t *testing.T, handler http.HandlerFunc) *testCloud {
	t.Helper()

	tc := &testCloud{handler: handler}
	tc.srv = httptest.NewServer(http.HandlerFunc(tc.route))
	t.Cleanup(tc.srv.Close)

	return tc
}

func (tc *testCloud) route(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/identity/tokens":
		tc.auth(w)
	case strings.HasPrefix(r.URL.Path, "/compute/"):
		tc.computeCalls.Add(1)
		tc.handler(w, r)
	default:
		http.NotFound(w, r)
	}
}

// auth answers an authentication request with a fresh token. Tokens are
// numbered in the order they are issued.
func (tc *testCloud) auth(w http.ResponseWriter) {
	token := fmt.Sprintf("token-%d", tc.authCalls.Add(1))
	tc.token.Store(token)

	resp := map[string]any{
		"access": map[string]any{
			"token": map[string]any{
				"id":      token,
				"expires": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			},
			"serviceCatalog": []map[string]any{
				{
					"type": "compute",
					"name": "nova",
					"endpoints": []map[string]any{
						{"region": "RegionOne", "publicURL": tc.srv.URL + "/compute"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) // nolint: errcheck
}

// currentToken returns the most recently issued token.
func (tc *testCloud) currentToken() string {
	token, _ := tc.token.Load().(string)

	return token
}

// newClient creates a compute client which authenticates against the test
// cloud.
func (tc *testCloud) newClient(t *testing.T, opts ...compute.Option) *compute.Client {
	t.Helper()

	authOpts := &auth.Options{
		IdentityEndpoint: tc.srv.URL + "/identity",
		Username:         "demo",
		Password:         "s3cr3t",
		ProjectName:      "demo-project",
		Region:           "RegionOne",
		APIVersion:       apiversions.DefaultVersion,
	}

	session, err := identity.NewSession(
		authOpts,
		identity.WithGlobalRequestID(identity.NewGlobalRequestID()),
	)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	client, err := compute.New(session, opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}

// writeJSON writes the given body as a JSON response.
func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body) // nolint: errcheck
}

// collectPages walks all pages of the pager and accumulates the items
// extracted from each page.
func collectPages[T any](t *testing.T, pager *pagination.Pager, extract func(pagination.Page) ([]T, error)) []T {
	t.Helper()

	var items []T
	err := pager.EachPage(context.Background(), func(ctx context.Context, page pagination.Page) (bool, error) {
		batch, err := extract(page)
		if err != nil {
			return false, err
		}
		items = append(items, batch...)

		return true, nil
	})
	if err != nil {
		t.Fatalf("failed to walk pages: %v", err)
	}

	return items
}
