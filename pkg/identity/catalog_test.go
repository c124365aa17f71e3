// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package identity_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/gardener/novactl/pkg/apierrors"
	"github.com/gardener/novactl/pkg/identity"
)

func sampleCatalog() *identity.ServiceCatalog {
	return &identity.ServiceCatalog{
		Entries: []identity.CatalogEntry{
			{
				Type: "identity",
				Name: "keystone",
				Endpoints: []identity.Endpoint{
					{Region: "RegionOne", PublicURL: "http://identity.example.org/v2.0"},
				},
			},
			{
				Type: identity.ServiceTypeCompute,
				Name: "nova",
				Endpoints: []identity.Endpoint{
					{Region: "RegionOne", PublicURL: "http://compute.one.example.org/v2.1"},
					{Region: "RegionTwo", PublicURL: "http://compute.two.example.org/v2.1"},
				},
			},
			{
				Type: identity.ServiceTypeCompute,
				Name: "nova-legacy",
				Endpoints: []identity.Endpoint{
					{Region: "RegionThree", PublicURL: "http://compute.three.example.org/v2"},
				},
			},
		},
	}
}

func TestEndpointFor(t *testing.T) {
	testCases := []struct {
		desc        string
		serviceType string
		region      string
		wanted      string
		wantErr     error
	}{
		{
			desc:        "no region selects first endpoint",
			serviceType: identity.ServiceTypeCompute,
			wanted:      "http://compute.one.example.org/v2.1",
		},
		{
			desc:        "first region",
			serviceType: identity.ServiceTypeCompute,
			region:      "RegionOne",
			wanted:      "http://compute.one.example.org/v2.1",
		},
		{
			desc:        "second region",
			serviceType: identity.ServiceTypeCompute,
			region:      "RegionTwo",
			wanted:      "http://compute.two.example.org/v2.1",
		},
		{
			desc:        "region from a later catalog entry",
			serviceType: identity.ServiceTypeCompute,
			region:      "RegionThree",
			wanted:      "http://compute.three.example.org/v2",
		},
		{
			desc:        "unknown region",
			serviceType: identity.ServiceTypeCompute,
			region:      "RegionFour",
			wantErr:     apierrors.ErrRegionNotFound,
		},
		{
			desc:        "region match is exact",
			serviceType: identity.ServiceTypeCompute,
			region:      "regionone",
			wantErr:     apierrors.ErrRegionNotFound,
		},
		{
			desc:        "unknown service type",
			serviceType: "volume",
			wantErr:     apierrors.ErrEndpointNotFound,
		},
	}

	catalog := sampleCatalog()
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := catalog.EndpointFor(tc.serviceType, tc.region)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got %v wanted %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to select endpoint: %v", err)
			}
			if got != tc.wanted {
				t.Fatalf("got %s wanted %s", got, tc.wanted)
			}
		})
	}
}

func TestEndpointForReportsKnownRegions(t *testing.T) {
	catalog := sampleCatalog()

	_, err := catalog.EndpointFor(identity.ServiceTypeCompute, "RegionFour")
	if !errors.Is(err, apierrors.ErrRegionNotFound) {
		t.Fatalf("got %v wanted %v", err, apierrors.ErrRegionNotFound)
	}

	for _, region := range []string{"RegionOne", "RegionTwo", "RegionThree"} {
		if !strings.Contains(err.Error(), region) {
			t.Fatalf("error %q does not mention region %q", err, region)
		}
	}
}

func TestRegions(t *testing.T) {
	catalog := sampleCatalog()

	got := catalog.Regions(identity.ServiceTypeCompute)
	wanted := []string{"RegionOne", "RegionTwo", "RegionThree"}
	if !slices.Equal(got, wanted) {
		t.Fatalf("got regions %v wanted %v", got, wanted)
	}

	if got := catalog.Regions("volume"); len(got) != 0 {
		t.Fatalf("got regions %v wanted none", got)
	}
}
