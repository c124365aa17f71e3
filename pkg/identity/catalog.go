// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"slices"

	"github.com/gardener/novactl/pkg/apierrors"
)

// ServiceTypeCompute is the service type under which the compute service is
// published in the service catalog.
const ServiceTypeCompute = "compute"

// Endpoint represents a single service endpoint from the service catalog.
type Endpoint struct {
	// Region is the region in which the endpoint is published.
	Region string `json:"region"`

	// PublicURL is the public endpoint of the service.
	PublicURL string `json:"publicURL"`
}

// CatalogEntry represents a single service from the service catalog.
type CatalogEntry struct {
	// Type is the type of the service, e.g. compute.
	Type string `json:"type"`

	// Name is the name of the service, e.g. nova.
	Name string `json:"name"`

	// Endpoints are the endpoints of the service in the order in which
	// the identity service returned them.
	Endpoints []Endpoint `json:"endpoints"`
}

// ServiceCatalog represents the service catalog issued together with a
// token. The order of the entries is the order in which the identity service
// returned them.
type ServiceCatalog struct {
	Entries []CatalogEntry
}

// EndpointFor returns the public URL of the service with the given type.
//
// With an empty region the first matching endpoint from the catalog is
// selected. With a non-empty region the first endpoint with exactly that
// region is selected, and [apierrors.ErrRegionNotFound] is returned when the
// region is not present in the catalog. When the catalog contains no
// endpoints for the service type at all, [apierrors.ErrEndpointNotFound] is
// returned.
func (c *ServiceCatalog) EndpointFor(serviceType string, region string) (string, error) {
	endpoints := make([]Endpoint, 0)
	for _, entry := range c.Entries {
		if entry.Type != serviceType {
			continue
		}
		endpoints = append(endpoints, entry.Endpoints...)
	}

	if len(endpoints) == 0 {
		return "", apierrors.EndpointNotFound(serviceType)
	}

	if region == "" {
		return endpoints[0].PublicURL, nil
	}

	for _, endpoint := range endpoints {
		if endpoint.Region == region {
			return endpoint.PublicURL, nil
		}
	}

	return "", apierrors.RegionNotFound(region, regionsOf(endpoints))
}

// Regions returns the distinct regions in which the service with the given
// type is published, in catalog order.
func (c *ServiceCatalog) Regions(serviceType string) []string {
	endpoints := make([]Endpoint, 0)
	for _, entry := range c.Entries {
		if entry.Type != serviceType {
			continue
		}
		endpoints = append(endpoints, entry.Endpoints...)
	}

	return regionsOf(endpoints)
}

// regionsOf returns the distinct regions of the given endpoints, preserving
// their order.
func regionsOf(endpoints []Endpoint) []string {
	regions := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if !slices.Contains(regions, endpoint.Region) {
			regions = append(regions, endpoint.Region)
		}
	}

	return regions
}
