// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gardener/novactl/pkg/pagination"
	"github.com/gardener/novactl/pkg/utils/ptr"
)

// Swap represents the swap size of a flavor in MiB. The compute service
// returns an empty string instead of a zero value.
type Swap int

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (s *Swap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`""`)) {
		*s = 0
		return nil
	}

	var size int
	if err := json.Unmarshal(data, &size); err != nil {
		return err
	}
	*s = Swap(size)

	return nil
}

// Flavor represents a hardware configuration for a server.
type Flavor struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RAM        int     `json:"ram"`
	VCPUs      int     `json:"vcpus"`
	Disk       int     `json:"disk"`
	Swap       Swap    `json:"swap"`
	Ephemeral  int     `json:"OS-FLV-EXT-DATA:ephemeral"`
	RxTxFactor float64 `json:"rxtx_factor"`
	IsPublic   bool    `json:"os-flavor-access:is_public"`
}

// FlavorsService provides access to the flavors of the compute service.
type FlavorsService struct {
	client *Client
}

// Flavors returns the service for managing flavors.
func (c *Client) Flavors() *FlavorsService {
	return &FlavorsService{client: c}
}

// FlavorListOpts represents the options for listing flavors.
type FlavorListOpts struct {
	// Minimal requests the brief listing without details.
	Minimal bool

	// IsPublic filters flavors by visibility. When nil the service
	// default applies, which lists public flavors only.
	IsPublic *bool

	// Limit caps the number of items per page.
	Limit int

	// Marker is the id of the last item of the previous page.
	Marker string
}

func (o FlavorListOpts) query() url.Values {
	q := url.Values{}
	if !ptr.Value(o.IsPublic, true) {
		q.Set("is_public", "false")
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Marker != "" {
		q.Set("marker", o.Marker)
	}

	return q
}

// List returns a pager over the flavors matching the given options.
func (s *FlavorsService) List(ctx context.Context, opts FlavorListOpts) (*pagination.Pager, error) {
	return s.client.List(ctx, ResourceFlavors, ListOpts{Detailed: !opts.Minimal, Query: opts.query()})
}

// ExtractFlavors extracts the flavors from a collection page.
func ExtractFlavors(page pagination.Page) ([]Flavor, error) {
	var flavors []Flavor
	if err := page.ExtractInto(&flavors); err != nil {
		return nil, err
	}

	return flavors, nil
}

// Get returns the flavor with the given id.
func (s *FlavorsService) Get(ctx context.Context, id string) (*Flavor, error) {
	var flavor Flavor
	path := fmt.Sprintf("/flavors/%s", id)
	if err := s.client.get(ctx, path, "flavor", &flavor); err != nil {
		return nil, err
	}

	return &flavor, nil
}

// FlavorCreateOpts represents the options for creating a flavor.
type FlavorCreateOpts struct {
	// Name is the name of the flavor.
	Name string

	// RAM is the memory size in MiB.
	RAM int

	// VCPUs is the number of virtual CPUs.
	VCPUs int

	// Disk is the root disk size in GiB.
	Disk int

	// ID is an optional id for the flavor. When empty the service
	// generates one.
	ID string

	// Ephemeral is the ephemeral disk size in GiB.
	Ephemeral int

	// Swap is the swap size in MiB.
	Swap int

	// RxTxFactor is the bandwidth factor of the flavor. Defaults to 1.0.
	RxTxFactor float64

	// IsPublic specifies whether the flavor is visible to all projects.
	// Defaults to true.
	IsPublic *bool
}

type flavorCreateRequest struct {
	Flavor flavorCreateBody `json:"flavor"`
}

type flavorCreateBody struct {
	Name       string  `json:"name"`
	RAM        int     `json:"ram"`
	VCPUs      int     `json:"vcpus"`
	Disk       int     `json:"disk"`
	ID         string  `json:"id,omitempty"`
	Ephemeral  int     `json:"OS-FLV-EXT-DATA:ephemeral"`
	Swap       int     `json:"swap"`
	RxTxFactor float64 `json:"rxtx_factor"`
	IsPublic   bool    `json:"os-flavor-access:is_public"`
}

// Create creates a new flavor with the given options. Requires admin
// privileges.
func (s *FlavorsService) Create(ctx context.Context, opts FlavorCreateOpts) (*Flavor, error) {
	rxtx := opts.RxTxFactor
	if rxtx == 0 {
		rxtx = 1.0
	}

	payload := flavorCreateRequest{
		Flavor: flavorCreateBody{
			Name:       opts.Name,
			RAM:        opts.RAM,
			VCPUs:      opts.VCPUs,
			Disk:       opts.Disk,
			ID:         opts.ID,
			Ephemeral:  opts.Ephemeral,
			Swap:       opts.Swap,
			RxTxFactor: rxtx,
			IsPublic:   ptr.Value(opts.IsPublic, true),
		},
	}

	var flavor Flavor
	if err := s.client.post(ctx, "/flavors", payload, "flavor", &flavor); err != nil {
		return nil, err
	}

	return &flavor, nil
}

// Delete removes the flavor with the given id. Requires admin privileges.
func (s *FlavorsService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, fmt.Sprintf("/flavors/%s", id))
}
