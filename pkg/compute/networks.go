// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"fmt"

	"github.com/gardener/novactl/pkg/pagination"
)

// Network represents a network managed by the compute service.
type Network struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	CIDR  string `json:"cidr"`
}

// NetworksService provides access to the networks managed by the compute
// service.
type NetworksService struct {
	client *Client
}

// Networks returns the service for managing networks.
func (c *Client) Networks() *NetworksService {
	return &NetworksService{client: c}
}

// List returns a pager over the networks.
func (s *NetworksService) List(ctx context.Context) (*pagination.Pager, error) {
	return s.client.List(ctx, ResourceNetworks, ListOpts{})
}

// ExtractNetworks extracts the networks from a collection page.
func ExtractNetworks(page pagination.Page) ([]Network, error) {
	var networks []Network
	if err := page.ExtractInto(&networks); err != nil {
		return nil, err
	}

	return networks, nil
}

// Get returns the network with the given id.
func (s *NetworksService) Get(ctx context.Context, id string) (*Network, error) {
	var network Network
	path := fmt.Sprintf("/os-networks/%s", id)
	if err := s.client.get(ctx, path, "network", &network); err != nil {
		return nil, err
	}

	return &network, nil
}
