// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"fmt"

	"github.com/gardener/novactl/pkg/pagination"
)

// KeyPair represents an SSH keypair registered with the compute service.
type KeyPair struct {
	Name        string `json:"name"`
	PublicKey   string `json:"public_key"`
	Fingerprint string `json:"fingerprint"`
	Type        string `json:"type,omitempty"`
	UserID      string `json:"user_id,omitempty"`

	// PrivateKey is the generated private key. It is set only in the
	// response to a create request without a public key, and cannot be
	// retrieved again afterwards.
	PrivateKey string `json:"private_key,omitempty"`
}

// KeyPairsService provides access to the SSH keypairs of the compute
// service.
type KeyPairsService struct {
	client *Client
}

// KeyPairs returns the service for managing SSH keypairs.
func (c *Client) KeyPairs() *KeyPairsService {
	return &KeyPairsService{client: c}
}

// List returns a pager over the registered keypairs.
func (s *KeyPairsService) List(ctx context.Context) (*pagination.Pager, error) {
	return s.client.List(ctx, ResourceKeyPairs, ListOpts{})
}

// ExtractKeyPairs extracts the keypairs from a collection page. Each item
// of a keypair listing is additionally nested under a keypair key.
func ExtractKeyPairs(page pagination.Page) ([]KeyPair, error) {
	var wrapped []struct {
		KeyPair KeyPair `json:"keypair"`
	}
	if err := page.ExtractInto(&wrapped); err != nil {
		return nil, err
	}

	keypairs := make([]KeyPair, 0, len(wrapped))
	for _, item := range wrapped {
		keypairs = append(keypairs, item.KeyPair)
	}

	return keypairs, nil
}

// Get returns the keypair with the given name.
func (s *KeyPairsService) Get(ctx context.Context, name string) (*KeyPair, error) {
	var keypair KeyPair
	path := fmt.Sprintf("/os-keypairs/%s", name)
	if err := s.client.get(ctx, path, "keypair", &keypair); err != nil {
		return nil, err
	}

	return &keypair, nil
}

// KeyPairCreateOpts represents the options for creating a keypair.
type KeyPairCreateOpts struct {
	// Name is the name of the keypair.
	Name string

	// PublicKey is an existing public key to import. When empty the
	// service generates a new keypair and returns the private key once.
	PublicKey string

	// Type is the keypair type, e.g. ssh or x509. Supported by the
	// service starting with API version 2.2.
	Type string
}

type keyPairCreateRequest struct {
	KeyPair keyPairCreateBody `json:"keypair"`
}

type keyPairCreateBody struct {
	Name      string `json:"name"`
	PublicKey string `json:"public_key,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Create registers a new keypair. Without a public key in the options the
// service generates one and the returned keypair carries the private key.
func (s *KeyPairsService) Create(ctx context.Context, opts KeyPairCreateOpts) (*KeyPair, error) {
	payload := keyPairCreateRequest{
		KeyPair: keyPairCreateBody{
			Name:      opts.Name,
			PublicKey: opts.PublicKey,
			Type:      opts.Type,
		},
	}

	var keypair KeyPair
	if err := s.client.post(ctx, "/os-keypairs", payload, "keypair", &keypair); err != nil {
		return nil, err
	}

	return &keypair, nil
}

// Delete removes the keypair with the given name.
func (s *KeyPairsService) Delete(ctx context.Context, name string) error {
	return s.client.delete(ctx, fmt.Sprintf("/os-keypairs/%s", name))
}
