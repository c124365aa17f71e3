// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"net/url"
	"slices"

	"github.com/gardener/novactl/pkg/apierrors"
	"github.com/gardener/novactl/pkg/core/registry"
	"github.com/gardener/novactl/pkg/pagination"
)

// ResourceType identifies a resource collection exposed by the compute
// service.
type ResourceType string

const (
	// ResourceServers is the collection of servers.
	ResourceServers ResourceType = "servers"

	// ResourceFlavors is the collection of flavors.
	ResourceFlavors ResourceType = "flavors"

	// ResourceKeyPairs is the collection of SSH keypairs.
	ResourceKeyPairs ResourceType = "keypairs"

	// ResourceImages is the collection of images known to the compute
	// service.
	ResourceImages ResourceType = "images"

	// ResourceNetworks is the collection of networks managed by the
	// compute service.
	ResourceNetworks ResourceType = "networks"
)

// Descriptor describes how a resource collection is accessed.
type Descriptor struct {
	// Path is the collection path relative to the service endpoint.
	Path string

	// CollectionKey is the key under which list responses nest the items.
	CollectionKey string

	// ItemKey is the key under which single-item responses nest the item.
	ItemKey string

	// HasDetail specifies whether the collection supports the detailed
	// list variant.
	HasDetail bool

	// WrapsItems specifies that each element of a list response is
	// additionally nested under [Descriptor.ItemKey].
	WrapsItems bool
}

// descriptors contains the resource types known to the client.
var descriptors = registry.New[ResourceType, Descriptor]()

func init() {
	descriptors.MustRegister(ResourceServers, Descriptor{
		Path:          "/servers",
		CollectionKey: "servers",
		ItemKey:       "server",
		HasDetail:     true,
	})
	descriptors.MustRegister(ResourceFlavors, Descriptor{
		Path:          "/flavors",
		CollectionKey: "flavors",
		ItemKey:       "flavor",
		HasDetail:     true,
	})
	descriptors.MustRegister(ResourceKeyPairs, Descriptor{
		Path:          "/os-keypairs",
		CollectionKey: "keypairs",
		ItemKey:       "keypair",
		WrapsItems:    true,
	})
	descriptors.MustRegister(ResourceImages, Descriptor{
		Path:          "/images",
		CollectionKey: "images",
		ItemKey:       "image",
		HasDetail:     true,
	})
	descriptors.MustRegister(ResourceNetworks, Descriptor{
		Path:          "/os-networks",
		CollectionKey: "networks",
		ItemKey:       "network",
	})
}

// DescriptorFor returns the [Descriptor] for the given resource type. An
// unknown resource type is reported as
// [apierrors.ErrResourceNotSupported].
func DescriptorFor(resource ResourceType) (Descriptor, error) {
	desc, ok := descriptors.Get(resource)
	if !ok {
		return Descriptor{}, apierrors.ResourceNotSupported(string(resource))
	}

	return desc, nil
}

// SupportedResources returns the resource types known to the client, sorted
// by name.
func SupportedResources() []ResourceType {
	keys := descriptors.Keys()
	slices.Sort(keys)

	return keys
}

// ListOpts represents the options for listing a resource collection.
type ListOpts struct {
	// Detailed requests the detailed list variant, when the resource
	// supports one.
	Detailed bool

	// Query is an optional set of query parameters to send with the
	// request.
	Query url.Values
}

// List returns a pager over the collection of the given resource type.
// Unknown resource types fail with [apierrors.ErrResourceNotSupported]
// before any request is made.
func (c *Client) List(ctx context.Context, resource ResourceType, opts ListOpts) (*pagination.Pager, error) {
	desc, err := DescriptorFor(resource)
	if err != nil {
		return nil, err
	}

	path := desc.Path
	if opts.Detailed && desc.HasDetail {
		path += "/detail"
	}

	requestURL, err := c.buildURL(ctx, path, opts.Query)
	if err != nil {
		return nil, err
	}

	return pagination.NewPager(requestURL, desc.CollectionKey, c.fetchPage), nil
}
