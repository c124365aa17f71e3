// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gardener/novactl/pkg/pagination"
)

// RebootSoft requests a graceful reboot by signaling the guest operating
// system.
const RebootSoft = "SOFT"

// RebootHard requests a power cycle of the server.
const RebootHard = "HARD"

// ResourceRef is a reference to another resource by id.
type ResourceRef struct {
	ID string `json:"id"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface. The compute
// service returns either an object with an id, or an empty string when
// there is no reference, e.g. for servers booted from a volume.
func (r *ResourceRef) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`""`)) {
		*r = ResourceRef{}
		return nil
	}

	type ref ResourceRef
	var decoded ref
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = ResourceRef(decoded)

	return nil
}

// Address represents a single network address of a server.
type Address struct {
	Version int    `json:"version"`
	Addr    string `json:"addr"`
}

// Server represents a server instance managed by the compute service.
type Server struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Status    string               `json:"status"`
	Created   time.Time            `json:"created"`
	Updated   time.Time            `json:"updated"`
	TenantID  string               `json:"tenant_id"`
	UserID    string               `json:"user_id"`
	HostID    string               `json:"hostId"`
	Progress  int                  `json:"progress"`
	KeyName   string               `json:"key_name"`
	Flavor    ResourceRef          `json:"flavor"`
	Image     ResourceRef          `json:"image"`
	Addresses map[string][]Address `json:"addresses"`
	Metadata  map[string]string    `json:"metadata"`

	// AdminPass is the generated administrator password. It is set only
	// in the response to a create request.
	AdminPass string `json:"adminPass"`
}

// ServersService provides access to the servers of the compute service.
type ServersService struct {
	client *Client
}

// Servers returns the service for managing servers.
func (c *Client) Servers() *ServersService {
	return &ServersService{client: c}
}

// ServerListOpts represents the options for listing servers.
type ServerListOpts struct {
	// Name filters servers by name.
	Name string

	// Status filters servers by status.
	Status string

	// AllTenants lists the servers of all projects. Requires admin
	// privileges.
	AllTenants bool

	// Minimal requests the brief listing without details.
	Minimal bool

	// Limit caps the number of items per page.
	Limit int

	// Marker is the id of the last item of the previous page.
	Marker string
}

func (o ServerListOpts) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.AllTenants {
		q.Set("all_tenants", "1")
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Marker != "" {
		q.Set("marker", o.Marker)
	}

	return q
}

// List returns a pager over the servers matching the given options.
func (s *ServersService) List(ctx context.Context, opts ServerListOpts) (*pagination.Pager, error) {
	return s.client.List(ctx, ResourceServers, ListOpts{Detailed: !opts.Minimal, Query: opts.query()})
}

// ExtractServers extracts the servers from a collection page.
func ExtractServers(page pagination.Page) ([]Server, error) {
	var servers []Server
	if err := page.ExtractInto(&servers); err != nil {
		return nil, err
	}

	return servers, nil
}

// Get returns the server with the given id.
func (s *ServersService) Get(ctx context.Context, id string) (*Server, error) {
	var server Server
	path := fmt.Sprintf("/servers/%s", id)
	if err := s.client.get(ctx, path, "server", &server); err != nil {
		return nil, err
	}

	return &server, nil
}

// ServerCreateOpts represents the options for creating a server.
type ServerCreateOpts struct {
	// Name is the name of the server.
	Name string

	// ImageRef is the id of the image to boot from.
	ImageRef string

	// FlavorRef is the id of the flavor to boot with.
	FlavorRef string

	// KeyName is the name of the keypair to inject.
	KeyName string

	// Metadata is an optional set of metadata key/value pairs.
	Metadata map[string]string

	// AvailabilityZone is the availability zone to boot in.
	AvailabilityZone string

	// UserData is an optional configuration blob handed to the guest on
	// boot.
	UserData []byte

	// MinCount is the minimum number of servers to boot.
	MinCount int

	// MaxCount is the maximum number of servers to boot.
	MaxCount int
}

type serverCreateRequest struct {
	Server serverCreateBody `json:"server"`
}

type serverCreateBody struct {
	Name             string            `json:"name"`
	ImageRef         string            `json:"imageRef"`
	FlavorRef        string            `json:"flavorRef"`
	KeyName          string            `json:"key_name,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	AvailabilityZone string            `json:"availability_zone,omitempty"`
	UserData         string            `json:"user_data,omitempty"`
	MinCount         int               `json:"min_count,omitempty"`
	MaxCount         int               `json:"max_count,omitempty"`
}

// Create boots a new server with the given options. The returned server
// carries the generated administrator password.
func (s *ServersService) Create(ctx context.Context, opts ServerCreateOpts) (*Server, error) {
	payload := serverCreateRequest{
		Server: serverCreateBody{
			Name:             opts.Name,
			ImageRef:         opts.ImageRef,
			FlavorRef:        opts.FlavorRef,
			KeyName:          opts.KeyName,
			Metadata:         opts.Metadata,
			AvailabilityZone: opts.AvailabilityZone,
			MinCount:         opts.MinCount,
			MaxCount:         opts.MaxCount,
		},
	}
	if len(opts.UserData) > 0 {
		payload.Server.UserData = base64.StdEncoding.EncodeToString(opts.UserData)
	}

	var server Server
	if err := s.client.post(ctx, "/servers", payload, "server", &server); err != nil {
		return nil, err
	}

	return &server, nil
}

// Delete removes the server with the given id.
func (s *ServersService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, fmt.Sprintf("/servers/%s", id))
}

// action posts the given action payload to the action endpoint of a server.
func (s *ServersService) action(ctx context.Context, id string, payload any) error {
	path := fmt.Sprintf("/servers/%s/action", id)

	return s.client.post(ctx, path, payload, "", nil)
}

// Start starts a stopped server.
func (s *ServersService) Start(ctx context.Context, id string) error {
	return s.action(ctx, id, map[string]any{"os-start": nil})
}

// Stop stops a running server.
func (s *ServersService) Stop(ctx context.Context, id string) error {
	return s.action(ctx, id, map[string]any{"os-stop": nil})
}

// Reboot reboots a server. The reboot type is one of [RebootSoft] or
// [RebootHard].
func (s *ServersService) Reboot(ctx context.Context, id string, rebootType string) error {
	payload := map[string]any{
		"reboot": map[string]string{"type": rebootType},
	}

	return s.action(ctx, id, payload)
}
