// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gardener/novactl/pkg/pagination"
)

// Image represents a server image known to the compute service.
type Image struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Status   string            `json:"status"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Progress int               `json:"progress"`
	MinDisk  int               `json:"minDisk"`
	MinRAM   int               `json:"minRam"`
	Metadata map[string]string `json:"metadata"`
}

// ImagesService provides access to the images known to the compute service.
type ImagesService struct {
	client *Client
}

// Images returns the service for managing images.
func (c *Client) Images() *ImagesService {
	return &ImagesService{client: c}
}

// ImageListOpts represents the options for listing images.
type ImageListOpts struct {
	// Name filters images by name.
	Name string

	// Status filters images by status.
	Status string

	// Minimal requests the brief listing without details.
	Minimal bool

	// Limit caps the number of items per page.
	Limit int

	// Marker is the id of the last item of the previous page.
	Marker string
}

func (o ImageListOpts) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Marker != "" {
		q.Set("marker", o.Marker)
	}

	return q
}

// List returns a pager over the images matching the given options.
func (s *ImagesService) List(ctx context.Context, opts ImageListOpts) (*pagination.Pager, error) {
	return s.client.List(ctx, ResourceImages, ListOpts{Detailed: !opts.Minimal, Query: opts.query()})
}

// ExtractImages extracts the images from a collection page.
func ExtractImages(page pagination.Page) ([]Image, error) {
	var images []Image
	if err := page.ExtractInto(&images); err != nil {
		return nil, err
	}

	return images, nil
}

// Get returns the image with the given id.
func (s *ImagesService) Get(ctx context.Context, id string) (*Image, error) {
	var image Image
	path := fmt.Sprintf("/images/%s", id)
	if err := s.client.get(ctx, path, "image", &image); err != nil {
		return nil, err
	}

	return &image, nil
}

// Delete removes the image with the given id.
func (s *ImagesService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, fmt.Sprintf("/images/%s", id))
}
