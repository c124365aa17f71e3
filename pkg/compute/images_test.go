// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package compute_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gardener/novactl/pkg/compute"
)

func TestImagesList(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/compute/images/detail" {
			t.Errorf("got path %q wanted %q", r.URL.Path, "/compute/images/detail")
		}

		writeJSON(w, `{
			"images": [
				{"id": "img-1", "name": "debian-13", "status": "ACTIVE", "minDisk": 10, "minRam": 512},
				{"id": "img-2", "name": "ubuntu-24.04", "status": "ACTIVE", "minDisk": 20, "minRam": 1024}
			]
		}`)
	})

	client := tc.newClient(t)
	pager, err := client.Images().List(context.Background(), compute.ImageListOpts{})
	if err != nil {
		t.Fatalf("failed to list images: %v", err)
	}

	images := collectPages(t, pager, compute.ExtractImages)
	if len(images) != 2 {
		t.Fatalf("got %d images wanted 2", len(images))
	}
	if images[0].Name != "debian-13" {
		t.Fatalf("got image name %q wanted %q", images[0].Name, "debian-13")
	}
	if images[0].MinDisk != 10 {
		t.Fatalf("got min disk %d wanted 10", images[0].MinDisk)
	}
}

func TestImagesGet(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/compute/images/img-1" {
			t.Errorf("got path %q wanted %q", r.URL.Path, "/compute/images/img-1")
		}
		writeJSON(w, `{"image": {"id": "img-1", "name": "debian-13", "status": "ACTIVE", "metadata": {"os_distro": "debian"}}}`)
	})

	client := tc.newClient(t)
	image, err := client.Images().Get(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("failed to get image: %v", err)
	}
	if image.Name != "debian-13" {
		t.Fatalf("got image name %q wanted %q", image.Name, "debian-13")
	}
	if image.Metadata["os_distro"] != "debian" {
		t.Fatalf("got metadata %v wanted os_distro=debian", image.Metadata)
	}
}

func TestImagesDelete(t *testing.T) {
	tc := newTestCloud(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("got method %s wanted %s", r.Method, http.MethodDelete)
		}
		if r.URL.Path != "/compute/images/img-1" {
			t.Errorf("got path %q wanted %q", r.URL.Path, "/compute/images/img-1")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	client := tc.newClient(t)
	if err := client.Images().Delete(context.Background(), "img-1"); err != nil {
		t.Fatalf("failed to delete image: %v", err)
	}
}
