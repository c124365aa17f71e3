// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package pagination provides lazy iteration over paginated API collections.
package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrNoCollection is an error, which is returned when a page does not
// contain the expected collection key.
var ErrNoCollection = errors.New("collection key not found in page")

// Page represents a single fetched page of a collection.
type Page struct {
	// Body is the raw JSON body of the page.
	Body []byte

	// URL is the URL from which the page was fetched. Relative next
	// links are resolved against it.
	URL string

	// CollectionKey is the key under which the collection items are
	// nested in the body, e.g. "servers".
	CollectionKey string
}

// link represents a single entry of a collection links list.
type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// ExtractInto decodes the collection under the page's collection key into v.
func (p Page) ExtractInto(v any) error {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(p.Body, &body); err != nil {
		return err
	}

	raw, ok := body[p.CollectionKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoCollection, p.CollectionKey)
	}

	return json.Unmarshal(raw, v)
}

// NextPageURL returns the URL of the page following this one, or the empty
// string when this is the last page.
//
// Both pagination variants used by the compute services are understood: a
// "<key>_links" list with a rel=next entry next to the collection, and a
// top-level "next" value.
func (p Page) NextPageURL() (string, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(p.Body, &body); err != nil {
		return "", err
	}

	if raw, ok := body[p.CollectionKey+"_links"]; ok {
		var links []link
		if err := json.Unmarshal(raw, &links); err != nil {
			return "", err
		}
		for _, l := range links {
			if l.Rel == "next" {
				return p.resolve(l.Href)
			}
		}

		return "", nil
	}

	if raw, ok := body["next"]; ok {
		var next string
		if err := json.Unmarshal(raw, &next); err != nil {
			return "", err
		}
		if next != "" {
			return p.resolve(next)
		}
	}

	return "", nil
}

// resolve resolves the given href against the URL of the page.
func (p Page) resolve(href string) (string, error) {
	base, err := url.Parse(p.URL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}

	return base.ResolveReference(ref).String(), nil
}

// FetchFunc fetches the page at the given URL and returns the raw response
// body.
type FetchFunc func(ctx context.Context, pageURL string) ([]byte, error)

// EachPageFunc is a function which is called with each fetched page.
// Returning false stops the iteration early.
type EachPageFunc func(ctx context.Context, page Page) (bool, error)

// Pager drives the iteration over a paginated collection.
//
// A pager holds no fetched state itself, which makes it restartable: every
// call to [Pager.EachPage] starts a fresh request chain from the initial
// URL.
type Pager struct {
	initialURL    string
	collectionKey string
	fetch         FetchFunc
}

// NewPager creates a new [Pager] over the collection nested under the given
// key, starting at the given URL.
func NewPager(initialURL string, collectionKey string, fetch FetchFunc) *Pager {
	p := &Pager{
		initialURL:    initialURL,
		collectionKey: collectionKey,
		fetch:         fetch,
	}

	return p
}

// EachPage fetches one page at a time and calls fn with it, following the
// next links until there are none, fn returns false, or an error occurs.
// Pages are fetched on demand only and items keep the order in which the
// service returned them. On errors the iteration stops and already fetched
// pages are discarded.
func (p *Pager) EachPage(ctx context.Context, fn EachPageFunc) error {
	pageURL := p.initialURL
	for pageURL != "" {
		body, err := p.fetch(ctx, pageURL)
		if err != nil {
			return err
		}

		page := Page{
			Body:          body,
			URL:           pageURL,
			CollectionKey: p.collectionKey,
		}

		cont, err := fn(ctx, page)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}

		next, err := page.NextPageURL()
		if err != nil {
			return err
		}
		pageURL = next
	}

	return nil
}
