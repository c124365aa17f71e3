// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"
	"time"
)

// Timing represents a single timed API request.
type Timing struct {
	// Method is the HTTP method of the request.
	Method string

	// URL is the requested URL.
	URL string

	// Duration is how long the request took.
	Duration time.Duration
}

// TimingsRecorder collects per-request timings in the order in which the
// requests completed, so that they can be presented to the user after a run.
// A recorder is safe for concurrent use.
type TimingsRecorder struct {
	mu      sync.Mutex
	timings []Timing
}

// NewTimingsRecorder creates a new empty [TimingsRecorder].
func NewTimingsRecorder() *TimingsRecorder {
	r := &TimingsRecorder{
		timings: make([]Timing, 0),
	}

	return r
}

// Record adds the given timing to the recorder.
func (r *TimingsRecorder) Record(t Timing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timings = append(r.timings, t)
}

// Timings returns a copy of the recorded timings.
func (r *TimingsRecorder) Timings() []Timing {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Timing, len(r.timings))
	copy(out, r.timings)

	return out
}

// Reset discards all recorded timings.
func (r *TimingsRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timings = r.timings[:0]
}
