// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package apiversions_test

import (
	"errors"
	"testing"

	"github.com/gardener/novactl/pkg/apiversions"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		desc    string
		input   string
		wanted  string
		wantErr bool
	}{
		{
			desc:   "plain microversion",
			input:  "2.1",
			wanted: "2.1",
		},
		{
			desc:   "zero minor",
			input:  "2.0",
			wanted: "2.0",
		},
		{
			desc:   "latest minor",
			input:  "2.latest",
			wanted: "2.latest",
		},
		{
			desc:   "multi digit",
			input:  "10.27",
			wanted: "10.27",
		},
		{
			desc:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			desc:    "major only",
			input:   "2",
			wantErr: true,
		},
		{
			desc:    "trailing dot",
			input:   "2.",
			wantErr: true,
		},
		{
			desc:    "leading zero minor",
			input:   "2.01",
			wantErr: true,
		},
		{
			desc:    "zero major",
			input:   "0.1",
			wantErr: true,
		},
		{
			desc:    "three components",
			input:   "2.1.5",
			wantErr: true,
		},
		{
			desc:    "not a version",
			input:   "latest",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			v, err := apiversions.Parse(tc.input)
			if tc.wantErr {
				if !errors.Is(err, apiversions.ErrInvalidVersion) {
					t.Fatalf("got %v wanted %v", err, apiversions.ErrInvalidVersion)
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tc.input, err)
			}
			if v.String() != tc.wanted {
				t.Fatalf("got %s wanted %s", v, tc.wanted)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	testCases := []struct {
		desc   string
		a      string
		b      string
		wanted int
	}{
		{
			desc:   "equal",
			a:      "2.12",
			b:      "2.12",
			wanted: 0,
		},
		{
			desc:   "minor less",
			a:      "2.1",
			b:      "2.12",
			wanted: -1,
		},
		{
			desc:   "minor greater",
			a:      "2.20",
			b:      "2.3",
			wanted: 1,
		},
		{
			desc:   "major wins over minor",
			a:      "2.90",
			b:      "3.0",
			wanted: -1,
		},
		{
			desc:   "latest beats any concrete minor",
			a:      "2.latest",
			b:      "2.87",
			wanted: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			a := apiversions.MustParse(tc.a)
			b := apiversions.MustParse(tc.b)
			if got := a.Compare(b); got != tc.wanted {
				t.Fatalf("got %d wanted %d", got, tc.wanted)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	testCases := []struct {
		desc   string
		v      string
		min    apiversions.APIVersion
		max    apiversions.APIVersion
		wanted bool
	}{
		{
			desc:   "inside range",
			v:      "2.10",
			min:    apiversions.MustParse("2.1"),
			max:    apiversions.MustParse("2.87"),
			wanted: true,
		},
		{
			desc:   "below range",
			v:      "2.0",
			min:    apiversions.MustParse("2.1"),
			max:    apiversions.MustParse("2.87"),
			wanted: false,
		},
		{
			desc:   "above range",
			v:      "2.88",
			min:    apiversions.MustParse("2.1"),
			max:    apiversions.MustParse("2.87"),
			wanted: false,
		},
		{
			desc:   "null min does not constrain",
			v:      "2.0",
			max:    apiversions.MustParse("2.87"),
			wanted: true,
		},
		{
			desc:   "null max does not constrain",
			v:      "2.latest",
			min:    apiversions.MustParse("2.1"),
			wanted: true,
		},
		{
			desc:   "null range matches everything",
			v:      "7.77",
			wanted: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			v := apiversions.MustParse(tc.v)
			if got := v.Matches(tc.min, tc.max); got != tc.wanted {
				t.Fatalf("got %v wanted %v", got, tc.wanted)
			}
		})
	}
}

func TestHeaderValue(t *testing.T) {
	testCases := []struct {
		desc   string
		v      apiversions.APIVersion
		wanted string
	}{
		{
			desc:   "null version sends no header",
			v:      apiversions.APIVersion{},
			wanted: "",
		},
		{
			desc:   "zero minor sends no header",
			v:      apiversions.MustParse("2.0"),
			wanted: "",
		},
		{
			desc:   "microversion is sent as-is",
			v:      apiversions.MustParse("2.53"),
			wanted: "2.53",
		},
		{
			desc:   "latest resolves to the max supported",
			v:      apiversions.MustParse("2.latest"),
			wanted: apiversions.MaxVersion.String(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := tc.v.HeaderValue(); got != tc.wanted {
				t.Fatalf("got %q wanted %q", got, tc.wanted)
			}
		})
	}
}

func TestParseSupported(t *testing.T) {
	testCases := []struct {
		desc    string
		input   string
		wantErr error
	}{
		{
			desc:  "min supported",
			input: "2.1",
		},
		{
			desc:  "max supported",
			input: "2.87",
		},
		{
			desc:  "legacy zero minor",
			input: "2.0",
		},
		{
			desc:  "latest",
			input: "2.latest",
		},
		{
			desc:    "newer than the client",
			input:   "2.88",
			wantErr: apiversions.ErrUnsupportedVersion,
		},
		{
			desc:    "wrong major",
			input:   "3.0",
			wantErr: apiversions.ErrUnsupportedVersion,
		},
		{
			desc:    "garbage",
			input:   "two.one",
			wantErr: apiversions.ErrInvalidVersion,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := apiversions.ParseSupported(tc.input)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("failed to parse %q: %v", tc.input, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v wanted %v", err, tc.wantErr)
			}
		})
	}
}
