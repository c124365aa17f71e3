// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package apiversions

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Header is the name of the request header which carries the negotiated
// compute microversion.
const Header = "X-OpenStack-Nova-API-Version"

// latestMinor marks a version which requests the newest microversion
// supported by the client. It compares greater than any concrete minor.
const latestMinor = math.MaxInt32

var (
	// MinVersion is the oldest compute microversion the client understands.
	MinVersion = APIVersion{Major: 2, Minor: 1}

	// MaxVersion is the newest compute microversion the client understands.
	// A "2.latest" request resolves to this version.
	MaxVersion = APIVersion{Major: 2, Minor: 87}

	// DefaultVersion is the version used when none was requested explicitly
	// or via the environment.
	DefaultVersion = APIVersion{Major: 2, Minor: 1}
)

// ErrInvalidVersion is an error which is returned when an API version string
// is not of the form X.Y or X.latest.
var ErrInvalidVersion = errors.New("invalid API version")

// ErrUnsupportedVersion is an error which is returned when a well-formed API
// version is outside of the range supported by the client.
var ErrUnsupportedVersion = errors.New("unsupported API version")

var versionRegexp = regexp.MustCompile(`^([1-9]\d*)\.([1-9]\d*|0|latest)$`)

// APIVersion represents a compute API version of the form major.minor, where
// the minor part may request the latest known microversion.
type APIVersion struct {
	Major int
	Minor int
}

// Parse parses a version string of the form X.Y or X.latest.
func Parse(s string) (APIVersion, error) {
	match := versionRegexp.FindStringSubmatch(s)
	if match == nil {
		return APIVersion{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	major, err := strconv.Atoi(match[1])
	if err != nil {
		return APIVersion{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	v := APIVersion{Major: major, Minor: latestMinor}
	if match[2] != "latest" {
		minor, err := strconv.Atoi(match[2])
		if err != nil {
			return APIVersion{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		v.Minor = minor
	}

	return v, nil
}

// MustParse parses the given version string, or panics.
func MustParse(s string) APIVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// IsNull reports whether v is the zero version, which means that no version
// was requested at all.
func (v APIVersion) IsNull() bool {
	return v.Major == 0 && v.Minor == 0
}

// IsLatest reports whether v requests the latest supported microversion.
func (v APIVersion) IsLatest() bool {
	return v.Minor == latestMinor
}

// String implements fmt.Stringer.
func (v APIVersion) String() string {
	switch {
	case v.IsNull():
		return ""
	case v.IsLatest():
		return fmt.Sprintf("%d.latest", v.Major)
	default:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
}

// Compare compares v against other and returns -1, 0 or 1 when v is less
// than, equal to, or greater than other.
func (v APIVersion) Compare(other APIVersion) int {
	switch {
	case v.Major != other.Major:
		if v.Major < other.Major {
			return -1
		}
		return 1
	case v.Minor != other.Minor:
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Matches reports whether v falls within the inclusive range [min, max].
// A null boundary does not constrain that side of the range.
func (v APIVersion) Matches(min APIVersion, max APIVersion) bool {
	switch {
	case min.IsNull() && max.IsNull():
		return true
	case min.IsNull():
		return v.Compare(max) <= 0
	case max.IsNull():
		return v.Compare(min) >= 0
	default:
		return v.Compare(min) >= 0 && v.Compare(max) <= 0
	}
}

// Resolve returns the concrete version for v, mapping a latest request onto
// [MaxVersion].
func (v APIVersion) Resolve() APIVersion {
	if v.IsLatest() {
		return APIVersion{Major: v.Major, Minor: MaxVersion.Minor}
	}

	return v
}

// HeaderValue returns the value for the [Header] request header. The header
// is only sent for microversioned requests, so the empty string is returned
// for the null version, as well as for a zero minor version.
func (v APIVersion) HeaderValue() string {
	if v.IsNull() || v.Minor == 0 {
		return ""
	}

	return v.Resolve().String()
}

// Supported reports whether the client is able to speak the given version.
func Supported(v APIVersion) bool {
	if v.IsNull() || v.Major != MaxVersion.Major {
		return false
	}
	if v.IsLatest() {
		return true
	}

	return v.Minor <= MaxVersion.Minor
}

// ParseSupported parses the given version string and validates it against
// the range supported by the client.
func ParseSupported(s string) (APIVersion, error) {
	v, err := Parse(s)
	if err != nil {
		return APIVersion{}, err
	}
	if !Supported(v) {
		return APIVersion{}, fmt.Errorf("%w: %s is not in range [%s, %s]", ErrUnsupportedVersion, v, MinVersion, MaxVersion)
	}

	return v, nil
}
