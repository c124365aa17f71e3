// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"time"
)

// Token represents a scoped token issued by the identity service.
//
// A token is immutable. Re-authenticating replaces the token of a session as
// a whole, together with the service catalog which was issued with it.
type Token struct {
	// Value is the token value, which is sent in the X-Auth-Token header
	// of API requests.
	Value string

	// ExpiresAt is the time at which the token stops being valid.
	ExpiresAt time.Time

	// Catalog is the service catalog issued together with the token.
	Catalog ServiceCatalog
}

// Valid reports whether the token can still be used at the given time.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.Value != "" && now.Before(t.ExpiresAt)
}
