// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package utils

// GroupBy groups the items of the given slice into a map, keyed by the value
// which keyFunc returns for each item.
func GroupBy[K comparable, V any](items []V, keyFunc func(item V) K) map[K][]V {
	result := make(map[K][]V)
	for _, item := range items {
		key := keyFunc(item)
		result[key] = append(result[key], item)
	}

	return result
}
