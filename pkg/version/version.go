// SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package version

// Version is the current version of novactl. It is set during build time via
// the -ldflags option.
var Version = "v0.1.0-dev"
