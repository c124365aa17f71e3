// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package auth resolves credentials for authenticating against the identity
// service of an OpenStack-style cloud.
package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gardener/novactl/pkg/apierrors"
	"github.com/gardener/novactl/pkg/apiversions"
	"github.com/gardener/novactl/pkg/core/config"
	strutils "github.com/gardener/novactl/pkg/utils/strings"
)

// Names of the environment variables consulted during credential resolution.
const (
	EnvAuthURL           = "OS_AUTH_URL"
	EnvUsername          = "OS_USERNAME"
	EnvPassword          = "OS_PASSWORD"
	EnvTenantName        = "OS_TENANT_NAME"
	EnvProjectName       = "OS_PROJECT_NAME"
	EnvRegionName        = "OS_REGION_NAME"
	EnvComputeAPIVersion = "OS_COMPUTE_API_VERSION"
	EnvCloud             = "OS_CLOUD"
	EnvConfigFile        = "OS_CLIENT_CONFIG_FILE"
)

// Overrides represents explicitly provided credential fields, e.g. the values
// of command-line flags. An empty field means that the value was not provided
// and will be resolved from the environment, or from the clouds config file.
type Overrides struct {
	// IdentityEndpoint is the endpoint of the identity service.
	IdentityEndpoint string

	// Username is the name of the user to authenticate as.
	Username string

	// Password is the password of the user.
	Password string

	// ProjectName is the name of the project to scope the token to.
	ProjectName string

	// Region selects the region for which service endpoints will be
	// looked up in the service catalog.
	Region string

	// APIVersion is the requested compute API version, e.g. 2.1 or
	// 2.latest.
	APIVersion string

	// Cloud is the name of a cloud from the clouds config file.
	Cloud string

	// ConfigFile is the path to the clouds config file.
	ConfigFile string
}

// Options represents the resolved credentials. Once resolved the options are
// treated as immutable and consumers never consult the environment again.
type Options struct {
	// IdentityEndpoint is the endpoint of the identity service.
	IdentityEndpoint string

	// Username is the name of the user to authenticate as.
	Username string

	// Password is the password of the user.
	Password string

	// ProjectName is the name of the project to scope the token to.
	ProjectName string

	// Region selects the region for which service endpoints will be
	// looked up in the service catalog. An empty region selects the
	// first matching endpoint from the catalog.
	Region string

	// APIVersion is the compute API version to request.
	APIVersion apiversions.APIVersion
}

// Resolve merges the given explicit overrides with the environment and the
// optional clouds config file into ready-to-use credentials. The precedence
// per field is: explicit override first, then the environment, then the
// clouds config file.
//
// The identity endpoint, username, password and project name are required and
// [apierrors.ErrMissingCredential] is returned when any of them cannot be
// resolved from any source. The API version falls back to
// [apiversions.DefaultVersion].
func Resolve(o Overrides) (*Options, error) {
	var cloud config.CloudConfig
	cloudName := strutils.FirstNonEmpty(o.Cloud, os.Getenv(EnvCloud))
	if cloudName != "" {
		conf, err := loadConfig(o.ConfigFile)
		if err != nil {
			return nil, err
		}
		cloud, err = conf.Cloud(cloudName)
		if err != nil {
			return nil, err
		}
	}

	opts := &Options{
		IdentityEndpoint: strutils.FirstNonEmpty(o.IdentityEndpoint, os.Getenv(EnvAuthURL), cloud.Auth.AuthURL),
		Username:         strutils.FirstNonEmpty(o.Username, os.Getenv(EnvUsername), cloud.Auth.Username),
		Password:         strutils.FirstNonEmpty(o.Password, os.Getenv(EnvPassword), cloud.Auth.Password),
		ProjectName:      strutils.FirstNonEmpty(o.ProjectName, os.Getenv(EnvTenantName), os.Getenv(EnvProjectName), cloud.Auth.Project()),
		Region:           strutils.FirstNonEmpty(o.Region, os.Getenv(EnvRegionName), cloud.RegionName),
	}

	switch {
	case opts.Username == "":
		return nil, apierrors.MissingCredential("os-username", EnvUsername)
	case opts.Password == "":
		return nil, apierrors.MissingCredential("os-password", EnvPassword)
	case opts.ProjectName == "":
		return nil, apierrors.MissingCredential("os-tenant-name", EnvTenantName)
	case opts.IdentityEndpoint == "":
		return nil, apierrors.MissingCredential("os-auth-url", EnvAuthURL)
	}

	versionStr := strutils.FirstNonEmpty(o.APIVersion, os.Getenv(EnvComputeAPIVersion), cloud.ComputeAPIVersion)
	if versionStr == "" {
		opts.APIVersion = apiversions.DefaultVersion
		return opts, nil
	}

	v, err := apiversions.ParseSupported(versionStr)
	if err != nil {
		return nil, err
	}
	opts.APIVersion = v

	return opts, nil
}

// loadConfig loads the clouds config file from the given path. With an empty
// path the file is looked up at the well-known locations instead.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		return config.Parse(path)
	}

	for _, candidate := range configSearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return config.Parse(candidate)
		}
	}

	return nil, fmt.Errorf("no clouds config file found, set %s", EnvConfigFile)
}

// configSearchPaths returns the well-known clouds config file locations in
// lookup order.
func configSearchPaths() []string {
	paths := []string{"clouds.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "openstack", "clouds.yaml"))
	}
	paths = append(paths, filepath.Join("/etc", "openstack", "clouds.yaml"))

	return paths
}
