package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoConfigVersion error is returned when the configuration does not specify
// config format version.
var ErrNoConfigVersion = errors.New("config format version not specified")

// ErrUnsupportedVersion is an error, which is returned when the config file
// uses an incompatible version format.
var ErrUnsupportedVersion = errors.New("unsupported config format version")

// ErrCloudNotFound is an error, which is returned when the configuration does
// not contain an entry for a named cloud.
var ErrCloudNotFound = errors.New("cloud not found in config")

// ConfigFormatVersion represents the supported config format version.
const ConfigFormatVersion = "v1alpha1"

// Config represents the novactl configuration.
type Config struct {
	// Version is the version of the config file.
	Version string `yaml:"version"`

	// Logging represents the logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Clouds contains the known clouds, keyed by name.
	Clouds map[string]CloudConfig `yaml:"clouds"`
}

// LoggingConfig provides logging specific configuration settings.
type LoggingConfig struct {
	// Level specifies the log level to use, e.g. info, warn, error or
	// debug.
	Level string `yaml:"level"`

	// Format specifies the log format, e.g. text or json.
	Format string `yaml:"format"`

	// AddSource specifies whether log events will contain the source code
	// position of the log statement.
	AddSource bool `yaml:"add_source"`

	// Attributes specifies an optional set of attributes, which will be
	// added to each log event.
	Attributes map[string]string `yaml:"attributes"`
}

// CloudConfig provides configuration settings for a single named cloud.
type CloudConfig struct {
	// Auth represents the credentials for the cloud.
	Auth AuthConfig `yaml:"auth"`

	// RegionName specifies the region to use when selecting service
	// endpoints from the catalog.
	RegionName string `yaml:"region_name"`

	// ComputeAPIVersion specifies the compute API version to request,
	// e.g. 2.1 or 2.latest.
	ComputeAPIVersion string `yaml:"compute_api_version"`
}

// AuthConfig provides the credentials for authenticating against the
// identity service of a cloud.
type AuthConfig struct {
	// AuthURL is the endpoint of the identity service.
	AuthURL string `yaml:"auth_url"`

	// Username is the name of the user to authenticate as.
	Username string `yaml:"username"`

	// Password is the password of the user.
	Password string `yaml:"password"`

	// ProjectName is the name of the project to scope the token to.
	ProjectName string `yaml:"project_name"`

	// TenantName is a legacy alias for ProjectName. It is consulted only
	// when ProjectName is empty.
	TenantName string `yaml:"tenant_name"`
}

// Project returns the project name for the cloud, taking the legacy tenant
// name alias into account.
func (c AuthConfig) Project() string {
	if c.ProjectName != "" {
		return c.ProjectName
	}

	return c.TenantName
}

// Cloud returns the configuration of the cloud with the given name.
func (c *Config) Cloud(name string) (CloudConfig, error) {
	cloud, ok := c.Clouds[name]
	if !ok {
		return CloudConfig{}, fmt.Errorf("%w: %s", ErrCloudNotFound, name)
	}

	return cloud, nil
}

// Parse parses the config from the given path.
func Parse(path string) (*Config, error) {
	var conf Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}

	if conf.Version == "" {
		return nil, ErrNoConfigVersion
	}

	if conf.Version != ConfigFormatVersion {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, conf.Version)
	}

	return &conf, nil
}

// MustParse parses the config from the given path, or panics in case of errors.
func MustParse(path string) *Config {
	config, err := Parse(path)
	if err != nil {
		panic(err)
	}

	return config
}
