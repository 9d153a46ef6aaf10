package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	spfviper "github.com/spf13/viper"

	"github.com/tasklist/taskboard/internal/msg"
	"github.com/tasklist/taskboard/internal/version"
	"github.com/tasklist/taskboard/internal/viper"
)

// Config keys, as used in config files. Environment variables use the TASKBOARD_ prefix.
const (
	KeyBackendURL  = "backendUrl"
	KeyVersion     = "version"
	KeyEnvironment = "environment"
)

// DefaultEnvironment is used when no environment has been configured.
const DefaultEnvironment = "development"

// Source describes where a configuration value came from.
type Source string

// Possible sources, from highest to lowest precedence.
const (
	SourceRuntime Source = "runtime"
	SourceBuild   Source = "build"
	SourceDefault Source = "default"
)

// AppConfig is the resolved client configuration.
type AppConfig struct {
	BackendURL  string `yaml:"backendUrl" json:"backendUrl"`
	Version     string `yaml:"version" json:"version"`
	Environment string `yaml:"environment" json:"environment"`

	// VersionSource records which link of the fallback chain supplied Version.
	VersionSource Source `yaml:"-" json:"-"`
}

// Load resolves the client configuration using the default viper instance.
// See LoadFrom.
func Load(path string) (AppConfig, error) {
	return LoadFrom(viper.Default, path)
}

// LoadFrom resolves the client configuration from v.
//
// The lookup order for each value is:
//  1. Runtime configuration, i.e. the config file at path or TASKBOARD_* environment variables
//  2. Build-time value (see version.Version)
//  3. Default value
//
// Empty values are treated as unset. An empty path skips the config file.
func LoadFrom(v *spfviper.Viper, path string) (AppConfig, error) {
	if err := bindEnv(v); err != nil {
		return AppConfig{}, err
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return AppConfig{}, fmt.Errorf(msg.ConfigNotFound, path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c := AppConfig{
		BackendURL:  strings.TrimSpace(v.GetString(KeyBackendURL)),
		Environment: firstOf(v.GetString(KeyEnvironment), DefaultEnvironment),
	}

	switch {
	case strings.TrimSpace(v.GetString(KeyVersion)) != "":
		c.Version = strings.TrimSpace(v.GetString(KeyVersion))
		c.VersionSource = SourceRuntime
	case version.Version != "" && !version.IsSentinel(version.Version):
		c.Version = version.Version
		c.VersionSource = SourceBuild
	default:
		c.Version = version.Sentinel
		c.VersionSource = SourceDefault
	}

	return c, nil
}

func bindEnv(v *spfviper.Viper) error {
	return errors.Join(
		v.BindEnv(KeyBackendURL, viper.EnvPrefix+"_BACKEND_URL"),
		v.BindEnv(KeyVersion, viper.EnvPrefix+"_VERSION"),
		v.BindEnv(KeyEnvironment, viper.EnvPrefix+"_ENVIRONMENT"),
	)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Server config keys.
const (
	KeyAddr        = "addr"
	KeyDBPath      = "db"
	KeyVersionFile = "versionFile"
)

// Server defaults.
const (
	DefaultAddr   = ":8080"
	DefaultDBPath = "~/.taskboard/tasks.db"
)

// ServeConfig is the resolved configuration of the backend server.
type ServeConfig struct {
	AppConfig `yaml:",inline"`

	Addr   string `yaml:"addr" json:"-"`
	DBPath string `yaml:"db" json:"-"`
	// VersionFile, if set, is re-read on every request, so that a deployment can replace it
	// without restarting the server. Otherwise the configured Version is published.
	VersionFile string `yaml:"versionFile" json:"-"`
}

// LoadServeFrom resolves the server configuration from v. Values follow the same rules as LoadFrom.
func LoadServeFrom(v *spfviper.Viper, path string) (ServeConfig, error) {
	app, err := LoadFrom(v, path)
	if err != nil {
		return ServeConfig{}, err
	}
	if err := v.BindEnv(KeyVersionFile, viper.EnvPrefix+"_VERSION_FILE"); err != nil {
		return ServeConfig{}, err
	}

	return ServeConfig{
		AppConfig:   app,
		Addr:        firstOf(v.GetString(KeyAddr), DefaultAddr),
		DBPath:      firstOf(v.GetString(KeyDBPath), DefaultDBPath),
		VersionFile: strings.TrimSpace(v.GetString(KeyVersionFile)),
	}, nil
}

// Validate checks that all required values are present.
func (c AppConfig) Validate() error {
	var missing []string
	if c.BackendURL == "" {
		missing = append(missing, KeyBackendURL)
	}

	if len(missing) > 0 {
		return fmt.Errorf(msg.MissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// IsDevBuild returns true if update detection is disabled for this configuration.
func (c AppConfig) IsDevBuild() bool {
	return version.IsSentinel(c.Version)
}

var sensitivePatterns = []string{"key", "secret", "token", "password", "dsn"}

// Masked returns the configuration as a flat map, with sensitive values replaced by "***".
func (c AppConfig) Masked() map[string]string {
	m := map[string]string{
		KeyBackendURL:  c.BackendURL,
		KeyVersion:     c.Version,
		KeyEnvironment: c.Environment,
	}
	for k, v := range m {
		if !isSensitive(k) {
			continue
		}
		if v != "" {
			m[k] = "***"
		}
	}
	return m
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, p := range sensitivePatterns {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

// Log writes the configuration to the debug log.
func (c AppConfig) Log() {
	m := c.Masked()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ev := log.Debug().Str("versionSource", string(c.VersionSource))
	for _, k := range keys {
		ev = ev.Str(k, m[k])
	}
	ev.Msg("Runtime configuration")
}
