// Package cliconfig loads the configuration files of the fleet CLI.
//
// The files hold KEY=VALUE lines. They are read in order, system-wide first, then per user, then the
// file named by FLEET_CONFIG, and a key in a later file overrides the same key of an earlier one.
// Missing files are skipped. Command line flags override every file.
package cliconfig

import (
	"os"
	"strings"
	"time"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/options"
	"github.com/gruntwork-io/compose-fleet/pkg/env"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"
)

// Configuration keys.
const (
	KeyRoot           = "ROOT"
	KeyInactiveMarker = "INACTIVE_MARKER"
	KeyLogEnabled     = "LOG_ENABLED"
	KeyLogFile        = "LOG_FILE"
	KeyTimeout        = "TIMEOUT"
	KeyHooksEnabled   = "HOOKS_ENABLED"
	KeyHooksDir       = "HOOKS_DIR"
	KeyHooksExt       = "HOOKS_EXT"
	KeyComposeCommand = "COMPOSE_COMMAND"
	KeyDockerHost     = "DOCKER_HOST"
)

const (
	// EnvConfigPath names an additional configuration file read last.
	EnvConfigPath = "FLEET_CONFIG"

	// SystemConfigPath is the system-wide configuration file.
	SystemConfigPath = "/etc/compose-fleet/config"
	// UserConfigPath is the per-user configuration file.
	UserConfigPath = "~/.config/compose-fleet/config"
)

// Config is the merged content of the configuration files.
type Config struct {
	file *ini.File

	// Sources are the files that were found, in the order they were applied.
	Sources []string
}

// Paths returns the configuration files in the order they are applied.
func Paths() []string {
	paths := []string{SystemConfigPath}

	if userPath, err := homedir.Expand(UserConfigPath); err == nil {
		paths = append(paths, userPath)
	}

	if path, ok := env.LookupEnv(EnvConfigPath); ok {
		paths = append(paths, path)
	}

	return paths
}

// LoadConfig reads the given files, later ones overriding earlier ones. Missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	file := ini.Empty(ini.LoadOptions{Loose: true})
	cfg := &Config{file: file}

	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}

		if err != nil {
			return nil, errors.New(NewFileReadError(path, err))
		}

		if info.IsDir() {
			return nil, errors.New(NewFileReadError(path, errors.Errorf("is a directory")))
		}

		if err := file.Append(path); err != nil {
			return nil, errors.New(NewDecodeError(path, err))
		}

		cfg.Sources = append(cfg.Sources, path)
	}

	return cfg, nil
}

// Has reports whether any of the files sets the key.
func (cfg *Config) Has(key string) bool {
	return cfg.file.Section(ini.DefaultSection).HasKey(key)
}

// String returns the value of the key, or the fallback when unset.
func (cfg *Config) String(key, fallback string) string {
	if !cfg.Has(key) {
		return fallback
	}

	return strings.TrimSpace(cfg.file.Section(ini.DefaultSection).Key(key).String())
}

// Path returns the value of the key with a leading "~" expanded.
func (cfg *Config) Path(key, fallback string) (string, error) {
	path, err := homedir.Expand(cfg.String(key, fallback))
	if err != nil {
		return "", errors.New(NewInvalidValueError(key, cfg.String(key, fallback), err))
	}

	return path, nil
}

// Bool returns the value of the key as a boolean (true/false, yes/no, on/off, 1/0).
func (cfg *Config) Bool(key string, fallback bool) (bool, error) {
	if !cfg.Has(key) {
		return fallback, nil
	}

	val, err := cfg.file.Section(ini.DefaultSection).Key(key).Bool()
	if err != nil {
		return fallback, errors.New(NewInvalidValueError(key, cfg.String(key, ""), err))
	}

	return val, nil
}

// Seconds returns the value of the key as a whole number of seconds.
func (cfg *Config) Seconds(key string, fallback time.Duration) (time.Duration, error) {
	if !cfg.Has(key) {
		return fallback, nil
	}

	val, err := cfg.file.Section(ini.DefaultSection).Key(key).Uint()
	if err != nil {
		return fallback, errors.New(NewInvalidValueError(key, cfg.String(key, ""), err))
	}

	return time.Duration(val) * time.Second, nil
}

// IsSetFunc reports whether a command line flag was given, flags given explicitly win over the files.
type IsSetFunc func(flagName string) bool

// Apply copies the configured values into the options, skipping the settings whose flags are set.
func (cfg *Config) Apply(opts *options.FleetOptions, flagIsSet IsSetFunc) error {
	var err error

	if !flagIsSet(FlagRoot) {
		if opts.RootDir, err = cfg.Path(KeyRoot, opts.RootDir); err != nil {
			return err
		}
	}

	if !flagIsSet(FlagTimeout) {
		if opts.Timeout, err = cfg.Seconds(KeyTimeout, opts.Timeout); err != nil {
			return err
		}
	}

	if !flagIsSet(FlagNoLog) {
		enabled, err := cfg.Bool(KeyLogEnabled, !opts.LogDisabled)
		if err != nil {
			return err
		}

		opts.LogDisabled = !enabled
	}

	if !flagIsSet(FlagLogFile) {
		if opts.LogFile, err = cfg.Path(KeyLogFile, opts.LogFile); err != nil {
			return err
		}
	}

	if !flagIsSet(FlagNoHooks) {
		enabled, err := cfg.Bool(KeyHooksEnabled, !opts.HooksDisabled)
		if err != nil {
			return err
		}

		opts.HooksDisabled = !enabled
	}

	if !flagIsSet(FlagHooksDir) {
		if opts.HooksDir, err = cfg.Path(KeyHooksDir, opts.HooksDir); err != nil {
			return err
		}
	}

	if !flagIsSet(FlagComposeCommand) {
		opts.ComposeCommand = cfg.String(KeyComposeCommand, opts.ComposeCommand)
	}

	opts.InactiveMarker = cfg.String(KeyInactiveMarker, opts.InactiveMarker)
	opts.HooksExt = strings.TrimPrefix(cfg.String(KeyHooksExt, opts.HooksExt), ".")

	// the daemon address from the environment wins over the files
	if !env.IsSet(KeyDockerHost) {
		opts.DockerHost = cfg.String(KeyDockerHost, opts.DockerHost)
	}

	return nil
}

// Names of the flags overriding configuration keys.
const (
	FlagRoot           = "root"
	FlagTimeout        = "timeout"
	FlagNoLog          = "no-log"
	FlagLogFile        = "log-file"
	FlagNoHooks        = "no-hooks"
	FlagHooksDir       = "hooks-dir"
	FlagComposeCommand = "compose-command"
)
