// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads credmaster settings from defaults, config files,
// environment variables and command-line flags using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	// Workspace is the active engagement scope; created on first use.
	Workspace string `mapstructure:"workspace" yaml:"workspace"`
	Language  string `mapstructure:"language" yaml:"language"`
	Log       struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
	RHosts struct {
		// File receives the matched hosts, one per line, when non-empty.
		File      string `mapstructure:"file" yaml:"file"`
		Clipboard bool   `mapstructure:"clipboard" yaml:"clipboard"`
	} `mapstructure:"rhosts" yaml:"rhosts"`
}

// Defaults returns the built-in default settings keyed by viper path.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":    "sqlite",
		"database.dsn":     "./credmaster.db",
		"workspace":        "default",
		"language":         "en",
		"log.level":        "info",
		"rhosts.file":      "",
		"rhosts.clipboard": false,
	}
}

// DefaultsOf builds a T from defaults alone. Files, environment and flags
// are not consulted, so the result is safe to persist.
func DefaultsOf[T any](defaults map[string]any) (T, error) {
	var c T
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	err := v.Unmarshal(&c)
	return c, err
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Credmaster")
		default:
			configDir = "/etc/credmaster"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "credmaster")
	}

	return filepath.Join(configDir, "credmaster.yaml"), nil
}

// LoadConfig builds a T from defaults, the first credmaster.yaml found on
// the search path (or configFile when given), CREDMASTER_* environment
// variables and the flags of cmd, in increasing order of precedence.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("credmaster")
	v.SetConfigType("yaml")
	if configFile != nil {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.SetEnvPrefix("credmaster")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		// Persistent flags are bound too: commands that parse their own
		// arguments never merge them into Flags().
		if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
			return c, err
		}
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// WriteConfigFile persists c to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the DSN may carry database credentials.
	return os.WriteFile(path, data, 0600)
}
