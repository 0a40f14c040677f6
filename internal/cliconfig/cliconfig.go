// Package cliconfig loads the CLI host's own preferences (log level,
// default repo path, color mode) from a TOML file plus WILLOW_-prefixed
// environment variables. This is the embedding CLI's preferences file, not
// the per-repository wire-format config.json the VCS layer owns; see
// internal/vcs.RepoConfig for that one.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config holds the resolved CLI preferences.
type Config struct {
	LogLevel    string `toml:"log-level"`
	DefaultRepo string `toml:"default-repo"`
	Color       bool   `toml:"color"`
}

func defaults() Config {
	return Config{LogLevel: "info", DefaultRepo: "", Color: true}
}

// Load resolves preferences from, in ascending precedence: built-in
// defaults, a config.toml found by walking up from cwd or in
// os.UserConfigDir()/willow, and WILLOW_-prefixed environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	d := defaults()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("default-repo", d.DefaultRepo)
	v.SetDefault("color", d.Color)

	v.SetEnvPrefix("WILLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path, ok := findConfigFile(); ok {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	return Config{
		LogLevel:    v.GetString("log-level"),
		DefaultRepo: v.GetString("default-repo"),
		Color:       v.GetBool("color"),
	}, nil
}

// findConfigFile walks up from the working directory looking for
// .willow/config.toml, then falls back to os.UserConfigDir()/willow.
func findConfigFile() (string, bool) {
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; ; {
			candidate := filepath.Join(dir, ".willow", "config.toml")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(configDir, "willow", "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Write persists cfg as TOML to path, creating parent directories as
// needed. No CLI command calls it; the package tests use it to lay down a
// config file.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
