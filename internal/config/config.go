// Package config loads DataCore's connection settings.
//
// Settings come from a YAML file with environment overrides applied on top,
// so deployments can keep credentials out of the file entirely.
//
// Config file locations (priority order):
//  1. The path passed to Load
//  2. $DATACORE_CONFIG
//  3. ./datacore.yaml
//
// Environment overrides: DATACORE_DRIVER, DATACORE_DSN, DATACORE_SCHEMA,
// DATACORE_POOL_SIZE.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/qwikbyte/datacore"
)

// Environment variable names.
const (
	EnvConfigPath = "DATACORE_CONFIG"
	EnvDriver     = "DATACORE_DRIVER"
	EnvDSN        = "DATACORE_DSN"
	EnvSchema     = "DATACORE_SCHEMA"
	EnvPoolSize   = "DATACORE_POOL_SIZE"
)

// ConfigFileName is looked up in the working directory when no explicit
// path is given.
const ConfigFileName = "datacore.yaml"

// File is the on-disk layout.
type File struct {
	Database datacore.Config `yaml:"database"`
}

// Load reads the connection settings. A missing file is only an error when
// the path was given explicitly; otherwise the defaults apply. Environment
// overrides win over file values.
func Load(path string) (datacore.Config, error) {
	if path == "" {
		path = findPath()
	}

	var f File
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return datacore.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return datacore.Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := f.Database
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func findPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}
	if fileExists(ConfigFileName) {
		return ConfigFileName
	}
	return ""
}

func applyEnv(cfg *datacore.Config) {
	if v := os.Getenv(EnvDriver); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv(EnvSchema); v != "" {
		cfg.Schema = v
	}
	if v := os.Getenv(EnvPoolSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PoolSize = n
		}
	}
}

// applyDefaults fills in missing values with defaults.
func applyDefaults(cfg *datacore.Config) {
	if cfg.DSN == "" {
		cfg.DSN = "sqlite://datacore.db"
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
