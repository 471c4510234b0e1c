/*
config.go - Server configuration

PURPOSE:
  Loads the YAML configuration file and applies defaults. Flags in main.go
  override individual fields, so a config file is optional for local runs.

FILE FORMAT (config.yaml):

  port: 8080
  store:
    driver: sqlite          # sqlite | mongo
    sqlitePath: kpi.db
    mongoUri: mongodb://localhost:27017
    mongoDatabase: kpi
  uploadEndpoint: https://files.example.com/upload
  allowedOrigins:
    - http://localhost:5173
  sessionTtlMinutes: 720
  digest:
    enabled: true
    intervalMinutes: 60

SEE ALSO:
  - main.go: Flag overrides and startup
*/
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlitePath"`
	MongoURI      string `yaml:"mongoUri"`
	MongoDatabase string `yaml:"mongoDatabase"`
}

type DigestConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"intervalMinutes"`
}

type Config struct {
	Port              int          `yaml:"port"`
	Store             StoreConfig  `yaml:"store"`
	UploadEndpoint    string       `yaml:"uploadEndpoint"`
	AllowedOrigins    []string     `yaml:"allowedOrigins"`
	SessionTTLMinutes int          `yaml:"sessionTtlMinutes"`
	Digest            DigestConfig `yaml:"digest"`
}

func defaultConfig() Config {
	return Config{
		Port: 8080,
		Store: StoreConfig{
			Driver:        "sqlite",
			SQLitePath:    "kpi.db",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "kpi",
		},
		AllowedOrigins:    []string{"http://localhost:5173", "http://localhost:8080"},
		SessionTTLMinutes: 12 * 60,
		Digest:            DigestConfig{Enabled: true, IntervalMinutes: 60},
	}
}

// loadConfig reads the YAML file at path on top of the defaults. A missing
// file is fine when no path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	switch cfg.Store.Driver {
	case "sqlite", "mongo":
	default:
		return cfg, fmt.Errorf("config %s: unknown store driver %q", path, cfg.Store.Driver)
	}
	return cfg, nil
}
