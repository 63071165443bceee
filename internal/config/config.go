// Package config resolves export settings from a yaml file and the
// environment. Nothing is baked into the binary: flags (applied by the CLI on
// top of the loaded config) beat environment variables, which beat the config
// file, which beats the defaults below.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the recognized export options.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Schema   string `yaml:"schema"`
	Output   string `yaml:"output"` // output file path, empty means stdout
}

// Default returns the standard local-server settings. The password is
// deliberately empty; it must come from a flag, the environment, or a file.
func Default() *Config {
	return &Config{
		Host:     "127.0.0.1",
		Port:     5432,
		Database: "postgres",
		User:     "postgres",
		Schema:   "public",
	}
}

// Load builds a Config from defaults, an optional yaml file, and DDLEXPORT_*
// environment variables. A .env file in the working directory is honored.
func Load(path string) (*Config, error) {
	cfg := Default()

	// Optional; a missing .env is not an error.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DDLEXPORT_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("DDLEXPORT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("DDLEXPORT_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("DDLEXPORT_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("DDLEXPORT_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("DDLEXPORT_SCHEMA"); v != "" {
		c.Schema = v
	}
	if v := os.Getenv("DDLEXPORT_OUTPUT"); v != "" {
		c.Output = v
	}
}

// URL returns the PostgreSQL connection URL for the configured server, with
// user and password escaped.
func (c *Config) URL() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	return u.String()
}
