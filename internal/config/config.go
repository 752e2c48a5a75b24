// Package config loads the service configuration.
//
// Layering, lowest to highest precedence: built-in defaults, the YAML
// config file, environment variables, CLI flags. Every knob is optional;
// an untouched layer leaves the value from the layer below.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the server needs to run.
type Config struct {
	// RedisURL is the shared store endpoint (redis:// or rediss://).
	RedisURL string `yaml:"redis_url"`
	// Host is the HTTP bind address.
	Host string `yaml:"host"`
	// Port is the HTTP bind port.
	Port int `yaml:"port"`
	// LogLevel is the zerolog filter threshold.
	LogLevel string `yaml:"log_level"`
	// PrettyLog switches to human-readable console output.
	PrettyLog bool `yaml:"pretty_log"`
	// RequirePassword makes token issuance demand and verify a password.
	RequirePassword bool `yaml:"require_password"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RedisURL: "redis://127.0.0.1/",
		Host:     "127.0.0.1",
		Port:     3000,
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file,
// environment variables and the given CLI arguments, in that order.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("realtime-svg", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file (default: config.yaml if present)")
	redisURL := fs.String("redis-url", "", "Redis server URL (env: REDIS_URL)")
	host := fs.String("host", "", "Server bind address (env: HOST)")
	port := fs.Int("port", 0, "Server port (env: PORT)")
	logLevel := fs.String("log-level", "", "Logging level: debug, info, warn, error (env: LOG_LEVEL)")
	prettyLog := fs.Bool("pretty-log", false, "Human-readable console logging (env: PRETTY_LOG)")
	requirePassword := fs.Bool("require-password", false, "Require a password for token issuance (env: REQUIRE_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	if err := cfg.applyFile(*configPath); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "redis-url":
			cfg.RedisURL = *redisURL
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "log-level":
			cfg.LogLevel = *logLevel
		case "pretty-log":
			cfg.PrettyLog = *prettyLog
		case "require-password":
			cfg.RequirePassword = *requirePassword
		}
	})

	return &cfg, nil
}

// applyFile merges the YAML config file. A missing default file is fine;
// an explicitly named file must exist.
func (c *Config) applyFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PRETTY_LOG"); v != "" {
		if pretty, err := strconv.ParseBool(v); err == nil {
			c.PrettyLog = pretty
		}
	}
	if v := os.Getenv("REQUIRE_PASSWORD"); v != "" {
		if required, err := strconv.ParseBool(v); err == nil {
			c.RequirePassword = required
		}
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in range 1-65535: %d", c.Port)
	}
	if !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		return fmt.Errorf("redis url must start with redis:// or rediss://: %s", c.RedisURL)
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	return nil
}
