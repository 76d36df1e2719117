// Package config loads server settings from a YAML file with environment
// overrides, and exposes them through a Runtime view that supports hot reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DaktelaConfig holds the static backend credentials used when a request
// carries no per-call identity (stdio transport, trusted deployments).
type DaktelaConfig struct {
	URL         string `yaml:"url"`
	AccessToken string `yaml:"access_token"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	// Timezone is the IANA zone the backend's naive timestamps are
	// expressed in (e.g. "Europe/Prague"). Empty means UTC.
	Timezone string `yaml:"timezone"`
}

// CacheConfig controls the reference-data cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Backend    string `yaml:"backend"` // "memory" (default) or "valkey"
	ValkeyURL  string `yaml:"valkey_url"`
}

// Config holds server configuration.
type Config struct {
	JWTSecret      string   `yaml:"jwt_secret"`
	AllowedDomains []string `yaml:"allowed_domains"` // hostname suffixes accepted by the URL validator

	Daktela DaktelaConfig `yaml:"daktela"`

	Transport string `yaml:"transport"` // "stdio" or "http"
	HTTPPort  int    `yaml:"http_port"`
	LogFile   string `yaml:"log_file"` // empty = stderr only; "none"/"off" disables file logging

	Cache CacheConfig `yaml:"cache"`
}

// DefaultConfig returns sensible defaults: stdio transport, daktela.com
// instances only, memory cache with a one hour TTL.
func DefaultConfig() *Config {
	return &Config{
		AllowedDomains: []string{"daktela.com"},
		Transport:      "stdio",
		HTTPPort:       8080,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
			Backend:    "memory",
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.AllowedDomains) == 0 {
		cfg.AllowedDomains = []string{"daktela.com"}
	}

	return cfg, nil
}

// ApplyEnv overrides config values from the environment. Deployment platforms
// set these instead of shipping a config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("ALLOWED_DAKTELA_DOMAINS"); v != "" {
		if domains := splitList(v); len(domains) > 0 {
			c.AllowedDomains = domains
		}
	}
	if v := os.Getenv("DAKTELA_URL"); v != "" {
		c.Daktela.URL = v
	}
	if v := os.Getenv("DAKTELA_ACCESS_TOKEN"); v != "" {
		c.Daktela.AccessToken = v
	}
	if v := os.Getenv("DAKTELA_USERNAME"); v != "" {
		c.Daktela.Username = v
	}
	if v := os.Getenv("DAKTELA_PASSWORD"); v != "" {
		c.Daktela.Password = v
	}
	if v := os.Getenv("DAKTELA_TIMEZONE"); v != "" {
		c.Daktela.Timezone = v
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		c.Transport = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.HTTPPort = p
		}
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			c.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("VALKEY_URL"); v != "" {
		c.Cache.ValkeyURL = v
	}
}

// splitList splits a comma separated value, trimming whitespace and dropping
// empty entries ("daktela.com, custom.io" -> ["daktela.com" "custom.io"]).
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// location resolves the configured backend timezone, falling back to UTC for
// empty or unknown names.
func (c *Config) location() *time.Location {
	if c.Daktela.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Daktela.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
