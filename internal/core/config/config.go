// Package config provides configuration management for eagle-library-player services.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Library  LibraryConfig
	Engine   EngineConfig
	Database DatabaseConfig
}

// ServerConfig holds configuration for the gRPC filter service.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	APIKey         string // environment only, see ServerAPIKey
}

// LibraryConfig points at the library manager's local HTTP API.
type LibraryConfig struct {
	BaseURL   string
	Timeout   time.Duration
	PageLimit int
	Token     string // environment only, see LibraryToken
}

// EngineConfig tunes the rule engine.
type EngineConfig struct {
	Workers        int
	ColorCacheSize int64
	Timezone       string // IANA name; "" or "Local" uses the host zone
}

// DatabaseConfig selects the folder store.
type DatabaseConfig struct {
	URL string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           50061,
			RequestTimeout: 30 * time.Second,
		},
		Library: LibraryConfig{
			BaseURL:   "http://localhost:41595/api",
			Timeout:   10 * time.Second,
			PageLimit: 100000,
		},
		Engine: EngineConfig{
			Workers:        0,
			ColorCacheSize: 4096,
			Timezone:       "Local",
		},
		Database: DatabaseConfig{
			URL: "sqlite://./data/eagleplayer.db",
		},
	}
}

// Location resolves Engine.Timezone.
func (c EngineConfig) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("engine.timezone: %w", err)
		}
		return loc, nil
	}
}

// Address returns host:port for the gRPC listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LibraryToken reads the library manager API token from ELP_LIBRARY_TOKEN.
// Tokens never come from config files.
func LibraryToken() string {
	return strings.TrimSpace(os.Getenv("ELP_LIBRARY_TOKEN"))
}

// ServerAPIKey reads the filter service API key from ELP_SERVER_API_KEY.
// An empty key leaves the service unauthenticated.
func ServerAPIKey() string {
	return strings.TrimSpace(os.Getenv("ELP_SERVER_API_KEY"))
}
