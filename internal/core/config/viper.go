package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; callers apply
// changed flags on the returned Config.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	def := DefaultConfig()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout.String())
	v.SetDefault("library.base_url", def.Library.BaseURL)
	v.SetDefault("library.timeout", def.Library.Timeout.String())
	v.SetDefault("library.page_limit", def.Library.PageLimit)
	v.SetDefault("engine.workers", def.Engine.Workers)
	v.SetDefault("engine.color_cache_size", def.Engine.ColorCacheSize)
	v.SetDefault("engine.timezone", def.Engine.Timezone)
	v.SetDefault("database.url", def.Database.URL)

	// Bind environment variables with ELP_ prefix
	v.SetEnvPrefix("ELP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets must be environment-only
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			APIKey:         ServerAPIKey(),
		},
		Library: LibraryConfig{
			BaseURL:   strings.TrimRight(v.GetString("library.base_url"), "/"),
			Timeout:   v.GetDuration("library.timeout"),
			PageLimit: v.GetInt("library.page_limit"),
			Token:     LibraryToken(),
		},
		Engine: EngineConfig{
			Workers:        v.GetInt("engine.workers"),
			ColorCacheSize: v.GetInt64("engine.color_cache_size"),
			Timezone:       v.GetString("engine.timezone"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks port range, positive timeouts and limits, and the library URL.
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Library.Timeout <= 0 {
		return fmt.Errorf("library.timeout must be positive, got %v", cfg.Library.Timeout)
	}
	if cfg.Library.PageLimit <= 0 {
		return fmt.Errorf("library.page_limit must be positive, got %d", cfg.Library.PageLimit)
	}
	u, err := url.Parse(cfg.Library.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("library.base_url must be an http(s) URL, got %q", cfg.Library.BaseURL)
	}
	if cfg.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.ColorCacheSize <= 0 {
		return fmt.Errorf("engine.color_cache_size must be positive, got %d", cfg.Engine.ColorCacheSize)
	}
	if _, err := cfg.Engine.Location(); err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url must be set")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("library.token") || v.InConfig("token") {
		return fmt.Errorf("library tokens not allowed in config files (use ELP_LIBRARY_TOKEN environment variable)")
	}
	if v.InConfig("server.api_key") || v.InConfig("api_key") {
		return fmt.Errorf("server API keys not allowed in config files (use ELP_SERVER_API_KEY environment variable)")
	}
	return nil
}
