package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Summoner SummonerConfig `yaml:"summoner"`
	Riot     RiotConfig     `yaml:"riot"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Report   ReportConfig   `yaml:"report"`
	Auth     AuthConfig     `yaml:"auth"`
}

// SummonerConfig identifies the tracked player
type SummonerConfig struct {
	Name   string `yaml:"name"`
	Region string `yaml:"region"`
}

// RiotConfig holds Riot API settings. The API key can also be supplied
// via the RIOT_API_KEY environment variable, which takes precedence.
type RiotConfig struct {
	APIKey       string        `yaml:"api_key"`
	RequestDelay time.Duration `yaml:"request_delay"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	HTTPPort        int           `yaml:"http_port"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// ReportConfig holds dashboard generation settings
type ReportConfig struct {
	OutputDir       string `yaml:"output_dir"`
	RecentCount     int    `yaml:"recent_count"`
	DDragonFallback string `yaml:"ddragon_fallback"`
}

// AuthConfig holds authentication settings for the admin API
type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenDuration     time.Duration `yaml:"token_duration"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Set defaults
	if cfg.Summoner.Region == "" {
		cfg.Summoner.Region = "jp1"
	}
	if key := os.Getenv("RIOT_API_KEY"); key != "" {
		cfg.Riot.APIKey = key
	}
	if cfg.Riot.RequestDelay == 0 {
		cfg.Riot.RequestDelay = 1200 * time.Millisecond
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/riftstats.db"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = "127.0.0.1"
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.RefreshInterval == 0 {
		cfg.Server.RefreshInterval = time.Hour
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "docs"
	}
	if cfg.Report.RecentCount == 0 {
		cfg.Report.RecentCount = 20
	}
	if cfg.Report.DDragonFallback == "" {
		cfg.Report.DDragonFallback = "14.3.1"
	}
	if cfg.Auth.TokenDuration == 0 {
		cfg.Auth.TokenDuration = 24 * time.Hour
	}

	return &cfg, nil
}

// Save writes configuration to a YAML file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
