package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	defaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// MaxCards is the size of a fresh deck, the most a single draw can return
const MaxCards = 52

// Config represents the application configuration
type Config struct {
	LogLevel string       `toml:"log_level"`
	Cards    CardsConfig  `toml:"cards"`
	Quakes   QuakesConfig `toml:"quakes"`
	HTTP     HTTPConfig   `toml:"http"`
	Server   ServerConfig `toml:"server"`
}

// CardsConfig configures the card draw feed
type CardsConfig struct {
	URL   string `toml:"url"`
	Count int    `toml:"count"`
}

// QuakesConfig configures the earthquake feed and the initial map view
type QuakesConfig struct {
	URL         string  `toml:"url"`
	TileURL     string  `toml:"tile_url"`
	Attribution string  `toml:"attribution"`
	CenterLat   float64 `toml:"center_lat"`
	CenterLon   float64 `toml:"center_lon"`
	Zoom        int     `toml:"zoom"`
}

// HTTPConfig configures outbound requests
type HTTPConfig struct {
	// Timeout is a Go duration string; empty or "0" means no timeout
	Timeout string `toml:"timeout"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MaxSessions int    `toml:"max_sessions"`
	// SessionTTL is a Go duration string for how long an idle session is kept
	SessionTTL string `toml:"session_ttl"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Cards: CardsConfig{
			URL:   "https://deckofcardsapi.com/api/deck/new/draw/?count=10",
			Count: 10,
		},
		Quakes: QuakesConfig{
			URL:         "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson",
			TileURL:     defaultTileURL,
			Attribution: defaultAttribution,
			CenterLat:   51.505,
			CenterLon:   -0.09,
			Zoom:        13,
		},
		HTTP:   HTTPConfig{Timeout: "0"},
		Server: ServerConfig{Addr: ":8080", MaxSessions: 1024, SessionTTL: "30m"},
	}
}

// RequestTimeout parses HTTP.Timeout
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.HTTP.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http.timeout %q: %v", c.HTTP.Timeout, err)
	}
	return d, nil
}

// SessionTimeout parses Server.SessionTTL; empty means the server default
func (c *Config) SessionTimeout() (time.Duration, error) {
	if c.Server.SessionTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid server.session_ttl %q: %v", c.Server.SessionTTL, err)
	}
	return d, nil
}

// Validate checks values a config file could get wrong
func (c *Config) Validate() error {
	if c.Cards.URL == "" {
		return fmt.Errorf("cards.url is required")
	}
	if c.Cards.Count < 1 || c.Cards.Count > MaxCards {
		return fmt.Errorf("cards.count must be between 1 and %d, got %d", MaxCards, c.Cards.Count)
	}
	if c.Quakes.URL == "" {
		return fmt.Errorf("quakes.url is required")
	}
	if c.Quakes.CenterLat < -90 || c.Quakes.CenterLat > 90 {
		return fmt.Errorf("quakes.center_lat out of range: %v", c.Quakes.CenterLat)
	}
	if c.Quakes.CenterLon < -180 || c.Quakes.CenterLon > 180 {
		return fmt.Errorf("quakes.center_lon out of range: %v", c.Quakes.CenterLon)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.max_sessions must not be negative, got %d", c.Server.MaxSessions)
	}
	if _, err := c.SessionTimeout(); err != nil {
		return err
	}
	return nil
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "feedview", "config.toml")
}

// LoadConfig loads the config file at path, creating it with defaults if
// it does not exist. An empty path means GetConfigFilePath. Environment
// overrides, including those from a .env file, are applied on top.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	var config *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		config = Default()
		if err := Save(config, path); err != nil {
			return nil, err
		}
	} else {
		config = Default()
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("error decoding config file: %v", err)
		}
	}

	// A missing .env is fine
	_ = godotenv.Load()
	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides config values from FEEDVIEW_* variables
func applyEnv(config *Config) {
	if v := os.Getenv("FEEDVIEW_CARDS_URL"); v != "" {
		config.Cards.URL = v
	}
	if v := os.Getenv("FEEDVIEW_QUAKES_URL"); v != "" {
		config.Quakes.URL = v
	}
	if v := os.Getenv("FEEDVIEW_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("FEEDVIEW_LOG_LEVEL"); v != "" {
		config.LogLevel = strings.ToLower(v)
	}
}

// Save writes config to path as TOML, creating the directory if needed
func Save(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %v", err)
	}
	return nil
}
