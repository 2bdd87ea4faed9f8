package config

import (
	"encoding/json"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string   `json:"serverAddress"`
	DatabasePath  string   `json:"databasePath"`
	DatabaseURL   string   `json:"databaseUrl"`
	Device        Device   `json:"device"`
	Sync          Sync     `json:"sync"`
	Security      Security `json:"security"`
}

// Device configuration for the vendor terminal client
type Device struct {
	// Driver names the registered vendor dialer. The server refuses to
	// start without a matching registration.
	Driver string `json:"driver"`
}

// Sync configuration for the attendance pipeline and its scheduler
type Sync struct {
	// Timezone is the IANA zone device wall-clock timestamps are
	// interpreted in. Defaults to GMT.
	Timezone        string `json:"timezone"`
	IntervalMinutes int    `json:"intervalMinutes"`
	AutoStart       bool   `json:"autoStart"`
	// SortLog makes the orchestrator stable-sort punches by instant
	// before reconciling, for devices that return unordered logs.
	SortLog bool `json:"sortLog"`
	// CheckOutPolicy is "newest" or "oldest": which open session an
	// ambiguous check-out closes.
	CheckOutPolicy string `json:"checkOutPolicy"`
}

// Security configuration
type Security struct {
	APIKey string `json:"apiKey"`
	// APIKeyHash is an optional bcrypt hash; when set it takes
	// precedence over the plaintext APIKey.
	APIKeyHash   string `json:"apiKeyHash"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "attendsync.db",
		Device: Device{
			Driver: "zk",
		},
		Sync: Sync{
			Timezone:        "GMT",
			IntervalMinutes: 15,
			AutoStart:       false,
			SortLog:         false,
			CheckOutPolicy:  "newest",
		},
		Security: Security{
			APIKey:       "CHANGE_THIS_TO_A_SECURE_API_KEY_AT_LEAST_32_CHARS",
			APIKeyHeader: "X-API-Key",
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if driver := os.Getenv("DEVICE_DRIVER"); driver != "" {
		cfg.Device.Driver = driver
	}
	if tz := os.Getenv("SYNC_TIMEZONE"); tz != "" {
		cfg.Sync.Timezone = tz
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}
	if apiKeyHash := os.Getenv("API_KEY_HASH"); apiKeyHash != "" {
		cfg.Security.APIKeyHash = apiKeyHash
	}

	// Sync scheduler configuration
	if interval := os.Getenv("SYNC_INTERVAL_MINUTES"); interval != "" {
		if minutes, err := strconv.Atoi(interval); err == nil && minutes > 0 {
			cfg.Sync.IntervalMinutes = minutes
		}
	}
	if autoStart := os.Getenv("SYNC_AUTO_START"); autoStart != "" {
		cfg.Sync.AutoStart = autoStart == "true" || autoStart == "1"
	}
	if sortLog := os.Getenv("SYNC_SORT_LOG"); sortLog != "" {
		cfg.Sync.SortLog = sortLog == "true" || sortLog == "1"
	}
	if policy := os.Getenv("SYNC_CHECKOUT_POLICY"); policy != "" {
		cfg.Sync.CheckOutPolicy = policy
	}

	return cfg, nil
}
