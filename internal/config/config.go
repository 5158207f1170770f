// Package config loads pickup settings from .pickup/config.yaml, .env and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Ledger modes
const (
	LedgerHTTP      = "http"
	LedgerSimulated = "simulated"
)

// Storage drivers
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Dir is the per-project settings directory.
const Dir = ".pickup"

// Config represents the pickup configuration
type Config struct {
	Version         string           `yaml:"version"`
	Destination     string           `yaml:"destination_address" validate:"omitempty,eth_addr"`
	Asset           string           `yaml:"asset" validate:"required"`
	Ledger          LedgerConfig     `yaml:"ledger"`
	Settlement      SettlementConfig `yaml:"settlement"`
	Storage         StorageConfig    `yaml:"storage"`
	Log             LogConfig        `yaml:"log"`
	AgentsFile      string           `yaml:"agents_file,omitempty"`
	MetricsTextfile string           `yaml:"metrics_textfile,omitempty"`
}

// LedgerConfig selects and configures the wallet ledger.
type LedgerConfig struct {
	Mode                  string        `yaml:"mode" validate:"oneof=http simulated"`
	APIURL                string        `yaml:"api_url,omitempty" validate:"omitempty,url"`
	APIKey                string        `yaml:"api_key,omitempty"`
	WalletLocator         string        `yaml:"wallet_locator,omitempty"`
	Chain                 string        `yaml:"chain,omitempty"`
	Timeout               time.Duration `yaml:"timeout" validate:"gte=0"`
	SimulatedPendingPolls int           `yaml:"simulated_pending_polls" validate:"gte=0"`
}

// SettlementConfig holds the poll budget and display timing.
type SettlementConfig struct {
	PollInterval      time.Duration `yaml:"poll_interval" validate:"gt=0"`
	PollDeadline      time.Duration `yaml:"poll_deadline" validate:"gtfield=PollInterval"`
	DisplayWindow     time.Duration `yaml:"display_window" validate:"gt=0"`
	OptimisticTimeout bool          `yaml:"optimistic_timeout"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite memory"`
	DBPath string `yaml:"db_path,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: "1",
		Asset:   "usdc",
		Ledger: LedgerConfig{
			Mode:                  LedgerSimulated,
			Timeout:               30 * time.Second,
			SimulatedPendingPolls: 2,
		},
		Settlement: SettlementConfig{
			PollInterval:      time.Second,
			PollDeadline:      60 * time.Second,
			DisplayWindow:     3 * time.Second,
			OptimisticTimeout: true,
		},
		Storage: StorageConfig{
			Driver: StorageSQLite,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Path returns the config file path under dir.
func Path(dir string) string {
	return filepath.Join(dir, Dir, "config.yaml")
}

// LoadConfig reads .pickup/config.yaml from the specified directory, then
// applies .env and environment overrides and validates the result.
// A missing file yields the defaults.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes config.yaml to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", Dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnv overlays PICKUP_* variables and LOG_LEVEL.
func applyEnv(cfg *Config) error {
	strs := []struct {
		key    string
		target *string
	}{
		{"PICKUP_DESTINATION_ADDRESS", &cfg.Destination},
		{"PICKUP_ASSET", &cfg.Asset},
		{"PICKUP_LEDGER_MODE", &cfg.Ledger.Mode},
		{"PICKUP_WALLET_API_URL", &cfg.Ledger.APIURL},
		{"PICKUP_WALLET_API_KEY", &cfg.Ledger.APIKey},
		{"PICKUP_WALLET_LOCATOR", &cfg.Ledger.WalletLocator},
		{"PICKUP_DB_PATH", &cfg.Storage.DBPath},
		{"LOG_LEVEL", &cfg.Log.Level},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.key); ok && v != "" {
			*s.target = v
		}
	}

	if v, ok := os.LookupEnv("PICKUP_OPTIMISTIC_TIMEOUT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PICKUP_OPTIMISTIC_TIMEOUT %q: %w", v, err)
		}
		cfg.Settlement.OptimisticTimeout = b
	}

	return nil
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, Dir, "pickup.db"), nil
}
