// Package config loads and validates the session configuration.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ourotrade/ouro/internal/broker"
	"github.com/ourotrade/ouro/internal/feed"
	"github.com/ourotrade/ouro/pkg/errors"
)

// Config is the full runtime configuration. Secrets come from the
// environment so config files stay shareable; everything else has a
// working default.
type Config struct {
	// Alpaca is the broker gateway configuration. KeyID and SecretKey are
	// filled from APCA_API_KEY_ID / APCA_API_SECRET_KEY when empty. Only
	// the trading command needs it, so it is validated separately.
	Alpaca broker.AlpacaConfig `yaml:"alpaca" validate:"-"`

	// PolygonAPIKey authorizes history fetches. Filled from POLYGON_API_KEY
	// when empty; only required by the history command.
	PolygonAPIKey string `yaml:"polygon_api_key"`

	// Files are the exchange files shared with the signal producer.
	Files feed.Files `yaml:"files"`

	// CatalogPath is the strategy family catalog CSV.
	CatalogPath string `yaml:"catalog_path" validate:"required"`

	// StorePath is the DuckDB bar store.
	StorePath string `yaml:"store_path" validate:"required"`

	// LogPath, when set, mirrors logs to a file.
	LogPath string `yaml:"log_path"`

	// MaxRiskRatio is the per-trade risk cap as a fraction of session cash.
	MaxRiskRatio float64 `yaml:"max_risk_ratio" validate:"gt=0,lt=1"`

	// TestMode keeps the loop running regardless of the market clock.
	TestMode bool `yaml:"test_mode"`

	// ForceMarketOpen forces one open pass and then end-of-day handling.
	ForceMarketOpen bool `yaml:"force_market_open"`
}

// DefaultConfig returns the configuration used when a field is absent from
// the file.
func DefaultConfig() Config {
	return Config{
		Alpaca: broker.AlpacaConfig{
			BaseURL: "https://paper-api.alpaca.markets",
		},
		Files: feed.Files{
			Actions: "actions.json",
			Status:  "status.csv",
			BuySkip: "buyskip.json",
		},
		CatalogPath:  "strategies.csv",
		StorePath:    "ouro.duckdb",
		MaxRiskRatio: 0.004,
	}
}

// Load reads the config file, overlays defaults and environment secrets,
// and validates the result. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	if c.Alpaca.KeyID == "" {
		c.Alpaca.KeyID = os.Getenv("APCA_API_KEY_ID")
	}

	if c.Alpaca.SecretKey == "" {
		c.Alpaca.SecretKey = os.Getenv("APCA_API_SECRET_KEY")
	}

	if c.PolygonAPIKey == "" {
		c.PolygonAPIKey = os.Getenv("POLYGON_API_KEY")
	}
}

// Validate checks the configuration. Broker credentials and the Polygon
// key are checked by the commands that need them, not here.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}

// ValidateBroker checks the Alpaca gateway configuration.
func (c *Config) ValidateBroker() error {
	validate := validator.New()

	if err := validate.Struct(c.Alpaca); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid broker configuration", err)
	}

	return nil
}
