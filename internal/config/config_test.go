package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ourotrade/ouro/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	config := DefaultConfig()

	suite.Equal("https://paper-api.alpaca.markets", config.Alpaca.BaseURL)
	suite.Equal("actions.json", config.Files.Actions)
	suite.Equal("status.csv", config.Files.Status)
	suite.Equal("buyskip.json", config.Files.BuySkip)
	suite.InDelta(0.004, config.MaxRiskRatio, 1e-9)
	suite.False(config.TestMode)
	suite.False(config.ForceMarketOpen)
}

func (suite *ConfigTestSuite) TestLoadEmptyPathUsesDefaults() {
	config, err := Load("")

	suite.Require().NoError(err)
	suite.Equal(DefaultConfig().CatalogPath, config.CatalogPath)
}

func (suite *ConfigTestSuite) TestLoadOverlaysFile() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	content := `
catalog_path: families.csv
max_risk_ratio: 0.002
files:
  actions: /tmp/quorum/actions.json
  status: /tmp/quorum/status.csv
  buy_skip: /tmp/quorum/buyskip.json
`
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(path)

	suite.Require().NoError(err)
	suite.Equal("families.csv", config.CatalogPath)
	suite.InDelta(0.002, config.MaxRiskRatio, 1e-9)
	suite.Equal("/tmp/quorum/actions.json", config.Files.Actions)
	// Untouched fields keep their defaults.
	suite.Equal(DefaultConfig().StorePath, config.StorePath)
}

func (suite *ConfigTestSuite) TestLoadRejectsBadRiskRatio() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("max_risk_ratio: 1.5\n"), 0o644))

	_, err := Load(path)

	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadRejectsMissingFile() {
	_, err := Load("no/such/config.yaml")

	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestEnvFillsSecrets() {
	suite.T().Setenv("APCA_API_KEY_ID", "key-from-env")
	suite.T().Setenv("APCA_API_SECRET_KEY", "secret-from-env")
	suite.T().Setenv("POLYGON_API_KEY", "polygon-from-env")

	config, err := Load("")

	suite.Require().NoError(err)
	suite.Equal("key-from-env", config.Alpaca.KeyID)
	suite.Equal("secret-from-env", config.Alpaca.SecretKey)
	suite.Equal("polygon-from-env", config.PolygonAPIKey)
}

func (suite *ConfigTestSuite) TestValidateBroker() {
	config := DefaultConfig()

	err := config.ValidateBroker()
	suite.Require().Error(err)

	config.Alpaca.KeyID = "key"
	config.Alpaca.SecretKey = "secret"
	suite.Require().NoError(config.ValidateBroker())
}
