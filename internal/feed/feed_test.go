package feed

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ourotrade/ouro/internal/types"
)

type FeedTestSuite struct {
	suite.Suite
	dir   string
	files Files
}

func TestFeedSuite(t *testing.T) {
	suite.Run(t, new(FeedTestSuite))
}

func (suite *FeedTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.files = Files{
		Actions: filepath.Join(suite.dir, "actions.json"),
		Status:  filepath.Join(suite.dir, "status.csv"),
		BuySkip: filepath.Join(suite.dir, "buyskip.json"),
	}
}

func (suite *FeedTestSuite) TestInitTruncatesOutboundFiles() {
	suite.Require().NoError(os.WriteFile(suite.files.Status, []byte("stale"), 0o644))
	suite.Require().NoError(os.WriteFile(suite.files.BuySkip, []byte("stale"), 0o644))

	suite.Require().NoError(Init(suite.files))

	for _, path := range []string{suite.files.Status, suite.files.BuySkip} {
		data, err := os.ReadFile(path)
		suite.Require().NoError(err)
		suite.Empty(data)
	}
}

func (suite *FeedTestSuite) TestReadActions() {
	payload := `{
		"ACME": {"price": 100.5, "recenthigh": 105, "recentlow": 95, "strategyfamily": "Momentum"},
		"WIDG": {"price": 20, "recenthigh": 21, "recentlow": 19, "strategyfamily": "Candlestick"}
	}`
	suite.Require().NoError(os.WriteFile(suite.files.Actions, []byte(payload), 0o644))

	actions, err := ReadActions(suite.files.Actions)

	suite.Require().NoError(err)
	suite.Len(actions, 2)
	suite.InDelta(100.5, actions["ACME"].Price, 1e-9)
	suite.Equal("Candlestick", actions["WIDG"].StrategyFamily)
}

func (suite *FeedTestSuite) TestReadActionsMissingFile() {
	actions, err := ReadActions(filepath.Join(suite.dir, "nope.json"))

	suite.Require().NoError(err)
	suite.Empty(actions)
}

func (suite *FeedTestSuite) TestReadActionsEmptyFile() {
	suite.Require().NoError(os.WriteFile(suite.files.Actions, nil, 0o644))

	actions, err := ReadActions(suite.files.Actions)

	suite.Require().NoError(err)
	suite.Empty(actions)
}

func (suite *FeedTestSuite) TestReadActionsTornWrite() {
	suite.Require().NoError(os.WriteFile(suite.files.Actions, []byte(`{"ACME": {"pri`), 0o644))

	_, err := ReadActions(suite.files.Actions)

	suite.Require().Error(err)
}

func (suite *FeedTestSuite) TestWriteStatusHeaderAndRows() {
	records := []types.StatusRecord{
		{
			DateTime:     time.Date(2025, 3, 3, 10, 15, 0, 0, time.UTC),
			Ticker:       "ACME",
			Cash:         50000,
			TradeCapital: 5000,
			BuyPrice:     100,
			BuyLimit:     100.1,
			OrderShares:  50,
			Decision:     types.DecisionBuy,
			Reason:       "Momentum",
		},
	}

	suite.Require().NoError(WriteStatus(suite.files.Status, records))

	f, err := os.Open(suite.files.Status)
	suite.Require().NoError(err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)

	suite.Equal(statusHeader, rows[0])
	suite.Len(rows[0], 19)
	suite.Equal("2025-03-03 10:15:00", rows[1][0])
	suite.Equal("ACME", rows[1][1])
	suite.Equal("50", rows[1][12])
	suite.Equal("buy", rows[1][17])
	suite.Equal("Momentum", rows[1][18])
}

func (suite *FeedTestSuite) TestWriteStatusRewritesWholesale() {
	many := []types.StatusRecord{{Ticker: "ACME"}, {Ticker: "WIDG"}}
	suite.Require().NoError(WriteStatus(suite.files.Status, many))

	one := []types.StatusRecord{{Ticker: "ACME"}}
	suite.Require().NoError(WriteStatus(suite.files.Status, one))

	f, err := os.Open(suite.files.Status)
	suite.Require().NoError(err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	suite.Require().NoError(err)
	suite.Len(rows, 2) // header plus the single surviving row
}

func (suite *FeedTestSuite) TestWriteBuySkipSortsTickers() {
	bought := map[string]struct{}{"WIDG": {}, "ACME": {}}
	skipped := map[string]struct{}{"ZETA": {}}

	suite.Require().NoError(WriteBuySkip(suite.files.BuySkip, bought, skipped))

	data, err := os.ReadFile(suite.files.BuySkip)
	suite.Require().NoError(err)

	var snapshot types.BuySkipSnapshot
	suite.Require().NoError(json.Unmarshal(data, &snapshot))
	suite.Equal([]string{"ACME", "WIDG"}, snapshot.Bought)
	suite.Equal([]string{"ZETA"}, snapshot.Skip)
}

func (suite *FeedTestSuite) TestWriteBuySkipEmptySets() {
	suite.Require().NoError(WriteBuySkip(suite.files.BuySkip, nil, nil))

	data, err := os.ReadFile(suite.files.BuySkip)
	suite.Require().NoError(err)

	var snapshot types.BuySkipSnapshot
	suite.Require().NoError(json.Unmarshal(data, &snapshot))
	suite.Empty(snapshot.Bought)
	suite.Empty(snapshot.Skip)
}
