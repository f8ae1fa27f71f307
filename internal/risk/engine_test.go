package risk

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	suite.engine = NewEngine()
}

// baseInput is a candidate that prices cleanly: no clamping rule fires
// until a test perturbs it.
func (suite *EngineTestSuite) baseInput() Input {
	return Input{
		Ticker:          "ACME",
		Price:           100,
		RecentHigh:      105,
		RecentLow:       99.5, // baseline floor of 99.2 sits safely below
		YesterdayClose:  100,
		Family:          "Momentum",
		FamilyAvgReturn: 0.02,
		Cash:            50000,
		TradeCapital:    5000,
		BandwagonFactor: 1,
		OpenPositions:   3,
		MaxRiskRatio:    0.004,
	}
}

func (suite *EngineTestSuite) TestCleanBuy() {
	decision, err := suite.engine.Evaluate(suite.baseInput())

	suite.Require().NoError(err)
	suite.Equal(types.DecisionBuy, decision.Decision)
	suite.Equal("Momentum", decision.Reason)
	suite.Equal(int64(50), decision.Shares)
	suite.InDelta(99.2, decision.FloorPrice, 1e-9)
	suite.InDelta(102.0, decision.CeilingPrice, 1e-9)
	suite.InDelta(100.1, decision.BuyLimit, 1e-9)
	suite.InDelta(200.0, decision.MaxRiskAmt, 1e-9)
	suite.InDelta(40.0, decision.TradeRiskAmt, 1e-9)
	suite.InDelta(0.008, decision.TradeRiskPct, 1e-9)
	suite.InDelta(1.9/100.1, decision.TradeReturn, 1e-9)
	suite.InDelta(0.016, decision.FamilyReturn, 1e-9)
}

func (suite *EngineTestSuite) TestReturnAlreadyCaptured() {
	in := suite.baseInput()
	in.YesterdayClose = 98 // up 2.04% on the day, more than the trade return

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionSkip, decision.Decision)
	suite.Equal(types.SkipReasonReturnCaptured, decision.Reason)
	suite.Zero(decision.Shares)
	suite.InDelta(99.2, decision.FloorPrice, 1e-9)
	suite.InDelta(100.1, decision.BuyLimit, 1e-9)
}

func (suite *EngineTestSuite) TestTooManyPositionsShortCircuits() {
	in := suite.baseInput()
	in.OpenPositions = MaxOpenPositions

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionSkip, decision.Decision)
	suite.Equal(types.SkipReasonTooManyPositions, decision.Reason)
	suite.Zero(decision.Shares)
	suite.Zero(decision.BuyLimit) // no pricing happens at all
	suite.InDelta(200.0, decision.MaxRiskAmt, 1e-9)
}

func (suite *EngineTestSuite) TestFloorAboveRecentLowSkips() {
	in := suite.baseInput()
	in.RecentLow = 99.0 // baseline floor of 99.2 sits above it

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionSkip, decision.Decision)
	suite.Equal(types.SkipReasonStopLossBreached, decision.Reason)
	suite.Zero(decision.Shares)
}

func (suite *EngineTestSuite) TestFloorAtRecentLowStillBuys() {
	in := suite.baseInput()
	in.RecentLow = 99.2 // exactly at the baseline floor; the breach is strict

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionBuy, decision.Decision)
	suite.Equal(int64(50), decision.Shares)
}

func (suite *EngineTestSuite) TestCeilingClampedToRecentHigh() {
	in := suite.baseInput()
	in.RecentHigh = 101.5

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.InDelta(101.45, decision.CeilingPrice, 1e-9)
}

func (suite *EngineTestSuite) TestCandlestickExemptFromRangeCheck() {
	in := suite.baseInput()
	in.Family = "Candlestick"
	in.RecentHigh = 100.5
	in.RecentLow = 99.0

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionBuy, decision.Decision)
	suite.Equal("Candlestick", decision.Reason)
	suite.InDelta(102.0, decision.CeilingPrice, 1e-9) // never clamped
	suite.InDelta(99.2, decision.FloorPrice, 1e-9)
}

func (suite *EngineTestSuite) TestFloorWidensWhenBaselineRisksTooMuch() {
	in := suite.baseInput()
	in.FamilyAvgReturn = 0.2
	in.RecentHigh = 130

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionBuy, decision.Decision)
	// Floor rebuilt from the ceiling distance: 100 - (120-100)*0.4.
	suite.InDelta(92.0, decision.FloorPrice, 1e-9)
	suite.InDelta(120.0, decision.CeilingPrice, 1e-9)
	suite.InDelta(400.0, decision.TradeRiskAmt, 1e-9)
}

func (suite *EngineTestSuite) TestBandwagonFactorScalesRiskCap() {
	in := suite.baseInput()
	in.BandwagonFactor = 0.3

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.InDelta(60.0, decision.MaxRiskAmt, 1e-9)
}

func (suite *EngineTestSuite) TestRiskOutweighsReward() {
	in := suite.baseInput()
	in.FamilyAvgReturn = 0.005 // reward too thin to clear the risk margin
	in.RecentLow = 99.9        // keep the 99.8 floor below the recent low

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionSkip, decision.Decision)
	suite.Equal(types.SkipReasonRiskOverReward, decision.Reason)
	suite.Zero(decision.Shares)
}

func (suite *EngineTestSuite) TestTooExpensive() {
	in := suite.baseInput()
	in.TradeCapital = 50 // half a share of capital

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.DecisionSkip, decision.Decision)
	suite.Equal(types.SkipReasonTooExpensive, decision.Reason)
	suite.Zero(decision.Shares)
}

func (suite *EngineTestSuite) TestFirstTriggeredReasonWins() {
	in := suite.baseInput()
	in.RecentLow = 99.0 // triggers the stop-loss breach first
	in.YesterdayClose = 95 // would also trigger return-captured
	in.FamilyAvgReturn = 0.005

	decision, err := suite.engine.Evaluate(in)

	suite.Require().NoError(err)
	suite.Equal(types.SkipReasonStopLossBreached, decision.Reason)
}

func (suite *EngineTestSuite) TestNonPositivePriceRejected() {
	in := suite.baseInput()
	in.Price = 0

	_, err := suite.engine.Evaluate(in)

	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	in = suite.baseInput()
	in.YesterdayClose = -1

	_, err = suite.engine.Evaluate(in)

	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
