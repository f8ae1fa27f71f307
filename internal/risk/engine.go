// Package risk sizes candidate trades into bracket-order pricing and a
// buy/skip decision.
package risk

import (
	"math"

	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

const (
	// MaxOpenPositions caps concurrent holdings; above it every candidate
	// is skipped before any pricing is computed.
	MaxOpenPositions = 10

	// familyReturnHaircut discounts the catalog's average return. The
	// average is rarely achieved in full.
	familyReturnHaircut = 0.8

	// floorPctOfReturn sets the baseline stop distance as a fraction of the
	// discounted family return.
	floorPctOfReturn = 0.5

	// floorWidenFraction rebuilds the floor from the ceiling distance when
	// the baseline floor risks more than the per-trade cap.
	floorWidenFraction = 0.4

	// buyLimitFraction places the entry limit a sliver above the signal
	// price, at this fraction of the potential profit.
	buyLimitFraction = 0.05

	// rewardMargin is the minimum edge the trade return must hold over the
	// trade risk.
	rewardMargin = 0.005

	// candlestickFamily prices off its own pattern levels, so the recent
	// high/low reality check does not apply to it.
	candlestickFamily = "Candlestick"
)

// Input is the full price and account context for sizing one candidate.
type Input struct {
	Ticker          string
	Price           float64
	RecentHigh      float64
	RecentLow       float64
	YesterdayClose  float64
	Family          string
	FamilyAvgReturn float64
	Cash            float64
	TradeCapital    float64
	BandwagonFactor float64
	OpenPositions   int
	MaxRiskRatio    float64
}

// Engine evaluates candidates. It holds no state; every decision is a pure
// function of its Input.
type Engine struct{}

// NewEngine creates a risk engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs the sizing algorithm. The step order is load-bearing: each
// clamping rule may zero the share count, and the first rule to trigger
// owns the skip reason.
func (e *Engine) Evaluate(in Input) (types.OrderDecision, error) {
	if in.Price <= 0 || in.YesterdayClose <= 0 {
		return types.OrderDecision{}, errors.Newf(errors.ErrCodeInvalidParameter, "non-positive price context for %s", in.Ticker)
	}

	maxRiskAmt := in.Cash * in.MaxRiskRatio * in.BandwagonFactor

	if in.OpenPositions >= MaxOpenPositions {
		return types.OrderDecision{
			Ticker:     in.Ticker,
			MaxRiskAmt: maxRiskAmt,
			Decision:   types.DecisionSkip,
			Reason:     types.SkipReasonTooManyPositions,
		}, nil
	}

	reason := types.SkipReasonUnknown

	familyReturn := in.FamilyAvgReturn * familyReturnHaircut
	floorPct := familyReturn * floorPctOfReturn
	floorPrice := in.Price * (1 - floorPct)
	ceilingPrice := in.Price * (1 + in.FamilyAvgReturn)

	shares := int64(math.Floor(in.TradeCapital / in.Price))

	// Reality check against the recent range. Candlestick signals price off
	// their own pattern levels and are exempt.
	if in.Family != candlestickFamily {
		if ceilingPrice > in.RecentHigh {
			ceilingPrice = in.RecentHigh - 0.05
		}

		if floorPrice > in.RecentLow {
			reason = types.SkipReasonStopLossBreached
			shares = 0
		}
	}

	// Widen the floor if the baseline stop risks more than the per-trade
	// cap. The cap itself stays advisory; only the floor moves.
	if in.Price*float64(shares)*floorPct > maxRiskAmt {
		floorPrice = in.Price - (ceilingPrice-in.Price)*floorWidenFraction
	}

	tradeRiskAmt := (in.Price - floorPrice) * float64(shares)
	tradeRiskPct := (in.Price - floorPrice) / in.Price

	buyLimit := in.Price + (ceilingPrice-in.Price)*buyLimitFraction
	tradeReturn := (ceilingPrice - buyLimit) / buyLimit

	// The move since yesterday's close already covers the expected return.
	if (in.Price-in.YesterdayClose)/in.YesterdayClose >= tradeReturn {
		if reason == types.SkipReasonUnknown {
			reason = types.SkipReasonReturnCaptured
		}

		shares = 0
	}

	// The trade must clear its own risk with margin to spare.
	if tradeReturn-rewardMargin <= tradeRiskPct {
		if reason == types.SkipReasonUnknown {
			reason = types.SkipReasonRiskOverReward
		}

		shares = 0
	}

	decision := types.DecisionBuy

	if shares <= 0 {
		decision = types.DecisionSkip

		if shares < 0 {
			shares = 0
		}

		if reason == types.SkipReasonUnknown {
			reason = types.SkipReasonTooExpensive
		}
	} else {
		reason = in.Family
	}

	return types.OrderDecision{
		Ticker:       in.Ticker,
		FloorPrice:   floorPrice,
		CeilingPrice: ceilingPrice,
		BuyLimit:     buyLimit,
		Shares:       shares,
		TradeRiskAmt: tradeRiskAmt,
		TradeRiskPct: tradeRiskPct,
		FamilyReturn: familyReturn,
		TradeReturn:  tradeReturn,
		MaxRiskAmt:   maxRiskAmt,
		Decision:     decision,
		Reason:       reason,
	}, nil
}
