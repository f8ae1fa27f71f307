package types

// Decision is the outcome of a risk evaluation.
type Decision string

const (
	DecisionBuy  Decision = "buy"
	DecisionSkip Decision = "skip"
)

// Skip reasons. The first rule to trigger wins; later rules never overwrite
// an earlier reason.
const (
	SkipReasonUnknown          = "Unknown"
	SkipReasonTooManyPositions = "too many existing positions"
	SkipReasonStopLossBreached = "stop-loss already breached today"
	SkipReasonReturnCaptured   = "potential return already captured today"
	SkipReasonRiskOverReward   = "risk outweighs reward"
	SkipReasonTooExpensive     = "stock too expensive or too few shares affordable"
)

// OrderDecision is the full pricing and sizing result for one candidate
// ticker. Shares of zero always means Skip, whatever the other fields say.
type OrderDecision struct {
	Ticker       string   `json:"ticker"`
	FloorPrice   float64  `json:"floor_price"`
	CeilingPrice float64  `json:"ceiling_price"`
	BuyLimit     float64  `json:"buy_limit"`
	Shares       int64    `json:"shares"`
	TradeRiskAmt float64  `json:"trade_risk_amt"`
	TradeRiskPct float64  `json:"trade_risk_pct"`
	FamilyReturn float64  `json:"family_return_pct"`
	TradeReturn  float64  `json:"trade_return_pct"`
	MaxRiskAmt   float64  `json:"max_risk_amt"`
	Decision     Decision `json:"decision"`
	Reason       string   `json:"reason"`
}
