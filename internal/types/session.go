package types

import "time"

// SessionPhase is the linear phase of a trading session. Phases only ever
// advance; no phase is revisited.
type SessionPhase string

const (
	PhaseAwaitOpen        SessionPhase = "await_open"
	PhaseActiveTrading    SessionPhase = "active_trading"
	PhaseEarlyWindDown    SessionPhase = "early_wind_down"
	PhaseFinalLiquidation SessionPhase = "final_liquidation"
	PhaseDone             SessionPhase = "done"
)

// phaseRank orders phases for monotonicity checks.
var phaseRank = map[SessionPhase]int{
	PhaseAwaitOpen:        0,
	PhaseActiveTrading:    1,
	PhaseEarlyWindDown:    2,
	PhaseFinalLiquidation: 3,
	PhaseDone:             4,
}

// Before reports whether p precedes other in the session lifecycle.
func (p SessionPhase) Before(other SessionPhase) bool {
	return phaseRank[p] < phaseRank[other]
}

// InboundAction is one candidate produced by the external signal source,
// keyed by ticker in the action feed.
type InboundAction struct {
	Price          float64 `json:"price"`
	RecentHigh     float64 `json:"recenthigh"`
	RecentLow      float64 `json:"recentlow"`
	StrategyFamily string  `json:"strategyfamily"`
}

// StrategyFamily maps a named signal family to its historical average
// return percentage. Loaded once per session, read-only afterwards.
type StrategyFamily struct {
	Name         string  `csv:"Family"`
	AvgPctReturn float64 `csv:"AvgPctRtn"`
}

// StatusRecord is one row of the per-tick broker status table. The file is
// rewritten wholesale every tick, never appended.
type StatusRecord struct {
	DateTime         time.Time `csv:"DateTime"`
	Ticker           string    `csv:"Ticker"`
	Cash             float64   `csv:"Cash"`
	TradeCapital     float64   `csv:"TradeCapital"`
	BuyPrice         float64   `csv:"BuyPrice"`
	BuyLimit         float64   `csv:"BuyLimit"`
	MaxRiskAmt       float64   `csv:"MaxRiskAmt"`
	TradeRiskAmt     float64   `csv:"TradeRiskAmt"`
	TradeRiskPct     float64   `csv:"TradeRiskPct"`
	PortfolioRiskPct float64   `csv:"PortfolioRiskPct"`
	FamilyReturnPct  float64   `csv:"FamilyReturnPct"`
	TradeReturnPct   float64   `csv:"TradeReturnPct"`
	OrderShares      int64     `csv:"OrderShares"`
	RecentHigh       float64   `csv:"RecentHigh"`
	RecentLow        float64   `csv:"RecentLow"`
	FloorPrice       float64   `csv:"FloorPrice"`
	CeilingPrice     float64   `csv:"CeilingPrice"`
	Decision         Decision  `csv:"Decision"`
	Reason           string    `csv:"Reason"`
}

// BuySkipSnapshot is the per-tick snapshot of session bookkeeping written
// for downstream collaborators.
type BuySkipSnapshot struct {
	Bought []string `json:"buy"`
	Skip   []string `json:"skip"`
}
