package types

// Account is the broker account snapshot taken once at the start of active
// trading.
type Account struct {
	// Cash is the settled cash balance.
	Cash float64 `json:"cash"`
	// BuyingPower includes margin credit against the trading plan.
	BuyingPower float64 `json:"buying_power"`
	// Multiplier is the account margin multiplier.
	Multiplier float64 `json:"multiplier"`
}

// DayTradingReserve is the minimum equity a pattern-day-trading account must
// hold; it is excluded from tradable cash.
const DayTradingReserve = 25001

// TradableCash returns the cash available for intraday trades. Buying power
// is divided back down by the multiplier so margin credit is never traded.
func (a Account) TradableCash() float64 {
	if a.Multiplier <= 0 {
		return 0
	}

	return a.BuyingPower/a.Multiplier - DayTradingReserve
}

// Position is an open holding as reported by the broker.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"qty"`
	AvgEntry     float64 `json:"avg_entry_price"`
	MarketValue  float64 `json:"market_value"`
	CurrentPrice float64 `json:"current_price"`
}
