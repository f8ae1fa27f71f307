package types

import "time"

// Bar is a single OHLCV observation. Classification requires bars in
// ascending time order; callers own that precondition.
type Bar struct {
	Time   time.Time `csv:"time" json:"time"`
	Open   float64   `csv:"open" json:"o"`
	High   float64   `csv:"high" json:"h"`
	Low    float64   `csv:"low" json:"l"`
	Close  float64   `csv:"close" json:"c"`
	Volume float64   `csv:"volume" json:"v"`
}

// DailyBar is a daily OHLCV row keyed by ticker, as stored in the
// closing-price store.
type DailyBar struct {
	Ticker    string    `csv:"ticker" json:"ticker"`
	TradeDate time.Time `csv:"trade_date" json:"trade_date"`
	Open      float64   `csv:"open" json:"o"`
	High      float64   `csv:"high" json:"h"`
	Low       float64   `csv:"low" json:"l"`
	Close     float64   `csv:"close" json:"c"`
	Volume    float64   `csv:"volume" json:"v"`
}

// MarketClock is a snapshot of the exchange session clock.
type MarketClock struct {
	Timestamp time.Time `json:"timestamp"`
	IsOpen    bool      `json:"is_open"`
	NextClose time.Time `json:"next_close"`
}

// MinutesToClose returns the whole minutes remaining until the next close.
func (c MarketClock) MinutesToClose() int {
	return int(c.NextClose.Sub(c.Timestamp).Minutes())
}
