package indicator

import (
	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

// Default periods for the tracked families.
const (
	DefaultAroonPeriod    = 14
	DefaultCCIPeriod      = 14
	DefaultCMOPeriod      = 14
	DefaultMACDFast       = 12
	DefaultMACDSlow       = 26
	DefaultMACDSignal     = 9
	DefaultRSIPeriod      = 14
	DefaultStochFastK     = 5
	DefaultStochSlowK     = 3
	DefaultStochSlowD     = 3
	DefaultStochRSIPeriod = 14
	DefaultStochRSIK      = 5
	DefaultStochRSID      = 3
	DefaultTRIXPeriod     = 30
	DefaultADOSCFast      = 3
	DefaultADOSCSlow      = 10
)

// Set holds every indicator series the classifier consumes, aligned
// index-for-index with the source bars. Warm-up positions are NaN.
type Set struct {
	AroonUp   []float64
	AroonDown []float64
	BOP       []float64
	CCI       []float64
	CMO       []float64
	MACDHist  []float64
	PPO       []float64
	RSI       []float64
	StochK    []float64
	StochD    []float64
	StochRSIK []float64
	StochRSID []float64
	TRIX      []float64
	ADOSC     []float64
}

// Provider computes indicator series for a bar sequence. The classifier
// treats it as a black box so tests can substitute canned series.
type Provider interface {
	Compute(bars []types.Bar) (*Set, error)
}

// SeriesProvider is the in-house Provider over the package's series
// functions with the default periods.
type SeriesProvider struct{}

// NewSeriesProvider creates a SeriesProvider.
func NewSeriesProvider() *SeriesProvider {
	return &SeriesProvider{}
}

// Compute implements Provider.
func (p *SeriesProvider) Compute(bars []types.Bar) (*Set, error) {
	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientData, "no bars to compute indicators over")
	}

	n := len(bars)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	volume := make([]float64, n)

	for i, b := range bars {
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		close[i] = b.Close
		volume[i] = b.Volume
	}

	set := &Set{}
	set.AroonUp, set.AroonDown = Aroon(high, low, DefaultAroonPeriod)
	set.BOP = BOP(open, high, low, close)
	set.CCI = CCI(high, low, close, DefaultCCIPeriod)
	set.CMO = CMO(close, DefaultCMOPeriod)
	_, _, set.MACDHist = MACD(close, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	set.PPO = PPO(close, DefaultMACDFast, DefaultMACDSlow)
	set.RSI = RSI(close, DefaultRSIPeriod)
	set.StochK, set.StochD = Stochastic(high, low, close, DefaultStochFastK, DefaultStochSlowK, DefaultStochSlowD)
	set.StochRSIK, set.StochRSID = StochRSI(close, DefaultStochRSIPeriod, DefaultStochRSIK, DefaultStochRSID)
	set.TRIX = TRIX(close, DefaultTRIXPeriod)
	set.ADOSC = ADOSC(high, low, close, volume, DefaultADOSCFast, DefaultADOSCSlow)

	return set, nil
}
