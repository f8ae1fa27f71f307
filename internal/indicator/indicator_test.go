package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestSMA() {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)

	suite.True(math.IsNaN(out[0]))
	suite.True(math.IsNaN(out[1]))
	suite.InDelta(2.0, out[2], 1e-9)
	suite.InDelta(3.0, out[3], 1e-9)
	suite.InDelta(4.0, out[4], 1e-9)
}

func (suite *IndicatorTestSuite) TestSMAResetsAfterNaN() {
	out := SMA([]float64{1, 2, math.NaN(), 4, 5, 6}, 3)

	// The window restarts after the gap; only the last position has three
	// defined values behind it.
	for i := 0; i < 5; i++ {
		suite.True(math.IsNaN(out[i]), "index %d", i)
	}

	suite.InDelta(5.0, out[5], 1e-9)
}

func (suite *IndicatorTestSuite) TestEMASeedsWithSMA() {
	out := EMA([]float64{2, 4, 6, 8}, 3)

	suite.True(math.IsNaN(out[0]))
	suite.True(math.IsNaN(out[1]))
	suite.InDelta(4.0, out[2], 1e-9) // SMA seed of the first three
	suite.InDelta(6.0, out[3], 1e-9) // (8-4)*0.5 + 4
}

func (suite *IndicatorTestSuite) TestEMASkipsNaNPrefix() {
	out := EMA([]float64{math.NaN(), math.NaN(), 2, 4, 6}, 3)

	for i := 0; i < 4; i++ {
		suite.True(math.IsNaN(out[i]), "index %d", i)
	}

	suite.InDelta(4.0, out[4], 1e-9)
}

func (suite *IndicatorTestSuite) TestRSIExtremes() {
	rising := []float64{1, 2, 3, 4, 5, 6}
	out := RSI(rising, 3)

	suite.True(math.IsNaN(out[2]))
	suite.InDelta(100.0, out[3], 1e-9)

	flat := []float64{5, 5, 5, 5, 5}
	out = RSI(flat, 3)
	suite.InDelta(50.0, out[3], 1e-9)
}

func (suite *IndicatorTestSuite) TestAroonWarmUpAndExtremes() {
	high := []float64{1, 2, 3, 4, 5}
	low := []float64{1, 2, 3, 4, 5}

	up, down := Aroon(high, low, 3)

	suite.True(math.IsNaN(up[2]))
	suite.True(math.IsNaN(down[2]))

	// Steadily rising: the newest bar is both the highest and the lowest
	// is the oldest in the window.
	suite.InDelta(100.0, up[4], 1e-9)
	suite.InDelta(0.0, down[4], 1e-9)
}

func (suite *IndicatorTestSuite) TestBOPZeroRange() {
	out := BOP([]float64{10}, []float64{10}, []float64{10}, []float64{10})

	suite.Zero(out[0])
}

func (suite *IndicatorTestSuite) TestBOP() {
	out := BOP([]float64{10}, []float64{12}, []float64{8}, []float64{11})

	suite.InDelta(0.25, out[0], 1e-9)
}

func (suite *IndicatorTestSuite) TestRawStochasticFlatWindow() {
	high := []float64{5, 5, 5}
	low := []float64{5, 5, 5}
	close := []float64{5, 5, 5}

	out := rawStochastic(high, low, close, 3)

	suite.True(math.IsNaN(out[1]))
	suite.InDelta(50.0, out[2], 1e-9)
}

func (suite *IndicatorTestSuite) TestMACDAlignment() {
	close := make([]float64, 60)
	for i := range close {
		close[i] = 100 + float64(i%7)
	}

	macd, signal, hist := MACD(close, 12, 26, 9)

	suite.Len(macd, 60)
	suite.Len(signal, 60)
	suite.Len(hist, 60)

	// The histogram is defined once the signal line is.
	suite.True(math.IsNaN(hist[20]))
	suite.False(math.IsNaN(hist[59]))
	suite.InDelta(macd[59]-signal[59], hist[59], 1e-9)
}

func (suite *IndicatorTestSuite) TestProviderAlignsAllSeries() {
	bars := make([]types.Bar, 80)
	base := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

	for i := range bars {
		price := 100 + float64(i%11)
		bars[i] = types.Bar{
			Time:   base.Add(time.Duration(i) * time.Minute),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
			Volume: 1000 + float64(i),
		}
	}

	set, err := NewSeriesProvider().Compute(bars)

	suite.Require().NoError(err)

	for name, series := range map[string][]float64{
		"aroon_up":    set.AroonUp,
		"aroon_down":  set.AroonDown,
		"bop":         set.BOP,
		"cci":         set.CCI,
		"cmo":         set.CMO,
		"macd_hist":   set.MACDHist,
		"ppo":         set.PPO,
		"rsi":         set.RSI,
		"stoch_k":     set.StochK,
		"stoch_d":     set.StochD,
		"stoch_rsi_k": set.StochRSIK,
		"stoch_rsi_d": set.StochRSID,
		"trix":        set.TRIX,
		"adosc":       set.ADOSC,
	} {
		suite.Len(series, len(bars), name)
	}

	// Late bars are fully warmed up for everything but TRIX.
	last := len(bars) - 1
	suite.False(math.IsNaN(set.RSI[last]))
	suite.False(math.IsNaN(set.MACDHist[last]))
	suite.False(math.IsNaN(set.StochRSID[last]))
}

func (suite *IndicatorTestSuite) TestProviderRejectsEmptyInput() {
	_, err := NewSeriesProvider().Compute(nil)

	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientData))
}
