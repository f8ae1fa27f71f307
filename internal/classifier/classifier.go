// Package classifier turns indicator series into per-bar tri-state votes
// and 11-character strategy IDs.
package classifier

import (
	"github.com/ourotrade/ouro/internal/indicator"
	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

// Vote thresholds. These are calibrated against the strategy catalog;
// changing any of them invalidates every stored strategy ID.
const (
	aroonThreshold  = 25
	cciThreshold    = 100
	cmoThreshold    = 50
	rsiOversold     = 30
	rsiOverbought   = 70
	stochOversold   = 20
	stochOverbought = 80
)

// Classifier votes each bar of an ordered OHLCV sequence. It is pure:
// identical input yields identical output.
type Classifier struct {
	provider indicator.Provider
}

// New creates a Classifier over the given indicator provider.
func New(provider indicator.Provider) *Classifier {
	return &Classifier{provider: provider}
}

// Classify computes the vote vector and strategy ID for every bar that has
// a fully warmed-up indicator row. Bars inside any required warm-up window
// produce no record. Bars must be in ascending time order.
func (c *Classifier) Classify(bars []types.Bar) ([]types.Classified, error) {
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeUnsortedBars, "bar %d (%s) precedes bar %d (%s)", i, bars[i].Time, i-1, bars[i-1].Time)
		}
	}

	set, err := c.provider.Compute(bars)
	if err != nil {
		return nil, err
	}

	if err := checkAligned(len(bars), set); err != nil {
		return nil, err
	}

	out := make([]types.Classified, 0, len(bars))

	for i := range bars {
		if !rowDefined(set, i) {
			continue
		}

		votes := types.VoteVector{
			voteAroon(set.AroonUp[i], set.AroonDown[i]),
			voteAboveBelowZero(set.BOP[i]),
			voteCCI(set.CCI[i]),
			voteCMO(set.CMO[i]),
			voteMACD(set.MACDHist, i),
			types.VoteNeutral, // PPO is disabled; the position stays occupied
			voteRSI(set.RSI[i]),
			voteStochastic(set.StochK[i], set.StochD[i]),
			voteStochastic(set.StochRSIK[i], set.StochRSID[i]),
			voteAboveBelowZero(set.TRIX[i]),
			voteAboveBelowZero(set.ADOSC[i]),
		}

		id, err := types.EncodeVotes(votes)
		if err != nil {
			return nil, err
		}

		out = append(out, types.Classified{
			Time:       bars[i].Time,
			Votes:      votes,
			StrategyID: id,
		})
	}

	return out, nil
}

// rowDefined reports whether every series the vote table requires is outside
// its warm-up window at index i. TRIX is deliberately absent: its 30-bar
// triple smoothing would drop most of a trading day, so an undefined TRIX
// votes Neutral instead of discarding the row.
func rowDefined(set *indicator.Set, i int) bool {
	required := []float64{
		set.AroonUp[i], set.AroonDown[i],
		set.BOP[i],
		set.CCI[i],
		set.CMO[i],
		set.MACDHist[i],
		set.PPO[i],
		set.RSI[i],
		set.StochK[i], set.StochD[i],
		set.StochRSIK[i], set.StochRSID[i],
		set.ADOSC[i],
	}

	for _, v := range required {
		if !indicator.IsDefined(v) {
			return false
		}
	}

	return true
}

func checkAligned(n int, set *indicator.Set) error {
	series := [][]float64{
		set.AroonUp, set.AroonDown, set.BOP, set.CCI, set.CMO,
		set.MACDHist, set.PPO, set.RSI, set.StochK, set.StochD,
		set.StochRSIK, set.StochRSID, set.TRIX, set.ADOSC,
	}

	for _, s := range series {
		if len(s) != n {
			return errors.Newf(errors.ErrCodeSeriesLengthMismatch, "indicator series length %d does not match %d bars", len(s), n)
		}
	}

	return nil
}

// voteAroon votes on the Aroon oscillator, down minus up.
func voteAroon(up, down float64) types.Vote {
	osc := down - up

	switch {
	case osc >= aroonThreshold:
		return types.VoteBuy
	case osc <= -aroonThreshold:
		return types.VoteSell
	default:
		return types.VoteNeutral
	}
}

// voteAboveBelowZero is the shared rule for BOP, TRIX and the Chaikin A/D
// oscillator: positive is a buy, negative a sell. An undefined value (TRIX
// warm-up) compares false both ways and stays Neutral.
func voteAboveBelowZero(v float64) types.Vote {
	switch {
	case v > 0:
		return types.VoteBuy
	case v < 0:
		return types.VoteSell
	default:
		return types.VoteNeutral
	}
}

func voteCCI(v float64) types.Vote {
	switch {
	case v <= -cciThreshold:
		return types.VoteBuy
	case v >= cciThreshold:
		return types.VoteSell
	default:
		return types.VoteNeutral
	}
}

func voteCMO(v float64) types.Vote {
	switch {
	case v < -cmoThreshold:
		return types.VoteBuy
	case v > cmoThreshold:
		return types.VoteSell
	default:
		return types.VoteNeutral
	}
}

// voteMACD votes on the histogram crossing the zero line. The comparison is
// against the next bar's value, so the final bar can never cast a MACD vote
// and stays Neutral.
func voteMACD(hist []float64, i int) types.Vote {
	cur := hist[i]
	if cur == 0 || i+1 >= len(hist) {
		return types.VoteNeutral
	}

	next := hist[i+1]
	if !indicator.IsDefined(next) {
		return types.VoteNeutral
	}

	switch {
	case cur > 0 && next < cur:
		return types.VoteBuy
	case cur < 0 && next > cur:
		return types.VoteSell
	default:
		return types.VoteNeutral
	}
}

func voteRSI(v float64) types.Vote {
	switch {
	case v <= rsiOversold:
		return types.VoteBuy
	case v >= rsiOverbought:
		return types.VoteSell
	default:
		return types.VoteNeutral
	}
}

// voteStochastic requires both %K and %D in the extreme band.
func voteStochastic(k, d float64) types.Vote {
	switch {
	case k <= stochOversold && d <= stochOversold:
		return types.VoteBuy
	case k >= stochOverbought && d >= stochOverbought:
		return types.VoteSell
	default:
		return types.VoteNeutral
	}
}
