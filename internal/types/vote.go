package types

import (
	"time"

	"github.com/ourotrade/ouro/pkg/errors"
)

// Vote is the tri-state classification a single indicator family casts for
// one bar.
type Vote int

const (
	VoteSell    Vote = -1
	VoteNeutral Vote = 0
	VoteBuy     Vote = 1
)

// IndicatorFamily identifies one of the tracked indicator families.
type IndicatorFamily string

const (
	FamilyAroon    IndicatorFamily = "aroon_oscillator"
	FamilyBOP      IndicatorFamily = "balance_of_power"
	FamilyCCI      IndicatorFamily = "cci"
	FamilyCMO      IndicatorFamily = "cmo"
	FamilyMACD     IndicatorFamily = "macd_histogram"
	FamilyPPO      IndicatorFamily = "ppo"
	FamilyRSI      IndicatorFamily = "rsi"
	FamilyStoch    IndicatorFamily = "stochastic"
	FamilyStochRSI IndicatorFamily = "stochastic_rsi"
	FamilyTRIX     IndicatorFamily = "trix"
	FamilyADOSC    IndicatorFamily = "chaikin_ad_oscillator"
)

// VoteFamilies is the fixed family order used to build strategy IDs.
// Changing this order changes the meaning of every stored strategy ID.
var VoteFamilies = [11]IndicatorFamily{
	FamilyAroon,
	FamilyBOP,
	FamilyCCI,
	FamilyCMO,
	FamilyMACD,
	FamilyPPO,
	FamilyRSI,
	FamilyStoch,
	FamilyStochRSI,
	FamilyTRIX,
	FamilyADOSC,
}

// StrategyIDLength is the fixed length of an encoded strategy ID.
const StrategyIDLength = len(VoteFamilies)

// voteChars maps a vote to its strategy-ID character: Sell='A', Neutral='B', Buy='C'.
var voteChars = map[Vote]byte{
	VoteSell:    'A',
	VoteNeutral: 'B',
	VoteBuy:     'C',
}

var charVotes = map[byte]Vote{
	'A': VoteSell,
	'B': VoteNeutral,
	'C': VoteBuy,
}

// VoteVector is one vote per tracked family, in VoteFamilies order.
type VoteVector [StrategyIDLength]Vote

// Classified is one classified bar: the vote vector plus its encoded
// strategy ID.
type Classified struct {
	Time       time.Time  `csv:"time" json:"time"`
	Votes      VoteVector `csv:"-" json:"votes"`
	StrategyID string     `csv:"strategy_id" json:"strategy_id"`
}

// EncodeVotes encodes a vote vector into its 11-character strategy ID.
// Votes outside {-1, 0, 1} are rejected rather than silently mapped.
func EncodeVotes(votes VoteVector) (string, error) {
	id := make([]byte, StrategyIDLength)

	for i, v := range votes {
		ch, ok := voteChars[v]
		if !ok {
			return "", errors.Newf(errors.ErrCodeInvalidVote, "vote %d at position %d (%s) is outside {-1,0,1}", v, i, VoteFamilies[i])
		}

		id[i] = ch
	}

	return string(id), nil
}

// DecodeStrategyID decodes an 11-character strategy ID back into its vote
// vector.
func DecodeStrategyID(id string) (VoteVector, error) {
	var votes VoteVector

	if len(id) != StrategyIDLength {
		return votes, errors.Newf(errors.ErrCodeInvalidStrategyID, "strategy ID %q has length %d, want %d", id, len(id), StrategyIDLength)
	}

	for i := 0; i < StrategyIDLength; i++ {
		v, ok := charVotes[id[i]]
		if !ok {
			return votes, errors.Newf(errors.ErrCodeInvalidStrategyID, "strategy ID %q has invalid character %q at position %d", id, id[i], i)
		}

		votes[i] = v
	}

	return votes, nil
}
