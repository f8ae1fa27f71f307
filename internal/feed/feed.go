// Package feed handles the file exchange with the signal producer: the
// inbound action feed and the outbound status and buy/skip snapshots.
package feed

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"sort"
	"strconv"

	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

// Files groups the exchange file paths for one session.
type Files struct {
	Actions string `yaml:"actions" validate:"required"`
	Status  string `yaml:"status" validate:"required"`
	BuySkip string `yaml:"buy_skip" validate:"required"`
}

// Init truncates the outbound files so a new session never starts with
// stale rows from a previous day. Failure here is fatal.
func Init(files Files) error {
	for _, path := range []string{files.Status, files.BuySkip} {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeStatusInitFailed, err, "failed to initialize outbound file %s", path)
		}

		if err := f.Close(); err != nil {
			return errors.Wrapf(errors.ErrCodeStatusInitFailed, err, "failed to close outbound file %s", path)
		}
	}

	return nil
}

// ReadActions reads the full action feed, keyed by ticker. The producer
// replaces the file wholesale, so each read is a complete snapshot; an
// empty or missing file means no candidates this tick.
func ReadActions(path string) (map[string]types.InboundAction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]types.InboundAction{}, nil
		}

		return nil, errors.Wrapf(errors.ErrCodeFeedReadFailed, err, "failed to read action feed %s", path)
	}

	if len(data) == 0 {
		return map[string]types.InboundAction{}, nil
	}

	actions := make(map[string]types.InboundAction)
	if err := json.Unmarshal(data, &actions); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeedReadFailed, err, "failed to decode action feed %s", path)
	}

	return actions, nil
}

// statusHeader fixes the column order of the status table.
var statusHeader = []string{
	"DateTime", "Ticker", "Cash", "TradeCapital", "BuyPrice", "BuyLimit",
	"MaxRiskAmt", "TradeRiskAmt", "TradeRiskPct", "PortfolioRiskPct",
	"FamilyReturnPct", "TradeReturnPct", "OrderShares", "RecentHigh",
	"RecentLow", "FloorPrice", "CeilingPrice", "Decision", "Reason",
}

// WriteStatus rewrites the status table wholesale. Readers always see the
// complete current state, never a partial append.
func WriteStatus(path string, records []types.StatusRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeFeedWriteFailed, err, "failed to create status file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(statusHeader); err != nil {
		return errors.Wrap(errors.ErrCodeFeedWriteFailed, "failed to write status header", err)
	}

	for _, r := range records {
		row := []string{
			r.DateTime.Format("2006-01-02 15:04:05"),
			r.Ticker,
			formatFloat(r.Cash),
			formatFloat(r.TradeCapital),
			formatFloat(r.BuyPrice),
			formatFloat(r.BuyLimit),
			formatFloat(r.MaxRiskAmt),
			formatFloat(r.TradeRiskAmt),
			formatFloat(r.TradeRiskPct),
			formatFloat(r.PortfolioRiskPct),
			formatFloat(r.FamilyReturnPct),
			formatFloat(r.TradeReturnPct),
			strconv.FormatInt(r.OrderShares, 10),
			formatFloat(r.RecentHigh),
			formatFloat(r.RecentLow),
			formatFloat(r.FloorPrice),
			formatFloat(r.CeilingPrice),
			string(r.Decision),
			r.Reason,
		}

		if err := w.Write(row); err != nil {
			return errors.Wrapf(errors.ErrCodeFeedWriteFailed, err, "failed to write status row for %s", r.Ticker)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeFeedWriteFailed, "failed to flush status file", err)
	}

	return nil
}

// WriteBuySkip rewrites the buy/skip snapshot. Tickers are emitted sorted
// so consecutive snapshots diff cleanly.
func WriteBuySkip(path string, bought, skipped map[string]struct{}) error {
	snapshot := types.BuySkipSnapshot{
		Bought: sortedKeys(bought),
		Skip:   sortedKeys(skipped),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFeedWriteFailed, "failed to encode buy/skip snapshot", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeFeedWriteFailed, err, "failed to write buy/skip snapshot %s", path)
	}

	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
