// Package history fills the bar store from Polygon aggregates. The trader
// only needs yesterday's closes, but the fetcher keeps full daily and
// minute history so the signal producer works off the same store.
package history

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/ourotrade/ouro/internal/logger"
	"github.com/ourotrade/ouro/internal/store"
	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

// retryInterval is the pause between fetch attempts for one ticker.
// Attempts repeat until the fetch succeeds or the context ends.
const retryInterval = 10 * time.Second

// Timespan selects the aggregate resolution to fetch.
type Timespan string

const (
	TimespanDay    Timespan = "day"
	TimespanMinute Timespan = "minute"
)

// Fetcher downloads aggregates and persists them.
type Fetcher struct {
	client *polygon.Client
	store  *store.Store
	logger *logger.Logger
}

// NewFetcher creates a fetcher. The API key is required; everything else
// about the Polygon client is defaulted.
func NewFetcher(apiKey string, st *store.Store, log *logger.Logger) (*Fetcher, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return &Fetcher{
		client: polygon.New(apiKey),
		store:  st,
		logger: log,
	}, nil
}

// FetchAll downloads the given timespan for every ticker, retrying each
// ticker until it succeeds. A cancelled context is the only way out of the
// retry loop.
func (f *Fetcher) FetchAll(ctx context.Context, tickers []string, from, to time.Time, span Timespan) error {
	bar := progressbar.NewOptions(len(tickers),
		progressbar.OptionSetDescription("Fetching history"),
		progressbar.OptionShowCount(),
	)

	for _, ticker := range tickers {
		if err := f.fetchWithRetry(ctx, ticker, from, to, span); err != nil {
			return err
		}

		if err := bar.Add(1); err != nil {
			f.logger.Debug("Progress bar update failed", zap.Error(err))
		}
	}

	if err := bar.Finish(); err != nil {
		f.logger.Debug("Progress bar finish failed", zap.Error(err))
	}

	return nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, ticker string, from, to time.Time, span Timespan) error {
	for {
		err := f.fetchOne(ctx, ticker, from, to, span)
		if err == nil {
			return nil
		}

		if !errors.IsTransient(err) {
			return err
		}

		f.logger.Warn("Fetch failed, retrying",
			zap.String("ticker", ticker),
			zap.Duration("retry_in", retryInterval),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return errors.Wrapf(errors.ErrCodeFetchFailed, ctx.Err(), "fetch of %s abandoned", ticker)
		case <-time.After(retryInterval):
		}
	}
}

func (f *Fetcher) fetchOne(ctx context.Context, ticker string, from, to time.Time, span Timespan) error {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Timespan(span),
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithLimit(50000)

	iter := f.client.ListAggs(ctx, params)

	var bars []types.DailyBar

	for iter.Next() {
		agg := iter.Item()
		barTime := time.Time(agg.Timestamp)

		if span == TimespanDay {
			barTime = store.Midnight(barTime)
		}

		bars = append(bars, types.DailyBar{
			Ticker:    ticker,
			TradeDate: barTime,
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeFetchFailed, err, "failed to fetch %s aggregates for %s", span, ticker)
	}

	if len(bars) == 0 {
		f.logger.Warn("No aggregates returned", zap.String("ticker", ticker))

		return nil
	}

	var err error

	switch span {
	case TimespanDay:
		err = f.store.WriteDailyBars(bars)
	case TimespanMinute:
		err = f.store.WriteMinuteBars(bars)
	default:
		err = errors.Newf(errors.ErrCodeInvalidParameter, "unsupported timespan %q", span)
	}

	if err != nil {
		return err
	}

	f.logger.Info(fmt.Sprintf("Stored %d %s bars", len(bars), span), zap.String("ticker", ticker))

	return nil
}
