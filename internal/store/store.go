// Package store persists daily and minute OHLCV bars in DuckDB and answers
// the yesterday-close lookup the risk engine depends on.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/ourotrade/ouro/internal/logger"
	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

const (
	dailyTable  = "ohlcv_day"
	minuteTable = "ohlcv_minute"
)

// Store is a DuckDB-backed bar store.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// Open opens (or creates) the store at the given database path.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreUnavailable, err, "failed to open duckdb store at %s", path)
	}

	s := &Store{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := s.createTables(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) createTables() error {
	for _, table := range []string{dailyTable, minuteTable} {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				ticker VARCHAR NOT NULL,
				bar_time TIMESTAMP NOT NULL,
				open DOUBLE NOT NULL,
				high DOUBLE NOT NULL,
				low DOUBLE NOT NULL,
				close DOUBLE NOT NULL,
				volume DOUBLE NOT NULL
			);
		`, table)

		if _, err := s.db.Exec(query); err != nil {
			return errors.Wrapf(errors.ErrCodeStoreUnavailable, err, "failed to create table %s", table)
		}
	}

	return nil
}

// WriteDailyBars replaces and inserts daily bars, one transaction per call.
func (s *Store) WriteDailyBars(bars []types.DailyBar) error {
	return s.writeBars(dailyTable, bars)
}

// WriteMinuteBars replaces and inserts minute bars.
func (s *Store) WriteMinuteBars(bars []types.DailyBar) error {
	return s.writeBars(minuteTable, bars)
}

func (s *Store) writeBars(table string, bars []types.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	// Delete-then-insert keeps re-ingestion idempotent.
	deleteSQL, deleteArgs, err := s.sq.Delete(table).
		Where(squirrel.Eq{"ticker": bars[0].Ticker}).
		Where(squirrel.Expr("bar_time >= ?", bars[0].TradeDate)).
		Where(squirrel.Expr("bar_time <= ?", bars[len(bars)-1].TradeDate)).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build delete query", err)
	}

	if _, err := tx.Exec(deleteSQL, deleteArgs...); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to clear existing rows in %s", table)
	}

	insert := s.sq.Insert(table).
		Columns("ticker", "bar_time", "open", "high", "low", "close", "volume")

	for _, b := range bars {
		insert = insert.Values(b.Ticker, b.TradeDate, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	insertSQL, insertArgs, err := insert.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build insert query", err)
	}

	if _, err := tx.Exec(insertSQL, insertArgs...); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to insert bars into %s", table)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit bar write", err)
	}

	s.logger.Debug("Bars written",
		zap.String("table", table),
		zap.String("ticker", bars[0].Ticker),
		zap.Int("count", len(bars)),
	)

	return nil
}

// YesterdayCloses returns every ticker's close from the trading day before
// the most recent one in the store.
func (s *Store) YesterdayCloses() (map[string]float64, error) {
	query, args, err := s.sq.Select("ticker", "close").
		From(dailyTable).
		Where(squirrel.Expr(fmt.Sprintf(
			"CAST(bar_time AS DATE) = (SELECT max(CAST(bar_time AS DATE)) - INTERVAL 1 DAY FROM %s)", dailyTable))).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build closes query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query yesterday closes", err)
	}
	defer rows.Close()

	closes := make(map[string]float64)

	for rows.Next() {
		var (
			ticker string
			close  float64
		)

		if err := rows.Scan(&ticker, &close); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan close row", err)
		}

		closes[ticker] = close
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate close rows", err)
	}

	return closes, nil
}

// EarlySellTickers returns tickers flagged for early liquidation in the
// ticker_statistics table, if it exists. A missing table yields an empty
// list rather than an error so fresh stores work out of the box.
func (s *Store) EarlySellTickers() ([]string, error) {
	exists := 0
	if err := s.db.QueryRow(
		"SELECT count(*) FROM information_schema.tables WHERE table_name = 'ticker_statistics'",
	).Scan(&exists); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to probe ticker_statistics", err)
	}

	if exists == 0 {
		return nil, nil
	}

	query, args, err := s.sq.Select("ticker").
		From("ticker_statistics").
		Where(squirrel.Eq{"sellwhen": "Early"}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build early-sell query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query early-sell tickers", err)
	}
	defer rows.Close()

	var tickers []string

	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan early-sell row", err)
		}

		tickers = append(tickers, ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate early-sell rows", err)
	}

	return tickers, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Midnight truncates t to its date. Used when converting minute bars to
// daily rows.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
