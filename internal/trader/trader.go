// Package trader runs the intraday session: it consumes the action feed,
// sizes candidates through the risk engine, submits bracket orders, and
// walks the session through wind-down and liquidation.
package trader

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/ourotrade/ouro/internal/broker"
	"github.com/ourotrade/ouro/internal/feed"
	"github.com/ourotrade/ouro/internal/logger"
	"github.com/ourotrade/ouro/internal/risk"
	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

const (
	// activeTradingCutoffMin ends active trading this many minutes before
	// the close. No new buys after this point, ever.
	activeTradingCutoffMin = 75

	// finalLiquidationCutoffMin starts the full liquidation this many
	// minutes before the close.
	finalLiquidationCutoffMin = 15

	// tradeCapitalDivisor splits session cash into per-trade capital.
	tradeCapitalDivisor = 10

	// bandwagonThreshold is the pending-candidate count at which sizing is
	// damped. Many simultaneous signals usually mean one market-wide move,
	// not many independent opportunities.
	bandwagonThreshold = 10

	// bandwagonFactor scales the per-trade risk cap while bandwagonning.
	bandwagonFactor = 0.3

	// bandwagonPause spaces out submissions while bandwagonning.
	bandwagonPause = 2 * time.Second

	// clockRetryInterval is the pause between clock fetch attempts.
	clockRetryInterval = 10 * time.Second

	// tickInterval paces the trading and wind-down loops.
	tickInterval = time.Minute

	// retryEligibleSuffix marks a failed submission. The ticker stays out
	// of both sets so a later tick can try again.
	retryEligibleSuffix = " - buy order failed; eligible for retry."

	// terminalSkipSuffix marks a logical rejection. The ticker lands in the
	// skip set and is never reconsidered.
	terminalSkipSuffix = "; not eligible for retry."
)

// CloseSource supplies yesterday's closes and the early-liquidation list.
type CloseSource interface {
	YesterdayCloses() (map[string]float64, error)
	EarlySellTickers() ([]string, error)
}

// ReturnSource supplies the historical average return per strategy family.
type ReturnSource interface {
	AverageReturn(family string) (float64, error)
}

// Options are the per-run knobs of a session.
type Options struct {
	// MaxRiskRatio is the per-trade risk cap as a fraction of session cash.
	MaxRiskRatio float64

	// TestMode ignores the market clock entirely; the loop runs until the
	// context ends and never advances past active trading.
	TestMode bool

	// ForceMarketOpen runs exactly one trading pass and then forces the
	// end-of-day sequence, whatever the clock says.
	ForceMarketOpen bool
}

// Session owns the state of one trading day. It is not safe for concurrent
// use; the loop is deliberately single-threaded.
type Session struct {
	gateway broker.Gateway
	engine  *risk.Engine
	returns ReturnSource
	closes  CloseSource
	files   feed.Files
	logger  *logger.Logger
	opts    Options

	phase           types.SessionPhase
	bought          map[string]struct{}
	skipped         map[string]struct{}
	statusOrder     []string
	statusRows      map[string]types.StatusRecord
	cash            float64
	tradeCapital    float64
	yesterdayCloses map[string]float64
	earlySell       []string

	// sleep is swapped out in tests so loops run without wall time.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSession wires a session. State is initialized lazily when trading
// begins, not here.
func NewSession(gw broker.Gateway, returns ReturnSource, closes CloseSource, files feed.Files, log *logger.Logger, opts Options) *Session {
	return &Session{
		gateway:    gw,
		engine:     risk.NewEngine(),
		returns:    returns,
		closes:     closes,
		files:      files,
		logger:     log,
		opts:       opts,
		phase:      types.PhaseAwaitOpen,
		bought:     make(map[string]struct{}),
		skipped:    make(map[string]struct{}),
		statusRows: make(map[string]types.StatusRecord),
		sleep:      sleepCtx,
	}
}

// Phase returns the current session phase.
func (s *Session) Phase() types.SessionPhase {
	return s.phase
}

// Run drives the session from open wait to done. It returns when the day
// is over or the context ends.
func (s *Session) Run(ctx context.Context) error {
	if err := s.awaitOpen(ctx); err != nil {
		return err
	}

	if err := s.beginTrading(ctx); err != nil {
		return err
	}

	if err := s.activeLoop(ctx); err != nil {
		return err
	}

	if s.opts.TestMode {
		// Test mode only ends via context cancellation; there is no
		// end-of-day to run.
		return nil
	}

	if err := s.windDownLoop(ctx); err != nil {
		return err
	}

	s.finalLiquidation(ctx)

	return nil
}

// awaitOpen polls the market clock until the session opens. Clock failures
// are transient and retried indefinitely.
func (s *Session) awaitOpen(ctx context.Context) error {
	if s.opts.TestMode || s.opts.ForceMarketOpen {
		return nil
	}

	for {
		clock, err := s.gateway.GetClock(ctx)
		if err != nil {
			s.logger.Warn("Clock fetch failed, retrying", zap.Error(err))

			if err := s.sleep(ctx, clockRetryInterval); err != nil {
				return err
			}

			continue
		}

		if clock.IsOpen {
			return nil
		}

		s.logger.Info("Market closed, waiting", zap.Time("as_of", clock.Timestamp))

		if err := s.sleep(ctx, tickInterval); err != nil {
			return err
		}
	}
}

// beginTrading snapshots the account and loads the session's read-only
// context. Any failure here aborts the day before a single order goes out.
func (s *Session) beginTrading(ctx context.Context) error {
	if err := feed.Init(s.files); err != nil {
		return err
	}

	account, err := s.gateway.GetAccount(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionInitFailed, "failed to snapshot account", err)
	}

	s.cash = account.TradableCash()
	s.tradeCapital = s.cash / tradeCapitalDivisor

	if s.cash <= 0 {
		return errors.Newf(errors.ErrCodeSessionInitFailed, "no tradable cash: buying power %.2f, multiplier %.0f", account.BuyingPower, account.Multiplier)
	}

	s.yesterdayCloses, err = s.closes.YesterdayCloses()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionInitFailed, "failed to load yesterday closes", err)
	}

	s.earlySell, err = s.closes.EarlySellTickers()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionInitFailed, "failed to load early-sell tickers", err)
	}

	s.advance(types.PhaseActiveTrading)

	s.logger.Info("Trading session started",
		zap.Float64("cash", s.cash),
		zap.Float64("trade_capital", s.tradeCapital),
		zap.Int("known_closes", len(s.yesterdayCloses)),
		zap.Int("early_sell", len(s.earlySell)),
	)

	return nil
}

// activeLoop ticks once per minute until the cutoff before the close.
func (s *Session) activeLoop(ctx context.Context) error {
	for {
		if !s.opts.TestMode && !s.opts.ForceMarketOpen {
			clock, err := s.gateway.GetClock(ctx)
			if err != nil {
				s.logger.Warn("Clock fetch failed, retrying", zap.Error(err))

				if err := s.sleep(ctx, clockRetryInterval); err != nil {
					return err
				}

				continue
			}

			if !clock.IsOpen || clock.MinutesToClose() <= activeTradingCutoffMin {
				return nil
			}
		}

		if err := s.tick(ctx); err != nil {
			return err
		}

		if s.opts.ForceMarketOpen {
			// One forced pass, then straight to the end-of-day sequence.
			return nil
		}

		if err := s.sleepToNextMinute(ctx); err != nil {
			return err
		}
	}
}

// tick processes one pass over the action feed.
func (s *Session) tick(ctx context.Context) error {
	actions, err := feed.ReadActions(s.files.Actions)
	if err != nil {
		// A torn read mid-replace is transient; the next tick rereads.
		s.logger.Warn("Action feed read failed", zap.Error(err))

		return nil
	}

	batch := s.pendingTickers(actions)
	if len(batch) == 0 {
		s.writeOutbound()

		return nil
	}

	factor := 1.0
	pause := time.Duration(0)

	if len(batch) >= bandwagonThreshold {
		factor = bandwagonFactor
		pause = bandwagonPause

		s.logger.Info("Bandwagon damping engaged", zap.Int("pending", len(batch)))
	}

	bar := progressbar.NewOptions(len(batch),
		progressbar.OptionSetDescription("Evaluating candidates"),
		progressbar.OptionShowCount(),
	)

	for _, ticker := range batch {
		if pause > 0 {
			if err := s.sleep(ctx, pause); err != nil {
				return err
			}
		}

		// Refreshed per candidate. Unfilled buys never show up here, which
		// is exactly what lets a bandwagon run past the position cap until
		// fills land.
		openPositions, err := broker.OpenPositionCount(ctx, s.gateway)
		if err != nil {
			s.logger.Warn("Position count failed, candidate deferred",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			_ = bar.Add(1)

			continue
		}

		s.evaluateCandidate(ctx, ticker, actions[ticker], factor, openPositions)
		_ = bar.Add(1)
	}

	_ = bar.Finish()

	s.writeOutbound()

	return nil
}

// pendingTickers returns feed tickers not yet bought or terminally
// skipped, in stable order.
func (s *Session) pendingTickers(actions map[string]types.InboundAction) []string {
	batch := make([]string, 0, len(actions))

	for ticker := range actions {
		if _, ok := s.bought[ticker]; ok {
			continue
		}

		if _, ok := s.skipped[ticker]; ok {
			continue
		}

		batch = append(batch, ticker)
	}

	sort.Strings(batch)

	return batch
}

// evaluateCandidate sizes one ticker and places the order when it clears.
// Outcomes are recorded in the sets and the status table; failures are
// never returned because a single bad candidate must not end the day.
func (s *Session) evaluateCandidate(ctx context.Context, ticker string, action types.InboundAction, factor float64, openPositions int) {
	yClose, ok := s.yesterdayCloses[ticker]
	if !ok {
		s.skipped[ticker] = struct{}{}
		s.record(ticker, action, types.OrderDecision{
			Ticker:   ticker,
			Decision: types.DecisionSkip,
			Reason:   "yesterday's close unavailable" + terminalSkipSuffix,
		})
		s.logger.Warn("No yesterday close for candidate", zap.String("ticker", ticker))

		return
	}

	avgReturn, err := s.returns.AverageReturn(action.StrategyFamily)
	if err != nil {
		s.skipped[ticker] = struct{}{}
		s.record(ticker, action, types.OrderDecision{
			Ticker:   ticker,
			Decision: types.DecisionSkip,
			Reason:   "strategy family not in catalog" + terminalSkipSuffix,
		})
		s.logger.Warn("Unknown strategy family",
			zap.String("ticker", ticker),
			zap.String("family", action.StrategyFamily),
		)

		return
	}

	decision, err := s.engine.Evaluate(risk.Input{
		Ticker:          ticker,
		Price:           action.Price,
		RecentHigh:      action.RecentHigh,
		RecentLow:       action.RecentLow,
		YesterdayClose:  yClose,
		Family:          action.StrategyFamily,
		FamilyAvgReturn: avgReturn,
		Cash:            s.cash,
		TradeCapital:    s.tradeCapital,
		BandwagonFactor: factor,
		OpenPositions:   openPositions,
		MaxRiskRatio:    s.opts.MaxRiskRatio,
	})
	if err != nil {
		s.skipped[ticker] = struct{}{}
		s.record(ticker, action, types.OrderDecision{
			Ticker:   ticker,
			Decision: types.DecisionSkip,
			Reason:   "invalid price context" + terminalSkipSuffix,
		})
		s.logger.Warn("Risk evaluation failed", zap.String("ticker", ticker), zap.Error(err))

		return
	}

	if decision.Decision == types.DecisionSkip {
		s.skipped[ticker] = struct{}{}
		decision.Reason += terminalSkipSuffix
		s.record(ticker, action, decision)

		return
	}

	if err := s.submitBuy(ctx, ticker, decision); err != nil {
		// The ticker stays out of both sets; a later tick retries. The row
		// records a skip because no order is actually working.
		decision.Decision = types.DecisionSkip
		decision.Reason += retryEligibleSuffix
		s.record(ticker, action, decision)
		s.logger.Warn("Order submission failed", zap.String("ticker", ticker), zap.Error(err))

		return
	}

	s.bought[ticker] = struct{}{}
	s.record(ticker, action, decision)
	s.logger.Info("Bracket order placed",
		zap.String("ticker", ticker),
		zap.Int64("shares", decision.Shares),
		zap.Float64("buy_limit", decision.BuyLimit),
		zap.Float64("ceiling", decision.CeilingPrice),
		zap.Float64("floor", decision.FloorPrice),
	)
}

func (s *Session) submitBuy(ctx context.Context, ticker string, decision types.OrderDecision) error {
	order := types.ExecuteOrder{
		ClientOrderID: uuid.NewString(),
		Symbol:        ticker,
		Side:          types.PurchaseTypeBuy,
		OrderType:     types.OrderTypeLimit,
		LimitPrice:    decision.BuyLimit,
		Quantity:      decision.Shares,
		TimeInForce:   types.TimeInForceDay,
		TakeProfit:    optional.Some(types.BracketLeg{LimitPrice: decision.CeilingPrice}),
		StopLoss:      optional.Some(types.BracketLeg{StopPrice: decision.FloorPrice}),
	}

	_, err := s.gateway.SubmitBracketOrder(ctx, order)

	return err
}

// record stores the latest status row for a ticker. Rows keep their first
// appearance order across rewrites.
func (s *Session) record(ticker string, action types.InboundAction, decision types.OrderDecision) {
	if _, seen := s.statusRows[ticker]; !seen {
		s.statusOrder = append(s.statusOrder, ticker)
	}

	portfolioRiskPct := 0.0
	if s.cash > 0 {
		portfolioRiskPct = decision.TradeRiskAmt / s.cash
	}

	s.statusRows[ticker] = types.StatusRecord{
		DateTime:         time.Now(),
		Ticker:           ticker,
		Cash:             s.cash,
		TradeCapital:     s.tradeCapital,
		BuyPrice:         action.Price,
		BuyLimit:         decision.BuyLimit,
		MaxRiskAmt:       decision.MaxRiskAmt,
		TradeRiskAmt:     decision.TradeRiskAmt,
		TradeRiskPct:     decision.TradeRiskPct,
		PortfolioRiskPct: portfolioRiskPct,
		FamilyReturnPct:  decision.FamilyReturn,
		TradeReturnPct:   decision.TradeReturn,
		OrderShares:      decision.Shares,
		RecentHigh:       action.RecentHigh,
		RecentLow:        action.RecentLow,
		FloorPrice:       decision.FloorPrice,
		CeilingPrice:     decision.CeilingPrice,
		Decision:         decision.Decision,
		Reason:           decision.Reason,
	}
}

// writeOutbound rewrites both exchange files wholesale. Failures are
// logged only; the next tick's rewrite supersedes a torn or missed write.
func (s *Session) writeOutbound() {
	records := make([]types.StatusRecord, 0, len(s.statusOrder))
	for _, ticker := range s.statusOrder {
		records = append(records, s.statusRows[ticker])
	}

	if err := feed.WriteStatus(s.files.Status, records); err != nil {
		s.logger.Warn("Status write failed", zap.Error(err))
	}

	if err := feed.WriteBuySkip(s.files.BuySkip, s.bought, s.skipped); err != nil {
		s.logger.Warn("Buy/skip snapshot write failed", zap.Error(err))
	}
}

// windDownLoop liquidates the early-sell list until the final cutoff.
func (s *Session) windDownLoop(ctx context.Context) error {
	s.advance(types.PhaseEarlyWindDown)

	if s.opts.ForceMarketOpen {
		return nil
	}

	for {
		clock, err := s.gateway.GetClock(ctx)
		if err != nil {
			s.logger.Warn("Clock fetch failed, retrying", zap.Error(err))

			if err := s.sleep(ctx, clockRetryInterval); err != nil {
				return err
			}

			continue
		}

		if clock.MinutesToClose() <= finalLiquidationCutoffMin {
			return nil
		}

		s.liquidateEarlySells(ctx)

		if err := s.sleep(ctx, tickInterval); err != nil {
			return err
		}
	}
}

// liquidateEarlySells cancels open orders and closes positions for the
// early-sell tickers. Best effort; each failure is logged and retried on
// the next pass.
func (s *Session) liquidateEarlySells(ctx context.Context) {
	if len(s.earlySell) == 0 {
		return
	}

	early := make(map[string]struct{}, len(s.earlySell))
	for _, ticker := range s.earlySell {
		early[ticker] = struct{}{}
	}

	orders, err := s.gateway.ListOpenOrders(ctx)
	if err != nil {
		s.logger.Warn("Open order list failed", zap.Error(err))
	} else {
		for _, order := range orders {
			if _, ok := early[order.Symbol]; !ok {
				continue
			}

			if err := s.gateway.CancelOrder(ctx, order.ID); err != nil {
				s.logger.Warn("Order cancel failed",
					zap.String("ticker", order.Symbol),
					zap.String("order_id", order.ID),
					zap.Error(err),
				)
			}
		}
	}

	positions, err := s.gateway.ListPositions(ctx)
	if err != nil {
		s.logger.Warn("Position list failed", zap.Error(err))

		return
	}

	for _, position := range positions {
		if _, ok := early[position.Symbol]; !ok {
			continue
		}

		if err := s.gateway.ClosePosition(ctx, position.Symbol); err != nil {
			s.logger.Warn("Position close failed",
				zap.String("ticker", position.Symbol),
				zap.Error(err),
			)
		}
	}
}

// finalLiquidation flattens the book. Failures are logged, not returned;
// there is nothing left to do with them this close to the bell.
func (s *Session) finalLiquidation(ctx context.Context) {
	s.advance(types.PhaseFinalLiquidation)

	if err := s.gateway.CancelAllOrders(ctx); err != nil {
		s.logger.Error("Cancel-all failed", zap.Error(err))
	}

	if err := s.gateway.CloseAllPositions(ctx); err != nil {
		s.logger.Error("Close-all failed", zap.Error(err))
	}

	s.writeOutbound()

	s.advance(types.PhaseDone)
	s.logger.Info("Session complete",
		zap.Int("bought", len(s.bought)),
		zap.Int("skipped", len(s.skipped)),
	)
}

// advance moves the phase forward. Regressions are a bug and are refused.
func (s *Session) advance(next types.SessionPhase) {
	if !s.phase.Before(next) {
		s.logger.Error("Refusing phase regression",
			zap.String("from", string(s.phase)),
			zap.String("to", string(next)),
		)

		return
	}

	s.phase = next
	s.logger.Info("Phase change", zap.String("phase", string(next)))
}

// sleepToNextMinute aligns the next tick to the minute boundary.
func (s *Session) sleepToNextMinute(ctx context.Context) error {
	now := time.Now()
	next := now.Truncate(time.Minute).Add(time.Minute)

	return s.sleep(ctx, next.Sub(now))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeInvalidPhase, "session interrupted", ctx.Err())
	case <-timer.C:
		return nil
	}
}
