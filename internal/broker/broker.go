// Package broker defines the gateway to the order broker and its session
// clock.
package broker

import (
	"context"

	"github.com/ourotrade/ouro/internal/types"
)

// Gateway is the broker surface the trader depends on. All calls are
// synchronous; the session loop blocks on them by design.
type Gateway interface {
	// SubmitBracketOrder places a limit entry with linked take-profit and
	// stop-loss legs.
	SubmitBracketOrder(ctx context.Context, order types.ExecuteOrder) (types.Order, error)
	// CancelOrder cancels a single open order by broker ID.
	CancelOrder(ctx context.Context, orderID string) error
	// CancelAllOrders cancels every open order.
	CancelAllOrders(ctx context.Context) error
	// ClosePosition liquidates the position in one symbol.
	ClosePosition(ctx context.Context, symbol string) error
	// CloseAllPositions liquidates every open position.
	CloseAllPositions(ctx context.Context) error
	// ListOpenOrders returns orders not yet filled or cancelled.
	ListOpenOrders(ctx context.Context) ([]types.Order, error)
	// ListPositions returns current holdings.
	ListPositions(ctx context.Context) ([]types.Position, error)
	// GetAccount returns the account snapshot.
	GetAccount(ctx context.Context) (types.Account, error)
	// GetClock returns the exchange session clock.
	GetClock(ctx context.Context) (types.MarketClock, error)
}

// OpenPositionCount returns the number of held positions. Pending orders
// are deliberately not counted.
func OpenPositionCount(ctx context.Context, gw Gateway) (int, error) {
	positions, err := gw.ListPositions(ctx)
	if err != nil {
		return 0, err
	}

	return len(positions), nil
}
