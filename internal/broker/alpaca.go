package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ourotrade/ouro/internal/logger"
	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

const defaultRequestTimeout = 30 * time.Second

// AlpacaConfig configures the Alpaca REST gateway.
type AlpacaConfig struct {
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	KeyID     string `yaml:"key_id" validate:"required"`
	SecretKey string `yaml:"secret_key" validate:"required"`
}

// AlpacaGateway implements Gateway over the Alpaca v2 REST API. Numeric
// fields arrive as decimal strings and are parsed before conversion.
type AlpacaGateway struct {
	config AlpacaConfig
	client *http.Client
	logger *logger.Logger
}

// NewAlpacaGateway creates a gateway against the configured Alpaca
// environment (paper or live, depending on BaseURL).
func NewAlpacaGateway(config AlpacaConfig, log *logger.Logger) *AlpacaGateway {
	return &AlpacaGateway{
		config: config,
		client: &http.Client{Timeout: defaultRequestTimeout},
		logger: log,
	}
}

// Wire payloads. Alpaca serializes numbers as strings; decimal.Decimal
// keeps the parse exact before converting to float64 domain types.
type wireOrder struct {
	ID            string          `json:"id"`
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Status        string          `json:"status"`
	Qty           decimal.Decimal `json:"qty"`
	LimitPrice    decimal.Decimal `json:"limit_price"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

type wirePosition struct {
	Symbol       string          `json:"symbol"`
	Qty          decimal.Decimal `json:"qty"`
	AvgEntry     decimal.Decimal `json:"avg_entry_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

type wireAccount struct {
	Cash        decimal.Decimal `json:"cash"`
	BuyingPower decimal.Decimal `json:"buying_power"`
	Multiplier  decimal.Decimal `json:"multiplier"`
}

type wireClock struct {
	Timestamp time.Time `json:"timestamp"`
	IsOpen    bool      `json:"is_open"`
	NextClose time.Time `json:"next_close"`
}

type bracketLegPayload struct {
	LimitPrice string `json:"limit_price,omitempty"`
	StopPrice  string `json:"stop_price,omitempty"`
}

type orderPayload struct {
	ClientOrderID string             `json:"client_order_id"`
	Symbol        string             `json:"symbol"`
	Side          string             `json:"side"`
	Type          string             `json:"type"`
	LimitPrice    string             `json:"limit_price"`
	Qty           string             `json:"qty"`
	TimeInForce   string             `json:"time_in_force"`
	OrderClass    string             `json:"order_class,omitempty"`
	TakeProfit    *bracketLegPayload `json:"take_profit,omitempty"`
	StopLoss      *bracketLegPayload `json:"stop_loss,omitempty"`
}

// SubmitBracketOrder implements Gateway.
func (g *AlpacaGateway) SubmitBracketOrder(ctx context.Context, order types.ExecuteOrder) (types.Order, error) {
	if err := order.Validate(); err != nil {
		return types.Order{}, err
	}

	payload := orderPayload{
		ClientOrderID: order.ClientOrderID,
		Symbol:        order.Symbol,
		Side:          string(order.Side),
		Type:          string(order.OrderType),
		LimitPrice:    decimal.NewFromFloat(order.LimitPrice).String(),
		Qty:           fmt.Sprintf("%d", order.Quantity),
		TimeInForce:   string(order.TimeInForce),
	}

	if order.TakeProfit.IsSome() {
		payload.OrderClass = "bracket"
		tp := order.TakeProfit.Unwrap()
		payload.TakeProfit = &bracketLegPayload{
			LimitPrice: decimal.NewFromFloat(tp.LimitPrice).String(),
		}
	}

	if order.StopLoss.IsSome() {
		payload.OrderClass = "bracket"
		sl := order.StopLoss.Unwrap()
		payload.StopLoss = &bracketLegPayload{
			StopPrice: decimal.NewFromFloat(sl.StopPrice).String(),
		}
	}

	var wire wireOrder
	if err := g.do(ctx, http.MethodPost, "/v2/orders", payload, &wire); err != nil {
		return types.Order{}, errors.Wrapf(errors.ErrCodeOrderFailed, err, "failed to submit bracket order for %s", order.Symbol)
	}

	g.logger.Debug("Bracket order submitted",
		zap.String("symbol", order.Symbol),
		zap.String("order_id", wire.ID),
		zap.Int64("qty", order.Quantity),
		zap.Float64("limit", order.LimitPrice),
	)

	return wire.toOrder(), nil
}

// CancelOrder implements Gateway.
func (g *AlpacaGateway) CancelOrder(ctx context.Context, orderID string) error {
	if err := g.do(ctx, http.MethodDelete, "/v2/orders/"+url.PathEscape(orderID), nil, nil); err != nil {
		return errors.Wrapf(errors.ErrCodeOrderCancelFailed, err, "failed to cancel order %s", orderID)
	}

	return nil
}

// CancelAllOrders implements Gateway.
func (g *AlpacaGateway) CancelAllOrders(ctx context.Context) error {
	if err := g.do(ctx, http.MethodDelete, "/v2/orders", nil, nil); err != nil {
		return errors.Wrap(errors.ErrCodeOrderCancelFailed, "failed to cancel all orders", err)
	}

	return nil
}

// ClosePosition implements Gateway.
func (g *AlpacaGateway) ClosePosition(ctx context.Context, symbol string) error {
	if err := g.do(ctx, http.MethodDelete, "/v2/positions/"+url.PathEscape(symbol), nil, nil); err != nil {
		return errors.Wrapf(errors.ErrCodePositionNotFound, err, "failed to close position %s", symbol)
	}

	return nil
}

// CloseAllPositions implements Gateway.
func (g *AlpacaGateway) CloseAllPositions(ctx context.Context) error {
	if err := g.do(ctx, http.MethodDelete, "/v2/positions", nil, nil); err != nil {
		return errors.Wrap(errors.ErrCodePositionNotFound, "failed to close all positions", err)
	}

	return nil
}

// ListOpenOrders implements Gateway.
func (g *AlpacaGateway) ListOpenOrders(ctx context.Context) ([]types.Order, error) {
	var wires []wireOrder
	if err := g.do(ctx, http.MethodGet, "/v2/orders?status=open&limit=500", nil, &wires); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBrokerResponse, "failed to list open orders", err)
	}

	orders := make([]types.Order, 0, len(wires))
	for _, w := range wires {
		orders = append(orders, w.toOrder())
	}

	return orders, nil
}

// ListPositions implements Gateway.
func (g *AlpacaGateway) ListPositions(ctx context.Context) ([]types.Position, error) {
	var wires []wirePosition
	if err := g.do(ctx, http.MethodGet, "/v2/positions", nil, &wires); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBrokerResponse, "failed to list positions", err)
	}

	positions := make([]types.Position, 0, len(wires))
	for _, w := range wires {
		positions = append(positions, types.Position{
			Symbol:       w.Symbol,
			Quantity:     w.Qty.IntPart(),
			AvgEntry:     w.AvgEntry.InexactFloat64(),
			MarketValue:  w.MarketValue.InexactFloat64(),
			CurrentPrice: w.CurrentPrice.InexactFloat64(),
		})
	}

	return positions, nil
}

// GetAccount implements Gateway.
func (g *AlpacaGateway) GetAccount(ctx context.Context) (types.Account, error) {
	var wire wireAccount
	if err := g.do(ctx, http.MethodGet, "/v2/account", nil, &wire); err != nil {
		return types.Account{}, errors.Wrap(errors.ErrCodeAccountFailed, "failed to fetch account", err)
	}

	return types.Account{
		Cash:        wire.Cash.InexactFloat64(),
		BuyingPower: wire.BuyingPower.InexactFloat64(),
		Multiplier:  wire.Multiplier.InexactFloat64(),
	}, nil
}

// GetClock implements Gateway.
func (g *AlpacaGateway) GetClock(ctx context.Context) (types.MarketClock, error) {
	var wire wireClock
	if err := g.do(ctx, http.MethodGet, "/v2/clock", nil, &wire); err != nil {
		return types.MarketClock{}, errors.Wrap(errors.ErrCodeClockUnavailable, "failed to fetch market clock", err)
	}

	return types.MarketClock{
		Timestamp: wire.Timestamp,
		IsOpen:    wire.IsOpen,
		NextClose: wire.NextClose,
	}, nil
}

func (w wireOrder) toOrder() types.Order {
	return types.Order{
		ID:            w.ID,
		ClientOrderID: w.ClientOrderID,
		Symbol:        w.Symbol,
		Side:          types.PurchaseType(w.Side),
		Status:        types.OrderStatus(w.Status),
		Quantity:      w.Qty.IntPart(),
		LimitPrice:    w.LimitPrice.InexactFloat64(),
		SubmittedAt:   w.SubmittedAt,
	}
}

// do runs one REST call and decodes the response into out when non-nil.
func (g *AlpacaGateway) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("APCA-API-KEY-ID", g.config.KeyID)
	req.Header.Set("APCA-API-SECRET-KEY", g.config.SecretKey)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
