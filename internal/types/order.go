package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/ourotrade/ouro/pkg/errors"
)

type PurchaseType string

type OrderType string

type OrderStatus string

type TimeInForce string

const (
	PurchaseTypeBuy  PurchaseType = "buy"
	PurchaseTypeSell PurchaseType = "sell"
)

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusRejected        OrderStatus = "rejected"
)

const (
	// TimeInForceDay is the only time-in-force bracket orders accept besides GTC.
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
)

// BracketLeg is a linked take-profit or stop-loss leg of a bracket order.
type BracketLeg struct {
	LimitPrice float64 `json:"limit_price,omitempty" yaml:"limit_price" validate:"gte=0"`
	StopPrice  float64 `json:"stop_price,omitempty" yaml:"stop_price" validate:"gte=0"`
}

// ExecuteOrder is an order to be submitted to the broker. Bracket orders
// carry both a take-profit and a stop-loss leg.
type ExecuteOrder struct {
	ClientOrderID string       `json:"client_order_id" yaml:"client_order_id" validate:"required,uuid"`
	Symbol        string       `json:"symbol" yaml:"symbol" validate:"required"`
	Side          PurchaseType `json:"side" yaml:"side" validate:"required,oneof=buy sell"`
	OrderType     OrderType    `json:"type" yaml:"type" validate:"required,oneof=market limit stop"`
	LimitPrice    float64      `json:"limit_price" yaml:"limit_price" validate:"required,gt=0"`
	Quantity      int64        `json:"qty" yaml:"qty" validate:"required,gt=0"`
	TimeInForce   TimeInForce  `json:"time_in_force" yaml:"time_in_force" validate:"required,oneof=day gtc"`
	// TakeProfit is the take profit leg. Present on bracket orders.
	TakeProfit optional.Option[BracketLeg] `json:"take_profit" yaml:"take_profit"`
	// StopLoss is the stop loss leg. Present on bracket orders.
	StopLoss optional.Option[BracketLeg] `json:"stop_loss" yaml:"stop_loss"`
}

// Order is an order as reported back by the broker. Numeric fields arrive
// as decimal strings on the wire; the gateway converts them.
type Order struct {
	ID            string       `json:"id"`
	ClientOrderID string       `json:"client_order_id"`
	Symbol        string       `json:"symbol"`
	Side          PurchaseType `json:"side"`
	Status        OrderStatus  `json:"status"`
	Quantity      int64        `json:"qty"`
	LimitPrice    float64      `json:"limit_price"`
	SubmittedAt   time.Time    `json:"submitted_at"`
}

// Validate validates the ExecuteOrder struct.
func (eo *ExecuteOrder) Validate() error {
	validate := validator.New()

	if err := validate.Struct(eo); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidExecuteOrder, "invalid execute order", err)
	}

	// Validate take profit if present
	if eo.TakeProfit.IsSome() {
		tp := eo.TakeProfit.Unwrap()
		if tp.LimitPrice <= 0 {
			return errors.New(errors.ErrCodeInvalidTakeProfit, "take profit leg requires a positive limit price")
		}
	}

	// Validate stop loss if present
	if eo.StopLoss.IsSome() {
		sl := eo.StopLoss.Unwrap()
		if sl.StopPrice <= 0 {
			return errors.New(errors.ErrCodeInvalidStopLoss, "stop loss leg requires a positive stop price")
		}
	}

	return nil
}
