package binance

import (
	"github.com/shopspring/decimal"
)

// OrderSide 下单方向。
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderType 订单类型。
type OrderType string

const (
	TypeMarket     OrderType = "MARKET"
	TypeLimit      OrderType = "LIMIT"
	TypeStopMarket OrderType = "STOP_MARKET"
)

// TimeInForce 订单有效方式。
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// VenueStatus 交易所返回的原始订单状态。
type VenueStatus string

const (
	StatusNew             VenueStatus = "NEW"
	StatusPartiallyFilled VenueStatus = "PARTIALLY_FILLED"
	StatusFilled          VenueStatus = "FILLED"
	StatusCanceled        VenueStatus = "CANCELED"
	StatusRejected        VenueStatus = "REJECTED"
	StatusExpired         VenueStatus = "EXPIRED"
	StatusNewInsurance    VenueStatus = "NEW_INSURANCE"
	StatusNewADL          VenueStatus = "NEW_ADL"
)

// OrderState 归一化后的订单状态。
type OrderState string

const (
	StatePending  OrderState = "pending"
	StateFinished OrderState = "finished"
	StateUnknown  OrderState = "unknown"
)

// State 将交易所状态映射为固定状态机：
// NEW/PARTIALLY_FILLED → pending；FILLED/CANCELED/REJECTED/EXPIRED → finished；
// ADL/保险基金状态在调用方视角下仍属未完结 → pending。
func (s VenueStatus) State() OrderState {
	switch s {
	case StatusNew, StatusPartiallyFilled:
		return StatePending
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return StateFinished
	case StatusNewInsurance, StatusNewADL:
		return StatePending
	default:
		return StateUnknown
	}
}

// PlaceOrder 下单请求参数。
// 字段声明顺序就是签名序列化顺序，改动顺序会使签名失效。
type PlaceOrder struct {
	Symbol          string
	Side            OrderSide
	Type            OrderType
	ReduceOnly      *bool
	Quantity        *decimal.Decimal
	Price           *decimal.Decimal
	NewClientID     string
	StopPrice       *decimal.Decimal
	ClosePosition   *bool
	ActivationPrice *decimal.Decimal
	CallbackRate    *decimal.Decimal
	TimeInForce     TimeInForce
	WorkingType     string
	PriceProtect    string
}

// Params 按声明顺序展开为有序参数集，空字段跳过。
func (p PlaceOrder) Params() []Param {
	params := make([]Param, 0, 14)
	params = append(params,
		Param{Key: "symbol", Value: p.Symbol},
		Param{Key: "side", Value: string(p.Side)},
		Param{Key: "type", Value: string(p.Type)},
	)
	if p.ReduceOnly != nil {
		params = append(params, Param{Key: "reduceOnly", Value: boolValue(*p.ReduceOnly)})
	}
	if p.Quantity != nil {
		params = append(params, Param{Key: "quantity", Value: p.Quantity.String()})
	}
	if p.Price != nil {
		params = append(params, Param{Key: "price", Value: p.Price.String()})
	}
	if p.NewClientID != "" {
		params = append(params, Param{Key: "newClientOrderId", Value: p.NewClientID})
	}
	if p.StopPrice != nil {
		params = append(params, Param{Key: "stopPrice", Value: p.StopPrice.String()})
	}
	if p.ClosePosition != nil {
		params = append(params, Param{Key: "closePosition", Value: boolValue(*p.ClosePosition)})
	}
	if p.ActivationPrice != nil {
		params = append(params, Param{Key: "activationPrice", Value: p.ActivationPrice.String()})
	}
	if p.CallbackRate != nil {
		params = append(params, Param{Key: "callbackRate", Value: p.CallbackRate.String()})
	}
	if p.TimeInForce != "" {
		params = append(params, Param{Key: "timeInForce", Value: string(p.TimeInForce)})
	}
	if p.WorkingType != "" {
		params = append(params, Param{Key: "workingType", Value: p.WorkingType})
	}
	if p.PriceProtect != "" {
		params = append(params, Param{Key: "priceProtect", Value: p.PriceProtect})
	}
	return params
}

func boolValue(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// FuturesOrder USDⓈ-M 合约下单响应。
type FuturesOrder struct {
	ClientOrderID string          `json:"clientOrderId"`
	ExecutedQty   decimal.Decimal `json:"executedQty"`
	OrderID       int64           `json:"orderId"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	OrigQty       decimal.Decimal `json:"origQty"`
	Price         decimal.Decimal `json:"price"`
	ReduceOnly    bool            `json:"reduceOnly"`
	Side          OrderSide       `json:"side"`
	Status        VenueStatus     `json:"status"`
	StopPrice     decimal.Decimal `json:"stopPrice"`
	ClosePosition bool            `json:"closePosition"`
	Symbol        string          `json:"symbol"`
	TimeInForce   TimeInForce     `json:"timeInForce"`
	Type          OrderType       `json:"type"`
	UpdateTime    int64           `json:"updateTime"`
}

// AccountAsset 账户资产项。
type AccountAsset struct {
	Asset            string          `json:"asset"`
	WalletBalance    decimal.Decimal `json:"walletBalance"`
	UnrealizedProfit decimal.Decimal `json:"unrealizedProfit"`
	MarginBalance    decimal.Decimal `json:"marginBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

// AccountPosition 账户持仓项。
type AccountPosition struct {
	Symbol           string          `json:"symbol"`
	PositionSide     string          `json:"positionSide"`
	PositionAmt      decimal.Decimal `json:"positionAmt"`
	UnrealizedProfit decimal.Decimal `json:"unrealizedProfit"`
	Notional         decimal.Decimal `json:"notional"`
}

// AccountInfo 账户快照：钱包/保证金余额、资产与持仓列表。
type AccountInfo struct {
	TotalWalletBalance    decimal.Decimal   `json:"totalWalletBalance"`
	TotalUnrealizedProfit decimal.Decimal   `json:"totalUnrealizedProfit"`
	TotalMarginBalance    decimal.Decimal   `json:"totalMarginBalance"`
	AvailableBalance      decimal.Decimal   `json:"availableBalance"`
	Assets                []AccountAsset    `json:"assets"`
	Positions             []AccountPosition `json:"positions"`
}
