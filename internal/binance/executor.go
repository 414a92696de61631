package binance

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"delta-ai/internal/numeric"
	"delta-ai/internal/strategy"
	"delta-ai/internal/venue"
)

// Executor 将策略订单意图翻译为签名下单请求并提交。
type Executor struct {
	client            *Client
	quantityPrecision int32
	pricePrecision    int32
	logger            *zap.Logger
}

// NewExecutor 创建 CEX 执行器。精度参数 <0 时使用默认值。
func NewExecutor(client *Client, quantityPrecision, pricePrecision int32, logger *zap.Logger) *Executor {
	if quantityPrecision < 0 {
		quantityPrecision = 3
	}
	if pricePrecision < 0 {
		pricePrecision = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		client:            client,
		quantityPrecision: quantityPrecision,
		pricePrecision:    pricePrecision,
		logger:            logger,
	}
}

// ExecuteOrder 执行单笔订单意图，返回交易所订单号。
func (e *Executor) ExecuteOrder(ctx context.Context, order strategy.Order) (string, error) {
	req, err := e.buildRequest(order)
	if err != nil {
		return "", err
	}

	e.logger.Info("提交 binance 订单",
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.String("type", string(req.Type)),
	)

	placed, err := e.client.PlaceOrder(ctx, *req)
	if err != nil {
		return "", err
	}

	e.logger.Info("binance 订单进入状态机",
		zap.Int64("order_id", placed.OrderID),
		zap.String("state", string(placed.Status.State())),
	)
	return strconv.FormatInt(placed.OrderID, 10), nil
}

// buildRequest 由订单意图推导订单类型并归一化数量/价格。
// 推导规则：有限价 → LIMIT/GTC；否则有止损价 → STOP_MARKET 且平仓；否则 MARKET。
func (e *Executor) buildRequest(order strategy.Order) (*PlaceOrder, error) {
	qty, err := numeric.NormalizeAmount(order.Quantity, e.quantityPrecision)
	if err != nil {
		return nil, venue.InvalidInput(venueName, "订单数量非法 %q: %v", order.Quantity, err)
	}

	req := &PlaceOrder{
		Symbol: numeric.Pair(order.Token),
		Side:   OrderSide(strings.ToUpper(strings.TrimSpace(order.Side))),
	}
	if req.Side != SideBuy && req.Side != SideSell {
		return nil, venue.InvalidInput(venueName, "订单方向非法 %q", order.Side)
	}

	switch {
	case strings.TrimSpace(order.Price) != "":
		price, perr := e.normalizePrice(order.Price)
		if perr != nil {
			return nil, perr
		}
		req.Type = TypeLimit
		req.Quantity = &qty
		req.Price = price
		req.TimeInForce = TimeInForceGTC
		req.ClosePosition = boolPtr(false)
	case strings.TrimSpace(order.StopPrice) != "":
		stop, perr := e.normalizePrice(order.StopPrice)
		if perr != nil {
			return nil, perr
		}
		req.Type = TypeStopMarket
		req.StopPrice = stop
		req.ClosePosition = boolPtr(true)
	default:
		req.Type = TypeMarket
		req.Quantity = &qty
		req.ClosePosition = boolPtr(false)
	}
	return req, nil
}

func (e *Executor) normalizePrice(raw string) (*decimal.Decimal, error) {
	price, err := numeric.NormalizeAmount(raw, e.pricePrecision)
	if err != nil {
		return nil, venue.InvalidInput(venueName, "订单价格非法 %q: %v", raw, err)
	}
	return &price, nil
}

func boolPtr(v bool) *bool {
	return &v
}
