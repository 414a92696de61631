package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"delta-ai/internal/venue"
)

const venueName = "binance"

// Client Binance USDⓈ-M 合约签名 REST 客户端。
type Client struct {
	http   *resty.Client
	signer *Signer
	logger *zap.Logger
}

// NewClient 创建客户端。baseURL 例如 https://fapi.binance.com 或测试网地址。
func NewClient(baseURL string, signer *Signer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	http := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   http,
		signer: signer,
		logger: logger,
	}
}

// PlaceOrder 提交签名下单请求 POST /fapi/v1/order。
// 请求体为 x-www-form-urlencoded 的规范参数串，API Key 经 X-MBX-APIKEY 头传递。
func (c *Client) PlaceOrder(ctx context.Context, order PlaceOrder) (*FuturesOrder, error) {
	body, err := c.signer.Sign(order.Params())
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.signer.APIKey()).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body).
		Post("/fapi/v1/order")
	if err != nil {
		return nil, venue.Network(venueName, err)
	}
	if resp.IsError() {
		return nil, venue.Rejected(venueName, resp.StatusCode(), string(resp.Body()))
	}

	var placed FuturesOrder
	if err := json.Unmarshal(resp.Body(), &placed); err != nil {
		return nil, fmt.Errorf("解析下单响应失败: %w", err)
	}

	c.logger.Info("binance 订单已提交",
		zap.String("symbol", placed.Symbol),
		zap.String("type", string(placed.Type)),
		zap.String("status", string(placed.Status)),
		zap.Int64("order_id", placed.OrderID),
	)
	return &placed, nil
}

// Account 拉取账户快照 GET /fapi/v3/account，对空参数集做同样的签名。
// 签名串必须按签名时的字节序原样发送：query map 会按键名重排参数，
// 导致服务端按接收顺序重算的 HMAC 与签名不符，因此直接拼进 URL。
func (c *Client) Account(ctx context.Context) (*AccountInfo, error) {
	query, err := c.signer.Sign(nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.signer.APIKey()).
		Get("/fapi/v3/account?" + query)
	if err != nil {
		return nil, venue.Network(venueName, err)
	}
	if resp.IsError() {
		return nil, venue.Rejected(venueName, resp.StatusCode(), string(resp.Body()))
	}

	var info AccountInfo
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return nil, fmt.Errorf("解析账户响应失败: %w", err)
	}
	return &info, nil
}
