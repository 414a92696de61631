package eisen

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

const venueName = "eisen"

// Client Eisen 聚合器 REST 客户端。所有响应都包在 result 字段里。
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient 创建客户端，baseURL 指向聚合器网关根。
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	http := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(20 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: http, logger: logger}
}

// Metadata 拉取链的代币登记表 GET /chains/{id}/metadata。
func (c *Client) Metadata(ctx context.Context, chainID uint64) (*ChainMetadata, error) {
	var out struct {
		Result ChainMetadata `json:"result"`
	}
	if err := c.get(ctx, fmt.Sprintf("/chains/%d/metadata", chainID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// Quote 询价 POST /chains/{id}/v2/quote。
func (c *Client) Quote(ctx context.Context, chainID uint64, req QuoteRequest) (*QuoteResult, error) {
	var out struct {
		Result QuoteResult `json:"result"`
	}
	if err := c.post(ctx, fmt.Sprintf("/chains/%d/v2/quote", chainID), req, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// Build 组装交易 POST /chains/{id}/v2/build。
func (c *Client) Build(ctx context.Context, chainID uint64, req BuildRequest) (*BuiltTransaction, error) {
	var out struct {
		Result BuiltTransaction `json:"result"`
	}
	if err := c.post(ctx, fmt.Sprintf("/chains/%d/v2/build", chainID), req, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// Balances 拉取钱包余额 GET /chains/{id}/balances?walletAddress=。
func (c *Client) Balances(ctx context.Context, chainID uint64, walletAddress string) ([]TokenBalance, error) {
	var out struct {
		Result []TokenBalance `json:"result"`
	}
	query := map[string]string{"walletAddress": walletAddress}
	if err := c.get(ctx, fmt.Sprintf("/chains/%d/balances", chainID), query, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	r := c.http.R().SetContext(ctx)
	if query != nil {
		r.SetQueryParams(query)
	}
	resp, err := r.Get(path)
	return c.decode(path, resp, err, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	return c.decode(path, resp, err, out)
}

func (c *Client) decode(path string, resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return venue.Network(venueName, err)
	}
	if resp.IsError() {
		return venue.Rejected(venueName, resp.StatusCode(), string(resp.Body()))
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", path, err)
	}
	return nil
}
