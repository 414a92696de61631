package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"
)

const (
	maxAttempts = 3
	retryDelay  = 500 * time.Millisecond
)

// Ticker 单交易对的行情快照。
type Ticker struct {
	Symbol    string
	Last      float64
	Change24h float64
	Volume    float64
	Timestamp time.Time
}

// Client 负责从 Binance USDⓈ-M 行情接口拉取公开市场数据。
// 行情接口无需密钥。
type Client struct {
	exchange *ccxt.Binanceusdm
	logger   *zap.Logger

	marketsMu     sync.Mutex
	marketsLoaded bool
}

// NewClient 构造行情客户端。
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	ex := ccxt.NewBinanceusdm(map[string]interface{}{
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"adjustForTimeDifference": true,
			"defaultType":             "future",
		},
	})

	return &Client{
		exchange: ex,
		logger:   logger,
	}
}

// Ticker 获取最新行情。
func (c *Client) Ticker(ctx context.Context, symbol string) (Ticker, error) {
	var raw ccxt.Ticker
	err := c.callWithRetry(ctx, fmt.Sprintf("fetch_ticker_%s", symbol), func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}
		result, err := c.exchange.FetchTicker(symbol)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return Ticker{}, err
	}

	t := Ticker{Symbol: symbol, Timestamp: time.Now().UTC()}
	if raw.Last != nil {
		t.Last = *raw.Last
	}
	if raw.Percentage != nil {
		t.Change24h = *raw.Percentage
	}
	if raw.QuoteVolume != nil {
		t.Volume = *raw.QuoteVolume
	}
	if raw.Timestamp != nil {
		t.Timestamp = time.UnixMilli(*raw.Timestamp).UTC()
	}
	return t, nil
}

// Closes 获取指定周期的收盘价序列。
func (c *Client) Closes(ctx context.Context, symbol, timeframe string, limit int64) ([]float64, error) {
	if limit <= 0 {
		limit = 1
	}

	var raw []ccxt.OHLCV
	err := c.callWithRetry(ctx, fmt.Sprintf("fetch_ohlcv_%s_%s", symbol, timeframe), func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}
		result, err := c.exchange.FetchOHLCV(
			symbol,
			ccxt.WithFetchOHLCVTimeframe(timeframe),
			ccxt.WithFetchOHLCVLimit(limit),
		)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	closes := make([]float64, 0, len(raw))
	for _, item := range raw {
		closes = append(closes, item.Close)
	}
	return closes, nil
}

func (c *Client) ensureMarketsLoaded(ctx context.Context) error {
	if c.marketsLoaded {
		return nil
	}

	c.marketsMu.Lock()
	defer c.marketsMu.Unlock()

	if c.marketsLoaded {
		return nil
	}
	if _, err := c.exchange.LoadMarkets(); err != nil {
		return err
	}
	c.marketsLoaded = true
	c.logger.Info("已完成市场元数据加载")
	return nil
}

func (c *Client) callWithRetry(ctx context.Context, operation string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		wait := time.Duration(attempt) * retryDelay
		c.logger.Warn("行情调用失败，等待重试",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("行情调用 %s 重试后仍失败: %w", operation, err)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
