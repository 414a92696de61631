package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"delta-ai/internal/config"
)

// marketSource Service 依赖的行情能力。
type marketSource interface {
	Ticker(ctx context.Context, symbol string) (Ticker, error)
	Closes(ctx context.Context, symbol, timeframe string, limit int64) ([]float64, error)
}

// Service 并发采集多个交易对的市场上下文。
// 单个交易对失败只跳过该交易对，不影响其余采集。
type Service struct {
	source marketSource
	cfg    config.FeedConfig
	logger *zap.Logger
}

// NewService 创建采集服务。
func NewService(source marketSource, cfg config.FeedConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = "1h"
	}
	if cfg.Candles <= 0 {
		cfg.Candles = 120
	}
	return &Service{source: source, cfg: cfg, logger: logger}
}

// Collect 对配置的交易对做一轮并发采集。
func (s *Service) Collect(ctx context.Context) (*Snapshot, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var (
		mu     sync.Mutex
		tokens []TokenSnapshot
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, symbol := range s.cfg.Symbols {
		symbol := symbol
		g.Go(func() error {
			snap, err := s.collectOne(ctx, symbol)
			if err != nil {
				s.logger.Warn("采集交易对失败",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			tokens = append(tokens, snap)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Symbol < tokens[j].Symbol })
	return &Snapshot{Tokens: tokens, CollectedAt: time.Now().UTC()}, nil
}

func (s *Service) collectOne(ctx context.Context, symbol string) (TokenSnapshot, error) {
	ticker, err := s.source.Ticker(ctx, symbol)
	if err != nil {
		return TokenSnapshot{}, err
	}
	closes, err := s.source.Closes(ctx, symbol, s.cfg.Timeframe, s.cfg.Candles)
	if err != nil {
		return TokenSnapshot{}, err
	}

	rsi14, sma20, ema50 := computeIndicators(closes)
	return TokenSnapshot{
		Symbol:    symbol,
		LastPrice: ticker.Last,
		Change24h: ticker.Change24h,
		Volume24h: ticker.Volume,
		RSI14:     rsi14,
		SMA20:     sma20,
		EMA50:     ema50,
	}, nil
}
