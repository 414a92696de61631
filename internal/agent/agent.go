package agent

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"delta-ai/internal/ai"
	"delta-ai/internal/execution"
	"delta-ai/internal/feed"
	"delta-ai/internal/portfolio"
	"delta-ai/internal/strategy"
)

// marketFeed 市场上下文采集能力。
type marketFeed interface {
	Collect(ctx context.Context) (*feed.Snapshot, error)
}

// portfolioSource 持仓聚合能力。
type portfolioSource interface {
	Collect(ctx context.Context) (*portfolio.Summary, error)
}

// strategySource 策略生成能力。
type strategySource interface {
	GenerateStrategy(ctx context.Context, pctx ai.PromptContext) (*strategy.Strategy, error)
}

// dispatcher 策略派发能力。
type dispatcher interface {
	Dispatch(ctx context.Context, s *strategy.Strategy) (*execution.Report, error)
}

// Agent 驱动 采集→生成策略→执行 的完整流水线。
type Agent struct {
	feed       marketFeed
	portfolio  portfolioSource
	ai         strategySource
	dispatcher dispatcher
	logger     *zap.Logger
}

// New 创建流水线。
func New(feed marketFeed, pf portfolioSource, ai strategySource, d dispatcher, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		feed:       feed,
		portfolio:  pf,
		ai:         ai,
		dispatcher: d,
		logger:     logger,
	}
}

// RunOnce 执行一轮完整流水线，返回本轮策略与执行报告。
func (a *Agent) RunOnce(ctx context.Context) (*strategy.Strategy, *execution.Report, error) {
	var (
		market    *feed.Snapshot
		positions *portfolio.Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		market, err = a.feed.Collect(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		positions, err = a.portfolio.Collect(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	s, err := a.ai.GenerateStrategy(ctx, ai.PromptContext{
		MarketContext:    market.Format(),
		PortfolioContext: positions.Format(),
	})
	if err != nil {
		return nil, nil, err
	}
	if s.Empty() {
		a.logger.Info("模型本轮选择不操作")
	}

	report, err := a.ExecuteStrategy(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	return s, report, nil
}

// ExecuteStrategy 跳过生成环节，直接执行给定策略。
func (a *Agent) ExecuteStrategy(ctx context.Context, s *strategy.Strategy) (*execution.Report, error) {
	if s == nil {
		return nil, strategy.ErrNoStrategy
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return a.dispatcher.Dispatch(ctx, s)
}
