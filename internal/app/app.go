package app

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"delta-ai/internal/agent"
	"delta-ai/internal/ai"
	"delta-ai/internal/binance"
	"delta-ai/internal/chain"
	"delta-ai/internal/config"
	"delta-ai/internal/eisen"
	"delta-ai/internal/execution"
	"delta-ai/internal/feed"
	"delta-ai/internal/portfolio"
	"delta-ai/internal/server"
)

// App 聚合核心依赖并驱动系统生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run 组装全部组件并运行 HTTP 服务，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("执行引擎已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("binance_base_url", a.cfg.Binance.BaseURL),
		zap.String("eisen_base_url", a.cfg.Eisen.BaseURL),
	)

	// CEX 侧
	signer := binance.NewSigner(binance.Credentials{
		APIKey:    a.cfg.Binance.APIKey,
		SecretKey: a.cfg.Binance.APISecret,
	}, a.cfg.Binance.RecvWindow)
	binanceClient := binance.NewClient(a.cfg.Binance.BaseURL, signer, a.logger)
	cexExecutor := binance.NewExecutor(binanceClient,
		a.cfg.Binance.QuantityPrecision, a.cfg.Binance.PricePrecision, a.logger)

	// 链上侧
	sender, err := chain.Dial(ctx, a.cfg.Chain.RPCURL, a.cfg.Chain.PrivateKey,
		a.cfg.Chain.ConfirmTimeout, a.logger)
	if err != nil {
		return err
	}
	eisenClient := eisen.NewClient(a.cfg.Eisen.BaseURL, a.logger)
	resolver := eisen.NewResolver(eisenClient, a.logger)
	dexExecutor := eisen.NewExecutor(eisenClient, resolver, sender,
		sender.ChainID(), a.cfg.Eisen.SlippageBps, a.logger)

	// 上下文采集
	feedService := feed.NewService(feed.NewClient(a.logger), a.cfg.Feed, a.logger)
	portfolioService := portfolio.NewService(binanceClient, eisenClient, resolver,
		sender.ChainID(), sender.From().Hex(), a.logger)

	// 策略生成与派发
	aiClient, err := ai.NewClient(a.cfg.OpenAI, a.logger)
	if err != nil {
		return err
	}
	dispatcher := execution.NewDispatcher(cexExecutor, dexExecutor, a.logger)
	pipeline := agent.New(feedService, portfolioService, aiClient, dispatcher, a.logger)

	a.logger.Info("组件装配完成",
		zap.String("wallet", sender.From().Hex()),
		zap.String("chain_id", strconv.FormatUint(sender.ChainID(), 10)),
	)

	return server.New(a.cfg.Server, pipeline, portfolioService, a.logger).Run(ctx)
}
