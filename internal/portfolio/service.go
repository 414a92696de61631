package portfolio

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"delta-ai/internal/binance"
	"delta-ai/internal/eisen"
)

// accountSource CEX 账户能力。
type accountSource interface {
	Account(ctx context.Context) (*binance.AccountInfo, error)
}

// balanceSource 链上余额能力。
type balanceSource interface {
	Balances(ctx context.Context, chainID uint64, walletAddress string) ([]eisen.TokenBalance, error)
}

// tokenResolver 地址→符号/精度解析能力。
type tokenResolver interface {
	SymbolByAddress(ctx context.Context, chainID uint64, address string) (string, error)
	Resolve(ctx context.Context, chainID uint64, symbol string) (eisen.TokenEntry, error)
}

// ChainBalance 链上单项代币持仓（人类可读数量）。
type ChainBalance struct {
	Symbol string
	Amount decimal.Decimal
}

// Summary 两个场所的持仓合并视图。
// 任一侧拉取失败时对应字段为 nil，另一侧照常返回。
type Summary struct {
	Binance       *binance.AccountInfo
	BinanceErr    string
	ChainID       uint64
	Wallet        string
	ChainBalances []ChainBalance
	ChainErr      string
	CollectedAt   time.Time
}

// Service 并发聚合 CEX 账户与链上钱包持仓。
type Service struct {
	account  accountSource
	balances balanceSource
	resolver tokenResolver
	chainID  uint64
	wallet   string
	logger   *zap.Logger
}

// NewService 创建聚合服务。
func NewService(account accountSource, balances balanceSource, resolver tokenResolver, chainID uint64, wallet string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		account:  account,
		balances: balances,
		resolver: resolver,
		chainID:  chainID,
		wallet:   wallet,
		logger:   logger,
	}
}

// Collect 并发拉取两侧持仓。单侧失败只记录到 Summary，不让另一侧白拉。
func (s *Service) Collect(ctx context.Context) (*Summary, error) {
	summary := &Summary{ChainID: s.chainID, Wallet: s.wallet}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info, err := s.account.Account(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.BinanceErr = err.Error()
			s.logger.Warn("拉取 binance 账户失败", zap.Error(err))
			return nil
		}
		summary.Binance = info
		return nil
	})

	g.Go(func() error {
		chainBalances, err := s.collectChain(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.ChainErr = err.Error()
			s.logger.Warn("拉取链上余额失败", zap.Error(err))
			return nil
		}
		summary.ChainBalances = chainBalances
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.CollectedAt = time.Now().UTC()
	return summary, nil
}

func (s *Service) collectChain(ctx context.Context) ([]ChainBalance, error) {
	raw, err := s.balances.Balances(ctx, s.chainID, s.wallet)
	if err != nil {
		return nil, err
	}

	balances := make([]ChainBalance, 0, len(raw))
	for _, item := range raw {
		if item.Balance == "" || item.Balance == "0" {
			continue
		}
		symbol, err := s.resolver.SymbolByAddress(ctx, s.chainID, item.TokenAddress)
		if err != nil {
			return nil, err
		}
		if symbol == "" {
			// 未登记代币直接跳过
			continue
		}
		entry, err := s.resolver.Resolve(ctx, s.chainID, symbol)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(item.Balance)
		if err != nil {
			return nil, fmt.Errorf("解析余额 %q 失败: %w", item.Balance, err)
		}
		balances = append(balances, ChainBalance{
			Symbol: symbol,
			Amount: amount.Shift(-int32(entry.Decimals)),
		})
	}

	sort.Slice(balances, func(i, j int) bool { return balances[i].Symbol < balances[j].Symbol })
	return balances, nil
}

// Format 渲染为提示词用的纯文本。
func (s *Summary) Format() string {
	var b strings.Builder

	b.WriteString("Binance USDⓈ-M 账户：\n")
	switch {
	case s.BinanceErr != "":
		fmt.Fprintf(&b, "  （拉取失败：%s）\n", s.BinanceErr)
	case s.Binance == nil:
		b.WriteString("  （无数据）\n")
	default:
		fmt.Fprintf(&b, "  钱包余额=%s 保证金余额=%s 未实现盈亏=%s 可用余额=%s\n",
			s.Binance.TotalWalletBalance, s.Binance.TotalMarginBalance,
			s.Binance.TotalUnrealizedProfit, s.Binance.AvailableBalance)
		for _, pos := range s.Binance.Positions {
			if pos.PositionAmt.IsZero() {
				continue
			}
			fmt.Fprintf(&b, "  持仓 %s(%s): 数量=%s 名义价值=%s 未实现盈亏=%s\n",
				pos.Symbol, pos.PositionSide, pos.PositionAmt, pos.Notional, pos.UnrealizedProfit)
		}
	}

	fmt.Fprintf(&b, "链上钱包（chain %d, %s）：\n", s.ChainID, s.Wallet)
	switch {
	case s.ChainErr != "":
		fmt.Fprintf(&b, "  （拉取失败：%s）\n", s.ChainErr)
	case len(s.ChainBalances) == 0:
		b.WriteString("  （无非零余额）\n")
	default:
		for _, bal := range s.ChainBalances {
			fmt.Fprintf(&b, "  %s: %s\n", bal.Symbol, bal.Amount)
		}
	}

	return b.String()
}
