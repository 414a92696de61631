package eisen

import (
	"context"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"delta-ai/internal/numeric"
	"delta-ai/internal/strategy"
	"delta-ai/internal/venue"
)

// TxSender 负责链上交易的签名、广播与确认。
type TxSender interface {
	From() common.Address
	SendAndWait(ctx context.Context, to common.Address, value *big.Int, data []byte, gasLimit uint64) (common.Hash, error)
}

const (
	defaultMaxSplit    = "10"
	defaultMaxEdge     = "3"
	defaultSlippageBps = 100
)

// Executor 将兑换意图走完 询价→组装→签名广播→确认 四段流水线。
type Executor struct {
	client      *Client
	resolver    *Resolver
	sender      TxSender
	chainID     uint64
	slippageBps uint16
	logger      *zap.Logger
}

// NewExecutor 创建 DEX 执行器。slippageBps 为 0 时使用默认 100（1%）。
func NewExecutor(client *Client, resolver *Resolver, sender TxSender, chainID uint64, slippageBps uint16, logger *zap.Logger) *Executor {
	if slippageBps == 0 {
		slippageBps = defaultSlippageBps
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		client:      client,
		resolver:    resolver,
		sender:      sender,
		chainID:     chainID,
		slippageBps: slippageBps,
		logger:      logger,
	}
}

// ExecuteSwap 执行单笔兑换意图，返回链上交易哈希。
// 任一阶段失败都会中止后续阶段：无可行路径不会进入组装，组装失败不会广播。
func (e *Executor) ExecuteSwap(ctx context.Context, swap strategy.Swap) (string, error) {
	amount, err := decimal.NewFromString(swap.Amount)
	if err != nil {
		return "", venue.InvalidInput(venueName, "兑换数量非法 %q: %v", swap.Amount, err)
	}

	tokenIn, err := e.resolver.Resolve(ctx, e.chainID, swap.TokenIn)
	if err != nil {
		return "", err
	}
	tokenOut, err := e.resolver.Resolve(ctx, e.chainID, swap.TokenOut)
	if err != nil {
		return "", err
	}

	amountIn, err := numeric.ToBaseUnits(amount, tokenIn.Decimals)
	if err != nil {
		return "", venue.InvalidInput(venueName, "兑换数量 %q 换算基础单位失败: %v", swap.Amount, err)
	}

	quote, err := e.client.Quote(ctx, e.chainID, QuoteRequest{
		TokenInAddr:  tokenIn.Address,
		TokenOutAddr: tokenOut.Address,
		Amount:       amountIn.String(),
		MaxSplit:     defaultMaxSplit,
		MaxEdge:      defaultMaxEdge,
		WithCycle:    false,
		DexIDFilter:  []string{},
	})
	if err != nil {
		return "", err
	}
	if !quote.IsSwapPathExists || quote.DexAgg == nil {
		return "", venue.InvalidInput(venueName, "代币 %s → %s 无可行兑换路径", swap.TokenIn, swap.TokenOut)
	}

	e.logger.Info("eisen 询价完成",
		zap.String("token_in", swap.TokenIn),
		zap.String("token_out", swap.TokenOut),
		zap.String("amount_in", amountIn.String()),
		zap.String("expected_out", quote.DexAgg.ExpectedAmountOut),
	)

	built, err := e.client.Build(ctx, e.chainID, BuildRequest{
		From:            e.sender.From().Hex(),
		SlippageBps:     strconv.FormatUint(uint64(e.slippageBps), 10),
		PermitSignature: "",
		DexAgg:          quote.DexAgg,
		Cycles:          []string{},
	})
	if err != nil {
		return "", err
	}
	if built.Error != "" {
		return "", venue.InvalidInput(venueName, "交易组装失败: %s", built.Error)
	}

	value, err := built.ParseValue()
	if err != nil {
		return "", venue.InvalidInput(venueName, "交易 value 非法: %v", err)
	}
	if !common.IsHexAddress(built.To) {
		return "", venue.InvalidInput(venueName, "交易目标地址非法 %q", built.To)
	}

	hash, err := e.sender.SendAndWait(ctx, common.HexToAddress(built.To), value, common.FromHex(built.Data), built.GasLimit)
	if err != nil {
		return "", err
	}

	e.logger.Info("eisen 兑换已上链",
		zap.String("token_in", swap.TokenIn),
		zap.String("token_out", swap.TokenOut),
		zap.String("tx_hash", hash.Hex()),
	)
	return hash.Hex(), nil
}
