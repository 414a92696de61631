package eisen

import (
	"fmt"
	"math/big"
	"strings"
)

// QuoteRequest 询价请求体。maxSplit/maxEdge 在线上协议里是字符串数字。
type QuoteRequest struct {
	TokenInAddr  string   `json:"tokenInAddr"`
	TokenOutAddr string   `json:"tokenOutAddr"`
	Amount       string   `json:"amount"`
	MaxSplit     string   `json:"maxSplit"`
	MaxEdge      string   `json:"maxEdge"`
	WithCycle    bool     `json:"withCycle"`
	DexIDFilter  []string `json:"dexIdFilter"`
	CustomTokens *string  `json:"customTokens"`
	From         *string  `json:"from"`
}

// RouteGraph 聚合器返回的拆分路由图，调用方原样回传给 build 接口。
type RouteGraph struct {
	BlockNumber       uint64          `json:"blockNumber"`
	FromToken         string          `json:"fromToken"`
	AmountIn          string          `json:"amountIn"`
	ToToken           string          `json:"toToken"`
	Weights           []uint16        `json:"weights"`
	TotalAddrs        []string        `json:"totalAddrs"`
	SrcIndices        []uint16        `json:"srcIndices"`
	DstIndices        []uint16        `json:"dstIndices"`
	SplitInfos        []SplitPathInfo `json:"splitInfos"`
	ExpectedAmountOut string          `json:"expectedAmountOut"`
}

// SplitPathInfo 路由图中单条拆分边。
type SplitPathInfo struct {
	SrcIdx       uint16         `json:"srcIdx"`
	DstIdx       uint16         `json:"dstIdx"`
	Weight       uint16         `json:"weight"`
	TotalWeights uint16         `json:"totalWeights"`
	SwapInfo     SingleSwapInfo `json:"swapInfo"`
}

// SingleSwapInfo 单跳兑换信息。
type SingleSwapInfo struct {
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	DexID     string `json:"dexId"`
	Pool      string `json:"pool"`
}

// QuoteResult 询价结果。IsSwapPathExists=false 或 DexAgg 缺失代表无可行路径。
type QuoteResult struct {
	IsSwapPathExists bool        `json:"isSwapPathExists"`
	DexAgg           *RouteGraph `json:"dexAgg"`
	Cexes            []CexQuote  `json:"cexes"`
}

// CexQuote 聚合器附带的 CEX 参考报价，仅作展示用。
type CexQuote struct {
	CexID             string `json:"cexId"`
	AmountIn          string `json:"amountIn"`
	ExpectedAmountOut string `json:"expectedAmountOut"`
}

// BuildRequest 组装交易请求体。
type BuildRequest struct {
	From            string      `json:"from"`
	SlippageBps     string      `json:"slippageBps"`
	Permit          *Permit     `json:"permit"`
	PermitSignature string      `json:"permitSignature"`
	DexAgg          *RouteGraph `json:"dexAgg"`
	Cycles          []string    `json:"cycles"`
}

// Permit Permit2 单笔授权。
type Permit struct {
	Details     PermitDetails `json:"details"`
	Spender     string        `json:"spender"`
	SigDeadline string        `json:"sigDeadline"`
}

// PermitDetails 授权明细。
type PermitDetails struct {
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	Expiration uint64 `json:"expiration"`
	Nonce      uint64 `json:"nonce"`
}

// BuiltTransaction 组装完成、待签名广播的链上交易。
type BuiltTransaction struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	Data         string `json:"data"`
	GasLimit     uint64 `json:"gasLimit"`
	EstimatedGas uint64 `json:"estimatedGas"`
	Error        string `json:"error,omitempty"`
}

// ParseValue 解析交易附带的原生币数额，同时接受 0x 十六进制与十进制。
func (t *BuiltTransaction) ParseValue() (*big.Int, error) {
	raw := strings.TrimSpace(t.Value)
	if raw == "" {
		return big.NewInt(0), nil
	}
	base := 10
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		raw = raw[2:]
		base = 16
		if raw == "" {
			return big.NewInt(0), nil
		}
	}
	v, ok := new(big.Int).SetString(raw, base)
	if !ok {
		return nil, fmt.Errorf("解析交易 value %q 失败", t.Value)
	}
	return v, nil
}

// TokenBalance 钱包里的单项代币余额（链上基础单位）。
type TokenBalance struct {
	TokenAddress string `json:"tokenAddress"`
	Balance      string `json:"balance"`
}

// TokenInfo 链上代币元数据。
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// ChainMetadata 单条链的代币登记表。
type ChainMetadata struct {
	ID           string      `json:"id"`
	NativeSymbol string      `json:"nativeSymbol"`
	Tokens       []TokenInfo `json:"tokens"`
}
