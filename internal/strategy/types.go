package strategy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Strategy 外部产生、经校验的执行计划。构造后不可变，只被调度器消费一次。
type Strategy struct {
	Exchanges Exchanges `json:"exchanges"`
}

// Exchanges 两条互相独立的执行腿。
type Exchanges struct {
	Binance BinanceLeg `json:"binance"`
	Eisen   EisenLeg   `json:"eisen"`
}

// BinanceLeg CEX 腿：有序的订单列表。
type BinanceLeg struct {
	Orders []Order `json:"orders"`
}

// EisenLeg DEX 腿：有序的兑换列表。
type EisenLeg struct {
	Swaps []Swap `json:"swaps"`
}

// Order CEX 订单意图。价格与止损价可选，其存在与否决定订单类型。
type Order struct {
	Token     string `json:"token"`
	Side      string `json:"side"`
	Quantity  string `json:"amount"`
	Price     string `json:"price,omitempty"`
	StopPrice string `json:"stopPrice,omitempty"`
}

// Swap DEX 兑换意图，数量为人类可读小数。
type Swap struct {
	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`
	Amount   string `json:"amount"`
}

// Describe 返回订单的简短描述，用于执行报告。
func (o Order) Describe() string {
	return fmt.Sprintf("%s %s %s", strings.ToLower(o.Side), o.Quantity, strings.ToUpper(o.Token))
}

// Describe 返回兑换的简短描述，用于执行报告。
func (s Swap) Describe() string {
	return fmt.Sprintf("%s %s -> %s", s.Amount, strings.ToLower(s.TokenIn), strings.ToLower(s.TokenOut))
}

// Parse 反序列化并校验策略 JSON。
func Parse(data []byte) (*Strategy, error) {
	var s Strategy
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("解析策略JSON失败: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 做结构层面的校验；数量合法性由各执行器在提交前进一步检查。
func (s *Strategy) Validate() error {
	var err error

	for i, order := range s.Exchanges.Binance.Orders {
		if strings.TrimSpace(order.Token) == "" {
			err = multierr.Append(err, fmt.Errorf("binance 订单 %d: token 不能为空", i))
		}
		side := strings.ToUpper(strings.TrimSpace(order.Side))
		if side != "BUY" && side != "SELL" {
			err = multierr.Append(err, fmt.Errorf("binance 订单 %d: side 取值非法: %q", i, order.Side))
		}
		if strings.TrimSpace(order.Quantity) == "" {
			err = multierr.Append(err, fmt.Errorf("binance 订单 %d: amount 不能为空", i))
		}
	}

	for i, swap := range s.Exchanges.Eisen.Swaps {
		if strings.TrimSpace(swap.TokenIn) == "" || strings.TrimSpace(swap.TokenOut) == "" {
			err = multierr.Append(err, fmt.Errorf("eisen 兑换 %d: tokenIn/tokenOut 不能为空", i))
		}
		if strings.EqualFold(strings.TrimSpace(swap.TokenIn), strings.TrimSpace(swap.TokenOut)) {
			err = multierr.Append(err, fmt.Errorf("eisen 兑换 %d: tokenIn 与 tokenOut 不能相同", i))
		}
		if strings.TrimSpace(swap.Amount) == "" {
			err = multierr.Append(err, fmt.Errorf("eisen 兑换 %d: amount 不能为空", i))
		}
	}

	if err != nil {
		return fmt.Errorf("策略校验失败: %w", err)
	}
	return nil
}

// Empty 报告策略是否不含任何待执行条目。
func (s *Strategy) Empty() bool {
	return len(s.Exchanges.Binance.Orders) == 0 && len(s.Exchanges.Eisen.Swaps) == 0
}

// ErrNoStrategy 外部协作方未返回任何策略。
var ErrNoStrategy = errors.New("未获得有效策略")
