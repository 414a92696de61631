package numeric

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// QuoteAsset CEX 永续合约的计价资产后缀。
const QuoteAsset = "USDT"

var (
	// ErrNonPositive 数量解析或截断后不为正。
	ErrNonPositive = errors.New("数量必须大于0")
)

// NormalizeAmount 将文本数量解析为定点小数，并按场所精度向零截断。
// 截断后不为正的数量视为非法。重复规范化是幂等的。
func NormalizeAmount(raw string, precision int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("解析数量 %q 失败: %w", raw, err)
	}
	d = d.Truncate(precision)
	if d.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("数量 %q: %w", raw, ErrNonPositive)
	}
	return d, nil
}

// Pair 由代币符号构造 CEX 交易对，符号大小写不敏感。
func Pair(token string) string {
	return strings.ToUpper(strings.TrimSpace(token)) + QuoteAsset
}

// ToBaseUnits 将人类可读数量转换为链上基础单位：amount × 10^decimals 向下取整。
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, ErrNonPositive
	}
	shifted := amount.Shift(int32(decimals)).Floor()
	if shifted.Sign() <= 0 {
		return nil, fmt.Errorf("数量 %s 按 %d 位精度换算后为零: %w", amount, decimals, ErrNonPositive)
	}
	return shifted.BigInt(), nil
}
