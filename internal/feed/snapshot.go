package feed

import (
	"fmt"
	"strings"
	"time"

	talib "github.com/markcheno/go-talib"
)

// TokenSnapshot 单交易对的市场上下文：行情加常用指标。
type TokenSnapshot struct {
	Symbol    string
	LastPrice float64
	Change24h float64
	Volume24h float64
	RSI14     float64
	SMA20     float64
	EMA50     float64
}

// Snapshot 一轮采集的全量市场上下文。
type Snapshot struct {
	Tokens      []TokenSnapshot
	CollectedAt time.Time
}

// Format 渲染为提示词用的纯文本。
func (s *Snapshot) Format() string {
	if len(s.Tokens) == 0 {
		return "（本轮未采集到市场数据）"
	}

	var b strings.Builder
	for _, t := range s.Tokens {
		fmt.Fprintf(&b, "- %s: 最新价=%.4f 24h涨跌=%.2f%% 24h成交额=%.0f RSI14=%.1f SMA20=%.4f EMA50=%.4f\n",
			t.Symbol, t.LastPrice, t.Change24h, t.Volume24h, t.RSI14, t.SMA20, t.EMA50)
	}
	return b.String()
}

// computeIndicators 由收盘价序列计算指标，数据不足时对应值为0。
func computeIndicators(closes []float64) (rsi14, sma20, ema50 float64) {
	if len(closes) > 14 {
		rsi14 = last(talib.Rsi(closes, 14))
	}
	if len(closes) >= 20 {
		sma20 = last(talib.Sma(closes, 20))
	}
	if len(closes) >= 50 {
		ema50 = last(talib.Ema(closes, 50))
	}
	return rsi14, sma20, ema50
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
