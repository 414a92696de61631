package strategy

import (
	"strings"
	"testing"
)

const validStrategyJSON = `{
  "exchanges": {
    "binance": {
      "orders": [
        {"token": "ETH", "side": "sell", "amount": "0.5"},
        {"token": "btc", "side": "BUY", "amount": "0.01", "price": "64000.5"}
      ]
    },
    "eisen": {
      "swaps": [
        {"tokenIn": "eth", "tokenOut": "weeth", "amount": "1.1"}
      ]
    }
  }
}`

func TestParse_Valid(t *testing.T) {
	s, err := Parse([]byte(validStrategyJSON))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(s.Exchanges.Binance.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(s.Exchanges.Binance.Orders))
	}
	if len(s.Exchanges.Eisen.Swaps) != 1 {
		t.Fatalf("expected 1 swap, got %d", len(s.Exchanges.Eisen.Swaps))
	}
	if s.Exchanges.Binance.Orders[1].Price != "64000.5" {
		t.Errorf("unexpected limit price: %q", s.Exchanges.Binance.Orders[1].Price)
	}
	if s.Empty() {
		t.Errorf("strategy should not be empty")
	}
}

func TestParse_InvalidSide(t *testing.T) {
	payload := `{"exchanges":{"binance":{"orders":[{"token":"ETH","side":"hold","amount":"1"}]},"eisen":{}}}`
	if _, err := Parse([]byte(payload)); err == nil || !strings.Contains(err.Error(), "side") {
		t.Fatalf("expected side validation error, got %v", err)
	}
}

func TestParse_SameTokenSwap(t *testing.T) {
	payload := `{"exchanges":{"binance":{},"eisen":{"swaps":[{"tokenIn":"ETH","tokenOut":"eth","amount":"1"}]}}}`
	if _, err := Parse([]byte(payload)); err == nil || !strings.Contains(err.Error(), "不能相同") {
		t.Fatalf("expected same-token validation error, got %v", err)
	}
}

func TestValidate_EmptyStrategyOK(t *testing.T) {
	s, err := Parse([]byte(`{"exchanges":{"binance":{},"eisen":{}}}`))
	if err != nil {
		t.Fatalf("empty strategy should validate: %v", err)
	}
	if !s.Empty() {
		t.Errorf("expected Empty() = true")
	}
}
