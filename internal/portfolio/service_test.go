package portfolio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"delta-ai/internal/binance"
	"delta-ai/internal/eisen"
)

type fakeAccount struct {
	info *binance.AccountInfo
	err  error
}

func (f *fakeAccount) Account(ctx context.Context) (*binance.AccountInfo, error) {
	return f.info, f.err
}

type fakeBalances struct {
	balances []eisen.TokenBalance
	err      error
}

func (f *fakeBalances) Balances(ctx context.Context, chainID uint64, wallet string) ([]eisen.TokenBalance, error) {
	return f.balances, f.err
}

type fakeResolver struct{}

func (fakeResolver) SymbolByAddress(ctx context.Context, chainID uint64, address string) (string, error) {
	switch strings.ToLower(address) {
	case "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee":
		return "eth", nil
	case "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913":
		return "usdc", nil
	}
	return "", nil
}

func (fakeResolver) Resolve(ctx context.Context, chainID uint64, symbol string) (eisen.TokenEntry, error) {
	switch symbol {
	case "eth":
		return eisen.TokenEntry{Decimals: 18}, nil
	case "usdc":
		return eisen.TokenEntry{Decimals: 6}, nil
	}
	return eisen.TokenEntry{}, errors.New("unknown token")
}

func sampleAccount() *binance.AccountInfo {
	return &binance.AccountInfo{
		TotalWalletBalance: decimal.RequireFromString("1000.5"),
		Positions: []binance.AccountPosition{
			{Symbol: "ETHUSDT", PositionSide: "LONG", PositionAmt: decimal.RequireFromString("0.5")},
			{Symbol: "BTCUSDT", PositionSide: "LONG", PositionAmt: decimal.Zero},
		},
	}
}

func TestCollect_MergesBothVenues(t *testing.T) {
	s := NewService(
		&fakeAccount{info: sampleAccount()},
		&fakeBalances{balances: []eisen.TokenBalance{
			{TokenAddress: "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE", Balance: "1100000000000000000"},
			{TokenAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Balance: "0"},
		}},
		fakeResolver{}, 8453, "0xwallet", nil,
	)

	summary, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if summary.Binance == nil || summary.BinanceErr != "" {
		t.Fatalf("binance side missing: %+v", summary)
	}
	if len(summary.ChainBalances) != 1 {
		t.Fatalf("expected 1 non-zero chain balance, got %+v", summary.ChainBalances)
	}
	bal := summary.ChainBalances[0]
	if bal.Symbol != "eth" || bal.Amount.String() != "1.1" {
		t.Errorf("chain balance = %s %s, want eth 1.1", bal.Symbol, bal.Amount)
	}
}

func TestCollect_OneSideFailureIsolated(t *testing.T) {
	s := NewService(
		&fakeAccount{err: errors.New("binance down")},
		&fakeBalances{balances: []eisen.TokenBalance{
			{TokenAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Balance: "2500000"},
		}},
		fakeResolver{}, 8453, "0xwallet", nil,
	)

	summary, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if summary.BinanceErr == "" || summary.Binance != nil {
		t.Errorf("binance failure should be recorded: %+v", summary)
	}
	if len(summary.ChainBalances) != 1 || summary.ChainBalances[0].Amount.String() != "2.5" {
		t.Errorf("chain side must survive binance failure: %+v", summary.ChainBalances)
	}
}

func TestSummary_Format(t *testing.T) {
	summary := &Summary{
		Binance: sampleAccount(),
		ChainID: 8453,
		Wallet:  "0xwallet",
		ChainBalances: []ChainBalance{
			{Symbol: "eth", Amount: decimal.RequireFromString("1.1")},
		},
	}
	text := summary.Format()
	if !strings.Contains(text, "ETHUSDT") {
		t.Errorf("open position missing from format: %s", text)
	}
	if strings.Contains(text, "BTCUSDT") {
		t.Errorf("zero position should be omitted: %s", text)
	}
	if !strings.Contains(text, "eth: 1.1") {
		t.Errorf("chain balance missing from format: %s", text)
	}
}
