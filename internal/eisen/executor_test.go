package eisen

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"delta-ai/internal/strategy"
	"delta-ai/internal/venue"
)

type fakeSender struct {
	calls    int
	lastTo   common.Address
	lastVal  *big.Int
	lastData []byte
	err      error
}

func (f *fakeSender) From() common.Address {
	return common.HexToAddress("0xdAf87a186345f26d107d000fAD351E79Ff696d2C")
}

func (f *fakeSender) SendAndWait(ctx context.Context, to common.Address, value *big.Int, data []byte, gasLimit uint64) (common.Hash, error) {
	f.calls++
	f.lastTo = to
	f.lastVal = value
	f.lastData = data
	if f.err != nil {
		return common.Hash{}, f.err
	}
	return common.HexToHash("0xabc123"), nil
}

type serverState struct {
	quoteCalls int
	buildCalls int
	lastQuote  QuoteRequest
	lastBuild  BuildRequest
	pathExists bool
	buildError string
}

func newSwapServer(t *testing.T, state *serverState) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chains/8453/metadata", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"result": baseMetadata()})
	})
	mux.HandleFunc("/chains/8453/v2/quote", func(w http.ResponseWriter, r *http.Request) {
		state.quoteCalls++
		if err := json.NewDecoder(r.Body).Decode(&state.lastQuote); err != nil {
			t.Errorf("decode quote request: %v", err)
		}
		result := QuoteResult{IsSwapPathExists: state.pathExists}
		if state.pathExists {
			result.DexAgg = &RouteGraph{
				FromToken:         state.lastQuote.TokenInAddr,
				ToToken:           state.lastQuote.TokenOutAddr,
				AmountIn:          state.lastQuote.Amount,
				ExpectedAmountOut: "3100000000",
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
	})
	mux.HandleFunc("/chains/8453/v2/build", func(w http.ResponseWriter, r *http.Request) {
		state.buildCalls++
		if err := json.NewDecoder(r.Body).Decode(&state.lastBuild); err != nil {
			t.Errorf("decode build request: %v", err)
		}
		tx := BuiltTransaction{
			From:     state.lastBuild.From,
			To:       "0x6e4141d33021b52c91c28608403db4a0ffb50ec6",
			Value:    "0x0",
			Data:     "0xdeadbeef",
			GasLimit: 500000,
			Error:    state.buildError,
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": tx})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestExecutor(t *testing.T, state *serverState, sender *fakeSender) *Executor {
	t.Helper()
	client := NewClient(newSwapServer(t, state).URL, nil)
	return NewExecutor(client, NewResolver(client, nil), sender, 8453, 0, nil)
}

func TestExecuteSwap_Pipeline(t *testing.T) {
	state := &serverState{pathExists: true}
	sender := &fakeSender{}
	exec := newTestExecutor(t, state, sender)

	hash, err := exec.ExecuteSwap(context.Background(), strategy.Swap{TokenIn: "ETH", TokenOut: "usdc", Amount: "1.1"})
	if err != nil {
		t.Fatalf("ExecuteSwap returned error: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected tx hash")
	}

	// 1.1 ETH × 10^18
	if state.lastQuote.Amount != "1100000000000000000" {
		t.Errorf("quote amount = %s, want 1100000000000000000", state.lastQuote.Amount)
	}
	if state.lastQuote.MaxSplit != "10" || state.lastQuote.MaxEdge != "3" || state.lastQuote.WithCycle {
		t.Errorf("unexpected quote routing params: %+v", state.lastQuote)
	}
	if state.lastBuild.SlippageBps != "100" {
		t.Errorf("slippageBps = %s, want default 100", state.lastBuild.SlippageBps)
	}
	if state.lastBuild.From != sender.From().Hex() {
		t.Errorf("build from = %s, want %s", state.lastBuild.From, sender.From().Hex())
	}
	if sender.calls != 1 {
		t.Fatalf("expected one broadcast, got %d", sender.calls)
	}
	if sender.lastTo != common.HexToAddress("0x6e4141d33021b52c91c28608403db4a0ffb50ec6") {
		t.Errorf("broadcast to = %s", sender.lastTo.Hex())
	}
	if sender.lastVal.Sign() != 0 {
		t.Errorf("broadcast value = %s, want 0", sender.lastVal)
	}
}

func TestExecuteSwap_NoPathAborts(t *testing.T) {
	state := &serverState{pathExists: false}
	sender := &fakeSender{}
	exec := newTestExecutor(t, state, sender)

	_, err := exec.ExecuteSwap(context.Background(), strategy.Swap{TokenIn: "eth", TokenOut: "usdc", Amount: "1"})
	if venue.KindOf(err) != venue.KindInvalidInput {
		t.Fatalf("expected KindInvalidInput for missing path, got %v", err)
	}
	if state.buildCalls != 0 {
		t.Errorf("build must not be called when no path exists")
	}
	if sender.calls != 0 {
		t.Errorf("broadcast must not happen when no path exists")
	}
}

func TestExecuteSwap_BuildErrorAborts(t *testing.T) {
	state := &serverState{pathExists: true, buildError: "insufficient liquidity"}
	sender := &fakeSender{}
	exec := newTestExecutor(t, state, sender)

	_, err := exec.ExecuteSwap(context.Background(), strategy.Swap{TokenIn: "eth", TokenOut: "usdc", Amount: "1"})
	if venue.KindOf(err) != venue.KindInvalidInput {
		t.Fatalf("expected KindInvalidInput for build error, got %v", err)
	}
	if sender.calls != 0 {
		t.Errorf("broadcast must not happen after build failure")
	}
}

func TestExecuteSwap_UnknownToken(t *testing.T) {
	state := &serverState{pathExists: true}
	sender := &fakeSender{}
	exec := newTestExecutor(t, state, sender)

	_, err := exec.ExecuteSwap(context.Background(), strategy.Swap{TokenIn: "doge", TokenOut: "usdc", Amount: "1"})
	if venue.KindOf(err) != venue.KindInvalidInput {
		t.Fatalf("expected KindInvalidInput for unknown token, got %v", err)
	}
	if state.quoteCalls != 0 {
		t.Errorf("quote must not be called for unresolvable token")
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"", 0},
		{"0x0", 0},
		{"0x10", 16},
		{"42", 42},
	}
	for _, tc := range cases {
		tx := BuiltTransaction{Value: tc.raw}
		v, err := tx.ParseValue()
		if err != nil {
			t.Fatalf("ParseValue(%q) returned error: %v", tc.raw, err)
		}
		if v.Int64() != tc.want {
			t.Errorf("ParseValue(%q) = %s, want %d", tc.raw, v, tc.want)
		}
	}
	if _, err := (&BuiltTransaction{Value: "zzz"}).ParseValue(); err == nil {
		t.Errorf("expected error for malformed value")
	}
}
