package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// 签名串必须按签名时的字节序原样上链路，服务端按接收顺序重算 HMAC，
// 任何中途重排（如 query map 按键名排序）都会使签名校验失败。
func TestAccount_QuerySentInSignedOrder(t *testing.T) {
	var gotRawQuery string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawQuery = r.URL.RawQuery
		if r.Header.Get("X-MBX-APIKEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalWalletBalance":"103.12","availableBalance":"100.00","assets":[],"positions":[]}`))
	}))
	t.Cleanup(server.Close)

	signer := NewSigner(Credentials{APIKey: "test-key", SecretKey: "test-secret"}, 0)
	signer.now = func() time.Time { return time.UnixMilli(1499827319559) }
	client := NewClient(server.URL, signer, nil)

	info, err := client.Account(context.Background())
	if err != nil {
		t.Fatalf("Account returned error: %v", err)
	}
	if info.TotalWalletBalance.String() != "103.12" {
		t.Errorf("totalWalletBalance = %s, want 103.12", info.TotalWalletBalance)
	}

	if gotPath != "/fapi/v3/account" {
		t.Fatalf("path = %q, want /fapi/v3/account", gotPath)
	}

	payload := "timestamp=1499827319559&recvWindow=5000"
	want := payload + "&signature=" + signPayload("test-secret", payload)
	if gotRawQuery != want {
		t.Errorf("raw query = %q, want signed byte order %q", gotRawQuery, want)
	}
}
