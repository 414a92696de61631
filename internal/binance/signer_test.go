package binance

import (
	"errors"
	"strings"
	"testing"
	"time"

	"delta-ai/internal/venue"
)

// 官方文档示例向量：
// https://developers.binance.com/docs/derivatives/usds-margined-futures/general-info
const (
	docsSecret  = "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	docsPayload = "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	docsWant    = "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71"
)

func TestSignPayload_DocsVector(t *testing.T) {
	if got := signPayload(docsSecret, docsPayload); got != docsWant {
		t.Fatalf("signature mismatch:\n got  %s\n want %s", got, docsWant)
	}
}

func fixedSigner(t *testing.T) *Signer {
	t.Helper()
	s := NewSigner(Credentials{APIKey: "key", SecretKey: docsSecret}, 0)
	s.now = func() time.Time { return time.UnixMilli(1499827319559) }
	return s
}

func TestSign_Deterministic(t *testing.T) {
	s := fixedSigner(t)
	params := []Param{
		{Key: "symbol", Value: "ETHUSDT"},
		{Key: "side", Value: "SELL"},
		{Key: "type", Value: "MARKET"},
		{Key: "quantity", Value: "0.5"},
	}

	first, err := s.Sign(params)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	second, err := s.Sign(params)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if first != second {
		t.Fatalf("signing is not deterministic:\n %s\n %s", first, second)
	}

	wantPrefix := "symbol=ETHUSDT&side=SELL&type=MARKET&quantity=0.5&timestamp=1499827319559&recvWindow=5000&signature="
	if !strings.HasPrefix(first, wantPrefix) {
		t.Fatalf("canonical payload mismatch: %s", first)
	}
	sig := strings.TrimPrefix(first, wantPrefix)
	if len(sig) != 64 {
		t.Fatalf("expected 64 hex chars of signature, got %d: %q", len(sig), sig)
	}
}

func TestSign_OrderSensitive(t *testing.T) {
	s := fixedSigner(t)
	a, err := s.Sign([]Param{{Key: "symbol", Value: "ETHUSDT"}, {Key: "side", Value: "BUY"}})
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	b, err := s.Sign([]Param{{Key: "side", Value: "BUY"}, {Key: "symbol", Value: "ETHUSDT"}})
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	sigA := a[strings.LastIndex(a, "=")+1:]
	sigB := b[strings.LastIndex(b, "=")+1:]
	if sigA == sigB {
		t.Fatalf("reordered params must change the signature")
	}
}

func TestSign_MissingCredentials(t *testing.T) {
	cases := []struct {
		name  string
		creds Credentials
	}{
		{"no key", Credentials{SecretKey: "s"}},
		{"no secret", Credentials{APIKey: "k"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSigner(tc.creds, 0).Sign(nil)
			if err == nil {
				t.Fatalf("expected authentication error")
			}
			var verr *venue.Error
			if !errors.As(err, &verr) || verr.Kind != venue.KindAuthentication {
				t.Fatalf("expected KindAuthentication, got %v", err)
			}
		})
	}
}
