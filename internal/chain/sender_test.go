package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"delta-ai/internal/venue"
)

// anvil 默认测试私钥，仅用于单元测试。
const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var errNotFound = errors.New("not found")

type fakeRPC struct {
	receiptStatus uint64
	receiptReady  bool
	sendErr       error
	nonceErr      error
	sent          *ethtypes.Transaction
}

func (f *fakeRPC) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(8453), nil
}

func (f *fakeRPC) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if f.nonceErr != nil {
		return 0, f.nonceErr
	}
	return 7, nil
}

func (f *fakeRPC) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeRPC) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 210000, nil
}

func (f *fakeRPC) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = tx
	return nil
}

func (f *fakeRPC) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	if !f.receiptReady {
		return nil, errNotFound
	}
	return &ethtypes.Receipt{Status: f.receiptStatus, BlockNumber: big.NewInt(100)}, nil
}

func newTestSender(t *testing.T, rpc *fakeRPC, timeout time.Duration) *Sender {
	t.Helper()
	s, err := NewSender(context.Background(), rpc, "0x"+testKeyHex, timeout, nil)
	if err != nil {
		t.Fatalf("NewSender returned error: %v", err)
	}
	return s
}

func TestSendAndWait_Confirmed(t *testing.T) {
	rpc := &fakeRPC{receiptReady: true, receiptStatus: ethtypes.ReceiptStatusSuccessful}
	s := newTestSender(t, rpc, time.Second)

	to := common.HexToAddress("0x6e4141d33021b52c91c28608403db4a0ffb50ec6")
	hash, err := s.SendAndWait(context.Background(), to, big.NewInt(0), []byte{0xde, 0xad}, 500000)
	if err != nil {
		t.Fatalf("SendAndWait returned error: %v", err)
	}
	if rpc.sent == nil {
		t.Fatalf("transaction was not broadcast")
	}
	if hash != rpc.sent.Hash() {
		t.Errorf("returned hash %s does not match broadcast tx %s", hash.Hex(), rpc.sent.Hash().Hex())
	}
	if rpc.sent.Nonce() != 7 || rpc.sent.Gas() != 500000 {
		t.Errorf("tx fields: nonce=%d gas=%d", rpc.sent.Nonce(), rpc.sent.Gas())
	}
	if *rpc.sent.To() != to {
		t.Errorf("tx to = %s", rpc.sent.To().Hex())
	}
}

func TestSendAndWait_EstimatesGasWhenZero(t *testing.T) {
	rpc := &fakeRPC{receiptReady: true, receiptStatus: ethtypes.ReceiptStatusSuccessful}
	s := newTestSender(t, rpc, time.Second)

	_, err := s.SendAndWait(context.Background(), common.Address{}, big.NewInt(0), nil, 0)
	if err != nil {
		t.Fatalf("SendAndWait returned error: %v", err)
	}
	if rpc.sent.Gas() != 210000 {
		t.Errorf("expected estimated gas 210000, got %d", rpc.sent.Gas())
	}
}

func TestSendAndWait_Reverted(t *testing.T) {
	rpc := &fakeRPC{receiptReady: true, receiptStatus: ethtypes.ReceiptStatusFailed}
	s := newTestSender(t, rpc, time.Second)

	_, err := s.SendAndWait(context.Background(), common.Address{}, big.NewInt(0), nil, 100000)
	if venue.KindOf(err) != venue.KindChainBroadcast {
		t.Fatalf("expected KindChainBroadcast, got %v", err)
	}
	if venue.IsTemporary(err) {
		t.Errorf("a reverted transaction is not temporary")
	}
}

func TestSendAndWait_ConfirmTimeout(t *testing.T) {
	rpc := &fakeRPC{receiptReady: false}
	s := newTestSender(t, rpc, 50*time.Millisecond)

	_, err := s.SendAndWait(context.Background(), common.Address{}, big.NewInt(0), nil, 100000)
	if venue.KindOf(err) != venue.KindChainBroadcast {
		t.Fatalf("expected KindChainBroadcast, got %v", err)
	}
	if !venue.IsTemporary(err) {
		t.Errorf("confirm timeout should be temporary")
	}
}

func TestSendAndWait_NonceFailure(t *testing.T) {
	rpc := &fakeRPC{nonceErr: errors.New("rpc down")}
	s := newTestSender(t, rpc, time.Second)

	_, err := s.SendAndWait(context.Background(), common.Address{}, big.NewInt(0), nil, 100000)
	if venue.KindOf(err) != venue.KindChainBroadcast || !venue.IsTemporary(err) {
		t.Fatalf("expected temporary broadcast error, got %v", err)
	}
}

func TestNewSender_BadKey(t *testing.T) {
	_, err := NewSender(context.Background(), &fakeRPC{}, "not-a-key", time.Second, nil)
	if venue.KindOf(err) != venue.KindAuthentication {
		t.Fatalf("expected KindAuthentication, got %v", err)
	}
}
