package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"delta-ai/internal/venue"
)

const venueName = "eisen"

// DefaultConfirmTimeout 等待交易回执的默认上限。
const DefaultConfirmTimeout = 90 * time.Second

const receiptPollInterval = 2 * time.Second

// rpcClient Sender 依赖的节点能力子集。
type rpcClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// Sender 用本地私钥签名并广播链上交易，轮询回执直至确认或超时。
// 私钥只存在于内存，不落盘、不写日志。
type Sender struct {
	client         rpcClient
	privateKey     *ecdsa.PrivateKey
	from           common.Address
	chainID        *big.Int
	confirmTimeout time.Duration
	logger         *zap.Logger
}

// Dial 连接 RPC 节点并构建 Sender。privateKeyHex 可带 0x 前缀。
func Dial(ctx context.Context, rpcURL, privateKeyHex string, confirmTimeout time.Duration, logger *zap.Logger) (*Sender, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, venue.Network(venueName, fmt.Errorf("连接RPC节点失败: %w", err))
	}
	return NewSender(ctx, client, privateKeyHex, confirmTimeout, logger)
}

// NewSender 由现有节点连接构建 Sender。
func NewSender(ctx context.Context, client rpcClient, privateKeyHex string, confirmTimeout time.Duration, logger *zap.Logger) (*Sender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, venue.Authentication(venueName, "解析链上私钥失败")
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, venue.Network(venueName, fmt.Errorf("获取链ID失败: %w", err))
	}

	return &Sender{
		client:         client,
		privateKey:     key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		chainID:        chainID,
		confirmTimeout: confirmTimeout,
		logger:         logger,
	}, nil
}

// From 返回签名地址。
func (s *Sender) From() common.Address {
	return s.from
}

// ChainID 返回节点报告的链ID。
func (s *Sender) ChainID() uint64 {
	return s.chainID.Uint64()
}

// SendAndWait 组装、签名并广播交易，然后等待回执。
// gasLimit 为 0 时向节点估算；交易回滚或确认超时返回链上广播类错误。
func (s *Sender) SendAndWait(ctx context.Context, to common.Address, value *big.Int, data []byte, gasLimit uint64) (common.Hash, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, venue.Broadcast(venueName, "获取nonce失败", true, err)
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, venue.Broadcast(venueName, "获取gas价格失败", true, err)
	}

	if gasLimit == 0 {
		gasLimit, err = s.client.EstimateGas(ctx, ethereum.CallMsg{
			From:  s.from,
			To:    &to,
			Value: value,
			Data:  data,
		})
		if err != nil {
			return common.Hash{}, venue.Broadcast(venueName, "估算gas失败", false, err)
		}
	}

	tx := ethtypes.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(s.chainID), s.privateKey)
	if err != nil {
		return common.Hash{}, venue.Broadcast(venueName, "签名交易失败", false, err)
	}

	if err := s.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, venue.Broadcast(venueName, "发送交易失败", true, err)
	}

	hash := signedTx.Hash()
	s.logger.Info("交易已广播",
		zap.String("tx_hash", hash.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas_limit", gasLimit),
	)

	if err := s.waitMined(ctx, hash); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// waitMined 以固定间隔轮询回执，直到确认、回滚或超时。
func (s *Sender) waitMined(ctx context.Context, hash common.Hash) error {
	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return venue.Broadcast(venueName, fmt.Sprintf("交易 %s 已回滚", hash.Hex()), false, nil)
			}
			s.logger.Info("交易已确认",
				zap.String("tx_hash", hash.Hex()),
				zap.Uint64("block", receipt.BlockNumber.Uint64()),
			)
			return nil
		}

		select {
		case <-ctx.Done():
			return venue.Broadcast(venueName, fmt.Sprintf("等待交易 %s 确认超时", hash.Hex()), true, ctx.Err())
		case <-ticker.C:
		}
	}
}
