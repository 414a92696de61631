package eisen

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"delta-ai/internal/venue"
)

// TokenEntry 符号解析结果：小写地址与精度。
type TokenEntry struct {
	Address  string
	Decimals uint8
}

// chainRegistry 单条链的双向索引，符号与地址都以小写归一。
type chainRegistry struct {
	symToToken map[string]TokenEntry
	addrToSym  map[string]string
}

// metadataClient 仅 Resolver 需要的客户端能力。
type metadataClient interface {
	Metadata(ctx context.Context, chainID uint64) (*ChainMetadata, error)
}

// Resolver 按链缓存代币登记表，提供符号→地址/精度解析。
// 缓存命中不发起网络请求，Invalidate 后下次访问重新拉取。
type Resolver struct {
	client metadataClient
	logger *zap.Logger

	mu     sync.RWMutex
	chains map[uint64]*chainRegistry
}

// NewResolver 创建解析器。
func NewResolver(client metadataClient, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client: client,
		logger: logger,
		chains: make(map[uint64]*chainRegistry),
	}
}

// Resolve 将代币符号解析为链上地址与精度，符号大小写不敏感。
// 未登记的符号返回输入类错误，不触发网络重试。
func (r *Resolver) Resolve(ctx context.Context, chainID uint64, symbol string) (TokenEntry, error) {
	reg, err := r.registry(ctx, chainID)
	if err != nil {
		return TokenEntry{}, err
	}
	entry, ok := reg.symToToken[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return TokenEntry{}, venue.InvalidInput(venueName, "链 %d 上未登记代币 %q", chainID, symbol)
	}
	return entry, nil
}

// SymbolByAddress 反向解析地址对应的符号，未知地址返回空串。
func (r *Resolver) SymbolByAddress(ctx context.Context, chainID uint64, address string) (string, error) {
	reg, err := r.registry(ctx, chainID)
	if err != nil {
		return "", err
	}
	return reg.addrToSym[strings.ToLower(strings.TrimSpace(address))], nil
}

// Invalidate 丢弃某条链的缓存。
func (r *Resolver) Invalidate(chainID uint64) {
	r.mu.Lock()
	delete(r.chains, chainID)
	r.mu.Unlock()
}

func (r *Resolver) registry(ctx context.Context, chainID uint64) (*chainRegistry, error) {
	r.mu.RLock()
	reg, ok := r.chains[chainID]
	r.mu.RUnlock()
	if ok {
		return reg, nil
	}

	meta, err := r.client.Metadata(ctx, chainID)
	if err != nil {
		return nil, err
	}

	reg = &chainRegistry{
		symToToken: make(map[string]TokenEntry, len(meta.Tokens)),
		addrToSym:  make(map[string]string, len(meta.Tokens)),
	}
	for _, token := range meta.Tokens {
		sym := strings.ToLower(token.Symbol)
		addr := strings.ToLower(token.Address)
		reg.symToToken[sym] = TokenEntry{Address: addr, Decimals: token.Decimals}
		reg.addrToSym[addr] = sym
	}

	r.mu.Lock()
	r.chains[chainID] = reg
	r.mu.Unlock()

	r.logger.Info("已加载链代币登记表",
		zap.Uint64("chain_id", chainID),
		zap.Int("tokens", len(meta.Tokens)),
	)
	return reg, nil
}
