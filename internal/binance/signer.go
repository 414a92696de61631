package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"delta-ai/internal/venue"
)

// Credentials Binance API 密钥对。仅在单次执行调用的生命周期内持有，不落盘、不写日志。
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Param 单个请求参数。参数序列化顺序即切片顺序，签名对顺序敏感，
// 因此绝不能经由 map 构造参数集。
type Param struct {
	Key   string
	Value string
}

// DefaultRecvWindow 服务端允许的时钟偏差容忍度（毫秒）。
const DefaultRecvWindow = 5000

// Signer 对有序参数集追加 timestamp/recvWindow 并计算 HMAC-SHA256 签名。
type Signer struct {
	creds      Credentials
	recvWindow int64
	now        func() time.Time
}

// NewSigner 创建签名器。recvWindow 为 0 时使用默认值。
func NewSigner(creds Credentials, recvWindow int64) *Signer {
	if recvWindow <= 0 {
		recvWindow = DefaultRecvWindow
	}
	return &Signer{
		creds:      creds,
		recvWindow: recvWindow,
		now:        time.Now,
	}
}

// APIKey 返回请求头使用的 API Key。
func (s *Signer) APIKey() string {
	return s.creds.APIKey
}

// Sign 将参数序列化为规范 query string，追加 timestamp 与 recvWindow，
// 用 secret 计算 HMAC-SHA256（十六进制），并把 signature 作为最后一个参数附加。
// 任何字段重排都会改变签名并被远端拒绝。
func (s *Signer) Sign(params []Param) (string, error) {
	if s.creds.APIKey == "" {
		return "", venue.Authentication("binance", "缺少 API Key")
	}
	if s.creds.SecretKey == "" {
		return "", venue.Authentication("binance", "缺少 API Secret")
	}

	all := make([]Param, 0, len(params)+2)
	all = append(all, params...)
	all = append(all,
		Param{Key: "timestamp", Value: strconv.FormatInt(s.now().UnixMilli(), 10)},
		Param{Key: "recvWindow", Value: strconv.FormatInt(s.recvWindow, 10)},
	)

	payload := encodeParams(all)
	return payload + "&signature=" + signPayload(s.creds.SecretKey, payload), nil
}

// signPayload 对规范字符串计算 HMAC-SHA256 十六进制签名。
func signPayload(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// encodeParams 按给定顺序编码为 key=value&... 形式。
func encodeParams(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
