package venue

import (
	"errors"
	"fmt"
)

// Kind 表示执行错误的分类，用于上层决定如何呈现与是否重试。
type Kind string

const (
	// KindAuthentication 密钥缺失、非法或签名被拒。
	KindAuthentication Kind = "authentication"
	// KindInvalidInput 数量非法、符号未知、路径不存在等输入问题，未触达交易场所。
	KindInvalidInput Kind = "invalid_input"
	// KindVenueRejected 交易场所返回非 2xx，附带原始错误响应体。
	KindVenueRejected Kind = "venue_rejected"
	// KindNetwork 网络传输失败或超时。
	KindNetwork Kind = "network_or_timeout"
	// KindChainBroadcast 链上交易发送失败、回滚或确认超时。
	KindChainBroadcast Kind = "chain_broadcast_failed"
	// KindUnknown 非本包产生的错误（如响应体解析失败），不参与临时性判定。
	KindUnknown Kind = "unknown"
)

// Error 携带分类与临时性标记的执行错误。
// 核心不做任何自动重试，临时性只是给调用方的提示。
type Error struct {
	Kind       Kind
	Venue      string
	Message    string
	StatusCode int
	Body       string
	temporary  bool
	cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Venue, e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d: %s)", msg, e.StatusCode, e.Body)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Temporary 返回错误是否属于临时状况（限流、不可用、网络抖动）。
func (e *Error) Temporary() bool {
	return e.temporary
}

// Authentication 构造认证类错误。
func Authentication(venueName, message string) *Error {
	return &Error{Kind: KindAuthentication, Venue: venueName, Message: message}
}

// InvalidInput 构造输入校验错误，此类错误在任何网络调用之前产生。
func InvalidInput(venueName, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Venue: venueName, Message: fmt.Sprintf(format, args...)}
}

// Rejected 构造交易场所拒绝错误。429/418 与 5xx 视为临时。
func Rejected(venueName string, statusCode int, body string) *Error {
	return &Error{
		Kind:       KindVenueRejected,
		Venue:      venueName,
		Message:    "请求被交易场所拒绝",
		StatusCode: statusCode,
		Body:       body,
		temporary:  statusCode == 429 || statusCode == 418 || statusCode >= 500,
	}
}

// Network 构造网络/超时错误，始终视为临时。
func Network(venueName string, cause error) *Error {
	return &Error{Kind: KindNetwork, Venue: venueName, Message: "网络请求失败", temporary: true, cause: cause}
}

// Broadcast 构造链上广播/确认错误。
func Broadcast(venueName, message string, temporary bool, cause error) *Error {
	return &Error{Kind: KindChainBroadcast, Venue: venueName, Message: message, temporary: temporary, cause: cause}
}

// KindOf 提取错误分类，非本包错误归为 KindUnknown。
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return KindUnknown
}

// IsTemporary 判断错误是否可由调用方选择重试。
func IsTemporary(err error) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Temporary()
	}
	return false
}
