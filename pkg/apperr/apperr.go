package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 定义了领域错误的分类枚举。
// 所有跨越服务层边界的业务错误都应归入其中之一。
type Kind int

const (
	// KindInvalidArgument 表示请求本身不合法（评分越界、缺少必填字段、负数加分等）。
	// 此类错误必须在任何状态变更之前被拒绝。
	KindInvalidArgument Kind = iota
	// KindNotFound 表示目标实体不存在，或其存在性被有意隐藏（私有收藏集）。
	KindNotFound
	// KindForbidden 表示请求者已通过认证但无权执行该操作。
	KindForbidden
	// KindConflict 表示请求与当前状态冲突（例如邮箱已被注册）。
	KindConflict
)

// Error 是携带分类信息的领域错误。
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New 构造一个不携带底层原因的领域错误。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 构造一个携带底层原因的领域错误，保留%w链。
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// InvalidArgument 是 New(KindInvalidArgument, ...) 的快捷方式。
func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }

// NotFound 是 New(KindNotFound, ...) 的快捷方式。
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Forbidden 是 New(KindForbidden, ...) 的快捷方式。
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Conflict 是 New(KindConflict, ...) 的快捷方式。
func Conflict(message string) *Error { return New(KindConflict, message) }

// KindOf 提取错误链中的领域错误分类。
// 对于未分类的错误返回 (0, false)，调用方应将其视为内部错误。
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// HTTPStatus 将领域错误分类映射为HTTP状态码。
// 未分类的错误一律映射为500。
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
