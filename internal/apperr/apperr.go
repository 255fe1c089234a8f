// 包 apperr：请求处理的错误分类，HTTP 层据 Kind 统一映射状态码与响应体
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal   Kind = iota // 兜底：未归类错误、请求体解析失败、panic
	KindValidation             // 必填参数缺失
	KindProvider               // 数据源调用失败
	KindNotFound               // 未匹配路由
)

// 文档注释：带分类的错误
// 背景：Message 为对外提示；Err 为底层错误，其文本仅在 KindProvider/KindInternal 时随响应返回。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus：分类到状态码
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Cause：底层错误文本，无底层错误时为空
func (e *Error) Cause() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func Validation(message string) *Error { return &Error{Kind: KindValidation, Message: message} }

func Provider(message string, err error) *Error {
	return &Error{Kind: KindProvider, Message: message, Err: err}
}

func NotFound(message string) *Error { return &Error{Kind: KindNotFound, Message: message} }

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As：提取 *Error；非分类错误包装为 KindInternal
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal server error", err)
}
