package api

import (
	"encoding/json"
	"net/http"

	"rw-geo-api/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func success(message string, data any) envelope {
	return envelope{Status: statusSuccess, Message: message, Data: data}
}

// 文档注释：错误统一出口
// 背景：按 apperr.Kind 映射状态码与响应体；校验错误不带 error 字段，未匹配路由不带 data 字段。
// 约束：非 apperr 错误按内部错误处理。
func writeError(w http.ResponseWriter, err error) {
	e := apperr.As(err)
	switch e.Kind {
	case apperr.KindValidation:
		writeJSON(w, e.HTTPStatus(), envelope{Status: statusError, Message: e.Message})
	case apperr.KindNotFound:
		writeJSON(w, e.HTTPStatus(), notFoundEnvelope{Status: statusError, Message: e.Message})
	default:
		writeJSON(w, e.HTTPStatus(), failureEnvelope{Status: statusError, Message: e.Message, Error: e.Cause()})
	}
}
