package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"rw-geo-api/internal/apperr"
)

// 请求体上限
const maxBodyBytes = 100 << 10

var validate = validator.New()

// 文档注释：按来源提取请求参数
// 背景：Query 取查询串中同名键的第一个值；Body 仅解析 application/json，其余类型视为空对象。
// 约束：请求体为非法 JSON 或 JSON 标量时返回内部错误；数组请求体视为空对象。
func readParams(r *http.Request, src ParamSource) (map[string]string, error) {
	if src == Query {
		out := make(map[string]string)
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
		return out, nil
	}
	return readBody(r)
}

func readBody(r *http.Request) (map[string]string, error) {
	out := make(map[string]string)
	if r.Body == nil || !isJSON(r.Header.Get("Content-Type")) {
		return out, nil
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, apperr.Internal("Internal server error", err)
	}
	if len(b) > maxBodyBytes {
		return nil, apperr.Internal("Internal server error", errors.New("request entity too large"))
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperr.Internal("Internal server error", fmt.Errorf("malformed json body: %w", err))
	}
	if dec.More() {
		return nil, apperr.Internal("Internal server error", errors.New("malformed json body: trailing data"))
	}
	switch obj := v.(type) {
	case map[string]any:
		for k, val := range obj {
			if s, ok := bodyValue(val); ok {
				out[k] = s
			}
		}
		return out, nil
	case []any:
		return out, nil
	default:
		return nil, apperr.Internal("Internal server error", errors.New("json body must be an object or array"))
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// bodyValue：将 JSON 值转为参数文本；null、false、0 与空串视为缺失
func bodyValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		if !x {
			return "", false
		}
		return "true", true
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			return x.String(), true
		}
		if f == 0 {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// requireAll：任一必填参数为空时返回校验错误，提示列出全部必填参数
func requireAll(names, values []string) error {
	for _, v := range values {
		if err := validate.Var(v, "required"); err != nil {
			return apperr.Validation(strings.Join(names, ", ") + " required")
		}
	}
	return nil
}
