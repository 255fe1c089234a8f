package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"rw-geo-api/internal/geo"
)

// 文档注释：成功返回结构（对外）
// 背景：所有查询类路由共用同一信封，data 为数据提供方的原始结果。
// 约束：字段顺序与名称稳定；Data 为空集合时序列化为 []。
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// 数据源失败与内部错误：data 恒为 null，error 携带底层错误文本
type failureEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   string `json:"error"`
}

// 未匹配路由：无 data 字段
type notFoundEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   any    `json:"error"`
}

type welcomeEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ParamSource：参数来源，注册路由时按方法确定
type ParamSource int

const (
	Query ParamSource = iota
	Body
)

func (s ParamSource) String() string {
	if s == Body {
		return "body"
	}
	return "query"
}

// sourceFor：GET/HEAD 读查询串，其余方法读请求体
func sourceFor(method string) ParamSource {
	if method == http.MethodGet || method == http.MethodHead {
		return Query
	}
	return Body
}

type lookupFunc func(ctx context.Context, args []string) ([]geo.Record, error)

// 文档注释：查询路由描述
// 背景：一条描述对应一个方法+路径；由同一个通用分发函数处理（提取参数、校验必填、调用数据源、填充提示信息）。
// 约束：Message 中 %s 的个数必须等于 Params 的个数；Source 在注册时固定，不按请求推断。
type lookupRoute struct {
	Method  string
	Path    string
	Params  []string
	Source  ParamSource
	Message string
	Lookup  lookupFunc
}

func newLookupRoute(method, path, message string, lookup lookupFunc, params ...string) lookupRoute {
	if n := strings.Count(message, "%s"); n != len(params) {
		panic(fmt.Sprintf("api: route %s %s: message %q has %d placeholders for %d params",
			method, path, message, n, len(params)))
	}
	return lookupRoute{
		Method:  method,
		Path:    path,
		Params:  params,
		Source:  sourceFor(method),
		Message: message,
		Lookup:  lookup,
	}
}

// name：失败提示中使用的路由名（去掉前导斜杠）
func (rt lookupRoute) name() string { return strings.TrimPrefix(rt.Path, "/") }

// 文档注释：渐进过滤路由描述（GET，参数可选）
// 背景：祖先参数齐全时走范围查询；否则取该层全量列表并按已给出的参数做大小写不敏感过滤。
// 约束：参数为该层级的全部祖先键，自上而下排列；WrapArray 仅作用于成功响应。
type filterRoute struct {
	Path      string
	Level     geo.Level
	List      func(ctx context.Context) ([]geo.Record, error)
	Scoped    lookupFunc
	WrapArray bool
}

func (rt filterRoute) params() []string { return rt.Level.Ancestors() }

func (rt filterRoute) name() string { return strings.TrimPrefix(rt.Path, "/") }
