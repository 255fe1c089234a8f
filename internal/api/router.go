package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"rw-geo-api/internal/apperr"
	"rw-geo-api/internal/logger"
	"rw-geo-api/internal/metrics"
)

// 未匹配请求在指标中的路由标签
const unmatchedRoute = "unmatched"

// 文档注释：基于 ServeMux 的路由器
// 背景：以 "METHOD /path" 模式注册；匹配前先做路径归一化；方法不符或路径不存在一律返回 404 信封，不使用 ServeMux 默认的 405/文本 404。
// 约束：每条路由按注册时的路径记录请求计数与耗时。
type Router struct {
	mux *http.ServeMux
}

func newRouter() *Router { return &Router{mux: http.NewServeMux()} }

// Handle：注册 method+path；path 为 "/" 时仅精确匹配根路径
func (rt *Router) Handle(method, path string, h http.Handler) {
	pattern := path
	if path == "/" {
		pattern = "/{$}"
	}
	rt.mux.Handle(method+" "+pattern, instrument(path, h))
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = normalizePath(r)
	if _, pattern := rt.mux.Handler(r); pattern == "" {
		instrument(unmatchedRoute, http.HandlerFunc(notFound)).ServeHTTP(w, r)
		return
	}
	rt.mux.ServeHTTP(w, r)
}

// 文档注释：路径归一化
// 背景：路由匹配忽略大小写，并允许一个结尾斜杠（/provinces/ 与 /Provinces 均命中 /provinces）。
// 约束：注册路径均为小写；根路径 "/" 保持精确匹配；路径未变化时返回原请求。
func normalizePath(r *http.Request) *http.Request {
	p := strings.ToLower(r.URL.Path)
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if p == r.URL.Path {
		return r
	}
	r2 := new(http.Request)
	*r2 = *r
	u := *r.URL
	u.Path = p
	u.RawPath = ""
	r2.URL = &u
	return r2
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperr.NotFound("Route not found"))
}

type recorder struct {
	http.ResponseWriter
	status int
}

func (w *recorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h.ServeHTTP(rec, r)
		metrics.ObserveRequest(route, r.Method, rec.status, time.Since(start))
	})
}

// 文档注释：兜底恢复中间件
// 背景：处理链中任何未捕获的 panic 都转为 500 内部错误信封，进程不退出。
// 约束：http.ErrAbortHandler 原样抛出，交由 net/http 中断连接。
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := fmt.Errorf("%v", rec)
			logger.L().Error("panic_recovered", "method", r.Method, "path", r.URL.Path, "error", err)
			writeError(w, apperr.Internal("Internal server error", err))
		}()
		next.ServeHTTP(w, r)
	})
}
