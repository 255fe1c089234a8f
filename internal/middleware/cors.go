// 包 middleware：入口级中间件（跨域、限流），在主入口按配置组合
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// 文档注释：跨域中间件
// 背景：数据为公开参考数据，默认对所有来源开放；预检请求直接以 204 应答，不进入路由。
// 约束：origins 含 "*" 时允许任意来源且不携带凭证；非预检的 OPTIONS 请求同样以 204 结束，不进入路由。
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut,
			http.MethodPatch, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
