// 包 api：HTTP 门面，将请求映射为数据提供方调用并序列化为统一信封
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"rw-geo-api/internal/apperr"
	"rw-geo-api/internal/geo"
	"rw-geo-api/internal/logger"
	"rw-geo-api/internal/metrics"
)

const welcomeMessage = "Welcome to Rwanda Administrative divisions API"

// Options：门面构建参数，由主入口从配置传入
type Options struct {
	// 为 true 时 GET /villages 成功响应包裹为单元素数组
	VillagesEnvelopeArray bool
	Logger                *slog.Logger
}

// 文档注释：必填参数查询路由表
// 背景：GET /provinces 无参数；POST 路由从 JSON 请求体读取全部祖先名称并调用范围查询。
// 约束：提示模板的占位符与参数一一对应，自左向右填充。
func lookupRoutes(p geo.Provider) []lookupRoute {
	return []lookupRoute{
		newLookupRoute(http.MethodGet, "/provinces", "List of provinces",
			func(ctx context.Context, _ []string) ([]geo.Record, error) {
				return p.Provinces(ctx)
			}),
		newLookupRoute(http.MethodPost, "/districts", "Districts in %s",
			func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.DistrictsOf(ctx, a[0])
			}, "province"),
		newLookupRoute(http.MethodPost, "/sectors", "Sectors in %s, %s",
			func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.SectorsOf(ctx, a[0], a[1])
			}, "province", "district"),
		newLookupRoute(http.MethodPost, "/cells", "Cells in %s, %s, %s",
			func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.CellsOf(ctx, a[0], a[1], a[2])
			}, "province", "district", "sector"),
		newLookupRoute(http.MethodPost, "/villages", "Villages in %s, %s, %s, %s",
			func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.VillagesOf(ctx, a[0], a[1], a[2], a[3])
			}, "province", "district", "sector", "cell"),
	}
}

// 渐进过滤路由表（GET，参数可选）
func filterRoutes(p geo.Provider, opts Options) []filterRoute {
	return []filterRoute{
		{
			Path: "/districts", Level: geo.District, List: p.Districts,
			Scoped: func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.DistrictsOf(ctx, a[0])
			},
		},
		{
			Path: "/sectors", Level: geo.Sector, List: p.Sectors,
			Scoped: func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.SectorsOf(ctx, a[0], a[1])
			},
		},
		{
			Path: "/cells", Level: geo.Cell, List: p.Cells,
			Scoped: func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.CellsOf(ctx, a[0], a[1], a[2])
			},
		},
		{
			Path: "/villages", Level: geo.Village, List: p.Villages,
			Scoped: func(ctx context.Context, a []string) ([]geo.Record, error) {
				return p.VillagesOf(ctx, a[0], a[1], a[2], a[3])
			},
			WrapArray: opts.VillagesEnvelopeArray,
		},
	}
}

// 文档注释：构建并返回 API 路由
// 背景：根路径欢迎信息、查询路由与过滤路由注册到同一路由器；未匹配请求返回 404 信封。
// 约束：p 需并发安全；返回的处理器不含跨域与恢复中间件，由主入口组合。
func BuildRoutes(p geo.Provider, opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	h := &handlers{log: opts.Logger}
	rt := newRouter()
	rt.Handle(http.MethodGet, "/", http.HandlerFunc(welcome))
	for _, lr := range lookupRoutes(p) {
		rt.Handle(lr.Method, lr.Path, h.serveLookup(lr))
		h.log.Debug("route_registered", "method", lr.Method, "path", lr.Path, "source", lr.Source.String())
	}
	for _, fr := range filterRoutes(p, opts) {
		rt.Handle(http.MethodGet, fr.Path, h.serveFilter(fr))
	}
	return rt
}

type handlers struct {
	log *slog.Logger
}

func welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, welcomeEnvelope{Status: statusSuccess, Message: welcomeMessage})
}

// serveLookup：通用分发，提取 -> 校验 -> 调用 -> 填充提示
func (h *handlers) serveLookup(rt lookupRoute) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vals, err := readParams(r, rt.Source)
		if err != nil {
			writeError(w, err)
			return
		}
		args := make([]string, len(rt.Params))
		for i, name := range rt.Params {
			args[i] = vals[name]
		}
		if err := requireAll(rt.Params, args); err != nil {
			metrics.ValidationErrorsTotal.WithLabelValues(rt.Path).Inc()
			writeError(w, err)
			return
		}
		data, err := safeLookup(r.Context(), rt.Lookup, args)
		if err != nil {
			h.providerFailure(w, rt.Path, rt.name(), err)
			return
		}
		writeJSON(w, http.StatusOK, success(fillTemplate(rt.Message, args), data))
	})
}

// serveFilter：祖先齐全走范围查询，否则全量列表后过滤
func (h *handlers) serveFilter(rt filterRoute) http.Handler {
	names := rt.params()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vals, _ := readParams(r, Query)
		args := make([]string, len(names))
		for i, name := range names {
			args[i] = vals[name]
		}
		var data []geo.Record
		var err error
		if allPresent(args) {
			data, err = safeLookup(r.Context(), rt.Scoped, args)
		} else {
			data, err = safeLookup(r.Context(), func(ctx context.Context, _ []string) ([]geo.Record, error) {
				all, err := rt.List(ctx)
				if err != nil {
					return nil, err
				}
				return filterRecords(all, names, args), nil
			}, nil)
		}
		if err != nil {
			h.providerFailure(w, rt.Path, rt.name(), err)
			return
		}
		env := success(filterMessage(rt.Level, args), data)
		if rt.WrapArray {
			writeJSON(w, http.StatusOK, []envelope{env})
			return
		}
		writeJSON(w, http.StatusOK, env)
	})
}

func (h *handlers) providerFailure(w http.ResponseWriter, route, name string, err error) {
	metrics.ProviderErrorsTotal.WithLabelValues(route).Inc()
	h.log.Warn("provider_error", "route", route, "error", err)
	writeError(w, apperr.Provider("Failed to fetch "+name, err))
}

// safeLookup：调用数据源，panic 转为错误；成功时保证结果非 nil
func safeLookup(ctx context.Context, fn lookupFunc, args []string) (data []geo.Record, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			data, err = nil, fmt.Errorf("%v", rec)
		}
	}()
	data, err = fn(ctx, args)
	if err == nil && data == nil {
		data = []geo.Record{}
	}
	return data, err
}
