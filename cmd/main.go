// 程序入口：仅负责读取配置、初始化数据源并启动服务；路由注册在 internal/api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"rw-geo-api/internal/api"
	"rw-geo-api/internal/config"
	"rw-geo-api/internal/geo"
	"rw-geo-api/internal/logger"
	"rw-geo-api/internal/metrics"
	"rw-geo-api/internal/middleware"
	"rw-geo-api/internal/store"
	"rw-geo-api/internal/utils"
	"rw-geo-api/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.Load()
	l.Debug("config_loaded", "addr", cfg.Addr, "provider", cfg.Provider, "data_path", cfg.DataPath,
		"villages_array", cfg.VillagesEnvelopeArray, "rate_limit", cfg.RateLimitEnabled)

	provider, closeProvider, err := openProvider(cfg, l)
	if err != nil {
		l.Error("provider_open_error", "provider", cfg.Provider, "err", err)
		os.Exit(1)
	}
	defer closeProvider()

	handler := newHandler(cfg, provider, l)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		l.Info("listening", "service", version.Name, "addr", cfg.Addr, "commit", version.Commit)
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("listen_error", "err", err)
			closeProvider()
			os.Exit(1)
		}
	case <-ctx.Done():
		l.Info("shutdown_begin", "timeout", cfg.ShutdownTimeout.String())
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
			return
		}
		l.Info("shutdown_ok")
	}
}

// 文档注释：组装对外处理链
// 背景：指标路径与 API 路由挂载在同一 ServeMux；由外向内依次为跨域、访问日志、恢复、限流。
// 约束：恢复位于访问日志之内，panic 转成的 500 也会被记录。
func newHandler(cfg config.Config, p geo.Provider, l *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	if cfg.MetricsEnabled {
		mux.Handle(cfg.MetricsPath, metrics.Handler())
	}
	mux.Handle("/", api.BuildRoutes(p, api.Options{
		VillagesEnvelopeArray: cfg.VillagesEnvelopeArray,
		Logger:                l,
	}))
	return wrap(cfg, l, mux)
}

func wrap(cfg config.Config, l *slog.Logger, next http.Handler) http.Handler {
	h := next
	if cfg.RateLimitEnabled {
		h = middleware.RateLimit(cfg.RateLimitQPS)(h)
		l.Info("rate_limit_enabled", "qps", cfg.RateLimitQPS)
	}
	h = api.Recover(h)
	h = logger.AccessMiddleware(l)(h)
	return middleware.CORS(cfg.CORSOrigins)(h)
}

// 文档注释：按配置打开数据提供方
// 背景：memory 读取数据集文件（未配置时使用内嵌样例）并构建快照；postgres 连接由 geo-ingest 写入的库表。
// 约束：返回的关闭函数可重复调用。
func openProvider(cfg config.Config, l *slog.Logger) (geo.Provider, func(), error) {
	switch cfg.Provider {
	case config.ProviderMemory:
		var ds *geo.Dataset
		var err error
		if cfg.DataPath != "" {
			ds, err = geo.LoadDataset(cfg.DataPath)
		} else {
			ds, err = geo.EmbeddedDataset()
		}
		if err != nil {
			return nil, nil, err
		}
		snap := geo.NewSnapshot(ds)
		c := ds.Counts()
		l.Info("dataset_loaded", "path", cfg.DataPath, "provinces", c[geo.Province], "districts", c[geo.District],
			"sectors", c[geo.Sector], "cells", c[geo.Cell], "villages", c[geo.Village], "built_at", snap.BuiltAt)
		return snap, func() {}, nil
	case config.ProviderPostgres:
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		l.Info("db_ping_ok")
		st := store.AttachDB(db)
		var once sync.Once
		return st, func() { once.Do(func() { _ = st.Close() }) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
