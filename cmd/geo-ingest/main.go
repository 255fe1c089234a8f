// 数据导入工具：读取行政区数据集（JSON/YAML）并整体写入 PostgreSQL，供 postgres 数据源只读查询
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"rw-geo-api/internal/geo"
	"rw-geo-api/internal/logger"
	"rw-geo-api/internal/migrate"
	"rw-geo-api/internal/store"
	"rw-geo-api/internal/utils"

	"github.com/joho/godotenv"
)

// 路径优先级：命令行参数 > GEO_DATA_PATH > 内嵌样例
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	path := os.Getenv("GEO_DATA_PATH")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	var ds *geo.Dataset
	var err error
	if path != "" {
		ds, err = geo.LoadDataset(path)
	} else {
		ds, err = geo.EmbeddedDataset()
	}
	if err != nil {
		l.Error("dataset_load_error", "path", path, "err", err)
		os.Exit(1)
	}
	c := ds.Counts()
	l.Info("dataset_loaded", "path", path, "provinces", c[geo.Province], "districts", c[geo.District],
		"sectors", c[geo.Sector], "cells", c[geo.Cell], "villages", c[geo.Village])

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	start := time.Now()
	n, err := store.AttachDB(db).ReplaceAll(ctx, ds)
	if err != nil {
		l.Error("ingest_error", "err", err)
		os.Exit(1)
	}
	l.Info("ingest_success", "rows", n, "duration_ms", time.Since(start).Milliseconds())
}
