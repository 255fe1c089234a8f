package migrate

import (
	"database/sql"
	"rw-geo-api/internal/logger"
)

// 背景：导入工具首次运行时自动创建行政区表与索引；服务只读，不在启动路径执行
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；每个层级一行，祖先列自上而下填充，未用到的列为空串
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _rw_units (
            id SERIAL PRIMARY KEY,
            level SMALLINT NOT NULL,
            province TEXT NOT NULL DEFAULT '',
            district TEXT NOT NULL DEFAULT '',
            sector TEXT NOT NULL DEFAULT '',
            cell TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_rw_units_level ON _rw_units(level, id)`,
		`CREATE INDEX IF NOT EXISTS idx_rw_units_path ON _rw_units(level, lower(province), lower(district), lower(sector), lower(cell))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_rw_units ON _rw_units(level, lower(province), lower(district), lower(sector), lower(cell), lower(name))`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
