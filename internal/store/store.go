// 包 store: 基于 PostgreSQL 的行政区只读数据源，实现 geo.Provider；写入仅由离线导入工具调用
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"rw-geo-api/internal/geo"
	"rw-geo-api/internal/logger"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// 祖先列名，顺序与 geo.Level 一致
var ancestorCols = []string{"province", "district", "sector", "cell"}

const selectCols = "SELECT province, district, sector, cell, name FROM _rw_units"

// 文档注释：构造范围查询语句
// 背景：按层级与前 n 个祖先（忽略大小写）过滤，ORDER BY id 保持导入顺序；参数 $1 为层级，其后为祖先名称。
func scopedQuery(n int) string {
	var b strings.Builder
	b.WriteString(selectCols)
	b.WriteString(" WHERE level=$1")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, " AND lower(%s)=lower($%d)", ancestorCols[i], i+2)
	}
	b.WriteString(" ORDER BY id")
	return b.String()
}

// 文档注释：构造节点存在性检查语句
// 背景：范围查询为空时区分“无下级”与“祖先不存在”；检查 path 指向的节点（层级 len(path)-1）是否存在。
func existsQuery(n int) string {
	var b strings.Builder
	b.WriteString("SELECT 1 FROM _rw_units WHERE level=$1")
	for i := 0; i < n-1; i++ {
		fmt.Fprintf(&b, " AND lower(%s)=lower($%d)", ancestorCols[i], i+2)
	}
	fmt.Fprintf(&b, " AND lower(name)=lower($%d) LIMIT 1", n+1)
	return b.String()
}

func (s *Store) Provinces(ctx context.Context) ([]geo.Record, error) {
	return s.scoped(ctx, geo.Province)
}

func (s *Store) Districts(ctx context.Context) ([]geo.Record, error) {
	return s.scoped(ctx, geo.District)
}

func (s *Store) Sectors(ctx context.Context) ([]geo.Record, error) {
	return s.scoped(ctx, geo.Sector)
}

func (s *Store) Cells(ctx context.Context) ([]geo.Record, error) {
	return s.scoped(ctx, geo.Cell)
}

func (s *Store) Villages(ctx context.Context) ([]geo.Record, error) {
	return s.scoped(ctx, geo.Village)
}

func (s *Store) DistrictsOf(ctx context.Context, province string) ([]geo.Record, error) {
	return s.checked(ctx, geo.District, province)
}

func (s *Store) SectorsOf(ctx context.Context, province, district string) ([]geo.Record, error) {
	return s.checked(ctx, geo.Sector, province, district)
}

func (s *Store) CellsOf(ctx context.Context, province, district, sector string) ([]geo.Record, error) {
	return s.checked(ctx, geo.Cell, province, district, sector)
}

func (s *Store) VillagesOf(ctx context.Context, province, district, sector, cell string) ([]geo.Record, error) {
	return s.checked(ctx, geo.Village, province, district, sector, cell)
}

func (s *Store) scoped(ctx context.Context, level geo.Level, path ...string) ([]geo.Record, error) {
	args := make([]any, 0, len(path)+1)
	args = append(args, int(level))
	for _, p := range path {
		args = append(args, p)
	}
	rows, err := s.db.QueryContext(ctx, scopedQuery(len(path)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []geo.Record{}
	for rows.Next() {
		var cols [4]string
		var name string
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &name); err != nil {
			return nil, err
		}
		out = append(out, geo.NewRecord(level, name, cols[:level]...))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("db_units_loaded", "level", level.String(), "depth", len(path), "rows", len(out))
	return out, nil
}

// 文档注释：范围查询并校验祖先
// 背景：结果为空时自上而下检查祖先是否存在，缺失时返回 geo.NotFoundError，与内存快照行为一致。
func (s *Store) checked(ctx context.Context, level geo.Level, path ...string) ([]geo.Record, error) {
	out, err := s.scoped(ctx, level, path...)
	if err != nil || len(out) > 0 {
		return out, err
	}
	for i := 1; i <= len(path); i++ {
		ok, err := s.exists(ctx, path[:i]...)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.L().Debug("db_ancestor_missing", "path", strings.Join(path[:i], "/"))
			return nil, geo.MissingAncestor(path[:i]...)
		}
	}
	return out, nil
}

func (s *Store) exists(ctx context.Context, path ...string) (bool, error) {
	args := make([]any, 0, len(path)+1)
	args = append(args, len(path)-1)
	for _, p := range path {
		args = append(args, p)
	}
	var one int
	err := s.db.QueryRowContext(ctx, existsQuery(len(path)), args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// 文档注释：以数据集整体替换行政区表
// 背景：供离线导入工具使用；单事务内清空并按数据集顺序写入，保证 id 顺序即列表顺序，失败时整体回滚。
// 返回：写入行数。
func (s *Store) ReplaceAll(ctx context.Context, ds *geo.Dataset) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "TRUNCATE _rw_units RESTART IDENTITY"); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO _rw_units(level, province, district, sector, cell, name) VALUES($1,$2,$3,$4,$5,$6)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	count := 0
	insert := func(level geo.Level, name string, path ...string) error {
		var cols [4]string
		copy(cols[:], path)
		if _, err := stmt.ExecContext(ctx, int(level), cols[0], cols[1], cols[2], cols[3], name); err != nil {
			return fmt.Errorf("insert %s %q: %w", level, name, err)
		}
		count++
		return nil
	}
	for _, p := range ds.Provinces {
		if err := insert(geo.Province, p.Name); err != nil {
			return 0, err
		}
		for _, d := range p.Districts {
			if err := insert(geo.District, d.Name, p.Name); err != nil {
				return 0, err
			}
			for _, sec := range d.Sectors {
				if err := insert(geo.Sector, sec.Name, p.Name, d.Name); err != nil {
					return 0, err
				}
				for _, c := range sec.Cells {
					if err := insert(geo.Cell, c.Name, p.Name, d.Name, sec.Name); err != nil {
						return 0, err
					}
					for _, v := range c.Villages {
						if err := insert(geo.Village, v, p.Name, d.Name, sec.Name, c.Name); err != nil {
							return 0, err
						}
					}
				}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Info("db_units_replaced", "rows", count)
	return count, nil
}
