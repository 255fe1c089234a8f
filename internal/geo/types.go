// 包 geo：卢旺达行政区划（省/区/镇/村组/村）的只读数据模型与查询契约
package geo

import (
	"context"
	"errors"
	"strings"
)

// 文档注释：行政区记录
// 背景：对外以字符串字典形式返回，便于按同名字段做通用过滤；层级 L 的记录携带 L 以上所有祖先键与 name。
// 约束：记录在快照构建后只读，调用方不得修改。
type Record map[string]string

// 层级
type Level int

const (
	Province Level = iota
	District
	Sector
	Cell
	Village
)

var levelNames = [...]string{"province", "district", "sector", "cell", "village"}
var levelPlurals = [...]string{"provinces", "districts", "sectors", "cells", "villages"}

// 单数键名，同时也是祖先字段名
func (l Level) String() string {
	if l < Province || l > Village {
		return "unknown"
	}
	return levelNames[l]
}

// 复数名称，用于路由与提示信息
func (l Level) Plural() string {
	if l < Province || l > Village {
		return "unknown"
	}
	return levelPlurals[l]
}

// Ancestors：返回该层级之上的祖先字段名，自上而下排列
func (l Level) Ancestors() []string {
	out := make([]string, 0, int(l))
	for i := Province; i < l; i++ {
		out = append(out, i.String())
	}
	return out
}

// NameKey 为记录自身名称字段
const NameKey = "name"

// ErrNotFound：范围查询的祖先不存在
var ErrNotFound = errors.New("not found")

// 文档注释：数据提供方契约
// 背景：五个全量列表与四个按祖先范围的查询；HTTP 层只做参数校验与序列化，数据来源可替换（内存快照/PostgreSQL）。
// 约束：祖先名称按大小写不敏感匹配；祖先不存在返回包装 ErrNotFound 的错误；祖先存在但无下级时返回空切片而非 nil。
type Provider interface {
	Provinces(ctx context.Context) ([]Record, error)
	Districts(ctx context.Context) ([]Record, error)
	Sectors(ctx context.Context) ([]Record, error)
	Cells(ctx context.Context) ([]Record, error)
	Villages(ctx context.Context) ([]Record, error)

	DistrictsOf(ctx context.Context, province string) ([]Record, error)
	SectorsOf(ctx context.Context, province, district string) ([]Record, error)
	CellsOf(ctx context.Context, province, district, sector string) ([]Record, error)
	VillagesOf(ctx context.Context, province, district, sector, cell string) ([]Record, error)
}

// PathKey：祖先路径的大小写不敏感索引键
func PathKey(parts ...string) string {
	lowered := make([]string, len(parts))
	for i, p := range parts {
		lowered[i] = strings.ToLower(p)
	}
	return strings.Join(lowered, "\x00")
}

// NewRecord：按层级构造记录，ancestors 顺序为 province→cell
func NewRecord(level Level, name string, ancestors ...string) Record {
	r := make(Record, len(ancestors)+1)
	for i, a := range ancestors {
		if i >= int(level) {
			break
		}
		r[Level(i).String()] = a
	}
	r[NameKey] = name
	return r
}
