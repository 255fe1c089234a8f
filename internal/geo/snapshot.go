package geo

import (
	"context"
	"fmt"
	"time"
)

// 文档注释：内存快照（Provider 的默认实现）
// 背景：数据集在启动时一次性展开为各层级的有序列表与按祖先路径分组的索引，查询期只读共享，无需加锁。
// 约束：索引键为小写祖先路径（见 PathKey）；返回的切片与记录为共享只读引用。
type Snapshot struct {
	levels   [5][]Record
	children [5]map[string][]Record // 以父级路径为键的下级列表；children[District] 以省为键
	BuiltAt  time.Time
}

// NewSnapshot：展开数据集；调用方应先完成 Validate
func NewSnapshot(ds *Dataset) *Snapshot {
	s := &Snapshot{BuiltAt: time.Now()}
	for i := range s.children {
		s.children[i] = map[string][]Record{}
	}
	add := func(level Level, name string, path ...string) {
		r := NewRecord(level, name, path...)
		s.levels[level] = append(s.levels[level], r)
		k := PathKey(path...)
		s.children[level][k] = append(s.children[level][k], r)
	}
	// 已存在但尚无下级的父节点需登记空列表，以区分“无下级”与“父级不存在”
	mark := func(level Level, path ...string) {
		k := PathKey(path...)
		if _, ok := s.children[level][k]; !ok {
			s.children[level][k] = []Record{}
		}
	}
	for _, p := range ds.Provinces {
		add(Province, p.Name)
		mark(District, p.Name)
		for _, d := range p.Districts {
			add(District, d.Name, p.Name)
			mark(Sector, p.Name, d.Name)
			for _, sec := range d.Sectors {
				add(Sector, sec.Name, p.Name, d.Name)
				mark(Cell, p.Name, d.Name, sec.Name)
				for _, c := range sec.Cells {
					add(Cell, c.Name, p.Name, d.Name, sec.Name)
					mark(Village, p.Name, d.Name, sec.Name, c.Name)
					for _, v := range c.Villages {
						add(Village, v, p.Name, d.Name, sec.Name, c.Name)
					}
				}
			}
		}
	}
	for i := range s.levels {
		if s.levels[i] == nil {
			s.levels[i] = []Record{}
		}
	}
	return s
}

func (s *Snapshot) Provinces(ctx context.Context) ([]Record, error) { return s.levels[Province], nil }
func (s *Snapshot) Districts(ctx context.Context) ([]Record, error) { return s.levels[District], nil }
func (s *Snapshot) Sectors(ctx context.Context) ([]Record, error)   { return s.levels[Sector], nil }
func (s *Snapshot) Cells(ctx context.Context) ([]Record, error)     { return s.levels[Cell], nil }
func (s *Snapshot) Villages(ctx context.Context) ([]Record, error)  { return s.levels[Village], nil }

func (s *Snapshot) DistrictsOf(ctx context.Context, province string) ([]Record, error) {
	return s.scoped(District, province)
}

func (s *Snapshot) SectorsOf(ctx context.Context, province, district string) ([]Record, error) {
	return s.scoped(Sector, province, district)
}

func (s *Snapshot) CellsOf(ctx context.Context, province, district, sector string) ([]Record, error) {
	return s.scoped(Cell, province, district, sector)
}

func (s *Snapshot) VillagesOf(ctx context.Context, province, district, sector, cell string) ([]Record, error) {
	return s.scoped(Village, province, district, sector, cell)
}

// 文档注释：按祖先路径取下级
// 背景：命中直接返回；未命中时自上而下定位第一个不存在的祖先，生成可读错误。
func (s *Snapshot) scoped(level Level, path ...string) ([]Record, error) {
	if rs, ok := s.children[level][PathKey(path...)]; ok {
		return rs, nil
	}
	for i := 1; i <= len(path); i++ {
		if _, ok := s.children[Level(i)][PathKey(path[:i]...)]; !ok {
			return nil, MissingAncestor(path[:i]...)
		}
	}
	return nil, MissingAncestor(path...)
}

// 文档注释：祖先缺失错误
// 背景：错误文本会作为 500 响应的 error 字段原样返回，需包含层级与名称，便于调用方定位拼写问题。
// 约束：errors.Is(err, ErrNotFound) 成立。
type NotFoundError struct {
	Path []string // 自上而下的祖先名称，最后一项为缺失的那一级
}

func (e *NotFoundError) Error() string {
	if len(e.Path) == 0 {
		return ErrNotFound.Error()
	}
	last := Level(len(e.Path) - 1)
	msg := fmt.Sprintf("%s %q not found", last, e.Path[len(e.Path)-1])
	if len(e.Path) > 1 {
		msg += fmt.Sprintf(" in %s %q", Level(len(e.Path)-2), e.Path[len(e.Path)-2])
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// MissingAncestor：path 最后一项为缺失的祖先
func MissingAncestor(path ...string) error {
	return &NotFoundError{Path: append([]string(nil), path...)}
}
