package geo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/rwanda.json
var embeddedDataset []byte

// 文档注释：层级数据集（文件形态）
// 背景：与上游行政区划库一致按省→区→镇→村组→村嵌套组织；文件中的顺序即所有列表的返回顺序。
// 约束：支持 JSON 与 YAML；村仅保留名称。
type Dataset struct {
	Provinces []ProvinceNode `json:"provinces" yaml:"provinces"`
}

type ProvinceNode struct {
	Name      string         `json:"name" yaml:"name"`
	Districts []DistrictNode `json:"districts" yaml:"districts"`
}

type DistrictNode struct {
	Name    string       `json:"name" yaml:"name"`
	Sectors []SectorNode `json:"sectors" yaml:"sectors"`
}

type SectorNode struct {
	Name  string     `json:"name" yaml:"name"`
	Cells []CellNode `json:"cells" yaml:"cells"`
}

type CellNode struct {
	Name     string   `json:"name" yaml:"name"`
	Villages []string `json:"villages" yaml:"villages"`
}

// 文档注释：从文件加载数据集
// 背景：运维可用完整数据集替换内嵌样例；按扩展名选择解析器（.json/.yaml/.yml）。
// 返回：校验通过的数据集；读取、解析或校验失败时返回 error。
func LoadDataset(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDataset(b, filepath.Ext(path))
}

// ParseDataset：按格式解析字节流；ext 为空或 .json 时按 JSON 解析
func ParseDataset(b []byte, ext string) (*Dataset, error) {
	var ds Dataset
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &ds); err != nil {
			return nil, fmt.Errorf("parse yaml dataset: %w", err)
		}
	case "", ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("parse json dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// EmbeddedDataset：内嵌样例数据集（全部省与区，下级为子集）
func EmbeddedDataset() (*Dataset, error) {
	return ParseDataset(embeddedDataset, ".json")
}

// 文档注释：数据集校验
// 背景：范围查询按小写路径建索引，同级重名（忽略大小写）会导致结果串位，必须在加载期拒绝。
// 约束：名称去除首尾空白后不得为空。
func (ds *Dataset) Validate() error {
	if len(ds.Provinces) == 0 {
		return fmt.Errorf("dataset has no provinces")
	}
	seen := map[string]bool{}
	check := func(level Level, name string, path ...string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("empty %s name under %q", level, strings.Join(path, "/"))
		}
		k := level.String() + ":" + PathKey(append(path, name)...)
		if seen[k] {
			return fmt.Errorf("duplicate %s %q under %q", level, name, strings.Join(path, "/"))
		}
		seen[k] = true
		return nil
	}
	for _, p := range ds.Provinces {
		if err := check(Province, p.Name); err != nil {
			return err
		}
		for _, d := range p.Districts {
			if err := check(District, d.Name, p.Name); err != nil {
				return err
			}
			for _, s := range d.Sectors {
				if err := check(Sector, s.Name, p.Name, d.Name); err != nil {
					return err
				}
				for _, c := range s.Cells {
					if err := check(Cell, c.Name, p.Name, d.Name, s.Name); err != nil {
						return err
					}
					for _, v := range c.Villages {
						if err := check(Village, v, p.Name, d.Name, s.Name, c.Name); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

// Counts：各层级记录数量，按 province→village 顺序
func (ds *Dataset) Counts() [5]int {
	var n [5]int
	for _, p := range ds.Provinces {
		n[Province]++
		for _, d := range p.Districts {
			n[District]++
			for _, s := range d.Sectors {
				n[Sector]++
				for _, c := range s.Cells {
					n[Cell]++
					n[Village] += len(c.Villages)
				}
			}
		}
	}
	return n
}
