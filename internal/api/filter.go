package api

import (
	"strings"

	"rw-geo-api/internal/geo"
)

// filterRecords：对每个非空参数要求记录存在同名字段且大小写不敏感相等；无参数时原样返回
func filterRecords(records []geo.Record, names, values []string) []geo.Record {
	out := make([]geo.Record, 0, len(records))
next:
	for _, rec := range records {
		for i, name := range names {
			if values[i] == "" {
				continue
			}
			got, ok := rec[name]
			if !ok || !strings.EqualFold(got, values[i]) {
				continue next
			}
		}
		out = append(out, rec)
	}
	return out
}

// filterMessage：已给出的参数值自下而上拼接，如 "Sectors in Gasabo, Kigali"；均未给出时为 "All sectors"
func filterMessage(level geo.Level, values []string) string {
	given := make([]string, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != "" {
			given = append(given, values[i])
		}
	}
	if len(given) == 0 {
		return "All " + level.Plural()
	}
	plural := level.Plural()
	return strings.ToUpper(plural[:1]) + plural[1:] + " in " + strings.Join(given, ", ")
}

// fillTemplate：自左向右逐个替换 %s；参数文本中的 %s 不再参与替换
func fillTemplate(template string, args []string) string {
	parts := strings.Split(template, "%s")
	var b strings.Builder
	for i, p := range parts {
		b.WriteString(p)
		if i < len(args) && i < len(parts)-1 {
			b.WriteString(args[i])
		}
	}
	return b.String()
}

func allPresent(values []string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
