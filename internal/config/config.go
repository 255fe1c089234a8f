// 包 config：启动期配置，由环境变量一次性读取后显式传入各组件
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderMemory   = "memory"
	ProviderPostgres = "postgres"
)

// 文档注释：服务配置
// 背景：监听地址、CORS、数据源等在启动时确定并注入构造函数，不在请求路径读取环境变量。
type Config struct {
	Addr                  string
	CORSOrigins           []string
	Provider              string
	DataPath              string
	VillagesEnvelopeArray bool
	MetricsEnabled        bool
	MetricsPath           string
	RateLimitEnabled      bool
	RateLimitQPS          int
	ShutdownTimeout       time.Duration
}

// 文档注释：从环境变量读取配置
// 约束：PORT 缺省 80；ADDR 非空时覆盖完整监听地址；数值/布尔解析失败时回退默认值。
func Load() Config {
	c := Config{
		Addr:                  ":80",
		CORSOrigins:           []string{"*"},
		Provider:              ProviderMemory,
		VillagesEnvelopeArray: true,
		MetricsEnabled:        true,
		MetricsPath:           "/metrics",
		RateLimitQPS:          200,
		ShutdownTimeout:       10 * time.Second,
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		c.Addr = ":" + p
	}
	if a := strings.TrimSpace(os.Getenv("ADDR")); a != "" {
		c.Addr = a
	}
	if s := os.Getenv("CORS_ORIGINS"); s != "" {
		var origins []string
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.CORSOrigins = origins
		}
	}
	if p := strings.ToLower(strings.TrimSpace(os.Getenv("GEO_PROVIDER"))); p != "" {
		c.Provider = p
	}
	c.DataPath = strings.TrimSpace(os.Getenv("GEO_DATA_PATH"))
	c.VillagesEnvelopeArray = envBool("VILLAGES_ENVELOPE_ARRAY", c.VillagesEnvelopeArray)
	c.MetricsEnabled = envBool("METRICS_ENABLED", c.MetricsEnabled)
	if p := os.Getenv("METRICS_PATH"); strings.HasPrefix(p, "/") {
		c.MetricsPath = p
	}
	c.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", c.RateLimitEnabled)
	if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			c.RateLimitQPS = n
		}
	}
	if s := os.Getenv("SHUTDOWN_TIMEOUT_S"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			c.ShutdownTimeout = time.Duration(n) * time.Second
		}
	}
	return c
}

func envBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
