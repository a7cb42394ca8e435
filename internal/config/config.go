// 包 config：进程配置（环境变量 + .env 文件），统一默认值
package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionMemory = "memory"
	SessionRedis  = "redis"

	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// 文档注释：服务与离线工具共用的配置
// 约束：只在启动时读取一次；所有字段都有可用默认值，Postgres/Redis/GeoIP 缺省关闭。
type Config struct {
	Addr    string
	APIBase string

	GeoPath       string
	GeoObject     string
	DatasetPath   string
	DatasetSource string
	FetchTimeout  time.Duration

	MapWidth  int
	MapHeight int

	PGEnable    bool
	RedisEnable bool

	SessionStore    string
	SessionTTL      time.Duration
	SessionCapacity int
	SessionCookie   string
	RenderCacheTTL  time.Duration

	GeoIPPath string

	RateLimitEnabled bool
	RateLimitQPS     int

	TLSEnable       bool
	TLSCertPath     string
	TLSKeyPath      string
	TLSRedirect     bool
	TLSRedirectAddr string
}

// LoadContext：启动加载使用的上下文；FetchTimeout 为 0 时不设截止时间
func (c Config) LoadContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.FetchTimeout > 0 {
		return context.WithTimeout(parent, c.FetchTimeout)
	}
	return context.WithCancel(parent)
}

// LoadDotenv：依次加载 .env 与 data/env/.env；文件不存在时忽略，已存在的环境变量不被覆盖
func LoadDotenv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// 文档注释：从环境变量读取配置
// 约束：DATASET_SOURCE=postgres 隐含 PG_ENABLE；SESSION_STORE=redis 隐含 REDIS_ENABLE；数值解析失败回退默认值。
func Load() Config {
	c := Config{
		Addr:    str("ADDR", ":8080"),
		APIBase: strings.TrimSuffix(str("API_BASE", "/api"), "/"),

		GeoPath:       str("GEO_PATH", filepath.Join("data", "50m.json")),
		GeoObject:     str("GEO_OBJECT", "countries"),
		DatasetPath:   str("DATASET_PATH", filepath.Join("data", "religion.json")),
		DatasetSource: strings.ToLower(str("DATASET_SOURCE", SourceFile)),
		FetchTimeout:  time.Duration(optNum("FETCH_TIMEOUT_SEC")) * time.Second,

		MapWidth:  num("MAP_WIDTH", 960),
		MapHeight: num("MAP_HEIGHT", 600),

		PGEnable:    flag("PG_ENABLE", false),
		RedisEnable: flag("REDIS_ENABLE", false),

		SessionStore:    strings.ToLower(str("SESSION_STORE", SessionMemory)),
		SessionTTL:      seconds("SESSION_TTL_SEC", 86400),
		SessionCapacity: num("SESSION_CAPACITY", 10000),
		SessionCookie:   str("SESSION_COOKIE", "rmap_sid"),
		RenderCacheTTL:  seconds("RENDER_CACHE_TTL_SEC", 600),

		GeoIPPath: str("GEOIP_PATH", ""),

		RateLimitEnabled: flag("RATE_LIMIT_ENABLED", false),
		RateLimitQPS:     num("RATE_LIMIT_QPS", 200),

		TLSEnable:       flag("TLS_ENABLE", false),
		TLSCertPath:     str("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:      str("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		TLSRedirect:     flag("TLS_REDIRECT_ENABLE", false),
		TLSRedirectAddr: str("TLS_REDIRECT_ADDR", ":80"),
	}
	if c.APIBase == "" {
		c.APIBase = "/api"
	}
	if c.DatasetSource == SourcePostgres {
		c.PGEnable = true
	}
	if c.SessionStore == SessionRedis {
		c.RedisEnable = true
	}
	if c.SessionStore != SessionRedis {
		c.SessionStore = SessionMemory
	}
	if c.RateLimitQPS <= 0 {
		c.RateLimitQPS = 200
	}
	return c
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func num(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// optNum：可选数值，未设置或非正数返回 0
func optNum(key string) int {
	return num(key, 0)
}

func flag(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return def
}

func seconds(key string, def int) time.Duration {
	return time.Duration(num(key, def)) * time.Second
}
