// 包 utils：外部资源（Postgres/Redis/输入文件/TLS 证书）的打开与读取工具
package utils

import (
	"religion-map/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：使用地址与密码打开 Redis 客户端；地址为空返回 nil
func OpenRedis(addr, pass string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass})
}

// OpenRedisFromEnv：从 REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB 打开客户端
// 约束：REDIS_DB 解析失败或为负时回退到 0
func OpenRedisFromEnv() *redis.Client {
	addr := env("REDIS_HOST", "127.0.0.1") + ":" + env("REDIS_PORT", "6379")
	db := envInt("REDIS_DB", 0)
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: env("REDIS_PASS", ""), DB: db})
}
