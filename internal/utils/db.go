package utils

import (
	"database/sql"
	"net/url"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv：由 PG_* 环境变量拼接 DSN；库名缺省 religion_map
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   env("PG_HOST", "localhost") + ":" + env("PG_PORT", "5432"),
		Path:   "/" + env("PG_DB", "religion_map"),
	}
	user := env("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	q := url.Values{}
	q.Set("sslmode", env("PG_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

// 文档注释：按环境变量打开 Postgres 连接池
// 约束：sql.Open 不建立连接，调用方自行 Ping；PG_MAX_OPEN_CONNS/PG_MAX_IDLE_CONNS 解析失败时使用默认值。
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(envInt("PG_MAX_OPEN_CONNS", 20))
	db.SetMaxIdleConns(envInt("PG_MAX_IDLE_CONNS", 10))
	return db, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
