package migrate

import (
	"database/sql"

	"religion-map/internal/logger"
)

// 首次运行自动创建数据集与统计表
// 约束：使用 IF NOT EXISTS，可重复执行；数值字段以 TEXT 保存原始文本，解析在读取端进行
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _religion_profiles (
            name TEXT PRIMARY KEY,
            christianity TEXT,
            islam TEXT,
            buddhism TEXT,
            hinduism TEXT,
            nondenominational TEXT,
            other TEXT,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS _map_select_stats (
            feature_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            selections BIGINT NOT NULL DEFAULT 0,
            last_selected TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_select_stats_selections ON _map_select_stats(selections DESC)`,
		`CREATE TABLE IF NOT EXISTS _map_select_daily (
            day DATE PRIMARY KEY,
            selections BIGINT NOT NULL DEFAULT 0
        )`,
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
