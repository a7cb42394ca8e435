// 包 store: 提供与 PostgreSQL 的数据访问层，包含宗教数据集读写与国家选中统计
package store

import (
	"context"
	"database/sql"
	"fmt"

	"religion-map/internal/logger"
	"religion-map/internal/religion"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// 列顺序与 religion.Categories 一致
const profileColumns = "christianity, islam, buddhism, hinduism, nondenominational, other"

// 文档注释：读取全部数据集行
// 约束：字段以文本存储；NULL 视为字段缺失（解析阶段按非数值处理），按 name 排序返回。
func (s *Store) DatasetRows(ctx context.Context) ([]religion.DatasetRow, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, "+profileColumns+" FROM _religion_profiles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []religion.DatasetRow
	for rows.Next() {
		var name string
		vals := make([]sql.NullString, len(religion.Categories))
		dest := []any{&name}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r := religion.DatasetRow{Name: name, Fields: make(map[religion.Category]string, len(vals))}
		for i, v := range vals {
			if v.Valid {
				r.Fields[religion.Categories[i]] = v.String
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("db_dataset_rows", "rows", len(out))
	return out, nil
}

const upsertProfileSQL = `INSERT INTO _religion_profiles(name, ` + profileColumns + `)
        VALUES($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (name) DO UPDATE SET christianity=EXCLUDED.christianity, islam=EXCLUDED.islam,
            buddhism=EXCLUDED.buddhism, hinduism=EXCLUDED.hinduism,
            nondenominational=EXCLUDED.nondenominational, other=EXCLUDED.other, updated_at=now()`

func rowArgs(r religion.DatasetRow) []any {
	args := []any{r.Name}
	for _, c := range religion.Categories {
		if v, ok := r.Fields[c]; ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}
	return args
}

// UpsertDatasetRow: 按 name 写入或覆盖一行；缺失字段写 NULL
func (s *Store) UpsertDatasetRow(ctx context.Context, r religion.DatasetRow) error {
	_, err := s.db.ExecContext(ctx, upsertProfileSQL, rowArgs(r)...)
	return err
}

// 文档注释：在单个事务内批量写入数据集
// 约束：空 name 的行跳过；任一行失败则整体回滚，返回写入行数。
func (s *Store) ImportRows(ctx context.Context, rows []religion.DatasetRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, upsertProfileSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	n := 0
	for _, r := range rows {
		if r.Name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, rowArgs(r)...); err != nil {
			return 0, fmt.Errorf("upsert %q: %w", r.Name, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Info("db_dataset_imported", "rows", n)
	return n, nil
}

// IncrSelect: 国家被选中后递增累计与当日计数
func (s *Store) IncrSelect(ctx context.Context, featureID, name string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO _map_select_stats(feature_id, name, selections, last_selected)
        VALUES($1, $2, 1, now())
        ON CONFLICT (feature_id) DO UPDATE SET selections=_map_select_stats.selections+1, last_selected=now()`, featureID, name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO _map_select_daily(day, selections) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET selections=_map_select_daily.selections+1")
	logger.L().Debug("stats_incr", "feature", featureID)
	return err
}

// Selected: 选中统计条目
type Selected struct {
	FeatureID  string `json:"id"`
	Name       string `json:"name"`
	Selections int64  `json:"selections"`
}

// Totals: 选中次数汇总与排行
type Totals struct {
	Today int64      `json:"today"`
	Top   []Selected `json:"top"`
}

// GetTotals: 读取当日选中次数与被选中最多的国家
func (s *Store) GetTotals(ctx context.Context, limit int) (*Totals, error) {
	if limit <= 0 {
		limit = 10
	}
	var t Totals
	row := s.db.QueryRowContext(ctx, "SELECT selections FROM _map_select_daily WHERE day=current_date")
	if err := row.Scan(&t.Today); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT feature_id, name, selections FROM _map_select_stats ORDER BY selections DESC, name ASC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Selected
		if err := rows.Scan(&e.FeatureID, &e.Name, &e.Selections); err != nil {
			return nil, err
		}
		t.Top = append(t.Top, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("stats_totals", "today", t.Today, "top", len(t.Top))
	return &t, nil
}
