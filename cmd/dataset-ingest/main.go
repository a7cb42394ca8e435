// 数据导入工具：读取 JSON/CSV 数据集并在单个事务内写入 PostgreSQL（_religion_profiles）
package main

import (
	"context"
	"os"

	"religion-map/internal/config"
	"religion-map/internal/dataset"
	"religion-map/internal/logger"
	"religion-map/internal/migrate"
	"religion-map/internal/religion"
	"religion-map/internal/store"
	"religion-map/internal/utils"
)

// 用法：
//
//	dataset-ingest [路径或 URL]      缺省读取 DATASET_PATH，整表导入
//	dataset-ingest set 国家名 v1..v6  按 Christianity..Other 顺序写入或覆盖单行
func main() {
	config.LoadDotenv()
	l := logger.Setup()
	cfg := config.Load()
	ctx, cancel := cfg.LoadContext(context.Background())
	defer cancel()

	var single *religion.DatasetRow
	src := cfg.DatasetPath
	if len(os.Args) > 1 && os.Args[1] == "set" {
		r, err := religion.NewDatasetRow(argAt(2), os.Args[min(3, len(os.Args)):])
		if err != nil {
			l.Error("dataset_row_invalid", "err", err)
			os.Exit(2)
		}
		single = &r
	} else if len(os.Args) > 1 && os.Args[1] != "" {
		src = os.Args[1]
	}

	var rows []religion.DatasetRow
	if single != nil {
		rows = []religion.DatasetRow{*single}
	} else {
		var err error
		rows, err = dataset.FromPath(src, nil).Rows(ctx)
		if err != nil {
			l.Error("dataset_read_error", "src", src, "err", err)
			os.Exit(1)
		}
	}
	_, bad := religion.IndexRows(rows)
	for _, b := range bad {
		l.Warn("dataset_field_malformed", "name", b.Name, "category", b.Category, "raw", b.Raw)
	}

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)
	defer st.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	if single != nil {
		if err := st.UpsertDatasetRow(ctx, *single); err != nil {
			l.Error("dataset_upsert_error", "name", single.Name, "err", err)
			os.Exit(1)
		}
		l.Info("dataset_upsert_ok", "name", single.Name, "malformed_fields", len(bad))
		return
	}
	n, err := st.ImportRows(ctx, rows)
	if err != nil {
		l.Error("dataset_import_error", "err", err)
		os.Exit(1)
	}
	l.Info("dataset_import_ok", "src", src, "rows", n, "malformed_fields", len(bad))
}

func argAt(i int) string {
	if i < len(os.Args) {
		return os.Args[i]
	}
	return ""
}
