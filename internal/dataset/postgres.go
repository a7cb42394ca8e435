package dataset

import (
	"context"
	"fmt"

	"religion-map/internal/religion"
	"religion-map/internal/store"
)

// Postgres：从 _religion_profiles 表读取数据集（由 dataset-ingest 写入）
type Postgres struct {
	Store *store.Store
}

func (p *Postgres) Rows(ctx context.Context) ([]religion.DatasetRow, error) {
	rows, err := p.Store.DatasetRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read dataset table: %w", err)
	}
	return rows, nil
}
