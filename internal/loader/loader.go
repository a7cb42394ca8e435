// 包 loader：启动时并发加载两份输入（国家边界 + 数据集）并构建地图视图
package loader

import (
	"context"
	"fmt"
	"net/http"

	"religion-map/internal/dataset"
	"religion-map/internal/geodata"
	"religion-map/internal/logger"
	"religion-map/internal/mapview"
	"religion-map/internal/religion"

	"golang.org/x/sync/errgroup"
)

// Inputs：两份输入的位置
type Inputs struct {
	GeoSrc    string
	GeoObject string
	Dataset   dataset.Source
	Client    *http.Client
}

// 文档注释：并发加载两份输入
// 约束：任一失败即取消另一份并返回错误，不返回部分结果；不重试。
func Load(ctx context.Context, in Inputs) ([]geodata.Feature, []religion.DatasetRow, error) {
	var (
		features []geodata.Feature
		rows     []religion.DatasetRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fs, err := geodata.Load(gctx, in.Client, in.GeoSrc, in.GeoObject)
		if err != nil {
			return err
		}
		features = fs
		return nil
	})
	g.Go(func() error {
		rs, err := in.Dataset.Rows(gctx)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		rows = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	logger.L().Info("inputs_loaded", "features", len(features), "rows", len(rows))
	return features, rows, nil
}

// Build：加载输入并初始化地图视图
func Build(ctx context.Context, in Inputs, opts ...mapview.Option) (*mapview.MapView, error) {
	features, rows, err := Load(ctx, in)
	if err != nil {
		return nil, err
	}
	return mapview.New(features, rows, opts...), nil
}
