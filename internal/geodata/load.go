package geodata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"religion-map/internal/logger"
	"religion-map/internal/utils"

	"github.com/paulmach/orb/geojson"
)

// DefaultObject：world-atlas 拓扑中国家边界对象名
const DefaultObject = "countries"

// 文档注释：加载国家边界
// 约束：内容为 Topology 时按 object 展开，否则按 GeoJSON FeatureCollection 解析；
// 读取或解析失败直接返回错误，不返回部分结果。
func Load(ctx context.Context, client *http.Client, src, object string) ([]Feature, error) {
	b, err := utils.ReadSource(ctx, client, "geo", src)
	if err != nil {
		return nil, fmt.Errorf("read geo %s: %w", src, err)
	}
	fs, err := Decode(b, object)
	if err != nil {
		return nil, fmt.Errorf("decode geo %s: %w", src, err)
	}
	logger.L().Info("geo_loaded", "src", src, "features", len(fs))
	return fs, nil
}

// Decode：根据 type 字段区分 TopoJSON 与 GeoJSON
func Decode(b []byte, object string) ([]Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(b), &head); err != nil {
		return nil, err
	}
	if head.Type == "Topology" {
		if object == "" {
			object = DefaultObject
		}
		return DecodeTopology(b, object)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, err
	}
	return FromGeoJSON(fc), nil
}
