// 包 geodata：加载国家边界（TopoJSON/GeoJSON）并与宗教数据集关联
package geodata

import (
	"fmt"
	"strconv"

	"religion-map/internal/religion"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 文档注释：一个可渲染的国家/地区
// 约束：ID 在集合内唯一；Geometry 仅为 Polygon 或 MultiPolygon；Profile 在 Join 后只读。
type Feature struct {
	ID         string
	Name       string
	Properties map[string]any
	Geometry   orb.Geometry
	Profile    religion.Profile
}

// 名称属性的候选键，按顺序取第一个非空值
var nameKeys = []string{"name", "NAME", "ADMIN", "name_en"}

func featureName(props map[string]any) string {
	for _, k := range nameKeys {
		if v, ok := props[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func formatID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// FromGeoJSON：把 orb 的 FeatureCollection 转为 Feature 列表，跳过非面要素
func FromGeoJSON(fc *geojson.FeatureCollection) []Feature {
	out := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		id := formatID(f.ID)
		if id == "" {
			id = formatID(f.Properties["id"])
		}
		out = append(out, Feature{
			ID:         id,
			Name:       featureName(f.Properties),
			Properties: map[string]any(f.Properties),
			Geometry:   f.Geometry,
		})
	}
	assignIDs(out)
	return out
}

// assignIDs：补齐缺失 ID 并消除重复（追加序号）
func assignIDs(fs []Feature) {
	seen := make(map[string]int, len(fs))
	for i := range fs {
		if fs[i].ID == "" {
			fs[i].ID = "f" + strconv.Itoa(i)
		}
		base := fs[i].ID
		if n, dup := seen[base]; dup {
			fs[i].ID = base + "-" + strconv.Itoa(n+1)
		}
		seen[base]++
	}
}
