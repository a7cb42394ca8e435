package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// FeatureAt：SVG 用户坐标（投影平面）命中的要素 ID（反投影后做包围盒过滤与点入多边形判定，取第一个命中）
func (m *MapView) FeatureAt(x, y float64) (string, bool) {
	pt := m.proj.Invert(orb.Point{x, y})
	for i, f := range m.features {
		if !m.bounds[i].Contains(pt) {
			continue
		}
		if contains(f.Geometry, pt) {
			return f.ID, true
		}
	}
	return "", false
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(v, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, pt)
	default:
		return false
	}
}
