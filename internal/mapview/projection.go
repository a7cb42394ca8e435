package mapview

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// 墨卡托投影可表示的最大纬度
const maxLat = 85.0511287798066

// 文档注释：屏幕坐标下的墨卡托投影
// 约束：x = Scale·λ + Translate[0]，y = Translate[1] − Scale·ln(tan(π/4 + φ/2))，λ/φ 为弧度；
// 纬度超出 ±maxLat 时截断。
type Projection struct {
	Scale     float64
	Translate [2]float64
}

// DefaultProjection：按视口尺寸给出缩放 190、平移 (w/1.6, h/1.6) 的投影
func DefaultProjection(width, height int) Projection {
	return Projection{Scale: 190, Translate: [2]float64{float64(width) / 1.6, float64(height) / 1.6}}
}

func (p Projection) k() float64 { return p.Scale / orb.EarthRadius }

// Project：经纬度 → 屏幕坐标
func (p Projection) Project(pt orb.Point) orb.Point {
	lat := math.Max(-maxLat, math.Min(maxLat, pt[1]))
	m := project.WGS84.ToMercator(orb.Point{pt[0], lat})
	k := p.k()
	return orb.Point{m[0]*k + p.Translate[0], p.Translate[1] - m[1]*k}
}

// Invert：屏幕坐标 → 经纬度
func (p Projection) Invert(xy orb.Point) orb.Point {
	k := p.k()
	m := orb.Point{(xy[0] - p.Translate[0]) / k, (p.Translate[1] - xy[1]) / k}
	return project.Mercator.ToWGS84(m)
}
