package geodata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// 文档注释：TopoJSON 拓扑的最小解码结构
// 约束：支持 transform（量化 + 差分编码）与未量化两种弧；对象仅解析 Polygon/MultiPolygon/GeometryCollection。
type topology struct {
	Type      string                     `json:"type"`
	Transform *topoTransform             `json:"transform"`
	Objects   map[string]json.RawMessage `json:"objects"`
	Arcs      [][][]float64              `json:"arcs"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id"`
	Properties map[string]any  `json:"properties"`
	Arcs       json.RawMessage `json:"arcs"`
	Geometries []topoGeometry  `json:"geometries"`
}

var ErrNoObject = errors.New("topology object not found")

// DecodeTopology：把拓扑中名为 object 的对象展开为 Feature 列表
func DecodeTopology(data []byte, object string) ([]Feature, error) {
	var t topology
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	raw, ok := t.Objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoObject, object)
	}
	var root topoGeometry
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decode object %q: %w", object, err)
	}
	arcs := t.decodeArcs()
	geoms := root.Geometries
	if root.Type != "GeometryCollection" {
		geoms = []topoGeometry{root}
	}
	out := make([]Feature, 0, len(geoms))
	for i, g := range geoms {
		geom, err := g.toOrb(arcs)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		if geom == nil {
			continue
		}
		props := g.Properties
		if props == nil {
			props = map[string]any{}
		}
		out = append(out, Feature{
			ID:         formatID(g.ID),
			Name:       featureName(props),
			Properties: props,
			Geometry:   geom,
		})
	}
	assignIDs(out)
	return out, nil
}

// decodeArcs：还原绝对坐标（经度, 纬度）
func (t *topology) decodeArcs() [][]orb.Point {
	out := make([][]orb.Point, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([]orb.Point, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform == nil {
				pts = append(pts, orb.Point{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			pts = append(pts, orb.Point{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			})
		}
		out[i] = pts
	}
	return out
}

// ring：按弧索引拼接环；负索引 ~i 表示反向使用第 i 条弧，相邻弧的首尾公共点只保留一次
func ring(idx []int, arcs [][]orb.Point) (orb.Ring, error) {
	var r orb.Ring
	for k, i := range idx {
		rev := i < 0
		if rev {
			i = ^i
		}
		if i >= len(arcs) {
			return nil, fmt.Errorf("arc index %d out of range", i)
		}
		a := arcs[i]
		if len(r) > 0 && k > 0 {
			r = r[:len(r)-1]
		}
		if rev {
			for j := len(a) - 1; j >= 0; j-- {
				r = append(r, a[j])
			}
		} else {
			r = append(r, a...)
		}
	}
	return r, nil
}

func polygon(rings [][]int, arcs [][]orb.Point) (orb.Polygon, error) {
	p := make(orb.Polygon, 0, len(rings))
	for _, idx := range rings {
		r, err := ring(idx, arcs)
		if err != nil {
			return nil, err
		}
		p = append(p, r)
	}
	return p, nil
}

func (g topoGeometry) toOrb(arcs [][]orb.Point) (orb.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, err
		}
		return polygon(rings, arcs)
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			p, err := polygon(rings, arcs)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	default:
		// 无几何（type 为 null）或非面要素
		return nil, nil
	}
}
