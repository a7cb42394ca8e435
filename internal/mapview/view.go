// 包 mapview：宗教分布地图的初始化、选中、筛选与渲染
package mapview

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"

	"religion-map/internal/chart"
	"religion-map/internal/geodata"
	"religion-map/internal/logger"
	"religion-map/internal/metrics"
	"religion-map/internal/religion"

	"github.com/paulmach/orb"
)

var (
	ErrUnknownFeature = errors.New("unknown feature")
	ErrNoFeatureAt    = errors.New("no feature at point")
)

const (
	DefaultWidth  = 960
	DefaultHeight = 600
)

// 文档注释：地图视图
// 约束：构造后只读，可被多个请求并发读取；交互状态不保存在视图中，由调用方以 State 传入。
type MapView struct {
	features  []geodata.Feature
	fills     []religion.Color
	bounds    []orb.Bound
	paths     []string
	byID      map[string]int
	byName    map[string]int
	globalMax float64
	version   string

	width  int
	height int
	proj   Projection
}

type Option func(*MapView)

// WithViewport：视口尺寸；投影同时重置为该尺寸下的默认投影
func WithViewport(w, h int) Option {
	return func(m *MapView) {
		if w > 0 && h > 0 {
			m.width, m.height = w, h
			m.proj = DefaultProjection(w, h)
		}
	}
}

// 文档注释：初始化地图视图
// 步骤：解析数据集行 → 按国家名关联 → 计算 globalMax（Other 不参与）→ 预计算填充色、投影路径与包围盒。
// 约束：未匹配的国家得到空 Profile；非数值字段以 NaN 保留并记录 warn 日志。
func New(features []geodata.Feature, rows []religion.DatasetRow, opts ...Option) *MapView {
	m := &MapView{width: DefaultWidth, height: DefaultHeight, proj: DefaultProjection(DefaultWidth, DefaultHeight)}
	for _, o := range opts {
		o(m)
	}
	l := logger.L()
	idx, bad := religion.IndexRows(rows)
	for _, b := range bad {
		l.Warn("dataset_field_malformed", "name", b.Name, "category", b.Category, "raw", b.Raw)
	}
	metrics.MalformedFieldsTotal.Add(float64(len(bad)))
	joined, unmatched := geodata.Join(features, idx)
	if len(unmatched) > 0 {
		l.Info("dataset_unmatched", "count", len(unmatched))
		l.Debug("dataset_unmatched_names", "names", unmatched)
	}
	metrics.UnmatchedFeatures.Set(float64(len(unmatched)))

	m.features = joined
	m.fills = make([]religion.Color, len(joined))
	m.bounds = make([]orb.Bound, len(joined))
	m.paths = make([]string, len(joined))
	m.byID = make(map[string]int, len(joined))
	m.byName = make(map[string]int, len(joined))
	profiles := make([]religion.Profile, len(joined))
	for i, f := range joined {
		profiles[i] = f.Profile
		m.fills[i] = religion.ColorFor(f.Profile)
		m.bounds[i] = f.Geometry.Bound()
		m.paths[i] = pathData(f.Geometry, m.proj)
		m.byID[f.ID] = i
		if _, dup := m.byName[f.Name]; !dup && f.Name != "" {
			m.byName[f.Name] = i
		}
	}
	m.globalMax = religion.GlobalMax(profiles)
	m.version = m.digest()
	l.Info("mapview_ready", "features", len(joined), "rows", len(rows), "global_max", m.globalMax)
	return m
}

func (m *MapView) Features() []geodata.Feature { return m.features }

// Version：要素路径、填充色与 globalMax 的摘要，用作渲染缓存的版本号
func (m *MapView) Version() string { return m.version }

func (m *MapView) digest() string {
	h := fnv.New64a()
	for i, f := range m.features {
		h.Write([]byte(f.ID))
		h.Write([]byte{0})
		h.Write([]byte(m.paths[i]))
		h.Write([]byte(m.fills[i]))
		for _, c := range religion.Categories {
			v, _ := f.Profile.Get(c)
			h.Write([]byte(strconv.FormatFloat(v, 'g', -1, 64)))
		}
	}
	h.Write([]byte(strconv.FormatFloat(m.globalMax, 'g', -1, 64)))
	return strconv.FormatUint(h.Sum64(), 36)
}

func (m *MapView) GlobalMax() float64 { return m.globalMax }

func (m *MapView) Viewport() (int, int) { return m.width, m.height }

func (m *MapView) Projection() Projection { return m.proj }

// Feature：按 ID 查找要素
func (m *MapView) Feature(id string) (geodata.Feature, bool) {
	i, ok := m.byID[id]
	if !ok {
		return geodata.Feature{}, false
	}
	return m.features[i], true
}

// FeatureByName：按显示名查找要素（首个同名要素）
func (m *MapView) FeatureByName(name string) (geodata.Feature, bool) {
	i, ok := m.byName[name]
	if !ok {
		return geodata.Feature{}, false
	}
	return m.features[i], true
}

// Fill：要素的填充色
func (m *MapView) Fill(id string) religion.Color {
	if i, ok := m.byID[id]; ok {
		return m.fills[i]
	}
	return religion.NoData
}

// 文档注释：选中要素
// 约束：新选中替换旧选中（同一时刻只有一个高亮）；重复选中同一要素结果不变；未知 ID 返回错误且状态不变。
func (m *MapView) Select(st State, id string) (State, error) {
	if _, ok := m.byID[id]; !ok {
		return st, fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	st = st.Normalize()
	st.Selected = id
	metrics.SelectionsTotal.Inc()
	return st, nil
}

// SelectByName：按显示名选中
func (m *MapView) SelectByName(st State, name string) (State, error) {
	i, ok := m.byName[name]
	if !ok {
		return st, fmt.Errorf("%w: name %q", ErrUnknownFeature, name)
	}
	return m.Select(st, m.features[i].ID)
}

// 文档注释：按视口像素选中指针下的要素
// 约束：(x, y) 相对 SVG 元素左上角；先加上 viewBox 原点换算为用户坐标再命中。
func (m *MapView) SelectAt(st State, x, y float64) (State, error) {
	id, ok := m.FeatureAt(x+ViewBoxX, y+ViewBoxY)
	if !ok {
		return st, fmt.Errorf("%w: (%g, %g)", ErrNoFeatureAt, x, y)
	}
	return m.Select(st, id)
}

// ApplyFilter：切换筛选；非法筛选值返回错误且状态不变
func (m *MapView) ApplyFilter(st State, f religion.Filter) (State, error) {
	pf, err := religion.ParseFilter(string(f))
	if err != nil {
		return st, err
	}
	st = st.Normalize()
	st.Filter = pf
	metrics.FilterChangesTotal.WithLabelValues(string(pf)).Inc()
	return st, nil
}

// Label：选中要素的显示名；未选中为空
func (m *MapView) Label(st State) string {
	if f, ok := m.Feature(st.Selected); ok {
		return f.Name
	}
	return ""
}

// Detail：选中要素的饼图；未选中返回 nil
func (m *MapView) Detail(st State) *chart.Chart {
	f, ok := m.Feature(st.Selected)
	if !ok {
		return nil
	}
	return chart.New(f.Profile)
}

// StyleAt：第 i 个要素在状态 st 下的样式
func (m *MapView) StyleAt(i int, st State) Style {
	f := m.features[i]
	s := Style{
		Fill:        m.fills[i],
		Opacity:     Opacity(f.Profile, st.Normalize().Filter, m.globalMax),
		Stroke:      BaseStroke,
		StrokeWidth: BaseStrokeWidth,
	}
	if st.Selected != "" && st.Selected == f.ID {
		s.Stroke = HighlightStroke
		s.StrokeWidth = HighlightStrokeWidth
		s.Selected = true
	}
	return s
}

// Styles：全部要素的样式，顺序与 Features 一致
func (m *MapView) Styles(st State) []Style {
	out := make([]Style, len(m.features))
	for i := range m.features {
		out[i] = m.StyleAt(i, st)
	}
	return out
}
