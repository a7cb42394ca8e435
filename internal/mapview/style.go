package mapview

import (
	"strconv"
	"strings"

	"religion-map/internal/religion"
)

const (
	// DimOpacity：筛选时非主导国家的透明度
	DimOpacity = 0.1

	BaseStroke           = "#ffffff"
	BaseStrokeWidth      = 0.25
	HighlightStroke      = "black"
	HighlightStrokeWidth = 1.5
)

// Style：单个国家路径的绘制样式
type Style struct {
	Fill        religion.Color `json:"fill"`
	Opacity     float64        `json:"opacity"`
	Stroke      string         `json:"stroke"`
	StrokeWidth float64        `json:"stroke_width"`
	Selected    bool           `json:"selected"`
}

// CSS：转为内联 style 字符串
func (s Style) CSS() string {
	var b strings.Builder
	b.WriteString("fill:")
	b.WriteString(string(s.Fill))
	b.WriteString(";opacity:")
	b.WriteString(strconv.FormatFloat(s.Opacity, 'f', -1, 64))
	b.WriteString(";stroke:")
	b.WriteString(s.Stroke)
	b.WriteString(";stroke-width:")
	b.WriteString(strconv.FormatFloat(s.StrokeWidth, 'f', -1, 64))
	return b.String()
}

// 文档注释：筛选透明度
// 约束：all → 1；否则仅当该分类取值等于本国 LocalMax（Other 不参与）时按 [0, globalMax] → [0, 1] 线性映射，
// 其余（含无数据、取值缺失或非数值）→ DimOpacity。globalMax 为 0 时比例尺退化，映射结果为 0.5。
func Opacity(p religion.Profile, f religion.Filter, globalMax float64) float64 {
	if f == religion.FilterAll || f == "" {
		return 1
	}
	v, ok := p.Get(f.Category())
	if !ok {
		return DimOpacity
	}
	max, ok := p.LocalMax()
	if !ok || v != max {
		return DimOpacity
	}
	return scaleLinear(v, globalMax)
}

func scaleLinear(v, domainMax float64) float64 {
	if domainMax == 0 {
		return 0.5
	}
	return v / domainMax
}
