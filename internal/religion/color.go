package religion

// Color：SVG 可识别的颜色名
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Blue   Color = "blue"
	Yellow Color = "yellow"
	Purple Color = "purple"
	Black  Color = "black"
	// NoData：无数据国家的中性灰
	NoData Color = "gray"
)

var palette = map[Category]Color{
	Christianity:      Red,
	Islam:             Green,
	Buddhism:          Blue,
	Hinduism:          Yellow,
	Nondenominational: Purple,
	Other:             Black,
}

// ColorOf：分类的固定配色；未知分类返回 NoData
func ColorOf(c Category) Color {
	if col, ok := palette[c]; ok {
		return col
	}
	return NoData
}

// 文档注释：地图填充色（主导分类配色）
// 约束：Other 不参与比较；最大值缺失或为 0 返回 NoData；并列按 Compared 顺序取第一个。
func ColorFor(p Profile) Color {
	c, ok := p.Dominant()
	if !ok {
		return NoData
	}
	return palette[c]
}
