// 包 chart：选中国家的宗教构成饼图（布局、配色、悬停提示与 SVG 输出）
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"religion-map/internal/religion"
)

const (
	Width  = 350
	Height = 350
)

var ErrNoSlice = errors.New("slice index out of range")

// Slice：一个分类扇区；角度为弧度，0 指向正上方，顺时针增加
type Slice struct {
	Index      int               `json:"index"`
	Category   religion.Category `json:"category"`
	Value      float64           `json:"value"`
	StartAngle float64           `json:"start_angle"`
	EndAngle   float64           `json:"end_angle"`
	Color      religion.Color    `json:"color"`
}

// Tooltip：悬停提示，坐标为指针位置
type Tooltip struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// 文档注释：一次选中对应的饼图实例
// 约束：扇区按 religion.Categories 的自然顺序排列且固定为 6 个；缺失或非数值字段按 0 处理；
// 同一时刻至多一个提示。
type Chart struct {
	Slices []Slice
	Radius float64
	Width  int
	Height int

	tip *Tooltip
}

// New：按 Profile 计算饼图布局
func New(p religion.Profile) *Chart {
	c := &Chart{Width: Width, Height: Height, Radius: math.Min(Width, Height) / 2}
	c.Slices = Layout(p)
	return c
}

// 文档注释：饼图布局
// 约束：不排序；扇区角度与取值成正比；总和为 0 时所有扇区角度均为 0。
func Layout(p religion.Profile) []Slice {
	out := make([]Slice, len(religion.Categories))
	var sum float64
	for i, c := range religion.Categories {
		v := p.Value(c)
		out[i] = Slice{Index: i, Category: c, Value: v, Color: religion.ColorOf(c)}
		sum += v
	}
	k := 0.0
	if sum > 0 {
		k = 2 * math.Pi / sum
	}
	a := 0.0
	for i := range out {
		out[i].StartAngle = a
		a += out[i].Value * k
		out[i].EndAngle = a
	}
	return out
}

// Label：提示文本，形如 "Islam: 12.5%"
func (s Slice) Label() string {
	return fmt.Sprintf("%s: %s%%", s.Category, strconv.FormatFloat(s.Value, 'f', -1, 64))
}

// Hover：在指针位置显示第 i 个扇区的提示，替换已有提示
func (c *Chart) Hover(i int, x, y float64) (Tooltip, error) {
	if i < 0 || i >= len(c.Slices) {
		return Tooltip{}, fmt.Errorf("%w: %d", ErrNoSlice, i)
	}
	t := Tooltip{Text: c.Slices[i].Label(), X: x, Y: y}
	c.tip = &t
	return t, nil
}

// Unhover：移除提示
func (c *Chart) Unhover() { c.tip = nil }

// Tooltip：当前提示
func (c *Chart) Tooltip() (Tooltip, bool) {
	if c.tip == nil {
		return Tooltip{}, false
	}
	return *c.tip, true
}

// 文档注释：饼图容器，保证同一时刻只存在一个饼图实例
// 约束：Render 丢弃旧实例（含其提示）后创建新实例；并发安全。
type Container struct {
	mu      sync.Mutex
	current *Chart
}

func (c *Container) Render(p religion.Profile) *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = New(p)
	return c.current
}

// Current：当前饼图；未选中任何国家时为 nil
func (c *Container) Current() *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}
