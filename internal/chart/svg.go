package chart

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

const epsilon = 1e-12

// ArcPath：以原点为圆心的扇形路径（内半径 0）
// 约束：角度为 0 的扇区输出仅含起点的退化路径；整圆拆成两段弧。
func ArcPath(r, a0, a1 float64) string {
	x0, y0 := r*math.Sin(a0), -r*math.Cos(a0)
	da := a1 - a0
	switch {
	case da < epsilon:
		return fmt.Sprintf("M%s,%sZ", num(x0), num(y0))
	case da >= 2*math.Pi-epsilon:
		return fmt.Sprintf("M%s,%sA%s,%s,0,1,1,%s,%sA%s,%s,0,1,1,%s,%sZ",
			num(x0), num(y0), num(r), num(r), num(-x0), num(-y0), num(r), num(r), num(x0), num(y0))
	}
	x1, y1 := r*math.Sin(a1), -r*math.Cos(a1)
	large := 0
	if da > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%s,%sA%s,%s,0,%d,1,%s,%sL0,0Z", num(x0), num(y0), num(r), num(r), large, num(x1), num(y1))
}

func num(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// RenderSVG：输出 350×350 的饼图；每个扇区带 <title> 提示，当前悬停提示以文本叠加
func (c *Chart) RenderSVG(w io.Writer) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(c.Width, c.Height, `class="chart"`)
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", c.Width/2, c.Height/2))
	for _, s := range c.Slices {
		canvas.Group(fmt.Sprintf(`class="slice" data-index="%d" data-category="%s"`, s.Index, html.EscapeString(string(s.Category))))
		canvas.Title(s.Label())
		canvas.Path(ArcPath(c.Radius, s.StartAngle, s.EndAngle), "fill:"+string(s.Color))
		canvas.Gend()
	}
	canvas.Gend()
	if t, ok := c.Tooltip(); ok {
		canvas.Text(int(math.Round(t.X)), int(math.Round(t.Y)), t.Text, `class="tooltip"`, "font-size:14px;fill:#111")
	}
	canvas.End()
	return ew.err
}

// errWriter：记录第一次写入错误，svgo 本身不返回错误
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
