package mapview

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	svg "github.com/ajstarks/svgo"
)

// RenderOptions：SVG 输出选项
type RenderOptions struct {
	// SelectHref 非空时每个国家包在链接中，href 为 SelectHref + url 编码后的要素 ID
	SelectHref string
	// Label 为 true 时在左上角绘制选中国家名
	Label bool
}

// viewBox 原点（SVG 用户坐标）；原生尺寸下视口像素 + 原点 = 用户坐标
const (
	ViewBoxX = 50
	ViewBoxY = 10
)

// pathData：投影后的 SVG 路径；每个环独立闭合
func pathData(g orb.Geometry, p Projection) string {
	var b strings.Builder
	writePoly := func(poly orb.Polygon) {
		for _, r := range poly {
			for j, pt := range r {
				xy := p.Project(pt)
				if j == 0 {
					b.WriteByte('M')
				} else {
					b.WriteByte('L')
				}
				b.WriteString(strconv.FormatFloat(xy[0], 'f', 2, 64))
				b.WriteByte(',')
				b.WriteString(strconv.FormatFloat(xy[1], 'f', 2, 64))
			}
			if len(r) > 0 {
				b.WriteByte('Z')
			}
		}
	}
	switch v := g.(type) {
	case orb.Polygon:
		writePoly(v)
	case orb.MultiPolygon:
		for _, poly := range v {
			writePoly(poly)
		}
	}
	return b.String()
}

// 文档注释：渲染地图 SVG
// 约束：viewBox 为 "50 10 宽 高"，preserveAspectRatio=xMinYMin；每个国家一个 path，样式由 StyleAt 计算。
func (m *MapView) RenderSVG(w io.Writer, st State, opts RenderOptions) error {
	st = st.Normalize()
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startraw(
		fmt.Sprintf(`width="%d"`, m.width),
		fmt.Sprintf(`height="%d"`, m.height),
		fmt.Sprintf(`viewBox="%d %d %d %d"`, ViewBoxX, ViewBoxY, m.width, m.height),
		`preserveAspectRatio="xMinYMin"`,
		`style="cursor:pointer"`,
	)
	canvas.Gid("map")
	for i, f := range m.features {
		s := m.StyleAt(i, st)
		class := "country"
		if s.Selected {
			class += " selected"
		}
		attrs := []string{
			fmt.Sprintf(`id="country-%s"`, html.EscapeString(f.ID)),
			fmt.Sprintf(`data-name="%s"`, html.EscapeString(f.Name)),
			fmt.Sprintf(`class="%s"`, class),
			s.CSS(),
		}
		if opts.SelectHref != "" {
			canvas.Link(html.EscapeString(opts.SelectHref+url.QueryEscape(f.ID)), html.EscapeString(f.Name))
			canvas.Path(m.paths[i], attrs...)
			canvas.LinkEnd()
			continue
		}
		canvas.Path(m.paths[i], attrs...)
	}
	canvas.Gend()
	if opts.Label {
		if name := m.Label(st); name != "" {
			canvas.Text(60, 40, name, `class="country-label"`, "font-size:20px;fill:#222")
		}
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
