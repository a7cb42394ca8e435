package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"religion-map/internal/logger"
	"religion-map/internal/religion"
)

//go:embed templates/page.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/page.html"))

type filterOption struct {
	Value    string
	Text     string
	Selected bool
}

type pageData struct {
	Base    string
	Filters []filterOption
	Locate  bool
	Error   string
	Map     template.HTML
	Label   string
	Chart   template.HTML
}

// 文档注释：页面路由（下拉筛选 + 地图 + 国家名 + 饼图）
// 参数：filter 切换筛选，select 选中国家；地图中每个国家链接到 /?select=<id>。
// 约束：非法参数以 4xx 状态返回页面本身并附错误信息，会话状态不变。
func BuildPage(d Deps) http.Handler {
	s := newServer(d)
	return s.count("page", s.page)
}

func (s *server) page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sid, st := s.loadSession(w, r)
	c := s.controller(st)
	status := http.StatusOK
	data := pageData{Base: s.Base, Locate: s.Locator != nil}

	q := r.URL.Query()
	changed := false
	if f := q.Get("filter"); f != "" {
		if err := c.ApplyFilter(religion.Filter(f)); err != nil {
			status, _ = statusOf(err)
			data.Error = err.Error()
		} else {
			changed = true
		}
	}
	if id := q.Get("select"); id != "" && data.Error == "" {
		if err := c.Select(id); err != nil {
			status, _ = statusOf(err)
			data.Error = err.Error()
		} else {
			changed = true
		}
	}
	if changed {
		if err := s.saveSession(r.Context(), sid, c.State()); err != nil {
			logger.L().Error("page_session_error", "err", err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		if q.Get("select") != "" {
			s.recordSelect(r.Context(), sid, c.State())
		}
	}

	cur := c.State()
	for _, f := range religion.Filters {
		text := string(f)
		if f == religion.FilterAll {
			text = "All"
		}
		data.Filters = append(data.Filters, filterOption{Value: string(f), Text: text, Selected: f == cur.Filter})
	}
	mapSVG, err := s.renderMap(r.Context(), cur, "svg")
	if err != nil {
		logger.L().Error("page_render_error", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	data.Map = inlineSVG(mapSVG)
	data.Label = c.Label()
	if d := c.Detail(); d != nil {
		var buf bytes.Buffer
		if err := d.RenderSVG(&buf); err == nil {
			data.Chart = inlineSVG(buf.Bytes())
		}
	}

	var out bytes.Buffer
	if err := pageTmpl.Execute(&out, data); err != nil {
		logger.L().Error("page_template_error", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(out.Bytes())
}

// inlineSVG：去掉 XML 声明后内联到 HTML
func inlineSVG(b []byte) template.HTML {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		b = b[i:]
	}
	return template.HTML(b)
}
