// 包 api：集中注册 HTTP 路由（页面、地图/饼图渲染、选中/筛选、定位、统计）
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"religion-map/internal/chart"
	"religion-map/internal/geoip"
	"religion-map/internal/logger"
	"religion-map/internal/mapview"
	"religion-map/internal/metrics"
	"religion-map/internal/raster"
	"religion-map/internal/religion"
	"religion-map/internal/rendercache"
	"religion-map/internal/session"
	"religion-map/internal/store"

	"github.com/redis/go-redis/v9"
)

// 文档注释：路由依赖
// 约束：View 与 Sessions 必填；Cache/Stats/Locator/Redis 为 nil 时对应功能关闭或降级。
type Deps struct {
	View     *mapview.MapView
	Sessions session.Store
	Cache    *rendercache.Cache
	Stats    *store.Store
	Locator  geoip.Locator
	Redis    *redis.Client

	// Base 为 API 前缀，页面中的链接使用
	Base         string
	Cookie       string
	SessionTTL   time.Duration
	SecureCookie bool
}

type server struct {
	Deps
}

func newServer(d Deps) *server {
	if d.Cookie == "" {
		d.Cookie = "rmap_sid"
	}
	if d.Base == "" {
		d.Base = "/api"
	}
	return &server{Deps: d}
}

// 构建 API 路由：独立 ServeMux，在主入口挂载到 {API_BASE} 前缀下（StripPrefix）
func BuildRoutes(d Deps) *http.ServeMux {
	s := newServer(d)
	mux := http.NewServeMux()
	mux.HandleFunc("/map.svg", s.count("map_svg", s.mapSVG))
	mux.HandleFunc("/map.png", s.count("map_png", s.mapPNG))
	mux.HandleFunc("/select", s.count("select", s.selectFeature))
	mux.HandleFunc("/filter", s.count("filter", s.applyFilter))
	mux.HandleFunc("/chart.svg", s.count("chart_svg", s.chartSVG))
	mux.HandleFunc("/locate", s.count("locate", s.locate))
	mux.HandleFunc("/features", s.count("features", s.features))
	mux.HandleFunc("/state", s.count("state", s.state))
	mux.HandleFunc("/stats", s.count("stats", s.stats))
	return mux
}

func (s *server) count(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		h(w, r)
	}
}

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	writeJSON(w, http.StatusMethodNotAllowed, errorResult{Error: "method_not_allowed", Detail: r.Method})
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf：领域错误 → HTTP 状态码
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, mapview.ErrUnknownFeature):
		return http.StatusNotFound, "unknown_feature"
	case errors.Is(err, mapview.ErrNoFeatureAt):
		return http.StatusNotFound, "no_feature_at_point"
	case errors.Is(err, religion.ErrUnknownFilter):
		return http.StatusBadRequest, "unknown_filter"
	case errors.Is(err, chart.ErrNoSlice):
		return http.StatusBadRequest, "unknown_slice"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeErr(w http.ResponseWriter, err error) {
	code, name := statusOf(err)
	if code >= http.StatusInternalServerError {
		logger.L().Error("api_error", "err", err)
	}
	writeJSON(w, code, errorResult{Error: name, Detail: err.Error()})
}

func (s *server) stateOf(c *mapview.Controller) stateResult {
	st := c.State()
	out := stateResult{Selected: st.Selected, Filter: st.Filter, Label: c.Label()}
	if d := c.Detail(); d != nil {
		out.Detail = d.Slices
	}
	return out
}

// 文档注释：渲染地图（经渲染缓存）
// 约束：svg 每个国家带选中链接；png 由同一状态的无链接 SVG 栅格化得到。
func (s *server) renderMap(ctx context.Context, st mapview.State, kind string) ([]byte, error) {
	return s.Cache.GetOrRender(ctx, kind, st, func() ([]byte, error) {
		t0 := time.Now()
		opts := mapview.RenderOptions{Label: true}
		if kind == "svg" {
			opts.SelectHref = "/?select="
		}
		var buf bytes.Buffer
		if err := s.View.RenderSVG(&buf, st, opts); err != nil {
			return nil, err
		}
		metrics.RenderDurationMs.WithLabelValues("svg").Observe(float64(time.Since(t0).Milliseconds()))
		if kind == "png" {
			w, h := s.View.Viewport()
			return raster.SVGToPNG(buf.Bytes(), w, h, raster.White)
		}
		return buf.Bytes(), nil
	})
}

func (s *server) mapSVG(w http.ResponseWriter, r *http.Request) {
	s.serveMap(w, r, "svg", "image/svg+xml")
}

func (s *server) mapPNG(w http.ResponseWriter, r *http.Request) {
	s.serveMap(w, r, "png", "image/png")
}

func (s *server) serveMap(w http.ResponseWriter, r *http.Request, kind, contentType string) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	_, st := s.loadSession(w, r)
	b, err := s.renderMap(r.Context(), st, kind)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("content-type", contentType)
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(b)
}

// 文档注释：选中国家
// 参数：id（要素 ID）、name（显示名）或 x/y（地图视口像素，相对 SVG 左上角）三选一。
func (s *server) selectFeature(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	sid, st := s.loadSession(w, r)
	c := s.controller(st)
	var err error
	switch {
	case r.FormValue("id") != "":
		err = c.Select(r.FormValue("id"))
	case r.FormValue("name") != "":
		err = c.SelectByName(r.FormValue("name"))
	case r.FormValue("x") != "" || r.FormValue("y") != "":
		x, ex := strconv.ParseFloat(r.FormValue("x"), 64)
		y, ey := strconv.ParseFloat(r.FormValue("y"), 64)
		if ex != nil || ey != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "bad_point", Detail: "x and y must be numbers"})
			return
		}
		err = c.SelectAt(x, y)
	default:
		writeJSON(w, http.StatusBadRequest, errorResult{Error: "missing_target", Detail: "id, name or x/y required"})
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.saveSession(r.Context(), sid, c.State()); err != nil {
		writeErr(w, err)
		return
	}
	s.recordSelect(r.Context(), sid, c.State())
	writeJSON(w, http.StatusOK, s.stateOf(c))
}

func (s *server) applyFilter(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	sid, st := s.loadSession(w, r)
	category := r.FormValue("category")
	if category == "" {
		writeJSON(w, http.StatusBadRequest, errorResult{Error: "missing_category"})
		return
	}
	c := s.controller(st)
	if err := c.ApplyFilter(religion.Filter(category)); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.saveSession(r.Context(), sid, c.State()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateOf(c))
}

// 文档注释：选中国家的饼图
// 参数：hover=i 时在 (x, y) 显示第 i 个扇区的提示；未选中返回 404。
func (s *server) chartSVG(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	_, st := s.loadSession(w, r)
	d := s.controller(st).Detail()
	if d == nil {
		writeJSON(w, http.StatusNotFound, errorResult{Error: "no_selection"})
		return
	}
	q := r.URL.Query()
	if h := q.Get("hover"); h != "" {
		i, err := strconv.Atoi(h)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "bad_hover", Detail: h})
			return
		}
		x, ex := optFloat(q.Get("x"))
		y, ey := optFloat(q.Get("y"))
		if ex != nil || ey != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "bad_point", Detail: "x and y must be numbers"})
			return
		}
		if _, err := d.Hover(i, x, y); err != nil {
			writeErr(w, err)
			return
		}
	}
	t0 := time.Now()
	var buf bytes.Buffer
	if err := d.RenderSVG(&buf); err != nil {
		writeErr(w, err)
		return
	}
	metrics.RenderDurationMs.WithLabelValues("chart").Observe(float64(time.Since(t0).Milliseconds()))
	w.Header().Set("content-type", "image/svg+xml")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// optFloat：可选坐标参数，缺省为 0
func optFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// 文档注释：按访客 IP 定位并选中所在国家
// 约束：未配置 GeoIP 库时 404；redirect 非空时 303 回到页面。
func (s *server) locate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if s.Locator == nil {
		writeJSON(w, http.StatusNotFound, errorResult{Error: "geoip_disabled"})
		return
	}
	sid, st := s.loadSession(w, r)
	ip := getClientIP(r)
	loc, err := s.Locator.Lookup(net.ParseIP(ip))
	if err != nil {
		logger.L().Debug("locate_miss", "ip", ip, "err", err)
		writeJSON(w, http.StatusNotFound, errorResult{Error: "location_unknown", Detail: ip})
		return
	}
	c := s.controller(st)
	if err := c.SelectByName(loc.Name); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.saveSession(r.Context(), sid, c.State()); err != nil {
		writeErr(w, err)
		return
	}
	s.recordSelect(r.Context(), sid, c.State())
	logger.L().Debug("locate_ok", "ip", ip, "country", loc.Name)
	if r.FormValue("redirect") != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, locateResult{Location: loc, State: s.stateOf(c)})
}

func (s *server) features(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	fs := s.View.Features()
	out := make([]featureResult, len(fs))
	for i, f := range fs {
		dom, _ := f.Profile.Dominant()
		out[i] = featureResult{ID: f.ID, Name: f.Name, Color: s.View.Fill(f.ID), Dominant: dom, Profile: f.Profile}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) state(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	_, st := s.loadSession(w, r)
	writeJSON(w, http.StatusOK, s.stateOf(s.controller(st)))
}

// stats：被选中最多的国家；需要 Postgres
func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if s.Stats == nil {
		writeJSON(w, http.StatusNotFound, errorResult{Error: "stats_disabled"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	t, err := s.Stats.GetTotals(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// recordSelect：写入选中统计；失败只记日志
func (s *server) recordSelect(ctx context.Context, sid string, st mapview.State) {
	if s.Stats == nil || st.Selected == "" {
		return
	}
	first, err := firstSelect(ctx, s.Redis, sid, st.Selected, time.Now())
	if err != nil {
		logger.L().Warn("select_dedupe_error", "err", err)
	}
	if !first {
		return
	}
	if err := s.Stats.IncrSelect(ctx, st.Selected, s.View.Label(st)); err != nil {
		logger.L().Warn("stats_incr_error", "feature", st.Selected, "err", err)
	}
}
