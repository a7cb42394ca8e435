package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"religion-map/internal/geodata"
	"religion-map/internal/geoip"
	"religion-map/internal/mapview"
	"religion-map/internal/religion"
	"religion-map/internal/rendercache"
	"religion-map/internal/session"
	"religion-map/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/paulmach/orb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(lon, lat, size float64) orb.Polygon {
	return orb.Polygon{{
		{lon, lat}, {lon + size, lat}, {lon + size, lat + size}, {lon, lat + size}, {lon, lat},
	}}
}

func testView() *mapview.MapView {
	features := []geodata.Feature{
		{ID: "A", Name: "Alpha", Geometry: square(0, 0, 10)},
		{ID: "B", Name: "Beta", Geometry: square(20, 0, 10)},
	}
	fields := func(vals ...string) map[religion.Category]string {
		m := map[religion.Category]string{}
		for i, v := range vals {
			m[religion.Categories[i]] = v
		}
		return m
	}
	rows := []religion.DatasetRow{
		{Name: "Alpha", Fields: fields("10", "2", "0", "0", "1", "50")},
		{Name: "Beta", Fields: fields("3", "7", "0", "0", "0", "90")},
	}
	return mapview.New(features, rows)
}

func testDeps() Deps {
	return Deps{
		View:       testView(),
		Sessions:   session.NewMemoryStore(100, time.Hour),
		SessionTTL: time.Hour,
	}
}

func newTestServer(t *testing.T, d Deps) *httptest.Server {
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", BuildRoutes(d)))
	mux.Handle("/", BuildPage(d))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func do(t *testing.T, c *http.Client, method, url string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decodeState(t *testing.T, b []byte) stateResult {
	var st stateResult
	require.NoError(t, json.Unmarshal(b, &st))
	return st
}

func TestStateDefaultAndCookie(t *testing.T) {
	srv := newTestServer(t, testDeps())
	c := newClient(t)
	resp, b := do(t, c, http.MethodGet, srv.URL+"/api/state")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	st := decodeState(t, b)
	assert.Equal(t, religion.FilterAll, st.Filter)
	assert.Empty(t, st.Selected)
	require.Len(t, resp.Cookies(), 1)
	assert.True(t, session.ValidID(resp.Cookies()[0].Value))

	resp, _ = do(t, c, http.MethodGet, srv.URL+"/api/state")
	assert.Empty(t, resp.Cookies())
}

func TestSelectAndFilter(t *testing.T) {
	srv := newTestServer(t, testDeps())
	c := newClient(t)

	resp, b := do(t, c, http.MethodPost, srv.URL+"/api/select?id=A")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, b = do(t, c, http.MethodGet, srv.URL+"/api/select?id=B")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decodeState(t, b)
	assert.Equal(t, "B", st.Selected)
	assert.Equal(t, "Beta", st.Label)
	assert.Len(t, st.Detail, 6)

	resp, b = do(t, c, http.MethodGet, srv.URL+"/api/filter?category=Islam")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = decodeState(t, b)
	assert.Equal(t, religion.Filter(religion.Islam), st.Filter)
	assert.Equal(t, "B", st.Selected)

	_, b = do(t, c, http.MethodGet, srv.URL+"/api/map.svg")
	out := string(b)
	assert.Equal(t, 1, bytes.Count(b, []byte(`class="country selected"`)))
	assert.Contains(t, out, `id="country-B"`)
	assert.Contains(t, out, "fill:green;opacity:0.7;stroke:black;stroke-width:1.5")
	assert.Contains(t, out, "fill:red;opacity:0.1")
}

func TestSelectErrors(t *testing.T) {
	srv := newTestServer(t, testDeps())
	c := newClient(t)
	cases := []struct {
		method, path string
		code         int
		errName      string
	}{
		{http.MethodGet, "/api/select?id=nope", http.StatusNotFound, "unknown_feature"},
		{http.MethodGet, "/api/select?name=Atlantis", http.StatusNotFound, "unknown_feature"},
		{http.MethodGet, "/api/select?x=abc&y=1", http.StatusBadRequest, "bad_point"},
		{http.MethodGet, "/api/select?x=1&y=1", http.StatusNotFound, "no_feature_at_point"},
		{http.MethodGet, "/api/select", http.StatusBadRequest, "missing_target"},
		{http.MethodDelete, "/api/select?id=A", http.StatusMethodNotAllowed, "method_not_allowed"},
		{http.MethodGet, "/api/filter?category=Other", http.StatusBadRequest, "unknown_filter"},
		{http.MethodGet, "/api/filter", http.StatusBadRequest, "missing_category"},
		{http.MethodGet, "/api/chart.svg", http.StatusNotFound, "no_selection"},
		{http.MethodGet, "/api/stats", http.StatusNotFound, "stats_disabled"},
		{http.MethodGet, "/api/locate", http.StatusNotFound, "geoip_disabled"},
	}
	for _, tc := range cases {
		resp, b := do(t, c, tc.method, srv.URL+tc.path)
		assert.Equal(t, tc.code, resp.StatusCode, tc.path)
		var e errorResult
		require.NoError(t, json.Unmarshal(b, &e), tc.path)
		assert.Equal(t, tc.errName, e.Error, tc.path)
	}
	_, b := do(t, c, http.MethodGet, srv.URL+"/api/state")
	assert.Empty(t, decodeState(t, b).Selected)
}

func TestSelectAtPoint(t *testing.T) {
	d := testDeps()
	srv := newTestServer(t, d)
	c := newClient(t)
	xy := d.View.Projection().Project(orb.Point{25, 5})
	resp, b := do(t, c, http.MethodGet, srv.URL+"/api/select?x="+ftoa(xy[0]-mapview.ViewBoxX)+"&y="+ftoa(xy[1]-mapview.ViewBoxY))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "B", decodeState(t, b).Selected)
}

func ftoa(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestChartSVG(t *testing.T) {
	srv := newTestServer(t, testDeps())
	c := newClient(t)
	do(t, c, http.MethodGet, srv.URL+"/api/select?id=B")

	resp, b := do(t, c, http.MethodGet, srv.URL+"/api/chart.svg?hover=1&x=10&y=20")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("content-type"))
	assert.Equal(t, 6, bytes.Count(b, []byte(`class="slice"`)))
	assert.Contains(t, string(b), `class="tooltip"`)
	assert.Contains(t, string(b), "Islam: 7%")

	resp, _ = do(t, c, http.MethodGet, srv.URL+"/api/chart.svg?hover=9")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, b = do(t, c, http.MethodGet, srv.URL+"/api/chart.svg?hover=1&x=abc&y=20")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(b), "bad_point")

	_, b = do(t, c, http.MethodGet, srv.URL+"/api/chart.svg")
	assert.NotContains(t, string(b), `class="tooltip"`)
}

func TestMapPNG(t *testing.T) {
	srv := newTestServer(t, testDeps())
	resp, b := do(t, newClient(t), http.MethodGet, srv.URL+"/api/map.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("content-type"))
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, mapview.DefaultWidth, img.Bounds().Dx())
}

func TestRenderCacheShared(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	d := testDeps()
	d.Cache = rendercache.New(rc, time.Minute, d.View.Version())
	srv := newTestServer(t, d)

	_, first := do(t, newClient(t), http.MethodGet, srv.URL+"/api/map.svg")
	key := d.Cache.Key("svg", mapview.DefaultState())
	assert.True(t, mr.Exists(key))
	_, second := do(t, newClient(t), http.MethodGet, srv.URL+"/api/map.svg")
	assert.Equal(t, first, second)
}

func TestFeatures(t *testing.T) {
	srv := newTestServer(t, testDeps())
	_, b := do(t, newClient(t), http.MethodGet, srv.URL+"/api/features")
	var fs []map[string]any
	require.NoError(t, json.Unmarshal(b, &fs))
	require.Len(t, fs, 2)
	assert.Equal(t, "A", fs[0]["id"])
	assert.Equal(t, "red", fs[0]["color"])
	assert.Equal(t, "Christianity", fs[0]["dominant"])
	assert.Equal(t, "green", fs[1]["color"])
}

type fakeLocator map[string]geoip.Location

func (f fakeLocator) Lookup(ip net.IP) (geoip.Location, error) {
	if l, ok := f[ip.String()]; ok {
		return l, nil
	}
	return geoip.Location{}, geoip.ErrNotFound
}

func TestLocate(t *testing.T) {
	d := testDeps()
	d.Locator = fakeLocator{"8.8.8.8": {IP: "8.8.8.8", ISOCode: "BT", Name: "Beta"}}
	srv := newTestServer(t, d)
	c := newClient(t)

	resp, b := do(t, c, http.MethodGet, srv.URL+"/api/locate?ip=8.8.8.8")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res locateResult
	require.NoError(t, json.Unmarshal(b, &res))
	assert.Equal(t, "BT", res.Location.ISOCode)
	assert.Equal(t, "B", res.State.Selected)

	resp, _ = do(t, c, http.MethodGet, srv.URL+"/api/locate?ip=1.1.1.1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, c, http.MethodGet, srv.URL+"/api/locate?ip=8.8.8.8&redirect=1")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestStatsWithPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	d := testDeps()
	d.Stats = store.AttachDB(db)
	srv := newTestServer(t, d)
	c := newClient(t)

	mock.ExpectExec("INSERT INTO _map_select_stats").WithArgs("A", "Alpha").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO _map_select_daily").WillReturnResult(sqlmock.NewResult(1, 1))
	resp, _ := do(t, c, http.MethodGet, srv.URL+"/api/select?id=A")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	mock.ExpectQuery("SELECT selections FROM _map_select_daily").
		WillReturnRows(sqlmock.NewRows([]string{"selections"}).AddRow(1))
	mock.ExpectQuery("SELECT feature_id, name, selections FROM _map_select_stats").
		WillReturnRows(sqlmock.NewRows([]string{"feature_id", "name", "selections"}).AddRow("A", "Alpha", 1))
	resp, b := do(t, c, http.MethodGet, srv.URL+"/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tot store.Totals
	require.NoError(t, json.Unmarshal(b, &tot))
	assert.Equal(t, int64(1), tot.Today)
	require.Len(t, tot.Top, 1)
	assert.Equal(t, "Alpha", tot.Top[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (mapview.State, bool, error) {
	return mapview.State{}, false, errors.New("down")
}

func (brokenStore) Save(context.Context, string, mapview.State) error { return errors.New("down") }

func TestSessionStoreFailure(t *testing.T) {
	d := testDeps()
	d.Sessions = brokenStore{}
	srv := newTestServer(t, d)
	c := newClient(t)

	resp, _ := do(t, c, http.MethodGet, srv.URL+"/api/state")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, c, http.MethodGet, srv.URL+"/api/select?id=A")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPage(t *testing.T) {
	srv := newTestServer(t, testDeps())
	c := newClient(t)

	resp, b := do(t, c, http.MethodGet, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := string(b)
	assert.Contains(t, out, `<option value="all" selected>All</option>`)
	assert.Contains(t, out, `<option value="nondenominational">nondenominational</option>`)
	assert.Contains(t, out, "<svg")
	assert.NotContains(t, out, "<?xml")
	assert.Contains(t, out, "/?select=A")
	assert.NotContains(t, out, "chart-container\">")

	resp, b = do(t, c, http.MethodGet, srv.URL+"/?select=A&filter=Christianity")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = string(b)
	assert.Contains(t, out, `<h2 class="country-name">Alpha</h2>`)
	assert.Contains(t, out, `<div id="chart-container">`)
	assert.Contains(t, out, `<option value="Christianity" selected>Christianity</option>`)

	resp, b = do(t, c, http.MethodGet, srv.URL+"/?filter=Other")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(b), `class="error"`)
	assert.Contains(t, string(b), `<option value="Christianity" selected>`)

	resp, _ = do(t, c, http.MethodGet, srv.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name   string
		target string
		header map[string]string
		remote string
		want   string
	}{
		{"query", "/locate?ip=9.9.9.9", nil, "10.0.0.1:1234", "9.9.9.9"},
		{"xff", "/locate", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.2"}, "10.0.0.1:1234", "1.2.3.4"},
		{"real-ip", "/locate", map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.1:1234", "5.6.7.8"},
		{"forwarded", "/locate", map[string]string{"Forwarded": "for=192.0.2.60;proto=http"}, "10.0.0.1:1234", "192.0.2.60"},
		{"remote", "/locate", nil, "10.0.0.1:1234", "10.0.0.1"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, tc.target, nil)
		r.RemoteAddr = tc.remote
		for k, v := range tc.header {
			r.Header.Set(k, v)
		}
		assert.Equal(t, tc.want, getClientIP(r), tc.name)
	}
}

func TestFirstSelect(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := firstSelect(ctx, rc, "s1", "A", now)
	require.NoError(t, err)
	assert.True(t, first)
	first, err = firstSelect(ctx, rc, "s1", "A", now)
	require.NoError(t, err)
	assert.False(t, first)
	first, err = firstSelect(ctx, rc, "s1", "A", now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, mr.Exists("bloom:select:20240501"))

	first, err = firstSelect(ctx, nil, "s1", "A", now)
	require.NoError(t, err)
	assert.True(t, first)
}
