package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "religionmap_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	RenderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "religionmap_render_duration_ms",
		Help:    "Render duration in milliseconds by output kind",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	}, []string{"kind"})
	SelectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "religionmap_selections_total",
		Help: "Total number of feature selections",
	})
	FilterChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "religionmap_filter_changes_total",
		Help: "Total number of filter changes by filter value",
	}, []string{"filter"})
	RenderCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "religionmap_render_cache_hits_total",
		Help: "Total redis render cache hits",
	})
	RenderCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "religionmap_render_cache_misses_total",
		Help: "Total redis render cache misses",
	})
	SessionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "religionmap_session_errors_total",
		Help: "Session store failures by operation",
	}, []string{"op"})
	GeoIPLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "religionmap_geoip_lookups_total",
		Help: "GeoIP locate lookups by result",
	}, []string{"result"})
	InputLoadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "religionmap_input_load_total",
		Help: "Input file loads by kind and status",
	}, []string{"kind", "status"})
	InputLoadDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "religionmap_input_load_duration_ms",
		Help:    "Input file load duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"kind"})
	MalformedFieldsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "religionmap_dataset_malformed_fields_total",
		Help: "Dataset fields that could not be parsed as numbers",
	})
	UnmatchedFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "religionmap_unmatched_features",
		Help: "Features without a matching dataset row",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RenderDurationMs)
	prometheus.MustRegister(SelectionsTotal)
	prometheus.MustRegister(FilterChangesTotal)
	prometheus.MustRegister(RenderCacheHitsTotal)
	prometheus.MustRegister(RenderCacheMissesTotal)
	prometheus.MustRegister(SessionErrorsTotal)
	prometheus.MustRegister(GeoIPLookupsTotal)
	prometheus.MustRegister(InputLoadTotal)
	prometheus.MustRegister(InputLoadDurationMs)
	prometheus.MustRegister(MalformedFieldsTotal)
	prometheus.MustRegister(UnmatchedFeatures)
}

// 文档注释：返回 Prometheus 指标监听器，在主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
