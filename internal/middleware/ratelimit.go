package middleware

import (
	"net/http"

	"religion-map/internal/logger"

	"golang.org/x/time/rate"
)

// 文档注释：令牌桶限流器（每秒补充 qps 个令牌，桶容量 qps）
// 背景：地图渲染与 PNG 栅格化较重，峰值时对入口限速，避免渲染缓存与数据库被打满。
func newLimiter(qps int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(qps), qps)
}

// RateLimit：enabled 为 false 时原样返回 next
// 约束：不排队，超出直接返回 429。
func RateLimit(next http.Handler, enabled bool, qps int) http.Handler {
	if !enabled || qps <= 0 {
		return next
	}
	lim := newLimiter(qps)
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
