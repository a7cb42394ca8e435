package api

import (
	"context"
	"fmt"
	"net/http"

	"religion-map/internal/logger"
	"religion-map/internal/mapview"
	"religion-map/internal/metrics"
	"religion-map/internal/session"
)

// 文档注释：读取当前会话
// 约束：Cookie 缺失或不是合法会话 ID 时签发新 ID；存储读失败按默认状态继续（只记日志与指标）。
func (s *server) loadSession(w http.ResponseWriter, r *http.Request) (string, mapview.State) {
	if c, err := r.Cookie(s.Cookie); err == nil && session.ValidID(c.Value) {
		st, ok, err := s.Sessions.Load(r.Context(), c.Value)
		if err != nil {
			metrics.SessionErrorsTotal.WithLabelValues("load").Inc()
			logger.L().Warn("session_load_error", "err", err)
		}
		if ok {
			return c.Value, st.Normalize()
		}
		return c.Value, mapview.DefaultState()
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     s.Cookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	logger.L().Debug("session_new", "id", id)
	return id, mapview.DefaultState()
}

func (s *server) saveSession(ctx context.Context, id string, st mapview.State) error {
	if err := s.Sessions.Save(ctx, id, st); err != nil {
		metrics.SessionErrorsTotal.WithLabelValues("save").Inc()
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// controller：以会话状态恢复出本次请求使用的控制器
func (s *server) controller(st mapview.State) *mapview.Controller {
	c := mapview.NewController(s.View)
	c.Restore(st)
	return c
}
