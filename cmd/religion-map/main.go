// 程序入口：读取配置、加载输入、初始化可选依赖（Postgres/Redis/GeoIP）并启动服务；路由注册在 internal/api
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"religion-map/internal/api"
	"religion-map/internal/config"
	"religion-map/internal/dataset"
	"religion-map/internal/geoip"
	"religion-map/internal/loader"
	"religion-map/internal/logger"
	"religion-map/internal/mapview"
	"religion-map/internal/metrics"
	"religion-map/internal/middleware"
	"religion-map/internal/migrate"
	"religion-map/internal/rendercache"
	"religion-map/internal/session"
	"religion-map/internal/store"
	"religion-map/internal/utils"

	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadDotenv()
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.Load()
	l.Debug("config_loaded", "api_base", cfg.APIBase, "geo", cfg.GeoPath, "dataset", cfg.DatasetPath, "source", cfg.DatasetSource)

	ctx := context.Background()

	var st *store.Store
	if cfg.PGEnable {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
			os.Exit(1)
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
	} else {
		l.Info("db_disabled")
	}

	var rc *redis.Client
	if cfg.RedisEnable {
		rc = utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			if cfg.SessionStore == config.SessionRedis {
				os.Exit(1)
			}
			rc = nil
		} else {
			l.Info("redis_ping_ok")
			defer rc.Close()
		}
	} else {
		l.Info("redis_disabled")
	}

	var src dataset.Source = dataset.FromPath(cfg.DatasetPath, nil)
	if cfg.DatasetSource == config.SourcePostgres {
		src = &dataset.Postgres{Store: st}
	}
	client := &http.Client{Timeout: cfg.FetchTimeout}
	loadCtx, cancel := cfg.LoadContext(ctx)
	view, err := loader.Build(loadCtx, loader.Inputs{
		GeoSrc:    cfg.GeoPath,
		GeoObject: cfg.GeoObject,
		Dataset:   src,
		Client:    client,
	}, mapview.WithViewport(cfg.MapWidth, cfg.MapHeight))
	cancel()
	if err != nil {
		l.Error("load_error", "err", err)
		os.Exit(1)
	}
	l.Info("map_ready", "features", len(view.Features()), "version", view.Version())

	var sessions session.Store
	if cfg.SessionStore == config.SessionRedis {
		sessions = session.NewRedisStore(rc, cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionCapacity, cfg.SessionTTL)
	}
	l.Info("session_store", "kind", cfg.SessionStore, "ttl", cfg.SessionTTL)

	var cache *rendercache.Cache
	if rc != nil {
		cache = rendercache.New(rc, cfg.RenderCacheTTL, view.Version())
	}

	var locator geoip.Locator
	if cfg.GeoIPPath != "" {
		r, err := geoip.Open(cfg.GeoIPPath)
		if err != nil {
			l.Error("geoip_open_error", "path", cfg.GeoIPPath, "err", err)
		} else {
			defer r.Close()
			locator = r
			l.Info("geoip_ready", "db", r.Describe())
		}
	}

	deps := api.Deps{
		View:         view,
		Sessions:     sessions,
		Cache:        cache,
		Stats:        st,
		Locator:      locator,
		Redis:        rc,
		Base:         cfg.APIBase,
		Cookie:       cfg.SessionCookie,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.TLSEnable,
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, api.BuildRoutes(deps)))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", api.BuildPage(deps))

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.RateLimit(handler, cfg.RateLimitEnabled, cfg.RateLimitQPS)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	if cfg.TLSEnable {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		if cfg.TLSRedirect {
			go func() {
				l.Info("http_redirect_listening", "addr", cfg.TLSRedirectAddr, "to", "https"+cfg.Addr)
				if err := http.ListenAndServe(cfg.TLSRedirectAddr, logger.AccessMiddleware(l)(utils.HTTPSRedirect(cfg.Addr))); err != nil {
					l.Error("http_redirect_error", "err", err)
				}
			}()
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		if err := s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath); err != nil {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
		return
	}
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}
