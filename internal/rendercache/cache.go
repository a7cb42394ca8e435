// 包 rendercache：按 (筛选, 选中) 缓存渲染好的地图
package rendercache

import (
	"context"
	"errors"
	"time"

	"religion-map/internal/logger"
	"religion-map/internal/mapview"
	"religion-map/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// 文档注释：Redis 渲染缓存
// 背景：地图渲染只取决于 (要素集合, State)，同一状态的 SVG/PNG 可在会话间共享。
// 约束：version 标识要素与数据集的版本，数据变更后旧键自然失效；Redis 错误只记日志并回退到直接渲染。
type Cache struct {
	rc      *redis.Client
	ttl     time.Duration
	version string
}

// New：rc 为 nil 时返回的缓存总是未命中
func New(rc *redis.Client, ttl time.Duration, version string) *Cache {
	return &Cache{rc: rc, ttl: ttl, version: version}
}

// Key：map:<version>:<kind>:<filter>:<selected>
func (c *Cache) Key(kind string, st mapview.State) string {
	st = st.Normalize()
	sel := st.Selected
	if sel == "" {
		sel = "-"
	}
	return "map:" + c.version + ":" + kind + ":" + string(st.Filter) + ":" + sel
}

// 文档注释：读缓存，未命中时调用 render 并回写
// 约束：render 的错误原样返回且不写缓存。
func (c *Cache) GetOrRender(ctx context.Context, kind string, st mapview.State, render func() ([]byte, error)) ([]byte, error) {
	if c == nil || c.rc == nil {
		return render()
	}
	key := c.Key(kind, st)
	b, err := c.rc.Get(ctx, key).Bytes()
	if err == nil {
		metrics.RenderCacheHitsTotal.Inc()
		return b, nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.L().Warn("render_cache_get_error", "key", key, "err", err)
	}
	metrics.RenderCacheMissesTotal.Inc()
	b, err = render()
	if err != nil {
		return nil, err
	}
	if err := c.rc.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logger.L().Warn("render_cache_set_error", "key", key, "err", err)
	}
	return b, nil
}
