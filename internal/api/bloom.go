package api

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	bloomBits   = 1 << 20
	bloomHashes = 4
)

// 文档注释：计算布隆过滤器位置
// 参数：m 为位图大小，k 为哈希次数；FNV64a 以索引字节扰动生成 k 个位置。
func bloomPositions(data []byte, m uint32, k int) []int64 {
	pos := make([]int64, k)
	for i := 0; i < k; i++ {
		h := fnv.New64a()
		h.Write([]byte{byte(i)})
		h.Write(data)
		pos[i] = int64(h.Sum64() % uint64(m))
	}
	return pos
}

// 文档注释：检查并写入布隆位图
// 返回：true 表示首次见到（已写入）；Redis 出错或 rc 为 nil 时返回 true，不阻断统计。
func bloomCheckAndSet(ctx context.Context, rc *redis.Client, key string, positions []int64, ttl time.Duration) (bool, error) {
	if rc == nil {
		return true, nil
	}
	seen := true
	for _, p := range positions {
		b, err := rc.GetBit(ctx, key, p).Result()
		if err != nil {
			return true, err
		}
		if b == 0 {
			seen = false
		}
	}
	if seen {
		return false, nil
	}
	pipe := rc.Pipeline()
	for _, p := range positions {
		pipe.SetBit(ctx, key, p, 1)
	}
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return true, err
}

// firstSelect：同一会话当天重复选中同一国家只计一次
func firstSelect(ctx context.Context, rc *redis.Client, sessionID, featureID string, now time.Time) (bool, error) {
	key := "bloom:select:" + now.UTC().Format("20060102")
	return bloomCheckAndSet(ctx, rc, key, bloomPositions([]byte(sessionID+"|"+featureID), bloomBits, bloomHashes), 36*time.Hour)
}
