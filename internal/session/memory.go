package session

import (
	"context"
	"time"

	"religion-map/internal/mapview"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// 文档注释：进程内 LRU 会话存储
// 背景：单实例部署无需 Redis；容量满时淘汰最久未访问的会话，过期会话读取不到并由后台定期清理。
// 约束：读取会刷新位置但不延长 TTL；写入重置 TTL；ttl<=0 表示不过期。
type MemoryStore struct {
	lru *expirable.LRU[string, mapview.State]
}

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryStore{lru: expirable.NewLRU[string, mapview.State](capacity, nil, ttl)}
}

func (c *MemoryStore) Load(_ context.Context, id string) (mapview.State, bool, error) {
	st, ok := c.lru.Get(id)
	return st, ok, nil
}

func (c *MemoryStore) Save(_ context.Context, id string, st mapview.State) error {
	c.lru.Add(id, st)
	return nil
}

// Len：当前保存的会话数（可能含尚未清理的过期项）
func (c *MemoryStore) Len() int { return c.lru.Len() }
