package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"religion-map/internal/mapview"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// 文档注释：Redis 会话存储
// 背景：多实例部署时会话需要跨进程共享；值为 State 的 JSON，键带 TTL。
type RedisStore struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedisStore(rc *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rc: rc, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, id string) (mapview.State, bool, error) {
	b, err := s.rc.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return mapview.State{}, false, nil
	}
	if err != nil {
		return mapview.State{}, false, fmt.Errorf("session load: %w", err)
	}
	var st mapview.State
	if err := json.Unmarshal(b, &st); err != nil {
		return mapview.State{}, false, fmt.Errorf("session decode: %w", err)
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, st mapview.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.rc.Set(ctx, keyPrefix+id, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}
