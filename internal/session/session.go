// 包 session：按会话保存地图交互状态（选中 + 筛选）
package session

import (
	"context"

	"religion-map/internal/mapview"

	"github.com/google/uuid"
)

// 文档注释：会话状态存储
// 约束：Load 未找到时返回 ok=false 且无错误；同一会话并发写入以最后一次为准。
type Store interface {
	Load(ctx context.Context, id string) (mapview.State, bool, error)
	Save(ctx context.Context, id string, st mapview.State) error
}

// NewID：新会话 ID（随机 UUID）
func NewID() string { return uuid.NewString() }

// ValidID：只接受 UUID 形式的会话 ID，拒绝客户端伪造的任意键
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
