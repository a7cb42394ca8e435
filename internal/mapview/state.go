package mapview

import "religion-map/internal/religion"

// 文档注释：地图交互状态（选中 + 筛选）
// 约束：渲染结果只由 (要素集合, State) 决定；Selected 只是要素 ID 的弱引用，为空表示未选中。
type State struct {
	Selected string          `json:"selected,omitempty"`
	Filter   religion.Filter `json:"filter"`
}

// DefaultState：未选中，筛选为 all
func DefaultState() State { return State{Filter: religion.FilterAll} }

// Normalize：空筛选值视为 all
func (s State) Normalize() State {
	if s.Filter == "" {
		s.Filter = religion.FilterAll
	}
	return s
}
