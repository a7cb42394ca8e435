package geodata

import "religion-map/internal/religion"

// 文档注释：按国家名把数据集关联到要素
// 约束：精确匹配 Name；未匹配的要素得到空 Profile（按无数据处理）；返回新切片，不修改入参。
func Join(features []Feature, profiles map[string]religion.Profile) (out []Feature, unmatched []string) {
	out = make([]Feature, len(features))
	for i, f := range features {
		if p, ok := profiles[f.Name]; ok {
			f.Profile = p
		} else {
			f.Profile = religion.Profile{}
			unmatched = append(unmatched, f.Name)
		}
		out[i] = f
	}
	return out, unmatched
}
