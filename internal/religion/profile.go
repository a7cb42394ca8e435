package religion

import (
	"encoding/json"
	"math"
)

// 文档注释：单个国家的宗教构成（百分比）
// 约束：构造后只读；缺失的分类与值为 0 的分类语义不同，缺失项不参与最大值比较；
// 解析失败的字段以 NaN 保存，NaN 不参与最大值且与任何值都不相等。
type Profile struct {
	values map[Category]float64
}

// NewProfile：复制传入的分类取值构造 Profile；未知分类被忽略
func NewProfile(values map[Category]float64) Profile {
	if len(values) == 0 {
		return Profile{}
	}
	m := make(map[Category]float64, len(values))
	for _, c := range Categories {
		if v, ok := values[c]; ok {
			m[c] = v
		}
	}
	return Profile{values: m}
}

// Empty：没有任何分类取值（数据集中无对应行）
func (p Profile) Empty() bool { return len(p.values) == 0 }

// Get：返回分类取值与是否存在
func (p Profile) Get(c Category) (float64, bool) {
	v, ok := p.values[c]
	return v, ok
}

// Value：缺失或非数值时返回 0，供饼图等按零值处理的场景使用
func (p Profile) Value(c Category) float64 {
	v, ok := p.values[c]
	if !ok || math.IsNaN(v) {
		return 0
	}
	return v
}

// LocalMax：Compared 分类中的最大值；全部缺失或非数值时 ok 为 false
func (p Profile) LocalMax() (max float64, ok bool) {
	for _, c := range Compared {
		v, has := p.values[c]
		if !has || math.IsNaN(v) {
			continue
		}
		if !ok || v > max {
			max, ok = v, true
		}
	}
	return max, ok
}

// Dominant：主导分类；无数据（最大值缺失或为 0）时 ok 为 false
func (p Profile) Dominant() (Category, bool) {
	max, ok := p.LocalMax()
	if !ok || max == 0 {
		return "", false
	}
	for _, c := range Compared {
		if v, has := p.values[c]; has && v == max {
			return c, true
		}
	}
	return "", false
}

// MarshalJSON：按自然顺序输出；NaN 输出为 null
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]*float64, len(p.values))
	for _, c := range Categories {
		v, ok := p.values[c]
		if !ok {
			continue
		}
		if math.IsNaN(v) {
			out[string(c)] = nil
			continue
		}
		vv := v
		out[string(c)] = &vv
	}
	return json.Marshal(out)
}

// GlobalMax：所有国家 LocalMax 的最大值，用作透明度比例尺的上界；无数据返回 0
func GlobalMax(profiles []Profile) float64 {
	var max float64
	for _, p := range profiles {
		if v, ok := p.LocalMax(); ok && v > max {
			max = v
		}
	}
	return max
}
