// 包 religion：宗教分类、国家构成数据与配色规则
package religion

import (
	"errors"
	"fmt"
)

// Category：固定的六个宗教分类之一
type Category string

const (
	Christianity      Category = "Christianity"
	Islam             Category = "Islam"
	Buddhism          Category = "Buddhism"
	Hinduism          Category = "Hinduism"
	Nondenominational Category = "nondenominational"
	Other             Category = "Other"
)

// Categories：全部分类，按数据集字段的自然顺序
var Categories = []Category{Christianity, Islam, Buddhism, Hinduism, Nondenominational, Other}

// 文档注释：参与主导分类比较的分类（有序优先级）
// 约束：Other 不参与比较；最大值并列时取列表中靠前者。
var Compared = []Category{Christianity, Islam, Buddhism, Hinduism, Nondenominational}

// Filter：地图筛选值，all 或 Compared 中的某个分类
type Filter string

const FilterAll Filter = "all"

// Filters：下拉框可选值，顺序即展示顺序
var Filters = []Filter{FilterAll, Filter(Christianity), Filter(Islam), Filter(Buddhism), Filter(Hinduism), Filter(Nondenominational)}

// ErrUnknownFilter：筛选值不在 Filters 中
var ErrUnknownFilter = errors.New("unknown filter")

// ParseFilter：校验并返回筛选值；空串视为 all
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Category：返回筛选值对应的分类；all 返回空串
func (f Filter) Category() Category {
	if f == FilterAll {
		return ""
	}
	return Category(f)
}
