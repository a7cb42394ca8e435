package religion

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 文档注释：数据集原始行
// 约束：Name 为国家名（与地理要素的 name 属性精确匹配）；Fields 保存文本形式的数值，缺失字段不出现在 map 中。
type DatasetRow struct {
	Name   string
	Fields map[Category]string
}

var ErrRowShape = errors.New("dataset row needs a name and one value per category")

// NewDatasetRow：按 Categories 顺序组装一行；值保持文本，解析留给 Profile
func NewDatasetRow(name string, values []string) (DatasetRow, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(values) != len(Categories) {
		return DatasetRow{}, fmt.Errorf("%w: name=%q values=%d", ErrRowShape, name, len(values))
	}
	r := DatasetRow{Name: name, Fields: make(map[Category]string, len(Categories))}
	for i, c := range Categories {
		r.Fields[c] = values[i]
	}
	return r, nil
}

// ParseValue：把文本字段转为数值
// 约束：首尾空白忽略；空串为 0；无法解析或为负数时返回 NaN 与 false。
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return math.NaN(), false
	}
	return v, true
}

// Profile：解析全部六个字段；malformed 列出无法解析或缺失的字段
func (r DatasetRow) Profile() (p Profile, malformed []Category) {
	values := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		s, ok := r.Fields[c]
		if !ok {
			values[c] = math.NaN()
			malformed = append(malformed, c)
			continue
		}
		v, ok := ParseValue(s)
		if !ok {
			malformed = append(malformed, c)
		}
		values[c] = v
	}
	return NewProfile(values), malformed
}

// Malformed：一条数据质量问题记录，供调用方记录日志
type Malformed struct {
	Name     string
	Category Category
	Raw      string
}

// IndexRows：按国家名建立 Profile 索引；同名行后者覆盖前者
func IndexRows(rows []DatasetRow) (map[string]Profile, []Malformed) {
	idx := make(map[string]Profile, len(rows))
	var bad []Malformed
	for _, r := range rows {
		p, mf := r.Profile()
		for _, c := range mf {
			bad = append(bad, Malformed{Name: r.Name, Category: c, Raw: r.Fields[c]})
		}
		idx[r.Name] = p
	}
	return idx, bad
}
