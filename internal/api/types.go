package api

import (
	"religion-map/internal/chart"
	"religion-map/internal/geoip"
	"religion-map/internal/religion"
)

// 文档注释：对外返回结构
// 约束：字段稳定；Profile 中的非数值字段序列化为 null。
type featureResult struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Color    religion.Color    `json:"color"`
	Dominant religion.Category `json:"dominant,omitempty"`
	Profile  religion.Profile  `json:"profile"`
}

type stateResult struct {
	Selected string          `json:"selected,omitempty"`
	Filter   religion.Filter `json:"filter"`
	Label    string          `json:"label,omitempty"`
	Detail   []chart.Slice   `json:"detail,omitempty"`
}

type locateResult struct {
	Location geoip.Location `json:"location"`
	State    stateResult    `json:"state"`
}

type errorResult struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
