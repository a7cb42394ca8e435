package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"religion-map/internal/religion"
	"religion-map/internal/utils"
)

// 文档注释：religion.json 读取器
// 约束：顶层为对象数组；取值可以是字符串或数字，null 视为空串（解析为 0），缺失键视为字段缺失。
type JSONFile struct {
	Src    string
	Client *http.Client
}

func (f *JSONFile) Rows(ctx context.Context) ([]religion.DatasetRow, error) {
	b, err := utils.ReadSource(ctx, f.Client, "dataset", f.Src)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", f.Src, err)
	}
	return DecodeJSON(b)
}

// DecodeJSON：解析 religion.json 内容
func DecodeJSON(b []byte) ([]religion.DatasetRow, error) {
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	out := make([]religion.DatasetRow, 0, len(raw))
	for _, r := range raw {
		row := religion.DatasetRow{Name: text(r[NameField]), Fields: make(map[religion.Category]string, len(religion.Categories))}
		for _, c := range religion.Categories {
			if v, ok := r[string(c)]; ok {
				row.Fields[c] = text(v)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		// 与一元加号语义一致：true→1，false→0
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
