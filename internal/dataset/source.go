// 包 dataset：宗教数据集的读取来源（JSON 文件、CSV 文件、PostgreSQL）
package dataset

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"religion-map/internal/religion"
)

// Source：数据集来源的统一契约
type Source interface {
	Rows(ctx context.Context) ([]religion.DatasetRow, error)
}

// NameField：数据集中国家名所在的字段
const NameField = "Name"

// FromPath：按扩展名选择 JSON 或 CSV 读取器；src 可为本地路径或 http(s) 地址
func FromPath(src string, client *http.Client) Source {
	if strings.EqualFold(filepath.Ext(src), ".csv") {
		return &CSVFile{Src: src, Client: client}
	}
	return &JSONFile{Src: src, Client: client}
}
