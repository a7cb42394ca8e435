package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"religion-map/internal/religion"
	"religion-map/internal/utils"
)

var ErrNoNameColumn = errors.New("dataset header has no Name column")

// 文档注释：CSV 数据集读取器
// 约束：首行为表头，按列名映射（大小写敏感，与 JSON 键一致）；缺少的列视为字段缺失；列数不足的行跳过。
type CSVFile struct {
	Src    string
	Client *http.Client
	Comma  rune
}

func (f *CSVFile) Rows(ctx context.Context) ([]religion.DatasetRow, error) {
	b, err := utils.ReadSource(ctx, f.Client, "dataset", f.Src)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", f.Src, err)
	}
	return DecodeCSV(bytes.NewReader(b), f.Comma)
}

// DecodeCSV：解析带表头的 CSV；comma 为 0 时使用逗号
func DecodeCSV(r io.Reader, comma rune) ([]religion.DatasetRow, error) {
	reader := csv.NewReader(r)
	if comma != 0 {
		reader.Comma = comma
	}
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	nameIdx, ok := col[NameField]
	if !ok {
		return nil, ErrNoNameColumn
	}
	var out []religion.DatasetRow
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := religion.DatasetRow{Name: rec[nameIdx], Fields: make(map[religion.Category]string, len(religion.Categories))}
		for _, c := range religion.Categories {
			if i, ok := col[string(c)]; ok {
				row.Fields[c] = rec[i]
			}
		}
		out = append(out, row)
	}
	return out, nil
}
