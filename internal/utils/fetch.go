package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"religion-map/internal/logger"
	"religion-map/internal/metrics"
)

// 文档注释：读取输入文件（本地路径或 http/https 地址）
// 约束：远程读取受 ctx 控制，非 200 状态视为失败；不重试，失败由调用方决定是否中止启动。
// 参数：kind 仅用于日志与指标标签（geo/dataset）。
func ReadSource(ctx context.Context, client *http.Client, kind, src string) ([]byte, error) {
	t0 := time.Now()
	b, err := readSource(ctx, client, src)
	metrics.InputLoadDurationMs.WithLabelValues(kind).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.InputLoadTotal.WithLabelValues(kind, "fail").Inc()
		return nil, err
	}
	metrics.InputLoadTotal.WithLabelValues(kind, "ok").Inc()
	logger.L().Debug("input_read", "kind", kind, "src", src, "bytes", len(b))
	return b, nil
}

func readSource(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
