// 包 logger：统一初始化与获取日志器；通过环境变量控制日志级别与输出格式
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// 默认日志器：进程级复用
var defaultLogger *slog.Logger

// Setup：按 LOG_LEVEL（debug/info/warn/error）与 LOG_FORMAT（json/text）初始化默认日志器
// 约束：输出目标固定为标准错误
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// SetupWriter：指定输出目标的 Setup，供命令行工具与测试使用
func SetupWriter(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L：获取默认日志器；未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
