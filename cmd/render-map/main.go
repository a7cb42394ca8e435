// 离线渲染工具：按 RENDER_FILTER/RENDER_SELECT 渲染地图（SVG + PNG）与选中国家的饼图到 RENDER_OUT 目录
package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"religion-map/internal/config"
	"religion-map/internal/dataset"
	"religion-map/internal/loader"
	"religion-map/internal/logger"
	"religion-map/internal/mapview"
	"religion-map/internal/raster"
	"religion-map/internal/religion"
)

func main() {
	config.LoadDotenv()
	l := logger.Setup()
	cfg := config.Load()
	out := os.Getenv("RENDER_OUT")
	if out == "" {
		out = "out"
	}

	ctx, cancel := cfg.LoadContext(context.Background())
	defer cancel()
	view, err := loader.Build(ctx, loader.Inputs{
		GeoSrc:    cfg.GeoPath,
		GeoObject: cfg.GeoObject,
		Dataset:   dataset.FromPath(cfg.DatasetPath, nil),
		Client:    &http.Client{Timeout: cfg.FetchTimeout},
	}, mapview.WithViewport(cfg.MapWidth, cfg.MapHeight))
	if err != nil {
		l.Error("load_error", "err", err)
		os.Exit(1)
	}

	c := mapview.NewController(view)
	if f := os.Getenv("RENDER_FILTER"); f != "" {
		if err := c.ApplyFilter(religion.Filter(f)); err != nil {
			l.Error("render_filter_error", "err", err)
			os.Exit(2)
		}
	}
	if id := os.Getenv("RENDER_SELECT"); id != "" {
		if err := c.Select(id); err != nil {
			if err := c.SelectByName(id); err != nil {
				l.Error("render_select_error", "err", err)
				os.Exit(2)
			}
		}
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		l.Error("render_out_error", "err", err)
		os.Exit(1)
	}
	var svgBuf bytes.Buffer
	if err := c.RenderSVG(&svgBuf, mapview.RenderOptions{Label: true}); err != nil {
		l.Error("render_svg_error", "err", err)
		os.Exit(1)
	}
	write(l, filepath.Join(out, "map.svg"), svgBuf.Bytes())

	w, h := view.Viewport()
	pngBytes, err := raster.SVGToPNG(svgBuf.Bytes(), w, h, raster.White)
	if err != nil {
		l.Error("render_png_error", "err", err)
		os.Exit(1)
	}
	write(l, filepath.Join(out, "map.png"), pngBytes)

	if d := c.Detail(); d != nil {
		var chartBuf bytes.Buffer
		if err := d.RenderSVG(&chartBuf); err != nil {
			l.Error("render_chart_error", "err", err)
			os.Exit(1)
		}
		write(l, filepath.Join(out, "chart.svg"), chartBuf.Bytes())
	}
	l.Info("render_ok", "out", out, "state", c.State(), "label", c.Label())
}

func write(l *slog.Logger, path string, b []byte) {
	if err := os.WriteFile(path, b, 0o644); err != nil {
		l.Error("render_write_error", "path", path, "err", err)
		os.Exit(1)
	}
	l.Info("render_write_ok", "path", path, "bytes", len(b))
}
