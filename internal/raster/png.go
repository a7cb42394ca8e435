// 包 raster：把地图/饼图 SVG 栅格化为 PNG
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"religion-map/internal/metrics"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

var ErrBadSize = errors.New("invalid raster size")

// 文档注释：SVG → PNG
// 约束：先铺满 background（nil 为透明），再把 SVG 的 viewBox 拉伸到 width×height；
// 解析采用忽略模式，不支持的元素被跳过而不是报错。
func SVGToPNG(svgData []byte, width, height int, background color.Color) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	start := time.Now()
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if background != nil {
		draw.Draw(rgba, rgba.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	}
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	metrics.RenderDurationMs.WithLabelValues("png").Observe(float64(time.Since(start).Milliseconds()))
	return buf.Bytes(), nil
}

// White：PNG 默认底色
var White color.Color = color.White
