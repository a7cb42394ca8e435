package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const square = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="0 0 20 20">
<rect x="0" y="0" width="10" height="20" style="fill:red"/>
</svg>`

func TestSVGToPNG(t *testing.T) {
	out, err := SVGToPNG([]byte(square), 40, 40, White)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	r, g, b, _ := img.At(5, 20).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)

	r, g, b, _ = img.At(35, 20).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestSVGToPNGBadSize(t *testing.T) {
	_, err := SVGToPNG([]byte(square), 0, 10, nil)
	assert.ErrorIs(t, err, ErrBadSize)
}
