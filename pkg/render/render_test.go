package render

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/jpfielding/vicar.go/pkg/vicar"
	"github.com/jpfielding/vicar.go/pkg/vicar/format"
	"github.com/jpfielding/vicar.go/pkg/vicar/interleave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// ramp is 2 bands x 2 lines x 4 samples; band 1 is band 0 plus 100
func ramp(t *testing.T) vicar.Pixels {
	data := []float32{
		0, 1, 2, 3,
		4, 5, 6, 7,
		100, 101, 102, 103,
		104, 105, 106, float32(math.NaN()),
	}
	a, err := interleave.FromSlice(data, 2, 2, 4)
	require.NoError(t, err)
	return &vicar.Buffer[float32]{Array: a, Elem: format.Float32}
}

func TestWindow_Gray16(t *testing.T) {
	w := Window{Lo: 10, Hi: 20}
	assert.Equal(t, uint16(0), w.Gray16(5).Y)
	assert.Equal(t, uint16(0), w.Gray16(10).Y)
	assert.Equal(t, uint16(math.MaxUint16), w.Gray16(25).Y)
	assert.Equal(t, uint16(32768), w.Gray16(15).Y)
	assert.Equal(t, uint16(0), w.Gray16(math.NaN()).Y)
	assert.Equal(t, uint16(0), Window{Lo: 1, Hi: 1}.Gray16(1).Y)
}

func TestBand(t *testing.T) {
	p := ramp(t)

	img, err := Band(p, Options{Band: 0})
	require.NoError(t, err)
	g, ok := img.(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 4, 2), g.Bounds())
	assert.Equal(t, uint16(0), g.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(math.MaxUint16), g.Gray16At(3, 1).Y)

	// NaN is ignored by the window and renders black
	img, err = Band(p, Options{Band: 1})
	require.NoError(t, err)
	g = img.(*image.Gray16)
	assert.Equal(t, uint16(math.MaxUint16), g.Gray16At(2, 1).Y)
	assert.Equal(t, uint16(0), g.Gray16At(3, 1).Y)

	_, err = Band(p, Options{Band: 2})
	assert.Error(t, err)
}

func TestBand_PercentileAndResize(t *testing.T) {
	p := ramp(t)
	win, err := WindowFor(p, 0, true)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, win.Lo, 0.0)
	assert.Less(t, win.Hi, 7.0)

	img, err := Band(p, Options{Band: 0, Percentile: true, Width: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}

func TestEncode(t *testing.T) {
	img, err := Band(ramp(t), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, PNG))
	dec, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), dec.Bounds())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, BMP))
	dec, err = bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), dec.Bounds())

	assert.Error(t, Encode(&buf, img, "tiff"))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, BMP, FormatFor("out.BMP"))
	assert.Equal(t, PNG, FormatFor("out.png"))
	assert.Equal(t, PNG, FormatFor("out"))
}
