// Package render turns one band of a decoded VICAR image into a grayscale
// preview.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jpfielding/vicar.go/pkg/vicar"
	"golang.org/x/image/bmp"
)

// Format is an output encoding
type Format string

const (
	PNG Format = "png"
	BMP Format = "bmp"
)

// FormatFor picks the encoding from a file extension, defaulting to PNG
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		return BMP
	}
	return PNG
}

// Options controls a preview
type Options struct {
	Band int
	// Percentile stretches between the 1st and 99th percentile instead of
	// the band min/max
	Percentile bool
	// Width resizes to this many columns keeping aspect; 0 keeps the size
	Width  int
	Format Format
}

// Window is the sample range mapped onto black..white
type Window struct {
	Lo, Hi float64
}

// WindowFor derives the stretch window for band b
func WindowFor(p vicar.Pixels, b int, percentile bool) (Window, error) {
	st, err := vicar.BandStats(p, b)
	if err != nil {
		return Window{}, err
	}
	if percentile {
		return Window{Lo: st.P01, Hi: st.P99}, nil
	}
	return Window{Lo: st.Min, Hi: st.Max}, nil
}

// Gray16 maps v into the window; NaN and values at or below Lo are black
func (w Window) Gray16(v float64) color.Gray16 {
	if math.IsNaN(v) || w.Hi <= w.Lo || v <= w.Lo {
		return color.Gray16{}
	}
	if v >= w.Hi {
		return color.Gray16{Y: math.MaxUint16}
	}
	return color.Gray16{Y: uint16(math.Round((v - w.Lo) / (w.Hi - w.Lo) * math.MaxUint16))}
}

// Band renders band opts.Band of p
func Band(p vicar.Pixels, opts Options) (image.Image, error) {
	samples, err := vicar.Band(p, opts.Band)
	if err != nil {
		return nil, err
	}
	win, err := WindowFor(p, opts.Band, opts.Percentile)
	if err != nil {
		return nil, err
	}
	_, lines, cols := p.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, lines))
	for i, v := range samples {
		img.SetGray16(i%cols, i/cols, win.Gray16(v))
	}
	if opts.Width <= 0 || opts.Width == cols {
		return img, nil
	}
	return imaging.Resize(img, opts.Width, 0, imaging.Lanczos), nil
}

// Encode writes img as f
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG, "":
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", f)
}

// Write renders and encodes one band
func Write(w io.Writer, img *vicar.Image, opts Options) error {
	out, err := Band(img.Data, opts)
	if err != nil {
		return err
	}
	return Encode(w, out, opts.Format)
}
