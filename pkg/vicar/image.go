package vicar

import (
	"bytes"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/jpfielding/vicar.go/pkg/vicar/format"
	"github.com/jpfielding/vicar.go/pkg/vicar/interleave"
	"github.com/jpfielding/vicar.go/pkg/vicar/label"
)

// Image is a decoded VICAR file
type Image struct {
	Name      string
	Labels    *Labels
	EOLLabels *Labels // nil unless EOL=1
	Layout    Constraints

	// Data is always BSQ ordered (band, line, sample)
	Data Pixels

	BinaryHeader []byte
	BinaryPrefix [][][]byte
}

// Pixels is a BSQ ordered pixel buffer of any element type
type Pixels interface {
	Dims() (bands, lines, samples int)
	Element() format.Element
	// Float64At returns the sample as a float64; complex samples report
	// their real part
	Float64At(band, line, sample int) float64
}

// Buffer is the concrete Pixels for element type T
type Buffer[T interleave.Sample] struct {
	*interleave.Array[T]
	Elem format.Element
}

func (b *Buffer[T]) Dims() (int, int, int) {
	return b.Shape[0], b.Shape[1], b.Shape[2]
}

func (b *Buffer[T]) Element() format.Element { return b.Elem }

func (b *Buffer[T]) Float64At(band, line, sample int) float64 {
	return toFloat64(b.At(band, line, sample))
}

func toFloat64[T interleave.Sample](v T) float64 {
	switch x := any(v).(type) {
	case uint8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case complex64:
		return float64(real(x))
	}
	return 0
}

// Samples returns the typed array behind p
func Samples[T interleave.Sample](p Pixels) (*interleave.Array[T], bool) {
	b, ok := p.(*Buffer[T])
	if !ok {
		return nil, false
	}
	return b.Array, true
}

// Dims returns the band, line and sample counts of the image
func (img *Image) Dims() (bands, lines, samples int) {
	return img.Data.Dims()
}

// Band returns one band as line-major float64 samples
func (img *Image) Band(b int) ([]float64, error) {
	return Band(img.Data, b)
}

// Band returns band b of p as line-major float64 samples
func Band(p Pixels, b int) ([]float64, error) {
	nb, nl, ns := p.Dims()
	if b < 0 || b >= nb {
		return nil, fmt.Errorf("band index %d out of bounds (0-%d)", b, nb-1)
	}
	out := make([]float64, 0, nl*ns)
	for l := 0; l < nl; l++ {
		for s := 0; s < ns; s++ {
			out = append(out, p.Float64At(b, l, s))
		}
	}
	return out, nil
}

// BinaryHeaderLabels interprets the binary header as raw label text. Binary
// headers are vendor specific, so anything that is not text gives nil.
func (img *Image) BinaryHeaderLabels() ObjectMap {
	if len(img.BinaryHeader) == 0 {
		return nil
	}
	text := img.BinaryHeader
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	if !utf8.Valid(text) {
		slog.Debug("binary header is not text", "name", img.Name)
		return nil
	}
	pairs, err := label.Tokenize(string(text))
	if err != nil || len(pairs) == 0 {
		slog.Debug("binary header has no labels", "name", img.Name, "error", err)
		return nil
	}
	out := ObjectMap{}
	for _, p := range pairs {
		v, err := p.Value()
		if err != nil {
			slog.Debug("binary header label", "name", img.Name, "key", p.Key, "error", err)
			return nil
		}
		out[p.Key] = v
	}
	return out
}
