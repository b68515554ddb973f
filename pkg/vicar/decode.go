package vicar

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/jpfielding/vicar.go/pkg/vicar/format"
	"github.com/jpfielding/vicar.go/pkg/vicar/interleave"
)

// Decode reads a complete VICAR image: labels, binary header, binary
// prefixes, pixels (canonicalized to BSQ) and EOL labels when flagged.
func Decode(r io.ReaderAt, name string) (*Image, error) {
	labels, err := ReadLabels(r)
	if err != nil {
		return nil, err
	}
	c, err := Resolve(labels)
	if err != nil {
		return nil, err
	}
	img := &Image{Name: name, Labels: labels, Layout: c}

	if img.BinaryHeader, err = ReadBinaryHeader(r, c); err != nil {
		return nil, err
	}
	if img.Data, img.BinaryPrefix, err = DecodeData(r, c); err != nil {
		return nil, err
	}
	if labels.HasEOL() {
		if img.EOLLabels, err = ReadEOLLabels(r, c); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// ReadBinaryHeader returns the NLB records that sit between the label block
// and the image records, or nil when NLB is 0
func ReadBinaryHeader(r io.ReaderAt, c Constraints) ([]byte, error) {
	if c.NLB == 0 {
		return nil, nil
	}
	if err := checkExtent(r, c.PixelOffset(), "binary header"); err != nil {
		return nil, err
	}
	buf := make([]byte, c.HeaderSize())
	if _, err := io.ReadFull(io.NewSectionReader(r, int64(c.LblSize), c.HeaderSize()), buf); err != nil {
		return nil, readErr(err, "binary header")
	}
	return buf, nil
}

// DecodeData reads the N2*N3 image records described by c. The returned
// pixels are always in BSQ (band, line, sample) order. Prefixes are indexed
// [N3][N2] like the records and are nil when NBB is 0.
func DecodeData(r io.ReaderAt, c Constraints) (Pixels, [][][]byte, error) {
	if err := checkExtent(r, c.EOLOffset(), fmt.Sprintf("%d image records", c.Records())); err != nil {
		return nil, nil, err
	}
	rd := bufio.NewReaderSize(io.NewSectionReader(r, c.PixelOffset(), c.DataSize()), bufferSize(c))
	switch c.Element {
	case format.Uint8:
		return decodeAs(rd, c, func(b []byte, _ binary.ByteOrder) uint8 { return b[0] })
	case format.Int16:
		return decodeAs(rd, c, func(b []byte, o binary.ByteOrder) int16 { return int16(o.Uint16(b)) })
	case format.Int32:
		return decodeAs(rd, c, func(b []byte, o binary.ByteOrder) int32 { return int32(o.Uint32(b)) })
	case format.Float32:
		return decodeAs(rd, c, func(b []byte, o binary.ByteOrder) float32 { return math.Float32frombits(o.Uint32(b)) })
	case format.Float64:
		return decodeAs(rd, c, func(b []byte, o binary.ByteOrder) float64 { return math.Float64frombits(o.Uint64(b)) })
	case format.Complex64:
		return decodeAs(rd, c, func(b []byte, o binary.ByteOrder) complex64 {
			return complex(math.Float32frombits(o.Uint32(b)), math.Float32frombits(o.Uint32(b[4:])))
		})
	}
	return nil, nil, fmt.Errorf("%w: element type %s", ErrUnsupportedFormat, c.Element)
}

func bufferSize(c Constraints) int {
	const minBuffer = 64 << 10
	if c.RecSize > minBuffer {
		return c.RecSize
	}
	return minBuffer
}

// readErr marks short reads as truncation and passes other I/O errors through
func readErr(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}

func decodeAs[T interleave.Sample](rd io.Reader, c Constraints, elem func([]byte, binary.ByteOrder) T) (Pixels, [][][]byte, error) {
	// records land in disk order: N3 outer, N2 inner, N1 elements each
	disk := interleave.New[T](c.N3, c.N2, c.N1)
	var prefix [][][]byte
	if c.NBB > 0 {
		prefix = make([][][]byte, c.N3)
	}

	rec := make([]byte, c.RecSize)
	n := 0
	for i := 0; i < c.N3; i++ {
		if prefix != nil {
			prefix[i] = make([][]byte, c.N2)
		}
		for j := 0; j < c.N2; j++ {
			if _, err := io.ReadFull(rd, rec); err != nil {
				return nil, nil, readErr(err, fmt.Sprintf("record %d of %d", i*c.N2+j, c.Records()))
			}
			if prefix != nil {
				prefix[i][j] = append([]byte(nil), rec[:c.NBB]...)
			}
			samples := rec[c.NBB:]
			for k := 0; k < c.N1; k++ {
				disk.Data[n] = elem(samples[k*c.Width:], c.ByteOrder)
				n++
			}
		}
	}

	var bsq *interleave.Array[T]
	switch c.Org {
	case format.BIL:
		bsq = interleave.BILToBSQ(disk)
	case format.BIP:
		bsq = interleave.BIPToBSQ(disk)
	default:
		bsq = disk
	}
	return &Buffer[T]{Array: bsq, Elem: c.Element}, prefix, nil
}
