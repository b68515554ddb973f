package vicar

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jpfielding/vicar.go/pkg/vicar/format"
)

// Constraints is the byte layout of an image, derived from its system labels
type Constraints struct {
	LblSize int // label block length in bytes
	RecSize int // bytes per physical record
	N1      int // elements per record
	N2      int
	N3      int
	NBB     int // binary prefix bytes per record
	NLB     int // binary header records

	Org       format.Org
	Format    format.NumberFormat
	Element   format.Element
	Width     int // bytes per element
	ByteOrder binary.ByteOrder
}

// Resolve derives the layout from defaulted labels. It does no I/O.
func Resolve(l *Labels) (Constraints, error) {
	var c Constraints
	s := l.System

	nf, err := requireEnum(s, FORMAT, s.Format)
	if err != nil {
		return c, err
	}
	desc, ok := nf.Descriptor()
	if !ok {
		return c, &LabelError{Key: FORMAT, Err: ErrUnsupportedFormat}
	}
	c.Format, c.Element, c.Width = nf, desc.Element, desc.Width

	if c.ByteOrder, err = byteOrder(s, desc); err != nil {
		return c, err
	}

	if c.Org, err = requireEnum(s, ORG, s.Org); err != nil {
		return c, err
	}

	for _, f := range []struct {
		key Key
		dst *int
		min int
	}{
		{LBLSIZE, &c.LblSize, 1},
		{RECSIZE, &c.RecSize, 1},
		{N1, &c.N1, 0},
		{N2, &c.N2, 0},
		{N3, &c.N3, 0},
		{NBB, &c.NBB, 0},
		{NLB, &c.NLB, 0},
	} {
		v, ok := s.Int(f.key)
		if !ok {
			if _, present := s[f.key]; present {
				return c, &LabelError{Key: f.key, Err: ErrInvalidValue}
			}
			return c, &LabelError{Key: f.key, Err: ErrMissingKey}
		}
		if v < f.min {
			return c, &LabelError{Key: f.key, Err: fmt.Errorf("%w: %d", ErrInvalidValue, v)}
		}
		*f.dst = v
	}

	// RECSIZE >= NBB + N1*width, written so no product can overflow
	if c.RecSize < c.NBB || c.N1 > (c.RecSize-c.NBB)/c.Width {
		return c, fmt.Errorf("%w: RECSIZE %d < NBB %d + N1 %d * %d", ErrInvalidLayout, c.RecSize, c.NBB, c.N1, c.Width)
	}
	if !fitsExtent(c) {
		return c, fmt.Errorf("%w: %d label bytes + (%d + %d*%d) records of %d bytes overflows a file offset",
			ErrInvalidLayout, c.LblSize, c.NLB, c.N2, c.N3, c.RecSize)
	}
	return c, nil
}

// fitsExtent reports whether LBLSIZE + (NLB + N2*N3) * RECSIZE fits an int64
func fitsExtent(c Constraints) bool {
	const maxOffset = math.MaxInt64
	if c.N2 != 0 && int64(c.N3) > maxOffset/int64(c.N2) {
		return false
	}
	records := int64(c.N2) * int64(c.N3)
	if records > maxOffset-int64(c.NLB) {
		return false
	}
	records += int64(c.NLB)
	if records > (maxOffset-int64(c.LblSize))/int64(c.RecSize) {
		return false
	}
	return true
}

func requireEnum[T any](s System, k Key, get func() (T, bool)) (T, error) {
	v, ok := get()
	if ok {
		return v, nil
	}
	if raw, present := s[k]; present {
		return v, &LabelError{Key: k, Err: fmt.Errorf("%w: %q", ErrInvalidValue, raw.String())}
	}
	return v, &LabelError{Key: k, Err: ErrMissingKey}
}

// byteOrder picks INTFMT or REALFMT by number class. Absent labels mean the
// file came from a VAX host: LOW integers and VAX reals.
func byteOrder(s System, desc format.Descriptor) (binary.ByteOrder, error) {
	if desc.Width == 1 {
		return binary.BigEndian, nil
	}
	if desc.Class == format.IntegerClass {
		f := format.Low
		if _, present := s[INTFMT]; present {
			var err error
			if f, err = requireEnum(s, INTFMT, s.IntFormat); err != nil {
				return nil, err
			}
		}
		return f.ByteOrder()
	}
	f := format.VAX
	if _, present := s[REALFMT]; present {
		var err error
		if f, err = requireEnum(s, REALFMT, s.RealFormat); err != nil {
			return nil, err
		}
	}
	order, err := f.ByteOrder()
	if err != nil {
		return nil, &LabelError{Key: REALFMT, Err: err}
	}
	return order, nil
}

// Records returns the number of physical image records
func (c Constraints) Records() int { return c.N2 * c.N3 }

// HeaderSize returns the binary header length in bytes
func (c Constraints) HeaderSize() int64 { return int64(c.NLB) * int64(c.RecSize) }

// PixelOffset returns the file offset of the first image record
func (c Constraints) PixelOffset() int64 { return int64(c.LblSize) + c.HeaderSize() }

// DataSize returns the length of the image record region in bytes
func (c Constraints) DataSize() int64 { return int64(c.N2) * int64(c.N3) * int64(c.RecSize) }

// EOLOffset returns where the end-of-file label block starts
func (c Constraints) EOLOffset() int64 { return c.PixelOffset() + c.DataSize() }

// Dims returns the band, line and sample counts for the image organization
func (c Constraints) Dims() (bands, lines, samples int) {
	switch c.Org {
	case format.BIL:
		return c.N2, c.N3, c.N1
	case format.BIP:
		return c.N1, c.N3, c.N2
	default:
		return c.N3, c.N2, c.N1
	}
}

func (c Constraints) String() string {
	b, l, s := c.Dims()
	return fmt.Sprintf("%s %s %s bands=%d lines=%d samples=%d recsize=%d nbb=%d nlb=%d",
		c.Format, c.Element, c.Org, b, l, s, c.RecSize, c.NBB, c.NLB)
}
