// Package format defines the closed enumerations referenced by VICAR system
// labels and the element layout of each pixel number format.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnsupported is returned for byte orders the decoder cannot handle
var ErrUnsupported = errors.New("unsupported format")

// Enum is implemented by every closed enumeration in this package
type Enum interface {
	fmt.Stringer
	// Domain names the enumeration, e.g. "NumberFormat"
	Domain() string
}

// Element is the native in-memory type of one pixel sample
type Element int

const (
	Uint8 Element = iota + 1
	Int16
	Int32
	Float32
	Float64
	Complex64
)

func (e Element) String() string {
	switch e {
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	default:
		return fmt.Sprintf("Element(%d)", int(e))
	}
}

// Class splits number formats into integer and real families, which pick
// their byte order from INTFMT and REALFMT respectively.
type Class int

const (
	IntegerClass Class = iota
	RealClass
)

// NumberFormat is the FORMAT system label
type NumberFormat string

const (
	Byte    NumberFormat = "BYTE"
	Half    NumberFormat = "HALF"
	Full    NumberFormat = "FULL"
	Real    NumberFormat = "REAL"
	Doub    NumberFormat = "DOUB"
	Comp    NumberFormat = "COMP"
	Word    NumberFormat = "WORD"
	Long    NumberFormat = "LONG"
	Complex NumberFormat = "COMPLEX"
)

// Descriptor describes how one sample of a NumberFormat is laid out
type Descriptor struct {
	Width   int
	Element Element
	Class   Class
}

var descriptors = map[NumberFormat]Descriptor{
	Byte:    {1, Uint8, IntegerClass},
	Half:    {2, Int16, IntegerClass},
	Word:    {2, Int16, IntegerClass},
	Full:    {4, Int32, IntegerClass},
	Long:    {4, Int32, IntegerClass},
	Real:    {4, Float32, RealClass},
	Doub:    {8, Float64, RealClass},
	Comp:    {8, Complex64, RealClass},
	Complex: {8, Complex64, RealClass},
}

// Descriptor returns the layout of the format
func (f NumberFormat) Descriptor() (Descriptor, bool) {
	d, ok := descriptors[f]
	return d, ok
}

func (f NumberFormat) String() string { return string(f) }
func (NumberFormat) Domain() string { return "NumberFormat" }

// Org is the ORG system label, the on-disk band interleave
type Org string

const (
	BSQ Org = "BSQ"
	BIL Org = "BIL"
	BIP Org = "BIP"
)

func (o Org) String() string { return string(o) }
func (Org) Domain() string { return "DataOrg" }

// DataType is the TYPE system label
type DataType string

const (
	Image   DataType = "IMAGE"
	Params  DataType = "PARAMS"
	Parm    DataType = "PARM"
	Param   DataType = "PARAM"
	Graph1  DataType = "GRAPH1"
	Graph2  DataType = "GRAPH2"
	Graph3  DataType = "GRAPH3"
	Tabular DataType = "TABULAR"
)

func (t DataType) String() string { return string(t) }
func (DataType) Domain() string { return "DataType" }

// IntFormat is the INTFMT/BINTFMT system label
type IntFormat string

const (
	High IntFormat = "HIGH"
	Low  IntFormat = "LOW"
)

func (f IntFormat) String() string { return string(f) }
func (IntFormat) Domain() string { return "IntFormat" }

// ByteOrder returns big endian for HIGH and little endian for LOW
func (f IntFormat) ByteOrder() (binary.ByteOrder, error) {
	switch f {
	case High:
		return binary.BigEndian, nil
	case Low:
		return binary.LittleEndian, nil
	}
	return nil, fmt.Errorf("%w: INTFMT %q", ErrUnsupported, string(f))
}

// RealFormat is the REALFMT/BREALFMT system label
type RealFormat string

const (
	IEEE  RealFormat = "IEEE"
	RIEEE RealFormat = "RIEEE"
	VAX   RealFormat = "VAX"
)

func (f RealFormat) String() string { return string(f) }
func (RealFormat) Domain() string { return "RealFormat" }

// ByteOrder returns big endian for IEEE and little endian for RIEEE. VAX
// floating point is not decoded.
func (f RealFormat) ByteOrder() (binary.ByteOrder, error) {
	switch f {
	case IEEE:
		return binary.BigEndian, nil
	case RIEEE:
		return binary.LittleEndian, nil
	}
	return nil, fmt.Errorf("%w: REALFMT %q", ErrUnsupported, string(f))
}

// HostType is the HOST/BHOST system label. It is informational only.
type HostType string

const (
	AlphaVMS   HostType = "ALPHA-VMS"
	AXPUnix    HostType = "AXP-UNIX"
	DECStatn   HostType = "DECSTATN"
	HPUX       HostType = "HP-700"
	MacOSX     HostType = "MAC-OSX"
	MacPPC     HostType = "PPC-MACOS"
	SGI        HostType = "SGI"
	SunSolaris HostType = "SUN-SOLR"
	Sun4       HostType = "SUN-4"
	TIIEEE     HostType = "TIIEEE"
	VAXVMS     HostType = "VAX-VMS"
	X86Linux   HostType = "X86-LINUX"
	X86Macos   HostType = "X86-MACOSX"
	X86_64     HostType = "X86-64-LINX"
	Java       HostType = "JAVA"
)

func (h HostType) String() string { return string(h) }
func (HostType) Domain() string { return "HostType" }

var (
	numberFormats = []NumberFormat{Byte, Half, Full, Real, Doub, Comp, Word, Long, Complex}
	orgs          = []Org{BSQ, BIL, BIP}
	dataTypes     = []DataType{Image, Params, Parm, Param, Graph1, Graph2, Graph3, Tabular}
	intFormats    = []IntFormat{High, Low}
	realFormats   = []RealFormat{IEEE, RIEEE, VAX}
	hostTypes     = []HostType{AlphaVMS, AXPUnix, DECStatn, HPUX, MacOSX, MacPPC, SGI, SunSolaris, Sun4, TIIEEE, VAXVMS, X86Linux, X86Macos, X86_64, Java}
)

func lookup[T ~string](members []T, s string) (T, bool) {
	for _, m := range members {
		if string(m) == s {
			return m, true
		}
	}
	var zero T
	return zero, false
}

// ParseNumberFormat maps a FORMAT value
func ParseNumberFormat(s string) (NumberFormat, bool) { return lookup(numberFormats, s) }

// ParseOrg maps an ORG value
func ParseOrg(s string) (Org, bool) { return lookup(orgs, s) }

// ParseDataType maps a TYPE value
func ParseDataType(s string) (DataType, bool) { return lookup(dataTypes, s) }

// ParseIntFormat maps an INTFMT value
func ParseIntFormat(s string) (IntFormat, bool) { return lookup(intFormats, s) }

// ParseRealFormat maps a REALFMT value
func ParseRealFormat(s string) (RealFormat, bool) { return lookup(realFormats, s) }

// ParseHostType maps a HOST value
func ParseHostType(s string) (HostType, bool) { return lookup(hostTypes, s) }
