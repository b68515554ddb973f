package vicar

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpfielding/vicar.go/pkg/vicar/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_MinimalBSQ(t *testing.T) {
	data := vicarFile(t, 128,
		"FORMAT=BYTE TYPE=IMAGE ORG=BSQ NL=2 NS=3 NB=1 N1=3 N2=2 N3=1 NBB=0 NLB=0 RECSIZE=3",
		[]byte{10, 20, 30, 40, 50, 60})

	img, err := ReadBuffer(data, "minimal")
	require.NoError(t, err)

	assert.Equal(t, "minimal", img.Name)
	assert.False(t, img.Labels.HasEOL())
	assert.Nil(t, img.EOLLabels)
	assert.Nil(t, img.BinaryHeader)
	assert.Nil(t, img.BinaryPrefix)

	arr, ok := Samples[uint8](img.Data)
	require.True(t, ok)
	assert.Equal(t, [3]int{1, 2, 3}, arr.Shape)
	assert.Equal(t, []uint8{10, 20, 30, 40, 50, 60}, arr.Data)
	assert.Equal(t, uint8(60), arr.At(0, 1, 2))

	b, l, s := img.Dims()
	assert.Equal(t, []int{1, 2, 3}, []int{b, l, s})
	assert.Equal(t, format.Uint8, img.Data.Element())
}

func pixel16(b, l, s int) int16 { return int16(100*b+10*l+s) - 50 }

func TestDecode_BILToBSQ(t *testing.T) {
	const nb, nl, ns = 2, 2, 3
	var recs []byte
	// disk order: line, band, sample
	for l := 0; l < nl; l++ {
		for b := 0; b < nb; b++ {
			for s := 0; s < ns; s++ {
				recs = append(recs, be16(pixel16(b, l, s))...)
			}
		}
	}
	data := vicarFile(t, 256,
		"FORMAT='HALF' TYPE='IMAGE' ORG='BIL' NL=2 NS=3 NB=2 RECSIZE=6 INTFMT='HIGH' REALFMT='IEEE'",
		recs)

	img, err := ReadBuffer(data, "bil")
	require.NoError(t, err)

	assert.Equal(t, format.BIL, img.Layout.Org)
	assert.Equal(t, 3, img.Layout.N1)
	assert.Equal(t, 2, img.Layout.N2)
	assert.Equal(t, 2, img.Layout.N3)

	arr, ok := Samples[int16](img.Data)
	require.True(t, ok)
	require.Equal(t, [3]int{nb, nl, ns}, arr.Shape)
	for b := 0; b < nb; b++ {
		for l := 0; l < nl; l++ {
			for s := 0; s < ns; s++ {
				assert.Equal(t, pixel16(b, l, s), arr.At(b, l, s), "b=%d l=%d s=%d", b, l, s)
			}
		}
	}
}

func TestDecode_BIPToBSQ(t *testing.T) {
	const nb, nl, ns = 3, 2, 2
	var recs []byte
	// disk order: line, sample, band
	for l := 0; l < nl; l++ {
		for s := 0; s < ns; s++ {
			for b := 0; b < nb; b++ {
				recs = append(recs, byte(100*b+10*l+s))
			}
		}
	}
	data := vicarFile(t, 256, "FORMAT='BYTE' ORG='BIP' NL=2 NS=2 NB=3 RECSIZE=3", recs)

	img, err := ReadBuffer(data, "bip")
	require.NoError(t, err)

	arr, ok := Samples[uint8](img.Data)
	require.True(t, ok)
	require.Equal(t, [3]int{nb, nl, ns}, arr.Shape)
	for b := 0; b < nb; b++ {
		for l := 0; l < nl; l++ {
			for s := 0; s < ns; s++ {
				assert.Equal(t, uint8(100*b+10*l+s), arr.At(b, l, s))
			}
		}
	}
}

func TestDecode_PrefixHeaderAndEOL(t *testing.T) {
	header := []byte("HDR=7 X=1 ")
	recs := concat(
		[]byte{0x0A, 0x0B}, leFloat32(1.5), leFloat32(-2),
		[]byte{0x0C, 0x0D}, leFloat32(3.25), leFloat32(4),
	)
	eol := labelBlock(t, 64, "PROPERTY='EOLPROP' FOO=1")
	data := vicarFile(t, 256,
		"FORMAT='REAL' TYPE='IMAGE' ORG='BSQ' NL=2 NS=2 NB=1 NBB=2 NLB=1 RECSIZE=10 EOL=1 INTFMT='LOW' REALFMT='RIEEE'",
		header, recs, eol)

	img, err := ReadBuffer(data, "prefixed")
	require.NoError(t, err)

	assert.Equal(t, header, img.BinaryHeader)
	hdr := img.BinaryHeaderLabels()
	require.NotNil(t, hdr)
	v, _ := hdr.Int("HDR")
	assert.Equal(t, int64(7), v)

	require.Len(t, img.BinaryPrefix, 1)
	assert.Equal(t, [][]byte{{0x0A, 0x0B}, {0x0C, 0x0D}}, img.BinaryPrefix[0])

	arr, ok := Samples[float32](img.Data)
	require.True(t, ok)
	assert.Equal(t, []float32{1.5, -2, 3.25, 4}, arr.Data)

	require.True(t, img.Labels.HasEOL())
	require.NotNil(t, img.EOLLabels)
	foo, ok := img.EOLLabels.Properties["EOLPROP"].Int("FOO")
	require.True(t, ok)
	assert.Equal(t, int64(1), foo)
	assert.Equal(t, int64(256+10+20), img.Layout.EOLOffset())

	// EOL labels are not defaulted
	_, filled := img.EOLLabels.System[NBB]
	assert.False(t, filled)
}

func TestDecode_NumberFormats(t *testing.T) {
	tests := []struct {
		name   string
		labels string
		body   []byte
		elem   format.Element
		want   float64
	}{
		{"half-high", "FORMAT='HALF' INTFMT='HIGH' RECSIZE=2", be16(-2), format.Int16, -2},
		{"full-low", "FORMAT='FULL' INTFMT='LOW' RECSIZE=4", le32(-70000), format.Int32, -70000},
		{"long-high", "FORMAT='LONG' INTFMT='HIGH' RECSIZE=4", be32(123456), format.Int32, 123456},
		{"word-default-low", "FORMAT='WORD' RECSIZE=2", []byte{0x01, 0x02}, format.Int16, 0x0201},
		{"real-ieee", "FORMAT='REAL' REALFMT='IEEE' RECSIZE=4", beFloat32(0.5), format.Float32, 0.5},
		{"doub-ieee", "FORMAT='DOUB' REALFMT='IEEE' RECSIZE=8", beFloat64(-1.25e10), format.Float64, -1.25e10},
		{"comp-ieee", "FORMAT='COMP' REALFMT='IEEE' RECSIZE=8", concat(beFloat32(1.5), beFloat32(-2)), format.Complex64, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := vicarFile(t, 128, "NL=1 NS=1 NB=1 "+tt.labels, tt.body)
			img, err := ReadBuffer(data, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.elem, img.Data.Element())
			assert.Equal(t, tt.want, img.Data.Float64At(0, 0, 0))
		})
	}

	data := vicarFile(t, 128, "NL=1 NS=1 NB=1 FORMAT='COMPLEX' REALFMT='RIEEE' RECSIZE=8",
		concat(leFloat32(1.5), leFloat32(-2)))
	img, err := ReadBuffer(data, "complex")
	require.NoError(t, err)
	arr, ok := Samples[complex64](img.Data)
	require.True(t, ok)
	assert.Equal(t, complex64(complex(1.5, -2)), arr.At(0, 0, 0))
}

func TestDecode_VAXRejected(t *testing.T) {
	for _, labels := range []string{
		"FORMAT='REAL' REALFMT='VAX' RECSIZE=4",
		"FORMAT='DOUB' REALFMT='VAX' RECSIZE=8",
		"FORMAT='REAL' RECSIZE=4", // absent REALFMT means VAX
	} {
		data := vicarFile(t, 128, "NL=1 NS=1 NB=1 "+labels, make([]byte, 8))
		_, err := ReadBuffer(data, "vax")
		require.Error(t, err, labels)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.True(t, IsUnsupported(err))
	}

	// byte data ignores the real format entirely
	data := vicarFile(t, 128, "NL=1 NS=1 NB=1 FORMAT='BYTE' REALFMT='VAX' RECSIZE=1", []byte{9})
	_, err := ReadBuffer(data, "byte")
	assert.NoError(t, err)
}

func TestDecode_Truncated(t *testing.T) {
	data := vicarFile(t, 128, "FORMAT='BYTE' NL=2 NS=3 NB=1 RECSIZE=3", []byte{1, 2, 3, 4})
	_, err := ReadBuffer(data, "short")
	assert.ErrorIs(t, err, ErrTruncated)

	data = vicarFile(t, 128, "FORMAT='BYTE' NL=1 NS=1 NB=1 NLB=2 RECSIZE=1", []byte{1})
	_, err = ReadBuffer(data, "short header")
	assert.ErrorIs(t, err, ErrTruncated)

	// EOL flagged but nothing after the image
	data = vicarFile(t, 128, "FORMAT='BYTE' NL=1 NS=1 NB=1 EOL=1 RECSIZE=1", []byte{1})
	_, err = ReadBuffer(data, "no eol")
	assert.ErrorIs(t, err, ErrNoLabelSize)
}

func TestDecode_OversizedDimensions(t *testing.T) {
	// dimensions far beyond the data must fail before any pixel allocation
	data := vicarFile(t, 256, "FORMAT='BYTE' NL=2000000 NS=2000000 NB=2000 RECSIZE=2000000", []byte{1, 2, 3})
	_, err := ReadBuffer(data, "huge")
	assert.ErrorIs(t, err, ErrTruncated)

	// same check through a reader that cannot report its size
	path := filepath.Join(t.TempDir(), "huge.vic")
	require.NoError(t, os.WriteFile(path, data, 0644))
	_, err = ReadFile(path)
	assert.ErrorIs(t, err, ErrTruncated)

	for name, text := range map[string]string{
		"N1 times width":  "FORMAT='HALF' NL=1 NB=1 NS=4611686018427387904 RECSIZE=4",
		"record count":    "FORMAT='BYTE' NS=1 NL=4294967296 NB=4294967296 RECSIZE=1",
		"record extent":   "FORMAT='BYTE' NS=1 NL=2147483648 NB=2147483648 RECSIZE=4",
		"prefix overflow": "FORMAT='BYTE' NS=2 NL=1 NB=1 NBB=9223372036854775807 RECSIZE=4",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadBuffer(vicarFile(t, 256, text, []byte{1, 2, 3, 4}), name)
			assert.ErrorIs(t, err, ErrInvalidLayout)
		})
	}
}

// sizelessReader hides Size so reads fall back to probing with ReadAt
type sizelessReader struct {
	io.ReaderAt
}

func TestReadLabelBlock_OversizedLabel(t *testing.T) {
	raw := []byte("LBLSIZE=9999999999999999 FORMAT='BYTE'")
	_, err := ReadLabelBlock(bytes.NewReader(raw), 0)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = ReadLabelBlock(sizelessReader{bytes.NewReader(raw)}, 0)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Decode(sizelessReader{bytes.NewReader(vicarFile(t, 128, "FORMAT='BYTE' NL=2 NS=3 NB=1 RECSIZE=3", []byte{1, 2}))}, "short")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_ClosedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.vic")
	require.NoError(t, os.WriteFile(path, vicarFile(t, 128, "FORMAT='BYTE' NL=1 NS=2 NB=1 RECSIZE=2", []byte{1, 2}), 0644))

	img, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, img.Name)

	f, err := os.Open(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = Decode(f, path)
	assert.Error(t, err)
}

func TestReadFileLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.vic")
	require.NoError(t, os.WriteFile(path, vicarFile(t, 128, "FORMAT='BYTE' ORG='BIP' NL=4 NS=5 NB=3"), 0644))

	l, err := ReadFileLabels(path)
	require.NoError(t, err)
	n1, _ := l.System.Int(N1)
	assert.Equal(t, 3, n1)

	_, err = ReadFileLabels(filepath.Join(t.TempDir(), "missing.vic"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	parse := func(text string) *Labels {
		l, err := ParseLabels(text)
		require.NoError(t, err)
		FillDefaults(l.System)
		return l
	}

	c, err := Resolve(parse("LBLSIZE=100 FORMAT='HALF' INTFMT='HIGH' NL=3 NS=4 NB=2 NBB=6 NLB=1 RECSIZE=14"))
	require.NoError(t, err)
	assert.Equal(t, format.Int16, c.Element)
	assert.Equal(t, 2, c.Width)
	assert.Equal(t, 6, c.Records())
	assert.Equal(t, int64(114), c.PixelOffset())
	assert.Equal(t, int64(114+6*14), c.EOLOffset())

	_, err = Resolve(parse("LBLSIZE=100 NL=1 NS=1 NB=1 RECSIZE=1"))
	assert.ErrorIs(t, err, ErrMissingKey)
	var le *LabelError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, FORMAT, le.Key)

	_, err = Resolve(parse("LBLSIZE=100 FORMAT='QUAD' NL=1 NS=1 NB=1 RECSIZE=1"))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Resolve(parse("LBLSIZE=100 FORMAT='BYTE' NL=1 NS=1 NB=1"))
	require.ErrorAs(t, err, &le)
	assert.Equal(t, RECSIZE, le.Key)

	_, err = Resolve(parse("LBLSIZE=100 FORMAT='BYTE' NL=1 NS=8 NB=1 RECSIZE=4"))
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = Resolve(parse("LBLSIZE=100 FORMAT='BYTE' ORG='BSX' NL=1 NS=1 NB=1 RECSIZE=1"))
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ORG, le.Key)
}

func TestConstraints_Dims(t *testing.T) {
	c := Constraints{N1: 5, N2: 4, N3: 3}
	for org, want := range map[format.Org][3]int{
		format.BSQ: {3, 4, 5},
		format.BIL: {4, 3, 5},
		format.BIP: {5, 3, 4},
	} {
		c.Org = org
		b, l, s := c.Dims()
		assert.Equal(t, want, [3]int{b, l, s}, org)
	}
}

func TestBinaryHeaderLabels_NotText(t *testing.T) {
	img := &Image{BinaryHeader: []byte{0xff, 0xfe, 0x00, 0x01}}
	assert.Nil(t, img.BinaryHeaderLabels())

	img = &Image{BinaryHeader: []byte{0x00, 0x00}}
	assert.Nil(t, img.BinaryHeaderLabels())

	img = &Image{}
	assert.Nil(t, img.BinaryHeaderLabels())
}

func TestValidateLabels(t *testing.T) {
	data := vicarFile(t, 128, "FORMAT='BYTE' NL=2 NS=3 NB=1 RECSIZE=3")
	l, err := ReadLabels(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, ValidateLabels(l))

	data = vicarFile(t, 128, "FORMAT='BYTE' TYPE='MOVIE' NL=2 NS=3 NB=1 N1=4 RECSIZE=4 HOST='AMIGA'")
	l, err = ReadLabels(bytes.NewReader(data))
	require.NoError(t, err)
	errs := ValidateLabels(l)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrInvalidValue)
	assert.ErrorIs(t, errs[1], ErrInvalidLayout)

	data = vicarFile(t, 128, "NL=2 NS=3 NB=1 RECSIZE=3")
	l, err = ReadLabels(bytes.NewReader(data))
	require.NoError(t, err)
	errs = ValidateLabels(l)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMissingKey)
}

func TestBandStats(t *testing.T) {
	var body []byte
	for i := 0; i < 100; i++ {
		body = append(body, byte(i))
	}
	data := vicarFile(t, 128, "FORMAT='BYTE' NL=10 NS=10 NB=1 RECSIZE=10", body)
	img, err := ReadBuffer(data, "ramp")
	require.NoError(t, err)

	st, err := BandStats(img.Data, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, st.Count)
	assert.Equal(t, 0.0, st.Min)
	assert.Equal(t, 99.0, st.Max)
	assert.InDelta(t, 49.5, st.Mean, 1e-9)
	assert.Greater(t, st.StdDev, 0.0)
	assert.LessOrEqual(t, st.P01, 1.0)
	assert.GreaterOrEqual(t, st.P99, 98.0)

	_, err = BandStats(img.Data, 1)
	assert.Error(t, err)

	band, err := img.Band(0)
	require.NoError(t, err)
	assert.Len(t, band, 100)
	assert.Equal(t, 42.0, band[42])
}
