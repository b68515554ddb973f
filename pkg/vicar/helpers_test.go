package vicar

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// labelBlock builds a label block of exactly lblsize bytes, space padded
func labelBlock(t *testing.T, lblsize int, text string) []byte {
	t.Helper()
	block := fmt.Sprintf("LBLSIZE=%d  %s", lblsize, text)
	require.LessOrEqual(t, len(block), lblsize, "label text does not fit LBLSIZE")
	return []byte(block + strings.Repeat(" ", lblsize-len(block)))
}

// vicarFile builds a label block followed by the given byte runs
func vicarFile(t *testing.T, lblsize int, text string, data ...[]byte) []byte {
	t.Helper()
	buf := labelBlock(t, lblsize, text)
	for _, d := range data {
		buf = append(buf, d...)
	}
	return buf
}

func be16(v int16) []byte { return binary.BigEndian.AppendUint16(nil, uint16(v)) }
func le32(v int32) []byte { return binary.LittleEndian.AppendUint32(nil, uint32(v)) }
func be32(v int32) []byte { return binary.BigEndian.AppendUint32(nil, uint32(v)) }

func leFloat32(v float32) []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))
}

func beFloat32(v float32) []byte {
	return binary.BigEndian.AppendUint32(nil, math.Float32bits(v))
}

func beFloat64(v float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
