package vicar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const labelMarker = "LBLSIZE="

// maxSizeDigits bounds the digit run read after the marker
const maxSizeDigits = 16

// LabelSize reads the LBLSIZE= marker at offset and returns the length in
// bytes of the label block that starts there
func LabelSize(r io.ReaderAt, offset int64) (int, error) {
	buf := make([]byte, len(labelMarker)+maxSizeDigits)
	n, err := r.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("reading label marker: %w", err)
	}
	buf = buf[:n]
	if !bytes.HasPrefix(buf, []byte(labelMarker)) {
		return 0, fmt.Errorf("%w at offset %d", ErrNoLabelSize, offset)
	}
	digits := buf[len(labelMarker):]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%w at offset %d: no digits", ErrNoLabelSize, offset)
	}
	size, err := strconv.Atoi(string(digits[:end]))
	if err != nil || size < len(labelMarker) {
		return 0, fmt.Errorf("%w at offset %d: %q", ErrNoLabelSize, offset, digits[:end])
	}
	return size, nil
}

// ReadLabelBlock reads and parses the self-sized label block at offset.
// Defaults are not filled.
func ReadLabelBlock(r io.ReaderAt, offset int64) (*Labels, error) {
	size, err := LabelSize(r, offset)
	if err != nil {
		return nil, err
	}
	what := fmt.Sprintf("label block of %d bytes at offset %d", size, offset)
	if err := checkExtent(r, offset+int64(size), what); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(r, offset, int64(size)), buf); err != nil {
		return nil, readErr(err, what)
	}
	labels, err := ParseLabels(string(buf))
	if err != nil {
		return nil, fmt.Errorf("parsing label block at offset %d: %w", offset, err)
	}
	return labels, nil
}

type sizer interface {
	Size() int64
}

// checkExtent confirms r holds at least end bytes so that regions sized from
// label values are never allocated past the end of the data
func checkExtent(r io.ReaderAt, end int64, what string) error {
	if end <= 0 {
		return nil
	}
	if sz, ok := r.(sizer); ok {
		if sz.Size() < end {
			return fmt.Errorf("%w: %s ends at %d, data is %d bytes", ErrTruncated, what, end, sz.Size())
		}
		return nil
	}
	var one [1]byte
	if _, err := r.ReadAt(one[:], end-1); err != nil {
		return readErr(err, what)
	}
	return nil
}

// ReadLabels reads the beginning-of-file labels and fills system defaults
func ReadLabels(r io.ReaderAt) (*Labels, error) {
	labels, err := ReadLabelBlock(r, 0)
	if err != nil {
		return nil, err
	}
	FillDefaults(labels.System)
	return labels, nil
}

// ReadEOLLabels reads the end-of-file label block that follows the image
// data described by c
func ReadEOLLabels(r io.ReaderAt, c Constraints) (*Labels, error) {
	labels, err := ReadLabelBlock(r, c.EOLOffset())
	if err != nil {
		return nil, fmt.Errorf("EOL labels: %w", err)
	}
	return labels, nil
}
