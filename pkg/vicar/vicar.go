// Package vicar reads VICAR planetary image files.
//
// A VICAR file is an ASCII label block whose length is given by its own
// LBLSIZE label, an optional binary header of NLB records, N2*N3 image
// records of RECSIZE bytes (each starting with NBB bytes of binary prefix)
// and, when EOL=1, a second label block after the image records.
//
// Basic usage:
//
//	img, err := vicar.ReadFile("/path/to/N1234.IMG")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Pixels are always BSQ: (band, line, sample)
//	bands, lines, samples := img.Dims()
//
//	// Mission metadata lives in PROPERTY sections
//	target := vicar.TargetName(img.Labels)
//
// Only reading is supported. VAX floating point is rejected.
package vicar

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFile decodes the VICAR file at path
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return Decode(f, path)
}

// ReadBuffer decodes a VICAR file held in memory
func ReadBuffer(data []byte, name string) (*Image, error) {
	return Decode(bytes.NewReader(data), name)
}

// ReadFileLabels reads only the beginning-of-file labels at path
func ReadFileLabels(path string) (*Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadLabels(f)
}

// GetExtension returns the customary VICAR file extension
func GetExtension() string {
	return ".vic"
}
