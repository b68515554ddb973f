package vicar

import (
	"errors"
	"fmt"

	"github.com/jpfielding/vicar.go/pkg/vicar/format"
)

// Common errors
var (
	ErrNoLabelSize       = errors.New("missing or unparseable LBLSIZE= marker")
	ErrMissingKey        = errors.New("missing mandatory system label")
	ErrInvalidValue      = errors.New("invalid system label value")
	ErrUnsupportedFormat = format.ErrUnsupported
	ErrInvalidLayout     = errors.New("inconsistent record layout")
	ErrTruncated         = errors.New("file is truncated")
)

// LabelError ties a failure to the system label that caused it
type LabelError struct {
	Key Key
	Err error
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *LabelError) Unwrap() error { return e.Err }
