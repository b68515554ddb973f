package vicar

import (
	"errors"
	"fmt"
)

// ValidateLabels performs a structural check of defaulted labels.
//
// Checks:
//   - the layout resolves (mandatory keys present, supported byte order)
//   - enumerated system labels (other than HOST/BHOST) hold a member of
//     their enumeration
//   - NL, NS and NB agree with N1..N3 for the organization
//
// Returns an empty slice if valid.
func ValidateLabels(l *Labels) []error {
	var errs []error

	c, err := Resolve(l)
	var resolveKey Key
	if err != nil {
		errs = append(errs, err)
		var le *LabelError
		if errors.As(err, &le) {
			resolveKey = le.Key
		}
	}

	for _, k := range sortedKeys(l.System) {
		key := Key(k)
		// host types are informational
		if systemKeys[key] == nil || key == resolveKey || key == HOST || key == BHOST {
			continue
		}
		v := l.System[key]
		if v.Enum == nil {
			errs = append(errs, &LabelError{Key: key, Err: fmt.Errorf("%w: %q", ErrInvalidValue, v.String())})
		}
	}

	if err == nil {
		b, ln, s := c.Dims()
		for _, chk := range []struct {
			key  Key
			want int
		}{{NB, b}, {NL, ln}, {NS, s}} {
			if got, ok := l.System.Int(chk.key); ok && got != chk.want {
				errs = append(errs, &LabelError{Key: chk.key, Err: fmt.Errorf("%w: %d disagrees with N1..N3 (%d)", ErrInvalidLayout, got, chk.want)})
			}
		}
	}
	return errs
}

// IsUnsupported reports whether err stems from a format the decoder does
// not handle, such as VAX reals
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}
