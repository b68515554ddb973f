// Package label tokenizes VICAR label text and classifies label values.
//
// It knows nothing about VICAR system keys; see package vicar for that.
package label

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the primitive type held by a Value
type Kind int

const (
	Int Kind = iota
	Real
	String
	Array
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single parsed label value
type Value struct {
	Kind  Kind
	Int   int64
	Real  float64
	Str   string
	Array []Value

	// Quoted is set when the string came from a '...' literal
	Quoted bool
}

// IntValue creates an integer Value
func IntValue(i int64) Value { return Value{Kind: Int, Int: i} }

// RealValue creates a real Value
func RealValue(f float64) Value { return Value{Kind: Real, Real: f} }

// StringValue creates an unquoted string Value
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// ArrayValue creates an array Value
func ArrayValue(vs ...Value) Value { return Value{Kind: Array, Array: vs} }

var (
	intPattern  = regexp.MustCompile(`^\d+$`)
	realPattern = regexp.MustCompile(`^[+-]?\d+\.\d*([EeDd][+-]?\d+)?$`)
)

// ParseValue classifies raw value text. Precedence: integer, real,
// parenthesized array, quoted string, bare string.
func ParseValue(raw string) (Value, error) {
	if v, ok := parseNumber(raw); ok {
		return v, nil
	}
	switch {
	case strings.HasPrefix(raw, "("):
		return parseArray(raw)
	case strings.HasPrefix(raw, "'"):
		s, err := unquote(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: String, Str: s, Quoted: true}, nil
	}
	return StringValue(raw), nil
}

func parseNumber(raw string) (Value, bool) {
	if intPattern.MatchString(raw) {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return IntValue(i), true
		}
		// too wide for int64, keep the magnitude as a real
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return RealValue(f), true
		}
	}
	if realPattern.MatchString(raw) {
		norm := strings.NewReplacer("D", "E", "d", "e").Replace(raw)
		if f, err := strconv.ParseFloat(norm, 64); err == nil {
			return RealValue(f), true
		}
	}
	return Value{}, false
}

func parseArray(raw string) (Value, error) {
	if !strings.HasSuffix(raw, ")") {
		return Value{}, fmt.Errorf("%w: %q", ErrUnbalancedParens, raw)
	}
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return ArrayValue(), nil
	}
	parts, err := splitElements(inner)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := parseElement(p)
		if err != nil {
			return Value{}, err
		}
		out = append(out, v)
	}
	return ArrayValue(out...), nil
}

// parseElement classifies an array member; nested arrays are not a thing.
func parseElement(raw string) (Value, error) {
	if v, ok := parseNumber(raw); ok {
		return v, nil
	}
	if strings.HasPrefix(raw, "'") {
		s, err := unquote(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: String, Str: s, Quoted: true}, nil
	}
	return StringValue(raw), nil
}

// splitElements splits on commas outside of quotes
func splitElements(s string) ([]string, error) {
	var parts []string
	start, inQuote := 0, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: %q", ErrUnterminatedString, s)
	}
	return append(parts, s[start:]), nil
}

func unquote(raw string) (string, error) {
	if len(raw) < 2 || !strings.HasSuffix(raw, "'") {
		return "", fmt.Errorf("%w: %q", ErrUnterminatedString, raw)
	}
	return strings.ReplaceAll(raw[1:len(raw)-1], "''", "'"), nil
}

// Int64 returns the integer value, accepting integral reals
func (v Value) Int64() (int64, bool) {
	switch v.Kind {
	case Int:
		return v.Int, true
	case Real:
		if v.Real == float64(int64(v.Real)) {
			return int64(v.Real), true
		}
	}
	return 0, false
}

// Float returns the numeric value as a float64
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case Int:
		return float64(v.Int), true
	case Real:
		return v.Real, true
	}
	return 0, false
}

// Strings returns the value as a list of strings. Scalars become a single
// element list.
func (v Value) Strings() []string {
	if v.Kind != Array {
		return []string{v.String()}
	}
	out := make([]string, len(v.Array))
	for i, e := range v.Array {
		out[i] = e.String()
	}
	return out
}

func (v Value) String() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Real:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case Array:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = e.literal()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return v.Str
	}
}

// literal renders the value the way it would appear in a label
func (v Value) literal() string {
	if v.Kind == String && v.Quoted {
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'"
	}
	return v.String()
}

// MarshalJSON encodes the value as its natural JSON type
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Int:
		return json.Marshal(v.Int)
	case Real:
		return json.Marshal(v.Real)
	case Array:
		if v.Array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Array)
	default:
		return json.Marshal(v.Str)
	}
}
