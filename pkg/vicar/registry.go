package vicar

import (
	"encoding/json"
	"log/slog"

	"github.com/jpfielding/vicar.go/pkg/vicar/format"
	"github.com/jpfielding/vicar.go/pkg/vicar/label"
)

// Key is a system label name. Recognized names are the constants below;
// anything else is kept verbatim (see Known).
type Key string

// System label keys
const (
	LBLSIZE  Key = "LBLSIZE"
	FORMAT   Key = "FORMAT"
	TYPE     Key = "TYPE"
	BUFSIZ   Key = "BUFSIZ"
	DIM      Key = "DIM"
	EOL      Key = "EOL"
	RECSIZE  Key = "RECSIZE"
	ORG      Key = "ORG"
	NL       Key = "NL"
	NS       Key = "NS"
	NB       Key = "NB"
	N1       Key = "N1"
	N2       Key = "N2"
	N3       Key = "N3"
	N4       Key = "N4"
	NBB      Key = "NBB"
	NLB      Key = "NLB"
	HOST     Key = "HOST"
	INTFMT   Key = "INTFMT"
	REALFMT  Key = "REALFMT"
	BHOST    Key = "BHOST"
	BINTFMT  Key = "BINTFMT"
	BREALFMT Key = "BREALFMT"
	BLTYPE   Key = "BLTYPE"
)

// labels that open a sub-object section
const (
	propertyKey = "PROPERTY"
	taskKey     = "TASK"
)

type enumParser func(string) (format.Enum, bool)

func enumOf[T format.Enum](parse func(string) (T, bool)) enumParser {
	return func(s string) (format.Enum, bool) {
		if v, ok := parse(s); ok {
			return v, true
		}
		return nil, false
	}
}

// systemKeys maps every recognized key to the enumeration its value must
// resolve to; nil means the value is a plain integer or string.
var systemKeys = map[Key]enumParser{
	LBLSIZE:  nil,
	FORMAT:   enumOf(format.ParseNumberFormat),
	TYPE:     enumOf(format.ParseDataType),
	BUFSIZ:   nil,
	DIM:      nil,
	EOL:      nil,
	RECSIZE:  nil,
	ORG:      enumOf(format.ParseOrg),
	NL:       nil,
	NS:       nil,
	NB:       nil,
	N1:       nil,
	N2:       nil,
	N3:       nil,
	N4:       nil,
	NBB:      nil,
	NLB:      nil,
	HOST:     enumOf(format.ParseHostType),
	INTFMT:   enumOf(format.ParseIntFormat),
	REALFMT:  enumOf(format.ParseRealFormat),
	BHOST:    enumOf(format.ParseHostType),
	BINTFMT:  enumOf(format.ParseIntFormat),
	BREALFMT: enumOf(format.ParseRealFormat),
	BLTYPE:   nil,
}

// fallbackEnums are tried in order for bare strings on keys without an
// enumeration of their own
var fallbackEnums = []enumParser{
	enumOf(format.ParseNumberFormat),
	enumOf(format.ParseDataType),
	enumOf(format.ParseOrg),
	enumOf(format.ParseIntFormat),
	enumOf(format.ParseRealFormat),
	enumOf(LookupKey),
}

// LookupKey returns the recognized system key named s
func LookupKey(s string) (Key, bool) {
	k := Key(s)
	if _, ok := systemKeys[k]; ok {
		return k, true
	}
	return "", false
}

// Known reports whether k is one of the recognized system keys
func (k Key) Known() bool {
	_, ok := systemKeys[k]
	return ok
}

func (k Key) String() string { return string(k) }
func (Key) Domain() string { return "SystemLabelKey" }

// SystemValue is a parsed system label value, optionally resolved to a
// member of a closed enumeration
type SystemValue struct {
	label.Value
	Enum format.Enum
}

func (v SystemValue) String() string {
	if v.Enum != nil {
		return v.Enum.String()
	}
	return v.Value.String()
}

// MarshalJSON encodes enumeration members by name
func (v SystemValue) MarshalJSON() ([]byte, error) {
	if v.Enum != nil {
		return json.Marshal(v.Enum.String())
	}
	return v.Value.MarshalJSON()
}

// Classify resolves a top-level label pair against the registry. Unknown
// keys and values that do not map to their enumeration are kept raw.
func Classify(key string, v label.Value) (Key, SystemValue) {
	k := Key(key)
	sv := SystemValue{Value: v}
	parse, known := systemKeys[k]
	if !known {
		slog.Debug("unrecognized system label", "key", key)
	}
	switch {
	case parse != nil:
		if v.Kind != label.String {
			slog.Debug("non-string value for enumerated label", "key", key, "value", v.String())
			break
		}
		if e, ok := parse(v.Str); ok {
			sv.Enum = e
		} else {
			slog.Debug("unresolved enumerated label", "key", key, "value", v.Str)
		}
	case v.Kind == label.String && !v.Quoted && v.Str != "":
		for _, p := range fallbackEnums {
			if e, ok := p(v.Str); ok {
				sv.Enum = e
				break
			}
		}
	}
	return k, sv
}

// System is the top-level system label map
type System map[Key]SystemValue

// Get returns the value stored under k
func (s System) Get(k Key) (SystemValue, bool) {
	v, ok := s[k]
	return v, ok
}

// Int returns k as an integer
func (s System) Int(k Key) (int, bool) {
	v, ok := s[k]
	if !ok {
		return 0, false
	}
	i, ok := v.Int64()
	return int(i), ok
}

func systemEnum[T format.Enum](s System, k Key) (T, bool) {
	var zero T
	v, ok := s[k]
	if !ok || v.Enum == nil {
		return zero, false
	}
	e, ok := v.Enum.(T)
	return e, ok
}

// Format returns the resolved FORMAT label
func (s System) Format() (format.NumberFormat, bool) {
	return systemEnum[format.NumberFormat](s, FORMAT)
}

// Org returns the resolved ORG label
func (s System) Org() (format.Org, bool) {
	return systemEnum[format.Org](s, ORG)
}

// Type returns the resolved TYPE label
func (s System) Type() (format.DataType, bool) {
	return systemEnum[format.DataType](s, TYPE)
}

// IntFormat returns the resolved INTFMT label
func (s System) IntFormat() (format.IntFormat, bool) {
	return systemEnum[format.IntFormat](s, INTFMT)
}

// RealFormat returns the resolved REALFMT label
func (s System) RealFormat() (format.RealFormat, bool) {
	return systemEnum[format.RealFormat](s, REALFMT)
}

// Host returns the resolved HOST label
func (s System) Host() (format.HostType, bool) {
	return systemEnum[format.HostType](s, HOST)
}

// FillDefaults completes the system map after a beginning-of-file parse.
// ORG is settled first since the N1..N3 defaults depend on it.
func FillDefaults(s System) {
	if _, ok := s[ORG]; !ok {
		s[ORG] = SystemValue{Value: label.StringValue(string(format.BSQ)), Enum: format.BSQ}
	}
	if org, ok := s.Org(); ok {
		var from [3]Key
		switch org {
		case format.BSQ:
			from = [3]Key{NS, NL, NB}
		case format.BIL:
			from = [3]Key{NS, NB, NL}
		case format.BIP:
			from = [3]Key{NB, NS, NL}
		}
		for i, k := range [3]Key{N1, N2, N3} {
			if _, ok := s[k]; ok {
				continue
			}
			if v, ok := s[from[i]]; ok {
				s[k] = SystemValue{Value: v.Value}
			}
		}
	}
	for _, k := range []Key{N4, NBB, NLB} {
		if _, ok := s[k]; !ok {
			s[k] = SystemValue{Value: label.IntValue(0)}
		}
	}
}
