package vicar

import (
	"fmt"
	"strings"

	"github.com/jpfielding/vicar.go/pkg/vicar/label"
)

// Labels is a parsed label block: the system labels plus the PROPERTY and
// TASK sub-objects. Treat it as read-only once returned.
type Labels struct {
	System     System               `json:"system"`
	Properties map[string]ObjectMap `json:"properties"`
	Tasks      map[string]ObjectMap `json:"tasks"`
}

// ObjectMap holds the raw labels of one PROPERTY or TASK section
type ObjectMap map[string]label.Value

// String returns k as a string, whatever its kind
func (m ObjectMap) String(k string) (string, bool) {
	v, ok := m[k]
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Int returns k as an integer
func (m ObjectMap) Int(k string) (int64, bool) {
	v, ok := m[k]
	if !ok {
		return 0, false
	}
	return v.Int64()
}

// Float returns k as a float
func (m ObjectMap) Float(k string) (float64, bool) {
	v, ok := m[k]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Strings returns k as a list of strings
func (m ObjectMap) Strings(k string) ([]string, bool) {
	v, ok := m[k]
	if !ok {
		return nil, false
	}
	return v.Strings(), true
}

// Property returns the PROPERTY section with the given name
func (l *Labels) Property(name string) (ObjectMap, bool) {
	m, ok := l.Properties[name]
	return m, ok
}

// Task returns the TASK section with the given name
func (l *Labels) Task(name string) (ObjectMap, bool) {
	m, ok := l.Tasks[name]
	return m, ok
}

// HasEOL reports whether the file carries a second label block after the
// image data
func (l *Labels) HasEOL() bool {
	v, ok := l.System.Int(EOL)
	return ok && v != 0
}

type section struct {
	kind   string
	name   string
	values ObjectMap
}

// ParseLabels parses label text into Labels. Sub-object boundaries come from
// document order: every pair after PROPERTY= or TASK= belongs to that
// section until the next one. Defaults are not filled.
func ParseLabels(text string) (*Labels, error) {
	pairs, err := label.Tokenize(text)
	if err != nil {
		return nil, err
	}
	l := &Labels{
		System:     System{},
		Properties: map[string]ObjectMap{},
		Tasks:      map[string]ObjectMap{},
	}

	var open *section
	closeSection := func() {
		if open == nil {
			return
		}
		dst := l.Properties
		if open.kind == taskKey {
			dst = l.Tasks
		}
		dst[uniqueName(dst, open.name)] = open.values
		open = nil
	}

	for _, p := range pairs {
		v, err := p.Value()
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", p.Key, err)
		}
		switch {
		case p.Key == propertyKey || p.Key == taskKey:
			closeSection()
			open = &section{kind: p.Key, name: v.String(), values: ObjectMap{}}
		case open != nil:
			open.values[p.Key] = v
		default:
			k, sv := Classify(p.Key, v)
			l.System[k] = sv
		}
	}
	closeSection()
	return l, nil
}

// uniqueName appends _1, _2, ... to name until it is unused in m
func uniqueName(m map[string]ObjectMap, name string) string {
	if _, taken := m[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, taken := m[candidate]; !taken {
			return candidate
		}
	}
}

// String renders the labels as KEY=VALUE lines grouped by section
func (l *Labels) String() string {
	var sb strings.Builder
	for _, k := range sortedKeys(l.System) {
		fmt.Fprintf(&sb, "%s=%s\n", k, l.System[Key(k)])
	}
	for _, group := range []struct {
		kind     string
		sections map[string]ObjectMap
	}{{propertyKey, l.Properties}, {taskKey, l.Tasks}} {
		for _, name := range sortedKeys(group.sections) {
			fmt.Fprintf(&sb, "%s=%s\n", group.kind, name)
			obj := group.sections[name]
			for _, k := range sortedKeys(obj) {
				fmt.Fprintf(&sb, "  %s=%s\n", k, obj[k])
			}
		}
	}
	return sb.String()
}
