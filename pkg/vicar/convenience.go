package vicar

import "strings"

// Well-known PROPERTY sections
const (
	IdentificationProperty = "IDENTIFICATION"
	InstrumentProperty     = "INSTRUMENT"
)

func propertyString(l *Labels, property, key string) (string, bool) {
	m, ok := l.Property(property)
	if !ok {
		return "", false
	}
	s, ok := m.String(key)
	return strings.TrimSpace(s), ok
}

// TargetName returns IDENTIFICATION.TARGET_NAME or ""
func TargetName(l *Labels) string {
	s, _ := propertyString(l, IdentificationProperty, "TARGET_NAME")
	return s
}

// ImageTime returns IDENTIFICATION.IMAGE_TIME, falling back to
// IMAGE_MID_TIME, or ""
func ImageTime(l *Labels) string {
	if s, ok := propertyString(l, IdentificationProperty, "IMAGE_TIME"); ok {
		return s
	}
	s, _ := propertyString(l, IdentificationProperty, "IMAGE_MID_TIME")
	return s
}

// InstrumentID returns IDENTIFICATION.INSTRUMENT_ID, falling back to the
// INSTRUMENT section, or ""
func InstrumentID(l *Labels) string {
	if s, ok := propertyString(l, IdentificationProperty, "INSTRUMENT_ID"); ok {
		return s
	}
	s, _ := propertyString(l, InstrumentProperty, "INSTRUMENT_ID")
	return s
}

// FilterNames returns INSTRUMENT.FILTER_NAME as a list
func FilterNames(l *Labels) []string {
	m, ok := l.Property(InstrumentProperty)
	if !ok {
		return nil
	}
	names, _ := m.Strings("FILTER_NAME")
	return names
}

// ExposureDuration returns INSTRUMENT.EXPOSURE_DURATION
func ExposureDuration(l *Labels) (float64, bool) {
	m, ok := l.Property(InstrumentProperty)
	if !ok {
		return 0, false
	}
	return m.Float("EXPOSURE_DURATION")
}

// GetLabelSize returns LBLSIZE
func GetLabelSize(l *Labels) int {
	v, _ := l.System.Int(LBLSIZE)
	return v
}

// GetLines returns NL
func GetLines(l *Labels) int {
	v, _ := l.System.Int(NL)
	return v
}

// GetSamples returns NS
func GetSamples(l *Labels) int {
	v, _ := l.System.Int(NS)
	return v
}

// GetBands returns NB
func GetBands(l *Labels) int {
	v, _ := l.System.Int(NB)
	return v
}
