package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Float is a report number that always serializes as a float, so 2592
// is written as 2592.0 and parses back as a float rather than an int.
type Float float64

// String formats f with a fractional part when it is whole
func (f Float) String() string {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// MarshalYAML emits a !!float scalar
func (f Float) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!float",
		Value: f.String(),
	}, nil
}

// MarshalJSON emits a JSON number with a fractional part. NaN and Inf are
// rejected as encoding/json does for float64.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(v)
	}
	return []byte(f.String()), nil
}
