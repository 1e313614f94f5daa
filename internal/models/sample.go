package models

import "fmt"

// SampleState tells a present value apart from an absent one and from a
// lookup that failed.
type SampleState int

const (
	SampleAbsent SampleState = iota
	SamplePresent
	SampleFailed
)

func (s SampleState) String() string {
	switch s {
	case SamplePresent:
		return "present"
	case SampleAbsent:
		return "absent"
	case SampleFailed:
		return "failed"
	default:
		return fmt.Sprintf("SampleState(%d)", int(s))
	}
}

// Sample is an optional scalar read from an external system
type Sample struct {
	State SampleState
	Value string
	Err   error
}

// Present wraps a value
func Present(value string) Sample {
	return Sample{State: SamplePresent, Value: value}
}

// Absent marks a lookup that succeeded but returned nothing
func Absent() Sample {
	return Sample{State: SampleAbsent}
}

// Failed marks a lookup that could not complete
func Failed(err error) Sample {
	return Sample{State: SampleFailed, Err: err}
}

// Ptr renders the sample for the report: absent and failed both become nil.
func (s Sample) Ptr() *string {
	if s.State != SamplePresent {
		return nil
	}
	v := s.Value
	return &v
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
