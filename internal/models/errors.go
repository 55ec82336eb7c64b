package models

import "fmt"

// InvalidInputError reports a usage precondition violation, such as a
// non-positive sample count or column count.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EmptySourceError means the data source produced nothing to collect.
type EmptySourceError struct {
	Batches int
}

func (e *EmptySourceError) Error() string {
	if e.Batches == 0 {
		return "data source yielded no batches"
	}
	return fmt.Sprintf("data source yielded %d batches but no items", e.Batches)
}

// DegenerateImageError means a sample's pixel values span a zero-width
// range, so the image cannot be rescaled for display.
type DegenerateImageError struct {
	SampleID string
	Value    float64
}

func (e *DegenerateImageError) Error() string {
	return fmt.Sprintf("sample %q has constant pixel value %g; cannot rescale for display", e.SampleID, e.Value)
}

// NewInvalidInput is shorthand for building an InvalidInputError.
func NewInvalidInput(field, format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
