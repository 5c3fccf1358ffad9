// Package rubric provides read-only access to the (JD, resume, rubric)
// sample dataset and competency selection.
package rubric

import "fmt"

// DatasetNotFoundError indicates the sample dataset file does not exist.
type DatasetNotFoundError struct {
	Path  string
	Cause error
}

func (e *DatasetNotFoundError) Error() string {
	return fmt.Sprintf("sample dataset not found: %s", e.Path)
}

func (e *DatasetNotFoundError) Unwrap() error {
	return e.Cause
}

// IndexOutOfRangeError indicates the requested sample index exceeds the
// dataset line count. The message reports the valid range so callers can
// correct the request.
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("sample index %d out of range: file has %d sample(s), valid indices: 0 to %d",
		e.Index, e.Count, e.Count-1)
}

// CompetencyNotFoundError indicates a requested competency name is absent
// from the rubric.
type CompetencyNotFoundError struct {
	Name string
}

func (e *CompetencyNotFoundError) Error() string {
	return fmt.Sprintf("competency %q not found in rubric", e.Name)
}

// EmptyRubricError indicates the sample's rubric has no competencies.
type EmptyRubricError struct{}

func (e *EmptyRubricError) Error() string {
	return "no competencies found in the rubric"
}

// MalformedSampleError indicates a dataset line could not be decoded.
type MalformedSampleError struct {
	Index int
	Cause error
}

func (e *MalformedSampleError) Error() string {
	return fmt.Sprintf("malformed sample at index %d: %v", e.Index, e.Cause)
}

func (e *MalformedSampleError) Unwrap() error {
	return e.Cause
}
