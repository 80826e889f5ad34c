package carmine

import "fmt"

// Error is the structured error type carried across package boundaries
// that don't already define a more specific one (arg.Error, sentinel.Error):
// a machine-readable Kind, an optional structured Data payload, and an
// optional wrapped Cause, mirroring the teacher's JsonError pattern from
// json.go.
type Error struct {
	Kind  string
	Data  map[string]interface{}
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("carmine: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("carmine: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }
