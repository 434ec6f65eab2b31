package board

import "fmt"

// ValidationError reports a draft field rejected before any network
// call was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
