package github

import (
	"fmt"

	"github.com/jonathan/license-checker/internal/types"
)

// APIError represents a failure to reach the license API for a project.
type APIError struct {
	Project types.ProjectIdentity
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("github error for %s: %s: %v", e.Project, e.Message, e.Cause)
	}
	return fmt.Sprintf("github error for %s: %s", e.Project, e.Message)
}

func (e *APIError) Unwrap() []error {
	return []error{ErrLookupFailed, e.Cause}
}
