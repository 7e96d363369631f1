package facebook

import (
	"errors"
	"fmt"
)

// Graph API error codes the sync pipelines care about.
const (
	// CodeUnsupportedOperation is returned when the request is not valid for
	// the token type, e.g. listing me/accounts with a page token.
	CodeUnsupportedOperation = 100
	// SubcodeObjectUnavailable accompanies code 100 when the object does not
	// exist or the token may not see it.
	SubcodeObjectUnavailable = 33
)

// ErrEmptyObject indicates the Graph API answered an object request with no body.
var ErrEmptyObject = errors.New("facebook: empty object response")

// GraphError is the decoded "error" envelope of a failed Graph API call.
type GraphError struct {
	// Status is the HTTP status code of the response
	Status int
	// Code and Subcode are the Graph API error_code / error_subcode
	Code    int
	Subcode int
	Type    string
	Message string
	TraceID string
}

// Error returns a string representation of the graph error.
func (e *GraphError) Error() string {
	if e.Subcode != 0 {
		return fmt.Sprintf("facebook graph error (status %d, code %d, subcode %d): %s", e.Status, e.Code, e.Subcode, e.Message)
	}
	return fmt.Sprintf("facebook graph error (status %d, code %d): %s", e.Status, e.Code, e.Message)
}

// IsUnsupportedOperation reports whether the call was rejected as unsupported
// for the credential type.
func (e *GraphError) IsUnsupportedOperation() bool {
	return e != nil && e.Code == CodeUnsupportedOperation
}

// IsObjectUnavailable reports whether the object is missing or hidden from the token.
func (e *GraphError) IsObjectUnavailable() bool {
	return e != nil && e.Code == CodeUnsupportedOperation && e.Subcode == SubcodeObjectUnavailable
}

// AsGraphError unwraps err to a *GraphError when possible.
func AsGraphError(err error) (*GraphError, bool) {
	var gerr *GraphError
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}
