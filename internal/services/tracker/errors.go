package tracker

import (
	"fmt"
	"strings"
)

// TransportError indicates the HTTP request itself failed or the
// tracker answered with a non-success status.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tracker request failed: status %d", e.Status)
}

// GraphQLError indicates the tracker accepted the request but reported
// query-level errors in the response envelope.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("tracker query failed: %s", strings.Join(e.Messages, ", "))
}

// IssueCreationError indicates the create mutation completed but the
// tracker reported the issue was not created.
type IssueCreationError struct{}

func (e *IssueCreationError) Error() string {
	return "issue creation failed"
}
