package services

import (
	"errors"
	"strings"
)

var (
	// ErrAllEndpointsFailed means every configured backend URL has been tried for this call.
	ErrAllEndpointsFailed = errors.New("Failed to connect to any GraphQL server endpoints")

	// ErrNotFound means the backend answered but had no data for the request.
	ErrNotFound = errors.New("not found")

	// ErrCircuitOpen means the breaker for an endpoint rejected the call without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// GraphQLError carries the errors array of a GraphQL response
type GraphQLError struct {
	Operation string
	Messages  []string
}

func (e *GraphQLError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// First returns the first server message, which is what callers surface to users
func (e *GraphQLError) First() string {
	if len(e.Messages) == 0 {
		return "unknown GraphQL error"
	}
	return e.Messages[0]
}

// IsGraphQLError reports whether err carries a server-side GraphQL error payload
func IsGraphQLError(err error) bool {
	var gqlErr *GraphQLError
	return errors.As(err, &gqlErr)
}

// apiError prefixes an error with the failed action. Server payloads contribute
// only their first message.
type apiError struct {
	msg string
	err error
}

func (e *apiError) Error() string { return e.msg }
func (e *apiError) Unwrap() error { return e.err }

func wrapAPIError(action string, err error) error {
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return &apiError{msg: action + ": " + gqlErr.First(), err: err}
	}
	return &apiError{msg: action + ": " + err.Error(), err: err}
}

// transportError marks failures that should move the client to the next endpoint.
type transportError struct {
	kind string // transport, http, decode, circuit
	err  error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }
