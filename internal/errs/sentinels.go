// Package errs contains sentinel and typed errors shared by the client layers.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common sentinels across gateway/service layers.
var (
	// ErrUnauthorized indicates the backend rejected the bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired indicates the local session was terminated because the token is stale.
	ErrSessionExpired = errors.New("session expired")

	// ErrBusy indicates an identical mutating intent is already in flight; the new one was dropped.
	ErrBusy = errors.New("operation already in progress")

	// ErrSuperseded indicates a read was replaced by a newer one and its result discarded.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrDeclined indicates the user declined a confirmation prompt.
	ErrDeclined = errors.New("declined by user")

	// ErrRateLimited indicates a temporary local login lock after repeated failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoToken indicates no token is stored.
	ErrNoToken = errors.New("no token (login required)")

	// ErrClosed indicates the coordinator was shut down.
	ErrClosed = errors.New("coordinator closed")

	// ErrInternal indicates an effect panicked; details are only logged.
	ErrInternal = errors.New("internal error")
)

// ValidationError carries field-level messages produced before any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns e when at least one field failed, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// APIError is a failed envelope surfaced to callers.
type APIError struct {
	Status  int // HTTP status, 0 for transport failures
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}
