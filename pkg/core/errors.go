package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound means the referenced note does not exist locally.
	ErrNotFound = errors.New("note not found")

	// ErrRemoteUnavailable matches every failed Remote call.
	// Network, auth and server errors are deliberately collapsed into it.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	ErrNoRemote     = errors.New("no remote configured")
	ErrNotConnected = errors.New("not connected")
	ErrSyncInFlight = errors.New("sync already in flight")
)

// RemoteError describes a failed Remote call.
// errors.Is matches both ErrRemoteUnavailable and the underlying cause.
type RemoteError struct {
	Op  string // fetch, create, update, delete, ping
	ID  string
	Err error
}

func (e *RemoteError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("remote %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemoteUnavailable, e.Err}
}

func remoteErr(op, id string, err error) error {
	return &RemoteError{Op: op, ID: id, Err: err}
}
