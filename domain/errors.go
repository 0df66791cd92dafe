package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus indicates the backend answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrMalformedResponse indicates a response body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response body")

	// ErrNotFound indicates the requested video or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyComment indicates the user tried to send a blank comment.
	ErrEmptyComment = errors.New("comment cannot be empty")

	// ErrPlayback indicates a player could not load or play its media.
	ErrPlayback = errors.New("playback failed")

	// ErrHandleReleased indicates a player handle was used after unmount.
	ErrHandleReleased = errors.New("player handle released")

	// ErrViewNotMeasured indicates a scroll target row has no layout yet.
	ErrViewNotMeasured = errors.New("view not measured")
)

// StatusError carries the status and a trimmed body of a failed API call.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API %s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus and, for 404, ErrNotFound.
func (e *StatusError) Unwrap() []error {
	if e.Code == 404 {
		return []error{ErrUnexpectedStatus, ErrNotFound}
	}
	return []error{ErrUnexpectedStatus}
}
