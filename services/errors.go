package services

import (
	"errors"
	"fmt"
)

// Kind classifies service failures so the serving layer can pick a status
// code without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: a referenced post, user or vote fact does not exist.
	KindNotFound
	// KindInvalidArgument: input rejected before touching the store.
	KindInvalidArgument
	// KindConflict: state-based rejection, including storage uniqueness
	// violations surfaced by a concurrent writer.
	KindConflict
	// KindForbidden: requester does not own the resource being mutated.
	KindForbidden
)

// Error carries the offending resource kind and id alongside the message so
// callers can render a precise response.
type Error struct {
	Kind     Kind
	Resource string
	ID       uint
	Msg      string
}

func (e *Error) Error() string {
	if e.Resource != "" && e.ID != 0 {
		return fmt.Sprintf("%s %d: %s", e.Resource, e.ID, e.Msg)
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s", e.Resource, e.Msg)
	}
	return e.Msg
}

// NotFound reports a missing resource that was required to exist.
func NotFound(resource string, id uint) *Error {
	return &Error{Kind: KindNotFound, Resource: resource, ID: id, Msg: "not found"}
}

// InvalidArgument reports input the service can reject value-locally.
func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}

// Conflict reports a state-based rejection on an existing resource.
func Conflict(resource string, id uint, msg string) *Error {
	return &Error{Kind: KindConflict, Resource: resource, ID: id, Msg: msg}
}

// Forbidden reports an ownership violation on a mutation.
func Forbidden(resource string, id uint) *Error {
	return &Error{Kind: KindForbidden, Resource: resource, ID: id, Msg: "not the owner"}
}

// KindOf extracts the failure class from err, or KindUnknown for errors that
// did not originate here (store-level failures propagate unchanged).
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// requireOwner is the single capability check applied before any mutation of
// an owned resource.
func requireOwner(ownerID, requesterID uint, resource string, id uint) error {
	if ownerID != requesterID {
		return Forbidden(resource, id)
	}
	return nil
}
