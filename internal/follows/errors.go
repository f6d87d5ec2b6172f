package follows

import "errors"

// Kind classifies engine failures. Handlers map each kind to a stable status.
type Kind string

const (
	KindMissingIdentity   Kind = "missing_identity"
	KindMissingTarget     Kind = "missing_target"
	KindSelfReference     Kind = "self_reference_rejected"
	KindAlreadyFollowing  Kind = "already_following"
	KindNotFollowing      Kind = "not_following"
	KindCounterSyncFailed Kind = "counter_sync_failed"
	KindStoreUnavailable  Kind = "store_unavailable"
	KindUnknown           Kind = "unknown"
)

// Error is returned by every Service operation. Message is safe to show to
// callers; Err carries internal detail for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrAlreadyFollowing) holds for any
// error of that kind regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingIdentity   = &Error{Kind: KindMissingIdentity, Message: "User ID required"}
	ErrMissingTarget     = &Error{Kind: KindMissingTarget, Message: "Target user ID required"}
	ErrSelfReference     = &Error{Kind: KindSelfReference, Message: "Cannot follow yourself"}
	ErrAlreadyFollowing  = &Error{Kind: KindAlreadyFollowing, Message: "Already following this user"}
	ErrNotFollowing      = &Error{Kind: KindNotFollowing, Message: "Not following this user"}
	ErrCounterSyncFailed = &Error{Kind: KindCounterSyncFailed, Message: "Counter sync failed"}
	ErrStoreUnavailable  = &Error{Kind: KindStoreUnavailable, Message: "Internal server error"}
	ErrUnknown           = &Error{Kind: KindUnknown, Message: "Internal server error"}

	errSelfCheck = &Error{Kind: KindSelfReference, Message: "Cannot check follow status for yourself"}
)

// AsError returns err as an *Error, classifying anything else as KindUnknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Message: ErrUnknown.Message, Err: err}
}
