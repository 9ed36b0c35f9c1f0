package friends

import "errors"

// Error classes. Every user-facing error wraps exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Error is a user-facing friend error. Message is safe to show verbatim.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the error class to errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) *Error { return &Error{Kind: ErrValidation, Message: msg} }

func notFoundError(msg string) *Error { return &Error{Kind: ErrNotFound, Message: msg} }

// Validation errors, raised before any write.
var (
	ErrInvalidFriendID    = validationError("friend ID must be 8 characters")
	ErrSelfRequest        = validationError("you cannot add yourself as a friend")
	ErrAlreadyFriends     = validationError("you are already friends with this user")
	ErrRequestAlreadySent = validationError("friend request already sent")
	ErrInvalidUsername    = validationError("username must be between 1 and 30 characters")
)

// Not-found errors, raised after a failed lookup.
var (
	ErrFriendNotFound  = notFoundError("no user found with that friend ID")
	ErrRequestNotFound = notFoundError("friend request not found")
	ErrProfileNotFound = notFoundError("profile not found")
)

// ErrIDSpaceExhausted is returned when every generated friend ID collided.
var ErrIDSpaceExhausted = errors.New("could not generate a unique friend ID")
