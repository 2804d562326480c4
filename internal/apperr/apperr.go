// Package apperr defines the error taxonomy shared by the engines and the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a user-facing message.
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

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error   { return newError(KindValidation, msg) }
func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error     { return newError(KindNotFound, msg) }
func Conflict(msg string) *Error     { return newError(KindConflict, msg) }

// External wraps a failure of an outside collaborator such as the media store.
func External(msg string, err error) *Error {
	return &Error{Kind: KindExternalService, Message: msg, Err: err}
}

// Internal wraps an unexpected store failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err. Internal errors never leak their cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// Engine sentinels. Match with errors.Is.
var (
	ErrSelfReference        = Conflict("You cannot perform this action on yourself")
	ErrAlreadyFollowing     = Conflict("Already following this user")
	ErrNotFollowing         = Conflict("Not following this user")
	ErrUsernameTaken        = Conflict("Username is already taken")
	ErrEmptyPost            = Validation("Post must have content or images")
	ErrEmptyComment         = Validation("Comment text is required")
	ErrEmptyStory           = Validation("Story must have content or media")
	ErrEmptyMessage         = Validation("Message must have text or image")
	ErrUserNotFound         = NotFound("User not found")
	ErrPostNotFound         = NotFound("Post not found")
	ErrCommentNotFound      = NotFound("Comment not found")
	ErrStoryNotFound        = NotFound("Story not found")
	ErrMessageNotFound      = NotFound("Message not found")
	ErrNotificationNotFound = NotFound("Notification not found")
)
