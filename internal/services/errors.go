package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a service failure; handlers map it to an HTTP status.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "server"
	}
}

// Error is a classified, client-safe failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Validationf(format string, args ...interface{}) error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

var (
	ErrFieldsRequired   = newError(KindValidation, "All fields required")
	ErrPasswordTooShort = newError(KindValidation, "Password must be at least 8 characters")
	ErrPasswordTooLong  = newError(KindValidation, "Password must be at most 72 bytes")
	ErrEmailTaken       = newError(KindConflict, "Email already registered")
	ErrUsernameTaken    = newError(KindConflict, "Username already taken")
	ErrAccountNotFound  = newError(KindNotFound, "User not found")
	ErrWrongPassword    = newError(KindAuth, "Wrong password")
	ErrSessionInvalid   = newError(KindAuth, "Session expired or invalid")
	ErrAccountSuspended = newError(KindAuthorization, "Account suspended")

	ErrDeveloperOnly   = newError(KindAuthorization, "Only developers can create games")
	ErrAdminOnly       = newError(KindAuthorization, "Admin access required")
	ErrNotGameOwner    = newError(KindAuthorization, "You can only modify your own games")
	ErrGameNotFound    = newError(KindNotFound, "Game not found")
	ErrTitleRequired   = newError(KindValidation, "Title is required")
	ErrInvalidPrice    = newError(KindValidation, "Price must be a non-negative number")
	ErrMetadataMissing = newError(KindNotFound, "No metadata found")

	ErrAlreadyOwned  = newError(KindConflict, "You already own this game")
	ErrOrderNotFound = newError(KindNotFound, "Order not found")
	ErrNotOrderOwner = newError(KindAuthorization, "Unauthorized")

	ErrMustOwnGame     = newError(KindAuthorization, "You must own this game to review it")
	ErrAlreadyReviewed = newError(KindConflict, "You already reviewed this game")
	ErrRatingRequired  = newError(KindValidation, "Rating required")
	ErrRatingRange     = newError(KindValidation, "Rating must be between 1 and 5")
	ErrReviewNotFound  = newError(KindNotFound, "Review not found")
	ErrNotReviewAuthor = newError(KindAuthorization, "You can only modify your own reviews")
	ErrSelfRoleChange  = newError(KindValidation, "Cannot change your own role")
	ErrSelfSuspend     = newError(KindValidation, "Cannot suspend yourself")
	ErrUserNotFound    = newError(KindNotFound, "User not found")
)

// KindOf reports the kind of err, KindServer for unclassified errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindServer
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
