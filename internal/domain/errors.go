package domain

import "errors"

// Kind classifies an error for the transport layer
type Kind string

func (k Kind) Error() string { return string(k) }

// Expected reports whether the kind describes a client mistake rather than
// a server fault
func (k Kind) Expected() bool { return k != internalKind }

const internalKind Kind = "internal error"

// Error kinds. Handlers translate these to HTTP statuses with errors.Is.
var (
	// ErrNotFound is returned when a resource is missing or soft-deleted
	ErrNotFound error = Kind("resource not found")

	// ErrAlreadyExists is returned when a unique resource already exists
	ErrAlreadyExists error = Kind("resource already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput error = Kind("invalid input")

	// ErrInvalidReference is returned when the client supplied an id that
	// does not resolve to an active resource
	ErrInvalidReference error = Kind("invalid reference")

	// ErrConflict is returned when the write collides with existing state
	ErrConflict error = Kind("conflict occurred")

	// ErrForbidden is returned on role or ownership mismatch
	ErrForbidden error = Kind("forbidden")

	// ErrUnauthorized is returned when the caller could not be identified
	ErrUnauthorized error = Kind("unauthorized")

	// ErrInternal is returned when an internal error occurs
	ErrInternal error = internalKind
)

// Error attaches a client-facing message to one of the error kinds above
type Error struct {
	Kind    error
	Message string
}

// NewError creates an Error of the given kind
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Expected reports whether the error's kind is a client mistake
func (e *Error) Expected() bool {
	var k Kind
	return errors.As(e.Kind, &k) && k.Expected()
}

// Errors returned by the catalog, review and user services
var (
	ErrProductNotFound     = NewError(ErrNotFound, "Product not found")
	ErrCategoryNotFound    = NewError(ErrNotFound, "Category not found")
	ErrReviewNotFound      = NewError(ErrNotFound, "Review not found")
	ErrCategoryUnavailable = NewError(ErrInvalidReference, "Category not found")
	ErrParentUnavailable   = NewError(ErrInvalidReference, "Parent category not found")
	ErrNotProductOwner     = NewError(ErrForbidden, "You can only modify your own products")
	ErrDuplicateReview     = NewError(ErrConflict, "You already have a review for this product")
	ErrInvalidGrade        = NewError(ErrInvalidInput, "Grade should be in range 1-5")
	ErrEmailTaken          = NewError(ErrAlreadyExists, "Email already registered")
	ErrBadCredentials      = NewError(ErrUnauthorized, "Incorrect email or password")
	ErrInvalidToken        = NewError(ErrUnauthorized, "Could not validate credentials")
)

// RoleRequiredError builds the Forbidden error for a missing capability
func RoleRequiredError(role Role) *Error {
	return NewError(ErrForbidden, "Only "+string(role)+"s can do this")
}

// WhenNotFound replaces a not-found err with the given specific error and
// passes every other error through unchanged
func WhenNotFound(err error, specific *Error) error {
	if errors.Is(err, ErrNotFound) {
		return specific
	}
	return err
}
