package simpleblog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrPostNotFound indicates a post id did not resolve. Malformed and
	// absent ids are collapsed into this one outcome.
	ErrPostNotFound = errors.New("post not found")

	// ErrAccountNotFound indicates an account id did not resolve.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCommentNotFound indicates a comment id did not resolve.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrBlobNotFound indicates a blob id did not resolve to stored bytes.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrAccountExists indicates a registration conflict on an already
	// taken account id.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidCredentials indicates a failed login. It is returned for
	// both an unknown id and a wrong secret; callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation indicates a malformed or missing required field.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is the match target for authorization denials. The
	// concrete error is always a *ForbiddenError carrying the reason.
	ErrForbidden = errors.New("forbidden")
)

// ForbiddenError is an authorization denial. Reason is a human-readable
// explanation suitable for a flash-style notice.
type ForbiddenError struct {
	Action Action
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s: %s", e.Action, e.Reason)
}

// Is makes ForbiddenError match ErrForbidden with errors.Is.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// PartialDeleteError reports a cascade delete that removed a post's comments
// but then failed to remove the post itself. It is a distinct outcome so the
// inconsistency is never mistaken for a plain NotFound.
type PartialDeleteError struct {
	PostID uuid.UUID
	Err    error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("partial delete of post %s: comments removed but post delete failed: %v", e.PostID, e.Err)
}

func (e *PartialDeleteError) Unwrap() error {
	return e.Err
}

func validationError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}
