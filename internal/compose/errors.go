package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/promptlayers/internal/document"
)

// BaseNotFoundError aborts a composition whose base document does not exist.
type BaseNotFoundError struct {
	ID   string
	Path string
	Err  error
}

func (e *BaseNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("compose: base %s not found", e.ID)
	}
	return fmt.Sprintf("compose: base %s not found at %s", e.ID, e.Path)
}

func (e *BaseNotFoundError) Unwrap() error {
	return e.Err
}

// PreferenceNotFoundError is recovered by the composer and reported as a
// warning; its message is the warning text.
type PreferenceNotFoundError struct {
	ID   string
	Path string
}

func (e *PreferenceNotFoundError) Error() string {
	return fmt.Sprintf("preference %s skipped: not found", e.ID)
}

// InvalidRequestError rejects a malformed request before any file is read.
type InvalidRequestError struct {
	Problems []string
}

func (e *InvalidRequestError) Error() string {
	return "compose: invalid request: " + strings.Join(e.Problems, "; ")
}

// Kind groups composition failures by how callers report them.
type Kind int

const (
	KindOK Kind = iota
	KindBaseNotFound
	KindUnreadable
	KindInvalidRequest
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindBaseNotFound:
		return "base_not_found"
	case KindUnreadable:
		return "unreadable"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "error"
	}
}

// Classify maps err onto a Kind. A nil error is KindOK.
func Classify(err error) Kind {
	var (
		baseErr    *BaseNotFoundError
		unreadable *document.UnreadableError
		invalid    *InvalidRequestError
	)
	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &invalid):
		return KindInvalidRequest
	case errors.As(err, &baseErr):
		return KindBaseNotFound
	case errors.As(err, &unreadable):
		return KindUnreadable
	default:
		return KindOther
	}
}
