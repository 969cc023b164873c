// Package document resolves instruction documents by id. A FileLocator maps
// ids to files under a document root, using a Catalog of known entries and a
// root-relative fallback, and returns immutable Document values.
package document

import (
	"fmt"
	"time"
)

// Role tells whether a document starts a composition or layers on top of one.
type Role string

const (
	// RoleBase marks the primary instruction document.
	RoleBase Role = "base"
	// RolePreference marks a document appended after the base.
	RolePreference Role = "preference"
)

// ParseRole maps a config or frontmatter value to a Role. Empty input yields
// an empty Role so callers can fall back to layout conventions.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case "":
		return "", nil
	case RoleBase, RolePreference:
		return Role(value), nil
	default:
		return "", fmt.Errorf("document: unknown role %q", value)
	}
}

// Document is a loaded instruction document. Text is the body that takes part
// in composition, with any frontmatter removed.
type Document struct {
	ID          string
	Path        string
	Role        Role
	Title       string
	LastUpdated time.Time
	Text        string
}

// WithRole returns a copy of the document carrying role.
func (d Document) WithRole(role Role) Document {
	d.Role = role
	return d
}

// Locator resolves a document id to its content.
type Locator interface {
	Resolve(id string) (Document, error)
}

// NotFoundError reports that no file exists at the path expected for an id.
type NotFoundError struct {
	ID   string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("document: %s not found", e.ID)
	}
	return fmt.Sprintf("document: %s not found at %s", e.ID, e.Path)
}

// UnreadableError reports a file that exists but cannot be used, either
// because reading it failed or because it is not UTF-8 text.
type UnreadableError struct {
	ID   string
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("document: %s unreadable at %s: %v", e.ID, e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}
