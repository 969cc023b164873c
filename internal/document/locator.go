package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FileLocator resolves ids against files under Root.
type FileLocator struct {
	root    string
	catalog *Catalog
}

// NewFileLocator returns a locator for root. A nil catalog means every id is
// resolved by the root-relative fallback.
func NewFileLocator(root string, catalog *Catalog) *FileLocator {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &FileLocator{root: filepath.Clean(root), catalog: catalog}
}

// ExpectedPath returns the file an id maps to: the catalog path when the id
// is known, otherwise <root>/<id> with ".md" appended when the id has no
// extension. ok is false for ids that would leave the root; the path is then
// the one that was refused, for error messages.
func (l *FileLocator) ExpectedPath(id string) (string, bool) {
	rel := ""
	if entry, found := l.catalog.Lookup(id); found {
		rel = entry.Path
	} else {
		rel = filepath.ToSlash(id)
		if path.Ext(rel) == "" {
			rel += ".md"
		}
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return filepath.Clean(filepath.FromSlash(rel)), false
	}
	cleaned := path.Clean(rel)
	p := filepath.Join(l.root, filepath.FromSlash(cleaned))
	return p, !EscapesRoot(cleaned)
}

// Resolve reads the document for id. Every call goes back to disk.
func (l *FileLocator) Resolve(id string) (Document, error) {
	p, ok := l.ExpectedPath(id)
	if !ok {
		return Document{}, &NotFoundError{ID: id, Path: p}
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, &NotFoundError{ID: id, Path: p}
		}
		return Document{}, &UnreadableError{ID: id, Path: p, Err: err}
	}
	if info.IsDir() {
		return Document{}, &UnreadableError{ID: id, Path: p, Err: fmt.Errorf("is a directory")}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Document{}, &UnreadableError{ID: id, Path: p, Err: err}
	}
	if !utf8.Valid(data) {
		return Document{}, &UnreadableError{ID: id, Path: p, Err: fmt.Errorf("content is not valid UTF-8")}
	}

	doc := Document{ID: id, Path: p, LastUpdated: info.ModTime().UTC(), Text: string(data)}
	if entry, found := l.catalog.Lookup(id); found {
		doc.Role = entry.Role
	} else {
		doc.Role = roleForPath(filepath.ToSlash(p))
	}

	meta, body, hasMeta := ParseFrontMatter(data)
	if !hasMeta {
		return doc, nil
	}
	doc.Text = string(body)
	doc.Title = meta.Title
	if role, err := ParseRole(strings.ToLower(strings.TrimSpace(meta.Role))); err == nil && role != "" {
		doc.Role = role
	}
	// An unparsable last_updated keeps the modification time.
	if updated, err := meta.UpdatedAt(); err == nil && !updated.IsZero() {
		doc.LastUpdated = updated
	}
	return doc, nil
}

// EscapesRoot reports whether a slash-separated relative path leaves the
// directory it is joined to.
func EscapesRoot(rel string) bool {
	cleaned := path.Clean(filepath.ToSlash(rel))
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}
