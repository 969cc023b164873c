package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// PreferencesDir is the per-module directory holding preference documents.
const PreferencesDir = "preferences"

// Entry is one row of the known document table. Path is root-relative and
// slash separated.
type Entry struct {
	ID     string
	Path   string
	Role   Role
	Module string
}

// Catalog is the known table of document ids for one root.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: map[string]Entry{}}
}

// Register adds an entry. Returns an error if the id already exists.
func (c *Catalog) Register(entry Entry) error {
	entry.ID = strings.TrimSpace(entry.ID)
	if entry.ID == "" {
		return fmt.Errorf("document: id is required")
	}
	if strings.TrimSpace(entry.Path) == "" {
		return fmt.Errorf("document: path is required for %s", entry.ID)
	}
	if _, exists := c.entries[entry.ID]; exists {
		return fmt.Errorf("document: %s already registered", entry.ID)
	}
	entry.Path = filepath.ToSlash(path.Clean(filepath.ToSlash(entry.Path)))
	if entry.Role == "" {
		entry.Role = roleForPath(entry.Path)
	}
	if entry.Module == "" {
		entry.Module = moduleForPath(entry.Path)
	}
	c.entries[entry.ID] = entry
	return nil
}

// Lookup returns the entry registered for id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.entries[id]
	return entry, ok
}

// Entries returns all entries sorted by id.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of registered entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Discover walks the module layout under root and registers every Markdown
// file it finds:
//
//	<module>/<name>.md              -> id <module>/<name>, base
//	<module>/preferences/<name>.md  -> id <module>/preferences/<name>, preference
//
// Ids that are already registered are left alone so explicit entries win.
// A missing root is treated as an empty layout.
func (c *Catalog) Discover(root string) error {
	modules, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("document: read %s: %w", root, err)
	}
	for _, mod := range modules {
		if !mod.IsDir() || skipDir(mod.Name()) {
			continue
		}
		if err := c.discoverDir(root, mod.Name(), RoleBase); err != nil {
			return err
		}
		if err := c.discoverDir(root, path.Join(mod.Name(), PreferencesDir), RolePreference); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) discoverDir(root, rel string, role Role) error {
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("document: read %s: %w", rel, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isMarkdownFile(entry.Name()) {
			continue
		}
		file := path.Join(rel, entry.Name())
		id := strings.TrimSuffix(file, path.Ext(file))
		if _, exists := c.entries[id]; exists {
			continue
		}
		c.entries[id] = Entry{ID: id, Path: file, Role: role, Module: moduleForPath(file)}
	}
	return nil
}

func roleForPath(p string) Role {
	if path.Base(path.Dir(p)) == PreferencesDir {
		return RolePreference
	}
	return RoleBase
}

func moduleForPath(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return strings.SplitN(dir, "/", 2)[0]
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func isMarkdownFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
