// internal/config/config.go
//
// This package handles compose.yaml, the optional project file that sits at the
// document root. It declares the known document table, composition defaults and
// named recipes. A root without compose.yaml is still usable: every document is
// then found by discovery or by its root-relative id.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/promptlayers/internal/compose"
	"github.com/kingrea/promptlayers/internal/document"
)

const (
	// DefaultSeparator sits between every composed document.
	DefaultSeparator = compose.DefaultSeparator

	// DefaultMinLength is the composed-text size below which results are
	// flagged. Zero leaves the length check off.
	DefaultMinLength = 0
)

// FileNames lists the config files looked up at the root, in order.
var FileNames = []string{"compose.yaml", "compose.yml"}

const defaultProjectConfigYAML = `# promptlayers configuration
version: 1

# Inserted between the base document and every preference document.
separator: "\n\n---\n\n"

# Composed output shorter than this many bytes is reported as a warning (0: off).
min_length: 0

# Discover <module>/<name>.md (base) and <module>/preferences/<name>.md (preference).
discover: true

# Optional diagnostic log file, relative to the root.
log_file: ""

# Explicit documents. These win over discovered ones.
documents: []
#  - id: expect
#    path: expect/INSTRUCTIONS.md
#    role: base

# Named compositions built by ` + "`compose build`" + `.
recipes: []
#  - name: expect-team
#    base: expect
#    preferences: [expect/preferences/team]
#    out: build/expect.md
`

// DocumentRef declares one row of the known document table.
type DocumentRef struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
	Role string `yaml:"role,omitempty"`
}

// Recipe is a persisted composition request.
type Recipe struct {
	Name        string   `yaml:"name"`
	Base        string   `yaml:"base"`
	Preferences []string `yaml:"preferences,omitempty"`
	Separator   *string  `yaml:"separator,omitempty"`
	Out         string   `yaml:"out"`
}

// ProjectConfig models compose.yaml.
type ProjectConfig struct {
	Version   int           `yaml:"version"`
	Separator *string       `yaml:"separator,omitempty"`
	MinLength *int          `yaml:"min_length,omitempty"`
	Discover  *bool         `yaml:"discover,omitempty"`
	LogFile   string        `yaml:"log_file,omitempty"`
	Documents []DocumentRef `yaml:"documents,omitempty"`
	Recipes   []Recipe      `yaml:"recipes,omitempty"`
}

// Config holds the runtime configuration for one document root.
type Config struct {
	// Root is the document root every id resolves against.
	Root string

	// Path is the config file that was loaded, empty when none existed.
	Path string

	Project ProjectConfig
}

// Load reads the config for root. An explicit path must exist; otherwise the
// well-known file names are tried and a missing file yields defaults.
func Load(root, explicit string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("config: resolve root %s: %w", root, err)
	}
	cfg := &Config{Root: absRoot, Project: defaultProjectConfig()}

	if strings.TrimSpace(explicit) != "" {
		path := resolvePath(absRoot, explicit)
		if err := cfg.loadProjectConfig(path, true); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	for _, name := range FileNames {
		path := filepath.Join(absRoot, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := cfg.loadProjectConfig(path, false); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, nil
}

// Init writes a commented default compose.yaml at root unless one exists.
// It reports whether a file was created.
func Init(root string) (string, bool, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, false, nil
		}
	}
	path := filepath.Join(root, FileNames[0])
	if err := ensureProjectConfig(path); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// Separator returns the configured separator.
func (c *Config) Separator() string {
	if c.Project.Separator == nil {
		return DefaultSeparator
	}
	return *c.Project.Separator
}

// MinLength returns the minimum composed-text length.
func (c *Config) MinLength() int {
	if c.Project.MinLength == nil {
		return DefaultMinLength
	}
	return *c.Project.MinLength
}

// Discover reports whether module-layout discovery is enabled.
func (c *Config) Discover() bool {
	if c.Project.Discover == nil {
		return true
	}
	return *c.Project.Discover
}

// LogFilePath returns the absolute log file path, or "" when logging to a
// file is disabled.
func (c *Config) LogFilePath() string {
	if c.Project.LogFile == "" {
		return ""
	}
	return resolvePath(c.Root, c.Project.LogFile)
}

// Documents returns the explicit document table.
func (c *Config) Documents() []DocumentRef {
	return c.Project.Documents
}

// Recipes returns the configured recipes in declaration order.
func (c *Config) Recipes() []Recipe {
	return c.Project.Recipes
}

// Recipe looks a recipe up by name.
func (c *Config) Recipe(name string) (Recipe, bool) {
	for _, r := range c.Project.Recipes {
		if r.Name == name {
			return r, true
		}
	}
	return Recipe{}, false
}

// RecipeOutPath returns the absolute output path for a recipe.
func (c *Config) RecipeOutPath(r Recipe) string {
	return resolvePath(c.Root, r.Out)
}

func (c *Config) loadProjectConfig(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	c.Path = path
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{Version: 1}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
}

func (pc *ProjectConfig) normalize() {
	pc.LogFile = strings.TrimSpace(pc.LogFile)
	for i := range pc.Documents {
		pc.Documents[i].normalize()
	}
	for i := range pc.Recipes {
		pc.Recipes[i].normalize()
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.MinLength != nil && *pc.MinLength < 0 {
		return fmt.Errorf("min_length must be >= 0")
	}
	seenDocs := map[string]struct{}{}
	for i := range pc.Documents {
		doc := pc.Documents[i]
		if err := doc.validate(); err != nil {
			return fmt.Errorf("documents[%d]: %w", i, err)
		}
		if _, exists := seenDocs[doc.ID]; exists {
			return fmt.Errorf("documents[%d]: duplicate id %q", i, doc.ID)
		}
		seenDocs[doc.ID] = struct{}{}
	}
	seenRecipes := map[string]struct{}{}
	for i := range pc.Recipes {
		r := pc.Recipes[i]
		if err := r.validate(); err != nil {
			return fmt.Errorf("recipes[%d]: %w", i, err)
		}
		if _, exists := seenRecipes[r.Name]; exists {
			return fmt.Errorf("recipes[%d]: duplicate name %q", i, r.Name)
		}
		seenRecipes[r.Name] = struct{}{}
	}
	return nil
}

func (ref *DocumentRef) normalize() {
	ref.ID = strings.TrimSpace(ref.ID)
	ref.Path = filepath.ToSlash(strings.TrimSpace(ref.Path))
	ref.Role = strings.ToLower(strings.TrimSpace(ref.Role))
}

func (ref DocumentRef) validate() error {
	if ref.ID == "" {
		return fmt.Errorf("id is required")
	}
	if ref.Path == "" {
		return fmt.Errorf("path is required for %s", ref.ID)
	}
	if filepath.IsAbs(ref.Path) || strings.HasPrefix(ref.Path, "/") || document.EscapesRoot(ref.Path) {
		return fmt.Errorf("path %q for %s must stay inside the document root", ref.Path, ref.ID)
	}
	switch ref.Role {
	case "", "base", "preference":
	default:
		return fmt.Errorf("unsupported role %q for %s (use base or preference)", ref.Role, ref.ID)
	}
	return nil
}

func (r *Recipe) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Base = strings.TrimSpace(r.Base)
	r.Out = strings.TrimSpace(r.Out)
	for i := range r.Preferences {
		r.Preferences[i] = strings.TrimSpace(r.Preferences[i])
	}
}

func (r Recipe) validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Base == "" {
		return fmt.Errorf("base is required for recipe %s", r.Name)
	}
	if r.Out == "" {
		return fmt.Errorf("out is required for recipe %s", r.Name)
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func resolvePath(base, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Clean(filepath.Join(base, value))
}
