package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the optional YAML header of an instruction document.
type FrontMatter struct {
	Title       string `yaml:"title,omitempty"`
	Role        string `yaml:"role,omitempty"`
	LastUpdated string `yaml:"last_updated,omitempty"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseFrontMatter splits a `---` fenced header from the body. The header only
// counts when it is a non-empty mapping of known FrontMatter keys; anything
// else, like prose set between horizontal rules, leaves ok false and body is
// the content verbatim. The body is the original bytes after the closing
// fence, line endings included.
func ParseFrontMatter(content []byte) (meta FrontMatter, body []byte, ok bool) {
	header, rest, found := splitFence(content)
	if !found || len(bytes.TrimSpace(header)) == 0 {
		return FrontMatter{}, content, false
	}
	dec := yaml.NewDecoder(bytes.NewReader(normalizeNewlines(header)))
	dec.KnownFields(true)
	if err := dec.Decode(&meta); err != nil {
		return FrontMatter{}, content, false
	}
	return meta, rest, true
}

// splitFence returns what lies between an opening "---" line and the next
// "---" line, and everything after the closing line. Lines may end in \n or
// \r\n.
func splitFence(content []byte) (header, rest []byte, ok bool) {
	first, after, found := cutLine(content)
	if !found || !isFence(first) {
		return nil, nil, false
	}
	start := len(content) - len(after)
	for pos := start; pos < len(content); {
		line, next, hasNewline := cutLine(content[pos:])
		if isFence(line) {
			return content[start:pos], next, true
		}
		if !hasNewline {
			break
		}
		pos = len(content) - len(next)
	}
	return nil, nil, false
}

func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}

func isFence(line []byte) bool {
	return string(line) == "---"
}

// UpdatedAt parses last_updated. The zero time is returned when it is unset.
func (f FrontMatter) UpdatedAt() (time.Time, error) {
	value := strings.TrimSpace(f.LastUpdated)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("document: invalid last_updated %q", value)
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
