package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCatalogRegister(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(Entry{ID: "INSTR", Path: "expect/INSTRUCTIONS.md"}))
	require.NoError(t, c.Register(Entry{ID: "team", Path: "expect/preferences/team.md"}))

	instr, ok := c.Lookup("INSTR")
	require.True(t, ok)
	assert.Equal(t, RoleBase, instr.Role)
	assert.Equal(t, "expect", instr.Module)

	team, ok := c.Lookup("team")
	require.True(t, ok)
	assert.Equal(t, RolePreference, team.Role)

	assert.Error(t, c.Register(Entry{ID: "INSTR", Path: "other.md"}))
	assert.Error(t, c.Register(Entry{ID: " ", Path: "x.md"}))
	assert.Error(t, c.Register(Entry{ID: "x"}))
}

func TestCatalogDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "expect/INSTRUCTIONS.md", "# Expect")
	writeFile(t, root, "expect/preferences/team.md", "# Team")
	writeFile(t, root, "expect/notes.txt", "ignored")
	writeFile(t, root, "shell/review.md", "# Review")
	writeFile(t, root, ".git/HEAD.md", "ignored")
	writeFile(t, root, "_examples/x/README.md", "ignored")
	writeFile(t, root, "README.md", "top-level files are not modules")

	c := NewCatalog()
	require.NoError(t, c.Register(Entry{ID: "expect/INSTRUCTIONS", Path: "shell/review.md"}))
	require.NoError(t, c.Discover(root))

	ids := []string{}
	for _, e := range c.Entries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"expect/INSTRUCTIONS", "expect/preferences/team", "shell/review"}, ids)

	explicit, _ := c.Lookup("expect/INSTRUCTIONS")
	assert.Equal(t, "shell/review.md", explicit.Path, "explicit entries win over discovery")

	team, _ := c.Lookup("expect/preferences/team")
	assert.Equal(t, RolePreference, team.Role)
	assert.Equal(t, "expect", team.Module)
}

func TestCatalogDiscoverMissingRoot(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Discover(filepath.Join(t.TempDir(), "missing")))
	assert.Equal(t, 0, c.Len())
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("preference")
	require.NoError(t, err)
	assert.Equal(t, RolePreference, role)

	role, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, Role(""), role)

	_, err = ParseRole("override")
	assert.Error(t, err)
}
