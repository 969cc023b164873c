package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func invoke(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func fixture(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func basicRoot(t *testing.T) string {
	return fixture(t, map[string]string{
		"INSTR.md": "# Base\nDo X.",
		"PREF1.md": "# Pref\nAlso do Y.",
	})
}

func TestComposeToStdout(t *testing.T) {
	root := basicRoot(t)
	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "PREF1")

	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "# Base\nDo X.\n\n---\n\n# Pref\nAlso do Y.", r.stdout)
	assert.Empty(t, r.stderr)
}

func TestMissingPreferenceWarnsAndSucceeds(t *testing.T) {
	root := basicRoot(t)
	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "MISSING")

	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "# Base\nDo X.", r.stdout)
	assert.Contains(t, r.stderr, "warning: preference MISSING skipped: not found")
}

func TestMissingBaseExitsOne(t *testing.T) {
	root := basicRoot(t)
	r := invoke(t, "--root", root, "--base", "NOPE", "--preference", "PREF1")

	assert.Equal(t, exitBaseNotFound, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "error: compose: base NOPE not found at "+filepath.Join(root, "NOPE.md"))
}

func TestUnreadableExitsTwo(t *testing.T) {
	root := fixture(t, map[string]string{"INSTR.md": "# Base\nDo X."})
	require.NoError(t, os.Mkdir(filepath.Join(root, "DIR.md"), 0o755))

	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "DIR")
	assert.Equal(t, exitUnreadable, r.code)
	assert.Empty(t, r.stdout)
}

func TestInvalidRequestExitsThree(t *testing.T) {
	root := basicRoot(t)

	r := invoke(t, "--root", root, "--preference", "PREF1")
	assert.Equal(t, exitInvalidRequest, r.code)
	assert.Contains(t, r.stderr, "base id is empty")

	r = invoke(t, "--root", root, "--base", "INSTR", "--preference", "INSTR")
	assert.Equal(t, exitInvalidRequest, r.code)
	assert.Contains(t, r.stderr, "self-composition")

	r = invoke(t, "--root", root, "--no-such-flag")
	assert.Equal(t, exitInvalidRequest, r.code)

	r = invoke(t, "--root", root, "--base", "INSTR", "--watch")
	assert.Equal(t, exitInvalidRequest, r.code)
	assert.Contains(t, r.stderr, "--watch requires --out")
}

func TestOutWritesFileAndKeepsWarningsOnStderr(t *testing.T) {
	root := basicRoot(t)
	out := filepath.Join(t.TempDir(), "build", "prompt.md")

	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "PREF1", "--preference", "MISSING", "--out", out, "--digest")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "warning: preference MISSING skipped: not found")
	assert.Contains(t, r.stderr, "digest: bafkrei")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# Base\nDo X.\n\n---\n\n# Pref\nAlso do Y.", string(data))
}

func TestFatalErrorLeavesNoOutputFile(t *testing.T) {
	root := basicRoot(t)
	out := filepath.Join(t.TempDir(), "prompt.md")

	r := invoke(t, "--root", root, "--base", "NOPE", "--out", out)
	assert.Equal(t, exitBaseNotFound, r.code)
	assert.NoFileExists(t, out)
}

func TestSeparatorEscapes(t *testing.T) {
	root := basicRoot(t)
	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "PREF1", "--separator", `\n\n`)

	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "# Base\nDo X.\n\n# Pref\nAlso do Y.", r.stdout)
}

func TestEmptySeparatorIsHonoured(t *testing.T) {
	root := basicRoot(t)
	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "PREF1", "--separator", "")

	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "# Base\nDo X.# Pref\nAlso do Y.", r.stdout)
}

func TestUnescapeSeparator(t *testing.T) {
	assert.Equal(t, "\n\n", unescapeSeparator(`\n\n`))
	assert.Equal(t, "a\tb", unescapeSeparator(`a\tb`))
	assert.Equal(t, `\n`, unescapeSeparator(`\\n`))
	assert.Equal(t, "---", unescapeSeparator("---"))
}

func TestListPrintsCatalog(t *testing.T) {
	root := fixture(t, map[string]string{
		"expect/INSTRUCTIONS.md":     "# Expect",
		"expect/preferences/team.md": "# Team",
	})

	r := invoke(t, "--root", root, "list")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "expect/INSTRUCTIONS")
	assert.Contains(t, r.stdout, "expect/preferences/team")

	r = invoke(t, "--root", root, "list", "--role", "base")
	require.Equal(t, exitOK, r.code)
	assert.NotContains(t, r.stdout, "expect/preferences/team")

	r = invoke(t, "--root", root, "list", "--role", "bogus")
	assert.Equal(t, exitInvalidRequest, r.code)
}

func TestValidateCommand(t *testing.T) {
	root := basicRoot(t)

	r := invoke(t, "--root", root, "validate", "--base", "INSTR", "--preference", "MISSING")
	assert.Equal(t, exitOK, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "preference MISSING skipped")

	r = invoke(t, "--root", root, "validate", "--base", "NOPE")
	assert.Equal(t, exitBaseNotFound, r.code)

	r = invoke(t, "--root", root, "validate", "--base", "")
	assert.Equal(t, exitInvalidRequest, r.code)
}

const recipesYAML = `recipes:
  - name: full
    base: INSTR
    preferences: [PREF1]
    out: build/full.md
  - name: plain
    base: INSTR
    out: build/plain.md
`

func TestBuildRecipes(t *testing.T) {
	root := fixture(t, map[string]string{
		"INSTR.md":     "# Base\nDo X.",
		"PREF1.md":     "# Pref\nAlso do Y.",
		"compose.yaml": recipesYAML,
	})

	r := invoke(t, "--root", root, "build")
	require.Equal(t, exitOK, r.code, r.stderr)

	data, err := os.ReadFile(filepath.Join(root, "build", "full.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Base\nDo X.\n\n---\n\n# Pref\nAlso do Y.", string(data))
	assert.FileExists(t, filepath.Join(root, "build", "plain.md"))
	assert.Contains(t, r.stderr, "plain: no preferences requested")

	r = invoke(t, "--root", root, "build", "unknown")
	assert.Equal(t, exitInvalidRequest, r.code)
}

func TestConfigErrorsExitFour(t *testing.T) {
	root := fixture(t, map[string]string{"compose.yaml": "min_length: -1\n"})
	r := invoke(t, "--root", root, "--base", "INSTR")
	assert.Equal(t, exitFailure, r.code)
	assert.Contains(t, r.stderr, "config:")
}

func TestInvalidRequestWinsOverConfigErrors(t *testing.T) {
	root := fixture(t, map[string]string{"compose.yaml": "min_length: -1\n"})

	r := invoke(t, "--root", root, "--base", "")
	assert.Equal(t, exitInvalidRequest, r.code)
	assert.Contains(t, r.stderr, "base id is empty")

	r = invoke(t, "--root", root, "validate", "--base", "")
	assert.Equal(t, exitInvalidRequest, r.code)
}

func TestInvalidRequestTouchesNothing(t *testing.T) {
	root := fixture(t, map[string]string{
		"compose.yaml": "log_file: logs/compose.log\n",
		"INSTR.md":     "# Base\nDo X.",
	})

	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "INSTR")
	assert.Equal(t, exitInvalidRequest, r.code)
	assert.Empty(t, r.stdout)
	assert.NoFileExists(t, filepath.Join(root, "logs", "compose.log"))
	assert.NoDirExists(t, filepath.Join(root, "logs"))
}

func TestMissingPreferenceIsTheOnlyWarning(t *testing.T) {
	root := basicRoot(t)
	r := invoke(t, "--root", root, "--base", "INSTR", "--preference", "MISSING")

	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "# Base\nDo X.", r.stdout)
	assert.Equal(t, "warning: preference MISSING skipped: not found\n", r.stderr)
}

func TestInitAndVersion(t *testing.T) {
	root := t.TempDir()

	r := invoke(t, "--root", root, "init")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.FileExists(t, filepath.Join(root, "compose.yaml"))

	r = invoke(t, "--root", root, "init")
	assert.Equal(t, exitOK, r.code)
	assert.Contains(t, r.stderr, "already exists")

	r = invoke(t, "version")
	assert.Equal(t, "compose dev\n", r.stdout)

	r = invoke(t, "version", "extra")
	assert.Equal(t, exitInvalidRequest, r.code)
}
