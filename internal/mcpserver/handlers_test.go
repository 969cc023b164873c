package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/promptlayers/internal/workspace"
)

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"INSTR.md":                "# Base\nDo X.",
		"PREF1.md":                "# Pref\nAlso do Y.",
		"expect/INSTRUCTIONS.md":  "# Expect\nRun the checks.",
		"expect/preferences/a.md": "# A\nPrefer A.",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	ws, err := workspace.Open(root, "", nil)
	require.NoError(t, err)
	return ws
}

func TestComposeHandler(t *testing.T) {
	svc := NewService(newWorkspace(t))

	_, out, err := svc.Compose(context.Background(), nil, ComposeInput{
		Base:        "INSTR",
		Preferences: []string{"PREF1", "MISSING"},
		Digest:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "# Base\nDo X.\n\n---\n\n# Pref\nAlso do Y.", out.Text)
	assert.Equal(t, []string{"INSTR", "PREF1"}, out.SourceOrder)
	assert.Contains(t, out.Warnings, "preference MISSING skipped: not found")
	assert.True(t, strings.HasPrefix(out.Digest, "bafkrei"))
}

func TestComposeHandlerReportsFailureKind(t *testing.T) {
	svc := NewService(newWorkspace(t))

	_, out, err := svc.Compose(context.Background(), nil, ComposeInput{Base: "NOPE"})
	require.NoError(t, err)
	assert.Equal(t, "base_not_found", out.Status)
	assert.Contains(t, out.Message, "NOPE")
	assert.Empty(t, out.Text)

	_, out, err = svc.Compose(context.Background(), nil, ComposeInput{Base: "INSTR", Preferences: []string{"INSTR"}})
	require.NoError(t, err)
	assert.Equal(t, "invalid_request", out.Status)
}

func TestListHandlerFiltersByRole(t *testing.T) {
	svc := NewService(newWorkspace(t))

	_, out, err := svc.List(context.Background(), nil, ListInput{Role: "preference"})
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	assert.Equal(t, "expect/preferences/a", out.Documents[0].ID)
	assert.Equal(t, "ok", out.Documents[0].Status)
	assert.NotEmpty(t, out.Documents[0].LastUpdated)

	_, _, err = svc.List(context.Background(), nil, ListInput{Role: "other"})
	assert.Error(t, err)
}

func TestValidateHandler(t *testing.T) {
	svc := NewService(newWorkspace(t))

	_, out, err := svc.Validate(context.Background(), nil, ValidateInput{Base: "INSTR", Preferences: []string{"MISSING"}})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, []string{"MISSING"}, out.Unresolved)

	_, out, err = svc.Validate(context.Background(), nil, ValidateInput{Base: "NOPE"})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, []string{"NOPE"}, out.Unresolved)

	_, out, err = svc.Validate(context.Background(), nil, ValidateInput{Base: "X", Preferences: []string{"X"}})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "self-composition")
}

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	server := NewServer(newWorkspace(t))
	st, ct := mcp.NewInMemoryTransports()

	ctx := context.Background()
	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestServerListsTools(t *testing.T) {
	session := connect(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{"compose_documents", "list_documents", "validate_request"}, names)
}

func TestServerComposeOverTransport(t *testing.T) {
	session := connect(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "compose_documents",
		Arguments: ComposeInput{Base: "expect/INSTRUCTIONS", Preferences: []string{"expect/preferences/a"}},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.NotNil(t, result.StructuredContent)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out ComposeOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "# Expect\nRun the checks.\n\n---\n\n# A\nPrefer A.", out.Text)
}
