package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	meta, body, ok := ParseFrontMatter([]byte("---\ntitle: Expect guide\nrole: base\nlast_updated: 2025-06-30T10:00:00Z\n---\n# Expect\n"))
	require.True(t, ok)
	assert.Equal(t, "Expect guide", meta.Title)
	assert.Equal(t, "base", meta.Role)
	assert.Equal(t, "# Expect\n", string(body))

	updated, err := meta.UpdatedAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC), updated)
}

func TestParseFrontMatterKeepsCRLFBody(t *testing.T) {
	meta, body, ok := ParseFrontMatter([]byte("---\r\ntitle: Windows\r\n---\r\n# Body\r\nDo X.\r\n"))
	require.True(t, ok)
	assert.Equal(t, "Windows", meta.Title)
	assert.Equal(t, "# Body\r\nDo X.\r\n", string(body))
}

func TestParseFrontMatterBodyIsVerbatimAfterFence(t *testing.T) {
	_, body, ok := ParseFrontMatter([]byte("---\ntitle: T\n---\n\n# Body"))
	require.True(t, ok)
	assert.Equal(t, "\n# Body", string(body))

	_, body, ok = ParseFrontMatter([]byte("---\ntitle: T\n---"))
	require.True(t, ok)
	assert.Empty(t, body)
}

func TestParseFrontMatterLeavesProseAlone(t *testing.T) {
	cases := map[string]string{
		"no fence":          "# Title\nBody",
		"unclosed fence":    "---\n# Title\nBody",
		"empty block":       "---\n---\n# Body",
		"rule around text":  "---\nJust a paragraph between rules.\n---\nMore text",
		"list not mapping":  "---\n- one\n- two\n---\nMore text",
		"prose mapping":     "---\nNote: read the whole guide first\n---\n# Guide\nDo X.",
		"unknown key mixed": "---\ntitle: Guide\nauthor: someone\n---\n# Guide",
		"fence not alone":   "--- \ntitle: T\n---\n# Body",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, body, ok := ParseFrontMatter([]byte(content))
			assert.False(t, ok)
			assert.Equal(t, content, string(body))
		})
	}
}

func TestFrontMatterUpdatedAt(t *testing.T) {
	updated, err := FrontMatter{}.UpdatedAt()
	require.NoError(t, err)
	assert.True(t, updated.IsZero())

	_, err = FrontMatter{LastUpdated: "last week"}.UpdatedAt()
	assert.Error(t, err)
}
