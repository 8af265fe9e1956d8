package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestWithStringArray(t *testing.T) {
	tool := mcp.NewTool("read",
		WithStringArray("knownRanges", mcp.Description("Ranges already read")),
		WithStringArray("ranges", mcp.Required()),
	)

	schema, ok := tool.InputSchema.Properties["ranges"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "array", schema["type"])
	assert.Equal(t, map[string]any{"type": "string"}, schema["items"])
	assert.NotContains(t, schema, "required")
	assert.Equal(t, []string{"ranges"}, tool.InputSchema.Required)

	known, ok := tool.InputSchema.Properties["knownRanges"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "Ranges already read", known["description"])
}
