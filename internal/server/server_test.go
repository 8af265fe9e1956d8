package server

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *client.Client {
	t.Helper()
	s := New("test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	_, err = c.Initialize(ctx, initRequest)
	require.NoError(t, err)
	return c
}

func callText(t *testing.T, c *client.Client, name string, arguments map[string]any) *mcp.CallToolResult {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = arguments
	result, err := c.CallTool(context.Background(), request)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	return result
}

func TestToolsAreRegistered(t *testing.T) {
	c := newTestClient(t)
	result, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"excel_list_files",
		"excel_create_workbook",
		"excel_describe_sheets",
		"excel_get_cell_value",
		"excel_set_cell_text",
		"excel_read_range",
	}, names)
}

func TestSetThenGetOverMCP(t *testing.T) {
	t.Setenv("EXCEL_HELPER_BACKEND", "openxml")
	c := newTestClient(t)
	path := filepath.Join(t.TempDir(), "book.xlsx")

	result := callText(t, c, "excel_set_cell_text", map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Notes",
		"cell":             "AA10",
		"text":             "over the wire",
		"createFile":       true,
	})
	require.False(t, result.IsError)

	result = callText(t, c, "excel_get_cell_value", map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Notes",
		"cell":             "AA10",
	})
	require.False(t, result.IsError)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "over the wire", text.Text)
}
