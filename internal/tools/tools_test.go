package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	"github.com/CLangCodes/Excel-Helper/internal/ooxml"
)

type toolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

func callTool(t *testing.T, handler toolHandler, arguments map[string]any) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = arguments
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	var texts []string
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			texts = append(texts, text.Text)
		}
	}
	return strings.Join(texts, "\n"), result.IsError
}

func setTestEnv(t *testing.T, limit string) {
	t.Helper()
	t.Setenv("EXCEL_HELPER_BACKEND", "openxml")
	t.Setenv("EXCEL_HELPER_TEXT_STORAGE", "")
	t.Setenv("EXCEL_HELPER_READ_CELLS_LIMIT", limit)
	t.Setenv("EXCEL_HELPER_LOG_LEVEL", "")
}

func TestLoadConfig(t *testing.T) {
	setTestEnv(t, "")
	t.Setenv("EXCEL_HELPER_BACKEND", "")
	config, issues := LoadConfig()
	require.Empty(t, issues)
	assert.Equal(t, excel.BackendAuto, config.EXCEL_HELPER_BACKEND)
	assert.Equal(t, ooxml.StorageShared, config.EXCEL_HELPER_TEXT_STORAGE)
	assert.Equal(t, 4000, config.EXCEL_HELPER_READ_CELLS_LIMIT)
	assert.Equal(t, "info", config.EXCEL_HELPER_LOG_LEVEL)

	t.Setenv("EXCEL_HELPER_TEXT_STORAGE", "inline")
	t.Setenv("EXCEL_HELPER_LOG_LEVEL", "debug")
	config, issues = LoadConfig()
	require.Empty(t, issues)
	assert.Equal(t, excel.Options{Backend: excel.BackendAuto, TextStorage: ooxml.StorageInline}, config.ExcelOptions())
	assert.Equal(t, "DEBUG", config.LogLevel().String())

	t.Setenv("EXCEL_HELPER_BACKEND", "lotus")
	t.Setenv("EXCEL_HELPER_READ_CELLS_LIMIT", "0")
	_, issues = LoadConfig()
	assert.Contains(t, issues, "EXCEL_HELPER_BACKEND")
	assert.Contains(t, issues, "EXCEL_HELPER_READ_CELLS_LIMIT")
}

func TestSetAndGetCellValueTools(t *testing.T) {
	setTestEnv(t, "")
	path := filepath.Join(t.TempDir(), "book.xlsx")

	text, isError := callTool(t, handleSetCellText, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Report",
		"cell":             "B2",
		"text":             "hello",
	})
	assert.True(t, isError)
	assert.Contains(t, text, "Invalid argument: file not found")

	text, isError = callTool(t, handleSetCellText, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Report",
		"cell":             "B2",
		"text":             "hello",
		"createFile":       true,
	})
	require.False(t, isError, text)

	text, isError = callTool(t, handleGetCellValue, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Report",
		"cell":             "B2",
	})
	require.False(t, isError, text)
	assert.Equal(t, "hello", text)

	text, isError = callTool(t, handleGetCellValue, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Missing",
		"cell":             "B2",
	})
	assert.True(t, isError)
	assert.Contains(t, text, "sheet not found")
}

func TestArgumentValidation(t *testing.T) {
	setTestEnv(t, "")
	text, isError := callTool(t, handleGetCellValue, map[string]any{
		"fileAbsolutePath": "book.xlsx",
		"sheetName":        "Sheet1",
		"cell":             "2B",
	})
	assert.True(t, isError)
	assert.Contains(t, text, "Invalid argument: cell: Cell '2B' is not a cell reference like B2")
	assert.Contains(t, text, "Invalid argument: fileAbsolutePath: Path 'book.xlsx' is not absolute")
}

func TestCreateWorkbookTool(t *testing.T) {
	setTestEnv(t, "")
	path := filepath.Join(t.TempDir(), "new.xlsx")

	text, isError := callTool(t, handleCreateWorkbook, map[string]any{"fileAbsolutePath": path})
	require.False(t, isError, text)
	description, err := DescribeSheets(path, EnvConfig{EXCEL_HELPER_BACKEND: excel.BackendOpenXML, EXCEL_HELPER_READ_CELLS_LIMIT: 10})
	require.NoError(t, err)
	require.Len(t, description.Sheets, 1)
	assert.Equal(t, "Sheet1", description.Sheets[0].Name)

	text, isError = callTool(t, handleCreateWorkbook, map[string]any{"fileAbsolutePath": path})
	assert.True(t, isError)
	assert.Contains(t, text, "file already exists")

	text, isError = callTool(t, handleCreateWorkbook, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Fresh",
		"overwrite":        true,
	})
	require.False(t, isError, text)
	description, err = DescribeSheets(path, EnvConfig{EXCEL_HELPER_BACKEND: excel.BackendOpenXML, EXCEL_HELPER_READ_CELLS_LIMIT: 10})
	require.NoError(t, err)
	assert.Equal(t, "Fresh", description.Sheets[0].Name)
}

func writeGrid(t *testing.T, path string) {
	t.Helper()
	config := EnvConfig{EXCEL_HELPER_BACKEND: excel.BackendOpenXML}
	for _, cell := range []string{"A1", "B1", "A2", "B2", "A3"} {
		require.NoError(t, SetCellText(path, "Grid", cell, "v"+cell, true, config))
	}
	require.NoError(t, SetCellText(path, "Grid", "B3", "a<b", false, config))
}

func TestDescribeSheetsTool(t *testing.T) {
	setTestEnv(t, "4")
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	writeGrid(t, path)

	text, isError := callTool(t, handleDescribeSheets, map[string]any{"fileAbsolutePath": path})
	require.False(t, isError, text)
	assert.Contains(t, text, "backend: openxml")
	assert.Contains(t, text, "name: Grid")
	assert.Contains(t, text, "usedRange: A1:B3")
	assert.Contains(t, text, "A1:B2")
	assert.Contains(t, text, "A3:B3")
}

func TestReadRangeTool(t *testing.T) {
	setTestEnv(t, "4")
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	writeGrid(t, path)

	text, isError := callTool(t, handleReadRange, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "grid",
	})
	require.False(t, isError, text)
	assert.Contains(t, text, "<tr><th></th><th>A</th><th>B</th></tr>")
	assert.Contains(t, text, "<tr><th>2</th><td>vA2</td><td>vB2</td></tr>")
	assert.NotContains(t, text, "vA3")
	assert.Contains(t, text, `<code>{ "range": "A3:B3" }</code>`)
	assert.Contains(t, text, "<li>remaining ranges: A3:B3</li>")

	text, isError = callTool(t, handleReadRange, map[string]any{
		"fileAbsolutePath":  path,
		"sheetName":         "Grid",
		"range":             "A3:B3",
		"knownPagingRanges": []any{"A1:B2"},
	})
	require.False(t, isError, text)
	assert.Contains(t, text, "<td>vA3</td><td>a&lt;b</td>")
	assert.Contains(t, text, "This is the last range")
	assert.Contains(t, text, "<li>remaining ranges: </li>")

	text, isError = callTool(t, handleReadRange, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Grid",
		"range":            "$a$1:$b$2",
	})
	require.False(t, isError, text)
	assert.Contains(t, text, `<code>{ "range": "A3:B3" }</code>`)
	assert.Contains(t, text, "<li>remaining ranges: A3:B3</li>")

	text, isError = callTool(t, handleReadRange, map[string]any{
		"fileAbsolutePath":  path,
		"sheetName":         "Grid",
		"range":             "a3:b3",
		"knownPagingRanges": []any{"$A$1:$B$2"},
	})
	require.False(t, isError, text)
	assert.Contains(t, text, "<li>remaining ranges: </li>")

	text, isError = callTool(t, handleReadRange, map[string]any{
		"fileAbsolutePath": path,
		"sheetName":        "Grid",
		"range":            "A1:B3",
	})
	assert.True(t, isError)
	assert.Contains(t, text, "exceeding page size")
}

func TestListFilesTool(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.xlsx", "b.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	text, isError := callTool(t, handleListFiles, map[string]any{"directoryAbsolutePath": dir})
	require.False(t, isError, text)
	assert.Equal(t, filepath.Join(dir, "a.xlsx"), text)

	text, isError = callTool(t, handleListFiles, map[string]any{
		"directoryAbsolutePath": filepath.Join(dir, "missing"),
		"pattern":               "*",
	})
	assert.False(t, isError)
	assert.Equal(t, "No files found", text)
}
