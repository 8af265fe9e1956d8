package tools

import (
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/goccy/go-yaml"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/CLangCodes/Excel-Helper/internal/cellref"
	"github.com/CLangCodes/Excel-Helper/internal/excel"
	imcp "github.com/CLangCodes/Excel-Helper/internal/mcp"
)

// argumentErrors are failures caused by what the caller asked for. They are
// reported as tool errors instead of failing the request.
var argumentErrors = []error{
	excel.ErrFileNotFound,
	excel.ErrNotWritable,
	excel.ErrSheetNotFound,
	excel.ErrInvalidSheetName,
	cellref.ErrInvalidAddress,
	cellref.ErrInvalidIndex,
}

func toolResultFromError(err error) (*mcp.CallToolResult, error) {
	for _, target := range argumentErrors {
		if errors.Is(err, target) {
			return imcp.NewToolResultInvalidArgumentError(err.Error()), nil
		}
	}
	return nil, err
}

func CreateHTMLTableOfValues(worksheet excel.Worksheet, startCol int, startRow int, endCol int, endRow int) (*string, error) {
	return createHTMLTable(startCol, startRow, endCol, endRow, func(cellRange string) (string, error) {
		return worksheet.GetValue(cellRange)
	})
}

// createHTMLTable creates a table data in HTML format
func createHTMLTable(startCol int, startRow int, endCol int, endRow int, extractor func(cellRange string) (string, error)) (*string, error) {
	var result strings.Builder
	result.WriteString("<table>\n<tr><th></th>")

	for col := startCol; col <= endCol; col++ {
		name, err := cellref.IndexToColumnLetters(col)
		if err != nil {
			return nil, err
		}
		result.WriteString(fmt.Sprintf("<th>%s</th>", name))
	}
	result.WriteString("</tr>\n")

	for row := startRow; row <= endRow; row++ {
		result.WriteString("<tr>")
		result.WriteString(fmt.Sprintf("<th>%d</th>", row))

		for col := startCol; col <= endCol; col++ {
			axis, err := cellref.CoordinatesToAddress(col, row)
			if err != nil {
				return nil, err
			}
			value, err := extractor(axis)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", axis, err)
			}
			result.WriteString(fmt.Sprintf("<td>%s</td>", strings.ReplaceAll(html.EscapeString(value), "\n", "<br>")))
		}
		result.WriteString("</tr>\n")
	}

	result.WriteString("</table>")
	table := result.String()
	return &table, nil
}

func AbsolutePathTest() z.Test[*string] {
	return z.Test[*string]{
		Func: func(path *string, ctx z.Ctx) {
			if !filepath.IsAbs(*path) {
				ctx.AddIssue(ctx.Issue().SetMessage(fmt.Sprintf("Path '%s' is not absolute", *path)))
			}
		},
	}
}

// CellTest rejects anything but a single cell reference such as "B2".
func CellTest() z.Test[*string] {
	return z.Test[*string]{
		Func: func(cell *string, ctx z.Ctx) {
			if err := excel.ValidateCell(*cell); err != nil {
				ctx.AddIssue(ctx.Issue().SetMessage(fmt.Sprintf("Cell '%s' is not a cell reference like B2", *cell)))
			}
		},
	}
}

// MarshalYAML renders v in block style, leaving out empty fields.
func MarshalYAML(v any) (string, error) {
	yamlBytes, err := yaml.MarshalWithOptions(v, yaml.OmitEmpty(), yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return "", err
	}
	return string(yamlBytes), nil
}
