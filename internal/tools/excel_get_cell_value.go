package tools

import (
	"context"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	imcp "github.com/CLangCodes/Excel-Helper/internal/mcp"
)

type ExcelGetCellValueArguments struct {
	FileAbsolutePath string `zog:"fileAbsolutePath"`
	SheetName        string `zog:"sheetName"`
	Cell             string `zog:"cell"`
}

var excelGetCellValueArgumentsSchema = z.Struct(z.Shape{
	"fileAbsolutePath": z.String().Test(AbsolutePathTest()).Required(),
	"sheetName":        z.String().Required(),
	"cell":             z.String().Test(CellTest()).Required(),
})

func AddExcelGetCellValueTool(server *server.MCPServer) {
	server.AddTool(mcp.NewTool("excel_get_cell_value",
		mcp.WithDescription("Get the displayed text of one cell. Shared strings and booleans are decoded; an empty cell returns an empty text."),
		mcp.WithString("fileAbsolutePath",
			mcp.Required(),
			mcp.Description("Absolute path to the Excel file"),
		),
		mcp.WithString("sheetName",
			mcp.Required(),
			mcp.Description("Sheet name in the Excel file"),
		),
		mcp.WithString("cell",
			mcp.Required(),
			mcp.Description("Cell reference (e.g., \"B2\")"),
		),
	), handleGetCellValue)
}

func handleGetCellValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ExcelGetCellValueArguments{}
	if issues := excelGetCellValueArgumentsSchema.Parse(request.GetArguments(), &args); len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	config, issues := LoadConfig()
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	value, err := GetCellValue(args.FileAbsolutePath, args.SheetName, args.Cell, config)
	if err != nil {
		return toolResultFromError(err)
	}
	return mcp.NewToolResultText(value), nil
}

// GetCellValue opens the workbook read-only and returns the text of one cell.
func GetCellValue(fileAbsolutePath string, sheetName string, cell string, config EnvConfig) (string, error) {
	opts := config.ExcelOptions()
	opts.ReadOnly = true
	workbook, release, err := excel.OpenFile(fileAbsolutePath, opts)
	defer release()
	if err != nil {
		return "", err
	}
	return excel.GetCellValue(workbook, sheetName, cell)
}
