package tools

import (
	"context"
	"errors"
	"fmt"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	imcp "github.com/CLangCodes/Excel-Helper/internal/mcp"
)

type ExcelSetCellTextArguments struct {
	FileAbsolutePath string `zog:"fileAbsolutePath"`
	SheetName        string `zog:"sheetName"`
	Cell             string `zog:"cell"`
	Text             string `zog:"text"`
	CreateFile       bool   `zog:"createFile"`
}

var excelSetCellTextArgumentsSchema = z.Struct(z.Shape{
	"fileAbsolutePath": z.String().Test(AbsolutePathTest()).Required(),
	"sheetName":        z.String().Required(),
	"cell":             z.String().Test(CellTest()).Required(),
	"text":             z.String(),
	"createFile":       z.Bool().Default(false),
})

func AddExcelSetCellTextTool(server *server.MCPServer) {
	server.AddTool(mcp.NewTool("excel_set_cell_text",
		mcp.WithDescription("Store text in one cell and save the file. The sheet, row and cell are created when missing."),
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
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to store in the cell"),
		),
		mcp.WithBoolean("createFile",
			mcp.Description("Create the file when it does not exist [default: false]"),
		),
	), handleSetCellText)
}

func handleSetCellText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ExcelSetCellTextArguments{}
	if issues := excelSetCellTextArgumentsSchema.Parse(request.GetArguments(), &args); len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	config, issues := LoadConfig()
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	if err := SetCellText(args.FileAbsolutePath, args.SheetName, args.Cell, args.Text, args.CreateFile, config); err != nil {
		return toolResultFromError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s!%s updated, file saved successfully", args.SheetName, args.Cell)), nil
}

// SetCellText stores text in one cell and saves the workbook. With
// createFile, a missing file is created holding just that sheet.
func SetCellText(fileAbsolutePath string, sheetName string, cell string, text string, createFile bool, config EnvConfig) error {
	opts := config.ExcelOptions()
	workbook, release, err := excel.OpenFile(fileAbsolutePath, opts)
	if errors.Is(err, excel.ErrFileNotFound) && createFile {
		release()
		workbook, release, err = excel.CreateFile(fileAbsolutePath, sheetName, opts)
	}
	defer release()
	if err != nil {
		return err
	}
	if err := excel.SetCellText(workbook, sheetName, cell, text); err != nil {
		return err
	}
	return workbook.Save()
}
