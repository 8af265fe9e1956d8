package tools

import (
	"context"
	"fmt"
	"os"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	imcp "github.com/CLangCodes/Excel-Helper/internal/mcp"
)

type ExcelCreateWorkbookArguments struct {
	FileAbsolutePath string `zog:"fileAbsolutePath"`
	SheetName        string `zog:"sheetName"`
	Overwrite        bool   `zog:"overwrite"`
}

var excelCreateWorkbookArgumentsSchema = z.Struct(z.Shape{
	"fileAbsolutePath": z.String().Test(AbsolutePathTest()).Required(),
	"sheetName":        z.String().Default("Sheet1"),
	"overwrite":        z.Bool().Default(false),
})

func AddExcelCreateWorkbookTool(server *server.MCPServer) {
	server.AddTool(mcp.NewTool("excel_create_workbook",
		mcp.WithDescription("Create a new Excel file with one empty sheet"),
		mcp.WithString("fileAbsolutePath",
			mcp.Required(),
			mcp.Description("Absolute path of the Excel file to create"),
		),
		mcp.WithString("sheetName",
			mcp.Description("Name of the first sheet [default: Sheet1]"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace the file when it already exists [default: false]"),
		),
	), handleCreateWorkbook)
}

func handleCreateWorkbook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ExcelCreateWorkbookArguments{}
	if issues := excelCreateWorkbookArgumentsSchema.Parse(request.GetArguments(), &args); len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	config, issues := LoadConfig()
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	if _, err := os.Stat(args.FileAbsolutePath); err == nil && !args.Overwrite {
		return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("file already exists: %s", args.FileAbsolutePath)), nil
	}
	if err := CreateWorkbook(args.FileAbsolutePath, args.SheetName, config); err != nil {
		return toolResultFromError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created %s", args.FileAbsolutePath)), nil
}

// CreateWorkbook writes a new workbook holding one empty sheet, replacing any
// file at the path.
func CreateWorkbook(fileAbsolutePath string, sheetName string, config EnvConfig) error {
	_, release, err := excel.CreateFile(fileAbsolutePath, sheetName, config.ExcelOptions())
	defer release()
	return err
}
