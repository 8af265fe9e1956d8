package tools

import (
	"context"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	imcp "github.com/CLangCodes/Excel-Helper/internal/mcp"
)

type ExcelListFilesArguments struct {
	DirectoryAbsolutePath string `zog:"directoryAbsolutePath"`
	Pattern               string `zog:"pattern"`
}

var excelListFilesArgumentsSchema = z.Struct(z.Shape{
	"directoryAbsolutePath": z.String().Test(AbsolutePathTest()).Required(),
	"pattern":               z.String().Default("*.xlsx"),
})

func AddExcelListFilesTool(server *server.MCPServer) {
	server.AddTool(mcp.NewTool("excel_list_files",
		mcp.WithDescription("List the files of a directory, one absolute path per line. The directory is not searched recursively."),
		mcp.WithString("directoryAbsolutePath",
			mcp.Required(),
			mcp.Description("Absolute path to the directory"),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern the file names must match [default: *.xlsx]"),
		),
	), handleListFiles)
}

func handleListFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ExcelListFilesArguments{}
	if issues := excelListFilesArgumentsSchema.Parse(request.GetArguments(), &args); len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	files := excel.ListFiles(args.DirectoryAbsolutePath, args.Pattern)
	if len(files) == 0 {
		return mcp.NewToolResultText("No files found"), nil
	}
	return mcp.NewToolResultText(strings.Join(files, "\n")), nil
}
