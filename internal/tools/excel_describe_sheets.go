package tools

import (
	"context"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	imcp "github.com/CLangCodes/Excel-Helper/internal/mcp"
)

type ExcelDescribeSheetsArguments struct {
	FileAbsolutePath string `zog:"fileAbsolutePath"`
}

var excelDescribeSheetsArgumentsSchema = z.Struct(z.Shape{
	"fileAbsolutePath": z.String().Test(AbsolutePathTest()).Required(),
})

func AddExcelDescribeSheetsTool(server *server.MCPServer) {
	server.AddTool(mcp.NewTool("excel_describe_sheets",
		mcp.WithDescription("List all sheet information of specified Excel file"),
		mcp.WithString("fileAbsolutePath",
			mcp.Required(),
			mcp.Description("Absolute path to the Excel file"),
		),
	), handleDescribeSheets)
}

func handleDescribeSheets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ExcelDescribeSheetsArguments{}
	issues := excelDescribeSheetsArgumentsSchema.Parse(request.GetArguments(), &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	config, issues := LoadConfig()
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	description, err := DescribeSheets(args.FileAbsolutePath, config)
	if err != nil {
		return toolResultFromError(err)
	}
	text, err := MarshalYAML(description)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

type WorkbookDescription struct {
	File    string                 `yaml:"file"`
	Backend string                 `yaml:"backend"`
	Sheets  []WorksheetDescription `yaml:"sheets"`
}

type WorksheetDescription struct {
	Name         string   `yaml:"name"`
	UsedRange    string   `yaml:"usedRange"`
	PagingRanges []string `yaml:"pagingRanges"`
}

// DescribeSheets lists the sheets of a workbook with their used range and
// the ranges excel_read_range reads them in.
func DescribeSheets(fileAbsolutePath string, config EnvConfig) (*WorkbookDescription, error) {
	opts := config.ExcelOptions()
	opts.ReadOnly = true
	workbook, release, err := excel.OpenFile(fileAbsolutePath, opts)
	defer release()
	if err != nil {
		return nil, err
	}

	sheetList, err := workbook.GetSheets()
	if err != nil {
		return nil, err
	}
	worksheets := make([]WorksheetDescription, len(sheetList))
	for i, sheet := range sheetList {
		defer sheet.Release()
		name, err := sheet.Name()
		if err != nil {
			return nil, err
		}
		usedRange, err := sheet.GetDimention()
		if err != nil {
			return nil, err
		}
		var pagingRanges []string
		strategy, err := excel.NewFixedSizePagingStrategy(config.EXCEL_HELPER_READ_CELLS_LIMIT, sheet)
		if err == nil {
			pagingService := excel.NewPagingRangeService(strategy)
			pagingRanges = pagingService.GetPagingRanges()
		}
		worksheets[i] = WorksheetDescription{
			Name:         name,
			UsedRange:    usedRange,
			PagingRanges: pagingRanges,
		}
	}
	return &WorkbookDescription{
		File:    fileAbsolutePath,
		Backend: workbook.GetBackendName(),
		Sheets:  worksheets,
	}, nil
}
