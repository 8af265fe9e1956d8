package tools

import (
	"context"
	"fmt"
	"html"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	imcp "github.com/CLangCodes/Excel-Helper/internal/mcp"
)

type ExcelReadRangeArguments struct {
	FileAbsolutePath  string   `zog:"fileAbsolutePath"`
	SheetName         string   `zog:"sheetName"`
	Range             string   `zog:"range"`
	KnownPagingRanges []string `zog:"knownPagingRanges"`
}

var excelReadRangeArgumentsSchema = z.Struct(z.Shape{
	"fileAbsolutePath":  z.String().Test(AbsolutePathTest()).Required(),
	"sheetName":         z.String().Required(),
	"range":             z.String(),
	"knownPagingRanges": z.Slice(z.String()),
})

func AddExcelReadRangeTool(server *server.MCPServer) {
	server.AddTool(mcp.NewTool("excel_read_range",
		mcp.WithDescription("Read values from Excel sheet with pagination."),
		mcp.WithString("fileAbsolutePath",
			mcp.Required(),
			mcp.Description("Absolute path to the Excel file"),
		),
		mcp.WithString("sheetName",
			mcp.Required(),
			mcp.Description("Sheet name in the Excel file"),
		),
		mcp.WithString("range",
			mcp.Description("Range of cells to read in the Excel sheet (e.g., \"A1:C10\"). [default: first paging range]"),
		),
		imcp.WithStringArray("knownPagingRanges",
			mcp.Description("Paging ranges already read. They are left out of the remaining ranges in the response."),
		),
	), handleReadRange)
}

func handleReadRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ExcelReadRangeArguments{}
	if issues := excelReadRangeArgumentsSchema.Parse(request.GetArguments(), &args); len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	config, issues := LoadConfig()
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return readRange(args, config)
}

func readRange(args ExcelReadRangeArguments, config EnvConfig) (*mcp.CallToolResult, error) {
	opts := config.ExcelOptions()
	opts.ReadOnly = true
	workbook, release, err := excel.OpenFile(args.FileAbsolutePath, opts)
	defer release()
	if err != nil {
		return toolResultFromError(err)
	}

	worksheet, err := workbook.FindSheet(args.SheetName)
	if err != nil {
		return toolResultFromError(err)
	}
	defer worksheet.Release()

	strategy, err := excel.NewFixedSizePagingStrategy(config.EXCEL_HELPER_READ_CELLS_LIMIT, worksheet)
	if err != nil {
		return nil, err
	}
	pagingService := excel.NewPagingRangeService(strategy)

	allRanges := pagingService.GetPagingRanges()
	if len(allRanges) == 0 {
		return imcp.NewToolResultInvalidArgumentError("no range available to read"), nil
	}

	currentRange := excel.NormalizeRange(args.Range)
	if currentRange == "" {
		currentRange = allRanges[0]
	}
	if err := pagingService.ValidatePagingRange(currentRange); err != nil {
		return imcp.NewToolResultInvalidArgumentError(err.Error()), nil
	}
	knownRanges := make([]string, 0, len(args.KnownPagingRanges)+1)
	for _, known := range args.KnownPagingRanges {
		knownRanges = append(knownRanges, excel.NormalizeRange(known))
	}
	nextRange := pagingService.FindNextRange(allRanges, currentRange)
	remainingRanges := pagingService.FilterRemainingPagingRanges(allRanges, append(knownRanges, currentRange))

	startCol, startRow, endCol, endRow, err := excel.ParseRange(currentRange)
	if err != nil {
		return nil, err
	}
	table, err := CreateHTMLTableOfValues(worksheet, startCol, startRow, endCol, endRow)
	if err != nil {
		return toolResultFromError(err)
	}

	var result strings.Builder
	result.WriteString("<h2>Read Sheet</h2>\n")
	result.WriteString(*table + "\n")
	result.WriteString("<h2>Metadata</h2>\n")
	result.WriteString("<ul>\n")
	result.WriteString(fmt.Sprintf("<li>backend: %s</li>\n", workbook.GetBackendName()))
	result.WriteString(fmt.Sprintf("<li>sheet name: %s</li>\n", html.EscapeString(args.SheetName)))
	result.WriteString(fmt.Sprintf("<li>read range: %s</li>\n", currentRange))
	result.WriteString(fmt.Sprintf("<li>remaining ranges: %s</li>\n", strings.Join(remainingRanges, ", ")))
	result.WriteString("</ul>\n")
	result.WriteString("<h2>Notice</h2>\n")
	if nextRange != "" {
		result.WriteString("<p>This sheet has more ranges.</p>\n")
		result.WriteString("<p>To read the next range, you should specify 'range' argument as follows.</p>\n")
		result.WriteString(fmt.Sprintf("<code>{ \"range\": \"%s\" }</code>\n", nextRange))
	} else {
		result.WriteString("<p>This is the last range or no more ranges available.</p>\n")
	}
	return mcp.NewToolResultText(result.String()), nil
}
