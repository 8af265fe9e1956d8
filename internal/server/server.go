package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/CLangCodes/Excel-Helper/internal/tools"
)

type ExcelServer struct {
	server *server.MCPServer
	logger *slog.Logger
}

func New(version string, logger *slog.Logger) *ExcelServer {
	s := &ExcelServer{logger: logger}
	s.server = server.NewMCPServer(
		"excel-helper",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	tools.AddExcelListFilesTool(s.server)
	tools.AddExcelCreateWorkbookTool(s.server)
	tools.AddExcelDescribeSheetsTool(s.server)
	tools.AddExcelGetCellValueTool(s.server)
	tools.AddExcelSetCellTextTool(s.server)
	tools.AddExcelReadRangeTool(s.server)
	return s
}

// MCPServer exposes the underlying server, mainly to list its tools.
func (s *ExcelServer) MCPServer() *server.MCPServer {
	return s.server
}

// Start serves MCP over stdin and stdout until stdin closes.
func (s *ExcelServer) Start() error {
	s.logger.Info("serving MCP over stdio")
	return server.ServeStdio(s.server,
		server.WithErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)),
	)
}
