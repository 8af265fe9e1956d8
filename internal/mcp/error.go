package mcp

import (
	"fmt"
	"slices"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
)

func NewToolResultInvalidArgumentError(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Invalid argument: %s", message))
}

// NewToolResultZogIssueMap reports every validation issue, ordered by argument.
func NewToolResultZogIssueMap(errs z.ZogIssueMap) *mcp.CallToolResult {
	issues := z.Issues.SanitizeMap(errs)

	keys := make([]string, 0, len(issues))
	for k := range issues {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var issueResults []mcp.Content
	for _, k := range keys {
		for _, message := range issues[k] {
			issueResults = append(issueResults, mcp.NewTextContent(fmt.Sprintf("Invalid argument: %s: %s", k, message)))
		}
	}

	return &mcp.CallToolResult{
		Content: issueResults,
		IsError: true,
	}
}
