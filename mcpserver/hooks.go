/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/MCPGraph/global"
)

//goland:noinspection GoUnusedParameter
func (s *MCPServer) hookAfterListTools(ctx context.Context, id any, request *mcp.ListToolsRequest, result *mcp.ListToolsResult) {
	if //goland:noinspection GoBoolExpressions
	global.DumpTools && s.debug {
		s.logger.Debugf("%s: %v", request.Request.Method, result.Tools)
	} else {
		s.logger.Infof("%s: %d tools returned", request.Request.Method, len(result.Tools))
	}
}
