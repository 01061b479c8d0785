/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/MCPGraph/global"
)

// userMessager is implemented by errors that carry a message meant for the MCP client
type userMessager interface {
	UserMessage() string
}

func (s *MCPServer) AddTools() {
	for _, provider := range s.toolProviders {
		for _, toolDef := range provider.RegisterTools() {
			s.srv.AddTool(buildTool(toolDef), s.toolHandler(toolDef))
			s.toolCount++
		}
	}
}

// buildTool converts a tool definition into an mcp.Tool
func buildTool(toolDef global.ToolDefinition) mcp.Tool {
	toolOptions := []mcp.ToolOption{
		mcp.WithDescription(toolDef.Description),
	}

	for _, param := range toolDef.Parameters {
		options := []mcp.PropertyOption{mcp.Description(param.Description)}
		if param.Required {
			options = append(options, mcp.Required())
		}

		var toolOption mcp.ToolOption
		switch param.Type {
		case "string":
			if len(param.Enum) > 0 {
				values := make([]string, len(param.Enum))
				for i, v := range param.Enum {
					values[i] = fmt.Sprint(v)
				}
				options = append(options, mcp.Enum(values...))
			}
			if param.Pattern != "" {
				options = append(options, mcp.Pattern(param.Pattern))
			}
			if def, ok := param.Default.(string); ok {
				options = append(options, mcp.DefaultString(def))
			}
			toolOption = mcp.WithString(param.Name, options...)
		case "number":
			if def, ok := param.Default.(float64); ok {
				options = append(options, mcp.DefaultNumber(def))
			}
			toolOption = mcp.WithNumber(param.Name, options...)
		case "boolean":
			toolOption = mcp.WithBoolean(param.Name, options...)
		case "array":
			toolOption = mcp.WithArray(param.Name, options...)
		case "object":
			toolOption = mcp.WithObject(param.Name, options...)
		default:
			toolOption = mcp.WithString(param.Name, options...)
		}

		toolOptions = append(toolOptions, toolOption)
	}

	hints := toolDef.Hints
	if hints.ReadOnly != nil {
		toolOptions = append(toolOptions, mcp.WithReadOnlyHintAnnotation(*hints.ReadOnly))
	}
	if hints.Destructive != nil {
		toolOptions = append(toolOptions, mcp.WithDestructiveHintAnnotation(*hints.Destructive))
	}
	if hints.Idempotent != nil {
		toolOptions = append(toolOptions, mcp.WithIdempotentHintAnnotation(*hints.Idempotent))
	}
	if hints.OpenWorld != nil {
		toolOptions = append(toolOptions, mcp.WithOpenWorldHintAnnotation(*hints.OpenWorld))
	}

	return mcp.NewTool(toolDef.Name, toolOptions...)
}

// toolHandler adapts a global.ToolHandler to mcp-go. Handler errors become
// error results so the client sees them as tool output rather than a
// protocol failure.
func (s *MCPServer) toolHandler(toolDef global.ToolDefinition) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = context.WithValue(ctx, global.ToolNameKey, toolDef.Name)

		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		result, err := toolDef.Handler(ctx, args)
		if err != nil {
			var um userMessager
			if errors.As(err, &um) {
				return mcp.NewToolResultError(um.UserMessage()), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}
