/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package global

import (
	"context"
	"fmt"
)

// Parameter describes one argument of a tool
type Parameter struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Required    bool          `json:"required"`
	Type        string        `json:"type"`    // "string", "number", "boolean", "array", "object"
	Default     interface{}   `json:"default"` // Default value
	Enum        []interface{} `json:"enum"`    // Valid values
	Pattern     string        `json:"pattern"` // Validation pattern
	Format      string        `json:"format"`  // "date", "email", "uri", etc.
}

// EnhancedDescription appends default, enum, format and pattern hints to the description
func (p Parameter) EnhancedDescription() string {
	desc := p.Description

	if p.Default != nil {
		desc += fmt.Sprintf(" (default: %v)", p.Default)
	}

	if len(p.Enum) > 0 && len(p.Enum) <= 10 {
		desc += fmt.Sprintf(" (valid: %v)", p.Enum)
	} else if len(p.Enum) > 10 {
		desc += fmt.Sprintf(" (valid values: %d options available)", len(p.Enum))
	}

	if p.Format != "" {
		desc += fmt.Sprintf(" (format: %s)", p.Format)
	}

	if p.Pattern != "" {
		desc += fmt.Sprintf(" (pattern: %s)", p.Pattern)
	}

	return desc
}

// ToolDefinition represents the structure of a tool
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []Parameter
	Hints       ToolHints
	Handler     ToolHandler
}

// ToolHandler executes a tool call. The context carries cancellation from the MCP request.
type ToolHandler func(ctx context.Context, options map[string]any) (string, error)

// ToolProvider defines an interface for providing tools
type ToolProvider interface {
	RegisterTools() []ToolDefinition
}

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// ToolNameKey is the key used to store the MCP tool name in request contexts
	ToolNameKey ContextKey = "tool_name"
	// CorrelationIDKey is the key used to store the request correlation ID
	CorrelationIDKey ContextKey = "correlation_id"
)
