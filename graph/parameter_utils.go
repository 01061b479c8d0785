/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PivotLLM/MCPGraph/global"
)

// mcpParameterPattern defines the valid pattern for MCP parameter names
var mcpParameterPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

var invalidCharPattern = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// graphQueryOptions maps OData system query options to MCP-friendly names
var graphQueryOptions = map[string]string{
	"$select":  "select",
	"$filter":  "filter",
	"$orderby": "orderby",
	"$top":     "top",
	"$skip":    "skip",
	"$expand":  "expand",
	"$search":  "search",
	"$count":   "count",
}

// SanitizeParameterName removes characters that MCP does not allow in parameter names
func SanitizeParameterName(name string) string {
	if alias, ok := graphQueryOptions[strings.ToLower(name)]; ok {
		return alias
	}

	sanitized := invalidCharPattern.ReplaceAllString(name, "")
	if sanitized == "" {
		sanitized = "param"
	}
	if len(sanitized) > 64 {
		sanitized = sanitized[:64]
	}
	return sanitized
}

// MCPParameterName returns the alias if set, otherwise the sanitized name
func MCPParameterName(param *ParameterConfig) string {
	if param.Alias != "" {
		return param.Alias
	}
	return SanitizeParameterName(param.Name)
}

// ParameterNameMapper maps MCP argument names back to Graph parameter names
type ParameterNameMapper struct {
	mcpToOriginal map[string]string
}

// NewParameterNameMapper creates a new parameter name mapper
func NewParameterNameMapper() *ParameterNameMapper {
	return &ParameterNameMapper{mcpToOriginal: make(map[string]string)}
}

// AddMapping records that mcpName stands for originalName
func (m *ParameterNameMapper) AddMapping(mcpName, originalName string) error {
	if existing, exists := m.mcpToOriginal[mcpName]; exists && existing != originalName {
		return fmt.Errorf("MCP parameter name '%s' already mapped to '%s', cannot map to '%s'",
			mcpName, existing, originalName)
	}
	m.mcpToOriginal[mcpName] = originalName
	return nil
}

// OriginalName returns the Graph parameter name for an MCP name
func (m *ParameterNameMapper) OriginalName(mcpName string) string {
	if original, exists := m.mcpToOriginal[mcpName]; exists {
		return original
	}
	return mcpName
}

// MapArgsToOriginal returns a copy of args keyed by Graph parameter names
func (m *ParameterNameMapper) MapArgsToOriginal(args map[string]any) map[string]any {
	mapped := make(map[string]any, len(args))
	for mcpName, value := range args {
		mapped[m.OriginalName(mcpName)] = value
	}
	return mapped
}

// BuildParameterMappings creates a parameter name mapper for an endpoint's parameters
func BuildParameterMappings(params []ParameterConfig, logger global.Logger) (*ParameterNameMapper, error) {
	mapper := NewParameterNameMapper()

	for i := range params {
		param := &params[i]
		mcpName := MCPParameterName(param)

		if logger != nil && param.Alias == "" && mcpName != param.Name {
			logger.Warningf("Auto-sanitized parameter '%s' to '%s' - consider adding explicit alias", param.Name, mcpName)
		}

		if err := mapper.AddMapping(mcpName, param.Name); err != nil {
			return nil, err
		}
	}

	return mapper, nil
}

// ValidateParameterNames checks for invalid or conflicting MCP names
func ValidateParameterNames(params []ParameterConfig) error {
	seen := make(map[string]string)

	for i := range params {
		param := &params[i]
		mcpName := MCPParameterName(param)

		if !mcpParameterPattern.MatchString(mcpName) {
			return fmt.Errorf("parameter '%s' (alias/sanitized: '%s') is not MCP-compliant", param.Name, mcpName)
		}
		if originalName, exists := seen[mcpName]; exists && originalName != param.Name {
			return fmt.Errorf("parameter name conflict: both '%s' and '%s' map to MCP name '%s'",
				originalName, param.Name, mcpName)
		}
		seen[mcpName] = param.Name
	}

	return nil
}
