/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/PivotLLM/MCPGraph/global"
	"github.com/PivotLLM/MCPGraph/pathrewrite"
)

// Mapper turns validated tool arguments into the parts of a Graph request
type Mapper struct {
	logger   global.Logger
	rewriter *pathrewrite.Rewriter
}

// NewMapper creates a Mapper. A nil rewriter means pathrewrite.Default().
func NewMapper(logger global.Logger, rewriter *pathrewrite.Rewriter) *Mapper {
	if rewriter == nil {
		rewriter = pathrewrite.Default()
	}
	return &Mapper{
		logger:   logger,
		rewriter: rewriter,
	}
}

// BuildPath substitutes {placeholder} path parameters and then qualifies the
// result with any supplied identifier parameters. It returns the final path
// and the identifier parameters that changed it.
func (m *Mapper) BuildPath(path string, params []ParameterConfig, args map[string]any) (string, []string, error) {
	identifiers := make(map[string]any)

	for i := range params {
		param := &params[i]

		switch param.Location {
		case ParameterLocationPath:
			value, ok := pathrewrite.Supplied(args, param.Name)
			if !ok {
				return "", nil, NewValidationError(param.Name, nil, "required",
					fmt.Sprintf("path parameter is required by %s", path))
			}
			path = strings.ReplaceAll(path, "{"+param.Name+"}", pathrewrite.EncodePathSegment(value))

		case ParameterLocationIdentifier:
			if value, exists := args[param.Name]; exists {
				identifiers[param.Name] = value
			}
		}
	}

	final, applied := m.rewriter.Explain(path, identifiers)
	if m.logger != nil && len(applied) > 0 {
		m.logger.Debugf("Rewrote %s to %s using %s", path, final, strings.Join(applied, ", "))
	}

	return final, applied, nil
}

// BuildQuery collects query parameters
func (m *Mapper) BuildQuery(params []ParameterConfig, args map[string]any) url.Values {
	query := url.Values{}
	for i := range params {
		param := &params[i]
		if param.Location != ParameterLocationQuery {
			continue
		}
		if value, ok := args[param.Name]; ok && value != nil {
			query.Set(param.Name, formatValue(value))
		}
	}
	return query
}

// ApplyHeaders adds header parameters to a request
func (m *Mapper) ApplyHeaders(header http.Header, params []ParameterConfig, args map[string]any) {
	for i := range params {
		param := &params[i]
		if param.Location != ParameterLocationHeader {
			continue
		}
		if value, ok := args[param.Name]; ok && value != nil {
			header.Set(param.Name, formatValue(value))
		}
	}
}

// BuildRequestBody builds the JSON body from body parameters. Dotted names
// such as "start.dateTime" produce nested objects. It returns nil when no
// body parameter is present.
func (m *Mapper) BuildRequestBody(params []ParameterConfig, args map[string]any) map[string]any {
	body := make(map[string]any)

	for i := range params {
		param := &params[i]
		if param.Location != ParameterLocationBody {
			continue
		}
		if value, ok := args[param.Name]; ok && value != nil {
			setNestedValue(body, param.Name, value)
		}
	}

	if len(body) == 0 {
		return nil
	}
	return body
}

// setNestedValue sets a value in a nested map using dot-notation keys
func setNestedValue(body map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	current := body
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// TransformResponse applies a jq expression to decoded JSON
func (m *Mapper) TransformResponse(data any, transform string) (any, error) {
	if transform == "" {
		return data, nil
	}

	query, err := gojq.Parse(transform)
	if err != nil {
		return nil, &TransformationError{Expression: transform, Message: "invalid expression", Cause: err}
	}

	iter := query.Run(data)
	v, ok := iter.Next()
	if !ok {
		return nil, &TransformationError{Expression: transform, Message: "no output"}
	}
	if err, isErr := v.(error); isErr {
		return nil, &TransformationError{Expression: transform, Message: "execution failed", Cause: err}
	}
	return v, nil
}

// formatValue renders scalars the way Graph expects them in queries and headers
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
