/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PivotLLM/MCPGraph/global"
)

// Validator checks tool arguments against endpoint parameter definitions
type Validator struct {
	logger global.Logger
}

// NewValidator creates a new Validator
func NewValidator(logger global.Logger) *Validator {
	return &Validator{logger: logger}
}

// ValidateParameters validates args, keyed by Graph parameter name, and
// fills in defaults for parameters that were not supplied.
func (v *Validator) ValidateParameters(params []ParameterConfig, args map[string]any) error {
	for i := range params {
		param := &params[i]

		if param.Static {
			args[param.Name] = param.Default
			continue
		}

		value, exists := args[param.Name]
		if exists && value == nil {
			delete(args, param.Name)
			exists = false
		}

		if !exists {
			if param.Required {
				return NewValidationError(param.Name, nil, "required", "parameter is required")
			}
			if param.Default != nil {
				args[param.Name] = param.Default
				if v.logger != nil {
					v.logger.Debugf("Applied default value for parameter %s: %v", param.Name, param.Default)
				}
			}
			continue
		}

		if err := v.validateType(param, value); err != nil {
			return err
		}
		if param.Validation != nil {
			if err := v.applyValidationRules(param, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateType validates that a value matches the expected type
func (v *Validator) validateType(param *ParameterConfig, value any) error {
	switch param.Type {
	case ParameterTypeString:
		if _, ok := value.(string); !ok {
			return NewValidationError(param.Name, value, "type", "expected string type")
		}

	case ParameterTypeNumber, ParameterTypeInteger:
		f, ok := toFloat(value)
		if !ok {
			return NewValidationError(param.Name, value, "type", fmt.Sprintf("expected %s type", param.Type))
		}
		if param.Type == ParameterTypeInteger && f != math.Trunc(f) {
			return NewValidationError(param.Name, value, "type", "expected integer type")
		}

	case ParameterTypeBoolean:
		switch b := value.(type) {
		case bool:
		case string:
			if s := strings.ToLower(b); s != "true" && s != "false" {
				return NewValidationError(param.Name, value, "type", "expected boolean type")
			}
		default:
			return NewValidationError(param.Name, value, "type", "expected boolean type")
		}

	case ParameterTypeArray:
		switch value.(type) {
		case []any, []string, []int, []float64:
		default:
			return NewValidationError(param.Name, value, "type", "expected array type")
		}

	case ParameterTypeObject:
		if _, ok := value.(map[string]any); !ok {
			return NewValidationError(param.Name, value, "type", "expected object type")
		}
	}

	return nil
}

// applyValidationRules applies the optional validation block of a parameter
func (v *Validator) applyValidationRules(param *ParameterConfig, value any) error {
	rules := param.Validation

	if str, ok := value.(string); ok {
		if rules.Pattern != "" {
			pattern, err := regexp.Compile(rules.Pattern)
			if err != nil {
				return NewValidationError(param.Name, rules.Pattern, "pattern", "invalid validation pattern")
			}
			if !pattern.MatchString(str) {
				return NewValidationError(param.Name, str, "pattern",
					fmt.Sprintf("value does not match pattern: %s", rules.Pattern))
			}
		}

		length := utf8.RuneCountInString(str)
		if rules.MinLength != nil && length < *rules.MinLength {
			return NewValidationError(param.Name, str, "minLength",
				fmt.Sprintf("value length %d is less than minimum %d", length, *rules.MinLength))
		}
		if rules.MaxLength != nil && length > *rules.MaxLength {
			return NewValidationError(param.Name, str, "maxLength",
				fmt.Sprintf("value length %d exceeds maximum %d", length, *rules.MaxLength))
		}
	}

	if rules.Minimum != nil || rules.Maximum != nil {
		if f, ok := toFloat(value); ok {
			if rules.Minimum != nil && f < *rules.Minimum {
				return NewValidationError(param.Name, value, "minimum",
					fmt.Sprintf("value is less than minimum %v", *rules.Minimum))
			}
			if rules.Maximum != nil && f > *rules.Maximum {
				return NewValidationError(param.Name, value, "maximum",
					fmt.Sprintf("value exceeds maximum %v", *rules.Maximum))
			}
		}
	}

	if len(rules.Enum) > 0 {
		strValue := fmt.Sprintf("%v", value)
		allowed := make([]string, len(rules.Enum))
		found := false
		for i, candidate := range rules.Enum {
			allowed[i] = fmt.Sprintf("%v", candidate)
			if allowed[i] == strValue {
				found = true
			}
		}
		if !found {
			return NewValidationError(param.Name, strValue, "enum",
				fmt.Sprintf("value must be one of: %s", strings.Join(allowed, ", ")))
		}
	}

	return nil
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
