/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package global

import (
	"fmt"
	"strings"
)

// ParseToolName splits a tool name of the form {serviceKey}_{endpointId}.
// Only the first underscore separates the two, so endpoint IDs may contain
// underscores and hyphens: "microsoft365_list-calendar-events" ->
// ("microsoft365", "list-calendar-events").
func ParseToolName(toolName string) (serviceName string, endpointID string, err error) {
	if toolName == "" {
		return "", "", fmt.Errorf("tool name cannot be empty")
	}

	serviceName, endpointID, found := strings.Cut(toolName, "_")
	if !found {
		return "", "", fmt.Errorf("invalid tool name format: %s (expected format: serviceName_endpointId)", toolName)
	}

	if serviceName == "" {
		return "", "", fmt.Errorf("service name cannot be empty in tool: %s", toolName)
	}

	if endpointID == "" {
		return "", "", fmt.Errorf("endpoint ID cannot be empty in tool: %s", toolName)
	}

	return serviceName, endpointID, nil
}

// BuildToolName constructs a tool name from service key and endpoint ID
func BuildToolName(serviceName, endpointID string) string {
	return fmt.Sprintf("%s_%s", serviceName, endpointID)
}
