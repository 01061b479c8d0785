/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeParameterName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"$select", "select"},
		{"$TOP", "top"},
		{"$orderby", "orderby"},
		{"calendarId", "calendarId"},
		{"start.dateTime", "start.dateTime"},
		{"event id", "eventid"},
		{"$$$", "param"},
		{"$custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeParameterName(tt.input))
		})
	}
}

func TestBuildParameterMappings(t *testing.T) {
	params := []ParameterConfig{
		{Name: "$top", Type: ParameterTypeInteger, Location: ParameterLocationQuery},
		{Name: "event-id", Alias: "eventId", Type: ParameterTypeString, Location: ParameterLocationPath},
		{Name: "calendarId", Type: ParameterTypeString, Location: ParameterLocationIdentifier},
	}

	logger := &testLogger{}
	mapper, err := BuildParameterMappings(params, logger)
	require.NoError(t, err)

	mapped := mapper.MapArgsToOriginal(map[string]any{
		"top":        float64(5),
		"eventId":    "evt-1",
		"calendarId": "cal-1",
		"unknown":    true,
	})
	assert.Equal(t, map[string]any{
		"$top":       float64(5),
		"event-id":   "evt-1",
		"calendarId": "cal-1",
		"unknown":    true,
	}, mapped)
	assert.True(t, logger.contains("Auto-sanitized parameter '$top' to 'top'"))
}

func TestValidateParameterNames_Conflict(t *testing.T) {
	params := []ParameterConfig{
		{Name: "$top", Type: ParameterTypeInteger, Location: ParameterLocationQuery},
		{Name: "limit", Alias: "top", Type: ParameterTypeInteger, Location: ParameterLocationQuery},
	}
	err := ValidateParameterNames(params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict")

	_, err = BuildParameterMappings(params, nil)
	assert.Error(t, err)
}

func TestMetrics_Outcomes(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "error", statusClass(0))

	assert.Equal(t, "invalid", errorOutcome(NewValidationError("p", nil, "required", "missing")))
	assert.Equal(t, "ratelimit", errorOutcome(NewAPIError("s", "e", 429, nil, "")))
	assert.Equal(t, "timeout", errorOutcome(NewNetworkError("u", "GET", "m", nil, true, "")))
	assert.Equal(t, "auth", errorOutcome(&AuthenticationError{Service: "s"}))
	assert.Equal(t, "error", errorOutcome(errors.New("other")))

	var m *Metrics
	m.ObserveToolCall("tool", nil)
	m.ObserveRewrites([]string{"calendarId"})
	assert.NotEmpty(t, NewCorrelationID())
}
