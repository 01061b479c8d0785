/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventParams = []ParameterConfig{
	{Name: "event-id", Type: ParameterTypeString, Location: ParameterLocationPath, Required: true},
	{Name: "calendarId", Type: ParameterTypeString, Location: ParameterLocationIdentifier},
}

func TestMapper_BuildPath(t *testing.T) {
	logger := &testLogger{}
	mapper := NewMapper(logger, nil)

	tests := []struct {
		name    string
		path    string
		args    map[string]any
		want    string
		applied []string
	}{
		{
			name: "placeholder only",
			path: "/me/events/{event-id}",
			args: map[string]any{"event-id": "AAMkAGI2TG93AAA="},
			want: "/me/events/AAMkAGI2TG93AAA%3D",
		},
		{
			name:    "placeholder then identifier",
			path:    "/me/events/{event-id}",
			args:    map[string]any{"event-id": "event-123", "calendarId": "calendar-456"},
			want:    "/me/calendars/calendar-456/events/event-123",
			applied: []string{"calendarId"},
		},
		{
			name:    "both values encoded",
			path:    "/me/events/{event-id}",
			args:    map[string]any{"event-id": "a/b", "calendarId": "team@contoso.com"},
			want:    "/me/calendars/team%40contoso.com/events/a%2Fb",
			applied: []string{"calendarId"},
		},
		{
			name: "empty identifier ignored",
			path: "/me/events/{event-id}",
			args: map[string]any{"event-id": "e1", "calendarId": ""},
			want: "/me/events/e1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied, err := mapper.BuildPath(tt.path, eventParams, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.applied, applied)
		})
	}

	assert.True(t, logger.contains("Rewrote /me/events/event-123 to /me/calendars/calendar-456/events/event-123 using calendarId"))
}

func TestMapper_BuildPath_UndeclaredIdentifierIgnored(t *testing.T) {
	mapper := NewMapper(nil, nil)
	params := []ParameterConfig{{Name: "$top", Type: ParameterTypeInteger, Location: ParameterLocationQuery}}

	got, applied, err := mapper.BuildPath("/me/events", params, map[string]any{"calendarId": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "/me/events", got)
	assert.Empty(t, applied)
}

func TestMapper_BuildPath_MissingPlaceholderValue(t *testing.T) {
	mapper := NewMapper(nil, nil)

	_, _, err := mapper.BuildPath("/me/events/{event-id}", eventParams, map[string]any{"calendarId": "abc"})
	require.Error(t, err)

	valErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "event-id", valErr.Parameter)
	assert.Equal(t, "required", valErr.Rule)
}

func TestMapper_QueryAndHeaders(t *testing.T) {
	mapper := NewMapper(nil, nil)
	params := []ParameterConfig{
		{Name: "$top", Type: ParameterTypeInteger, Location: ParameterLocationQuery},
		{Name: "$select", Type: ParameterTypeArray, Location: ParameterLocationQuery},
		{Name: "$filter", Type: ParameterTypeString, Location: ParameterLocationQuery},
		{Name: "Prefer", Type: ParameterTypeString, Location: ParameterLocationHeader},
		{Name: "calendarId", Type: ParameterTypeString, Location: ParameterLocationIdentifier},
	}
	args := map[string]any{
		"$top":       float64(25),
		"$select":    []any{"id", "subject"},
		"Prefer":     `outlook.timezone="UTC"`,
		"calendarId": "abc",
	}

	query := mapper.BuildQuery(params, args)
	assert.Equal(t, "25", query.Get("$top"))
	assert.Equal(t, "id,subject", query.Get("$select"))
	assert.False(t, query.Has("$filter"))
	assert.False(t, query.Has("calendarId"))

	header := http.Header{}
	mapper.ApplyHeaders(header, params, args)
	assert.Equal(t, `outlook.timezone="UTC"`, header.Get("Prefer"))
}

func TestMapper_BuildRequestBody(t *testing.T) {
	mapper := NewMapper(nil, nil)
	params := []ParameterConfig{
		{Name: "subject", Type: ParameterTypeString, Location: ParameterLocationBody},
		{Name: "start.dateTime", Type: ParameterTypeString, Location: ParameterLocationBody},
		{Name: "start.timeZone", Type: ParameterTypeString, Location: ParameterLocationBody},
		{Name: "location.displayName", Type: ParameterTypeString, Location: ParameterLocationBody},
		{Name: "calendarId", Type: ParameterTypeString, Location: ParameterLocationIdentifier},
	}

	body := mapper.BuildRequestBody(params, map[string]any{
		"subject":        "Planning",
		"start.dateTime": "2026-03-02T09:00:00",
		"start.timeZone": "UTC",
		"calendarId":     "abc",
	})

	assert.Equal(t, map[string]any{
		"subject": "Planning",
		"start": map[string]any{
			"dateTime": "2026-03-02T09:00:00",
			"timeZone": "UTC",
		},
	}, body)

	assert.Nil(t, mapper.BuildRequestBody(params, map[string]any{"calendarId": "abc"}))
}

func TestMapper_TransformResponse(t *testing.T) {
	mapper := NewMapper(nil, nil)
	data := map[string]any{
		"value": []any{
			map[string]any{"id": "1", "subject": "A", "start": map[string]any{"dateTime": "2026-01-01T10:00:00"}},
			map[string]any{"id": "2", "subject": "B", "start": map[string]any{"dateTime": "2026-01-02T10:00:00"}},
		},
	}

	out, err := mapper.TransformResponse(data, "[.value[] | {id, start: .start.dateTime}]")
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"id": "1", "start": "2026-01-01T10:00:00"},
		map[string]any{"id": "2", "start": "2026-01-02T10:00:00"},
	}, out)

	out, err = mapper.TransformResponse(data, "")
	require.NoError(t, err)
	assert.Equal(t, data, out)

	_, err = mapper.TransformResponse(data, ".value[")
	var transformErr *TransformationError
	require.ErrorAs(t, err, &transformErr)
	assert.Equal(t, "invalid expression", transformErr.Message)

	_, err = mapper.TransformResponse(data, "empty")
	require.ErrorAs(t, err, &transformErr)
	assert.Equal(t, "no output", transformErr.Message)

	_, err = mapper.TransformResponse(data, `error("boom")`)
	require.ErrorAs(t, err, &transformErr)
	assert.Equal(t, "execution failed", transformErr.Message)
}
