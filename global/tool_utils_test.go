/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolName(t *testing.T) {
	tests := []struct {
		name         string
		toolName     string
		wantService  string
		wantEndpoint string
		wantErr      bool
	}{
		{
			name:         "calendar tool with hyphenated endpoint",
			toolName:     "microsoft365_list-calendar-events",
			wantService:  "microsoft365",
			wantEndpoint: "list-calendar-events",
		},
		{
			name:         "underscores in endpoint",
			toolName:     "microsoft365_mail_read_inbox",
			wantService:  "microsoft365",
			wantEndpoint: "mail_read_inbox",
		},
		{name: "empty tool name", toolName: "", wantErr: true},
		{name: "no underscore", toolName: "invalidtoolname", wantErr: true},
		{name: "underscore at start", toolName: "_endpoint", wantErr: true},
		{name: "underscore at end", toolName: "service_", wantErr: true},
		{name: "only underscore", toolName: "_", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotService, gotEndpoint, err := ParseToolName(tt.toolName)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantService, gotService)
			assert.Equal(t, tt.wantEndpoint, gotEndpoint)
		})
	}
}

func TestBuildToolName_RoundTrip(t *testing.T) {
	name := BuildToolName("microsoft365", "get-calendar-event")
	assert.Equal(t, "microsoft365_get-calendar-event", name)

	service, endpoint, err := ParseToolName(name)
	require.NoError(t, err)
	assert.Equal(t, "microsoft365", service)
	assert.Equal(t, "get-calendar-event", endpoint)
}

func TestDefaultHints(t *testing.T) {
	get := DefaultHints("get")
	assert.True(t, *get.ReadOnly)
	assert.True(t, *get.Idempotent)
	assert.False(t, *get.Destructive)
	assert.True(t, *get.OpenWorld)

	del := DefaultHints("DELETE")
	assert.True(t, *del.Destructive)
	assert.False(t, *del.ReadOnly)

	post := DefaultHints("POST")
	assert.False(t, *post.ReadOnly)
	assert.False(t, *post.Idempotent)

	merged := post.Merge(ToolHints{Idempotent: BoolPtr(true)})
	assert.True(t, *merged.Idempotent)
	assert.False(t, *merged.ReadOnly)
}

func TestParameter_EnhancedDescription(t *testing.T) {
	p := Parameter{
		Description: "Number of events",
		Default:     10,
		Enum:        []interface{}{10, 25, 50},
	}
	assert.Equal(t, "Number of events (default: 10) (valid: [10 25 50])", p.EnhancedDescription())
}
