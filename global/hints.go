/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package global

import "strings"

// ToolHints carries the MCP tool annotations. A nil field means "unset".
type ToolHints struct {
	ReadOnly    *bool
	Destructive *bool
	Idempotent  *bool
	OpenWorld   *bool
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// DefaultHints derives annotations from the HTTP method of a Graph endpoint.
// Every Graph call reaches an external system, so OpenWorld is always true.
//
//	GET/HEAD     read-only, idempotent
//	PUT          idempotent
//	DELETE       destructive
//	POST/PATCH   none of the above
func DefaultHints(httpMethod string) ToolHints {
	readOnly, destructive, idempotent := false, false, false

	switch strings.ToUpper(httpMethod) {
	case "GET", "HEAD":
		readOnly, idempotent = true, true
	case "PUT":
		idempotent = true
	case "DELETE":
		destructive = true
	}

	return ToolHints{
		ReadOnly:    BoolPtr(readOnly),
		Destructive: BoolPtr(destructive),
		Idempotent:  BoolPtr(idempotent),
		OpenWorld:   BoolPtr(true),
	}
}

// Merge returns h with every non-nil field of override applied
func (h ToolHints) Merge(override ToolHints) ToolHints {
	if override.ReadOnly != nil {
		h.ReadOnly = override.ReadOnly
	}
	if override.Destructive != nil {
		h.Destructive = override.Destructive
	}
	if override.Idempotent != nil {
		h.Idempotent = override.Idempotent
	}
	if override.OpenWorld != nil {
		h.OpenWorld = override.OpenWorld
	}
	return h
}
