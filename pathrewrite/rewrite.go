/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

// Package pathrewrite qualifies Microsoft Graph collection paths with
// caller-supplied identifiers.
//
// Many Graph collections have a default form under /me and a qualified form
// that addresses a specific container: /me/events lists the default calendar,
// /me/calendars/{id}/events lists a named one. Tools are declared against the
// default path; when the caller supplies the container identifier the path is
// rewritten to the qualified form, and item paths beneath the collection keep
// their suffix:
//
//	/me/events                 + calendarId=abc -> /me/calendars/abc/events
//	/me/events/event-123       + calendarId=abc -> /me/calendars/abc/events/event-123
//	/me/messages               + calendarId=abc -> /me/messages
//
// Identifier values are percent-encoded with EncodePathSegment. Ordinary
// {placeholder} substitution must already have happened before Rewrite is
// called. Rewrite is not idempotent: feeding it an already qualified path with
// the same parameters is outside its contract.
//
// Everything here is a pure function over an immutable Table and may be used
// from any number of goroutines.
package pathrewrite

import (
	"fmt"
	"reflect"
)

// DefaultTable holds the identifier-qualified collections known to the server
var DefaultTable = MustNewTable(
	Rule{Param: "calendarId", Collection: "/me/events", Template: "/me/calendars/{id}/events"},
	Rule{Param: "mailFolderId", Collection: "/me/messages", Template: "/me/mailFolders/{id}/messages"},
	Rule{Param: "contactFolderId", Collection: "/me/contacts", Template: "/me/contactFolders/{id}/contacts"},
)

var defaultRewriter = New(DefaultTable)

// Rewriter applies a Table to request paths
type Rewriter struct {
	table *Table
}

// New returns a Rewriter over table. A nil table rewrites nothing.
func New(table *Table) *Rewriter {
	return &Rewriter{table: table}
}

// Default returns the Rewriter over DefaultTable
func Default() *Rewriter {
	return defaultRewriter
}

// Table returns the rule table in use
func (r *Rewriter) Table() *Table {
	return r.table
}

// Rewrite returns basePath qualified by every supplied identifier parameter in
// params. basePath itself is never modified; when no registered parameter is
// supplied the result equals basePath.
func (r *Rewriter) Rewrite(basePath string, params map[string]any) string {
	path, _ := r.Explain(basePath, params)
	return path
}

// Explain is Rewrite that also reports which parameters changed the path
func (r *Rewriter) Explain(basePath string, params map[string]any) (string, []string) {
	path := basePath
	var applied []string

	if r == nil || r.table == nil {
		return path, nil
	}

	for _, rule := range r.table.rules {
		value, ok := Supplied(params, rule.Param)
		if !ok {
			continue
		}
		next := rule.Apply(path, EncodePathSegment(value))
		if next != path {
			applied = append(applied, rule.Param)
			path = next
		}
	}

	return path, applied
}

// Rewrite applies DefaultTable to basePath
func Rewrite(basePath string, params map[string]any) string {
	return defaultRewriter.Rewrite(basePath, params)
}

// Supplied returns the string form of params[name] and whether it counts as
// supplied. Missing keys, nil values (including typed nil pointers) and
// empty strings are not supplied.
func Supplied(params map[string]any, name string) (string, bool) {
	raw, exists := params[name]
	if !exists || raw == nil {
		return "", false
	}

	var value string
	switch v := raw.(type) {
	case string:
		value = v
	case *string:
		if v == nil {
			return "", false
		}
		value = *v
	case fmt.Stringer:
		if isNilPointer(v) {
			return "", false
		}
		value = v.String()
	default:
		if isNilPointer(v) {
			return "", false
		}
		value = fmt.Sprint(v)
	}

	if value == "" {
		return "", false
	}
	return value, true
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
