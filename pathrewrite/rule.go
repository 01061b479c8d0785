/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package pathrewrite

import (
	"fmt"
	"strings"
)

// IDToken is the placeholder in a rule template that receives the encoded identifier
const IDToken = "{id}"

// Rule qualifies a default collection path with an identifier.
//
// A rule fires on the collection itself (Collection) and on any item beneath
// it (Collection + "/..."). Every other path is left alone.
type Rule struct {
	// Param is the identifier-parameter name that activates the rule, e.g. "calendarId"
	Param string
	// Collection is the unqualified collection path, e.g. "/me/events"
	Collection string
	// Template is the qualified collection path, e.g. "/me/calendars/{id}/events"
	Template string
}

// Matches reports whether the rule applies to path
func (r Rule) Matches(path string) bool {
	return path == r.Collection || strings.HasPrefix(path, r.Collection+"/")
}

// Apply rewrites path using an already-encoded identifier. Paths the rule does
// not match are returned unchanged.
func (r Rule) Apply(path, encodedID string) string {
	if !r.Matches(path) {
		return path
	}
	qualified := strings.Replace(r.Template, IDToken, encodedID, 1)
	return qualified + path[len(r.Collection):]
}

// validate checks the shape of a single rule
func (r Rule) validate() error {
	if r.Param == "" {
		return fmt.Errorf("rule for %q has no parameter name", r.Collection)
	}
	if !strings.HasPrefix(r.Collection, "/") {
		return fmt.Errorf("rule %s: collection %q must start with '/'", r.Param, r.Collection)
	}
	if len(r.Collection) > 1 && strings.HasSuffix(r.Collection, "/") {
		return fmt.Errorf("rule %s: collection %q must not end with '/'", r.Param, r.Collection)
	}
	if !strings.HasPrefix(r.Template, "/") {
		return fmt.Errorf("rule %s: template %q must start with '/'", r.Param, r.Template)
	}
	if strings.Count(r.Template, IDToken) != 1 {
		return fmt.Errorf("rule %s: template %q must contain %s exactly once", r.Param, r.Template, IDToken)
	}
	if strings.Contains(r.Template, "//") {
		return fmt.Errorf("rule %s: template %q contains an empty segment", r.Param, r.Template)
	}
	return nil
}

// overlaps reports whether two rules could fire on the same path, or whether
// one could fire again on the output of the other
func (r Rule) overlaps(other Rule) bool {
	return r.Matches(other.Collection) || other.Matches(r.Collection) ||
		r.Matches(other.Apply(other.Collection, "x")) || other.Matches(r.Apply(r.Collection, "x"))
}

func (r Rule) String() string {
	return fmt.Sprintf("%s: %s -> %s", r.Param, r.Collection, r.Template)
}
