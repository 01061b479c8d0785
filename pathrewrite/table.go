/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package pathrewrite

import "fmt"

// Table is an ordered, read-only set of rules keyed by parameter name.
// No two rules in a table can fire on the same path.
type Table struct {
	rules []Rule
	index map[string]int
}

// NewTable builds a table from rules in the order given
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}

	for _, rule := range rules {
		if err := rule.validate(); err != nil {
			return nil, err
		}
		if _, exists := t.index[rule.Param]; exists {
			return nil, fmt.Errorf("duplicate rule for parameter %s", rule.Param)
		}
		for _, existing := range t.rules {
			if existing.overlaps(rule) {
				return nil, fmt.Errorf("rule %s overlaps rule %s on %s", rule.Param, existing.Param, existing.Collection)
			}
		}
		t.index[rule.Param] = len(t.rules)
		t.rules = append(t.rules, rule)
	}

	return t, nil
}

// MustNewTable is NewTable for package-level initialisation; it panics on error
func MustNewTable(rules ...Rule) *Table {
	t, err := NewTable(rules...)
	if err != nil {
		panic("pathrewrite: " + err.Error())
	}
	return t
}

// Lookup returns the rule registered for param
func (t *Table) Lookup(param string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	i, ok := t.index[param]
	if !ok {
		return Rule{}, false
	}
	return t.rules[i], true
}

// Has reports whether param is a registered identifier parameter
func (t *Table) Has(param string) bool {
	_, ok := t.Lookup(param)
	return ok
}

// Rules returns a copy of the rules in table order
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Params returns the registered parameter names in table order
func (t *Table) Params() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.rules))
	for i, rule := range t.rules {
		out[i] = rule.Param
	}
	return out
}

// Len returns the number of rules
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}
