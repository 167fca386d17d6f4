package arch

import (
	"fmt"
	"strings"
)

// SchemaError reports a recognized element with a missing or mistyped
// attribute. RawValue is empty when the attribute was absent and carries the
// offending text when coercion failed.
type SchemaError struct {
	Element   string // element name, e.g. "pb_type"
	Attribute string // attribute name, e.g. "num_pins"
	RawValue  string // offending value, empty if the attribute was missing
	Line      int
	Col       int
}

func (e *SchemaError) Error() string {
	if e.RawValue == "" {
		return fmt.Sprintf("<%s> at line %d: missing required attribute %q", e.Element, e.Line, e.Attribute)
	}
	return fmt.Sprintf("<%s> at line %d: attribute %q has invalid value %q", e.Element, e.Line, e.Attribute, e.RawValue)
}

// CyclicHierarchyError reports a block type that references itself or an
// ancestor within one hierarchy walk. Path is the full reference chain from
// the root of the walk to the repeated name.
type CyclicHierarchyError struct {
	Path []string
}

func (e *CyclicHierarchyError) Error() string {
	return fmt.Sprintf("cyclic block hierarchy: %s", strings.Join(e.Path, " -> "))
}

// UnresolvedReferenceError reports a name that does not resolve to any
// declared entity of the expected kind.
type UnresolvedReferenceError struct {
	Kind     string // what was expected: "pb_type", "tile", "mode", ...
	Name     string // the dangling name
	Referrer string // who referenced it, e.g. "tile clb" or "mode ble.default"
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unresolved %s reference %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("unresolved %s reference %q in %s", e.Kind, e.Name, e.Referrer)
}

// DuplicateNameError reports two declarations sharing a name within one
// scope (tiles globally, ports/modes/children within a block type).
type DuplicateNameError struct {
	Kind  string // "tile", "port", "mode", "pb_type"
	Name  string
	Scope string // enclosing scope, e.g. "pb_type clb"
}

func (e *DuplicateNameError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("duplicate %s name %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("duplicate %s name %q in %s", e.Kind, e.Name, e.Scope)
}
