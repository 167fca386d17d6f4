package netgraph

import "fmt"

// PinRangeError reports a pin or instance index outside the declared width.
type PinRangeError struct {
	Ref   string // the offending reference text, e.g. "ble.in[7]"
	Index int
	Width int // declared width of the indexed port or instance set
}

func (e *PinRangeError) Error() string {
	return fmt.Sprintf("reference %q: index %d out of range, width is %d", e.Ref, e.Index, e.Width)
}

// ScopeViolationError reports a reference that names something outside the
// one-level scope of its mode: a grandchild, a sibling of the parent, or a
// child that belongs to a different mode.
type ScopeViolationError struct {
	Ref    string // the offending reference text
	Scope  string // where it appeared, e.g. "pb_type clb mode default"
	Detail string
}

func (e *ScopeViolationError) Error() string {
	return fmt.Sprintf("reference %q in %s: %s", e.Ref, e.Scope, e.Detail)
}

// CardinalityError reports an interconnect whose expanded source and sink
// widths cannot be wired under its kind's rules.
type CardinalityError struct {
	Interconnect string
	Kind         string
	Inputs       int
	Outputs      int
	Line         int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("%s %q at line %d: cannot wire %d source pins to %d sink pins",
		e.Kind, e.Interconnect, e.Line, e.Inputs, e.Outputs)
}
