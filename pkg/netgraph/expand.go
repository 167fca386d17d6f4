package netgraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/archview/archview/pkg/arch"
)

// Pin identifies one pin inside a resolved scope. Instance is the parent
// block's name for parent pins, or "child[i]" for the i-th replica of a
// child (plain "child" when the child is not replicated).
type Pin struct {
	Instance string
	Port     string
	Index    int
}

// String renders the pin the way references are written.
func (p Pin) String() string {
	return fmt.Sprintf("%s.%s[%d]", p.Instance, p.Port, p.Index)
}

// scope is the set of names one mode may reference: the parent block's own
// ports plus each child of the selected mode. Children of other modes stay
// in otherModes so their misuse is reported as a scope violation rather
// than an unknown name.
type scope struct {
	parent     *arch.BlockType
	children   map[string]*arch.BlockType
	otherModes map[string]string // child name -> owning mode name
	where      string            // for error messages
}

func newScope(b *arch.BlockType, m *arch.Mode) *scope {
	s := &scope{
		parent:     b,
		children:   make(map[string]*arch.BlockType, len(m.Children)),
		otherModes: make(map[string]string),
		where:      scopeName(b, m),
	}
	for _, c := range m.Children {
		s.children[c.Name] = c
	}
	for _, om := range b.Modes {
		if om == m {
			continue
		}
		for _, c := range om.Children {
			if _, ok := s.children[c.Name]; !ok {
				s.otherModes[c.Name] = om.Name
			}
		}
	}
	return s
}

func scopeName(b *arch.BlockType, m *arch.Mode) string {
	if m.Name == "" {
		return "pb_type " + b.Name
	}
	return fmt.Sprintf("pb_type %s mode %s", b.Name, m.Name)
}

// expandGroups expands one symbolic reference list. Each whitespace-separated
// token becomes one group of pins; mux wiring needs the per-token grouping,
// everything else flattens the groups.
func (s *scope) expandGroups(text string) ([][]Pin, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, &ScopeViolationError{Ref: text, Scope: s.where, Detail: "empty port reference"}
	}
	groups := make([][]Pin, 0, len(fields))
	for _, f := range fields {
		g, err := s.expandToken(f)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (s *scope) expand(text string) ([]Pin, error) {
	groups, err := s.expandGroups(text)
	if err != nil {
		return nil, err
	}
	var out []Pin
	for _, g := range groups {
		out = append(out, g...)
	}
	return out, nil
}

// expandToken expands a single reference token:
//
//	port              parent port, every pin ascending
//	block.port        qualified, every instance and pin ascending
//	block[3:0].port   explicit instance range, msb first
//	block.port[2]     single pin
//	block[1].port[0]  fully indexed
//
// Unindexed buses expand ascending; explicit ranges expand exactly as
// written. Instances iterate in the outer loop, pins in the inner one.
func (s *scope) expandToken(tok string) ([]Pin, error) {
	instPart, portPart, qualified := strings.Cut(tok, ".")
	if !qualified {
		portPart = instPart
		instPart = s.parent.Name
	}
	if strings.Contains(portPart, ".") {
		return nil, &ScopeViolationError{Ref: tok, Scope: s.where, Detail: "reference crosses more than one hierarchy level"}
	}

	instName, instRange, err := s.splitRange(tok, instPart)
	if err != nil {
		return nil, err
	}
	portName, pinRange, err := s.splitRange(tok, portPart)
	if err != nil {
		return nil, err
	}

	var block *arch.BlockType
	var replicas int
	isParent := false
	switch {
	case instName == s.parent.Name:
		block, replicas, isParent = s.parent, 1, true
	default:
		c, ok := s.children[instName]
		if !ok {
			if mode, other := s.otherModes[instName]; other {
				return nil, &ScopeViolationError{
					Ref:    tok,
					Scope:  s.where,
					Detail: fmt.Sprintf("%q belongs to mode %q", instName, mode),
				}
			}
			return nil, &arch.UnresolvedReferenceError{Kind: "pb_type", Name: instName, Referrer: s.where}
		}
		block, replicas = c, c.NumPB
	}

	port, ok := block.Port(portName)
	if !ok {
		return nil, &arch.UnresolvedReferenceError{Kind: "port", Name: instName + "." + portName, Referrer: s.where}
	}

	instIdx, err := expandRange(tok, instRange, replicas)
	if err != nil {
		return nil, err
	}
	pinIdx, err := expandRange(tok, pinRange, port.Width)
	if err != nil {
		return nil, err
	}

	pins := make([]Pin, 0, len(instIdx)*len(pinIdx))
	for _, ii := range instIdx {
		inst := instanceName(instName, ii, replicas, isParent)
		for _, pi := range pinIdx {
			pins = append(pins, Pin{Instance: inst, Port: portName, Index: pi})
		}
	}
	return pins, nil
}

// InstanceName renders the display name of one child replica: plain for an
// unreplicated child, indexed otherwise.
func InstanceName(name string, ordinal, replicas int) string {
	if replicas <= 1 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, ordinal)
}

func instanceName(name string, ordinal, replicas int, isParent bool) string {
	if isParent {
		return name
	}
	return InstanceName(name, ordinal, replicas)
}

// indexRange is a parsed [msb:lsb] or [i] suffix; auto means no suffix.
type indexRange struct {
	auto     bool
	msb, lsb int
}

// splitRange splits "name[3:0]" into the bare name and its range suffix.
// ref is the whole token, used only for error context.
func (s *scope) splitRange(ref, part string) (string, indexRange, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, indexRange{auto: true}, nil
	}
	if !strings.HasSuffix(part, "]") {
		return "", indexRange{}, &ScopeViolationError{Ref: ref, Scope: s.where, Detail: "unterminated index"}
	}
	name := part[:open]
	body := part[open+1 : len(part)-1]

	msbStr, lsbStr, ranged := strings.Cut(body, ":")
	msb, err := strconv.Atoi(strings.TrimSpace(msbStr))
	if err != nil || msb < 0 {
		return "", indexRange{}, &ScopeViolationError{Ref: ref, Scope: s.where, Detail: "bad index " + strconv.Quote(body)}
	}
	lsb := msb
	if ranged {
		lsb, err = strconv.Atoi(strings.TrimSpace(lsbStr))
		if err != nil || lsb < 0 {
			return "", indexRange{}, &ScopeViolationError{Ref: ref, Scope: s.where, Detail: "bad index " + strconv.Quote(body)}
		}
	}
	return name, indexRange{msb: msb, lsb: lsb}, nil
}

// expandRange yields the concrete indices of one range against a declared
// width: ascending 0..width-1 for auto, msb down (or up) to lsb as written
// otherwise. Out-of-range indices are rejected before expansion.
func expandRange(ref string, r indexRange, width int) ([]int, error) {
	if r.auto {
		out := make([]int, width)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	if r.msb >= width {
		return nil, &PinRangeError{Ref: ref, Index: r.msb, Width: width}
	}
	if r.lsb >= width {
		return nil, &PinRangeError{Ref: ref, Index: r.lsb, Width: width}
	}
	var out []int
	if r.msb >= r.lsb {
		for i := r.msb; i >= r.lsb; i-- {
			out = append(out, i)
		}
	} else {
		for i := r.msb; i <= r.lsb; i++ {
			out = append(out, i)
		}
	}
	return out, nil
}
