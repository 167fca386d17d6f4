package arch

import (
	"strconv"

	"github.com/archview/archview/pkg/xmltree"
)

// attrReader extracts typed attribute values from one element and remembers
// which attributes it consumed, so everything left over can be preserved as
// ExtraAttrs. One reader is created per element during mapping.
type attrReader struct {
	el   *xmltree.Element
	used map[string]bool
}

func readAttrs(el *xmltree.Element) *attrReader {
	return &attrReader{el: el, used: make(map[string]bool, len(el.Attrs))}
}

// str returns the named attribute or a SchemaError if it is missing.
func (r *attrReader) str(name string) (string, error) {
	v, ok := r.el.Attr(name)
	if !ok {
		return "", &SchemaError{Element: r.el.Name, Attribute: name, Line: r.el.Line, Col: r.el.Col}
	}
	r.used[name] = true
	return v, nil
}

// strOr returns the named attribute or def when absent.
func (r *attrReader) strOr(name, def string) string {
	v, ok := r.el.Attr(name)
	if !ok {
		return def
	}
	r.used[name] = true
	return v
}

// intAttr parses the named attribute as a non-negative integer.
func (r *attrReader) intAttr(name string) (int, error) {
	raw, err := r.str(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &SchemaError{Element: r.el.Name, Attribute: name, RawValue: raw, Line: r.el.Line, Col: r.el.Col}
	}
	return n, nil
}

// intOr is like intAttr but returns def when the attribute is absent.
func (r *attrReader) intOr(name string, def int) (int, error) {
	if _, ok := r.el.Attr(name); !ok {
		return def, nil
	}
	return r.intAttr(name)
}

// floatAttr parses the named attribute as a float.
func (r *attrReader) floatAttr(name string) (float64, error) {
	raw, err := r.str(name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &SchemaError{Element: r.el.Name, Attribute: name, RawValue: raw, Line: r.el.Line, Col: r.el.Col}
	}
	return f, nil
}

// floatOr is like floatAttr but returns def when the attribute is absent.
func (r *attrReader) floatOr(name string, def float64) (float64, error) {
	if _, ok := r.el.Attr(name); !ok {
		return def, nil
	}
	return r.floatAttr(name)
}

// boolOr parses the named attribute as true/false, returning def when absent.
func (r *attrReader) boolOr(name string, def bool) (bool, error) {
	raw, ok := r.el.Attr(name)
	if !ok {
		return def, nil
	}
	r.used[name] = true
	switch raw {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, &SchemaError{Element: r.el.Name, Attribute: name, RawValue: raw, Line: r.el.Line, Col: r.el.Col}
}

// rest returns every attribute the reader did not consume, in declaration
// order, or nil when none remain.
func (r *attrReader) rest() []xmltree.Attr {
	var out []xmltree.Attr
	for _, a := range r.el.Attrs {
		if !r.used[a.Name] {
			out = append(out, a)
		}
	}
	return out
}

// mapTiming converts a timing annotation element. Numeric attributes land in
// Values, everything else in Attrs.
func mapTiming(el *xmltree.Element) Timing {
	t := Timing{Kind: el.Name}
	for _, a := range el.Attrs {
		if f, err := strconv.ParseFloat(a.Value, 64); err == nil {
			if t.Values == nil {
				t.Values = make(map[string]float64)
			}
			t.Values[a.Name] = f
			continue
		}
		if t.Attrs == nil {
			t.Attrs = make(map[string]string)
		}
		t.Attrs[a.Name] = a.Value
	}
	return t
}

// timingKinds are the element names recognized as timing annotations under
// pb_type, port, and interconnect elements.
var timingKinds = map[string]bool{
	"delay_constant": true,
	"delay_matrix":   true,
	"T_setup":        true,
	"T_hold":         true,
	"T_clock_to_Q":   true,
	"C_constant":     true,
	"C_matrix":       true,
}

func isTimingElement(name string) bool { return timingKinds[name] }
