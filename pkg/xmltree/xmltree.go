// Package xmltree turns raw XML text into a generic labeled element tree.
//
// The tree is schema-agnostic by design: element names, attribute order, and
// child order are preserved exactly as written, unknown attributes are kept,
// comments and whitespace-only text are discarded. Domain interpretation of
// the tree happens one layer up (see package arch), which lets the schema
// mapper evolve independently of the lexical stage.
//
// # Usage
//
//	root, err := xmltree.Parse(file)
//	if err != nil {
//	    var merr *xmltree.MalformedError
//	    if errors.As(err, &merr) {
//	        fmt.Printf("syntax error at line %d, col %d\n", merr.Line, merr.Col)
//	    }
//	}
//
// Every element records the line and column where its start tag begins, so
// later stages can report precise positions without re-scanning the input.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Attr is a single attribute as written in the source, order-preserving.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the generic tree: a name, its attributes in
// declaration order, its child elements in document order, and any
// non-whitespace character data concatenated.
//
// Elements are immutable after Parse returns; callers share the tree freely.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string

	// Line and Col locate the element's start tag in the source (1-based).
	Line int
	Col  int
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ChildrenNamed returns all direct children with the given element name,
// in document order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child with the given name, or nil.
func (e *Element) FirstChild(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// MalformedError reports an XML syntax failure with its position in the
// input. It corresponds to ingestion-level failures only; schema and
// semantic errors are defined in package arch.
type MalformedError struct {
	Offset int64 // byte offset into the input
	Line   int   // 1-based line
	Col    int   // 1-based column
	Err    error // underlying decoder error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed XML at line %d, col %d: %v", e.Line, e.Col, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Parse reads a complete XML document and returns its root element.
// The reader is consumed to EOF. A document with no root element, more than
// one root element, or any syntax error yields a *MalformedError.
func Parse(r io.Reader) (*Element, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes is like Parse but takes the document as a byte slice.
func ParseBytes(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	pos := &tracker{data: data, line: 1, col: 1}

	var root *Element
	var stack []*Element

	for {
		// Offset of the token about to be read; used for start-tag positions.
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(data, dec.InputOffset(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, col := pos.at(start)
			el := &Element{
				Name:  t.Name.Local,
				Attrs: make([]Attr, 0, len(t.Attr)),
				Line:  line,
				Col:   col,
			}
			for _, a := range t.Attr {
				// Namespace declarations are lexical noise for this dialect.
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, malformed(data, start, fmt.Errorf("multiple root elements: <%s>", t.Name.Local))
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			cur := stack[len(stack)-1]
			if cur.Text != "" {
				cur.Text += " "
			}
			cur.Text += text

		// Comments, directives, and processing instructions carry no
		// architecture data.
		case xml.Comment, xml.Directive, xml.ProcInst:
		}
	}

	if root == nil {
		return nil, malformed(data, 0, fmt.Errorf("document has no root element"))
	}
	return root, nil
}

// malformed builds a MalformedError for the given byte offset. It runs
// once, on the error path, so a full scan from the start is acceptable.
func malformed(data []byte, offset int64, err error) *MalformedError {
	line, col := position(data, offset)
	return &MalformedError{Offset: offset, Line: line, Col: col, Err: err}
}

// position converts a byte offset into 1-based line and column numbers.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// tracker converts byte offsets to line/column positions incrementally,
// scanning only the bytes since the previous query. Offsets must not go
// backwards, which token order guarantees.
type tracker struct {
	data   []byte
	offset int64
	line   int
	col    int
}

func (t *tracker) at(offset int64) (line, col int) {
	if offset > int64(len(t.data)) {
		offset = int64(len(t.data))
	}
	for _, b := range t.data[t.offset:offset] {
		if b == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
	}
	t.offset = offset
	return t.line, t.col
}
