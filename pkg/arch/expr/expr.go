// Package expr evaluates the small arithmetic language used by grid-location
// directives. An expression combines integer literals, the variables W and H
// (grid width and height) and w and h (the placed tile's width and height),
// the operators + - * /, and parentheses. Division truncates toward zero,
// matching integer grid coordinates.
package expr

import (
	"fmt"
	"strings"
)

// Env supplies the variable bindings for one evaluation.
type Env struct {
	W, H   int // grid dimensions
	TW, TH int // tile dimensions (bound to w and h)
}

// SyntaxError reports an unparsable expression.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bad expression %q at offset %d: %s", e.Expr, e.Pos, e.Msg)
}

// Eval evaluates one expression under the given bindings.
func Eval(s string, env Env) (int, error) {
	p := &parser{src: s, env: env}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	return v, nil
}

// parser is a recursive-descent evaluator over the grammar
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | variable | "(" expr ")" | "-" factor
type parser struct {
	src string
	pos int
	env Env
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expr() (int, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			t, err := p.term()
			if err != nil {
				return 0, err
			}
			v += t
		case '-':
			p.pos++
			t, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= t
		default:
			return v, nil
		}
	}
}

func (p *parser) term() (int, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			f, err := p.factor()
			if err != nil {
				return 0, err
			}
			v *= f
		case '/':
			p.pos++
			f, err := p.factor()
			if err != nil {
				return 0, err
			}
			if f == 0 {
				return 0, p.errorf("division by zero")
			}
			v /= f
		default:
			return v, nil
		}
	}
}

func (p *parser) factor() (int, error) {
	switch c := p.peek(); {
	case c == 0:
		return 0, p.errorf("unexpected end of expression")
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case c == '-':
		p.pos++
		v, err := p.factor()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		n := 0
		for _, d := range p.src[start:p.pos] {
			n = n*10 + int(d-'0')
		}
		return n, nil
	default:
		return p.variable()
	}
}

// variable reads one identifier. The four single-letter names are bound;
// anything else is an error naming the identifier.
func (p *parser) variable() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	switch name {
	case "W":
		return p.env.W, nil
	case "H":
		return p.env.H, nil
	case "w":
		return p.env.TW, nil
	case "h":
		return p.env.TH, nil
	case "":
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	p.pos = start
	return 0, p.errorf("unknown variable %q", name)
}

func isIdent(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// EvalOr evaluates s, or returns def when s is empty. Grid-location
// attributes are optional and default per placement rule.
func EvalOr(s string, def int, env Env) (int, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return Eval(s, env)
}
