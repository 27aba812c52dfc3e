package shape

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseTypeExpr parses the compact type notation produced by
// TypeExpr.String: Go type syntax plus 'a lifetimes. Unions (A | B) and
// approximations (~T) are accepted for constraints.
func ParseTypeExpr(src string) (*TypeExpr, error) {
	p := &exprParser{src: src}
	e, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("type expression %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) accept(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *exprParser) expect(tok string) error {
	if !p.accept(tok) {
		return p.errorf("expected %q", tok)
	}
	return nil
}

func (p *exprParser) union() (*TypeExpr, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	terms := []*TypeExpr{first}
	for p.accept("|") {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return Union(terms...), nil
}

func (p *exprParser) term() (*TypeExpr, error) {
	if p.accept("~") {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		e.Tilde = true
		return e, nil
	}
	return p.expr()
}

func (p *exprParser) expr() (*TypeExpr, error) {
	switch {
	case p.accept("*"):
		elem, err := p.expr()
		if err != nil {
			return nil, err
		}
		return PointerTo(elem), nil
	case p.accept("[]"):
		elem, err := p.expr()
		if err != nil {
			return nil, err
		}
		return SliceOf(elem), nil
	case p.accept("["):
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		elem, err := p.expr()
		if err != nil {
			return nil, err
		}
		return ArrayOf(n, elem), nil
	case p.accept("map["):
		key, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		elem, err := p.expr()
		if err != nil {
			return nil, err
		}
		return MapOf(key, elem), nil
	case p.accept("struct{}"), p.accept("struct {}"):
		return Marker(), nil
	case p.accept("'"):
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected lifetime name")
		}
		return Lifetime(name), nil
	}
	return p.named()
}

func (p *exprParser) named() (*TypeExpr, error) {
	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return nil, p.errorf("unexpected end of input")
		}
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	e := Named(name)
	// A '.' directly after the identifier is a package qualifier.
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		sel := p.ident()
		if sel == "" {
			return nil, p.errorf("expected name after %q", name+".")
		}
		e = Qualified(name, sel)
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '[' && !strings.HasPrefix(p.src[p.pos:], "[]") {
		p.pos++
		for {
			arg, err := p.term()
			if err != nil {
				return nil, err
			}
			e.Args = append(e.Args, arg)
			if p.accept(",") {
				continue
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			break
		}
	}
	return e, nil
}

func (p *exprParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r == '_' || unicode.IsLetter(r) || (p.pos > start && unicode.IsDigit(r)) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *exprParser) number() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected array length")
	}
	return strconv.Atoi(p.src[start:p.pos])
}
