package chem

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

var (
	// ErrUnknownElement is returned when a formula names an element missing
	// from the element table or lacking a polarizability parameter.
	ErrUnknownElement = errors.New("unknown element")
	// ErrInvalidFormula is returned for formulas that cannot be parsed.
	ErrInvalidFormula = errors.New("invalid formula")
)

// FormulaError describes a parse failure at a byte offset.
type FormulaError struct {
	Formula string
	Pos     int
	Msg     string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("invalid formula %q at %d: %s", e.Formula, e.Pos, e.Msg)
}

func (e *FormulaError) Unwrap() error { return ErrInvalidFormula }

// UnknownElementError names the offending element symbol.
type UnknownElementError struct {
	Symbol string
	Reason string
}

func (e *UnknownElementError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("element %s: %s", e.Symbol, e.Reason)
	}
	return fmt.Sprintf("unknown element %s", e.Symbol)
}

func (e *UnknownElementError) Unwrap() error { return ErrUnknownElement }

// Composition maps element symbols to atom counts.
type Composition map[string]int

// String renders the composition in Hill order (C, H, then alphabetical).
func (c Composition) String() string {
	syms := make([]string, 0, len(c))
	for s := range c {
		syms = append(syms, s)
	}
	_, hasC := c["C"]
	sort.Slice(syms, func(i, j int) bool {
		if hasC {
			ri, rj := hillRank(syms[i]), hillRank(syms[j])
			if ri != rj {
				return ri < rj
			}
		}
		return syms[i] < syms[j]
	})
	var b strings.Builder
	for _, s := range syms {
		b.WriteString(s)
		if n := c[s]; n != 1 {
			b.WriteString(fmt.Sprint(n))
		}
	}
	return b.String()
}

func hillRank(s string) int {
	switch s {
	case "C":
		return 0
	case "H":
		return 1
	}
	return 2
}

// ParseFormula parses an empirical formula such as "C2H6O", "(CH3)2CO",
// "Ca(OH)2" or the hydrate form "CuSO4.5H2O".
func ParseFormula(formula string) (Composition, error) {
	p := &formulaParser{src: strings.TrimSpace(formula)}
	if p.src == "" {
		return nil, &FormulaError{Formula: formula, Msg: "empty formula"}
	}
	out := Composition{}
	for {
		coef := p.number(1)
		grp, err := p.sequence(0)
		if err != nil {
			return nil, err
		}
		if len(grp) == 0 {
			return nil, p.fail("expected element")
		}
		for s, n := range grp {
			out[s] += n * coef
		}
		if p.done() {
			break
		}
		switch r := p.peek(); r {
		case '.', '·', '*':
			p.next()
		default:
			return nil, p.fail(fmt.Sprintf("unexpected %q", r))
		}
	}
	return out, nil
}

type formulaParser struct {
	src string
	pos int
}

func (p *formulaParser) done() bool { return p.pos >= len(p.src) }

func (p *formulaParser) peek() rune {
	for _, r := range p.src[p.pos:] {
		return r
	}
	return 0
}

func (p *formulaParser) next() rune {
	r := p.peek()
	p.pos += len(string(r))
	return r
}

func (p *formulaParser) fail(msg string) error {
	return &FormulaError{Formula: p.src, Pos: p.pos, Msg: msg}
}

// number reads an optional decimal count, returning def when absent.
func (p *formulaParser) number(def int) int {
	n, seen := 0, false
	for !p.done() && unicode.IsDigit(p.peek()) {
		n = n*10 + int(p.next()-'0')
		seen = true
	}
	if !seen {
		return def
	}
	return n
}

// sequence parses groups until a closing bracket, separator or end of input.
func (p *formulaParser) sequence(depth int) (Composition, error) {
	out := Composition{}
	for !p.done() {
		r := p.peek()
		switch {
		case r == ' ':
			p.next()
		case r == '(' || r == '[':
			open := p.next()
			inner, err := p.sequence(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.done() {
				return nil, p.fail("unclosed bracket")
			}
			if cl := p.next(); cl != closer(open) {
				return nil, p.fail(fmt.Sprintf("mismatched %q", cl))
			}
			n := p.number(1)
			for s, c := range inner {
				out[s] += c * n
			}
		case r == ')' || r == ']':
			if depth == 0 {
				return nil, p.fail(fmt.Sprintf("unexpected %q", r))
			}
			return out, nil
		case unicode.IsUpper(r):
			start := p.pos
			p.next()
			for !p.done() && unicode.IsLower(p.peek()) {
				p.next()
			}
			sym := p.src[start:p.pos]
			if !Known(sym) {
				return nil, &UnknownElementError{Symbol: sym}
			}
			out[sym] += p.number(1)
		default:
			return out, nil
		}
	}
	return out, nil
}

func closer(open rune) rune {
	if open == '[' {
		return ']'
	}
	return ')'
}
