package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse compiles formula source text (with or without a leading "=") into a
// typed Expr tree, resolving every bare reference it encounters against
// KindAny (a passthrough decoder deferring coercion to whichever operator
// or function consumes the value — spec.md §4.3's static/runtime split).
// Grounded on the teacher's recursive-descent parser.go, generalized to
// build the typed Expr tree this package evaluates instead of the
// teacher's ASTNode/BinaryOpNode hierarchy.
//
// Unary minus has no dedicated AST node (spec.md §3 fixes the node set);
// "-x" desugars to "0-x" at parse time. This changes the printed spelling
// of a reparsed formula but not the round-trip law (spec.md §8): printing
// the desugared tree and reparsing it yields the identical tree again.
func Parse(source string) (Expr, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(source), "=")
	toks, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: toks}
	expr, perr := p.parseComparison()
	if perr != nil {
		return nil, perr
	}
	if p.cur().kind != tokEOF {
		return nil, &ParseError{Message: fmt.Sprintf("unexpected trailing input %q", p.cur().text), Pos: p.cur().pos}
	}
	return ResolvePoly(expr, KindAny, strictDecoderFor(KindAny)), nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) cur() token {
	if p.pos >= len(p.tokens) {
		return token{kind: tokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.cur().kind != k {
		return token{}, &ParseError{Message: fmt.Sprintf("expected %s, found %q", what, p.cur().text), Pos: p.cur().pos}
	}
	return p.advance(), nil
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op CompareOp
		switch p.cur().kind {
		case tokEq:
			op = CompareEq
		case tokNe:
			op = CompareNeq
		case tokLt:
			op = CompareLt
		case tokLe:
			op = CompareLte
		case tokGt:
			op = CompareGt
		case tokGe:
			op = CompareGte
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Compare{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op ArithOp
		switch p.cur().kind {
		case tokPlus:
			op = ArithAdd
		case tokMinus:
			op = ArithSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Arith{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ArithOp
		switch p.cur().kind {
		case tokStar:
			op = ArithMul
		case tokSlash:
			op = ArithDiv
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Arith{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.cur().kind == tokMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Arith{Op: ArithSub, Left: Num("0"), Right: operand}, nil
	}
	if p.cur().kind == tokPlus {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.kind {
	case tokNumber:
		p.advance()
		return Num(tok.text), nil
	case tokString:
		p.advance()
		return Text(tok.text), nil
	case tokLParen:
		p.advance()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokDollar:
		return p.parseReference("")
	case tokQuoted:
		p.advance()
		if _, err := p.expect(tokBang, "'!'"); err != nil {
			return nil, err
		}
		return p.parseReference(tok.text)
	case tokIdent:
		return p.parseIdentLed(tok)
	default:
		return nil, &ParseError{Message: fmt.Sprintf("unexpected token %q", tok.text), Pos: tok.pos}
	}
}

// parseIdentLed handles every production that starts with a bare
// identifier: a boolean literal, a function call, a sheet-qualified
// reference, or a plain same-sheet reference.
func (p *parser) parseIdentLed(tok token) (Expr, error) {
	p.advance()
	upper := strings.ToUpper(tok.text)
	switch upper {
	case "TRUE":
		return Bool(true), nil
	case "FALSE":
		return Bool(false), nil
	}
	if p.cur().kind == tokLParen {
		return p.parseCall(upper, tok.pos)
	}
	if p.cur().kind == tokBang {
		p.advance()
		return p.parseReference(tok.text)
	}
	if p.cur().kind == tokDollar {
		// column letters followed by '$': a row-anchored address ("A$1").
		p.pos--
		return p.parseReference("")
	}
	return p.referenceFromIdent(tok)
}

func (p *parser) parseCall(name string, pos int) (Expr, error) {
	spec, ok := Lookup(name)
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("unknown function %q", name), Pos: pos}
	}
	p.advance() // '('
	var args []Expr
	if p.cur().kind != tokRParen {
		for {
			arg, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().kind != tokComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	if !spec.Arity.Accepts(len(args)) {
		return nil, &ParseError{Message: fmt.Sprintf("%s expects %s, got %d", name, spec.Arity, len(args)), Pos: pos}
	}
	return &Call{Spec: spec, Args: args}, nil
}

// parseReference parses a (possibly range) cell reference starting at the
// current token, already past any sheet-name prefix; sheet is "" for a
// same-sheet reference.
func (p *parser) parseReference(sheet string) (Expr, error) {
	addr, anchor, err := p.parseCellAddr()
	if err != nil {
		return nil, err
	}
	if p.cur().kind == tokColon {
		p.advance()
		end, endAnchor, err := p.parseCellAddr()
		if err != nil {
			return nil, err
		}
		r := NewCellRange(addr, end, anchor, endAnchor)
		if sheet == "" {
			return &RangeRef{Range: r}, nil
		}
		return &SheetRange{Sheet: sheet, Range: r}, nil
	}
	if sheet == "" {
		return &PolyRef{Addr: addr, Anchor: anchor}, nil
	}
	return &SheetPolyRef{Sheet: sheet, Addr: addr, Anchor: anchor}, nil
}

// parseCellAddr consumes one address: an optional '$', column letters, an
// optional '$', and row digits — either as a single fused ident token
// ("A1") or split across a '$' ("A$1", "$A$1").
func (p *parser) parseCellAddr() (ARef, Anchor, error) {
	colAbs := false
	if p.cur().kind == tokDollar {
		p.advance()
		colAbs = true
	}
	identTok, err := p.expect(tokIdent, "a column letter")
	if err != nil {
		return ARef{}, 0, err
	}
	letters, digits := splitLettersDigits(identTok.text)
	if letters == "" {
		return ARef{}, 0, &ParseError{Message: fmt.Sprintf("invalid cell reference %q", identTok.text), Pos: identTok.pos}
	}
	col, cerr := ColumnFromLetter(letters)
	if cerr != nil {
		return ARef{}, 0, &ParseError{Message: cerr.Error(), Pos: identTok.pos}
	}

	rowAbs := false
	if digits == "" {
		if p.cur().kind == tokDollar {
			p.advance()
			rowAbs = true
		}
		numTok, err := p.expect(tokNumber, "a row number")
		if err != nil {
			return ARef{}, 0, err
		}
		digits = numTok.text
	}
	row, nerr := strconv.Atoi(digits)
	if nerr != nil || row < 1 {
		return ARef{}, 0, &ParseError{Message: fmt.Sprintf("invalid row number %q", digits), Pos: identTok.pos}
	}
	return ARef{Col: col, Row: Row(row - 1)}, anchorOf(colAbs, rowAbs), nil
}

// referenceFromIdent builds a same-sheet reference from an identifier
// already consumed by parseIdentLed (the common "A1" case with no anchors
// and no sheet prefix).
func (p *parser) referenceFromIdent(tok token) (Expr, error) {
	letters, digits := splitLettersDigits(tok.text)
	if letters == "" || digits == "" {
		return nil, &ParseError{Message: fmt.Sprintf("unknown identifier %q", tok.text), Pos: tok.pos}
	}
	col, cerr := ColumnFromLetter(letters)
	if cerr != nil {
		return nil, &ParseError{Message: cerr.Error(), Pos: tok.pos}
	}
	row, nerr := strconv.Atoi(digits)
	if nerr != nil || row < 1 {
		return nil, &ParseError{Message: fmt.Sprintf("invalid row number %q", digits), Pos: tok.pos}
	}
	addr := ARef{Col: col, Row: Row(row - 1)}
	if p.cur().kind == tokColon {
		p.advance()
		end, endAnchor, err := p.parseCellAddr()
		if err != nil {
			return nil, err
		}
		r := NewCellRange(addr, end, AnchorRelative, endAnchor)
		return &RangeRef{Range: r}, nil
	}
	return &PolyRef{Addr: addr, Anchor: AnchorRelative}, nil
}

func splitLettersDigits(s string) (letters, digits string) {
	i := 0
	for i < len(s) && isAlpha(rune(s[i])) {
		i++
	}
	return s[:i], s[i:]
}
