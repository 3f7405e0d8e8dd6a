package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

// compareOp is one of the comparison operators accepted by the criterion
// grammar (spec.md §6).
type compareOp uint8

const (
	cmpEq compareOp = iota
	cmpNeq
	cmpLt
	cmpLte
	cmpGt
	cmpGte
)

// criterion is the parsed form of a *IF* function's criteria argument:
// an exact match, a comparison, or a text wildcard.
type criterion struct {
	kind       criterionKind
	exact      CellValue
	op         compareOp
	rhsNumber  decimal.Decimal
	rhsIsNum   bool
	rhsText    string
	wildcard   string
}

type criterionKind uint8

const (
	criterionExact criterionKind = iota
	criterionCompare
	criterionWildcard
)

// parseCriterion parses a criterion value per spec.md §6's grammar:
// comparison prefixes (">=", "<>", "<", "<=", ">", "="), else a literal,
// else (for text) a wildcard pattern using "*"/"?" with "~" escaping.
func parseCriterion(v CellValue) criterion {
	v = v.resolved()
	if v.Kind != KindText {
		return criterion{kind: criterionExact, exact: v}
	}

	s := v.Text
	for _, prefix := range []struct {
		text string
		op   compareOp
	}{
		{">=", cmpGte},
		{"<=", cmpLte},
		{"<>", cmpNeq},
		{"<", cmpLt},
		{">", cmpGt},
		{"=", cmpEq},
	} {
		if strings.HasPrefix(s, prefix.text) {
			rhs := strings.TrimPrefix(s, prefix.text)
			if num, ok := parseCanonicalNumber(rhs); ok {
				return criterion{kind: criterionCompare, op: prefix.op, rhsNumber: num, rhsIsNum: true}
			}
			return criterion{kind: criterionCompare, op: prefix.op, rhsText: rhs}
		}
	}

	if strings.ContainsAny(s, "*?") {
		return criterion{kind: criterionWildcard, wildcard: s}
	}

	return criterion{kind: criterionExact, exact: v}
}

// matches tests a cell's resolved value against the criterion.
func (cr criterion) matches(c Cell) bool {
	v := c.Value.resolved()
	switch cr.kind {
	case criterionExact:
		return cellValueEqual(v, cr.exact)
	case criterionCompare:
		return cr.matchesCompare(v)
	case criterionWildcard:
		return matchWildcard(cr.wildcard, decodeDisplayText(v))
	default:
		return false
	}
}

func (cr criterion) matchesCompare(v CellValue) bool {
	if cr.rhsIsNum {
		num, ok := numericOf(v)
		if !ok {
			return false
		}
		cmp := num.Cmp(cr.rhsNumber)
		return compareSatisfies(cr.op, cmp)
	}
	lhs := strings.ToUpper(decodeDisplayText(v))
	rhs := strings.ToUpper(cr.rhsText)
	cmp := strings.Compare(lhs, rhs)
	return compareSatisfies(cr.op, cmp)
}

func compareSatisfies(op compareOp, cmp int) bool {
	switch op {
	case cmpEq:
		return cmp == 0
	case cmpNeq:
		return cmp != 0
	case cmpLt:
		return cmp < 0
	case cmpLte:
		return cmp <= 0
	case cmpGt:
		return cmp > 0
	case cmpGte:
		return cmp >= 0
	default:
		return false
	}
}

func numericOf(v CellValue) (decimal.Decimal, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindBool:
		if v.Bool {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	default:
		return decimal.Zero, false
	}
}

func decodeDisplayText(v CellValue) string {
	return v.String()
}

func cellValueEqual(a, b CellValue) bool {
	a, b = a.resolved(), b.resolved()
	if a.Kind == KindEmpty || b.Kind == KindEmpty {
		return a.Kind == b.Kind
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if aok && bok {
		return an.Equal(bn)
	}
	return strings.EqualFold(decodeDisplayText(a), decodeDisplayText(b))
}

// matchWildcard implements the "*"/"?" glob grammar with "~" escaping,
// case-insensitive (spec.md §6: text comparisons are case-insensitive).
func matchWildcard(pattern, text string) bool {
	pattern = strings.ToUpper(pattern)
	text = strings.ToUpper(text)
	return wildcardMatch(pattern, text)
}

// wildcardMatch is a small recursive-descent glob matcher supporting "*"
// (any substring), "?" (any single char), and "~" escaping of the next
// character so literal "*"/"?"/"~" can appear in a criterion.
func wildcardMatch(pattern, text string) bool {
	pr := []rune(pattern)
	tr := []rune(text)
	return wildcardMatchRunes(pr, tr)
}

func wildcardMatchRunes(p, t []rune) bool {
	for len(p) > 0 {
		switch {
		case p[0] == '~' && len(p) > 1:
			if len(t) == 0 || t[0] != p[1] {
				return false
			}
			p, t = p[2:], t[1:]
		case p[0] == '*':
			// collapse consecutive stars, then try every split point.
			for len(p) > 0 && p[0] == '*' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(t); i++ {
				if wildcardMatchRunes(p, t[i:]) {
					return true
				}
			}
			return false
		case p[0] == '?':
			if len(t) == 0 {
				return false
			}
			p, t = p[1:], t[1:]
		default:
			if len(t) == 0 || t[0] != p[0] {
				return false
			}
			p, t = p[1:], t[1:]
		}
	}
	return len(t) == 0
}
