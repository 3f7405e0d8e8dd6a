package formula

import "strings"

// precedence levels, lowest binds loosest. Grouped the way the teacher's
// recursive-descent parser climbs them, generalized to a single per-node
// table the printer and parser can both consult instead of one
// hand-written case per operator.
const (
	precOr = iota
	precAnd
	precCompare
	precAdd
	precMul
	precUnary
	precAtom
)

func precedenceOf(expr Expr) int {
	switch n := expr.(type) {
	case *Logical:
		if n.Op == LogicalOr {
			return precOr
		}
		return precAnd
	case *Compare:
		return precCompare
	case *Arith:
		if n.Op == ArithAdd || n.Op == ArithSub {
			return precAdd
		}
		return precMul
	case *Not:
		return precUnary
	default:
		return precAtom
	}
}

// Print renders expr in canonical surface form: the minimal parenthesization
// that preserves precedence, "$"-anchored references, sheet-qualified names
// quoted when they contain characters outside [A-Za-z0-9_], and numeric
// literals in plain decimal form.
func Print(expr Expr) string {
	var sb strings.Builder
	printNode(&sb, expr, -1)
	return sb.String()
}

func printNode(sb *strings.Builder, expr Expr, parentPrec int) {
	prec := precedenceOf(expr)
	needsParens := prec < parentPrec
	if needsParens {
		sb.WriteByte('(')
	}
	switch n := expr.(type) {
	case *Lit:
		sb.WriteString(printLit(n.Value))
	case *Ref:
		sb.WriteString(n.Addr.formatAnchored(n.Anchor))
	case *PolyRef:
		sb.WriteString(n.Addr.formatAnchored(n.Anchor))
	case *SheetRef:
		sb.WriteString(quoteSheetName(n.Sheet))
		sb.WriteByte('!')
		sb.WriteString(n.Addr.formatAnchored(n.Anchor))
	case *SheetPolyRef:
		sb.WriteString(quoteSheetName(n.Sheet))
		sb.WriteByte('!')
		sb.WriteString(n.Addr.formatAnchored(n.Anchor))
	case *RangeRef:
		sb.WriteString(n.Range.ToA1())
	case *SheetRange:
		sb.WriteString(quoteSheetName(n.Sheet))
		sb.WriteByte('!')
		sb.WriteString(n.Range.ToA1())
	case *Arith:
		printNode(sb, n.Left, prec)
		sb.WriteString(arithSymbol(n.Op))
		printNode(sb, n.Right, prec+1)
	case *Logical:
		printNode(sb, n.Left, prec)
		if n.Op == LogicalAnd {
			sb.WriteString(" AND ")
		} else {
			sb.WriteString(" OR ")
		}
		printNode(sb, n.Right, prec+1)
	case *Not:
		sb.WriteString("NOT ")
		printNode(sb, n.Operand, prec)
	case *Compare:
		printNode(sb, n.Left, prec)
		sb.WriteString(compareSymbol(n.Op))
		printNode(sb, n.Right, prec+1)
	case *ToInt, *DateToSerial, *DateTimeToSerial:
		// transparent: print the wrapped operand only.
		printNode(sb, transparentOperand(n), parentPrec)
		if needsParens {
			sb.WriteByte(')')
		}
		return
	case *Aggregate:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		if n.Loc.IsCrossSheet() {
			sb.WriteString(quoteSheetName(n.Loc.Sheet))
			sb.WriteByte('!')
		}
		sb.WriteString(n.Loc.Range.ToA1())
		sb.WriteByte(')')
	case *Call:
		sb.WriteString(n.Spec.Name)
		sb.WriteByte('(')
		callArgs := n.Args
		if n.Spec.Name == "YEARFRAC" && len(callArgs) == 3 && isLiteralZero(callArgs[2]) {
			callArgs = callArgs[:2]
		}
		for i, a := range callArgs {
			if i > 0 {
				sb.WriteByte(',')
			}
			printNode(sb, a, -1)
		}
		sb.WriteByte(')')
	}
	if needsParens {
		sb.WriteByte(')')
	}
}

// isLiteralZero reports whether expr is a numeric literal equal to zero,
// the condition under which YEARFRAC's default basis argument is elided.
func isLiteralZero(expr Expr) bool {
	lit, ok := expr.(*Lit)
	if !ok || lit.Value.Kind != KindNumber {
		return false
	}
	return lit.Value.Number.IsZero()
}

func transparentOperand(n Expr) Expr {
	switch v := n.(type) {
	case *ToInt:
		return v.Operand
	case *DateToSerial:
		return v.Operand
	case *DateTimeToSerial:
		return v.Operand
	default:
		return n
	}
}

func printLit(v CellValue) string {
	switch v.Kind {
	case KindText:
		return "\"" + strings.ReplaceAll(v.Text, "\"", "\"\"") + "\""
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.Error.String()
	case KindEmpty:
		return ""
	default:
		return v.String()
	}
}

func arithSymbol(op ArithOp) string {
	switch op {
	case ArithAdd:
		return "+"
	case ArithSub:
		return "-"
	case ArithMul:
		return "*"
	case ArithDiv:
		return "/"
	default:
		return "?"
	}
}

func compareSymbol(op CompareOp) string {
	switch op {
	case CompareEq:
		return "="
	case CompareNeq:
		return "<>"
	case CompareLt:
		return "<"
	case CompareLte:
		return "<="
	case CompareGt:
		return ">"
	case CompareGte:
		return ">="
	default:
		return "?"
	}
}

func quoteSheetName(name string) string {
	plain := true
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			plain = false
			break
		}
	}
	if plain && name != "" {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
