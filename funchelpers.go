package formula

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shared argument-evaluation helpers every functions_*.go file uses: each
// evaluates one argument expression and coerces it to the Go type the
// function needs, reusing the same coercion rules as the bare operators
// (valueAsNumber/valueAsBool) plus a couple of function-specific ones.

func evalNumber(ctx *EvalCtx, e Expr) (decimal.Decimal, EvalError) {
	v, err := ctx.Eval(e)
	if err != nil {
		return decimal.Zero, err
	}
	return valueAsNumber(v)
}

func evalInt(ctx *EvalCtx, e Expr) (int64, EvalError) {
	d, err := evalNumber(ctx, e)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

func evalBoolArg(ctx *EvalCtx, e Expr) (bool, EvalError) {
	v, err := ctx.Eval(e)
	if err != nil {
		return false, err
	}
	return valueAsBool(v)
}

func evalText(ctx *EvalCtx, e Expr) (string, EvalError) {
	v, err := ctx.Eval(e)
	if err != nil {
		return "", err
	}
	return v.resolved().String(), nil
}

func evalDate(ctx *EvalCtx, e Expr) (time.Time, EvalError) {
	v, err := ctx.Eval(e)
	if err != nil {
		return time.Time{}, err
	}
	v = v.resolved()
	switch v.Kind {
	case KindDateTime:
		return v.DateTime, nil
	case KindNumber:
		return serialToDateTime(v.Number), nil
	default:
		return time.Time{}, &TypeMismatch{Expected: "date", Actual: v.Kind.String()}
	}
}

func evalValue(ctx *EvalCtx, e Expr) (CellValue, EvalError) {
	return ctx.Eval(e)
}

// rangeOf resolves a RangeRef/SheetRange argument to its backing sheet and
// its range clamped to that sheet's used extent, for functions (INDEX,
// MATCH, VLOOKUP) that need positional/random-access addressing rather
// than a plain value stream.
func rangeOf(ctx *EvalCtx, e Expr) (SheetAccess, CellRange, EvalError) {
	switch n := e.(type) {
	case *RangeRef:
		bounded, ok := n.Range.Intersect(ctx.Sheet.UsedRange())
		if !ok {
			return ctx.Sheet, CellRange{Start: n.Range.Start, End: n.Range.Start}, nil
		}
		return ctx.Sheet, bounded, nil
	case *SheetRange:
		sheet, ok := ctx.Workbook.Sheet(n.Sheet)
		if !ok {
			return nil, CellRange{}, &EvalFailed{Message: "unknown sheet", Context: n.Sheet}
		}
		bounded, ok := n.Range.Intersect(sheet.UsedRange())
		if !ok {
			return sheet, CellRange{Start: n.Range.Start, End: n.Range.Start}, nil
		}
		return sheet, bounded, nil
	default:
		return nil, CellRange{}, &EvalFailed{Message: "expected a range argument"}
	}
}

// cellsOf yields every cell a function argument designates: a RangeRef or
// SheetRange yields its whole (bounded) range, anything else yields the
// single evaluated cell as a synthetic one-cell stream.
func cellsOf(ctx *EvalCtx, e Expr) (func(yield func(Cell) bool), EvalError) {
	switch n := e.(type) {
	case *RangeRef:
		return rangeCells(ctx.Sheet, n.Range), nil
	case *SheetRange:
		sheet, ok := ctx.Workbook.Sheet(n.Sheet)
		if !ok {
			return nil, &EvalFailed{Message: "unknown sheet", Context: n.Sheet}
		}
		return rangeCells(sheet, n.Range), nil
	default:
		v, err := ctx.Eval(e)
		if err != nil {
			return nil, err
		}
		return func(yield func(Cell) bool) { yield(Cell{Value: v}) }, nil
	}
}

func numberArgs(ctx *EvalCtx, args []Expr) ([]decimal.Decimal, EvalError) {
	out := make([]decimal.Decimal, 0, len(args))
	for _, a := range args {
		cells, err := cellsOf(ctx, a)
		if err != nil {
			return nil, err
		}
		for c := range cells {
			if v, ok := decodeNumericSkippable(c); ok {
				out = append(out, v)
			}
		}
	}
	return out, nil
}
