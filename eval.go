package formula

import "github.com/shopspring/decimal"

// EvalCtx threads everything one Eval call needs: the workbook a
// cross-sheet reference resolves against, the sheet an unqualified
// reference resolves against, and the clock volatile functions read.
// EvalCtx carries no mutable evaluation state — Eval is a pure function
// of (ctx, expr) to (CellValue, EvalError), per spec.md §5.
type EvalCtx struct {
	Workbook WorkbookAccess
	Sheet    SheetAccess
	Clock    Clock
}

// WithSheet returns a copy of ctx scoped to a different current sheet,
// used when a function argument's reference should resolve relative to a
// sheet other than the formula's host sheet.
func (ctx *EvalCtx) WithSheet(sheet SheetAccess) *EvalCtx {
	cp := *ctx
	cp.Sheet = sheet
	return &cp
}

// propagatedError carries an ErrorKind verbatim, used when a value that is
// itself a spreadsheet error (e.g. a cell already holding #REF!) flows
// through an operator: the original kind survives instead of collapsing to
// a generic #VALUE!.
type propagatedError struct {
	kind    ErrorKind
	message string
}

func (e *propagatedError) Error() string  { return e.message }
func (e *propagatedError) Kind() ErrorKind { return e.kind }

func propagate(k ErrorKind) EvalError {
	return &propagatedError{kind: k, message: k.String()}
}

// Eval evaluates expr against ctx, implementing every node-kind rule
// spec.md §4.4 specifies (arithmetic, short-circuit logic, comparisons,
// aggregates, and named function calls).
func (ctx *EvalCtx) Eval(expr Expr) (CellValue, EvalError) {
	switch n := expr.(type) {
	case *Lit:
		return n.Value, nil

	case *Ref:
		cell := ctx.Sheet.Get(n.Addr)
		v, cerr := n.Decode(cell)
		if cerr != nil {
			return CellValue{}, &CodecFailed{Address: n.Addr.ToA1(), Cause: cerr}
		}
		return v, nil

	case *SheetRef:
		sheet, ok := ctx.Workbook.Sheet(n.Sheet)
		if !ok {
			return CellValue{}, &EvalFailed{Message: "unknown sheet", Context: n.Sheet}
		}
		cell := sheet.Get(n.Addr)
		v, cerr := n.Decode(cell)
		if cerr != nil {
			return CellValue{}, &CodecFailed{Address: n.Sheet + "!" + n.Addr.ToA1(), Cause: cerr}
		}
		return v, nil

	case *PolyRef, *SheetPolyRef:
		return CellValue{}, &EvalFailed{Message: "unresolved polymorphic reference reached evaluator"}

	case *RangeRef, *SheetRange:
		return CellValue{}, &EvalFailed{Message: "a range reference cannot be evaluated to a scalar value"}

	case *Arith:
		return ctx.evalArith(n)

	case *Logical:
		return ctx.evalLogical(n)

	case *Not:
		v, err := ctx.Eval(n.Operand)
		if err != nil {
			return CellValue{}, err
		}
		b, berr := valueAsBool(v)
		if berr != nil {
			return CellValue{}, berr
		}
		return BoolValue(!b), nil

	case *Compare:
		return ctx.evalCompare(n)

	case *ToInt:
		v, err := ctx.Eval(n.Operand)
		if err != nil {
			return CellValue{}, err
		}
		d, nerr := valueAsNumber(v)
		if nerr != nil {
			return CellValue{}, nerr
		}
		if !d.IsInteger() {
			return CellValue{}, &TypeMismatch{Expected: "integer", Actual: d.String()}
		}
		return NumberValue(d), nil

	case *DateToSerial:
		v, err := ctx.Eval(n.Operand)
		if err != nil {
			return CellValue{}, err
		}
		v = v.resolved()
		if v.Kind != KindDateTime {
			return CellValue{}, &TypeMismatch{Expected: "date", Actual: v.Kind.String()}
		}
		return NumberValue(dateToSerial(v.DateTime)), nil

	case *DateTimeToSerial:
		v, err := ctx.Eval(n.Operand)
		if err != nil {
			return CellValue{}, err
		}
		v = v.resolved()
		if v.Kind != KindDateTime {
			return CellValue{}, &TypeMismatch{Expected: "date", Actual: v.Kind.String()}
		}
		return NumberValue(dateTimeToSerial(v.DateTime)), nil

	case *Aggregate:
		return ctx.evalAggregate(n)

	case *Call:
		return n.Spec.Eval(ctx, n.Args)

	default:
		return CellValue{}, &EvalFailed{Message: "unknown expression node"}
	}
}

func (ctx *EvalCtx) evalArith(n *Arith) (CellValue, EvalError) {
	lv, lerr := ctx.Eval(n.Left)
	if lerr != nil {
		return CellValue{}, lerr
	}
	l, lnErr := valueAsNumber(lv)
	if lnErr != nil {
		return CellValue{}, lnErr
	}
	rv, rerr := ctx.Eval(n.Right)
	if rerr != nil {
		return CellValue{}, rerr
	}
	r, rnErr := valueAsNumber(rv)
	if rnErr != nil {
		return CellValue{}, rnErr
	}
	switch n.Op {
	case ArithAdd:
		return NumberValue(l.Add(r)), nil
	case ArithSub:
		return NumberValue(l.Sub(r)), nil
	case ArithMul:
		return NumberValue(l.Mul(r)), nil
	case ArithDiv:
		if r.IsZero() {
			return CellValue{}, &DivByZero{Numerator: Print(n.Left), Denominator: Print(n.Right)}
		}
		return NumberValue(l.Div(r)), nil
	default:
		return CellValue{}, newEvalFailed("unknown arithmetic operator")
	}
}

func (ctx *EvalCtx) evalLogical(n *Logical) (CellValue, EvalError) {
	lv, lerr := ctx.Eval(n.Left)
	if lerr != nil {
		return CellValue{}, lerr
	}
	lb, lberr := valueAsBool(lv)
	if lberr != nil {
		return CellValue{}, lberr
	}
	// short-circuit: the unevaluated branch's errors never surface.
	if n.Op == LogicalAnd && !lb {
		return BoolValue(false), nil
	}
	if n.Op == LogicalOr && lb {
		return BoolValue(true), nil
	}
	rv, rerr := ctx.Eval(n.Right)
	if rerr != nil {
		return CellValue{}, rerr
	}
	rb, rberr := valueAsBool(rv)
	if rberr != nil {
		return CellValue{}, rberr
	}
	return BoolValue(rb), nil
}

func (ctx *EvalCtx) evalCompare(n *Compare) (CellValue, EvalError) {
	lv, lerr := ctx.Eval(n.Left)
	if lerr != nil {
		return CellValue{}, lerr
	}
	rv, rerr := ctx.Eval(n.Right)
	if rerr != nil {
		return CellValue{}, rerr
	}
	if n.Op == CompareEq || n.Op == CompareNeq {
		eq := cellValueEqual(lv, rv)
		if n.Op == CompareNeq {
			eq = !eq
		}
		return BoolValue(eq), nil
	}
	l, lnErr := valueAsNumber(lv)
	if lnErr != nil {
		return CellValue{}, lnErr
	}
	r, rnErr := valueAsNumber(rv)
	if rnErr != nil {
		return CellValue{}, rnErr
	}
	cmp := l.Cmp(r)
	switch n.Op {
	case CompareLt:
		return BoolValue(cmp < 0), nil
	case CompareLte:
		return BoolValue(cmp <= 0), nil
	case CompareGt:
		return BoolValue(cmp > 0), nil
	case CompareGte:
		return BoolValue(cmp >= 0), nil
	default:
		return CellValue{}, newEvalFailed("unknown comparison operator")
	}
}

func (ctx *EvalCtx) evalAggregate(n *Aggregate) (CellValue, EvalError) {
	agg, ok := aggregatorRegistry[n.Name]
	if !ok {
		return CellValue{}, &EvalFailed{Message: "unknown aggregator", Context: n.Name}
	}
	sheet, serr := resolveLocation(ctx.Workbook, ctx.Sheet, n.Loc)
	if serr != nil {
		return CellValue{}, serr
	}
	d, aerr := runAggregate(agg, rangeCells(sheet, n.Loc.Range))
	if aerr != nil {
		return CellValue{}, aerr
	}
	return NumberValue(d), nil
}

// valueAsNumber coerces a CellValue into a decimal the way a bare
// arithmetic/comparison operand coerces: Empty->0, Bool->1/0, an embedded
// error propagates verbatim, anything else is a TypeMismatch.
func valueAsNumber(v CellValue) (decimal.Decimal, EvalError) {
	v = v.resolved()
	switch v.Kind {
	case KindNumber:
		return v.Number, nil
	case KindEmpty:
		return decimal.Zero, nil
	case KindBool:
		if v.Bool {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case KindError:
		return decimal.Zero, propagate(v.Error)
	default:
		return decimal.Zero, &TypeMismatch{Expected: "number", Actual: v.Kind.String()}
	}
}

// valueAsBool coerces a CellValue the way a bare logical operand coerces.
func valueAsBool(v CellValue) (bool, EvalError) {
	v = v.resolved()
	switch v.Kind {
	case KindBool:
		return v.Bool, nil
	case KindNumber:
		return !v.Number.IsZero(), nil
	case KindEmpty:
		return false, nil
	case KindError:
		return false, propagate(v.Error)
	default:
		return false, &TypeMismatch{Expected: "boolean", Actual: v.Kind.String()}
	}
}
