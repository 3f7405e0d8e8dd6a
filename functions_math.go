package formula

import "github.com/shopspring/decimal"

var mathFunctions = []*FunctionSpec{
	{
		Name: "ABS", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}},
		Eval: unaryNumberFunc(decimalAbs),
	},
	{
		Name: "SQRT", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			d, err := evalNumber(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			if d.IsNegative() {
				return CellValue{}, &TypeMismatch{Function: "SQRT", Expected: "a non-negative number", Actual: d.String()}
			}
			return NumberValue(decimalSqrt(d)), nil
		},
	},
	{
		Name: "LN", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}},
		Eval: unaryNumberFunc(decimalLn),
	},
	{
		Name: "LOG10", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}},
		Eval: unaryNumberFunc(decimalLog10),
	},
	{
		Name: "LOG", Arity: Between(1, 2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "base"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			d, err := evalNumber(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			if len(args) == 1 {
				return NumberValue(decimalLog10(d)), nil
			}
			base, err := evalNumber(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			return NumberValue(decimalLogBase(d, base)), nil
		},
	},
	{
		Name: "EXP", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}},
		Eval: unaryNumberFunc(decimalExp),
	},
	{
		Name: "POWER", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "power"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			base, err := evalNumber(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			exp, err := evalNumber(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			if exp.IsInteger() {
				return NumberValue(base.Pow(exp)), nil
			}
			return NumberValue(decimalPowFloat(base, exp)), nil
		},
	},
	{
		Name: "MOD", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "divisor"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			a, err := evalNumber(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			b, err := evalNumber(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			if b.IsZero() {
				return CellValue{}, &DivByZero{Numerator: Print(args[0]), Denominator: Print(args[1])}
			}
			return NumberValue(decimalMod(a, b)), nil
		},
	},
	{
		Name: "ROUND", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "num_digits"}},
		Eval: roundFunc(func(d decimal.Decimal, places int32) decimal.Decimal { return d.Round(places) }),
	},
	{
		Name: "ROUNDUP", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "num_digits"}},
		Eval: roundFunc(roundAwayFromZero),
	},
	{
		Name: "ROUNDDOWN", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "num_digits"}},
		Eval: roundFunc(roundTowardZero),
	},
	{
		Name: "FLOOR", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "significance"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			d, sig, err := evalPair(ctx, args)
			if err != nil {
				return CellValue{}, err
			}
			if sig.IsZero() {
				return CellValue{}, &DivByZero{Numerator: Print(args[0]), Denominator: Print(args[1])}
			}
			return NumberValue(d.Div(sig).Floor().Mul(sig)), nil
		},
	},
	{
		Name: "CEILING", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "significance"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			d, sig, err := evalPair(ctx, args)
			if err != nil {
				return CellValue{}, err
			}
			if sig.IsZero() {
				return CellValue{}, &DivByZero{Numerator: Print(args[0]), Denominator: Print(args[1])}
			}
			return NumberValue(d.Div(sig).Ceil().Mul(sig)), nil
		},
	},
	{
		Name: "INT", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}},
		Eval: unaryNumberFunc(func(d decimal.Decimal) decimal.Decimal { return d.Floor() }),
	},
	{
		Name: "TRUNC", Arity: Between(1, 2), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}, {Name: "num_digits"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			d, err := evalNumber(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			places := int32(0)
			if len(args) == 2 {
				p, err := evalInt(ctx, args[1])
				if err != nil {
					return CellValue{}, err
				}
				places = int32(p)
			}
			return NumberValue(roundTowardZero(d, places)), nil
		},
	},
	{
		Name: "SIGN", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "number"}},
		Eval: unaryNumberFunc(func(d decimal.Decimal) decimal.Decimal { return decimal.NewFromInt(int64(d.Sign())) }),
	},
	{
		Name: "SUMPRODUCT", Arity: AtLeast(1), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "array", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			columns := make([][]decimal.Decimal, len(args))
			length := -1
			for i, a := range args {
				cells, err := cellsOf(ctx, a)
				if err != nil {
					return CellValue{}, err
				}
				var col []decimal.Decimal
				for c := range cells {
					col = append(col, coerceToNumeric(c))
				}
				columns[i] = col
				if length == -1 || len(col) < length {
					length = len(col)
				}
			}
			sum := decimal.Zero
			for row := 0; row < length; row++ {
				term := decimal.NewFromInt(1)
				for _, col := range columns {
					term = term.Mul(col[row])
				}
				sum = sum.Add(term)
			}
			return NumberValue(sum), nil
		},
	},
}

func unaryNumberFunc(f func(decimal.Decimal) decimal.Decimal) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		d, err := evalNumber(ctx, args[0])
		if err != nil {
			return CellValue{}, err
		}
		return NumberValue(f(d)), nil
	}
}

func evalPair(ctx *EvalCtx, args []Expr) (decimal.Decimal, decimal.Decimal, EvalError) {
	a, err := evalNumber(ctx, args[0])
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	b, err := evalNumber(ctx, args[1])
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return a, b, nil
}

func roundFunc(f func(decimal.Decimal, int32) decimal.Decimal) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		d, err := evalNumber(ctx, args[0])
		if err != nil {
			return CellValue{}, err
		}
		places, err := evalInt(ctx, args[1])
		if err != nil {
			return CellValue{}, err
		}
		return NumberValue(f(d, int32(places))), nil
	}
}

func roundAwayFromZero(d decimal.Decimal, places int32) decimal.Decimal {
	if d.IsNegative() {
		return roundAwayFromZero(d.Neg(), places).Neg()
	}
	scale := decimal.New(1, places)
	return d.Mul(scale).Ceil().Div(scale)
}

func roundTowardZero(d decimal.Decimal, places int32) decimal.Decimal {
	if d.IsNegative() {
		return roundAwayFromZeroFloor(d.Neg(), places).Neg()
	}
	scale := decimal.New(1, places)
	return d.Mul(scale).Floor().Div(scale)
}

func roundAwayFromZeroFloor(d decimal.Decimal, places int32) decimal.Decimal {
	scale := decimal.New(1, places)
	return d.Mul(scale).Floor().Div(scale)
}
