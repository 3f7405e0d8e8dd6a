package formula

var logicalFunctions = []*FunctionSpec{
	{
		Name: "IF", Arity: Between(2, 3), ResKind: KindAny,
		Args: []ArgSpec{{Name: "logical_test"}, {Name: "value_if_true"}, {Name: "value_if_false"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			cond, err := evalBoolArg(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			if cond {
				return ctx.Eval(args[1])
			}
			if len(args) == 3 {
				return ctx.Eval(args[2])
			}
			return BoolValue(false), nil
		},
	},
	{
		Name: "IFS", Arity: AtLeast(2), ResKind: KindAny,
		Args: []ArgSpec{{Name: "condition", Variadic: true}, {Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			if len(args)%2 != 0 {
				return CellValue{}, &EvalFailed{Message: "IFS requires condition/value pairs"}
			}
			for i := 0; i < len(args); i += 2 {
				cond, err := evalBoolArg(ctx, args[i])
				if err != nil {
					return CellValue{}, err
				}
				if cond {
					return ctx.Eval(args[i+1])
				}
			}
			return CellValue{}, propagate(ErrNA)
		},
	},
	{
		Name: "SWITCH", Arity: AtLeast(3), ResKind: KindAny,
		Args: []ArgSpec{{Name: "expression"}, {Name: "value", Variadic: true}, {Name: "result", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			subject, err := ctx.Eval(args[0])
			if err != nil {
				return CellValue{}, err
			}
			rest := args[1:]
			for i := 0; i+1 < len(rest); i += 2 {
				caseVal, cerr := ctx.Eval(rest[i])
				if cerr != nil {
					return CellValue{}, cerr
				}
				if cellValueEqual(subject, caseVal) {
					return ctx.Eval(rest[i+1])
				}
			}
			if len(rest)%2 == 1 {
				return ctx.Eval(rest[len(rest)-1])
			}
			return CellValue{}, propagate(ErrNA)
		},
	},
	{
		Name: "IFERROR", Arity: Exactly(2), ResKind: KindAny,
		Args: []ArgSpec{{Name: "value"}, {Name: "value_if_error"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			v, err := ctx.Eval(args[0])
			if err == nil && v.resolved().Kind != KindError {
				return v, nil
			}
			return ctx.Eval(args[1])
		},
	},
	{
		Name: "IFNA", Arity: Exactly(2), ResKind: KindAny,
		Args: []ArgSpec{{Name: "value"}, {Name: "value_if_na"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			v, err := ctx.Eval(args[0])
			if isNAResult(v, err) {
				return ctx.Eval(args[1])
			}
			if err != nil {
				return CellValue{}, err
			}
			return v, nil
		},
	},
	{
		Name: "ISERROR", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "value"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			v, err := ctx.Eval(args[0])
			return BoolValue(err != nil || v.resolved().Kind == KindError), nil
		},
	},
	{
		Name: "ISERR", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "value"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			v, err := ctx.Eval(args[0])
			isErr := err != nil || v.resolved().Kind == KindError
			isNA := isNAResult(v, err)
			return BoolValue(isErr && !isNA), nil
		},
	},
	{
		Name: "ISNA", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "value"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			v, err := ctx.Eval(args[0])
			return BoolValue(isNAResult(v, err)), nil
		},
	},
	{
		Name: "ISBLANK", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "value"}},
		Eval: typeCheckFunc(func(v CellValue) bool { return v.Kind == KindEmpty }),
	},
	{
		Name: "ISNUMBER", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "value"}},
		Eval: typeCheckFunc(func(v CellValue) bool { return v.Kind == KindNumber }),
	},
	{
		Name: "ISTEXT", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "value"}},
		Eval: typeCheckFunc(func(v CellValue) bool { return v.Kind == KindText || v.Kind == KindRichText }),
	},
	{
		Name: "ISLOGICAL", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "value"}},
		Eval: typeCheckFunc(func(v CellValue) bool { return v.Kind == KindBool }),
	},
	{
		Name: "AND", Arity: AtLeast(1), ResKind: KindBool, Args: []ArgSpec{{Name: "logical", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			for _, a := range args {
				b, err := evalBoolArg(ctx, a)
				if err != nil {
					return CellValue{}, err
				}
				if !b {
					return BoolValue(false), nil
				}
			}
			return BoolValue(true), nil
		},
	},
	{
		Name: "OR", Arity: AtLeast(1), ResKind: KindBool, Args: []ArgSpec{{Name: "logical", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			for _, a := range args {
				b, err := evalBoolArg(ctx, a)
				if err != nil {
					return CellValue{}, err
				}
				if b {
					return BoolValue(true), nil
				}
			}
			return BoolValue(false), nil
		},
	},
	{
		Name: "NOT", Arity: Exactly(1), ResKind: KindBool, Args: []ArgSpec{{Name: "logical"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			b, err := evalBoolArg(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			return BoolValue(!b), nil
		},
	},
	{
		Name: "CHOOSE", Arity: AtLeast(2), ResKind: KindAny,
		Args: []ArgSpec{{Name: "index_num"}, {Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			idx, err := evalInt(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			rest := args[1:]
			if idx < 1 || int(idx) > len(rest) {
				return CellValue{}, propagate(ErrValue)
			}
			return ctx.Eval(rest[idx-1])
		},
	},
}

func typeCheckFunc(pred func(CellValue) bool) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		v, err := ctx.Eval(args[0])
		if err != nil {
			return BoolValue(pred(ErrorValue(cellError(err)))), nil
		}
		return BoolValue(pred(v.resolved())), nil
	}
}

func isNAResult(v CellValue, err EvalError) bool {
	if err != nil {
		return err.Kind() == ErrNA
	}
	return v.resolved().Kind == KindError && v.resolved().Error == ErrNA
}
