package formula

import "github.com/shopspring/decimal"

var errorHandlingFunctions = []*FunctionSpec{
	{
		Name: "NA", Arity: Exactly(0), ResKind: KindError,
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			return CellValue{}, propagate(ErrNA)
		},
	},
	{
		Name: "ERROR.TYPE", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "error_val"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			v, err := ctx.Eval(args[0])
			kind := cellError2(v, err)
			if kind == 0 {
				return CellValue{}, propagate(ErrNA)
			}
			return NumberValue(decimal.NewFromInt(int64(kind))), nil
		},
	},
}

func cellError2(v CellValue, err EvalError) ErrorKind {
	if err != nil {
		return err.Kind()
	}
	if v.resolved().Kind == KindError {
		return v.resolved().Error
	}
	return 0
}
