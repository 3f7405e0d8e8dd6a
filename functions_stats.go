package formula

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// foldFunctions exposes every aggregatorRegistry entry as a variadic
// function accepting a mix of literals and ranges (SUM(1,2,A1:A10)),
// distinct from the Aggregate AST node which models the common
// single-range shorthand the dependency analyzer special-cases.
var foldFunctions = buildFoldFunctions()

func buildFoldFunctions() []*FunctionSpec {
	names := []string{"SUM", "AVERAGE", "MIN", "MAX", "VAR", "VARP", "STDEV", "STDEVP"}
	specs := make([]*FunctionSpec, 0, len(names)+2)
	for _, name := range names {
		agg := aggregatorRegistry[name]
		specs = append(specs, &FunctionSpec{
			Name: name, Arity: AtLeast(1), ResKind: KindNumber,
			Args: []ArgSpec{{Name: "value", Variadic: true}},
			Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
				state := newAggState()
				for _, a := range args {
					cells, err := cellsOf(ctx, a)
					if err != nil {
						return CellValue{}, err
					}
					for c := range cells {
						if v, ok := decodeNumericSkippable(c); ok {
							state = state.combine(v)
						}
					}
				}
				d, ferr := agg.Finalize(state)
				if ferr != nil {
					return CellValue{}, ferr
				}
				return NumberValue(d), nil
			},
		})
	}
	specs = append(specs, &FunctionSpec{
		Name: "COUNT", Arity: AtLeast(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			var n int64
			for _, a := range args {
				cells, err := cellsOf(ctx, a)
				if err != nil {
					return CellValue{}, err
				}
				for c := range cells {
					if _, ok := decodeNumericSkippable(c); ok {
						n++
					}
				}
			}
			return NumberValue(decimal.NewFromInt(n)), nil
		},
	})
	specs = append(specs, &FunctionSpec{
		Name: "COUNTA", Arity: AtLeast(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			var n int64
			for _, a := range args {
				cells, err := cellsOf(ctx, a)
				if err != nil {
					return CellValue{}, err
				}
				for c := range cells {
					if c.Value.resolved().Kind != KindEmpty {
						n++
					}
				}
			}
			return NumberValue(decimal.NewFromInt(n)), nil
		},
	})
	specs = append(specs, &FunctionSpec{
		Name: "PRODUCT", Arity: AtLeast(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			agg := aggregatorRegistry["PRODUCT"]
			state := newAggState()
			for _, a := range args {
				cells, err := cellsOf(ctx, a)
				if err != nil {
					return CellValue{}, err
				}
				for c := range cells {
					if v, ok := decodeNumericSkippable(c); ok {
						state = state.combine(v)
					}
				}
			}
			d, ferr := agg.Finalize(state)
			if ferr != nil {
				return CellValue{}, ferr
			}
			return NumberValue(d), nil
		},
	})
	return specs
}

var statsFunctions = []*FunctionSpec{
	{
		Name: "MEDIAN", Arity: AtLeast(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			vals, err := numberArgs(ctx, args)
			if err != nil {
				return CellValue{}, err
			}
			if len(vals) == 0 {
				return CellValue{}, propagate(ErrNum)
			}
			sort.Slice(vals, func(i, j int) bool { return vals[i].LessThan(vals[j]) })
			n := len(vals)
			if n%2 == 1 {
				return NumberValue(vals[n/2]), nil
			}
			return NumberValue(vals[n/2-1].Add(vals[n/2]).Div(decimal.NewFromInt(2))), nil
		},
	},
	{
		Name: "MODE", Arity: AtLeast(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			vals, err := numberArgs(ctx, args)
			if err != nil {
				return CellValue{}, err
			}
			counts := map[string]int{}
			order := map[string]decimal.Decimal{}
			for _, v := range vals {
				key := v.String()
				counts[key]++
				order[key] = v
			}
			best := ""
			bestCount := 0
			for k, c := range counts {
				if c > bestCount {
					best, bestCount = k, c
				}
			}
			if bestCount < 2 {
				return CellValue{}, propagate(ErrNA)
			}
			return NumberValue(order[best]), nil
		},
	},
	{
		Name: "LARGE", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "array"}, {Name: "k"}},
		Eval: orderStatFunc(false),
	},
	{
		Name: "SMALL", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "array"}, {Name: "k"}},
		Eval: orderStatFunc(true),
	},
	{
		Name: "SUMIF", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "range"}, {Name: "criteria"}, {Name: "sum_range"}},
		Eval: conditionalAgg(aggregatorRegistry["SUM"]),
	},
	{
		Name: "COUNTIF", Arity: Exactly(2), ResKind: KindNumber, Args: []ArgSpec{{Name: "range"}, {Name: "criteria"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			cells, err := cellsOf(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			critVal, err := ctx.Eval(args[1])
			if err != nil {
				return CellValue{}, err
			}
			cr := parseCriterion(critVal)
			var n int64
			for c := range cells {
				if cr.matches(c) {
					n++
				}
			}
			return NumberValue(decimal.NewFromInt(n)), nil
		},
	},
	{
		Name: "COUNTIFS", Arity: AtLeast(2), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "range", Variadic: true}, {Name: "criteria", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			pairs, err := criteriaPairs(ctx, args, args[0])
			if err != nil {
				return CellValue{}, err
			}
			n, cerr := countMultiCriteria(pairs)
			if cerr != nil {
				return CellValue{}, cerr
			}
			return NumberValue(decimal.NewFromInt(n)), nil
		},
	},
	{
		Name: "SUMIFS", Arity: AtLeast(3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "sum_range"}, {Name: "range", Variadic: true}, {Name: "criteria", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			sumCells, err := cellsOf(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			pairs, perr := criteriaPairs(ctx, args[1:], args[0])
			if perr != nil {
				return CellValue{}, perr
			}
			d, serr := sumMultiCriteria(sumCells, pairs)
			if serr != nil {
				return CellValue{}, serr
			}
			return NumberValue(d), nil
		},
	},
	{
		Name: "AVERAGEIF", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "range"}, {Name: "criteria"}, {Name: "average_range"}},
		Eval: conditionalAgg(aggregatorRegistry["AVERAGE"]),
	},
	{
		Name: "AVERAGEIFS", Arity: AtLeast(3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "average_range"}, {Name: "range", Variadic: true}, {Name: "criteria", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			avgCells, err := cellsOf(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			pairs, perr := criteriaPairs(ctx, args[1:], args[0])
			if perr != nil {
				return CellValue{}, perr
			}
			var collected []Cell
			for c := range avgCells {
				collected = append(collected, c)
			}
			state := newAggState()
			n := 0
			for i, c := range collected {
				if !rowMatchesAll(pairs, i) {
					continue
				}
				if v, ok := decodeNumericSkippable(c); ok {
					state = state.combine(v)
					n++
				}
			}
			if n == 0 {
				return CellValue{}, &DivByZero{Numerator: "SUM(range)", Denominator: "COUNT(range)"}
			}
			d, ferr := aggregatorRegistry["AVERAGE"].Finalize(state)
			if ferr != nil {
				return CellValue{}, ferr
			}
			return NumberValue(d), nil
		},
	},
}

func orderStatFunc(smallest bool) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		vals, err := numberArgs(ctx, []Expr{args[0]})
		if err != nil {
			return CellValue{}, err
		}
		k, err := evalInt(ctx, args[1])
		if err != nil {
			return CellValue{}, err
		}
		if k < 1 || int(k) > len(vals) {
			return CellValue{}, propagate(ErrNum)
		}
		sort.Slice(vals, func(i, j int) bool { return vals[i].LessThan(vals[j]) })
		if smallest {
			return NumberValue(vals[k-1]), nil
		}
		return NumberValue(vals[len(vals)-int(k)]), nil
	}
}

// criterionPair binds one (range, parsed criterion) position for the
// *IFS family; all ranges must line up positionally, cell by cell.
type criterionPair struct {
	cells []Cell
	crit  criterion
}

// shapeOf reports the width/height a function argument spans: a range
// reference reports its bounded extent, anything else (a literal, a
// single-cell reference, a nested expression) is a 1x1 scalar.
func shapeOf(ctx *EvalCtx, e Expr) (int, int, EvalError) {
	switch e.(type) {
	case *RangeRef, *SheetRange:
		_, r, err := rangeOf(ctx, e)
		if err != nil {
			return 0, 0, err
		}
		return int(r.Width()), int(r.Height()), nil
	default:
		return 1, 1, nil
	}
}

// criteriaPairs parses the (range, criteria) argument pairs of the *IFS
// family and validates each criteria range matches primary's shape,
// erroring (naming both dimensions) rather than silently truncating a
// mismatched range to the shorter length.
func criteriaPairs(ctx *EvalCtx, args []Expr, primary Expr) ([]criterionPair, EvalError) {
	if len(args)%2 != 0 {
		return nil, &EvalFailed{Message: "criteria ranges and criteria must come in pairs"}
	}
	primaryW, primaryH, err := shapeOf(ctx, primary)
	if err != nil {
		return nil, err
	}
	pairs := make([]criterionPair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		w, h, err := shapeOf(ctx, args[i])
		if err != nil {
			return nil, err
		}
		if w != primaryW || h != primaryH {
			return nil, &EvalFailed{Message: fmt.Sprintf(
				"criteria range has shape %dx%d but the primary range has shape %dx%d", w, h, primaryW, primaryH)}
		}
		cellsIter, err := cellsOf(ctx, args[i])
		if err != nil {
			return nil, err
		}
		var cells []Cell
		for c := range cellsIter {
			cells = append(cells, c)
		}
		critVal, err := ctx.Eval(args[i+1])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, criterionPair{cells: cells, crit: parseCriterion(critVal)})
	}
	return pairs, nil
}

func rowMatchesAll(pairs []criterionPair, row int) bool {
	for _, p := range pairs {
		if row >= len(p.cells) || !p.crit.matches(p.cells[row]) {
			return false
		}
	}
	return true
}

func countMultiCriteria(pairs []criterionPair) (int64, EvalError) {
	if len(pairs) == 0 {
		return 0, nil
	}
	rows := len(pairs[0].cells)
	var n int64
	for row := 0; row < rows; row++ {
		if rowMatchesAll(pairs, row) {
			n++
		}
	}
	return n, nil
}

func sumMultiCriteria(sumCells func(yield func(Cell) bool), pairs []criterionPair) (decimal.Decimal, EvalError) {
	var collected []Cell
	for c := range sumCells {
		collected = append(collected, c)
	}
	state := newAggState()
	for i, c := range collected {
		if !rowMatchesAll(pairs, i) {
			continue
		}
		if v, ok := decodeNumericSkippable(c); ok {
			state = state.combine(v)
		}
	}
	return aggregatorRegistry["SUM"].Finalize(state)
}

// conditionalAgg implements the SUMIF/AVERAGEIF shape: two or three args,
// the third (if present) names a separate value range; otherwise the
// criteria range doubles as the value range.
func conditionalAgg(agg *Aggregator) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		critCells, err := cellsOf(ctx, args[0])
		if err != nil {
			return CellValue{}, err
		}
		critVal, err := ctx.Eval(args[1])
		if err != nil {
			return CellValue{}, err
		}
		cr := parseCriterion(critVal)

		var valueArg Expr = args[0]
		if len(args) == 3 {
			valueArg = args[2]
			cw, ch, err := shapeOf(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			vw, vh, err := shapeOf(ctx, valueArg)
			if err != nil {
				return CellValue{}, err
			}
			if cw != vw || ch != vh {
				return CellValue{}, &EvalFailed{Message: fmt.Sprintf(
					"sum_range has shape %dx%d but criteria range has shape %dx%d", vw, vh, cw, ch)}
			}
		}
		valueCells, err := cellsOf(ctx, valueArg)
		if err != nil {
			return CellValue{}, err
		}

		var critList, valueList []Cell
		for c := range critCells {
			critList = append(critList, c)
		}
		for c := range valueCells {
			valueList = append(valueList, c)
		}

		state := newAggState()
		for i, c := range critList {
			if !cr.matches(c) {
				continue
			}
			if v, ok := decodeNumericSkippable(valueList[i]); ok {
				state = state.combine(v)
			}
		}
		d, ferr := agg.Finalize(state)
		if ferr != nil {
			return CellValue{}, ferr
		}
		return NumberValue(d), nil
	}
}
