package formula

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var financialFunctions = []*FunctionSpec{
	{
		Name: "PMT", Arity: Between(3, 5), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "rate"}, {Name: "nper"}, {Name: "pv"}, {Name: "fv"}, {Name: "type"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			rate, nper, pv, fv, dueAtStart, err := loanArgs(ctx, args)
			if err != nil {
				return CellValue{}, err
			}
			return NumberValue(pmtFloat(rate, nper, pv, fv, dueAtStart)), nil
		},
	},
	{
		Name: "FV", Arity: Between(3, 5), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "rate"}, {Name: "nper"}, {Name: "pmt"}, {Name: "pv"}, {Name: "type"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			rate, err := evalFloat(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			nper, err := evalFloat(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			pmt, err := evalFloat(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			pv := 0.0
			if len(args) > 3 {
				if pv, err = evalFloat(ctx, args[3]); err != nil {
					return CellValue{}, err
				}
			}
			dueAtStart := false
			if len(args) > 4 {
				if dueAtStart, err = evalBoolArg(ctx, args[4]); err != nil {
					return CellValue{}, err
				}
			}
			return NumberValue(decimal.NewFromFloat(fvFloat(rate, nper, pmt, pv, dueAtStart))), nil
		},
	},
	{
		Name: "PV", Arity: Between(3, 5), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "rate"}, {Name: "nper"}, {Name: "pmt"}, {Name: "fv"}, {Name: "type"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			rate, err := evalFloat(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			nper, err := evalFloat(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			pmt, err := evalFloat(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			fv := 0.0
			if len(args) > 3 {
				if fv, err = evalFloat(ctx, args[3]); err != nil {
					return CellValue{}, err
				}
			}
			dueAtStart := false
			if len(args) > 4 {
				if dueAtStart, err = evalBoolArg(ctx, args[4]); err != nil {
					return CellValue{}, err
				}
			}
			return NumberValue(decimal.NewFromFloat(pvFloat(rate, nper, pmt, fv, dueAtStart))), nil
		},
	},
	{
		Name: "NPER", Arity: Between(3, 5), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "rate"}, {Name: "pmt"}, {Name: "pv"}, {Name: "fv"}, {Name: "type"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			rate, err := evalFloat(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			pmt, err := evalFloat(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			pv, err := evalFloat(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			fv := 0.0
			if len(args) > 3 {
				if fv, err = evalFloat(ctx, args[3]); err != nil {
					return CellValue{}, err
				}
			}
			dueAtStart := false
			if len(args) > 4 {
				if dueAtStart, err = evalBoolArg(ctx, args[4]); err != nil {
					return CellValue{}, err
				}
			}
			n, nerr := nperFloat(rate, pmt, pv, fv, dueAtStart)
			if nerr != nil {
				return CellValue{}, nerr
			}
			return NumberValue(decimal.NewFromFloat(n)), nil
		},
	},
	{
		Name: "RATE", Arity: Between(3, 6), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "nper"}, {Name: "pmt"}, {Name: "pv"}, {Name: "fv"}, {Name: "type"}, {Name: "guess"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			nper, err := evalFloat(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			pmt, err := evalFloat(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			pv, err := evalFloat(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			fv := 0.0
			if len(args) > 3 {
				if fv, err = evalFloat(ctx, args[3]); err != nil {
					return CellValue{}, err
				}
			}
			dueAtStart := false
			if len(args) > 4 {
				if dueAtStart, err = evalBoolArg(ctx, args[4]); err != nil {
					return CellValue{}, err
				}
			}
			guess := 0.1
			if len(args) > 5 {
				if guess, err = evalFloat(ctx, args[5]); err != nil {
					return CellValue{}, err
				}
			}
			r, rerr := rateFloat(nper, pmt, pv, fv, dueAtStart, guess)
			if rerr != nil {
				return CellValue{}, rerr
			}
			return NumberValue(decimal.NewFromFloat(r)), nil
		},
	},
	{
		Name: "NPV", Arity: AtLeast(2), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "rate"}, {Name: "value", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			rate, err := evalFloat(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			if rate == -1 {
				return CellValue{}, propagate(ErrNum)
			}
			vals, err := numberArgs(ctx, args[1:])
			if err != nil {
				return CellValue{}, err
			}
			sum := 0.0
			for i, v := range vals {
				f, _ := v.Float64()
				sum += f / math.Pow(1+rate, float64(i+1))
			}
			return NumberValue(decimal.NewFromFloat(sum)), nil
		},
	},
	{
		Name: "IRR", Arity: Between(1, 2), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "values"}, {Name: "guess"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			vals, err := numberArgs(ctx, []Expr{args[0]})
			if err != nil {
				return CellValue{}, err
			}
			guess := 0.1
			if len(args) == 2 {
				if guess, err = evalFloat(ctx, args[1]); err != nil {
					return CellValue{}, err
				}
			}
			floats := make([]float64, len(vals))
			for i, v := range vals {
				floats[i], _ = v.Float64()
			}
			if !hasSignChange(floats) {
				return CellValue{}, propagate(ErrNum)
			}
			r, ok := irrFloat(floats, guess)
			if !ok {
				return CellValue{}, propagate(ErrNum)
			}
			return NumberValue(decimal.NewFromFloat(r)), nil
		},
	},
	{
		Name: "XNPV", Arity: Exactly(3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "rate"}, {Name: "values"}, {Name: "dates"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			rate, err := evalFloat(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			vals, dates, err := cashflowSeries(ctx, args[1], args[2])
			if err != nil {
				return CellValue{}, err
			}
			return NumberValue(decimal.NewFromFloat(xnpvFloat(rate, vals, dates))), nil
		},
	},
	{
		Name: "XIRR", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "values"}, {Name: "dates"}, {Name: "guess"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			vals, dates, err := cashflowSeries(ctx, args[0], args[1])
			if err != nil {
				return CellValue{}, err
			}
			guess := 0.1
			if len(args) == 3 {
				if guess, err = evalFloat(ctx, args[2]); err != nil {
					return CellValue{}, err
				}
			}
			if !hasSignChange(vals) {
				return CellValue{}, propagate(ErrNum)
			}
			r, ok := xirrFloat(vals, dates, guess)
			if !ok {
				return CellValue{}, propagate(ErrNum)
			}
			return NumberValue(decimal.NewFromFloat(r)), nil
		},
	},
}

func evalFloat(ctx *EvalCtx, e Expr) (float64, EvalError) {
	d, err := evalNumber(ctx, e)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func loanArgs(ctx *EvalCtx, args []Expr) (rate, nper, pv, fv float64, dueAtStart bool, err EvalError) {
	if rate, err = evalFloat(ctx, args[0]); err != nil {
		return
	}
	if nper, err = evalFloat(ctx, args[1]); err != nil {
		return
	}
	if pv, err = evalFloat(ctx, args[2]); err != nil {
		return
	}
	if len(args) > 3 {
		if fv, err = evalFloat(ctx, args[3]); err != nil {
			return
		}
	}
	if len(args) > 4 {
		dueAtStart, err = evalBoolArg(ctx, args[4])
	}
	return
}

func pmtFloat(rate, nper, pv, fv float64, dueAtStart bool) decimal.Decimal {
	if rate == 0 {
		return decimal.NewFromFloat(-(pv + fv) / nper)
	}
	factor := math.Pow(1+rate, nper)
	pmt := rate * (pv*factor + fv) / (factor - 1) * -1
	if dueAtStart {
		pmt /= 1 + rate
	}
	return decimal.NewFromFloat(pmt)
}

func fvFloat(rate, nper, pmt, pv float64, dueAtStart bool) float64 {
	if rate == 0 {
		return -(pv + pmt*nper)
	}
	factor := math.Pow(1+rate, nper)
	annuityFactor := (factor - 1) / rate
	if dueAtStart {
		annuityFactor *= 1 + rate
	}
	return -(pv*factor + pmt*annuityFactor)
}

func pvFloat(rate, nper, pmt, fv float64, dueAtStart bool) float64 {
	if rate == 0 {
		return -(fv + pmt*nper)
	}
	factor := math.Pow(1+rate, nper)
	annuityFactor := (factor - 1) / rate
	if dueAtStart {
		annuityFactor *= 1 + rate
	}
	return -(fv + pmt*annuityFactor) / factor
}

func nperFloat(rate, pmt, pv, fv float64, dueAtStart bool) (float64, EvalError) {
	if rate == 0 {
		if pmt == 0 {
			return 0, &DivByZero{Numerator: "pv+fv", Denominator: "pmt"}
		}
		return -(pv + fv) / pmt, nil
	}
	p := pmt
	if dueAtStart {
		p *= 1 + rate
	}
	numerator := p - fv*rate
	denominator := pv*rate + p
	if denominator == 0 || numerator/denominator <= 0 {
		return 0, propagate(ErrNum)
	}
	return math.Log(numerator/denominator) / math.Log(1+rate), nil
}

func rateFloat(nper, pmt, pv, fv float64, dueAtStart bool, guess float64) (float64, EvalError) {
	r := guess
	for i := 0; i < 100; i++ {
		f := pvFloat(r, nper, pmt, fv, dueAtStart) - pv
		if math.Abs(f) < 1e-9 {
			return r, nil
		}
		eps := 1e-6
		df := (pvFloat(r+eps, nper, pmt, fv, dueAtStart) - pvFloat(r-eps, nper, pmt, fv, dueAtStart)) / (2 * eps)
		if df == 0 {
			break
		}
		r -= f / df
	}
	return 0, propagate(ErrNum)
}

// hasSignChange reports whether cashflows contains at least one positive
// and one negative value, the precondition NPV's iterative solvers
// (IRR, XIRR) require before a rate of return is even meaningful.
func hasSignChange(cashflows []float64) bool {
	hasPos, hasNeg := false, false
	for _, f := range cashflows {
		if f > 0 {
			hasPos = true
		}
		if f < 0 {
			hasNeg = true
		}
	}
	return hasPos && hasNeg
}

func irrFloat(cashflows []float64, guess float64) (float64, bool) {
	npv := func(r float64) float64 {
		sum := 0.0
		for i, cf := range cashflows {
			sum += cf / math.Pow(1+r, float64(i))
		}
		return sum
	}
	r := guess
	for i := 0; i < 50; i++ {
		f := npv(r)
		eps := 1e-6
		df := (npv(r+eps) - npv(r-eps)) / (2 * eps)
		if df == 0 {
			return 0, false
		}
		next := r - f/df
		if math.Abs(next-r) < 1e-7 {
			return next, true
		}
		r = next
	}
	return 0, false
}

func cashflowSeries(ctx *EvalCtx, valuesArg, datesArg Expr) ([]float64, []time.Time, EvalError) {
	vals, err := numberArgs(ctx, []Expr{valuesArg})
	if err != nil {
		return nil, nil, err
	}
	dateCells, err := cellsOf(ctx, datesArg)
	if err != nil {
		return nil, nil, err
	}
	var dates []time.Time
	for c := range dateCells {
		v := c.Value.resolved()
		switch v.Kind {
		case KindDateTime:
			dates = append(dates, v.DateTime)
		case KindNumber:
			dates = append(dates, serialToDateTime(v.Number))
		}
	}
	floats := make([]float64, len(vals))
	for i, v := range vals {
		floats[i], _ = v.Float64()
	}
	return floats, dates, nil
}

func xnpvFloat(rate float64, values []float64, dates []time.Time) float64 {
	if len(values) == 0 || len(dates) == 0 {
		return 0
	}
	d0 := dates[0]
	sum := 0.0
	for i := range values {
		if i >= len(dates) {
			break
		}
		days := dates[i].Sub(d0).Hours() / 24
		sum += values[i] / math.Pow(1+rate, days/365)
	}
	return sum
}

func xirrFloat(values []float64, dates []time.Time, guess float64) (float64, bool) {
	f := func(r float64) float64 { return xnpvFloat(r, values, dates) }
	r := guess
	for i := 0; i < 100; i++ {
		fr := f(r)
		eps := 1e-6
		df := (f(r+eps) - f(r-eps)) / (2 * eps)
		if df == 0 {
			return 0, false
		}
		next := r - fr/df
		if math.Abs(next-r) < 1e-7 {
			return next, true
		}
		r = next
	}
	return 0, false
}
