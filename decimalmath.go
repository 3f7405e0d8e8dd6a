package formula

import (
	"math"

	"github.com/shopspring/decimal"
)

// decimal.Decimal has no native transcendental functions; these bridge
// through float64 for sqrt/ln/log/exp, which is standard practice for
// spreadsheet-grade (not cryptographic) precision.

func decimalSqrt(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(math.Sqrt(f))
}

func decimalLn(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(math.Log(f))
}

func decimalLog10(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(math.Log10(f))
}

func decimalLogBase(d, base decimal.Decimal) decimal.Decimal {
	df, _ := d.Float64()
	bf, _ := base.Float64()
	return decimal.NewFromFloat(math.Log(df) / math.Log(bf))
}

func decimalExp(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(math.Exp(f))
}

func decimalPowFloat(base, exp decimal.Decimal) decimal.Decimal {
	bf, _ := base.Float64()
	ef, _ := exp.Float64()
	return decimal.NewFromFloat(math.Pow(bf, ef))
}

func decimalAbs(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return d.Neg()
	}
	return d
}

func decimalMod(a, b decimal.Decimal) decimal.Decimal {
	m := a.Mod(b)
	if !m.IsZero() && m.Sign() != b.Sign() {
		m = m.Add(b)
	}
	return m
}

func decimalMax(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
