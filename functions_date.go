package formula

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// serialEpoch is day zero of the serial-number date system (1899-12-30,
// two days before 1900-01-01, matching the de facto spreadsheet convention).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func dateOnlyUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateToSerial(t time.Time) decimal.Decimal {
	days := dateOnlyUTC(t).Sub(serialEpoch).Hours() / 24
	return decimal.NewFromInt(int64(math.Round(days)))
}

func dateTimeToSerial(t time.Time) decimal.Decimal {
	whole := dateToSerial(t)
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	frac := decimal.NewFromFloat(float64(secs) / 86400.0)
	return whole.Add(frac)
}

func serialToDateTime(d decimal.Decimal) time.Time {
	f, _ := d.Float64()
	days := math.Floor(f)
	frac := f - days
	t := serialEpoch.AddDate(0, 0, int(days))
	secs := int(math.Round(frac * 86400))
	return t.Add(time.Duration(secs) * time.Second)
}

var dateFunctions = []*FunctionSpec{
	{
		Name: "DATE", Arity: Exactly(3), ResKind: KindDateTime,
		Args: []ArgSpec{{Name: "year"}, {Name: "month"}, {Name: "day"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			y, err := evalInt(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			m, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			d, err := evalInt(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			t := time.Date(int(y), time.Month(m), int(d), 0, 0, 0, 0, time.UTC)
			return DateTimeValue(t), nil
		},
	},
	{
		Name: "YEAR", Arity: Exactly(1), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "date"}},
		Eval: dateFieldFunc(func(t time.Time) int64 { return int64(t.Year()) }),
	},
	{
		Name: "MONTH", Arity: Exactly(1), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "date"}},
		Eval: dateFieldFunc(func(t time.Time) int64 { return int64(t.Month()) }),
	},
	{
		Name: "DAY", Arity: Exactly(1), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "date"}},
		Eval: dateFieldFunc(func(t time.Time) int64 { return int64(t.Day()) }),
	},
	{
		Name: "HOUR", Arity: Exactly(1), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "time"}},
		Eval: dateFieldFunc(func(t time.Time) int64 { return int64(t.Hour()) }),
	},
	{
		Name: "MINUTE", Arity: Exactly(1), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "time"}},
		Eval: dateFieldFunc(func(t time.Time) int64 { return int64(t.Minute()) }),
	},
	{
		Name: "SECOND", Arity: Exactly(1), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "time"}},
		Eval: dateFieldFunc(func(t time.Time) int64 { return int64(t.Second()) }),
	},
	{
		Name: "WEEKDAY", Arity: Between(1, 2), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "date"}, {Name: "return_type"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			t, err := evalDate(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			mode := int64(1)
			if len(args) == 2 {
				mode, err = evalInt(ctx, args[1])
				if err != nil {
					return CellValue{}, err
				}
			}
			wd := int64(t.Weekday()) // Sunday=0
			switch mode {
			case 2:
				return NumberValue(decimal.NewFromInt((wd+6)%7 + 1)), nil // Monday=1
			case 3:
				return NumberValue(decimal.NewFromInt((wd + 6) % 7)), nil // Monday=0
			default:
				return NumberValue(decimal.NewFromInt(wd + 1)), nil // Sunday=1
			}
		},
	},
	{
		Name: "TODAY", Arity: Exactly(0), ResKind: KindDateTime,
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			return DateTimeValue(dateOnlyUTC(ctx.Clock.Now())), nil
		},
	},
	{
		Name: "NOW", Arity: Exactly(0), ResKind: KindDateTime,
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			return DateTimeValue(ctx.Clock.Now()), nil
		},
	},
	{
		Name: "EDATE", Arity: Exactly(2), ResKind: KindDateTime,
		Args: []ArgSpec{{Name: "start_date"}, {Name: "months"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			t, err := evalDate(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			months, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			return DateTimeValue(addMonthsClamped(t, int(months))), nil
		},
	},
	{
		Name: "EOMONTH", Arity: Exactly(2), ResKind: KindDateTime,
		Args: []ArgSpec{{Name: "start_date"}, {Name: "months"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			t, err := evalDate(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			months, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
			lastDay := firstOfTarget.AddDate(0, 1, -1)
			return DateTimeValue(lastDay), nil
		},
	},
	{
		Name: "DATEDIF", Arity: Exactly(3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "start_date"}, {Name: "end_date"}, {Name: "unit"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			start, err := evalDate(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			end, err := evalDate(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			unit, err := evalText(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			return dateDif(start, end, unit)
		},
	},
	{
		Name: "NETWORKDAYS", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "start_date"}, {Name: "end_date"}, {Name: "holidays"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			start, err := evalDate(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			end, err := evalDate(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			var holidays map[string]bool
			if len(args) == 3 {
				holidays, err = collectHolidays(ctx, args[2])
				if err != nil {
					return CellValue{}, err
				}
			}
			return NumberValue(decimal.NewFromInt(networkDays(start, end, holidays))), nil
		},
	},
	{
		Name: "WORKDAY", Arity: Between(2, 3), ResKind: KindDateTime,
		Args: []ArgSpec{{Name: "start_date"}, {Name: "days"}, {Name: "holidays"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			start, err := evalDate(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			days, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			var holidays map[string]bool
			if len(args) == 3 {
				holidays, err = collectHolidays(ctx, args[2])
				if err != nil {
					return CellValue{}, err
				}
			}
			return DateTimeValue(addWorkdays(start, days, holidays)), nil
		},
	},
	{
		Name: "YEARFRAC", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "start_date"}, {Name: "end_date"}, {Name: "basis"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			start, err := evalDate(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			end, err := evalDate(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			basis := int64(0)
			if len(args) == 3 {
				basis, err = evalInt(ctx, args[2])
				if err != nil {
					return CellValue{}, err
				}
			}
			return yearFrac(start, end, basis)
		},
	},
}

func dateFieldFunc(field func(time.Time) int64) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		t, err := evalDate(ctx, args[0])
		if err != nil {
			return CellValue{}, err
		}
		return NumberValue(decimal.NewFromInt(field(t))), nil
	}
}

// addMonthsClamped adds months to t, clamping the day-of-month to the
// target month's last day instead of rolling over into the month after
// (time.Time.AddDate would turn Jan 31 + 1 month into Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	totalMonths := int(t.Month()) - 1 + months
	year := t.Year() + totalMonths/12
	month := totalMonths % 12
	if month < 0 {
		month += 12
		year--
	}
	firstOfTarget := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
}

func dateDif(start, end time.Time, unit string) (CellValue, EvalError) {
	switch unit {
	case "Y":
		years := end.Year() - start.Year()
		if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
			years--
		}
		return NumberValue(decimal.NewFromInt(int64(years))), nil
	case "M":
		months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
		if end.Day() < start.Day() {
			months--
		}
		return NumberValue(decimal.NewFromInt(int64(months))), nil
	case "D":
		days := int64(end.Sub(start).Hours() / 24)
		return NumberValue(decimal.NewFromInt(days)), nil
	case "MD":
		d1, d2 := start.Day(), end.Day()
		if d2 >= d1 {
			return NumberValue(decimal.NewFromInt(int64(d2 - d1))), nil
		}
		prevMonthEnd := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		return NumberValue(decimal.NewFromInt(int64(prevMonthEnd.Day() - d1 + d2))), nil
	case "YM":
		months := int(end.Month()) - int(start.Month())
		if end.Day() < start.Day() {
			months--
		}
		months = ((months % 12) + 12) % 12
		return NumberValue(decimal.NewFromInt(int64(months))), nil
	case "YD":
		aligned := time.Date(end.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if aligned.After(end) {
			aligned = time.Date(end.Year()-1, start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		}
		days := int64(end.Sub(aligned).Hours() / 24)
		return NumberValue(decimal.NewFromInt(days)), nil
	default:
		return CellValue{}, &TypeMismatch{Function: "DATEDIF", Expected: `"Y", "M", "D", "MD", "YM", or "YD"`, Actual: unit}
	}
}

// collectHolidays reads a holidays range argument into a set of
// "YYYY-MM-DD" keys for NETWORKDAYS/WORKDAY to exclude.
func collectHolidays(ctx *EvalCtx, e Expr) (map[string]bool, EvalError) {
	cells, err := cellsOf(ctx, e)
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	for c := range cells {
		v := c.Value.resolved()
		var t time.Time
		switch v.Kind {
		case KindDateTime:
			t = v.DateTime
		case KindNumber:
			t = serialToDateTime(v.Number)
		default:
			continue
		}
		set[dateKey(dateOnlyUTC(t))] = true
	}
	return set, nil
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// networkDays counts weekdays in [start,end] excluding holidays. If
// start>end the dates are swapped for counting and the count is negated,
// so the result is negative rather than the plain magnitude.
func networkDays(start, end time.Time, holidays map[string]bool) int64 {
	sign := int64(1)
	if end.Before(start) {
		start, end = end, start
		sign = -1
	}
	var n int64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if holidays[dateKey(d)] {
			continue
		}
		n++
	}
	return n * sign
}

func addWorkdays(start time.Time, days int64, holidays map[string]bool) time.Time {
	step := int64(1)
	if days < 0 {
		step = -1
		days = -days
	}
	d := start
	for days > 0 {
		d = d.AddDate(0, 0, int(step))
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if holidays[dateKey(d)] {
			continue
		}
		days--
	}
	return d
}

// yearFrac implements YEARFRAC's five day-count conventions. basis 0 (US
// 30/360) and 4 (European 30/360) normalize to 30-day months before
// counting; 1 (Actual/Actual) sums each calendar year's actual-day
// fraction separately so leap years are weighted correctly; 2 and 3 are
// a flat actual-day count over 360 or 365.
func yearFrac(start, end time.Time, basis int64) (CellValue, EvalError) {
	if end.Before(start) {
		start, end = end, start
	}
	switch basis {
	case 0:
		return NumberValue(decimal.NewFromFloat(days360US(start, end) / 360.0)), nil
	case 1:
		return NumberValue(decimal.NewFromFloat(actualActualYearFrac(start, end))), nil
	case 2:
		return NumberValue(decimal.NewFromFloat(end.Sub(start).Hours() / 24 / 360.0)), nil
	case 3:
		return NumberValue(decimal.NewFromFloat(end.Sub(start).Hours() / 24 / 365.0)), nil
	case 4:
		return NumberValue(decimal.NewFromFloat(days360European(start, end) / 360.0)), nil
	default:
		return CellValue{}, &TypeMismatch{Function: "YEARFRAC", Expected: "a basis of 0, 1, 2, 3, or 4", Actual: decimal.NewFromInt(basis).String()}
	}
}

// days360US is the US (NASD) 30/360 day count: a day-31 end date is
// pulled back to 30 whenever the start date already fell on 30 or 31.
func days360US(start, end time.Time) float64 {
	d1, d2 := start.Day(), end.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && d1 == 30 {
		d2 = 30
	}
	return float64((end.Year()-start.Year())*360 + int(end.Month()-start.Month())*30 + (d2 - d1))
}

// days360European caps both day-of-month fields at 30, with no
// dependency between the start and end date's adjustment.
func days360European(start, end time.Time) float64 {
	d1, d2 := start.Day(), end.Day()
	if d1 > 30 {
		d1 = 30
	}
	if d2 > 30 {
		d2 = 30
	}
	return float64((end.Year()-start.Year())*360 + int(end.Month()-start.Month())*30 + (d2 - d1))
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// actualActualYearFrac sums each calendar year's actual-day fraction,
// using that year's own length (365 or 366) as the denominator, so a
// span crossing a leap year isn't under- or over-weighted by a single
// flat denominator.
func actualActualYearFrac(start, end time.Time) float64 {
	total := 0.0
	for y := start.Year(); y <= end.Year(); y++ {
		yearStart := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		yearEnd := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC)
		segStart := yearStart
		if start.After(segStart) {
			segStart = start
		}
		segEnd := yearEnd
		if end.Before(segEnd) {
			segEnd = end
		}
		if segEnd.After(segStart) {
			yearDays := 365.0
			if isLeapYear(y) {
				yearDays = 366.0
			}
			total += segEnd.Sub(segStart).Hours() / 24 / yearDays
		}
	}
	return total
}
