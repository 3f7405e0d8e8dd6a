package formula

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var textFunctions = []*FunctionSpec{
	{
		Name: "LEN", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "text"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(len([]rune(s))))), nil
		},
	},
	{
		Name: "UPPER", Arity: Exactly(1), ResKind: KindText, Args: []ArgSpec{{Name: "text"}},
		Eval: unaryTextFunc(strings.ToUpper),
	},
	{
		Name: "LOWER", Arity: Exactly(1), ResKind: KindText, Args: []ArgSpec{{Name: "text"}},
		Eval: unaryTextFunc(strings.ToLower),
	},
	{
		Name: "TRIM", Arity: Exactly(1), ResKind: KindText, Args: []ArgSpec{{Name: "text"}},
		Eval: unaryTextFunc(func(s string) string { return strings.Join(strings.Fields(s), " ") }),
	},
	{
		Name: "LEFT", Arity: Between(1, 2), ResKind: KindText, Args: []ArgSpec{{Name: "text"}, {Name: "num_chars"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, n, err := textAndCount(ctx, args, 1)
			if err != nil {
				return CellValue{}, err
			}
			if n < 0 {
				return CellValue{}, &EvalFailed{Message: "LEFT: num_chars must not be negative"}
			}
			r := []rune(s)
			if n > len(r) {
				n = len(r)
			}
			return TextValue(string(r[:n])), nil
		},
	},
	{
		Name: "RIGHT", Arity: Between(1, 2), ResKind: KindText, Args: []ArgSpec{{Name: "text"}, {Name: "num_chars"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, n, err := textAndCount(ctx, args, 1)
			if err != nil {
				return CellValue{}, err
			}
			if n < 0 {
				return CellValue{}, &EvalFailed{Message: "RIGHT: num_chars must not be negative"}
			}
			r := []rune(s)
			if n > len(r) {
				n = len(r)
			}
			return TextValue(string(r[len(r)-n:])), nil
		},
	},
	{
		Name: "MID", Arity: Exactly(3), ResKind: KindText,
		Args: []ArgSpec{{Name: "text"}, {Name: "start_num"}, {Name: "num_chars"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			start, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			count, err := evalInt(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			r := []rune(s)
			from := int(start) - 1
			if from < 0 || from >= len(r) {
				return TextValue(""), nil
			}
			to := from + int(count)
			if to > len(r) {
				to = len(r)
			}
			return TextValue(string(r[from:to])), nil
		},
	},
	{
		Name: "CONCATENATE", Arity: AtLeast(1), ResKind: KindText, Args: []ArgSpec{{Name: "text", Variadic: true}},
		Eval: concatFunc,
	},
	{
		Name: "CONCAT", Arity: AtLeast(1), ResKind: KindText, Args: []ArgSpec{{Name: "text", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			var sb strings.Builder
			for _, a := range args {
				cells, err := cellsOf(ctx, a)
				if err != nil {
					return CellValue{}, err
				}
				for c := range cells {
					sb.WriteString(c.Value.resolved().String())
				}
			}
			return TextValue(sb.String()), nil
		},
	},
	{
		Name: "TEXTJOIN", Arity: AtLeast(3), ResKind: KindText,
		Args: []ArgSpec{{Name: "delimiter"}, {Name: "ignore_empty"}, {Name: "text", Variadic: true}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			delim, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			ignoreEmpty, err := evalBoolArg(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			var parts []string
			for _, a := range args[2:] {
				cells, cerr := cellsOf(ctx, a)
				if cerr != nil {
					return CellValue{}, cerr
				}
				for c := range cells {
					s := c.Value.resolved().String()
					if ignoreEmpty && s == "" {
						continue
					}
					parts = append(parts, s)
				}
			}
			return TextValue(strings.Join(parts, delim)), nil
		},
	},
	{
		Name: "SUBSTITUTE", Arity: Between(3, 4), ResKind: KindText,
		Args: []ArgSpec{{Name: "text"}, {Name: "old_text"}, {Name: "new_text"}, {Name: "instance_num"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			old, err := evalText(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			repl, err := evalText(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			if len(args) == 3 {
				return TextValue(strings.ReplaceAll(s, old, repl)), nil
			}
			instance, err := evalInt(ctx, args[3])
			if err != nil {
				return CellValue{}, err
			}
			return TextValue(substituteNth(s, old, repl, int(instance))), nil
		},
	},
	{
		Name: "FIND", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "find_text"}, {Name: "within_text"}, {Name: "start_num"}},
		Eval: findFunc(true),
	},
	{
		Name: "SEARCH", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "find_text"}, {Name: "within_text"}, {Name: "start_num"}},
		Eval: findFunc(false),
	},
	{
		Name: "REPLACE", Arity: Exactly(4), ResKind: KindText,
		Args: []ArgSpec{{Name: "old_text"}, {Name: "start_num"}, {Name: "num_chars"}, {Name: "new_text"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			start, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			count, err := evalInt(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			repl, err := evalText(ctx, args[3])
			if err != nil {
				return CellValue{}, err
			}
			r := []rune(s)
			from := int(start) - 1
			if from < 0 {
				from = 0
			}
			if from > len(r) {
				from = len(r)
			}
			to := from + int(count)
			if to > len(r) {
				to = len(r)
			}
			return TextValue(string(r[:from]) + repl + string(r[to:])), nil
		},
	},
	{
		Name: "EXACT", Arity: Exactly(2), ResKind: KindBool, Args: []ArgSpec{{Name: "text1"}, {Name: "text2"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			a, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			b, err := evalText(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			return BoolValue(a == b), nil
		},
	},
	{
		Name: "VALUE", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "text"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			d, ok := parseCanonicalNumber(s)
			if !ok {
				return CellValue{}, &TypeMismatch{Function: "VALUE", Expected: "numeric text", Actual: s}
			}
			return NumberValue(d), nil
		},
	},
	{
		Name: "REPT", Arity: Exactly(2), ResKind: KindText, Args: []ArgSpec{{Name: "text"}, {Name: "number_times"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			n, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			if n < 0 {
				return CellValue{}, &TypeMismatch{Function: "REPT", Expected: "a non-negative count", Actual: strconv.FormatInt(n, 10)}
			}
			return TextValue(strings.Repeat(s, int(n))), nil
		},
	},
}

func unaryTextFunc(f func(string) string) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		s, err := evalText(ctx, args[0])
		if err != nil {
			return CellValue{}, err
		}
		return TextValue(f(s)), nil
	}
}

func textAndCount(ctx *EvalCtx, args []Expr, defaultCount int) (string, int, EvalError) {
	s, err := evalText(ctx, args[0])
	if err != nil {
		return "", 0, err
	}
	n := defaultCount
	if len(args) > 1 {
		v, err := evalInt(ctx, args[1])
		if err != nil {
			return "", 0, err
		}
		n = int(v)
	}
	return s, n, nil
}

func concatFunc(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
	var sb strings.Builder
	for _, a := range args {
		s, err := evalText(ctx, a)
		if err != nil {
			return CellValue{}, err
		}
		sb.WriteString(s)
	}
	return TextValue(sb.String()), nil
}

func substituteNth(s, old, repl string, instance int) string {
	if old == "" || instance < 1 {
		return s
	}
	idx := -1
	remaining := s
	offset := 0
	for i := 1; i <= instance; i++ {
		pos := strings.Index(remaining, old)
		if pos == -1 {
			return s
		}
		offset += pos
		if i == instance {
			idx = offset
		}
		remaining = remaining[pos+len(old):]
		offset += len(old)
	}
	return s[:idx] + repl + s[idx+len(old):]
}

func findFunc(caseSensitive bool) FuncEval {
	return func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
		find, err := evalText(ctx, args[0])
		if err != nil {
			return CellValue{}, err
		}
		within, err := evalText(ctx, args[1])
		if err != nil {
			return CellValue{}, err
		}
		start := 1
		if len(args) == 3 {
			s, err := evalInt(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			start = int(s)
		}
		haystack := within
		needle := find
		if !caseSensitive {
			haystack = strings.ToUpper(haystack)
			needle = strings.ToUpper(needle)
		}
		r := []rune(haystack)
		if start < 1 {
			start = 1
		}
		if start-1 > len(r) {
			return CellValue{}, &EvalFailed{Message: "start_num beyond end of text"}
		}
		idx := strings.Index(string(r[start-1:]), needle)
		if idx == -1 {
			return ErrorValue(ErrValue), nil
		}
		pos := start + len([]rune(string(r[start-1:])[:idx]))
		return NumberValue(decimal.NewFromInt(int64(pos))), nil
	}
}
