package formula

import (
	"regexp"
	"strconv"
	"strings"
)

var referenceFunctions = []*FunctionSpec{
	{
		Name: "OFFSET", Arity: Between(3, 5), ResKind: KindAny,
		Args: []ArgSpec{{Name: "reference"}, {Name: "rows"}, {Name: "cols"}, {Name: "height"}, {Name: "width"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			base, err := singleAddr(args[0])
			if err != nil {
				return CellValue{}, err
			}
			rows, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			cols, err := evalInt(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			col := int64(base.Col) + cols
			row := int64(base.Row) + rows
			if col < 0 || row < 0 {
				return CellValue{}, propagate(ErrRef)
			}
			addr := ARef{Col: Column(col), Row: Row(row)}
			return ctx.Sheet.Get(addr).Value.resolved(), nil
		},
	},
	{
		Name: "INDIRECT", Arity: Between(1, 2), ResKind: KindAny, Args: []ArgSpec{{Name: "ref_text"}, {Name: "a1_style"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			s, err := evalText(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			sheetName, addrText, hasSheet := strings.Cut(s, "!")
			if !hasSheet {
				addrText = sheetName
				sheetName = ""
			}
			addr, perr := parseA1Address(addrText)
			if perr != nil {
				return CellValue{}, propagate(ErrRef)
			}
			sheet := ctx.Sheet
			if sheetName != "" {
				var ok bool
				sheet, ok = ctx.Workbook.Sheet(strings.Trim(sheetName, "'"))
				if !ok {
					return CellValue{}, propagate(ErrRef)
				}
			}
			return sheet.Get(addr).Value.resolved(), nil
		},
	},
}

var a1Pattern = regexp.MustCompile(`^\$?([A-Za-z]+)\$?([0-9]+)$`)

func parseA1Address(s string) (ARef, error) {
	m := a1Pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ARef{}, errInvalidAddress
	}
	col, err := ColumnFromLetter(m[1])
	if err != nil {
		return ARef{}, err
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return ARef{}, err
	}
	return ARef{Col: col, Row: Row(row - 1)}, nil
}

var errInvalidAddress = &CodecError{Expected: "A1 address", Actual: "malformed text"}
