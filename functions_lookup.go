package formula

import "github.com/shopspring/decimal"

// declaredRange returns the range a RangeRef or SheetRange argument spells
// out, before any clamping to the sheet's used range.
func declaredRange(e Expr) CellRange {
	switch n := e.(type) {
	case *RangeRef:
		return n.Range
	case *SheetRange:
		return n.Range
	}
	return CellRange{}
}

var lookupFunctions = []*FunctionSpec{
	{
		Name: "ROW", Arity: Between(0, 1), ResKind: KindNumber, Args: []ArgSpec{{Name: "reference"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			if len(args) == 0 {
				return CellValue{}, &EvalFailed{Message: "ROW() with no argument requires the calling cell's address"}
			}
			addr, err := singleAddr(args[0])
			if err != nil {
				return CellValue{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(addr.Row) + 1)), nil
		},
	},
	{
		Name: "COLUMN", Arity: Between(0, 1), ResKind: KindNumber, Args: []ArgSpec{{Name: "reference"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			if len(args) == 0 {
				return CellValue{}, &EvalFailed{Message: "COLUMN() with no argument requires the calling cell's address"}
			}
			addr, err := singleAddr(args[0])
			if err != nil {
				return CellValue{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(addr.Col) + 1)), nil
		},
	},
	{
		Name: "ROWS", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "array"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			if _, _, err := rangeOf(ctx, args[0]); err != nil {
				return CellValue{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(declaredRange(args[0]).Height()))), nil
		},
	},
	{
		Name: "COLUMNS", Arity: Exactly(1), ResKind: KindNumber, Args: []ArgSpec{{Name: "array"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			if _, _, err := rangeOf(ctx, args[0]); err != nil {
				return CellValue{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(declaredRange(args[0]).Width()))), nil
		},
	},
	{
		Name: "ADDRESS", Arity: Between(2, 3), ResKind: KindText,
		Args: []ArgSpec{{Name: "row_num"}, {Name: "column_num"}, {Name: "abs_num"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			row, err := evalInt(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			col, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			anchor := AnchorAbsolute
			if len(args) == 3 {
				abs, err := evalInt(ctx, args[2])
				if err != nil {
					return CellValue{}, err
				}
				anchor = anchorFromAbsNum(abs)
			}
			addr := ARef{Col: Column(col - 1), Row: Row(row - 1)}
			return TextValue(addr.formatAnchored(anchor)), nil
		},
	},
	{
		Name: "INDEX", Arity: Between(2, 3), ResKind: KindAny,
		Args: []ArgSpec{{Name: "array"}, {Name: "row_num"}, {Name: "column_num"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			sheet, r, err := rangeOf(ctx, args[0])
			if err != nil {
				return CellValue{}, err
			}
			rowNum, err := evalInt(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			colNum := int64(1)
			if len(args) == 3 {
				colNum, err = evalInt(ctx, args[2])
				if err != nil {
					return CellValue{}, err
				}
			}
			if rowNum < 1 || int64(r.Height()) < rowNum || colNum < 1 || int64(r.Width()) < colNum {
				return CellValue{}, propagate(ErrRef)
			}
			addr := ARef{Col: r.Start.Col + Column(colNum-1), Row: r.Start.Row + Row(rowNum-1)}
			return sheet.Get(addr).Value.resolved(), nil
		},
	},
	{
		Name: "MATCH", Arity: Between(2, 3), ResKind: KindNumber,
		Args: []ArgSpec{{Name: "lookup_value"}, {Name: "lookup_array"}, {Name: "match_type"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			target, err := ctx.Eval(args[0])
			if err != nil {
				return CellValue{}, err
			}
			sheet, r, err := rangeOf(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			matchType := int64(1)
			if len(args) == 3 {
				matchType, err = evalInt(ctx, args[2])
				if err != nil {
					return CellValue{}, err
				}
			}
			idx, found := matchInRange(sheet, r, target, matchType)
			if !found {
				return CellValue{}, propagate(ErrNA)
			}
			return NumberValue(decimal.NewFromInt(int64(idx) + 1)), nil
		},
	},
	{
		Name: "VLOOKUP", Arity: Between(3, 4), ResKind: KindAny,
		Args: []ArgSpec{{Name: "lookup_value"}, {Name: "table_array"}, {Name: "col_index_num"}, {Name: "range_lookup"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			target, err := ctx.Eval(args[0])
			if err != nil {
				return CellValue{}, err
			}
			sheet, r, err := rangeOf(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			colIdx, err := evalInt(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			approximate := true
			if len(args) == 4 {
				approximate, err = evalBoolArg(ctx, args[3])
				if err != nil {
					return CellValue{}, err
				}
			}
			firstCol := CellRange{Start: r.Start, End: ARef{Col: r.Start.Col, Row: r.End.Row}}
			matchType := int64(1)
			if !approximate {
				matchType = 0
			}
			idx, found := matchInRange(sheet, firstCol, target, matchType)
			if !found {
				return CellValue{}, propagate(ErrNA)
			}
			if colIdx < 1 || int64(r.Width()) < colIdx {
				return CellValue{}, propagate(ErrRef)
			}
			addr := ARef{Col: r.Start.Col + Column(colIdx-1), Row: r.Start.Row + Row(idx)}
			return sheet.Get(addr).Value.resolved(), nil
		},
	},
	{
		Name: "HLOOKUP", Arity: Between(3, 4), ResKind: KindAny,
		Args: []ArgSpec{{Name: "lookup_value"}, {Name: "table_array"}, {Name: "row_index_num"}, {Name: "range_lookup"}},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			target, err := ctx.Eval(args[0])
			if err != nil {
				return CellValue{}, err
			}
			sheet, r, err := rangeOf(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			rowIdx, err := evalInt(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			approximate := true
			if len(args) == 4 {
				approximate, err = evalBoolArg(ctx, args[3])
				if err != nil {
					return CellValue{}, err
				}
			}
			firstRow := CellRange{Start: r.Start, End: ARef{Col: r.End.Col, Row: r.Start.Row}}
			matchType := int64(1)
			if !approximate {
				matchType = 0
			}
			idx, found := matchInRange(sheet, firstRow, target, matchType)
			if !found {
				return CellValue{}, propagate(ErrNA)
			}
			if rowIdx < 1 || int64(r.Height()) < rowIdx {
				return CellValue{}, propagate(ErrRef)
			}
			addr := ARef{Col: r.Start.Col + Column(idx), Row: r.Start.Row + Row(rowIdx-1)}
			return sheet.Get(addr).Value.resolved(), nil
		},
	},
	{
		Name: "XLOOKUP", Arity: Between(3, 6), ResKind: KindAny,
		Args: []ArgSpec{
			{Name: "lookup_value"}, {Name: "lookup_array"}, {Name: "return_array"},
			{Name: "if_not_found"}, {Name: "match_mode"}, {Name: "search_mode"},
		},
		Eval: func(ctx *EvalCtx, args []Expr) (CellValue, EvalError) {
			target, err := ctx.Eval(args[0])
			if err != nil {
				return CellValue{}, err
			}
			sheet, lookupRange, err := rangeOf(ctx, args[1])
			if err != nil {
				return CellValue{}, err
			}
			returnSheet, returnRange, err := rangeOf(ctx, args[2])
			if err != nil {
				return CellValue{}, err
			}
			if lookupRange.Width() != returnRange.Width() || lookupRange.Height() != returnRange.Height() {
				return CellValue{}, newEvalFailed(
					"XLOOKUP: lookup_array is %dx%d but return_array is %dx%d",
					lookupRange.Width(), lookupRange.Height(), returnRange.Width(), returnRange.Height(),
				)
			}
			matchMode := int64(0)
			if len(args) >= 5 {
				if matchMode, err = evalInt(ctx, args[4]); err != nil {
					return CellValue{}, err
				}
			}
			searchMode := int64(1)
			if len(args) >= 6 {
				if searchMode, err = evalInt(ctx, args[5]); err != nil {
					return CellValue{}, err
				}
			}
			idx, found := xlookupMatch(sheet, lookupRange, target, matchMode, searchMode)
			if !found {
				if len(args) >= 4 {
					return ctx.Eval(args[3])
				}
				return CellValue{}, propagate(ErrNA)
			}
			addr := offsetWithin(returnRange, idx)
			return returnSheet.Get(addr).Value.resolved(), nil
		},
	},
}

func singleAddr(e Expr) (ARef, EvalError) {
	switch n := e.(type) {
	case *Ref:
		return n.Addr, nil
	case *SheetRef:
		return n.Addr, nil
	case *RangeRef:
		return n.Range.Start, nil
	case *SheetRange:
		return n.Range.Start, nil
	default:
		return ARef{}, &EvalFailed{Message: "expected a cell or range reference"}
	}
}

func anchorFromAbsNum(abs int64) Anchor {
	switch abs {
	case 2:
		return AnchorAbsRow
	case 3:
		return AnchorAbsCol
	case 4:
		return AnchorRelative
	default:
		return AnchorAbsolute
	}
}

// matchInRange scans a single-row or single-column range for target.
// matchType 0 is exact match; matchType > 0 finds the largest value <=
// target, assuming ascending order (MATCH's default/VLOOKUP approximate
// mode); matchType < 0 finds the smallest value >= target, assuming
// descending order (MATCH's -1 mode). Both approximate modes scan until
// the ordering assumption is violated and return the last candidate seen.
func matchInRange(sheet SheetAccess, r CellRange, target CellValue, matchType int64) (int, bool) {
	n := int(r.Width())
	if r.Height() > 1 {
		n = int(r.Height())
	}
	tn, tok := numericOf(target)
	best := -1
scan:
	for i := 0; i < n; i++ {
		addr := offsetWithin(r, i)
		v := sheet.Get(addr).Value.resolved()
		if matchType == 0 {
			if cellValueEqual(v, target) {
				return i, true
			}
			continue
		}
		vn, vok := numericOf(v)
		if !tok || !vok {
			continue
		}
		switch {
		case matchType > 0:
			if vn.LessThanOrEqual(tn) {
				best = i
			} else {
				break scan
			}
		default: // matchType < 0
			if vn.GreaterThanOrEqual(tn) {
				best = i
			} else {
				break scan
			}
		}
	}
	return best, best >= 0
}

// xlookupMatch implements XLOOKUP's match_mode/search_mode surface.
// Unlike MATCH, XLOOKUP's approximate modes don't assume the array is
// sorted: -1 ("largest <=") and 1 ("smallest >=") scan every cell and
// keep the closest qualifying value seen, rather than early-breaking on
// the first ordering violation.
func xlookupMatch(sheet SheetAccess, r CellRange, target CellValue, matchMode, searchMode int64) (int, bool) {
	n := int(r.Width())
	if r.Height() > 1 {
		n = int(r.Height())
	}
	switch matchMode {
	case -1, 1:
		return xlookupNearest(sheet, r, target, matchMode, n)
	case 2:
		pattern := decodeDisplayText(target)
		for _, i := range scanOrder(n, searchMode) {
			addr := offsetWithin(r, i)
			if matchWildcard(pattern, decodeDisplayText(sheet.Get(addr).Value.resolved())) {
				return i, true
			}
		}
		return -1, false
	default:
		for _, i := range scanOrder(n, searchMode) {
			addr := offsetWithin(r, i)
			if cellValueEqual(sheet.Get(addr).Value.resolved(), target) {
				return i, true
			}
		}
		return -1, false
	}
}

// xlookupNearest finds the closest value <= target (matchMode -1) or >=
// target (matchMode 1) across the whole range, independent of sort order.
func xlookupNearest(sheet SheetAccess, r CellRange, target CellValue, matchMode int64, n int) (int, bool) {
	tn, tok := numericOf(target)
	if !tok {
		return -1, false
	}
	best := -1
	var bestVal decimal.Decimal
	for i := 0; i < n; i++ {
		addr := offsetWithin(r, i)
		vn, vok := numericOf(sheet.Get(addr).Value.resolved())
		if !vok {
			continue
		}
		if matchMode == -1 {
			if vn.LessThanOrEqual(tn) && (best == -1 || vn.GreaterThan(bestVal)) {
				best, bestVal = i, vn
			}
		} else {
			if vn.GreaterThanOrEqual(tn) && (best == -1 || vn.LessThan(bestVal)) {
				best, bestVal = i, vn
			}
		}
	}
	return best, best >= 0
}

// scanOrder returns the indices [0,n) in first-to-last order (searchMode
// 1, the default) or last-to-first order (searchMode -1).
func scanOrder(n int, searchMode int64) []int {
	order := make([]int, n)
	for i := range order {
		if searchMode == -1 {
			order[i] = n - 1 - i
		} else {
			order[i] = i
		}
	}
	return order
}

func offsetWithin(r CellRange, i int) ARef {
	if r.Width() > 1 {
		return ARef{Col: r.Start.Col + Column(i), Row: r.Start.Row}
	}
	return ARef{Col: r.Start.Col, Row: r.Start.Row + Row(i)}
}
