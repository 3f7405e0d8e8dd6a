package formula

// ShiftKind is the structural edit that triggers a reference shift:
// inserting or deleting whole columns or rows on a sheet.
type ShiftKind uint8

const (
	ShiftInsertCols ShiftKind = iota
	ShiftDeleteCols
	ShiftInsertRows
	ShiftDeleteRows
)

// ShiftOp names one structural edit: insert/delete Count columns or rows
// starting at At, on Sheet.
type ShiftOp struct {
	Kind  ShiftKind
	Sheet string
	At    uint32
	Count uint32
}

// ShiftForEdit rewrites every reference in expr that points at op.Sheet
// (a reference with no sheet prefix points at cur, the formula's host
// sheet) and whose coordinates fall on or after the edit point, adding or
// subtracting Count. Absolute
// coordinates (per Anchor) never move, matching the teacher's own
// $-anchor handling generalized from formula-shift.go's ShiftFormula.
func ShiftForEdit(expr Expr, cur string, op ShiftOp) Expr {
	return shiftTree(expr, func(refSheet string, addr ARef, anchor Anchor) (ARef, Anchor) {
		if refSheet == "" {
			refSheet = cur
		}
		if refSheet != op.Sheet {
			return addr, anchor
		}
		return shiftAddr(addr, anchor, op), anchor
	})
}

func shiftAddr(addr ARef, anchor Anchor, op ShiftOp) ARef {
	switch op.Kind {
	case ShiftInsertCols:
		if !anchor.isColAbsolute() {
			addr.Col = Column(shiftIndex(uint32(addr.Col), op.At, op.Count, true))
		}
	case ShiftDeleteCols:
		if !anchor.isColAbsolute() {
			addr.Col = Column(shiftIndex(uint32(addr.Col), op.At, op.Count, false))
		}
	case ShiftInsertRows:
		if !anchor.isRowAbsolute() {
			addr.Row = Row(shiftIndex(uint32(addr.Row), op.At, op.Count, true))
		}
	case ShiftDeleteRows:
		if !anchor.isRowAbsolute() {
			addr.Row = Row(shiftIndex(uint32(addr.Row), op.At, op.Count, false))
		}
	}
	return addr
}

// shiftIndex adjusts one coordinate for an insertion/deletion of count
// slots at position at. Deleted coordinates inside the removed span
// clamp to at (the reference becomes "dangling" onto the edit point,
// the same fallback formula-shift.go's shiftIndex uses rather than
// raising an error at shift time).
func shiftIndex(idx, at, count uint32, insert bool) uint32 {
	if insert {
		if idx >= at {
			return idx + count
		}
		return idx
	}
	switch {
	case idx >= at+count:
		return idx - count
	case idx >= at:
		return at
	default:
		return idx
	}
}

// ShiftForDrag rewrites every reference in expr by (rowDelta, colDelta),
// the offset between a formula's original cell and the cell it is being
// copied/filled into. Anchored coordinates (per-axis, via Anchor) do not
// move; this is the generalization of formula-shift.go's
// AdjustFormulaForCopy to the typed AST.
func ShiftForDrag(expr Expr, rowDelta, colDelta int32) Expr {
	return shiftTree(expr, func(refSheet string, addr ARef, anchor Anchor) (ARef, Anchor) {
		if !anchor.isColAbsolute() {
			addr.Col = Column(int64(addr.Col) + int64(colDelta))
		}
		if !anchor.isRowAbsolute() {
			addr.Row = Row(int64(addr.Row) + int64(rowDelta))
		}
		return addr, anchor
	})
}

// shiftTree applies adjust to every Ref/SheetRef/PolyRef/SheetPolyRef
// address and every RangeRef/SheetRange endpoint in expr's tree, leaving
// everything else untouched — the generic "map" FormulaShifter's
// operations boil down to, one rule reused across every reference-bearing
// node kind instead of one per kind.
func shiftTree(expr Expr, adjust func(sheet string, addr ARef, anchor Anchor) (ARef, Anchor)) Expr {
	switch n := expr.(type) {
	case *Ref:
		addr, anchor := adjust("", n.Addr, n.Anchor)
		return &Ref{Addr: addr, Anchor: anchor, ResKind: n.ResKind, Decode: n.Decode}
	case *PolyRef:
		addr, anchor := adjust("", n.Addr, n.Anchor)
		return &PolyRef{Addr: addr, Anchor: anchor}
	case *SheetRef:
		addr, anchor := adjust(n.Sheet, n.Addr, n.Anchor)
		return &SheetRef{Sheet: n.Sheet, Addr: addr, Anchor: anchor, ResKind: n.ResKind, Decode: n.Decode}
	case *SheetPolyRef:
		addr, anchor := adjust(n.Sheet, n.Addr, n.Anchor)
		return &SheetPolyRef{Sheet: n.Sheet, Addr: addr, Anchor: anchor}
	case *RangeRef:
		return &RangeRef{Range: shiftRange("", n.Range, adjust)}
	case *SheetRange:
		return &SheetRange{Sheet: n.Sheet, Range: shiftRange(n.Sheet, n.Range, adjust)}
	case *Aggregate:
		return &Aggregate{Name: n.Name, Loc: Location{Sheet: n.Loc.Sheet, Range: shiftRange(n.Loc.Sheet, n.Loc.Range, adjust)}}
	default:
		return transformChildren(expr, func(child Expr) Expr { return shiftTree(child, adjust) })
	}
}

func shiftRange(sheet string, r CellRange, adjust func(string, ARef, Anchor) (ARef, Anchor)) CellRange {
	start, startAnc := adjust(sheet, r.Start, r.StartAnc)
	end, endAnc := adjust(sheet, r.End, r.EndAnc)
	return NewCellRange(start, end, startAnc, endAnc)
}
