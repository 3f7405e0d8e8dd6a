package formula

// SheetAccess is the read surface the Evaluator needs from one sheet. A
// host embeds its own storage behind this interface; formula never reaches
// past it into concrete cell storage (spec.md §5: the evaluator is pure
// with respect to everything but these reads).
type SheetAccess interface {
	// Name is the sheet's display name, used for error messages and for
	// rendering cross-sheet references.
	Name() string
	// Get returns the cell at addr, or an empty Cell if nothing is stored
	// there. Get must never panic on out-of-range coordinates.
	Get(addr ARef) Cell
	// UsedRange bounds every address this sheet has ever stored a
	// non-empty value at. Whole-column/whole-row ranges are intersected
	// against it before enumeration so no traversal is unbounded
	// (spec.md §4.8).
	UsedRange() CellRange
}

// WorkbookAccess resolves sheet names to SheetAccess for cross-sheet
// references and aggregates.
type WorkbookAccess interface {
	Sheet(name string) (SheetAccess, bool)
}

// rangeCells lazily yields every in-bounds cell of r on sheet, clamping
// r against the sheet's used range first.
func rangeCells(sheet SheetAccess, r CellRange) func(yield func(Cell) bool) {
	bounded, ok := r.Intersect(sheet.UsedRange())
	if !ok {
		return func(yield func(Cell) bool) {}
	}
	return func(yield func(Cell) bool) {
		for addr := range bounded.Cells() {
			if !yield(sheet.Get(addr)) {
				return
			}
		}
	}
}

// resolveLocation picks the sheet a Location refers to, defaulting to cur
// when the location is same-sheet.
func resolveLocation(wb WorkbookAccess, cur SheetAccess, loc Location) (SheetAccess, EvalError) {
	if !loc.IsCrossSheet() {
		return cur, nil
	}
	sheet, ok := wb.Sheet(loc.Sheet)
	if !ok {
		return nil, &EvalFailed{Message: "unknown sheet", Context: loc.Sheet}
	}
	return sheet, nil
}
