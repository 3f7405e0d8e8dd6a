package formula

// NodeKind tags the concrete shape of an Expr node, standing in for the
// generic TExpr[A] case analysis spec.md §3 describes (design note §9:
// monomorphic tagged union encoding).
type NodeKind uint8

const (
	NodeLit NodeKind = iota
	NodeRef
	NodePolyRef
	NodeSheetRef
	NodeSheetPolyRef
	NodeRangeRef
	NodeSheetRange
	NodeArith
	NodeLogical
	NodeNot
	NodeCompare
	NodeToInt
	NodeDateToSerial
	NodeDateTimeToSerial
	NodeAggregate
	NodeCall
)

// Expr is the typed AST node interface. Every node is immutable after
// construction (spec.md §3 invariant 5); Evaluator, Printer, and
// FormulaShifter all consume it without mutating it.
type Expr interface {
	Kind() NodeKind
	// ResultKind is the node's static result type. KindAny marks a node
	// whose type is deferred until resolution (PolyRef/SheetPolyRef) or
	// genuinely data-dependent at runtime (INDEX, VLOOKUP).
	ResultKind() ValueKind
}

// Location is an Aggregate/conditional-aggregate's range argument: either a
// same-sheet range, or a range qualified by an explicit sheet name.
type Location struct {
	Sheet string // "" means Local
	Range CellRange
}

func Local(r CellRange) Location                { return Location{Range: r} }
func CrossSheet(sheet string, r CellRange) Location { return Location{Sheet: sheet, Range: r} }

func (l Location) IsCrossSheet() bool { return l.Sheet != "" }

// --- literals ---

// Lit is a literal value of any kind.
type Lit struct{ Value CellValue }

func (n *Lit) Kind() NodeKind        { return NodeLit }
func (n *Lit) ResultKind() ValueKind { return n.Value.Kind }

// --- references ---

// CellDecoder decodes a raw Cell into a CellValue tagged with the
// reference's static result kind. It is the concrete form of the
// decoder every Ref/SheetRef carries (spec.md §3 invariant 1).
type CellDecoder func(Cell) (CellValue, *CodecError)

// Ref is a typed, single-sheet cell reference.
type Ref struct {
	Addr    ARef
	Anchor  Anchor
	ResKind ValueKind
	Decode  CellDecoder
}

func (n *Ref) Kind() NodeKind        { return NodeRef }
func (n *Ref) ResultKind() ValueKind { return n.ResKind }

// PolyRef is a type-deferred reference: it must be resolved to a Ref
// (via ResolvePoly) before reaching the evaluator (spec.md §3 invariant 2).
type PolyRef struct {
	Addr   ARef
	Anchor Anchor
}

func (n *PolyRef) Kind() NodeKind        { return NodePolyRef }
func (n *PolyRef) ResultKind() ValueKind { return KindAny }

// SheetRef is a typed, cross-sheet cell reference.
type SheetRef struct {
	Sheet   string
	Addr    ARef
	Anchor  Anchor
	ResKind ValueKind
	Decode  CellDecoder
}

func (n *SheetRef) Kind() NodeKind        { return NodeSheetRef }
func (n *SheetRef) ResultKind() ValueKind { return n.ResKind }

// SheetPolyRef is a type-deferred cross-sheet reference.
type SheetPolyRef struct {
	Sheet  string
	Addr   ARef
	Anchor Anchor
}

func (n *SheetPolyRef) Kind() NodeKind        { return NodeSheetPolyRef }
func (n *SheetPolyRef) ResultKind() ValueKind { return KindAny }

// RangeRef is a same-sheet range used where a function wants the raw range
// rather than a single value (e.g. as an Aggregate/Call range argument).
type RangeRef struct{ Range CellRange }

func (n *RangeRef) Kind() NodeKind        { return NodeRangeRef }
func (n *RangeRef) ResultKind() ValueKind { return KindAny }

// SheetRange is a cross-sheet range.
type SheetRange struct {
	Sheet string
	Range CellRange
}

func (n *SheetRange) Kind() NodeKind        { return NodeSheetRange }
func (n *SheetRange) ResultKind() ValueKind { return KindAny }

// --- resolving PolyRef/SheetPolyRef ---

// ResolvePoly walks expr and replaces every PolyRef/SheetPolyRef with a
// typed Ref/SheetRef using decoder/resKind, returning a new tree (the AST
// is immutable). This is the "type-deferred choice" the parser must
// perform before handing a tree to the Evaluator (design note §9).
func ResolvePoly(expr Expr, resKind ValueKind, decoder CellDecoder) Expr {
	switch n := expr.(type) {
	case *PolyRef:
		return &Ref{Addr: n.Addr, Anchor: n.Anchor, ResKind: resKind, Decode: decoder}
	case *SheetPolyRef:
		return &SheetRef{Sheet: n.Sheet, Addr: n.Addr, Anchor: n.Anchor, ResKind: resKind, Decode: decoder}
	default:
		return transformChildren(expr, func(child Expr) Expr {
			return ResolvePoly(child, resKind, decoder)
		})
	}
}

// hasUnresolvedPoly reports whether expr still contains a PolyRef or
// SheetPolyRef anywhere in its tree — reaching the evaluator in that state
// is a contract violation (spec.md §3 invariant 2).
func hasUnresolvedPoly(expr Expr) bool {
	found := false
	walk(expr, func(e Expr) {
		switch e.(type) {
		case *PolyRef, *SheetPolyRef:
			found = true
		}
	})
	return found
}
