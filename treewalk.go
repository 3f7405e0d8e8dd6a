package formula

// walk visits every node in expr's tree, expr itself included, calling fn
// once per node. Used by hasUnresolvedPoly and by dependency extraction.
func walk(expr Expr, fn func(Expr)) {
	if expr == nil {
		return
	}
	fn(expr)
	switch n := expr.(type) {
	case *Arith:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *Logical:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *Not:
		walk(n.Operand, fn)
	case *Compare:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *ToInt:
		walk(n.Operand, fn)
	case *DateToSerial:
		walk(n.Operand, fn)
	case *DateTimeToSerial:
		walk(n.Operand, fn)
	case *Call:
		for _, a := range n.Args {
			walk(a, fn)
		}
	}
}

// transformChildren rebuilds expr with each direct child replaced by
// rebuild(child), leaving leaf nodes (Lit, Ref, PolyRef, SheetRef,
// SheetPolyRef, RangeRef, SheetRange, Aggregate) untouched. It is the
// generic "map" operation FormulaShifter and ResolvePoly both use instead
// of per-node-kind shifting/resolution code.
func transformChildren(expr Expr, rebuild func(Expr) Expr) Expr {
	switch n := expr.(type) {
	case *Arith:
		return &Arith{Op: n.Op, Left: rebuild(n.Left), Right: rebuild(n.Right)}
	case *Logical:
		return &Logical{Op: n.Op, Left: rebuild(n.Left), Right: rebuild(n.Right)}
	case *Not:
		return &Not{Operand: rebuild(n.Operand)}
	case *Compare:
		return &Compare{Op: n.Op, Left: rebuild(n.Left), Right: rebuild(n.Right)}
	case *ToInt:
		return &ToInt{Operand: rebuild(n.Operand)}
	case *DateToSerial:
		return &DateToSerial{Operand: rebuild(n.Operand)}
	case *DateTimeToSerial:
		return &DateTimeToSerial{Operand: rebuild(n.Operand)}
	case *Call:
		newArgs := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			newArgs[i] = rebuild(a)
		}
		return &Call{Spec: n.Spec, Args: newArgs}
	default:
		return expr
	}
}
