// Package formula implements a pure spreadsheet formula engine: a typed
// expression tree, a recursive-descent parser and canonical printer, an
// evaluator driven entirely by the read-only SheetAccess/WorkbookAccess
// capabilities a host supplies, a Tarjan/Kahn dependency analyzer, and an
// anchor-aware reference shifter for copy/drag operations.
//
// The package performs no I/O of its own. Worksheet and Workbook in this
// package are a reference, in-memory implementation of SheetAccess and
// WorkbookAccess, exercised directly by this package's own tests, but are
// not the only possible host; anything satisfying those two interfaces can
// drive the evaluator, dependency analyzer, and shifter.
package formula
