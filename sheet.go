package formula

import (
	"fmt"
	"strings"
)

// AppErrorCode represents gRPC-style error codes for application-level
// errors raised by Workbook (worksheet lifecycle, address parsing) — kept
// distinct from the formula-evaluation taxonomy in errors.go, which reports
// #REF!/#VALUE!/etc. for cell content rather than host API misuse.
type AppErrorCode int

const (
	Unknown           AppErrorCode = 2
	InvalidArgument    AppErrorCode = 3
	NotFound           AppErrorCode = 5
	AlreadyExists      AppErrorCode = 6
	FailedPrecondition AppErrorCode = 9
)

// AppError represents errors at the application level (not spreadsheet
// formula errors).
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Workbook is the reference WorkbookAccess implementation: a set of named
// Worksheets plus the dependency graph and clock that drive recalculation.
// It plays the role the teacher's Spreadsheet/Storage pair played, folding
// their worksheet/formula/string table indirection into direct name-keyed
// maps now that named ranges and numeric worksheet IDs are out of scope.
type Workbook struct {
	sheets  map[string]*Worksheet
	order   []string // insertion order, for ListSheets
	strings *StringTable
	graph   *DependencyGraph
	clock   Clock
	exprs   map[NodeKey]Expr // parsed formula behind every formula cell, by node
}

func NewWorkbook() *Workbook {
	return &Workbook{
		sheets:  make(map[string]*Worksheet),
		strings: NewStringTable(),
		graph:   NewDependencyGraph(),
		clock:   WallClock{},
	}
}

// WithClock overrides the clock NOW/TODAY read from (tests use FixedClock).
func (wb *Workbook) WithClock(c Clock) *Workbook {
	wb.clock = c
	return wb
}

// AddSheet creates a new, empty worksheet named name.
func (wb *Workbook) AddSheet(name string) (*Worksheet, error) {
	if _, exists := wb.sheets[name]; exists {
		return nil, NewApplicationError(AlreadyExists, fmt.Sprintf("worksheet %q already exists", name))
	}
	ws := NewWorksheet(name, wb.strings)
	wb.sheets[name] = ws
	wb.order = append(wb.order, name)
	return ws, nil
}

// RemoveSheet deletes a worksheet and every dependency-graph edge rooted
// in it.
func (wb *Workbook) RemoveSheet(name string) error {
	if _, exists := wb.sheets[name]; !exists {
		return NewApplicationError(NotFound, fmt.Sprintf("worksheet %q not found", name))
	}
	for _, node := range wb.graph.allNodes() {
		if node.Sheet == name {
			wb.graph.RemoveFormula(node)
		}
	}
	delete(wb.sheets, name)
	for i, n := range wb.order {
		if n == name {
			wb.order = append(wb.order[:i], wb.order[i+1:]...)
			break
		}
	}
	return nil
}

// Sheet implements WorkbookAccess.
func (wb *Workbook) Sheet(name string) (SheetAccess, bool) {
	ws, ok := wb.sheets[name]
	if !ok {
		return nil, false
	}
	return ws, true
}

// ListSheets returns worksheet names in the order they were added.
func (wb *Workbook) ListSheets() []string {
	out := make([]string, len(wb.order))
	copy(out, wb.order)
	return out
}

func (wb *Workbook) worksheet(name string) (*Worksheet, error) {
	ws, ok := wb.sheets[name]
	if !ok {
		return nil, NewApplicationError(NotFound, fmt.Sprintf("worksheet %q not found", name))
	}
	return ws, nil
}

// SetValue stores a literal value at addr on sheet and recalculates every
// cell that transitively depends on it.
func (wb *Workbook) SetValue(sheet string, addr ARef, v CellValue) error {
	ws, err := wb.worksheet(sheet)
	if err != nil {
		return err
	}
	node := NodeKey{Sheet: sheet, Addr: addr}
	wb.graph.RemoveFormula(node)
	ws.SetValue(addr, v)
	return wb.recalculate(node)
}

// SetFormula parses and stores a formula at addr on sheet, registers its
// dependency edges, and recalculates it plus everything downstream.
func (wb *Workbook) SetFormula(sheet string, addr ARef, source string) error {
	ws, err := wb.worksheet(sheet)
	if err != nil {
		return err
	}
	expr, perr := Parse(source)
	if perr != nil {
		return NewApplicationError(InvalidArgument, fmt.Sprintf("parsing %s: %v", source, perr))
	}
	node := NodeKey{Sheet: sheet, Addr: addr}
	wb.graph.SetFormula(wb, node, expr)
	ws.SetFormula(addr, source)
	wb.formulas()[node] = expr
	return wb.recalculate(node)
}

// formulas lazily allocates the node->Expr map the first time it's needed;
// kept off the zero-value Workbook struct so a workbook built by literal
// (rather than NewWorkbook) still zero-initializes safely once used.
func (wb *Workbook) formulas() map[NodeKey]Expr {
	if wb.exprs == nil {
		wb.exprs = map[NodeKey]Expr{}
	}
	return wb.exprs
}

// recalculate recomputes node and every cell that transitively depends on
// it, in dependency order, reporting a CircularRef if the dependency graph
// contains a cycle anywhere.
func (wb *Workbook) recalculate(node NodeKey) error {
	roots := append([]NodeKey{node}, wb.graph.TransitiveDependents(node)...)
	order, evalErr := wb.graph.CalculationOrder(roots)
	if evalErr != nil {
		return evalErr
	}
	for _, n := range order {
		expr, ok := wb.formulas()[n]
		if !ok {
			continue
		}
		ws, err := wb.worksheet(n.Sheet)
		if err != nil {
			continue
		}
		ctx := &EvalCtx{Workbook: wb, Sheet: ws, Clock: wb.clock}
		value, evalErr := ctx.Eval(expr)
		if evalErr != nil {
			value = ErrorValue(evalErr.Kind())
		}
		ws.SetResult(n.Addr, value)
	}
	return nil
}

// RecalculateAll recomputes every formula cell in the workbook, in a single
// dependency-respecting pass — the full-sheet counterpart to recalculate's
// incremental, single-node-triggered update.
func (wb *Workbook) RecalculateAll() error {
	var roots []NodeKey
	for n := range wb.formulas() {
		roots = append(roots, n)
	}
	sortNodeKeys(roots)
	order, evalErr := wb.graph.CalculationOrder(roots)
	if evalErr != nil {
		return evalErr
	}
	for _, n := range order {
		expr, ok := wb.formulas()[n]
		if !ok {
			continue
		}
		ws, err := wb.worksheet(n.Sheet)
		if err != nil {
			continue
		}
		ctx := &EvalCtx{Workbook: wb, Sheet: ws, Clock: wb.clock}
		value, evalErr := ctx.Eval(expr)
		if evalErr != nil {
			value = ErrorValue(evalErr.Kind())
		}
		ws.SetResult(n.Addr, value)
	}
	return nil
}

// Get returns the resolved value stored at an "A1" or "Sheet1!A1" address.
func (wb *Workbook) Get(address string) (CellValue, error) {
	sheet, addr, err := wb.resolveAddress(address)
	if err != nil {
		return CellValue{}, err
	}
	ws, err := wb.worksheet(sheet)
	if err != nil {
		return CellValue{}, err
	}
	return ws.Get(addr).Value.resolved(), nil
}

func (wb *Workbook) resolveAddress(address string) (sheet string, addr ARef, err error) {
	sheetName, rest, hasSheet := strings.Cut(address, "!")
	if !hasSheet {
		rest = sheetName
		sheetName = wb.defaultSheet()
	}
	parsed, perr := parseA1Address(rest)
	if perr != nil {
		return "", ARef{}, NewApplicationError(InvalidArgument, fmt.Sprintf("invalid address %q", address))
	}
	return strings.Trim(sheetName, "'"), parsed, nil
}

func (wb *Workbook) defaultSheet() string {
	if len(wb.order) == 0 {
		return ""
	}
	return wb.order[0]
}
