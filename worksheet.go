package formula

import "github.com/shopspring/decimal"

// chunkKey indexes one 256x256 region of a Worksheet.
type chunkKey struct {
	chunkRow uint32
	chunkCol uint32
}

const (
	chunkRows uint32 = 256                   // rows per chunk
	chunkCols uint32 = 256                   // columns per chunk
	chunkSize        = chunkRows * chunkCols // cells per chunk
)

// chunk holds a 256x256 region of cells using a structure-of-arrays layout:
// cache-friendly and, since most cells in a real sheet are empty, cheap —
// every slice past Types is allocated lazily on first write of that kind.
// Adapted from the teacher's worksheet.go Chunk, retyped from float64/string
// IDs to decimal.Decimal and the shared CellValue/ValueKind vocabulary.
type chunk struct {
	Types []uint8 // ValueKind per position, always allocated

	Numbers    []decimal.Decimal // Number/Bool(0 or 1)/DateTime(serial) values, lazy
	StringIDs  []uint32          // Text values, interned, lazy
	ErrorKinds []uint8           // ErrorKind values, lazy

	FormulaTextIDs  []uint32 // interned formula source text, lazy
	HasCachedResult []bool   // whether a formula cell has a cached result, lazy
	ResultTypes     []uint8  // cached result ValueKind, lazy
	ResultNumbers   []decimal.Decimal
	ResultStringIDs []uint32
	ResultErrorKind []uint8
}

func newChunk() *chunk {
	return &chunk{Types: make([]uint8, chunkSize)}
}

// Worksheet is an in-memory, chunked store of CellValue plus formula text,
// the reference SheetAccess implementation exercised directly by this
// package's own tests (spec.md §5 — a host capability, not the only
// possible one).
type Worksheet struct {
	name      string
	chunks    map[chunkKey]*chunk
	strings   *StringTable
	nonEmpty  int
	haveUsed  bool
	usedRange CellRange
}

func NewWorksheet(name string, strings *StringTable) *Worksheet {
	return &Worksheet{
		name:    name,
		chunks:  make(map[chunkKey]*chunk),
		strings: strings,
	}
}

func (w *Worksheet) Name() string { return w.name }

func (w *Worksheet) getChunk(cr, cc uint32) *chunk {
	key := chunkKey{chunkRow: cr, chunkCol: cc}
	c, ok := w.chunks[key]
	if !ok {
		c = newChunk()
		w.chunks[key] = c
	}
	return c
}

func chunkIndex(addr ARef) (key chunkKey, idx uint32) {
	row, col := uint32(addr.Row), uint32(addr.Col)
	key = chunkKey{chunkRow: row / chunkRows, chunkCol: col / chunkCols}
	localRow, localCol := row%chunkRows, col%chunkCols
	idx = localCol*chunkRows + localRow
	return key, idx
}

// Get implements SheetAccess. It never panics on out-of-range coordinates —
// an address past every chunk simply reports Empty.
func (w *Worksheet) Get(addr ARef) Cell {
	key, idx := chunkIndex(addr)
	c, ok := w.chunks[key]
	if !ok {
		return EmptyCell()
	}
	kind := ValueKind(c.Types[idx])
	if kind == KindEmpty {
		return EmptyCell()
	}
	v := w.decodeValue(c, idx, kind)
	if kind == KindFormula {
		v.FormulaText = w.lookupString(idAt(c.FormulaTextIDs, idx))
		if idx < uint32(len(c.HasCachedResult)) && c.HasCachedResult[idx] {
			cached := w.decodeValue(c, idx, ValueKind(c.ResultTypes[idx]))
			v.CachedValue = &cached
			v.HasCachedValue = true
		}
	}
	return Cell{Value: v}
}

func (w *Worksheet) decodeValue(c *chunk, idx uint32, kind ValueKind) CellValue {
	switch kind {
	case KindNumber:
		return NumberValue(decAt(c.Numbers, idx))
	case KindBool:
		return BoolValue(!decAt(c.Numbers, idx).IsZero())
	case KindDateTime:
		return DateTimeValue(serialToDateTime(decAt(c.Numbers, idx)))
	case KindText:
		return TextValue(w.lookupString(idAt(c.StringIDs, idx)))
	case KindError:
		return ErrorValue(ErrorKind(byteAt(c.ErrorKinds, idx)))
	case KindFormula:
		return CellValue{Kind: KindFormula}
	default:
		return EmptyValue()
	}
}

func (w *Worksheet) lookupString(id uint32) string {
	if id == 0 || w.strings == nil {
		return ""
	}
	s, _ := w.strings.GetString(id)
	return s
}

func idAt(s []uint32, idx uint32) uint32 {
	if idx >= uint32(len(s)) {
		return 0
	}
	return s[idx]
}

func decAt(s []decimal.Decimal, idx uint32) decimal.Decimal {
	if idx >= uint32(len(s)) {
		return decimal.Zero
	}
	return s[idx]
}

func byteAt(s []uint8, idx uint32) uint8 {
	if idx >= uint32(len(s)) {
		return 0
	}
	return s[idx]
}

// SetValue stores a literal (non-formula) value at addr, clearing whatever
// formula previously lived there.
func (w *Worksheet) SetValue(addr ARef, v CellValue) {
	key, idx := chunkIndex(addr)
	c := w.getChunk(key.chunkRow, key.chunkCol)
	w.trackOccupancy(c, idx, addr)
	c.Types[idx] = uint8(v.Kind)
	w.clearFormula(c, idx)
	w.clearResult(c, idx)

	switch v.Kind {
	case KindNumber:
		w.ensureNumbers(c)[idx] = v.Number
	case KindBool:
		b := decimal.Zero
		if v.Bool {
			b = decimal.NewFromInt(1)
		}
		w.ensureNumbers(c)[idx] = b
	case KindDateTime:
		w.ensureNumbers(c)[idx] = dateTimeToSerial(v.DateTime)
	case KindText:
		w.ensureStringIDs(c)[idx] = w.intern(v.Text)
	case KindError:
		w.ensureErrorKinds(c)[idx] = uint8(v.Error)
	}
}

// SetFormula stores formula source text at addr (marking the cell as a
// formula cell with no cached result yet); the caller is responsible for
// populating the result via SetResult once the evaluator has run.
func (w *Worksheet) SetFormula(addr ARef, text string) {
	key, idx := chunkIndex(addr)
	c := w.getChunk(key.chunkRow, key.chunkCol)
	w.trackOccupancy(c, idx, addr)
	c.Types[idx] = uint8(KindFormula)
	if c.FormulaTextIDs == nil {
		c.FormulaTextIDs = make([]uint32, chunkSize)
	}
	c.FormulaTextIDs[idx] = w.intern(text)
	w.clearResult(c, idx)
}

// SetResult caches a formula cell's evaluated value.
func (w *Worksheet) SetResult(addr ARef, v CellValue) {
	key, idx := chunkIndex(addr)
	c := w.getChunk(key.chunkRow, key.chunkCol)
	if c.HasCachedResult == nil {
		c.HasCachedResult = make([]bool, chunkSize)
		c.ResultTypes = make([]uint8, chunkSize)
	}
	c.HasCachedResult[idx] = true
	c.ResultTypes[idx] = uint8(v.Kind)
	switch v.Kind {
	case KindNumber:
		w.ensureResultNumbers(c)[idx] = v.Number
	case KindBool:
		b := decimal.Zero
		if v.Bool {
			b = decimal.NewFromInt(1)
		}
		w.ensureResultNumbers(c)[idx] = b
	case KindDateTime:
		w.ensureResultNumbers(c)[idx] = dateTimeToSerial(v.DateTime)
	case KindText:
		w.ensureResultStringIDs(c)[idx] = w.intern(v.Text)
	case KindError:
		w.ensureResultErrorKinds(c)[idx] = uint8(v.Error)
	}
}

// Clear removes whatever is stored at addr, returning it to Empty.
func (w *Worksheet) Clear(addr ARef) {
	key, idx := chunkIndex(addr)
	c, ok := w.chunks[key]
	if !ok {
		return
	}
	if ValueKind(c.Types[idx]) != KindEmpty {
		w.nonEmpty--
	}
	c.Types[idx] = uint8(KindEmpty)
	w.clearFormula(c, idx)
	w.clearResult(c, idx)
}

func (w *Worksheet) clearFormula(c *chunk, idx uint32) {
	if c.FormulaTextIDs != nil && idx < uint32(len(c.FormulaTextIDs)) {
		c.FormulaTextIDs[idx] = 0
	}
}

func (w *Worksheet) clearResult(c *chunk, idx uint32) {
	if c.HasCachedResult != nil && idx < uint32(len(c.HasCachedResult)) {
		c.HasCachedResult[idx] = false
	}
}

func (w *Worksheet) ensureNumbers(c *chunk) []decimal.Decimal {
	if c.Numbers == nil {
		c.Numbers = make([]decimal.Decimal, chunkSize)
	}
	return c.Numbers
}

func (w *Worksheet) ensureStringIDs(c *chunk) []uint32 {
	if c.StringIDs == nil {
		c.StringIDs = make([]uint32, chunkSize)
	}
	return c.StringIDs
}

func (w *Worksheet) ensureErrorKinds(c *chunk) []uint8 {
	if c.ErrorKinds == nil {
		c.ErrorKinds = make([]uint8, chunkSize)
	}
	return c.ErrorKinds
}

func (w *Worksheet) ensureResultNumbers(c *chunk) []decimal.Decimal {
	if c.ResultNumbers == nil {
		c.ResultNumbers = make([]decimal.Decimal, chunkSize)
	}
	return c.ResultNumbers
}

func (w *Worksheet) ensureResultStringIDs(c *chunk) []uint32 {
	if c.ResultStringIDs == nil {
		c.ResultStringIDs = make([]uint32, chunkSize)
	}
	return c.ResultStringIDs
}

func (w *Worksheet) ensureResultErrorKinds(c *chunk) []uint8 {
	if c.ResultErrorKind == nil {
		c.ResultErrorKind = make([]uint8, chunkSize)
	}
	return c.ResultErrorKind
}

func (w *Worksheet) intern(s string) uint32 {
	if s == "" || w.strings == nil {
		return 0
	}
	return w.strings.Intern(s)
}

func (w *Worksheet) trackOccupancy(c *chunk, idx uint32, addr ARef) {
	if ValueKind(c.Types[idx]) == KindEmpty {
		w.nonEmpty++
	}
	w.growUsedRange(addr)
}

func (w *Worksheet) growUsedRange(addr ARef) {
	if !w.haveUsed {
		w.usedRange = CellRange{Start: addr, End: addr}
		w.haveUsed = true
		return
	}
	w.usedRange = NewCellRange(
		ARef{Col: minCol(w.usedRange.Start.Col, addr.Col), Row: minRow(w.usedRange.Start.Row, addr.Row)},
		ARef{Col: maxCol(w.usedRange.End.Col, addr.Col), Row: maxRow(w.usedRange.End.Row, addr.Row)},
		AnchorRelative, AnchorRelative,
	)
}

// UsedRange implements SheetAccess.
func (w *Worksheet) UsedRange() CellRange {
	if !w.haveUsed {
		return CellRange{}
	}
	return w.usedRange
}

// NonEmptyCount reports how many cells currently hold a non-empty value,
// diagnostic surface mirroring the teacher's cellsByType/totalCells stats.
func (w *Worksheet) NonEmptyCount() int { return w.nonEmpty }
