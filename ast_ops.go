package formula

import "github.com/shopspring/decimal"

// ArithOp is one of the four binary arithmetic operators.
type ArithOp uint8

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
)

// Arith is binary decimal arithmetic: both operands are evaluated in a
// numeric context and the result is always KindNumber (spec.md §4.4).
type Arith struct {
	Op          ArithOp
	Left, Right Expr
}

func (n *Arith) Kind() NodeKind        { return NodeArith }
func (n *Arith) ResultKind() ValueKind { return KindNumber }

// LogicalOp is AND/OR, both short-circuiting (spec.md §4.4: the unevaluated
// branch's errors never surface).
type LogicalOp uint8

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

type Logical struct {
	Op          LogicalOp
	Left, Right Expr
}

func (n *Logical) Kind() NodeKind        { return NodeLogical }
func (n *Logical) ResultKind() ValueKind { return KindBool }

// Not negates a boolean operand.
type Not struct{ Operand Expr }

func (n *Not) Kind() NodeKind        { return NodeNot }
func (n *Not) ResultKind() ValueKind { return KindBool }

// CompareOp is one of the six comparison operators. Eq/Neq are polymorphic
// over any result kind; Lt/Lte/Gt/Gte require numeric operands.
type CompareOp uint8

const (
	CompareEq CompareOp = iota
	CompareNeq
	CompareLt
	CompareLte
	CompareGt
	CompareGte
)

type Compare struct {
	Op          CompareOp
	Left, Right Expr
}

func (n *Compare) Kind() NodeKind        { return NodeCompare }
func (n *Compare) ResultKind() ValueKind { return KindBool }

// ToInt narrows a numeric operand to an integer-valued decimal, reporting
// TypeMismatch at evaluation time if the value is not integral. It is
// "transparent" to the Printer and Shifter: it never appears in surface
// syntax, it exists purely to carry a refined static type to its parent
// (e.g. an INDEX row/column argument).
type ToInt struct{ Operand Expr }

func (n *ToInt) Kind() NodeKind        { return NodeToInt }
func (n *ToInt) ResultKind() ValueKind { return KindNumber }

// DateToSerial converts a date-valued operand to its serial-number
// representation, transparent to Printer/Shifter like ToInt.
type DateToSerial struct{ Operand Expr }

func (n *DateToSerial) Kind() NodeKind        { return NodeDateToSerial }
func (n *DateToSerial) ResultKind() ValueKind { return KindNumber }

// DateTimeToSerial converts a datetime-valued operand (date + fractional
// time-of-day) to its serial-number representation.
type DateTimeToSerial struct{ Operand Expr }

func (n *DateTimeToSerial) Kind() NodeKind        { return NodeDateTimeToSerial }
func (n *DateTimeToSerial) ResultKind() ValueKind { return KindNumber }

// Aggregate folds a (possibly cross-sheet) range through a named
// aggregator from the registry (SUM, COUNT, AVERAGE, ...).
type Aggregate struct {
	Name string
	Loc  Location
}

func (n *Aggregate) Kind() NodeKind        { return NodeAggregate }
func (n *Aggregate) ResultKind() ValueKind { return KindNumber }

// --- smart constructors ---
//
// Parse builds trees through the parser's own grammar productions; these
// constructors are the programmatic equivalent, used by tests and by any
// host that wants to build a tree directly instead of through surface text.

func Num(s string) *Lit {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("formula: invalid numeric literal " + s)
	}
	return &Lit{Value: NumberValue(d)}
}

func NumD(d decimal.Decimal) *Lit { return &Lit{Value: NumberValue(d)} }

func Text(s string) *Lit { return &Lit{Value: TextValue(s)} }

func Bool(b bool) *Lit { return &Lit{Value: BoolValue(b)} }

func Err(k ErrorKind) *Lit { return &Lit{Value: ErrorValue(k)} }

func Add(l, r Expr) *Arith { return &Arith{Op: ArithAdd, Left: l, Right: r} }
func Sub(l, r Expr) *Arith { return &Arith{Op: ArithSub, Left: l, Right: r} }
func Mul(l, r Expr) *Arith { return &Arith{Op: ArithMul, Left: l, Right: r} }
func Div(l, r Expr) *Arith { return &Arith{Op: ArithDiv, Left: l, Right: r} }

func And(l, r Expr) *Logical { return &Logical{Op: LogicalAnd, Left: l, Right: r} }
func Or(l, r Expr) *Logical  { return &Logical{Op: LogicalOr, Left: l, Right: r} }

func Eq(l, r Expr) *Compare  { return &Compare{Op: CompareEq, Left: l, Right: r} }
func Neq(l, r Expr) *Compare { return &Compare{Op: CompareNeq, Left: l, Right: r} }
func Lt(l, r Expr) *Compare  { return &Compare{Op: CompareLt, Left: l, Right: r} }
func Lte(l, r Expr) *Compare { return &Compare{Op: CompareLte, Left: l, Right: r} }
func Gt(l, r Expr) *Compare  { return &Compare{Op: CompareGt, Left: l, Right: r} }
func Gte(l, r Expr) *Compare { return &Compare{Op: CompareGte, Left: l, Right: r} }

// RefNumeric builds a same-sheet reference decoded in numeric context
// (Empty coerces to 0, matching bare arithmetic operands in spec.md §4.4).
func RefNumeric(addr ARef, anchor Anchor) *Ref {
	return &Ref{Addr: addr, Anchor: anchor, ResKind: KindNumber, Decode: wrapNumeric(decodeResolvedNumeric)}
}

// RefStrict builds a same-sheet reference decoded with a strict decoder for
// resKind, used where the grammar fixes an argument's exact expected type
// (e.g. a text-only function argument).
func RefStrict(addr ARef, anchor Anchor, resKind ValueKind) *Ref {
	return &Ref{Addr: addr, Anchor: anchor, ResKind: resKind, Decode: strictDecoderFor(resKind)}
}

func SheetRefNumeric(sheet string, addr ARef, anchor Anchor) *SheetRef {
	return &SheetRef{Sheet: sheet, Addr: addr, Anchor: anchor, ResKind: KindNumber, Decode: wrapNumeric(decodeResolvedNumeric)}
}

func wrapNumeric(d Decoder[decimal.Decimal]) CellDecoder {
	return func(c Cell) (CellValue, *CodecError) {
		n, err := d(c)
		if err != nil {
			return CellValue{}, err
		}
		return NumberValue(n), nil
	}
}

func strictDecoderFor(k ValueKind) CellDecoder {
	switch k {
	case KindNumber:
		return wrapNumeric(DecodeNumberStrict)
	case KindText:
		return func(c Cell) (CellValue, *CodecError) {
			s, err := DecodeTextStrict(c)
			if err != nil {
				return CellValue{}, err
			}
			return TextValue(s), nil
		}
	case KindBool:
		return func(c Cell) (CellValue, *CodecError) {
			b, err := DecodeBoolStrict(c)
			if err != nil {
				return CellValue{}, err
			}
			return BoolValue(b), nil
		}
	case KindDateTime:
		return func(c Cell) (CellValue, *CodecError) {
			t, err := DecodeDateTimeStrict(c)
			if err != nil {
				return CellValue{}, err
			}
			return DateTimeValue(t), nil
		}
	default:
		return func(c Cell) (CellValue, *CodecError) { return c.Value.resolved(), nil }
	}
}
