package formula

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind tags the runtime shape of a CellValue, and doubles as the
// static ResultKind carried by typed AST nodes (design note §9: TExpr[A] is
// implemented as a monomorphic tagged union rather than true generics).
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBool
	KindDateTime
	KindRichText
	KindFormula
	KindError
	// KindAny marks nodes whose static result type is not fixed until
	// runtime (PolyRef before resolution, or functions like INDEX that
	// return whatever the referenced cell holds).
	KindAny
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindDateTime:
		return "date"
	case KindRichText:
		return "rich text"
	case KindFormula:
		return "formula"
	case KindError:
		return "error"
	default:
		return "any"
	}
}

// RichTextSegment is one run of a RichText cell value: a plain-text span
// plus opaque, core-agnostic style metadata.
type RichTextSegment struct {
	Text  string
	Style any
}

// CellValue is the closed sum type of everything a cell can hold.
type CellValue struct {
	Kind ValueKind

	Number   decimal.Decimal
	Text     string
	Bool     bool
	DateTime time.Time
	Rich     []RichTextSegment

	// Formula/cached value, for CellValue.Kind == KindFormula.
	FormulaText   string
	CachedValue   *CellValue
	HasCachedValue bool

	Error ErrorKind
}

func EmptyValue() CellValue { return CellValue{Kind: KindEmpty} }

func NumberValue(d decimal.Decimal) CellValue { return CellValue{Kind: KindNumber, Number: d} }

func TextValue(s string) CellValue { return CellValue{Kind: KindText, Text: s} }

func BoolValue(b bool) CellValue { return CellValue{Kind: KindBool, Bool: b} }

func DateTimeValue(t time.Time) CellValue { return CellValue{Kind: KindDateTime, DateTime: t} }

func RichTextValue(segs []RichTextSegment) CellValue { return CellValue{Kind: KindRichText, Rich: segs} }

func ErrorValue(k ErrorKind) CellValue { return CellValue{Kind: KindError, Error: k} }

func FormulaValue(text string, cached *CellValue) CellValue {
	cv := CellValue{Kind: KindFormula, FormulaText: text}
	if cached != nil {
		cv.CachedValue = cached
		cv.HasCachedValue = true
	}
	return cv
}

// resolved returns the effective value a decoder should see: formula cells
// resolve to their cached value (or Empty if uncached); every other kind is
// itself.
func (v CellValue) resolved() CellValue {
	if v.Kind == KindFormula {
		if v.HasCachedValue {
			return *v.CachedValue
		}
		return EmptyValue()
	}
	return v
}

// String renders the value the way it would display in a cell, used by
// decodeAsString and by error messages that embed operand values.
func (v CellValue) String() string {
	v = v.resolved()
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return v.Number.String()
	case KindText:
		return v.Text
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindDateTime:
		return v.DateTime.Format(time.RFC3339)
	case KindRichText:
		s := ""
		for _, seg := range v.Rich {
			s += seg.Text
		}
		return s
	case KindError:
		return v.Error.String()
	default:
		return ""
	}
}

// Cell wraps one CellValue plus host-opaque style information.
type Cell struct {
	Value CellValue
	Style any
}

func EmptyCell() Cell { return Cell{Value: EmptyValue()} }

// CodecError reports why a decoder could not produce a typed value from a
// CellValue.
type CodecError struct {
	Expected string
	Actual   string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func newCodecError(expected string, actual CellValue) *CodecError {
	return &CodecError{Expected: expected, Actual: actual.resolved().Kind.String()}
}
