package formula

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Decoder converts a Cell's value into a typed Go value, or reports a
// CodecError explaining the mismatch. Every Ref/SheetRef node carries one;
// it is the type-coercion contract between a raw cell and the AST's static
// result type (spec.md §3 invariant 1).
type Decoder[A any] func(Cell) (A, *CodecError)

// --- strict decoders: succeed only for the exact variant ---

// DecodeNumberStrict succeeds only for Number cells (consulting the cache
// for Formula cells), failing for every other kind including Empty.
func DecodeNumberStrict(c Cell) (decimal.Decimal, *CodecError) {
	v := c.Value.resolved()
	if v.Kind == KindNumber {
		return v.Number, nil
	}
	return decimal.Zero, newCodecError("number", v)
}

// DecodeTextStrict succeeds only for Text cells.
func DecodeTextStrict(c Cell) (string, *CodecError) {
	v := c.Value.resolved()
	if v.Kind == KindText {
		return v.Text, nil
	}
	return "", newCodecError("text", v)
}

// DecodeBoolStrict succeeds only for Bool cells.
func DecodeBoolStrict(c Cell) (bool, *CodecError) {
	v := c.Value.resolved()
	if v.Kind == KindBool {
		return v.Bool, nil
	}
	return false, newCodecError("boolean", v)
}

// DecodeDateTimeStrict succeeds only for DateTime cells.
func DecodeDateTimeStrict(c Cell) (time.Time, *CodecError) {
	v := c.Value.resolved()
	if v.Kind == KindDateTime {
		return v.DateTime, nil
	}
	return time.Time{}, newCodecError("date", v)
}

// --- coercing decoders: Excel-style coercion for function arguments ---

// decodeAsString: Empty->"", Number->canonical decimal text, Bool->TRUE/FALSE,
// DateTime->ISO, Text as-is, RichText flattens.
func decodeAsString(c Cell) (string, *CodecError) {
	return c.Value.resolved().String(), nil
}

// decodeAsInt: Number if isValidInt, Bool->1/0, else TypeMismatch.
func decodeAsInt(c Cell) (int64, *CodecError) {
	v := c.Value.resolved()
	switch v.Kind {
	case KindNumber:
		if !v.Number.IsInteger() {
			return 0, newCodecError("integer", v)
		}
		return v.Number.IntPart(), nil
	case KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, newCodecError("integer", v)
	}
}

// decodeAsDate extracts the LocalDate portion of a DateTime.
func decodeAsDate(c Cell) (time.Time, *CodecError) {
	v := c.Value.resolved()
	if v.Kind == KindDateTime {
		y, m, d := v.DateTime.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, newCodecError("date", v)
}

// decodeAsBool coerces Number (nonzero=true) and Text ("TRUE"/"FALSE",
// case-insensitive) in addition to the strict Bool case.
func decodeAsBool(c Cell) (bool, *CodecError) {
	v := c.Value.resolved()
	switch v.Kind {
	case KindBool:
		return v.Bool, nil
	case KindNumber:
		return !v.Number.IsZero(), nil
	case KindText:
		switch strings.ToUpper(v.Text) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return false, newCodecError("boolean", v)
	case KindEmpty:
		return false, nil
	default:
		return false, newCodecError("boolean", v)
	}
}

// decodeResolvedNumeric is the "resolved-value" decoder used for bare cell
// references in numeric contexts: Empty->Number(0), cached formula values
// unwrapped, Bool coerced, Text rejected.
func decodeResolvedNumeric(c Cell) (decimal.Decimal, *CodecError) {
	v := c.Value.resolved()
	switch v.Kind {
	case KindNumber:
		return v.Number, nil
	case KindEmpty:
		return decimal.Zero, nil
	case KindBool:
		if v.Bool {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	default:
		return decimal.Zero, newCodecError("number", v)
	}
}

// decodeNumericSkippable is used by aggregate folds: it reports ok=false
// (skip, not error) for any cell that does not carry a plain numeric value,
// implementing Excel's skip-non-numeric rule (spec.md §4.4).
func decodeNumericSkippable(c Cell) (decimal.Decimal, bool) {
	v := c.Value.resolved()
	if v.Kind == KindNumber {
		return v.Number, true
	}
	return decimal.Zero, false
}

// decodeNumericSkippableA is AVERAGEA-style coercion: booleans count as
// 1/0, text and rich text count as 0, and Empty, Error and DateTime cells
// are skipped.
func decodeNumericSkippableA(c Cell) (decimal.Decimal, bool) {
	v := c.Value.resolved()
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindBool:
		if v.Bool {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	case KindText, KindRichText:
		return decimal.Zero, true
	default:
		return decimal.Zero, false
	}
}

// coerceToNumeric is SUMPRODUCT's element coercion: bool->0/1, text/empty->0.
func coerceToNumeric(c Cell) decimal.Decimal {
	v := c.Value.resolved()
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindBool:
		if v.Bool {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

func parseCanonicalNumber(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
