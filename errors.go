package formula

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind enumerates the spreadsheet error values a cell can hold,
// following Excel's error taxonomy.
type ErrorKind uint8

const (
	ErrNull ErrorKind = iota + 1
	ErrDiv0
	ErrValue
	ErrRef
	ErrName
	ErrNum
	ErrNA
)

var errorKindText = map[ErrorKind]string{
	ErrNull:  "#NULL!",
	ErrDiv0:  "#DIV/0!",
	ErrValue: "#VALUE!",
	ErrRef:   "#REF!",
	ErrName:  "#NAME?",
	ErrNum:   "#NUM!",
	ErrNA:    "#N/A",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindText[k]; ok {
		return s
	}
	return "#ERROR!"
}

// EvalError is the interface every evaluator-facing error satisfies. Cell
// values embed the ErrorKind; evaluator callers get richer Go errors
// carrying the same kind plus diagnostic context.
type EvalError interface {
	error
	Kind() ErrorKind
}

// EvalFailed is a general evaluation failure not covered by a more specific
// EvalError variant.
type EvalFailed struct {
	Message string
	Context string
	Cause   error
}

func (e *EvalFailed) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Context)
	}
	return e.Message
}

func (e *EvalFailed) Kind() ErrorKind { return ErrValue }

func (e *EvalFailed) Unwrap() error { return e.Cause }

func newEvalFailed(format string, args ...any) *EvalFailed {
	return &EvalFailed{Message: fmt.Sprintf(format, args...)}
}

func wrapEvalFailed(cause error, format string, args ...any) *EvalFailed {
	return &EvalFailed{
		Message: fmt.Sprintf(format, args...),
		Cause:   errors.WithStack(cause),
	}
}

// DivByZero reports division by zero, carrying the printer's rendering of
// both operands so the message names the offending expression verbatim.
type DivByZero struct {
	Numerator   string
	Denominator string
}

func (e *DivByZero) Error() string {
	return fmt.Sprintf("#DIV/0!: %s / %s", e.Numerator, e.Denominator)
}

func (e *DivByZero) Kind() ErrorKind { return ErrDiv0 }

// TypeMismatch reports a typing violation inside a function call.
type TypeMismatch struct {
	Function string
	Expected string
	Actual   string
}

func (e *TypeMismatch) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("#VALUE!: expected %s, got %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("#VALUE!: %s expected %s, got %s", e.Function, e.Expected, e.Actual)
}

func (e *TypeMismatch) Kind() ErrorKind { return ErrValue }

// CodecFailed reports a cell-decoding failure at a specific address.
type CodecFailed struct {
	Address string
	Cause   *CodecError
}

func (e *CodecFailed) Error() string {
	return fmt.Sprintf("#VALUE!: %s: %s", e.Address, e.Cause.Error())
}

func (e *CodecFailed) Kind() ErrorKind { return ErrValue }

func (e *CodecFailed) Unwrap() error { return e.Cause }

// CircularRef reports a cycle discovered in a DependencyGraph. Path is a
// closed walk (the first node repeats as the last element).
type CircularRef struct {
	Path []ARef
}

func (e *CircularRef) Error() string {
	return fmt.Sprintf("#REF!: circular reference: %s", formatRefPath(e.Path))
}

func (e *CircularRef) Kind() ErrorKind { return ErrRef }

func formatRefPath(path []ARef) string {
	s := ""
	for i, r := range path {
		if i > 0 {
			s += " -> "
		}
		s += r.ToA1()
	}
	return s
}

// cellError turns an EvalError into the CellValue-embeddable ErrorKind,
// the form that surfaces inside a cell rather than as a Go error.
func cellError(err error) ErrorKind {
	var ee EvalError
	if errors.As(err, &ee) {
		return ee.Kind()
	}
	return ErrValue
}
