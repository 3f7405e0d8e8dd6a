package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)
	return wb
}

func evalFormula(t *testing.T, wb *Workbook, source string) (CellValue, EvalError) {
	t.Helper()
	sheet, ok := wb.Sheet("Sheet1")
	require.True(t, ok)
	expr, err := Parse(source)
	require.NoError(t, err)
	ctx := &EvalCtx{Workbook: wb, Sheet: sheet, Clock: WallClock{}}
	return ctx.Eval(expr)
}

func TestEvalDivisionByZero(t *testing.T) {
	wb := newTestWorkbook(t)
	_, evalErr := evalFormula(t, wb, "1/0")
	require.Error(t, evalErr)
	assert.Equal(t, ErrDiv0, evalErr.Kind())

	var divErr *DivByZero
	require.ErrorAs(t, evalErr, &divErr)
	assert.Equal(t, "1", divErr.Numerator)
	assert.Equal(t, "0", divErr.Denominator)
}

func TestEvalMinMaxOfEmptyRangeIsZero(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "MIN(A1:A10)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.IsZero())

	v, evalErr = evalFormula(t, wb, "MAX(A1:A10)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.IsZero())
}

func TestEvalAverageOfNoNumericCellsIsDivByZero(t *testing.T) {
	wb := newTestWorkbook(t)
	_, evalErr := evalFormula(t, wb, "AVERAGE(A1:A10)")
	require.Error(t, evalErr)
	assert.Equal(t, ErrDiv0, evalErr.Kind())
}

func TestEvalAverageSkipsNonNumericCells(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, TextValue("n/a")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, NumberValue(mustDecimal("4"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 2}, NumberValue(mustDecimal("6"))))

	v, evalErr := evalFormula(t, wb, "AVERAGE(A1:A3)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("5")))
}

func TestEvalLogicalShortCircuits(t *testing.T) {
	wb := newTestWorkbook(t)
	// The first AND operand is the literal FALSE; the second divides by
	// zero and must never be evaluated.
	v, evalErr := evalFormula(t, wb, "AND(FALSE,1/0=1)")
	require.NoError(t, evalErr)
	assert.False(t, v.Bool)

	v, evalErr = evalFormula(t, wb, "OR(TRUE,1/0=1)")
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)
}

func TestEvalErrorPropagatesThroughArithmetic(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, ErrorValue(ErrRef)))

	_, evalErr := evalFormula(t, wb, "A1+1")
	require.Error(t, evalErr)
	assert.Equal(t, ErrRef, evalErr.Kind())
}

func TestEvalEmptyReferenceCoercesToZeroInArithmetic(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "A1+5")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("5")))
}

func TestEvalComparisonAcrossKinds(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, `"foo"="foo"`)
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)

	v, evalErr = evalFormula(t, wb, `1<>2`)
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)
}
