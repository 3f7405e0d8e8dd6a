package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNumberNear(t *testing.T, v CellValue, want float64, tolerance float64) {
	t.Helper()
	got, _ := v.Number.Float64()
	assert.InDelta(t, want, got, tolerance)
}

func TestPmtKnownLoan(t *testing.T) {
	wb := newTestWorkbook(t)
	// 5% annual rate, 10 periods, 1000 present value: standard annuity payment.
	v, evalErr := evalFormula(t, wb, "PMT(0.05,10,1000)")
	require.NoError(t, evalErr)
	assertNumberNear(t, v, -129.50457, 1e-3)
}

func TestFvAndPvRoundTrip(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "PV(0.05,10,-129.50457,0)")
	require.NoError(t, evalErr)
	assertNumberNear(t, v, 1000, 1e-2)

	v, evalErr = evalFormula(t, wb, "FV(0.05,10,-129.50457,1000)")
	require.NoError(t, evalErr)
	assertNumberNear(t, v, 0, 1e-2)
}

func TestNpvSumsDiscountedCashflows(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "NPV(0.1,100,100,100)")
	require.NoError(t, evalErr)
	assertNumberNear(t, v, 248.685, 1e-2)
}

func TestIrrConvergesOnKnownSeries(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("-1000"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, NumberValue(mustDecimal("500"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 2}, NumberValue(mustDecimal("400"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 3}, NumberValue(mustDecimal("300"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 4}, NumberValue(mustDecimal("200"))))

	v, evalErr := evalFormula(t, wb, "IRR(A1:A5)")
	require.NoError(t, evalErr)
	assertNumberNear(t, v, 0.178, 1e-2)
}

func TestNpvRejectsRateOfNegativeOne(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "NPV(-1,100,100)")
	require.Error(t, evalErr)
	assert.Equal(t, ErrNum, evalErr.Kind())
	assert.Equal(t, KindEmpty, v.Kind)
}

func TestIrrRejectsSameSignedCashflows(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "IRR(100,200,300)")
	require.Error(t, evalErr)
	assert.Equal(t, ErrNum, evalErr.Kind())
	assert.Equal(t, KindEmpty, v.Kind)
}

func TestXirrRejectsSameSignedCashflows(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("100"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, NumberValue(mustDecimal("200"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 0}, DateTimeValue(newDate(2024, 1, 1))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 1}, DateTimeValue(newDate(2024, 7, 1))))

	v, evalErr := evalFormula(t, wb, "XIRR(A1:A2,B1:B2)")
	require.Error(t, evalErr)
	assert.Equal(t, ErrNum, evalErr.Kind())
	assert.Equal(t, KindEmpty, v.Kind)
}

func TestNperRecoversLoanTermFromPmt(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "NPER(0.05,-129.50457,1000)")
	require.NoError(t, evalErr)
	assertNumberNear(t, v, 10, 1e-2)
}
