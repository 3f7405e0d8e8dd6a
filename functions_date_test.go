package formula

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateConstructionAndFields(t *testing.T) {
	wb := newTestWorkbook(t)

	v, evalErr := evalFormula(t, wb, "YEAR(DATE(2024,3,15))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2024")))

	v, evalErr = evalFormula(t, wb, "MONTH(DATE(2024,3,15))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("3")))

	v, evalErr = evalFormula(t, wb, "DAY(DATE(2024,3,15))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("15")))
}

func TestEdateAndEomonth(t *testing.T) {
	wb := newTestWorkbook(t)

	v, evalErr := evalFormula(t, wb, "MONTH(EDATE(DATE(2024,1,31),1))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")), "Jan 31 + 1 month clamps to Feb's last day, not March")

	v, evalErr = evalFormula(t, wb, "DAY(EDATE(DATE(2024,1,31),1))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("29")), "clamped to 2024's leap Feb 29")

	v, evalErr = evalFormula(t, wb, "DAY(EOMONTH(DATE(2024,2,1),0))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("29")), "2024 is a leap year")
}

func TestDatedifUnits(t *testing.T) {
	wb := newTestWorkbook(t)

	v, evalErr := evalFormula(t, wb, `DATEDIF(DATE(2020,1,1),DATE(2024,6,15),"Y")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("4")))

	v, evalErr = evalFormula(t, wb, `DATEDIF(DATE(2024,1,20),DATE(2024,3,5),"MD")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("14")), "borrows from February's length since 5 < 20")

	v, evalErr = evalFormula(t, wb, `DATEDIF(DATE(2024,1,20),DATE(2024,6,5),"YM")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("4")), "months elapsed ignoring years, one short since day 5 < 20")

	v, evalErr = evalFormula(t, wb, `DATEDIF(DATE(2023,1,20),DATE(2024,1,5),"YD")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("350")), "days elapsed ignoring the year difference")

	_, evalErr = evalFormula(t, wb, `DATEDIF(DATE(2020,1,1),DATE(2024,6,15),"X")`)
	require.Error(t, evalErr)
	var mismatch *TypeMismatch
	require.ErrorAs(t, evalErr, &mismatch)
}

func TestNetworkdaysAndWorkday(t *testing.T) {
	wb := newTestWorkbook(t)

	// Monday 2024-01-01 through Friday 2024-01-05: five business days.
	v, evalErr := evalFormula(t, wb, "NETWORKDAYS(DATE(2024,1,1),DATE(2024,1,5))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("5")))

	v, evalErr = evalFormula(t, wb, "DAY(WORKDAY(DATE(2024,1,1),4))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("5")))

	// Reversed start/end flips the sign instead of swapping and returning
	// a positive count.
	v, evalErr = evalFormula(t, wb, "NETWORKDAYS(DATE(2024,1,5),DATE(2024,1,1))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("-5")))

	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, DateTimeValue(newDate(2024, 1, 2))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, DateTimeValue(newDate(2024, 1, 3))))

	// Tue/Wed dropped as holidays leaves only Mon, Thu, Fri.
	v, evalErr = evalFormula(t, wb, "NETWORKDAYS(DATE(2024,1,1),DATE(2024,1,5),A1:A2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("3")))

	v, evalErr = evalFormula(t, wb, "DAY(WORKDAY(DATE(2024,1,1),2,A1:A2))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("5")), "Jan 2 and 3 don't count, so the 2nd workday lands on the 5th")
}

func newDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearfracBasisConventions(t *testing.T) {
	wb := newTestWorkbook(t)

	// 2024-01-01 to 2024-07-01, basis 0 (US 30/360): 6 months of 30 days.
	v, evalErr := evalFormula(t, wb, "YEARFRAC(DATE(2024,1,1),DATE(2024,7,1),0)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("0.5")))

	// basis omitted defaults to 0.
	v, evalErr = evalFormula(t, wb, "YEARFRAC(DATE(2024,1,1),DATE(2024,7,1))")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("0.5")))

	// basis 2 (Actual/360) over the same actual 182 days.
	v, evalErr = evalFormula(t, wb, "YEARFRAC(DATE(2024,1,1),DATE(2024,7,1),2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(decimal.NewFromFloat(182.0/360.0)))

	// basis 3 (Actual/365).
	v, evalErr = evalFormula(t, wb, "YEARFRAC(DATE(2024,1,1),DATE(2024,7,1),3)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(decimal.NewFromFloat(182.0/365.0)))

	// basis 0's day-31 tweak: Jan 31 to Mar 31 counts as 2 months exactly.
	v, evalErr = evalFormula(t, wb, "YEARFRAC(DATE(2024,1,31),DATE(2024,3,31),0)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(decimal.NewFromFloat(60.0/360.0)))

	_, evalErr = evalFormula(t, wb, "YEARFRAC(DATE(2024,1,1),DATE(2024,7,1),5)")
	require.Error(t, evalErr)
	var mismatch *TypeMismatch
	require.ErrorAs(t, evalErr, &mismatch)
}

func TestPrintElidesDefaultYearfracBasis(t *testing.T) {
	expr, err := Parse("YEARFRAC(A1,A2,0)")
	require.NoError(t, err)
	assert.Equal(t, "YEARFRAC(A1,A2)", Print(expr))

	expr, err = Parse("YEARFRAC(A1,A2,1)")
	require.NoError(t, err)
	assert.Equal(t, "YEARFRAC(A1,A2,1)", Print(expr))
}

func TestWeekdayModes(t *testing.T) {
	wb := newTestWorkbook(t)
	// 2024-01-01 is a Monday.
	v, evalErr := evalFormula(t, wb, "WEEKDAY(DATE(2024,1,1),2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("1")))
}
