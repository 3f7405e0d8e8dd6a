package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStatsRange(t *testing.T, wb *Workbook) {
	t.Helper()
	values := []string{"1", "2", "3", "4", "5"}
	for i, v := range values {
		require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: Row(i)}, NumberValue(mustDecimal(v))))
	}
}

func TestMedianOddAndEvenCounts(t *testing.T) {
	wb := newTestWorkbook(t)
	setupStatsRange(t, wb)

	v, evalErr := evalFormula(t, wb, "MEDIAN(A1:A5)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("3")))

	v, evalErr = evalFormula(t, wb, "MEDIAN(A1:A4)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2.5")))
}

func TestLargeAndSmall(t *testing.T) {
	wb := newTestWorkbook(t)
	setupStatsRange(t, wb)

	v, evalErr := evalFormula(t, wb, "LARGE(A1:A5,2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("4")))

	v, evalErr = evalFormula(t, wb, "SMALL(A1:A5,2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")))
}

func TestSumifWithComparisonCriterion(t *testing.T) {
	wb := newTestWorkbook(t)
	setupStatsRange(t, wb)

	v, evalErr := evalFormula(t, wb, `SUMIF(A1:A5,">2")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("12")))
}

func TestCountifWithWildcardCriterion(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, TextValue("apple")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, TextValue("apricot")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 2}, TextValue("banana")))

	v, evalErr := evalFormula(t, wb, `COUNTIF(A1:A3,"ap*")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")))
}

func TestSumifsMultipleCriteria(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, TextValue("east")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, TextValue("west")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 2}, TextValue("east")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 0}, NumberValue(mustDecimal("10"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 1}, NumberValue(mustDecimal("20"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 2}, NumberValue(mustDecimal("30"))))

	v, evalErr := evalFormula(t, wb, `SUMIFS(B1:B3,A1:A3,"east")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("40")))
}

func TestCountifsRequiresPairedArgs(t *testing.T) {
	wb := newTestWorkbook(t)
	setupStatsRange(t, wb)

	_, evalErr := evalFormula(t, wb, `COUNTIFS(A1:A5,">1",A1:A5)`)
	require.Error(t, evalErr)
}

func TestCountifsRejectsMismatchedCriteriaRangeShape(t *testing.T) {
	wb := newTestWorkbook(t)
	setupStatsRange(t, wb)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 0}, TextValue("x")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 1}, TextValue("y")))

	_, evalErr := evalFormula(t, wb, `COUNTIFS(A1:A5,">1",B1:B2,"x")`)
	require.Error(t, evalErr)
	var failed *EvalFailed
	require.ErrorAs(t, evalErr, &failed)
}

func TestSumifRejectsMismatchedSumRangeShape(t *testing.T) {
	wb := newTestWorkbook(t)
	setupStatsRange(t, wb)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 0}, NumberValue(mustDecimal("100"))))

	_, evalErr := evalFormula(t, wb, `SUMIF(A1:A5,">2",B1:B2)`)
	require.Error(t, evalErr)
	var failed *EvalFailed
	require.ErrorAs(t, evalErr, &failed)
}
