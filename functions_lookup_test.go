package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLookupTable(t *testing.T, wb *Workbook) {
	t.Helper()
	rows := []struct {
		name  string
		score string
	}{
		{"alice", "10"},
		{"bob", "20"},
		{"carol", "30"},
	}
	for i, r := range rows {
		require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: Row(i)}, TextValue(r.name)))
		require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: Row(i)}, NumberValue(mustDecimal(r.score))))
	}
}

func TestVlookupExactMatch(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb)

	v, evalErr := evalFormula(t, wb, `VLOOKUP("bob",A1:B3,2,FALSE)`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("20")))
}

func TestVlookupNotFoundIsNA(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb)

	v, evalErr := evalFormula(t, wb, `VLOOKUP("dave",A1:B3,2,FALSE)`)
	require.Error(t, evalErr)
	assert.Equal(t, ErrNA, evalErr.Kind())
	assert.Equal(t, KindEmpty, v.Kind)
}

func TestMatchExact(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb)

	v, evalErr := evalFormula(t, wb, `MATCH("carol",A1:A3,0)`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("3")))
}

func TestIndexReturnsCell(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb)

	v, evalErr := evalFormula(t, wb, "INDEX(A1:B3,2,2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("20")))
}

func TestIndexOutOfBoundsIsRef(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb)

	v, evalErr := evalFormula(t, wb, "INDEX(A1:B3,10,1)")
	require.Error(t, evalErr)
	assert.Equal(t, ErrRef, evalErr.Kind())
	assert.Equal(t, KindEmpty, v.Kind)
}

func TestRowsAndColumns(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "ROWS(A1:B3)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("3")))

	v, evalErr = evalFormula(t, wb, "COLUMNS(A1:B3)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")))
}

func TestXlookupFallback(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb)

	v, evalErr := evalFormula(t, wb, `XLOOKUP("dave",A1:A3,B1:B3,"missing")`)
	require.NoError(t, evalErr)
	assert.Equal(t, "missing", v.Text)
}

func TestXlookupMatchModes(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb) // scores column B is 10, 20, 30 ascending

	// match_mode -1: largest key <= 25 is bob's 20.
	v, evalErr := evalFormula(t, wb, `XLOOKUP(25,B1:B3,A1:A3,"missing",-1)`)
	require.NoError(t, evalErr)
	assert.Equal(t, "bob", v.Text)

	// match_mode 1: smallest key >= 25 is carol's 30.
	v, evalErr = evalFormula(t, wb, `XLOOKUP(25,B1:B3,A1:A3,"missing",1)`)
	require.NoError(t, evalErr)
	assert.Equal(t, "carol", v.Text)

	// match_mode 2: wildcard text match.
	v, evalErr = evalFormula(t, wb, `XLOOKUP("*ob",A1:A3,B1:B3,"missing",2)`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("20")))
}

func TestXlookupRejectsMismatchedArrayDimensions(t *testing.T) {
	wb := newTestWorkbook(t)
	setupLookupTable(t, wb)

	_, evalErr := evalFormula(t, wb, `XLOOKUP("bob",A1:A3,B1:B2)`)
	require.Error(t, evalErr)
	var failed *EvalFailed
	require.ErrorAs(t, evalErr, &failed)
}

func TestMatchSmallestGreaterOrEqualOnDescendingData(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("30"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, NumberValue(mustDecimal("20"))))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 2}, NumberValue(mustDecimal("10"))))

	v, evalErr := evalFormula(t, wb, "MATCH(15,A1:A3,-1)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")), "smallest value >= 15 in descending data is 20, at position 2")
}
