package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIfBranches(t *testing.T) {
	wb := newTestWorkbook(t)

	v, evalErr := evalFormula(t, wb, "IF(1>0,1,2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("1")))

	v, evalErr = evalFormula(t, wb, "IF(1<0,1,2)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")))

	v, evalErr = evalFormula(t, wb, "IF(1<0,1)")
	require.NoError(t, evalErr)
	assert.False(t, v.Bool)
}

func TestIfsEvaluatesFirstTrueBranch(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, `IFS(1<0,"a",2>1,"b",TRUE,"c")`)
	require.NoError(t, evalErr)
	assert.Equal(t, "b", v.Text)
}

func TestIfsFallsThroughToNAWithNoMatch(t *testing.T) {
	wb := newTestWorkbook(t)
	_, evalErr := evalFormula(t, wb, `IFS(1<0,"a",2<1,"b")`)
	require.Error(t, evalErr)
	assert.Equal(t, ErrNA, evalErr.Kind())
}

func TestSwitchMatchesCaseOrDefault(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, `SWITCH(2,1,"one",2,"two","other")`)
	require.NoError(t, evalErr)
	assert.Equal(t, "two", v.Text)

	v, evalErr = evalFormula(t, wb, `SWITCH(9,1,"one",2,"two","other")`)
	require.NoError(t, evalErr)
	assert.Equal(t, "other", v.Text)
}

func TestIferrorCatchesAnyError(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, `IFERROR(1/0,"caught")`)
	require.NoError(t, evalErr)
	assert.Equal(t, "caught", v.Text)
}

func TestIfnaOnlyCatchesNA(t *testing.T) {
	wb := newTestWorkbook(t)

	v, evalErr := evalFormula(t, wb, `IFNA(NA(),"caught")`)
	require.NoError(t, evalErr)
	assert.Equal(t, "caught", v.Text)

	_, evalErr = evalFormula(t, wb, `IFNA(1/0,"caught")`)
	require.Error(t, evalErr)
	assert.Equal(t, ErrDiv0, evalErr.Kind())
}

func TestIserrorVsIserrVsIsna(t *testing.T) {
	wb := newTestWorkbook(t)

	v, evalErr := evalFormula(t, wb, "ISERROR(1/0)")
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)

	v, evalErr = evalFormula(t, wb, "ISERR(1/0)")
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)

	v, evalErr = evalFormula(t, wb, "ISERR(NA())")
	require.NoError(t, evalErr)
	assert.False(t, v.Bool)

	v, evalErr = evalFormula(t, wb, "ISNA(NA())")
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)
}

func TestTypeCheckPredicates(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, TextValue("hi")))

	v, evalErr := evalFormula(t, wb, "ISBLANK(B1)")
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)

	v, evalErr = evalFormula(t, wb, "ISTEXT(A1)")
	require.NoError(t, evalErr)
	assert.True(t, v.Bool)

	v, evalErr = evalFormula(t, wb, "ISNUMBER(A1)")
	require.NoError(t, evalErr)
	assert.False(t, v.Bool)
}

func TestChooseSelectsByIndex(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, `CHOOSE(2,"a","b","c")`)
	require.NoError(t, evalErr)
	assert.Equal(t, "b", v.Text)

	_, evalErr = evalFormula(t, wb, `CHOOSE(5,"a","b","c")`)
	require.Error(t, evalErr)
	assert.Equal(t, ErrValue, evalErr.Kind())
}
