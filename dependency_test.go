package formula

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyGraphCalculationOrder(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	// C1 = A1+B1, B1 = A1*2, A1 = 5 (plain value)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("5"))))
	require.NoError(t, wb.SetFormula("Sheet1", ARef{Col: 1, Row: 0}, "A1*2"))
	require.NoError(t, wb.SetFormula("Sheet1", ARef{Col: 2, Row: 0}, "A1+B1"))

	b1, err := wb.Get("Sheet1!B1")
	require.NoError(t, err)
	assert.True(t, b1.Number.Equal(mustDecimal("10")))

	c1, err := wb.Get("Sheet1!C1")
	require.NoError(t, err)
	assert.True(t, c1.Number.Equal(mustDecimal("15")))
}

func TestDependencyGraphPropagatesEdits(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("1"))))
	require.NoError(t, wb.SetFormula("Sheet1", ARef{Col: 1, Row: 0}, "A1+1"))

	b1, err := wb.Get("Sheet1!B1")
	require.NoError(t, err)
	assert.True(t, b1.Number.Equal(mustDecimal("2")))

	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("41"))))
	b1, err = wb.Get("Sheet1!B1")
	require.NoError(t, err)
	assert.True(t, b1.Number.Equal(mustDecimal("42")))
}

func TestDependencyGraphDetectsCycle(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, wb.SetFormula("Sheet1", ARef{Col: 0, Row: 0}, "B1+1"))
	err = wb.SetFormula("Sheet1", ARef{Col: 1, Row: 0}, "A1+1")
	require.Error(t, err)

	var circ *CircularRef
	require.ErrorAs(t, err, &circ)
	assert.NotEmpty(t, circ.Path)
}

func TestDependencyGraphTransitiveClosures(t *testing.T) {
	g := NewDependencyGraph()
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	a := NodeKey{Sheet: "Sheet1", Addr: ARef{Col: 0, Row: 0}}
	b := NodeKey{Sheet: "Sheet1", Addr: ARef{Col: 1, Row: 0}}
	c := NodeKey{Sheet: "Sheet1", Addr: ARef{Col: 2, Row: 0}}

	bExpr, err := Parse("A1+1")
	require.NoError(t, err)
	cExpr, err := Parse("B1+1")
	require.NoError(t, err)

	g.SetFormula(wb, b, bExpr)
	g.SetFormula(wb, c, cExpr)

	assert.ElementsMatch(t, []NodeKey{b, c}, g.TransitiveDependents(a))
	assert.ElementsMatch(t, []NodeKey{a, b}, g.TransitivePrecedents(c))
}

func mustDecimal(s string) decimal.Decimal {
	d, ok := parseCanonicalNumber(s)
	if !ok {
		panic("bad decimal literal in test: " + s)
	}
	return d
}
