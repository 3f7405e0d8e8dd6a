package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMathFunctions(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		expected string
	}{
		{"abs negative", "ABS(-5)", "5"},
		{"sqrt", "SQRT(9)", "3"},
		{"power integer exponent", "POWER(2,10)", "1024"},
		{"mod", "MOD(7,3)", "1"},
		{"round half up", "ROUND(2.5,0)", "3"},
		{"roundup", "ROUNDUP(2.1,0)", "3"},
		{"rounddown", "ROUNDDOWN(2.9,0)", "2"},
		{"floor", "FLOOR(7.8,2)", "6"},
		{"ceiling", "CEILING(7.2,2)", "8"},
		{"int truncates toward negative infinity", "INT(-1.5)", "-2"},
		{"trunc toward zero", "TRUNC(-1.5,0)", "-1"},
		{"sign of negative", "SIGN(-42)", "-1"},
		{"sumproduct", "SUMPRODUCT(A1:A2,B1:B2)", "11"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wb := newTestWorkbook(t)
			require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("1"))))
			require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, NumberValue(mustDecimal("2"))))
			require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 0}, NumberValue(mustDecimal("3"))))
			require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 1, Row: 1}, NumberValue(mustDecimal("4"))))

			v, evalErr := evalFormula(t, wb, c.source)
			require.NoError(t, evalErr)
			assert.True(t, v.Number.Equal(mustDecimal(c.expected)), "got %s, want %s", v.Number.String(), c.expected)
		})
	}
}

func TestMathFunctionErrors(t *testing.T) {
	wb := newTestWorkbook(t)

	_, evalErr := evalFormula(t, wb, "SQRT(-1)")
	require.Error(t, evalErr)
	var mismatch *TypeMismatch
	require.ErrorAs(t, evalErr, &mismatch)

	_, evalErr = evalFormula(t, wb, "MOD(1,0)")
	require.Error(t, evalErr)
	assert.Equal(t, ErrDiv0, evalErr.Kind())

	_, evalErr = evalFormula(t, wb, "FLOOR(1,0)")
	require.Error(t, evalErr)
	assert.Equal(t, ErrDiv0, evalErr.Kind())
}

func TestLogFunctionDefaultsToBase10(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, "LOG(100)")
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")))
}
