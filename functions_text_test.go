package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFunctions(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		expected string
	}{
		{"len counts runes", `LEN("hello")`, "5"},
		{"upper", `UPPER("abc")`, "ABC"},
		{"lower", `LOWER("ABC")`, "abc"},
		{"trim collapses interior whitespace", `TRIM("  a   b  ")`, "a b"},
		{"left default one char", `LEFT("hello")`, "h"},
		{"left n chars", `LEFT("hello",3)`, "hel"},
		{"right n chars", `RIGHT("hello",3)`, "llo"},
		{"mid", `MID("hello",2,3)`, "ell"},
		{"concatenate", `CONCATENATE("a","b","c")`, "abc"},
		{"substitute all", `SUBSTITUTE("ababab","a","X")`, "XbXbXb"},
		{"substitute nth", `SUBSTITUTE("ababab","a","X",2)`, "abXbab"},
		{"replace", `REPLACE("hello",2,3,"XYZ")`, "hXYZo"},
		{"rept", `REPT("ab",3)`, "ababab"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wb := newTestWorkbook(t)
			v, evalErr := evalFormula(t, wb, c.source)
			require.NoError(t, evalErr)
			if c.name == "len counts runes" {
				assert.True(t, v.Number.Equal(mustDecimal(c.expected)))
				return
			}
			assert.Equal(t, c.expected, v.Text)
		})
	}
}

func TestFindAndSearchCaseSensitivity(t *testing.T) {
	wb := newTestWorkbook(t)

	v, evalErr := evalFormula(t, wb, `FIND("B","aBc")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")))

	v, evalErr = evalFormula(t, wb, `FIND("b","aBc")`)
	require.NoError(t, evalErr)
	assert.Equal(t, KindError, v.Kind)

	v, evalErr = evalFormula(t, wb, `SEARCH("b","aBc")`)
	require.NoError(t, evalErr)
	assert.True(t, v.Number.Equal(mustDecimal("2")))
}

func TestExactIsCaseSensitive(t *testing.T) {
	wb := newTestWorkbook(t)
	v, evalErr := evalFormula(t, wb, `EXACT("abc","ABC")`)
	require.NoError(t, evalErr)
	assert.False(t, v.Bool)
}

func TestTextjoinIgnoresEmptyWhenRequested(t *testing.T) {
	wb := newTestWorkbook(t)
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 0}, TextValue("a")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 1}, TextValue("")))
	require.NoError(t, wb.SetValue("Sheet1", ARef{Col: 0, Row: 2}, TextValue("b")))

	v, evalErr := evalFormula(t, wb, `TEXTJOIN(",",TRUE,A1:A3)`)
	require.NoError(t, evalErr)
	assert.Equal(t, "a,b", v.Text)
}
