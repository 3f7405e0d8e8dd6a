package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"number", "1"},
		{"decimal", "3.25"},
		{"addition", "1+2"},
		{"precedence", "1+2*3"},
		{"parenthesized", "(1+2)*3"},
		{"reference", "A1"},
		{"anchored reference", "$A$1"},
		{"partial anchor", "A$1"},
		{"range", "A1:B10"},
		{"sheet reference", "Sheet2!A1"},
		{"quoted sheet reference", "'My Sheet'!A1"},
		{"function call", "SUM(A1,A2,B1:B5)"},
		{"nested call", "IF(A1>0,1,0)"},
		{"and call", "AND(A1,A2,TRUE)"},
		{"string literal", "\"hello\""},
		{"escaped string", "\"say \"\"hi\"\"\""},
		{"comparison", "A1=B1"},
		{"not equal", "A1<>B1"},
		{"text concat", "CONCATENATE(A1,\"-\",B1)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			expr, err := Parse(c.source)
			require.NoError(t, err)

			printed := Print(expr)
			reparsed, err := Parse(printed)
			require.NoError(t, err, "reparsing printed form %q", printed)

			assert.Equal(t, printed, Print(reparsed), "round trip did not stabilize")
		})
	}
}

func TestParseUnaryMinusDesugars(t *testing.T) {
	expr, err := Parse("-A1")
	require.NoError(t, err)

	arith, ok := expr.(*Arith)
	require.True(t, ok, "expected -A1 to desugar to an Arith node, got %T", expr)
	assert.Equal(t, ArithSub, arith.Op)

	lit, ok := arith.Left.(*Lit)
	require.True(t, ok)
	assert.True(t, lit.Value.Number.IsZero())

	assert.Equal(t, "0-A1", Print(expr))
}

func TestParseLeadingEquals(t *testing.T) {
	withEq, err := Parse("=1+2")
	require.NoError(t, err)
	withoutEq, err := Parse("1+2")
	require.NoError(t, err)
	assert.Equal(t, Print(withoutEq), Print(withEq))
}

func TestParseErrors(t *testing.T) {
	t.Run("unknown function", func(t *testing.T) {
		_, err := Parse("NOPE(1)")
		require.Error(t, err)
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, err := Parse("ABS(1,2)")
		require.Error(t, err)
	})

	t.Run("unclosed paren", func(t *testing.T) {
		_, err := Parse("(1+2")
		require.Error(t, err)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		_, err := Parse("1+2)")
		require.Error(t, err)
	})

	t.Run("invalid column", func(t *testing.T) {
		_, err := Parse("$1A")
		require.Error(t, err)
	})
}

func TestParseResolvesPolyRefs(t *testing.T) {
	expr, err := Parse("A1+B2")
	require.NoError(t, err)
	assert.False(t, hasUnresolvedPoly(expr), "Parse must resolve every PolyRef before returning")
}

func TestParseBooleanLiteralsCaseInsensitive(t *testing.T) {
	expr, err := Parse("true")
	require.NoError(t, err)
	lit, ok := expr.(*Lit)
	require.True(t, ok)
	assert.Equal(t, KindBool, lit.Value.Kind)
	assert.True(t, lit.Value.Bool)
}
