package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeAsBoolCoercesTextAndNumber(t *testing.T) {
	b, err := decodeAsBool(Cell{Value: TextValue("true")})
	assert.Nil(t, err)
	assert.True(t, b)

	b, err = decodeAsBool(Cell{Value: TextValue("FALSE")})
	assert.Nil(t, err)
	assert.False(t, b)

	b, err = decodeAsBool(Cell{Value: NumberValue(mustDecimal("5"))})
	assert.Nil(t, err)
	assert.True(t, b)

	b, err = decodeAsBool(Cell{Value: EmptyValue()})
	assert.Nil(t, err)
	assert.False(t, b)

	_, err = decodeAsBool(Cell{Value: TextValue("maybe")})
	assert.NotNil(t, err)
}

func TestDecodeNumericSkippableAIncludesTextAsZero(t *testing.T) {
	_, ok := decodeNumericSkippable(Cell{Value: TextValue("n/a")})
	assert.False(t, ok, "plain skippable decoder excludes text entirely")

	d, ok := decodeNumericSkippableA(Cell{Value: TextValue("n/a")})
	assert.True(t, ok, "the A-variant counts non-empty text as zero")
	assert.True(t, d.IsZero())

	d, ok = decodeNumericSkippableA(Cell{Value: BoolValue(true)})
	assert.True(t, ok)
	assert.True(t, d.Equal(mustDecimal("1")))

	_, ok = decodeNumericSkippableA(Cell{Value: EmptyValue()})
	assert.False(t, ok)
}

func TestDecodeNumberStrictRejectsNonNumeric(t *testing.T) {
	_, err := DecodeNumberStrict(Cell{Value: TextValue("5")})
	assert.NotNil(t, err)

	n, err := DecodeNumberStrict(Cell{Value: NumberValue(mustDecimal("5"))})
	assert.Nil(t, err)
	assert.True(t, n.Equal(mustDecimal("5")))
}

func TestDecodeAsIntRejectsNonIntegerNumbers(t *testing.T) {
	_, err := decodeAsInt(Cell{Value: NumberValue(mustDecimal("1.5"))})
	assert.NotNil(t, err)

	n, err := decodeAsInt(Cell{Value: NumberValue(mustDecimal("3"))})
	assert.Nil(t, err)
	assert.Equal(t, int64(3), n)

	n, err = decodeAsInt(Cell{Value: BoolValue(true)})
	assert.Nil(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCoerceToNumericDefaultsNonNumericToZero(t *testing.T) {
	assert.True(t, coerceToNumeric(Cell{Value: TextValue("abc")}).IsZero())
	assert.True(t, coerceToNumeric(Cell{Value: BoolValue(true)}).Equal(mustDecimal("1")))
}
