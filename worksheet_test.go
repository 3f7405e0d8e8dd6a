package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorksheetSetAndGetRoundTrips(t *testing.T) {
	ws := NewWorksheet("Sheet1", NewStringTable())

	ws.SetValue(ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("42")))
	got := ws.Get(ARef{Col: 0, Row: 0})
	assert.True(t, got.Value.Number.Equal(mustDecimal("42")))

	empty := ws.Get(ARef{Col: 10, Row: 10})
	assert.Equal(t, KindEmpty, empty.Value.Kind)
}

func TestWorksheetCrossesChunkBoundaries(t *testing.T) {
	ws := NewWorksheet("Sheet1", NewStringTable())

	// 256 is the chunk edge; writes on both sides of it must land correctly.
	ws.SetValue(ARef{Col: 255, Row: 255}, TextValue("last-in-chunk"))
	ws.SetValue(ARef{Col: 256, Row: 256}, TextValue("first-of-next-chunk"))

	assert.Equal(t, "last-in-chunk", ws.Get(ARef{Col: 255, Row: 255}).Value.Text)
	assert.Equal(t, "first-of-next-chunk", ws.Get(ARef{Col: 256, Row: 256}).Value.Text)
}

func TestWorksheetUsedRangeGrowsWithWrites(t *testing.T) {
	ws := NewWorksheet("Sheet1", NewStringTable())
	ws.SetValue(ARef{Col: 2, Row: 2}, NumberValue(mustDecimal("1")))
	ws.SetValue(ARef{Col: 5, Row: 1}, NumberValue(mustDecimal("2")))

	r := ws.UsedRange()
	assert.Equal(t, Column(2), r.Start.Col)
	assert.Equal(t, Row(1), r.Start.Row)
	assert.Equal(t, Column(5), r.End.Col)
	assert.Equal(t, Row(2), r.End.Row)
}

func TestWorksheetClearRemovesValue(t *testing.T) {
	ws := NewWorksheet("Sheet1", NewStringTable())
	ws.SetValue(ARef{Col: 0, Row: 0}, NumberValue(mustDecimal("7")))
	require.Equal(t, 1, ws.NonEmptyCount())

	ws.Clear(ARef{Col: 0, Row: 0})
	assert.Equal(t, 0, ws.NonEmptyCount())
	assert.Equal(t, KindEmpty, ws.Get(ARef{Col: 0, Row: 0}).Value.Kind)
}
