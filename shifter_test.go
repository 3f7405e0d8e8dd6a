package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftForDragMovesRelativeReferences(t *testing.T) {
	expr, err := Parse("A1+$B$2")
	require.NoError(t, err)

	shifted := ShiftForDrag(expr, 1, 1)
	// A1 (relative) moves to B2; $B$2 (absolute both axes) stays put.
	assert.Equal(t, "B2+$B$2", Print(shifted))
}

func TestShiftForDragRespectsPartialAnchors(t *testing.T) {
	expr, err := Parse("A$1")
	require.NoError(t, err)

	shifted := ShiftForDrag(expr, 5, 5)
	// column is relative (moves), row is anchored (stays).
	assert.Equal(t, "F$1", Print(shifted))
}

func TestShiftForDragMovesRangeEndpoints(t *testing.T) {
	expr, err := Parse("SUM(A1:A10)")
	require.NoError(t, err)

	shifted := ShiftForDrag(expr, 0, 2)
	assert.Equal(t, "SUM(C1:C10)", Print(shifted))
}

func TestShiftForEditInsertColumnsPushesReferences(t *testing.T) {
	expr, err := Parse("C1+1")
	require.NoError(t, err)

	op := ShiftOp{Kind: ShiftInsertCols, Sheet: "Sheet1", At: 1, Count: 2}
	shifted := ShiftForEdit(expr, "Sheet1", op)
	assert.Equal(t, "E1+1", Print(shifted))
}

func TestShiftForEditDeleteColumnsClampsDanglingReferences(t *testing.T) {
	expr, err := Parse("B1+1")
	require.NoError(t, err)

	// delete columns [0,2) -- B1 (col 1) falls inside the deleted span and
	// clamps to the deletion point rather than raising an error.
	op := ShiftOp{Kind: ShiftDeleteCols, Sheet: "Sheet1", At: 0, Count: 2}
	shifted := ShiftForEdit(expr, "Sheet1", op)
	assert.Equal(t, "A1+1", Print(shifted))
}

func TestShiftForEditIgnoresOtherSheets(t *testing.T) {
	expr, err := Parse("Sheet2!A1+1")
	require.NoError(t, err)

	op := ShiftOp{Kind: ShiftInsertCols, Sheet: "Sheet1", At: 0, Count: 5}
	shifted := ShiftForEdit(expr, "Sheet1", op)
	assert.Equal(t, "Sheet2!A1+1", Print(shifted))
}
