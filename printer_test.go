package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintAddsParensOnlyWhenPrecedenceRequires(t *testing.T) {
	// (1+2)*3 needs parens around the addition; 1+2*3 does not.
	assert.Equal(t, "(1+2)*3", Print(Mul(Add(Num("1"), Num("2")), Num("3"))))
	assert.Equal(t, "1+2*3", Print(Add(Num("1"), Mul(Num("2"), Num("3")))))
}

func TestPrintLeftAssociativeSubtractionNeedsRightParens(t *testing.T) {
	// 1-(2-3), as a tree, must reprint with parens around the right operand
	// or it would silently renormalize to the wrong value on reparse.
	assert.Equal(t, "1-(2-3)", Print(Sub(Num("1"), Sub(Num("2"), Num("3")))))
}

func TestPrintQuotesSheetNamesWithSpecialCharacters(t *testing.T) {
	assert.Equal(t, "Sheet2!A1", Print(SheetRefNumeric("Sheet2", ARef{Col: 0, Row: 0}, AnchorRelative)))
	assert.Equal(t, "'My Sheet'!A1", Print(SheetRefNumeric("My Sheet", ARef{Col: 0, Row: 0}, AnchorRelative)))
}

func TestPrintAnchoredReferences(t *testing.T) {
	assert.Equal(t, "$A$1", Print(RefStrict(ARef{Col: 0, Row: 0}, AnchorAbsolute, KindNumber)))
	assert.Equal(t, "A$1", Print(RefStrict(ARef{Col: 0, Row: 0}, AnchorAbsRow, KindNumber)))
	assert.Equal(t, "$A1", Print(RefStrict(ARef{Col: 0, Row: 0}, AnchorAbsCol, KindNumber)))
}

func TestPrintEscapesQuotesInStringLiterals(t *testing.T) {
	assert.Equal(t, `"say ""hi"""`, Print(Text(`say "hi"`)))
}

func TestPrintNotUsesKeywordForm(t *testing.T) {
	assert.Equal(t, "NOT TRUE", Print(&Not{Operand: Bool(true)}))
}

func TestPrintBooleanLiterals(t *testing.T) {
	assert.Equal(t, "TRUE", Print(Bool(true)))
	assert.Equal(t, "FALSE", Print(Bool(false)))
}
