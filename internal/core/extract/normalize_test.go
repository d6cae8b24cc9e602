package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "TOTAL A PAGAR R$ 10,00", NormalizeSpaces("  TOTAL \t A   PAGAR\tR$  10,00 "))
	assert.Equal(t, "A B\nC D", NormalizeSpaces("A   B\nC \t D"), "newlines are kept")
	assert.Equal(t, "", NormalizeSpaces(""))
}

func TestSplitNonEmptyLines(t *testing.T) {
	got := SplitNonEmptyLines("\n  first  \r\n\n\tsecond\fthird\n   \n")
	assert.Equal(t, []string{"first", "second", "third"}, got)
	assert.Empty(t, SplitNonEmptyLines(""))
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("\nA   B\n  C  ")
	assert.Equal(t, "\nA   B\n  C  ", doc.Raw)
	assert.Equal(t, "A B\n C", doc.Blob)
	assert.Equal(t, []string{"A   B", "C"}, doc.Lines)
}
