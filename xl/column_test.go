package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestColumnNameSingleLetters(t *testing.T) {
	for i := 0; i < 26; i++ {
		assert.Equal(t, string(rune('A'+i)), ColumnName(i))
	}
}

func TestColumnNameTwoLetters(t *testing.T) {
	tests := map[int]string{
		26:  "AA",
		27:  "AB",
		51:  "AZ",
		52:  "BA",
		701: "ZZ",
	}
	for index, want := range tests {
		assert.Equal(t, want, ColumnName(index), "index %d", index)
	}
}

func TestColumnNameMatchesSpreadsheetNamingUpToZZ(t *testing.T) {
	for i := 0; i < 702; i++ {
		want, err := excelize.ColumnNumberToName(i + 1)
		if assert.NoError(t, err) {
			assert.Equal(t, want, ColumnName(i), "index %d", i)
		}
	}
}

// Known deviation: past ZZ the codec keeps producing two characters
// instead of rolling over to AAA.
func TestColumnNameDeviatesPastZZ(t *testing.T) {
	assert.Equal(t, "[A", ColumnName(702))
	want, _ := excelize.ColumnNumberToName(703)
	assert.Equal(t, "AAA", want)
	assert.NotEqual(t, want, ColumnName(702))
}

func TestColumnNameNegativePanics(t *testing.T) {
	assert.Panics(t, func() { ColumnName(-1) })
}

func TestCellRef(t *testing.T) {
	assert.Equal(t, "B3", CellRef("B", 3))
	assert.Equal(t, "AA10", CellRef(ColumnName(26), 10))
	assert.Panics(t, func() { CellRef("A", 0) })
}
