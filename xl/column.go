package xl

import "strconv"

// ColumnName converts a zero-based column index into its column letters.
//
// Indices 0..25 map to A..Z and larger indices always produce two letters.
// This agrees with regular spreadsheet naming up to index 701 (ZZ) only;
// from 702 on the first letter runs past 'Z' instead of rolling over to a
// three letter name.
func ColumnName(index int) string {
	if index < 0 {
		panic("invalid column index")
	}
	if index < 26 {
		return string(rune('A' + index))
	}
	return string([]rune{rune('A' + index/26 - 1), rune('A' + index%26)})
}

// CellRef returns the A1-style reference for a column name and 1-based row.
func CellRef(column string, row int) string {
	if row < 1 {
		panic("invalid row number")
	}
	return column + strconv.Itoa(row)
}
