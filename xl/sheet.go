package xl

type Sheet struct {
	Name string
	Rows []*Row

	id            int // 1-based sheetId, assigned by the workbook
	nextRowNumber int // 1-based, incremented as we add rows
}

// ID returns the sheet id registered in the workbook sheet index.
func (s *Sheet) ID() int { return s.id }

// AddRow appends the next row. Rows are numbered in the order they are added.
func (s *Sheet) AddRow() *Row {
	r := &Row{
		rowNumber: s.nextRowNumber,
	}
	s.nextRowNumber++
	s.Rows = append(s.Rows, r)
	return r
}
