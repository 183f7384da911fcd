package xl

type Row struct {
	Cells []*Cell

	rowNumber int // 1-based
}

// Number returns the 1-based row index.
func (r *Row) Number() int { return r.rowNumber }

// AppendTextCell appends a string cell at ref. The cell is written with an
// explicit string type marker.
func (r *Row) AppendTextCell(ref, v string) *Cell {
	return r.appendCell(ref, CellTypeString, v)
}

// AppendNumericCell appends a numeric cell at ref. Only the literal value is
// written, consumers apply the default numeric interpretation.
func (r *Row) AppendNumericCell(ref, v string) *Cell {
	return r.appendCell(ref, CellTypeNumber, v)
}

func (r *Row) appendCell(ref string, typ CellType, v string) *Cell {
	c := &Cell{
		coord: ref,
		typ:   typ,
		v:     v,
	}
	r.Cells = append(r.Cells, c)
	return c
}
