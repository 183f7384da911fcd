package xl

import (
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/adnsv/tabxl/table"
)

// ErrMissingInput is returned when there is no table to write.
var ErrMissingInput = errors.New("missing input: data set has no tables")

// BuildWorksheet fills sh with the header row and one row per table row.
//
// Numeric columns get a numeric cell only when the value parses as a number;
// otherwise the cell is left out. Text loses characters that XML cannot carry.
func BuildWorksheet(sh *Sheet, t *table.Table) {
	letters := make([]string, len(t.Columns))
	numeric := make([]bool, len(t.Columns))
	for i, col := range t.Columns {
		letters[i] = ColumnName(i)
		numeric[i] = col.Type.Class() == table.ClassNumeric
	}

	header := sh.AddRow()
	for i, col := range t.Columns {
		header.AppendTextCell(CellRef(letters[i], header.Number()), table.StripInvalidXMLChars(col.Name))
	}

	for _, values := range t.Rows {
		row := sh.AddRow()
		for i := range t.Columns {
			ref := CellRef(letters[i], row.Number())
			var v any
			if i < len(values) {
				v = values[i]
			}
			s := table.FormatValue(v)
			if !numeric[i] {
				row.AppendTextCell(ref, table.StripInvalidXMLChars(s))
				continue
			}
			if _, err := decimal.NewFromString(s); err == nil {
				row.AppendNumericCell(ref, s)
			}
		}
	}
}

// Build creates a workbook holding one worksheet per table, in table order.
// Every row must hold exactly one value per column.
func Build(ds *table.DataSet) (*Workbook, error) {
	if ds == nil || len(ds.Tables) == 0 {
		return nil, ErrMissingInput
	}
	wb := NewWorkbook()
	for i, t := range ds.Tables {
		if t == nil {
			return nil, fmt.Errorf("table %d: %w", i, ErrMissingInput)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		sh, err := wb.AddSheet(t.Name)
		if err != nil {
			return nil, fmt.Errorf("table %d %q: %w", i, t.Name, err)
		}
		BuildWorksheet(sh, t)
	}
	return wb, nil
}

// WriteDataSet writes ds as a complete .xlsx package to out.
func WriteDataSet(out io.Writer, ds *table.DataSet, appName string) error {
	wb, err := Build(ds)
	if err != nil {
		return err
	}
	wb.AppName = appName

	zs := NewZipStorage(out)
	if err := NewWriter(zs).Write(wb); err != nil {
		zs.Close()
		return err
	}
	return zs.Close()
}
