package xl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnsv/tabxl/table"
)

type cellSnapshot struct {
	Ref   string
	Type  CellType
	Value string
}

func snapshot(r *Row) []cellSnapshot {
	var out []cellSnapshot
	for _, c := range r.Cells {
		out = append(out, cellSnapshot{c.Ref(), c.Type(), c.Value()})
	}
	return out
}

func peopleTable() *table.Table {
	t := table.New("T1",
		table.Column{Name: "Name", Type: table.TypeString},
		table.Column{Name: "Age", Type: table.TypeInt32},
	)
	t.Rows = []table.Row{
		{"Alice", int32(30)},
		{"Bob", "n/a"},
	}
	return t
}

func TestRowAppendCells(t *testing.T) {
	sh := &Sheet{nextRowNumber: 1}
	r := sh.AddRow()
	r.AppendTextCell("A1", "x")
	r.AppendNumericCell("B1", "1.5")

	assert.Equal(t, 1, r.Number())
	assert.Equal(t, []cellSnapshot{
		{"A1", CellTypeString, "x"},
		{"B1", CellTypeNumber, "1.5"},
	}, snapshot(r))
	assert.Equal(t, 2, sh.AddRow().Number())
}

func TestBuildWorksheet(t *testing.T) {
	sh := &Sheet{Name: "T1", nextRowNumber: 1}
	BuildWorksheet(sh, peopleTable())

	require.Len(t, sh.Rows, 3)
	assert.Equal(t, []cellSnapshot{
		{"A1", CellTypeString, "Name"},
		{"B1", CellTypeString, "Age"},
	}, snapshot(sh.Rows[0]))
	assert.Equal(t, []cellSnapshot{
		{"A2", CellTypeString, "Alice"},
		{"B2", CellTypeNumber, "30"},
	}, snapshot(sh.Rows[1]))
	// unparsable numeric value: no B3 cell at all
	assert.Equal(t, []cellSnapshot{
		{"A3", CellTypeString, "Bob"},
	}, snapshot(sh.Rows[2]))
}

func TestBuildWorksheetColumnClasses(t *testing.T) {
	tbl := table.New("types",
		table.Column{Name: "dec", Type: table.TypeDecimal},
		table.Column{Name: "i64", Type: table.TypeInt64},
		table.Column{Name: "f64", Type: table.TypeFloat64},
		table.Column{Name: "missing", Type: table.TypeInt32},
		table.Column{Name: "text", Type: table.TypeString},
	)
	require.NoError(t, tbl.AddRow(decimal.RequireFromString("12.5"), int64(7), 2.5, nil, nil))

	sh := &Sheet{nextRowNumber: 1}
	BuildWorksheet(sh, tbl)

	require.Len(t, sh.Rows, 2)
	assert.Equal(t, []cellSnapshot{
		{"A2", CellTypeNumber, "12.5"},
		{"B2", CellTypeString, "7"},
		{"C2", CellTypeString, "2.5"},
		{"E2", CellTypeString, ""},
	}, snapshot(sh.Rows[1]))
}

func TestBuildWorksheetEmptyTableHasHeader(t *testing.T) {
	sh := &Sheet{nextRowNumber: 1}
	BuildWorksheet(sh, table.New("empty", table.Column{Name: "A", Type: table.TypeString}))

	require.Len(t, sh.Rows, 1)
	assert.Equal(t, []cellSnapshot{{"A1", CellTypeString, "A"}}, snapshot(sh.Rows[0]))
}

func TestBuildAssignsSheetIDs(t *testing.T) {
	ds := table.NewDataSet("ds", peopleTable(), peopleTable(), table.New("Other"))
	wb, err := Build(ds)
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 3)
	for i, sh := range wb.Sheets {
		assert.Equal(t, i+1, sh.ID())
	}
	assert.Equal(t, "T1", wb.Sheets[0].Name)
	assert.Equal(t, "T1", wb.Sheets[1].Name)
}

func TestBuildMissingInput(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = Build(&table.DataSet{})
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = Build(table.NewDataSet("ds"))
	assert.ErrorIs(t, err, ErrMissingInput)

	var buf bytes.Buffer
	assert.ErrorIs(t, WriteDataSet(&buf, nil, ""), ErrMissingInput)
	assert.Zero(t, buf.Len())
}

func TestBuildRejectsInvalidSheetName(t *testing.T) {
	for _, name := range []string{"", "a/b", "'quoted'", "x[1]", "bell\x07", strings.Repeat("n", 32)} {
		_, err := Build(table.NewDataSet("ds", table.New(name)))
		assert.ErrorIs(t, err, ErrInvalidSheetName, name)
	}

	_, err := Build(table.NewDataSet("ds", table.New(strings.Repeat("é", 31))))
	assert.NoError(t, err)
}

func TestBuildWorksheetStripsInvalidXMLChars(t *testing.T) {
	tbl := table.New("T1", table.Column{Name: "Na\x01me", Type: table.TypeString})
	require.NoError(t, tbl.AddRow("bell\x07here"))
	require.NoError(t, tbl.AddRow("tab\tkept"))

	sh := &Sheet{nextRowNumber: 1}
	BuildWorksheet(sh, tbl)

	require.Len(t, sh.Rows, 3)
	assert.Equal(t, []cellSnapshot{{"A1", CellTypeString, "Name"}}, snapshot(sh.Rows[0]))
	assert.Equal(t, []cellSnapshot{{"A2", CellTypeString, "bellhere"}}, snapshot(sh.Rows[1]))
	assert.Equal(t, []cellSnapshot{{"A3", CellTypeString, "tab\tkept"}}, snapshot(sh.Rows[2]))
}

func TestBuildRejectsRowWidthMismatch(t *testing.T) {
	wide := table.New("wide", table.Column{Name: "A", Type: table.TypeString})
	wide.Rows = []table.Row{{"a", "dropped", int32(3)}}
	_, err := Build(table.NewDataSet("ds", wide))
	assert.ErrorIs(t, err, table.ErrRowWidth)

	short := peopleTable()
	short.Rows = append(short.Rows, table.Row{"Carol"})
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteDataSet(&buf, table.NewDataSet("ds", short), ""), table.ErrRowWidth)
	assert.Zero(t, buf.Len())
}
