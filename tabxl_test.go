package tabxl

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/adnsv/tabxl/table"
	"github.com/adnsv/tabxl/tabmap"
	"github.com/adnsv/tabxl/xlsread"
)

type employee struct {
	Name   string
	Age    int32
	Salary decimal.Decimal
	Active bool
}

func employees() []employee {
	return []employee{
		{Name: "Alice", Age: 30, Salary: decimal.RequireFromString("1234.5"), Active: true},
		{Name: "Bob", Age: 41, Salary: decimal.RequireFromString("900"), Active: false},
	}
}

func typedHeaders() *xlsread.Config {
	return &xlsread.Config{
		UseColumnDataType: true,
		RawCellValues:     true,
		ConfigureTable: func(string) xlsread.TableConfig {
			return xlsread.TableConfig{UseHeaderRow: true}
		},
	}
}

func saveTemp(t *testing.T, r io.Reader, name string) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestWriteWorkbookMissingInput(t *testing.T) {
	_, err := WriteWorkbook(nil)
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = WriteWorkbook(table.NewDataSet("empty"))
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestWriteWorkbookPositionedAtStart(t *testing.T) {
	tbl := table.New("T1", table.Column{Name: "Name", Type: table.TypeString})
	require.NoError(t, tbl.AddRow("Alice"))

	r, err := WriteWorkbook(table.NewDataSet("", tbl))
	require.NoError(t, err)
	assert.Equal(t, r.Size(), int64(r.Len()))

	head := make([]byte, 2)
	_, err = io.ReadFull(r, head)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(head))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType)
}

func TestWriteWorkbookSheetsInOrder(t *testing.T) {
	ds := table.NewDataSet("",
		table.New("Same", table.Column{Name: "a", Type: table.TypeString}),
		table.New("Same", table.Column{Name: "b", Type: table.TypeString}),
		table.New("Other", table.Column{Name: "c", Type: table.TypeString}),
	)
	r, err := WriteWorkbook(ds)
	require.NoError(t, err)

	f, err := excelize.OpenReader(r)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 3)
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tbl := table.New("T1", table.Column{Name: "Name", Type: table.TypeString})
	_, err := WriteWorkbookContext(ctx, table.NewDataSet("", tbl))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = ReadFileContext(ctx, "whatever.xlsx", nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = ExportObjectsContext(ctx, tabmap.New(nil), employees(), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteWorkbookContextLogs(t *testing.T) {
	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	tbl := table.New("T1", table.Column{Name: "Name", Type: table.TypeString})
	r, err := WriteWorkbookContext(ctx, table.NewDataSet("", tbl))
	require.NoError(t, err)
	assert.NotZero(t, r.Len())
	assert.Contains(t, logs.String(), `"message":"workbook written"`)
	assert.Contains(t, logs.String(), `"tables":1`)
}

func TestObjectsRoundTrip(t *testing.T) {
	m := tabmap.New(nil)
	r, err := ExportObjects(m, employees(), "")
	require.NoError(t, err)
	path := saveTemp(t, r, "employees.xlsx")

	got, err := ImportObjects[employee](path, m, typedHeaders(), "")
	require.NoError(t, err)
	assert.Equal(t, employees(), got)

	ctx := zerolog.New(io.Discard).WithContext(context.Background())
	ds, err := ReadFileContext(ctx, path, typedHeaders())
	require.NoError(t, err)
	require.Len(t, ds.Tables, 1)
	assert.Equal(t, "employee", ds.Tables[0].Name)
}

func TestImportObjectsFromStrings(t *testing.T) {
	m := tabmap.New(nil)
	r, err := ExportObjects(m, employees(), "")
	require.NoError(t, err)
	path := saveTemp(t, r, "employees.xlsx")

	cfg := typedHeaders()
	cfg.UseColumnDataType = false
	got, err := ImportObjects[*employee](path, m, cfg, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int32(41), got[1].Age)
	assert.True(t, got[0].Active)
	assert.Equal(t, "1234.5", got[0].Salary.String())
}

func TestExportStripsControlCharacters(t *testing.T) {
	type note struct{ Text string }
	r, err := ExportObjects(tabmap.New(nil), []note{{Text: "a\x07b\x1Bc"}}, "")
	require.NoError(t, err)

	ds, err := Read(r, typedHeaders())
	require.NoError(t, err)
	require.Len(t, ds.Tables, 1)
	assert.Equal(t, []table.Row{{"abc"}}, ds.Tables[0].Rows)
}

func TestImportObjectsMissingFile(t *testing.T) {
	_, err := ImportObjects[employee](filepath.Join(t.TempDir(), "nope.xlsx"), tabmap.New(nil), nil, "")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
