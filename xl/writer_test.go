package xl

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/adnsv/tabxl/table"
)

type xmlWorkbook struct {
	Sheets []struct {
		Name    string `xml:"name,attr"`
		SheetID int    `xml:"sheetId,attr"`
		RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type xmlRels struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlWorksheet struct {
	Rows []struct {
		R     int `xml:"r,attr"`
		Cells []struct {
			R string  `xml:"r,attr"`
			T string  `xml:"t,attr"`
			V *string `xml:"v"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

func writeParts(t *testing.T, ds *table.DataSet) MemStorage {
	t.Helper()
	wb, err := Build(ds)
	require.NoError(t, err)
	parts := MemStorage{}
	require.NoError(t, NewWriter(parts).Write(wb))
	return parts
}

func decodePart(t *testing.T, parts MemStorage, name string, v any) {
	t.Helper()
	blob, ok := parts[name]
	require.True(t, ok, "missing part %s", name)
	require.NoError(t, xml.Unmarshal(blob, v))
}

func TestWriterParts(t *testing.T) {
	parts := writeParts(t, table.NewDataSet("ds", peopleTable()))

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"xl/workbook.xml",
		"xl/_rels/workbook.xml.rels",
		"xl/styles.xml",
		"xl/worksheets/sheet1.xml",
	} {
		assert.Contains(t, parts, name)
	}

	var wb xmlWorkbook
	decodePart(t, parts, "xl/workbook.xml", &wb)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "T1", wb.Sheets[0].Name)
	assert.Equal(t, 1, wb.Sheets[0].SheetID)

	var rels xmlRels
	decodePart(t, parts, "xl/_rels/workbook.xml.rels", &rels)
	targets := map[string]string{}
	for _, r := range rels.Rels {
		targets[r.ID] = r.Target
	}
	assert.Equal(t, "worksheets/sheet1.xml", targets[wb.Sheets[0].RID])
	assert.Contains(t, targets, "rId1")
	assert.Equal(t, "styles.xml", targets["rId1"])
}

func TestWriterWorksheetCells(t *testing.T) {
	parts := writeParts(t, table.NewDataSet("ds", peopleTable()))

	var ws xmlWorksheet
	decodePart(t, parts, "xl/worksheets/sheet1.xml", &ws)
	require.Len(t, ws.Rows, 3)

	header := ws.Rows[0]
	assert.Equal(t, 1, header.R)
	require.Len(t, header.Cells, 2)
	assert.Equal(t, "A1", header.Cells[0].R)
	assert.Equal(t, "str", header.Cells[0].T)
	assert.Equal(t, "Name", strings.TrimSpace(*header.Cells[0].V))

	alice := ws.Rows[1]
	require.Len(t, alice.Cells, 2)
	assert.Equal(t, "B2", alice.Cells[1].R)
	assert.Empty(t, alice.Cells[1].T, "numeric cells carry no type marker")
	assert.Equal(t, "30", strings.TrimSpace(*alice.Cells[1].V))

	bob := ws.Rows[2]
	assert.Equal(t, 3, bob.R)
	require.Len(t, bob.Cells, 1)
	assert.Equal(t, "A3", bob.Cells[0].R)
}

func TestWriterThreeTablesWithCollidingNames(t *testing.T) {
	ds := table.NewDataSet("ds", table.New("Same"), table.New("Same"), table.New("Same"))
	parts := writeParts(t, ds)

	var wb xmlWorkbook
	decodePart(t, parts, "xl/workbook.xml", &wb)
	require.Len(t, wb.Sheets, 3)
	for i, sh := range wb.Sheets {
		assert.Equal(t, i+1, sh.SheetID)
		assert.Equal(t, "Same", sh.Name)
	}
	assert.Contains(t, parts, "xl/worksheets/sheet3.xml")
}

func TestWriteDataSetReadBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDataSet(&buf, table.NewDataSet("ds", peopleTable()), "tabxl"))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["xl/workbook.xml"])
	assert.True(t, names["[Content_Types].xml"])

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"T1"}, f.GetSheetList())
	rows, err := f.GetRows("T1", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Age"},
		{"Alice", "30"},
		{"Bob"},
	}, rows)

	b3, err := f.GetCellValue("T1", "B3")
	require.NoError(t, err)
	assert.Empty(t, b3)
}

func TestWriteDataSetControlCharsReadBack(t *testing.T) {
	tbl := table.New("T1", table.Column{Name: "Name", Type: table.TypeString})
	require.NoError(t, tbl.AddRow("bell\x07here"))
	require.NoError(t, tbl.AddRow("second"))

	var buf bytes.Buffer
	require.NoError(t, WriteDataSet(&buf, table.NewDataSet("ds", tbl), ""))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("T1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name"}, {"bellhere"}, {"second"}}, rows)
}

func TestWriterAppName(t *testing.T) {
	wb, err := Build(table.NewDataSet("ds", peopleTable()))
	require.NoError(t, err)
	wb.AppName = "tabxl"
	parts := MemStorage{}
	w := NewWriter(parts)
	require.NoError(t, w.Write(wb))

	assert.Contains(t, string(parts["docProps/app.xml"]), "tabxl")
	assert.Contains(t, string(parts["docProps/core.xml"]), w.Identifier.String())
}

func TestWriterCoreProperties(t *testing.T) {
	wb, err := Build(table.NewDataSet("ds", peopleTable()))
	require.NoError(t, err)
	parts := MemStorage{}
	w := NewWriter(parts)
	w.Created = time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	require.NoError(t, w.Write(wb))

	core := string(parts["docProps/core.xml"])
	assert.Contains(t, core, "2024-01-02T02:04:05Z")

	var rels xmlRels
	decodePart(t, parts, "_rels/.rels", &rels)
	targets := map[string]string{}
	for _, r := range rels.Rels {
		targets[r.Target] = r.ID
	}
	assert.Equal(t, map[string]string{
		"xl/workbook.xml":   "rId1",
		"docProps/core.xml": "rId2",
		"docProps/app.xml":  "rId3",
	}, targets)

	ct := string(parts["[Content_Types].xml"])
	assert.Contains(t, ct, `PartName="/xl/worksheets/sheet1.xml"`)
	assert.Contains(t, ct, `Extension="rels"`)
}

func TestWriterRejectsEmptyWorkbook(t *testing.T) {
	assert.ErrorIs(t, NewWriter(MemStorage{}).Write(NewWorkbook()), ErrMissingInput)
}

func TestDirStorage(t *testing.T) {
	dir := t.TempDir()
	wb, err := Build(table.NewDataSet("ds", peopleTable()))
	require.NoError(t, err)
	require.NoError(t, NewWriter(NewDirStorage(dir)).Write(wb))

	f, err := os.Open(filepath.Join(dir, "xl", "worksheets", "sheet1.xml"))
	require.NoError(t, err)
	defer f.Close()
	blob, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(blob), "Alice")
}
