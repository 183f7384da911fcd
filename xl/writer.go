package xl

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/adnsv/srw/xml"
	"github.com/google/uuid"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

// ContentType is the MIME type of the produced workbook package.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	nsMain      = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelations = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsOffice    = "http://schemas.openxmlformats.org/officeDocument/2006/"

	relOffice  = nsRelations + "/"
	relPackage = "http://schemas.openxmlformats.org/package/2006/relationships"
	ctOffice   = "application/vnd.openxmlformats-officedocument."
)

// partKind is what the package manifest needs to know about a part.
type partKind struct {
	contentType string
	relType     string
}

var (
	kindWorkbook  = partKind{ctOffice + "spreadsheetml.sheet.main+xml", relOffice + "officeDocument"}
	kindWorksheet = partKind{ctOffice + "spreadsheetml.worksheet+xml", relOffice + "worksheet"}
	kindStyles    = partKind{ctOffice + "spreadsheetml.styles+xml", relOffice + "styles"}
	kindApp       = partKind{ctOffice + "extended-properties+xml", relOffice + "extended-properties"}
	kindCore      = partKind{
		"application/vnd.openxmlformats-package.core-properties+xml",
		relPackage + "/metadata/core-properties",
	}
)

// Relationship is a single entry of a .rels part.
type Relationship struct {
	Type   string
	Target string // relative to the source part's directory
}

// relScope hands out relationship ids for one source part. Ids restart at
// rId1 in every scope.
type relScope struct {
	name string // the .rels part
	base string // directory that targets are relative to
	rels map[string]Relationship
	last int
}

func newRelScope(name, base string) *relScope {
	return &relScope{name: name, base: base, rels: map[string]Relationship{}}
}

func (s *relScope) add(relType, target string) string {
	s.last++
	id := fmt.Sprintf("rId%d", s.last)
	s.rels[id] = Relationship{Type: relType, Target: target}
	return id
}

// Writer serializes a Workbook into package parts. A Writer is good for a
// single Write call.
type Writer struct {
	out Storage

	// Identifier and Created end up in the core properties part. Created
	// defaults to the time of the Write call.
	Identifier uuid.UUID
	Created    time.Time

	pkg  *relScope
	book *relScope

	defaults  map[string]string // extension -> content type
	overrides map[string]string // part name -> content type
}

func NewWriter(s Storage) *Writer {
	return &Writer{
		out:        s,
		Identifier: uuid.New(),
		pkg:        newRelScope("/_rels/.rels", "/"),
		book:       newRelScope("/xl/_rels/workbook.xml.rels", "/xl/"),
		defaults: map[string]string{
			"xml":  "application/xml",
			"rels": "application/vnd.openxmlformats-package.relationships+xml",
		},
		overrides: map[string]string{},
	}
}

// Write emits every part of wb. The first failing part aborts the write.
func (w *Writer) Write(wb *Workbook) error {
	if wb == nil || len(wb.Sheets) == 0 {
		return ErrMissingInput
	}
	if w.Created.IsZero() {
		w.Created = time.Now()
	}

	steps := []func() error{
		w.writeStyles,
		func() error { return w.writeWorkbook(wb) },
		w.writeCoreProperties,
		func() error { return w.writeAppProperties(wb.AppName) },
		func() error { return w.writeRels(w.book) },
		func() error { return w.writeRels(w.pkg) },
		w.writeContentTypes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// register lists the part in the manifest and relates it from scope.
func (w *Writer) register(scope *relScope, name string, kind partKind) string {
	w.overrides[name] = kind.contentType
	return scope.add(kind.relType, strings.TrimPrefix(name, scope.base))
}

// emit renders one XML part and passes it on to storage.
func (w *Writer) emit(name string, fill func(x *xml.Writer)) error {
	var bb bytes.Buffer
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()
	fill(x)
	return w.out.WriteBlob(name, bb.Bytes())
}

func (w *Writer) writeCoreProperties() error {
	const name = "/docProps/core.xml"
	w.register(w.pkg, name, kindCore)

	return w.emit(name, func(x *xml.Writer) {
		x.OTag("cp:coreProperties").
			Attr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties").
			Attr("xmlns:dc", "http://purl.org/dc/elements/1.1/").
			Attr("xmlns:dcterms", "http://purl.org/dc/terms/").
			Attr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

		x.OTag("+dc:identifier").String(w.Identifier.String()).CTag()
		x.OTag("+dcterms:created").Attr("xsi:type", "dcterms:W3CDTF")
		x.Write(w.Created.UTC().Format(time.RFC3339))
		x.CTag()

		x.CTag() // cp:coreProperties
	})
}

func (w *Writer) writeAppProperties(appName string) error {
	const name = "/docProps/app.xml"
	w.register(w.pkg, name, kindApp)

	return w.emit(name, func(x *xml.Writer) {
		x.OTag("Properties").
			Attr("xmlns", nsOffice+"extended-properties").
			Attr("xmlns:vt", nsOffice+"docPropsVTypes")
		if appName != "" {
			x.OTag("+Application").String(appName).CTag()
		}
		x.CTag()
	})
}

// writeStyles emits the placeholder stylesheet: one font, the two fills
// every consumer expects, an empty border and a single cell format. It is
// never referenced by cells but some readers reject a package without it.
func (w *Writer) writeStyles() error {
	const name = "/xl/styles.xml"
	w.register(w.book, name, kindStyles)

	return w.emit(name, func(x *xml.Writer) {
		x.OTag("styleSheet").Attr("xmlns", nsMain)

		x.OTag("+fonts").Attr("count", 1)
		x.OTag("+font")
		x.OTag("+sz").Attr("val", 11).CTag()
		x.OTag("+name").Attr("val", "Calibri").CTag()
		x.CTag() // font
		x.CTag() // fonts

		x.OTag("+fills").Attr("count", 2)
		for _, pattern := range []string{"none", "gray125"} {
			x.OTag("+fill")
			x.OTag("patternFill").Attr("patternType", pattern).CTag()
			x.CTag()
		}
		x.CTag() // fills

		x.OTag("+borders").Attr("count", 1)
		x.OTag("+border")
		x.OTag("+left").CTag()
		x.OTag("+right").CTag()
		x.OTag("+top").CTag()
		x.OTag("+bottom").CTag()
		x.OTag("+diagonal").CTag()
		x.CTag() // border
		x.CTag() // borders

		x.OTag("+cellStyleXfs").Attr("count", 1)
		x.OTag("+xf").Attr("numFmtId", 0).Attr("fontId", 0).Attr("fillId", 0).Attr("borderId", 0).CTag()
		x.CTag()
		x.OTag("+cellXfs").Attr("count", 1)
		x.OTag("+xf").Attr("numFmtId", 0).Attr("fontId", 0).Attr("fillId", 0).Attr("borderId", 0).Attr("xfId", 0).CTag()
		x.CTag()

		x.CTag() // styleSheet
	})
}

func (w *Writer) writeWorkbook(wb *Workbook) error {
	const name = "/xl/workbook.xml"
	w.register(w.pkg, name, kindWorkbook)

	// worksheets go out first so that the index below can carry their ids
	sheetRels := make([]string, len(wb.Sheets))
	for i, sh := range wb.Sheets {
		rid, err := w.writeSheet(sh)
		if err != nil {
			return fmt.Errorf("sheet %d %q: %w", sh.id, sh.Name, err)
		}
		sheetRels[i] = rid
	}

	return w.emit(name, func(x *xml.Writer) {
		x.OTag("workbook").Attr("xmlns", nsMain).Attr("xmlns:r", nsRelations)
		x.OTag("+sheets")
		for i, sh := range wb.Sheets {
			x.OTag("+sheet").Attr("name", sh.Name).Attr("sheetId", sh.id).Attr("r:id", sheetRels[i]).CTag()
		}
		x.CTag() // sheets
		x.CTag() // workbook
	})
}

// writeSheet emits one worksheet and returns its workbook relationship id.
// Parts are named by sheet id since sheet names may repeat.
func (w *Writer) writeSheet(sh *Sheet) (string, error) {
	name := fmt.Sprintf("/xl/worksheets/sheet%d.xml", sh.id)
	rid := w.register(w.book, name, kindWorksheet)

	return rid, w.emit(name, func(x *xml.Writer) {
		x.OTag("worksheet").Attr("xmlns", nsMain).Attr("xmlns:r", nsRelations)
		x.OTag("+sheetData")
		for _, row := range sh.Rows {
			x.OTag("+row").Attr("r", row.rowNumber)
			for _, c := range row.Cells {
				writeCell(x, c)
			}
			x.CTag() // row
		}
		x.CTag() // sheetData
		x.CTag() // worksheet
	})
}

// writeCell emits an inline value. Text cells are marked t="str", numeric
// cells carry no type and rely on the default numeric interpretation.
func writeCell(x *xml.Writer, c *Cell) {
	x.OTag("+c").Attr("r", c.coord)
	switch c.typ {
	case CellTypeString:
		x.Attr("t", "str")
		x.OTag("v").String(c.v).CTag()
	case CellTypeNumber:
		x.OTag("v").Write(c.v).CTag()
	}
	x.CTag()
}

func (w *Writer) writeRels(scope *relScope) error {
	return w.emit(scope.name, func(x *xml.Writer) {
		x.OTag("Relationships").Attr("xmlns", relPackage)
		enumerate(scope.rels, func(id string, rel Relationship) error {
			x.OTag("+Relationship").Attr("Id", id).Attr("Type", rel.Type).Attr("Target", rel.Target).CTag()
			return nil
		})
		x.CTag()
	})
}

func (w *Writer) writeContentTypes() error {
	return w.emit("/[Content_Types].xml", func(x *xml.Writer) {
		x.OTag("Types").Attr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")
		enumerate(w.defaults, func(ext, ct string) error {
			x.OTag("+Default").Attr("Extension", ext).Attr("ContentType", ct).CTag()
			return nil
		})
		enumerate(w.overrides, func(name, ct string) error {
			x.OTag("+Override").Attr("PartName", name).Attr("ContentType", ct).CTag()
			return nil
		})
		x.CTag()
	})
}

// enumerate visits m in key order so that output is reproducible.
func enumerate[M ~map[K]V, K constraints.Ordered, V any](m M, visit func(k K, v V) error) error {
	keys := maps.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		if err := visit(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}
