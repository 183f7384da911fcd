// Package tabxl exports tabular data and object collections as .xlsx
// workbooks and imports workbooks back into tables and objects.
//
// The heavy lifting lives in the sub-packages: table holds the data model,
// xl writes the package, tabmap converts objects and xlsread loads files.
package tabxl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/adnsv/tabxl/table"
	"github.com/adnsv/tabxl/tabmap"
	"github.com/adnsv/tabxl/xl"
	"github.com/adnsv/tabxl/xlsread"
)

// ContentType is the MIME type of the workbooks produced by WriteWorkbook.
const ContentType = xl.ContentType

// AppName is recorded as the producing application in written workbooks.
const AppName = "tabxl"

// ErrMissingInput is returned when there is nothing to export.
var ErrMissingInput = xl.ErrMissingInput

// ErrFileNotFound is returned when an import path does not exist.
var ErrFileNotFound = xlsread.ErrFileNotFound

// WriteWorkbook writes ds as a complete workbook, one worksheet per table.
// The returned reader is positioned at the start of the document.
func WriteWorkbook(ds *table.DataSet) (*bytes.Reader, error) {
	var bb bytes.Buffer
	if err := xl.WriteDataSet(&bb, ds, AppName); err != nil {
		return nil, err
	}
	return bytes.NewReader(bb.Bytes()), nil
}

// WriteWorkbookContext is WriteWorkbook that gives up early when ctx is
// already done. Once writing has started it runs to completion.
func WriteWorkbookContext(ctx context.Context, ds *table.DataSet) (*bytes.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := WriteWorkbook(ds)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().
		Int("tables", len(ds.Tables)).
		Int64("bytes", r.Size()).
		Msg("workbook written")
	return r, nil
}

// ExportObjects converts objects to a single table and writes it as a
// workbook. variant selects the extended property schema; empty means none.
func ExportObjects[T any](m *tabmap.Mapper, objects []T, variant string) (*bytes.Reader, error) {
	t, err := tabmap.ToTable(m, objects, variant)
	if err != nil {
		return nil, err
	}
	return WriteWorkbook(table.NewDataSet(t.Name, t))
}

// ExportObjectsContext is the context aware variant of ExportObjects.
func ExportObjectsContext[T any](ctx context.Context, m *tabmap.Mapper, objects []T, variant string) (*bytes.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := tabmap.ToTable(m, objects, variant)
	if err != nil {
		return nil, err
	}
	return WriteWorkbookContext(ctx, table.NewDataSet(t.Name, t))
}

// ReadFile loads the workbook at path. cfg may be nil.
func ReadFile(path string, cfg *xlsread.Config) (*table.DataSet, error) {
	return xlsread.ReadFile(path, cfg)
}

// ReadFileContext is ReadFile that gives up early when ctx is already done.
func ReadFileContext(ctx context.Context, path string, cfg *xlsread.Config) (*table.DataSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := xlsread.ReadFile(path, cfg)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("tables", len(ds.Tables)).
		Msg("workbook read")
	return ds, nil
}

// Read loads a workbook from r. cfg may be nil.
func Read(r io.Reader, cfg *xlsread.Config) (*table.DataSet, error) {
	return xlsread.Read(r, cfg)
}

// ImportObjects loads the workbook at path and converts one of its tables
// to objects: the table named after T when there is one, else the first.
func ImportObjects[T any](path string, m *tabmap.Mapper, cfg *xlsread.Config, variant string) ([]T, error) {
	ds, err := xlsread.ReadFile(path, cfg)
	if err != nil {
		return nil, err
	}
	t, err := pickTable[T](ds)
	if err != nil {
		return nil, err
	}
	return tabmap.ToObjects[T](m, t, variant)
}

func pickTable[T any](ds *table.DataSet) (*table.Table, error) {
	if len(ds.Tables) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMissingInput)
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if t, ok := ds.Table(typ.Name()); ok {
		return t, nil
	}
	return ds.Tables[0], nil
}
