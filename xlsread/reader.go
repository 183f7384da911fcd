package xlsread

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/adnsv/tabxl/table"
	"github.com/adnsv/tabxl/xlsread/codepage"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ReadFile reads the workbook at path. Files ending in .csv are read as a
// single table named after the file.
func ReadFile(path string, cfg *Config) (*table.DataSet, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return ReadCSV(f, name, cfg)
	}
	return Read(f, cfg)
}

// Read parses a workbook from r. Parser errors are returned as is.
func Read(r io.Reader, cfg *Config) (ds *table.DataSet, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if cfg == nil {
		cfg = &Config{}
	}
	opts := excelize.Options{RawCellValue: cfg.RawCellValues}

	ds = &table.DataSet{}
	for i, name := range f.GetSheetList() {
		if cfg.FilterSheet != nil && !cfg.FilterSheet(name, i) {
			continue
		}
		rows, err := f.GetRows(name, opts)
		if err != nil {
			return nil, err
		}
		ds.Add(buildTable(name, rows, cfg.tableConfig(name), cfg.UseColumnDataType))
	}
	return ds, nil
}

// ReadCSV reads delimited text from r into a data set with one table.
func ReadCSV(r io.Reader, name string, cfg *Config) (*table.DataSet, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	var enc encoding.Encoding = unicode.UTF8
	if cfg.CSVEncoding != "" {
		e, err := codepage.Lookup(cfg.CSVEncoding)
		if err != nil {
			return nil, err
		}
		enc = e
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if cfg.CSVSeparator != 0 {
		cr.Comma = cfg.CSVSeparator
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	ds := &table.DataSet{}
	if cfg.FilterSheet == nil || cfg.FilterSheet(name, 0) {
		ds.Add(buildTable(name, rows, cfg.tableConfig(name), cfg.UseColumnDataType))
	}
	return ds, nil
}
