// Package xlsread loads workbooks into data sets. Spreadsheet parsing is
// done by excelize; this package only shapes the parsed rows into tables.
package xlsread

// Config controls how a workbook is turned into a data set. The zero value
// reads every sheet with generated column names and string columns.
type Config struct {
	// UseColumnDataType runs a second pass over each table and narrows
	// columns whose values all parse as int32, decimal or bool.
	UseColumnDataType bool

	// FilterSheet reports whether a sheet is read. nil reads all sheets.
	FilterSheet func(name string, index int) bool

	// ConfigureTable returns the table configuration for a sheet. nil uses
	// DefaultTableConfig.
	ConfigureTable func(sheet string) TableConfig

	// RawCellValues skips number format rendering of cell values.
	RawCellValues bool

	// CSVEncoding names the fallback encoding of .csv inputs; a byte order
	// mark overrides it. Empty means UTF-8. Legacy code pages need
	// codepage.Register to have run.
	CSVEncoding string

	// CSVSeparator is the field separator of .csv inputs, ',' when zero.
	CSVSeparator rune
}

// TableConfig shapes a single table.
type TableConfig struct {
	// EmptyColumnNamePrefix prefixes generated column names, which end in
	// the zero-based column index.
	EmptyColumnNamePrefix string

	// UseHeaderRow takes column names from the first row.
	UseHeaderRow bool

	// FilterRow reports whether the row at the zero-based sheet index is
	// kept. The header row is not filtered.
	FilterRow func(index int, cells []string) bool

	// FilterColumn reports whether a column is kept. header is the first
	// row's cell in that column.
	FilterColumn func(index int, header string) bool
}

func DefaultTableConfig() TableConfig {
	return TableConfig{EmptyColumnNamePrefix: "Column"}
}

func (c *Config) tableConfig(sheet string) TableConfig {
	if c == nil || c.ConfigureTable == nil {
		return DefaultTableConfig()
	}
	tc := c.ConfigureTable(sheet)
	if tc.EmptyColumnNamePrefix == "" {
		tc.EmptyColumnNamePrefix = "Column"
	}
	return tc
}
