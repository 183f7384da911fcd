package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v2"

	"github.com/adnsv/tabxl/xlsread"
)

// ReaderFile is the YAML form of the workbook reader configuration.
//
//	use_column_data_type: true
//	exclude_sheets: [Notes]
//	table:
//	  use_header_row: true
//	  exclude_columns: [Internal]
//	sheets:
//	  Raw:
//	    column_prefix: F
type ReaderFile struct {
	UseColumnDataType bool                 `yaml:"use_column_data_type"`
	RawCellValues     bool                 `yaml:"raw_cell_values"`
	IncludeSheets     []string             `yaml:"include_sheets"`
	ExcludeSheets     []string             `yaml:"exclude_sheets"`
	CSVEncoding       string               `yaml:"csv_encoding"`
	CSVSeparator      string               `yaml:"csv_separator" validate:"omitempty,len=1"`
	Table             TableFile            `yaml:"table"`
	Sheets            map[string]TableFile `yaml:"sheets" validate:"dive"`
}

// TableFile configures one table. Entries under sheets replace the default
// table section for the named sheet.
type TableFile struct {
	UseHeaderRow   bool     `yaml:"use_header_row"`
	ColumnPrefix   string   `yaml:"column_prefix"`
	IncludeColumns []string `yaml:"include_columns"`
	ExcludeColumns []string `yaml:"exclude_columns"`
	SkipRows       int      `yaml:"skip_rows" validate:"gte=0"`
}

// LoadReaderFile reads and validates a reader configuration file. Unknown
// keys are rejected.
func LoadReaderFile(path string) (*ReaderFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseReaderFile(data)
}

func ParseReaderFile(data []byte) (*ReaderFile, error) {
	var rf ReaderFile
	if err := yaml.UnmarshalStrict(data, &rf); err != nil {
		return nil, fmt.Errorf("reader config: %w", err)
	}
	if err := validate.Struct(&rf); err != nil {
		return nil, fmt.Errorf("reader config: %w", err)
	}
	return &rf, nil
}

// ReaderConfig converts the file into predicates understood by xlsread.
func (rf *ReaderFile) ReaderConfig() *xlsread.Config {
	cfg := &xlsread.Config{
		UseColumnDataType: rf.UseColumnDataType,
		RawCellValues:     rf.RawCellValues,
		CSVEncoding:       rf.CSVEncoding,
	}
	if rf.CSVSeparator != "" {
		cfg.CSVSeparator = []rune(rf.CSVSeparator)[0]
	}
	if len(rf.IncludeSheets) > 0 || len(rf.ExcludeSheets) > 0 {
		cfg.FilterSheet = func(name string, _ int) bool {
			return included(name, rf.IncludeSheets, rf.ExcludeSheets)
		}
	}
	cfg.ConfigureTable = func(sheet string) xlsread.TableConfig {
		if tf, ok := rf.Sheets[sheet]; ok {
			return tf.tableConfig()
		}
		return rf.Table.tableConfig()
	}
	return cfg
}

func (tf TableFile) tableConfig() xlsread.TableConfig {
	tc := xlsread.TableConfig{
		EmptyColumnNamePrefix: tf.ColumnPrefix,
		UseHeaderRow:          tf.UseHeaderRow,
	}
	if len(tf.IncludeColumns) > 0 || len(tf.ExcludeColumns) > 0 {
		tc.FilterColumn = func(_ int, header string) bool {
			return included(header, tf.IncludeColumns, tf.ExcludeColumns)
		}
	}
	if tf.SkipRows > 0 {
		first := tf.SkipRows
		if tf.UseHeaderRow {
			first++
		}
		tc.FilterRow = func(index int, _ []string) bool {
			return index >= first
		}
	}
	return tc
}

func included(name string, include, exclude []string) bool {
	if len(include) > 0 && !slices.Contains(include, name) {
		return false
	}
	return !slices.Contains(exclude, name)
}
