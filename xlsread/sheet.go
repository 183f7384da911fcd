package xlsread

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/adnsv/tabxl/table"
)

// buildTable shapes parsed sheet rows into a table. Empty rows between data
// rows are kept as all-missing rows, trailing empty rows are dropped.
func buildTable(name string, rows [][]string, tc TableConfig, typed bool) *table.Table {
	t := table.New(name)
	if len(rows) == 0 {
		return t
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	first := rows[0]
	var indices []int
	for i := 0; i < width; i++ {
		header := cellAt(first, i)
		if tc.FilterColumn != nil && !tc.FilterColumn(i, header) {
			continue
		}
		colName := ""
		if tc.UseHeaderRow {
			colName = header
		}
		if colName == "" {
			colName = tc.EmptyColumnNamePrefix + strconv.Itoa(i)
		}
		t.AddColumn(uniqueColumnName(t, colName), table.TypeString)
		indices = append(indices, i)
	}

	start := 0
	if tc.UseHeaderRow {
		start = 1
	}
	pending := 0
	for idx := start; idx < len(rows); idx++ {
		cells := rows[idx]
		if tc.FilterRow != nil && !tc.FilterRow(idx, cells) {
			continue
		}
		if isEmptyRow(cells) {
			pending++
			continue
		}
		for ; pending > 0; pending-- {
			t.Rows = append(t.Rows, make(table.Row, len(indices)))
		}
		row := make(table.Row, len(indices))
		for j, i := range indices {
			if s := cellAt(cells, i); s != "" {
				row[j] = s
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if typed {
		inferColumnTypes(t)
	}
	return t
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func uniqueColumnName(t *table.Table, name string) string {
	candidate := name
	for i := 1; t.ColumnIndex(candidate) >= 0; i++ {
		candidate = name + "_" + strconv.Itoa(i)
	}
	return candidate
}

type columnParser struct {
	typ   table.Type
	parse func(string) (any, bool)
}

var columnParsers = []columnParser{
	{table.TypeInt32, func(s string) (any, bool) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
			return nil, false
		}
		return int32(n), true
	}},
	{table.TypeDecimal, func(s string) (any, bool) {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		return d, err == nil
	}},
	{table.TypeBool, func(s string) (any, bool) {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		return b, err == nil
	}},
}

// inferColumnTypes narrows each string column to the first type every
// present value parses as. Columns without values stay strings.
func inferColumnTypes(t *table.Table) {
	for j := range t.Columns {
		for _, p := range columnParsers {
			converted, ok := convertColumn(t, j, p.parse)
			if !ok {
				continue
			}
			for i, v := range converted {
				t.Rows[i][j] = v
			}
			t.Columns[j].Type = p.typ
			break
		}
	}
}

func convertColumn(t *table.Table, j int, parse func(string) (any, bool)) ([]any, bool) {
	out := make([]any, len(t.Rows))
	seen := false
	for i, r := range t.Rows {
		s, ok := r[j].(string)
		if !ok {
			continue
		}
		v, ok := parse(s)
		if !ok {
			return nil, false
		}
		out[i] = v
		seen = true
	}
	return out, seen
}
