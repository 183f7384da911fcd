package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type jsonTable struct {
	Name    string            `json:"name"`
	Columns []Column          `json:"columns"`
	Rows    []json.RawMessage `json:"rows"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(struct {
		Name    string   `json:"name"`
		Columns []Column `json:"columns"`
		Rows    []Row    `json:"rows"`
	}{t.Name, t.Columns, rows})
}

// UnmarshalJSON decodes a table and normalizes every row value to the Go
// type of its column.
func (t *Table) UnmarshalJSON(data []byte) error {
	var jt jsonTable
	if err := json.Unmarshal(data, &jt); err != nil {
		return err
	}
	t.Name = jt.Name
	t.Columns = jt.Columns
	t.Rows = nil
	for i, raw := range jt.Rows {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var values []any
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("table %q row %d: %w", t.Name, i, err)
		}
		if len(values) != len(t.Columns) {
			return fmt.Errorf("table %q row %d: %w", t.Name, i, ErrRowWidth)
		}
		row := make(Row, len(values))
		for j, v := range values {
			nv, err := Normalize(v, t.Columns[j].Type)
			if err != nil {
				return fmt.Errorf("table %q row %d column %q: %w", t.Name, i, t.Columns[j].Name, err)
			}
			row[j] = nv
		}
		t.Rows = append(t.Rows, row)
	}
	return nil
}

func (ds *DataSet) MarshalJSON() ([]byte, error) {
	tables := ds.Tables
	if tables == nil {
		tables = []*Table{}
	}
	return json.Marshal(struct {
		Name   string   `json:"name,omitempty"`
		Tables []*Table `json:"tables"`
	}{ds.Name, tables})
}

func (ds *DataSet) UnmarshalJSON(data []byte) error {
	var v struct {
		Name   string   `json:"name"`
		Tables []*Table `json:"tables"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	ds.Name = v.Name
	ds.Tables = v.Tables
	return nil
}
