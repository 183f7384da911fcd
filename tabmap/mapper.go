package tabmap

import (
	"fmt"
	"reflect"

	"github.com/adnsv/tabxl/table"
)

// Mapper converts between object collections and tables.
type Mapper struct {
	provider MetadataProvider
}

// New returns a mapper consulting p for entity metadata. A nil provider
// maps every type through its exported fields.
func New(p MetadataProvider) *Mapper {
	return &Mapper{provider: p}
}

// SchemaFor selects the schema strategy for t. Pointer types resolve to
// their element type.
func (m *Mapper) SchemaFor(t reflect.Type) (TableSchemaProvider, error) {
	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if m != nil && m.provider != nil {
		if meta, ok := m.provider.Metadata(st); ok {
			return FromEntityMetadata{Meta: meta}, nil
		}
	}
	return NewReflectionFallback(st)
}

// ToTable converts objects into a table named after T. variant selects the
// extended attribute schema; leave it empty for none.
func ToTable[T any](m *Mapper, objects []T, variant string) (*table.Table, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	schema, err := m.SchemaFor(t)
	if err != nil {
		return nil, err
	}

	tbl := table.New(typeName(t), schema.Columns(variant)...)
	values := reflect.ValueOf(objects)
	for i := 0; i < values.Len(); i++ {
		obj := values.Index(i)
		if obj.Kind() == reflect.Pointer && obj.IsNil() {
			return nil, fmt.Errorf("object %d is nil", i)
		}
		row, err := schema.Row(obj, variant)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if err := tbl.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// ToObjects materializes one T per table row, in row order.
func ToObjects[T any](m *Mapper, tbl *table.Table, variant string) ([]T, error) {
	if tbl == nil {
		return nil, nil
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	schema, err := m.SchemaFor(t)
	if err != nil {
		return nil, err
	}

	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot materialize %s", t)
	}

	out := make([]T, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Columns) {
			return nil, fmt.Errorf("row %d: %w", i, table.ErrRowWidth)
		}
		ptr := reflect.New(st)
		if err := schema.Assign(ptr, tbl.Columns, row, variant); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		var obj T
		if t.Kind() == reflect.Pointer {
			obj = ptr.Interface().(T)
		} else {
			obj = ptr.Elem().Interface().(T)
		}
		out = append(out, obj)
	}
	return out, nil
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "Table"
	}
	return t.Name()
}
