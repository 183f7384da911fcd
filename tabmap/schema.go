package tabmap

import (
	"fmt"
	"reflect"

	"github.com/adnsv/tabxl/table"
)

// TableSchemaProvider lays out the columns of one entity type and moves
// values between entities and rows.
type TableSchemaProvider interface {
	Columns(variant string) []table.Column
	// Row reads one entity. obj holds a value of the mapped type.
	Row(obj reflect.Value, variant string) (table.Row, error)
	// Assign writes row values into ptr, a pointer to a fresh entity.
	Assign(ptr reflect.Value, columns []table.Column, row table.Row, variant string) error
}

// FromEntityMetadata maps entities through externally supplied metadata.
type FromEntityMetadata struct {
	Meta EntityMetadata
}

func (s FromEntityMetadata) attributes() []Attribute {
	var out []Attribute
	for _, a := range s.Meta.Attributes() {
		if !a.IsIgnored {
			out = append(out, a)
		}
	}
	return out
}

func (s FromEntityMetadata) extended(variant string) []ExtendedAttribute {
	if variant == "" {
		return nil
	}
	return s.Meta.ExtendedAttributes(variant)
}

func (s FromEntityMetadata) Columns(variant string) []table.Column {
	var cols []table.Column
	for _, a := range s.attributes() {
		typ := table.TypeString
		if !a.IsStoredAsJSON && !a.IsEnumString && !a.IsMappingRelation {
			typ = ColumnType(a.Type)
		}
		cols = append(cols, table.Column{Name: a.Name, Type: typ})
	}
	for _, e := range s.extended(variant) {
		cols = append(cols, table.Column{Name: e.Name, Type: e.Mode.ColumnType()})
	}
	return cols
}

func (s FromEntityMetadata) Row(obj reflect.Value, variant string) (table.Row, error) {
	entity := obj.Interface()
	var row table.Row
	for _, a := range s.attributes() {
		v, ok := s.Meta.Value(entity, a.Name)
		if !ok {
			row = append(row, nil)
			continue
		}
		ev, err := encodeAttribute(a, v)
		if err != nil {
			return nil, err
		}
		row = append(row, ev)
	}

	ext := s.extended(variant)
	if len(ext) > 0 {
		bag := extendedBag(obj)
		for _, e := range ext {
			v, ok := bag[e.Name]
			if !ok {
				row = append(row, nil)
				continue
			}
			row = append(row, cleanValue(plainValue(reflect.ValueOf(v))))
		}
	}
	return row, nil
}

func (s FromEntityMetadata) Assign(ptr reflect.Value, columns []table.Column, row table.Row, variant string) error {
	standard := map[string]bool{}
	for _, a := range s.attributes() {
		standard[a.Name] = true
	}
	extended := map[string]bool{}
	for _, e := range s.extended(variant) {
		extended[e.Name] = true
	}

	entity := ptr.Interface()
	for i, col := range columns {
		var err error
		switch {
		case standard[col.Name]:
			err = s.Meta.SetValue(entity, col.Name, row[i])
		case extended[col.Name]:
			err = s.Meta.SetExtendedValue(entity, col.Name, row[i])
		}
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
	}
	return nil
}

func extendedBag(obj reflect.Value) map[string]any {
	if x, ok := obj.Interface().(Extensible); ok {
		return x.ExtendedProperties()
	}
	if obj.CanAddr() {
		if x, ok := obj.Addr().Interface().(Extensible); ok {
			return x.ExtendedProperties()
		}
	}
	return nil
}

// FromReflectionFallback maps the exported fields of a struct type with
// their native types. Schema variants do not apply.
type FromReflectionFallback struct {
	fields []reflect.StructField
}

func NewReflectionFallback(t reflect.Type) (*FromReflectionFallback, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot map %s: not a struct type", t)
	}
	s := &FromReflectionFallback{}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		s.fields = append(s.fields, f)
	}
	return s, nil
}

func (s *FromReflectionFallback) Columns(string) []table.Column {
	cols := make([]table.Column, len(s.fields))
	for i, f := range s.fields {
		cols[i] = table.Column{Name: f.Name, Type: ColumnType(f.Type)}
	}
	return cols
}

func (s *FromReflectionFallback) Row(obj reflect.Value, _ string) (table.Row, error) {
	obj = reflect.Indirect(obj)
	row := make(table.Row, len(s.fields))
	for i, f := range s.fields {
		fv, err := obj.FieldByIndexErr(f.Index)
		if err != nil {
			// nil embedded pointer
			continue
		}
		row[i] = cleanValue(plainValue(fv))
	}
	return row, nil
}

func (s *FromReflectionFallback) Assign(ptr reflect.Value, columns []table.Column, row table.Row, _ string) error {
	obj := ptr.Elem()
	for i, col := range columns {
		if table.IsMissing(row[i]) {
			continue
		}
		f, ok := s.field(col.Name)
		if !ok {
			continue
		}
		fv, err := obj.FieldByIndexErr(f.Index)
		if err != nil || !fv.CanSet() {
			continue
		}
		v, err := coerce(row[i], f.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
		fv.Set(v)
	}
	return nil
}

func (s *FromReflectionFallback) field(name string) (reflect.StructField, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}
