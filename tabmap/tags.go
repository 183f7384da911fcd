package tabmap

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/adnsv/tabxl/table"
)

// ExtendedSetter is implemented by entities that accept extended values.
type ExtendedSetter interface {
	SetExtendedProperty(name string, v any)
}

// TagProvider is a MetadataProvider for struct types registered with it.
// Attributes are read from `tab` field tags:
//
//	Name  string   `tab:"name"`
//	Kind  Kind     `tab:",enum"`
//	Meta  Meta     `tab:",json"`
//	Tags  []string `tab:",relation"`
//	Notes *string  `tab:",omitnull"`
//	Extra Bag      `tab:"-"`
//
// Untagged exported fields are attributes named after the field.
type TagProvider struct {
	mu    sync.RWMutex
	types map[reflect.Type]*tagMetadata
}

func NewTagProvider() *TagProvider {
	return &TagProvider{types: map[reflect.Type]*tagMetadata{}}
}

// Register adds the struct type of sample. extended maps schema variant ids
// to their extended attributes.
func (p *TagProvider) Register(sample any, extended map[string][]ExtendedAttribute) error {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("cannot register %T: not a struct type", sample)
	}

	md := &tagMetadata{
		index:    map[string]int{},
		extended: extended,
	}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		a := parseTag(f)
		md.index[a.Name] = len(md.attrs)
		md.attrs = append(md.attrs, a)
		md.fields = append(md.fields, f)
	}

	p.mu.Lock()
	p.types[t] = md
	p.mu.Unlock()
	return nil
}

func (p *TagProvider) Metadata(t reflect.Type) (EntityMetadata, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	md, ok := p.types[t]
	return md, ok
}

func parseTag(f reflect.StructField) Attribute {
	a := Attribute{Name: f.Name, Type: f.Type}
	tag, ok := f.Tag.Lookup("tab")
	if !ok {
		return a
	}
	if tag == "-" {
		a.IsIgnored = true
		return a
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name != "" {
		a.Name = name
	}
	for _, o := range strings.Split(opts, ",") {
		switch o {
		case "json":
			a.IsStoredAsJSON = true
		case "enum":
			a.IsEnumString = true
		case "relation":
			a.IsMappingRelation = true
		case "ignore":
			a.IsIgnored = true
		case "omitnull":
			a.IsIgnoredIfNull = true
		}
	}
	return a
}

type tagMetadata struct {
	attrs    []Attribute
	fields   []reflect.StructField
	index    map[string]int
	extended map[string][]ExtendedAttribute
}

func (md *tagMetadata) Attributes() []Attribute {
	return md.attrs
}

func (md *tagMetadata) ExtendedAttributes(variant string) []ExtendedAttribute {
	return md.extended[variant]
}

func (md *tagMetadata) Value(obj any, name string) (any, bool) {
	i, ok := md.index[name]
	if !ok {
		return nil, false
	}
	rv := reflect.Indirect(reflect.ValueOf(obj))
	if !rv.IsValid() {
		return nil, false
	}
	fv, err := rv.FieldByIndexErr(md.fields[i].Index)
	if err != nil {
		return nil, false
	}
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if fv.IsNil() {
			return nil, false
		}
	}
	return fv.Interface(), true
}

func (md *tagMetadata) SetValue(obj any, name string, v any) error {
	i, ok := md.index[name]
	if !ok {
		return fmt.Errorf("unknown attribute %q", name)
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("set %s: need a non-nil pointer, got %T", name, obj)
	}
	fv, err := rv.Elem().FieldByIndexErr(md.fields[i].Index)
	if err != nil {
		return err
	}
	if table.IsMissing(v) {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	a := md.attrs[i]
	s, isString := v.(string)
	switch {
	case a.IsStoredAsJSON && isString:
		return json.Unmarshal([]byte(s), fv.Addr().Interface())
	case a.IsMappingRelation && isString:
		return decodeRelation(s, fv)
	}
	cv, err := coerce(v, fv.Type())
	if err != nil {
		return err
	}
	fv.Set(cv)
	return nil
}

func (md *tagMetadata) SetExtendedValue(obj any, name string, v any) error {
	x, ok := obj.(ExtendedSetter)
	if !ok {
		return fmt.Errorf("%T does not accept extended attributes", obj)
	}
	x.SetExtendedProperty(name, v)
	return nil
}

// decodeRelation reverses the comma joined rendering of lists and sets and
// falls back to JSON for anything else.
func decodeRelation(s string, fv reflect.Value) error {
	t := fv.Type()
	switch {
	case t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8:
		out := reflect.MakeSlice(t, 0, 0)
		if s != "" {
			for _, part := range strings.Split(s, ",") {
				ev, err := coerce(part, t.Elem())
				if err != nil {
					return err
				}
				out = reflect.Append(out, ev)
			}
		}
		fv.Set(out)
		return nil
	case t.Kind() == reflect.Map && isSetValue(t.Elem()):
		out := reflect.MakeMap(t)
		if s != "" {
			member := reflect.New(t.Elem()).Elem()
			if t.Elem().Kind() == reflect.Bool {
				member.SetBool(true)
			}
			for _, part := range strings.Split(s, ",") {
				kv, err := coerce(part, t.Key())
				if err != nil {
					return err
				}
				out.SetMapIndex(kv, member)
			}
		}
		fv.Set(out)
		return nil
	}
	return json.Unmarshal([]byte(s), fv.Addr().Interface())
}

func isSetValue(t reflect.Type) bool {
	return t.Kind() == reflect.Bool || (t.Kind() == reflect.Struct && t.NumField() == 0)
}
