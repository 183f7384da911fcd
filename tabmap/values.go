package tabmap

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adnsv/tabxl/table"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// ColumnType maps a Go type to the column type used for its values.
// Pointer types map like their element type.
func ColumnType(t reflect.Type) table.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case decimalType:
		return table.TypeDecimal
	case timeType:
		return table.TypeDateTime
	}
	switch t.Kind() {
	case reflect.String:
		return table.TypeString
	case reflect.Bool:
		return table.TypeBool
	case reflect.Int32:
		return table.TypeInt32
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return table.TypeInt64
	case reflect.Float32, reflect.Float64:
		return table.TypeFloat64
	}
	return table.TypeObject
}

// plainValue dereferences pointers and interfaces. A nil anywhere on the
// way yields the missing marker.
func plainValue(v reflect.Value) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// cleanValue strips invalid XML characters from string values, named
// string types included. The value keeps its type.
func cleanValue(v any) any {
	if s, ok := v.(string); ok {
		return table.StripInvalidXMLChars(s)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return v
	}
	clean := table.StripInvalidXMLChars(rv.String())
	if clean == rv.String() {
		return v
	}
	return reflect.ValueOf(clean).Convert(rv.Type()).Interface()
}

// encodeAttribute applies the attribute's storage encoding to v.
func encodeAttribute(a Attribute, v any) (any, error) {
	v = plainValue(reflect.ValueOf(v))
	if v == nil {
		return nil, nil
	}
	switch {
	case a.IsEnumString:
		v = fmt.Sprint(v)
	case a.IsStoredAsJSON:
		s, err := compactJSON(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		v = s
	case a.IsMappingRelation:
		if s, ok := joinCollection(reflect.ValueOf(v)); ok {
			v = s
			break
		}
		s, err := compactJSON(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		v = s
	}
	return cleanValue(v), nil
}

func compactJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// joinCollection renders lists and sets as comma separated element strings.
// Maps count as sets when their values are bool or struct{}; set members
// are sorted.
func joinCollection(v reflect.Value) (string, bool) {
	var parts []string
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return "", false
		}
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, fmt.Sprint(plainValue(v.Index(i))))
		}
	case reflect.Map:
		if !isSetValue(v.Type().Elem()) {
			return "", false
		}
		vk := v.Type().Elem().Kind()
		iter := v.MapRange()
		for iter.Next() {
			if vk == reflect.Bool && !iter.Value().Bool() {
				continue
			}
			parts = append(parts, fmt.Sprint(iter.Key().Interface()))
		}
		sort.Strings(parts)
	default:
		return "", false
	}
	return strings.Join(parts, ","), true
}

// coerce converts v into a value assignable to t.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		ev, err := coerce(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	var nv any
	var err error
	switch {
	case t == decimalType:
		nv, err = table.Normalize(v, table.TypeDecimal)
	case t == timeType:
		nv, err = table.Normalize(v, table.TypeDateTime)
	case isText(v) && reflect.PointerTo(t).Implements(textUnmarshalerType):
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(v.(string))); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	case t.Kind() == reflect.String:
		nv = table.FormatValue(v)
	case t.Kind() == reflect.Bool:
		nv, err = table.Normalize(v, table.TypeBool)
	case isIntKind(t.Kind()):
		var n any
		n, err = table.Normalize(v, table.TypeInt64)
		if err == nil {
			out := reflect.New(t).Elem()
			if out.OverflowInt(n.(int64)) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, t)
			}
			out.SetInt(n.(int64))
			return out, nil
		}
	case isUintKind(t.Kind()):
		var n any
		n, err = table.Normalize(v, table.TypeInt64)
		if err == nil {
			out := reflect.New(t).Elem()
			u := n.(int64)
			if u < 0 || out.OverflowUint(uint64(u)) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", u, t)
			}
			out.SetUint(uint64(u))
			return out, nil
		}
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		nv, err = table.Normalize(v, table.TypeFloat64)
	default:
		if rv.Type().ConvertibleTo(t) {
			return rv.Convert(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot assign %T to %s", v, t)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(nv).Convert(t), nil
}

func isText(v any) bool {
	_, ok := v.(string)
	return ok
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
