// Package tabmap converts typed object collections to tables and back.
//
// Column layout and value access come from a TableSchemaProvider chosen once
// per Go type: entity metadata when a MetadataProvider knows the type, the
// exported struct fields otherwise.
package tabmap

import (
	"reflect"

	"github.com/adnsv/tabxl/table"
)

// Attribute describes one statically declared attribute of an entity type.
type Attribute struct {
	Name string
	Type reflect.Type

	IsIgnored         bool
	IsIgnoredIfNull   bool
	IsStoredAsJSON    bool
	IsEnumString      bool
	IsMappingRelation bool
}

// ExtendedMode selects the value type of an extended attribute.
type ExtendedMode int

const (
	ExtendedText ExtendedMode = iota
	ExtendedYesNo
	ExtendedIntegralNumber
	ExtendedFloatingPointNumber
	ExtendedDateTime
)

// ColumnType returns the column type used for values of this mode.
func (m ExtendedMode) ColumnType() table.Type {
	switch m {
	case ExtendedYesNo:
		return table.TypeBool
	case ExtendedIntegralNumber:
		return table.TypeInt64
	case ExtendedFloatingPointNumber:
		return table.TypeDecimal
	case ExtendedDateTime:
		return table.TypeDateTime
	}
	return table.TypeString
}

// ExtendedAttribute is a schema-variant specific dynamic attribute.
type ExtendedAttribute struct {
	Name string
	Mode ExtendedMode
}

// EntityMetadata is supplied by the entity framework for one entity type.
type EntityMetadata interface {
	// Attributes returns the declared attributes in column order.
	Attributes() []Attribute
	// ExtendedAttributes returns the extended schema of a variant. Unknown
	// variants have no extended attributes.
	ExtendedAttributes(variant string) []ExtendedAttribute
	// Value reads a declared attribute. ok is false when the value is absent.
	Value(obj any, name string) (v any, ok bool)
	// SetValue assigns a declared attribute on obj, a pointer to the entity.
	SetValue(obj any, name string, v any) error
	// SetExtendedValue assigns an extended attribute on obj.
	SetExtendedValue(obj any, name string, v any) error
}

// MetadataProvider looks up entity metadata by Go type. Types it does not
// know are mapped through their exported fields.
type MetadataProvider interface {
	Metadata(t reflect.Type) (EntityMetadata, bool)
}

// MetadataProviderFunc adapts a function to MetadataProvider.
type MetadataProviderFunc func(t reflect.Type) (EntityMetadata, bool)

func (f MetadataProviderFunc) Metadata(t reflect.Type) (EntityMetadata, bool) {
	return f(t)
}

// Extensible is implemented by entities carrying a dynamic property bag.
type Extensible interface {
	ExtendedProperties() map[string]any
}
