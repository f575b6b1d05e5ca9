package types

import "reflect"

// Cell is a value of some runtime-determined type living in some memory
// location. The zero Cell is "unknown"; a Cell with a Type but no Value is
// "known type, no value".
type Cell struct {
	Type  *Type
	Value reflect.Value
}

func Unknown() Cell { return Cell{} }

func Empty(t *Type) Cell { return Cell{Type: t} }

// NewCell default-constructs a value of t.
func NewCell(t *Type) Cell {
	if t == nil {
		return Cell{}
	}
	return Cell{Type: t, Value: t.New()}
}

// CellOf wraps v, which should be addressable, as a cell of type t.
func CellOf(t *Type, v reflect.Value) Cell {
	if t == nil {
		return Cell{}
	}
	return Cell{Type: t, Value: v}
}

func (c Cell) IsValid() bool   { return c.Type != nil && c.Value.IsValid() }
func (c Cell) IsUnknown() bool { return c.Type == nil }

func (c Cell) Interface() any {
	if !c.IsValid() {
		return nil
	}
	return c.Value.Interface()
}

// Object returns the object referenced by the cell, unwrapping interfaces.
// ok is false for non-object cells and nil references.
func (c Cell) Object() (reflect.Value, bool) {
	if !c.IsValid() || !c.Type.IsObject() {
		return reflect.Value{}, false
	}
	return ObjectValue(c.Value)
}

// Equal reports whether both cells have the same type and identical values.
func (c Cell) Equal(o Cell) bool {
	if !c.Type.SameAs(o.Type) {
		return c.IsUnknown() && o.IsUnknown()
	}
	return c.Type.Identical(c.Value, o.Value)
}

// ObjectValue unwraps interfaces down to a non-nil pointer.
func ObjectValue(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, false
	}
	return v, true
}

// As reads a cell as T. Values assignable to T are returned as is.
func As[T any](c Cell) (T, bool) {
	var zero T
	if !c.IsValid() {
		return zero, false
	}

	if v, ok := c.Value.Interface().(T); ok {
		return v, true
	}

	target := reflect.TypeFor[T]()
	if c.Value.Type().ConvertibleTo(target) {
		out := c.Value.Convert(target).Interface()
		if out == nil {
			return zero, true
		}
		return out.(T), true
	}

	return zero, false
}
