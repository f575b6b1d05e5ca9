package types

import (
	"reflect"

	"github.com/mitchellh/copystructure"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindText
	KindEnum
	KindColor
	KindLinearColor
	KindSlateColor
	KindStruct
	KindObject    // pointer to struct
	KindInterface // interface reference
	KindArray     // slice
	KindSet       // map[K]struct{}
	KindMap
	KindOther
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindBool:        "bool",
	KindInt:         "int",
	KindUint:        "uint",
	KindFloat:       "float",
	KindString:      "string",
	KindText:        "text",
	KindEnum:        "enum",
	KindColor:       "color",
	KindLinearColor: "linear_color",
	KindSlateColor:  "slate_color",
	KindStruct:      "struct",
	KindObject:      "object",
	KindInterface:   "interface",
	KindArray:       "array",
	KindSet:         "set",
	KindMap:         "map",
	KindOther:       "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Type describes a runtime type known to a Registry. Types are interned, so two
// descriptors for the same Go type are the same pointer.
type Type struct {
	rt   reflect.Type
	kind Kind
	reg  *Registry

	// plain types hold no references and no unexported state, so they can be
	// deep copied without touching object identity
	plain bool
}

func classify(rt reflect.Type) Kind {
	switch rt {
	case textType:
		return KindText
	case colorType:
		return KindColor
	case linearColorType:
		return KindLinearColor
	case slateColorType:
		return KindSlateColor
	}

	switch rt.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Struct:
		return KindStruct
	case reflect.Pointer:
		if rt.Elem().Kind() == reflect.Struct {
			return KindObject
		}
	case reflect.Interface:
		return KindInterface
	case reflect.Slice:
		return KindArray
	case reflect.Map:
		if rt.Elem().Size() == 0 && rt.Elem().Kind() == reflect.Struct {
			return KindSet
		}
		return KindMap
	}

	return KindOther
}

func isPlain(rt reflect.Type, seen map[reflect.Type]bool) bool {
	if done, ok := seen[rt]; ok {
		return done
	}
	seen[rt] = false

	plain := false
	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		plain = true
	case reflect.Slice, reflect.Array:
		plain = isPlain(rt.Elem(), seen)
	case reflect.Map:
		plain = isPlain(rt.Key(), seen) && isPlain(rt.Elem(), seen)
	case reflect.Struct:
		plain = true
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() || !isPlain(f.Type, seen) {
				plain = false
				break
			}
		}
	}

	seen[rt] = plain
	return plain
}

// Reflect returns the underlying Go type.
func (t *Type) Reflect() reflect.Type {
	if t == nil {
		return nil
	}
	return t.rt
}

func (t *Type) Kind() Kind {
	if t == nil {
		return KindInvalid
	}
	return t.kind
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.rt.String()
}

func (t *Type) Size() uintptr { return t.rt.Size() }
func (t *Type) Align() int    { return t.rt.Align() }

func (t *Type) Registry() *Registry { return t.reg }

func (t *Type) IsObject() bool {
	k := t.Kind()
	return k == KindObject || k == KindInterface
}

func (t *Type) IsInteger() bool {
	k := t.Kind()
	return k == KindInt || k == KindUint || k == KindEnum
}

func (t *Type) IsNumeric() bool {
	return t.IsInteger() || t.Kind() == KindFloat
}

func (t *Type) IsContainer() bool {
	k := t.Kind()
	return k == KindArray || k == KindSet || k == KindMap
}

// Elem returns the element type of an array or set, or the value type of a map.
func (t *Type) Elem() *Type {
	switch t.Kind() {
	case KindArray, KindMap:
		return t.reg.TypeOf(t.rt.Elem())
	case KindSet:
		return t.reg.TypeOf(t.rt.Key())
	}
	return nil
}

// Key returns the key type of a map.
func (t *Type) Key() *Type {
	if t.Kind() != KindMap {
		return nil
	}
	return t.reg.TypeOf(t.rt.Key())
}

// Enum returns the enum metadata, or nil if t is not a registered enum.
func (t *Type) Enum() *Enum {
	if t.Kind() != KindEnum {
		return nil
	}
	return t.reg.EnumOf(t.rt)
}

// Class returns the class metadata for object, interface and struct types.
func (t *Type) Class() *Class {
	switch t.Kind() {
	case KindObject, KindInterface, KindStruct:
		return t.reg.ClassOf(t.rt)
	}
	return nil
}

// New default-constructs a value of this type and returns it addressable.
func (t *Type) New() reflect.Value {
	return reflect.New(t.rt).Elem()
}

// Destroy resets v back to its default-constructed state.
func (t *Type) Destroy(v reflect.Value) {
	if v.IsValid() && v.CanSet() {
		v.SetZero()
	}
}

// Copy deep copies src into dst. Object references keep their identity.
func (t *Type) Copy(dst, src reflect.Value) {
	if !dst.CanSet() || !src.IsValid() {
		return
	}

	switch t.kind {
	case KindArray, KindSet, KindMap, KindStruct:
		if t.plain {
			if c, err := copystructure.Copy(src.Interface()); err == nil && c != nil {
				dst.Set(reflect.ValueOf(c))
				return
			}
		}
		dst.Set(deepCopy(src))
	default:
		dst.Set(src)
	}
}

func deepCopy(src reflect.Value) reflect.Value {
	switch src.Kind() {
	case reflect.Slice:
		if src.IsNil() {
			return reflect.Zero(src.Type())
		}
		out := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			out.Index(i).Set(deepCopy(src.Index(i)))
		}
		return out
	case reflect.Map:
		if src.IsNil() {
			return reflect.Zero(src.Type())
		}
		out := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			out.SetMapIndex(deepCopy(iter.Key()), deepCopy(iter.Value()))
		}
		return out
	case reflect.Struct:
		out := reflect.New(src.Type()).Elem()
		out.Set(src)
		for i := 0; i < out.NumField(); i++ {
			f := out.Field(i)
			if !f.CanSet() {
				continue
			}
			switch f.Kind() {
			case reflect.Slice, reflect.Map, reflect.Struct:
				f.Set(deepCopy(src.Field(i)))
			}
		}
		return out
	}

	return src
}

// Identical reports whether a and b hold the same value. Object references are
// compared by identity, everything else by content.
func (t *Type) Identical(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}

	switch t.kind {
	case KindObject, KindInterface:
		return identity(a) == identity(b)
	case KindBool:
		return a.Bool() == b.Bool()
	case KindInt:
		return a.Int() == b.Int()
	case KindUint:
		return a.Uint() == b.Uint()
	case KindFloat:
		return a.Float() == b.Float()
	case KindString, KindText:
		return a.String() == b.String()
	}

	return reflect.DeepEqual(a.Interface(), b.Interface())
}

func identity(v reflect.Value) uintptr {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.Pointer()
	}
	return 0
}

// SameAs reports whether t and o describe exactly the same type.
func (t *Type) SameAs(o *Type) bool {
	return t != nil && o != nil && t.rt == o.rt
}

// CompatibleWith reports whether a value of src can be stored in t without
// conversion.
func (t *Type) CompatibleWith(src *Type) bool {
	if t == nil || src == nil {
		return false
	}
	return src.rt.AssignableTo(t.rt)
}
