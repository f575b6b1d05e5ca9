package convert

import (
	"reflect"

	"github.com/AnatoleLucet/bind/internal/types"
)

// text converts between strings and display text.
type text struct{}

func (text) CanConvert(dst, src *types.Type) bool {
	return isStringish(dst) && isStringish(src)
}

func (text) Convert(_ *types.Type, dst reflect.Value, _ *types.Type, src reflect.Value) {
	dst.SetString(src.String())
}

func isStringish(t *types.Type) bool {
	k := t.Kind()
	return k == types.KindString || k == types.KindText
}

// color converts between the three colour representations. Narrowing to
// 8 bits does not reapply the sRGB curve.
type color struct{}

func isColor(t *types.Type) bool {
	switch t.Kind() {
	case types.KindColor, types.KindLinearColor, types.KindSlateColor:
		return true
	}
	return false
}

func (color) CanConvert(dst, src *types.Type) bool {
	return isColor(dst) && isColor(src)
}

func (color) Convert(dstType *types.Type, dst reflect.Value, _ *types.Type, src reflect.Value) {
	var lin types.LinearColor

	switch c := src.Interface().(type) {
	case types.Color:
		if dstType.Kind() == types.KindColor {
			dst.Set(src)
			return
		}
		lin = c.Linear()
	case types.LinearColor:
		lin = c
	case types.SlateColor:
		if dstType.Kind() == types.KindSlateColor {
			dst.Set(src)
			return
		}
		lin = c.Resolve(dstType.Registry())
	default:
		return
	}

	switch dstType.Kind() {
	case types.KindColor:
		dst.Set(reflect.ValueOf(lin.Quantize()))
	case types.KindLinearColor:
		dst.Set(reflect.ValueOf(lin))
	case types.KindSlateColor:
		dst.Set(reflect.ValueOf(types.Specified(lin)))
	}
}

// object writes object and interface references. The reference is kept when
// the source type is assignable to the destination, or failing that when
// the referenced object is. Anything else writes nil.
type object struct{}

func (object) CanConvert(dst, src *types.Type) bool {
	return dst.IsObject() && src.IsObject()
}

func (object) Convert(dstType *types.Type, dst reflect.Value, srcType *types.Type, src reflect.Value) {
	if srcType.Reflect().AssignableTo(dstType.Reflect()) {
		dst.Set(src)
		return
	}

	if obj, ok := types.ObjectValue(src); ok && obj.Type().AssignableTo(dstType.Reflect()) {
		dst.Set(obj)
		return
	}

	dst.SetZero()
}

// container re-types arrays, sets and maps element by element through the
// owning registry.
type container struct {
	reg *Registry
}

func (c *container) CanConvert(dst, src *types.Type) bool {
	if !dst.IsContainer() || dst.Kind() != src.Kind() {
		return false
	}
	if dst.Kind() == types.KindMap && !c.reg.CanConvert(dst.Key(), src.Key()) {
		return false
	}
	return c.reg.CanConvert(dst.Elem(), src.Elem())
}

func (c *container) Convert(dstType *types.Type, dst reflect.Value, srcType *types.Type, src reflect.Value) {
	if src.IsNil() {
		dst.SetZero()
		return
	}

	switch dstType.Kind() {
	case types.KindArray:
		elemD, elemS := dstType.Elem(), srcType.Elem()

		out := reflect.MakeSlice(dstType.Reflect(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			c.reg.ConvertValue(elemD, out.Index(i), elemS, src.Index(i))
		}
		dst.Set(out)

	case types.KindSet:
		elemD, elemS := dstType.Elem(), srcType.Elem()
		present := reflect.New(dstType.Reflect().Elem()).Elem()

		out := reflect.MakeMapWithSize(dstType.Reflect(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k := elemD.New()
			if c.reg.ConvertValue(elemD, k, elemS, iter.Key()) {
				out.SetMapIndex(k, present)
			}
		}
		dst.Set(out)

	case types.KindMap:
		keyD, keyS := dstType.Key(), srcType.Key()
		elemD, elemS := dstType.Elem(), srcType.Elem()

		out := reflect.MakeMapWithSize(dstType.Reflect(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k := keyD.New()
			v := elemD.New()
			if !c.reg.ConvertValue(keyD, k, keyS, iter.Key()) {
				continue
			}
			c.reg.ConvertValue(elemD, v, elemS, iter.Value())
			out.SetMapIndex(k, v)
		}
		dst.Set(out)
	}
}
