package convert

import (
	"reflect"

	"github.com/AnatoleLucet/bind/internal/types"
)

// numeric converts between integers, enums and floats. Integers go through
// the unsigned representation when the source value is not negative, the
// signed one otherwise, and are truncated to the destination width.
type numeric struct{}

func (numeric) CanConvert(dst, src *types.Type) bool {
	return dst.IsNumeric() && src.IsNumeric()
}

func (numeric) Convert(_ *types.Type, dst reflect.Value, _ *types.Type, src reflect.Value) {
	switch {
	case isFloat(src):
		f := src.Float()
		switch {
		case isFloat(dst):
			dst.SetFloat(f)
		case isSigned(dst):
			dst.SetInt(int64(f))
		case f < 0:
			dst.SetUint(uint64(int64(f)))
		default:
			dst.SetUint(uint64(f))
		}

	case isSigned(src) && src.Int() < 0:
		i := src.Int()
		switch {
		case isFloat(dst):
			dst.SetFloat(float64(i))
		case isSigned(dst):
			dst.SetInt(i)
		default:
			dst.SetUint(uint64(i))
		}

	default:
		var u uint64
		if isSigned(src) {
			u = uint64(src.Int())
		} else {
			u = src.Uint()
		}
		switch {
		case isFloat(dst):
			dst.SetFloat(float64(u))
		case isSigned(dst):
			dst.SetInt(int64(u))
		default:
			dst.SetUint(u)
		}
	}
}

func isFloat(v reflect.Value) bool {
	k := v.Kind()
	return k == reflect.Float32 || k == reflect.Float64
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}
