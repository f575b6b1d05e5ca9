package convert

import (
	"reflect"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/AnatoleLucet/bind/internal/types"
)

var log = commonlog.GetLogger("bind.convert")

// Converter copies a value of one type into a value of another.
type Converter interface {
	CanConvert(dst, src *types.Type) bool
	Convert(dstType *types.Type, dst reflect.Value, srcType *types.Type, src reflect.Value)
}

// Registry picks the converter for a (destination, source) type pair. The
// first converter whose CanConvert matches wins; custom converters are asked
// before the built-in ones.
type Registry struct {
	mu      sync.RWMutex
	custom  []Converter
	builtin []Converter
}

func New(extra ...Converter) *Registry {
	r := &Registry{custom: extra}
	r.builtin = []Converter{
		numeric{},
		text{},
		color{},
		object{},
		&container{reg: r},
	}
	return r
}

// Register adds a custom converter, asked after the custom converters
// registered before it.
func (r *Registry) Register(c Converter) {
	r.mu.Lock()
	r.custom = append(r.custom, c)
	r.mu.Unlock()
}

// Find returns the converter for the pair, or nil.
func (r *Registry) Find(dst, src *types.Type) Converter {
	// container converters recurse into Find
	r.mu.RLock()
	custom := r.custom
	r.mu.RUnlock()

	for _, c := range custom {
		if c.CanConvert(dst, src) {
			return c
		}
	}
	for _, c := range r.builtin {
		if c.CanConvert(dst, src) {
			return c
		}
	}
	return nil
}

// CanConvert reports whether a value of src can be written into dst, either
// as an exact copy or through a converter.
func (r *Registry) CanConvert(dst, src *types.Type) bool {
	if dst == nil || src == nil {
		return false
	}
	if dst.SameAs(src) {
		return true
	}
	return r.Find(dst, src) != nil
}

// ConvertValue writes src into dst. Identical types are deep copied and
// never reach a converter. It reports false, leaving dst untouched, when
// no conversion exists.
func (r *Registry) ConvertValue(dstType *types.Type, dst reflect.Value, srcType *types.Type, src reflect.Value) bool {
	if dstType == nil || srcType == nil || !src.IsValid() || !dst.IsValid() || !dst.CanSet() {
		return false
	}

	if dstType.SameAs(srcType) {
		dstType.Copy(dst, src)
		return true
	}

	c := r.Find(dstType, srcType)
	if c == nil {
		log.Debugf("no converter from %s to %s", srcType, dstType)
		return false
	}

	c.Convert(dstType, dst, srcType, src)
	return true
}

// Convert writes the src cell into the dst cell.
func (r *Registry) Convert(dst, src types.Cell) bool {
	return r.ConvertValue(dst.Type, dst.Value, src.Type, src.Value)
}

// SetProperty writes src into prop of owner. Properties with a setter, and
// virtual properties, are written through their accessor; plain fields are
// converted in place.
func (r *Registry) SetProperty(owner reflect.Value, prop *types.Property, src types.Cell) bool {
	if prop == nil || !src.IsValid() {
		return false
	}

	if prop.HasSetter() || prop.IsVirtual() {
		tmp := prop.Type().New()
		if !r.ConvertValue(prop.Type(), tmp, src.Type, src.Value) {
			return false
		}
		return prop.Set(owner, tmp)
	}

	field := prop.Addr(owner)
	if !field.IsValid() {
		return false
	}
	return r.ConvertValue(prop.Type(), field, src.Type, src.Value)
}

// Equal compares two cells, converting one side into the other's type when
// they differ.
func (r *Registry) Equal(a, b types.Cell) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type.SameAs(b.Type) {
		return a.Type.Identical(a.Value, b.Value)
	}

	tmp := a.Type.New()
	if r.ConvertValue(a.Type, tmp, b.Type, b.Value) {
		return a.Type.Identical(a.Value, tmp)
	}

	tmp = b.Type.New()
	if r.ConvertValue(b.Type, tmp, a.Type, a.Value) {
		return b.Type.Identical(tmp, b.Value)
	}

	return false
}

type funcConverter[D, S any] struct {
	fn func(S) D
}

// Between builds a converter from S to D out of a plain function.
func Between[D, S any](fn func(S) D) Converter {
	return funcConverter[D, S]{fn}
}

func (f funcConverter[D, S]) CanConvert(dst, src *types.Type) bool {
	return dst.Reflect() == reflect.TypeFor[D]() && src.Reflect() == reflect.TypeFor[S]()
}

func (f funcConverter[D, S]) Convert(_ *types.Type, dst reflect.Value, _ *types.Type, src reflect.Value) {
	s, _ := src.Interface().(S)
	out := f.fn(s)
	dst.Set(reflect.ValueOf(&out).Elem())
}
