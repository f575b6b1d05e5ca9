package types

import (
	"reflect"
	"sync"
)

var (
	textType        = reflect.TypeFor[Text]()
	colorType       = reflect.TypeFor[Color]()
	linearColorType = reflect.TypeFor[LinearColor]()
	slateColorType  = reflect.TypeFor[SlateColor]()
	anyType         = reflect.TypeFor[any]()
)

// Registry holds the live type metadata: interned type descriptors, classes,
// enums, the colour theme and the names used by graph documents.
// Safe for concurrent registration and lookup.
type Registry struct {
	mu sync.RWMutex

	types   map[reflect.Type]*Type
	classes map[reflect.Type]*Class
	enums   map[reflect.Type]*Enum
	names   map[string]reflect.Type
	theme   map[ColorRule]LinearColor
}

func NewRegistry() *Registry {
	r := &Registry{
		types:   make(map[reflect.Type]*Type),
		classes: make(map[reflect.Type]*Class),
		enums:   make(map[reflect.Type]*Enum),
		names:   make(map[string]reflect.Type),
		theme:   make(map[ColorRule]LinearColor),
	}

	for name, rt := range map[string]reflect.Type{
		"bool":         reflect.TypeFor[bool](),
		"int":          reflect.TypeFor[int](),
		"int8":         reflect.TypeFor[int8](),
		"int16":        reflect.TypeFor[int16](),
		"int32":        reflect.TypeFor[int32](),
		"int64":        reflect.TypeFor[int64](),
		"uint":         reflect.TypeFor[uint](),
		"uint8":        reflect.TypeFor[uint8](),
		"uint16":       reflect.TypeFor[uint16](),
		"uint32":       reflect.TypeFor[uint32](),
		"uint64":       reflect.TypeFor[uint64](),
		"float32":      reflect.TypeFor[float32](),
		"float64":      reflect.TypeFor[float64](),
		"string":       reflect.TypeFor[string](),
		"text":         textType,
		"color":        colorType,
		"linear_color": linearColorType,
		"slate_color":  slateColorType,
		"any":          anyType,
	} {
		r.names[name] = rt
	}

	r.theme[ColorForeground] = LinearColor{R: 1, G: 1, B: 1, A: 1}
	r.theme[ColorSubduedForeground] = LinearColor{R: 0.6, G: 0.6, B: 0.6, A: 1}
	r.theme[ColorSelection] = LinearColor{R: 0.1, G: 0.4, B: 0.9, A: 1}

	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// TypeOf returns the interned descriptor for rt.
func (r *Registry) TypeOf(rt reflect.Type) *Type {
	if rt == nil {
		return nil
	}

	r.mu.RLock()
	t, ok := r.types[rt]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.types[rt]; ok {
		return t
	}

	t = &Type{
		rt:    rt,
		kind:  classify(rt),
		reg:   r,
		plain: isPlain(rt, map[reflect.Type]bool{}),
	}
	if _, ok := r.enums[rt]; ok {
		t.kind = KindEnum
	}
	r.types[rt] = t

	return t
}

// TypeFor returns the interned descriptor for T.
func TypeFor[T any](r *Registry) *Type {
	return r.TypeOf(reflect.TypeFor[T]())
}

// Any is the descriptor of the empty interface, used for slots that accept
// any object.
func (r *Registry) Any() *Type { return r.TypeOf(anyType) }

// Register gives rt a name usable from graph documents. v may be a value, a
// pointer, or a reflect.Type.
func (r *Registry) Register(name string, v any) *Type {
	rt, ok := v.(reflect.Type)
	if !ok {
		rt = reflect.TypeOf(v)
	}

	r.mu.Lock()
	r.names[name] = rt
	r.mu.Unlock()

	return r.TypeOf(rt)
}

// Lookup finds a type by registered name. A leading "[]" resolves to a slice
// of the named type.
func (r *Registry) Lookup(name string) *Type {
	if len(name) > 2 && name[:2] == "[]" {
		elem := r.Lookup(name[2:])
		if elem == nil {
			return nil
		}
		return r.TypeOf(reflect.SliceOf(elem.rt))
	}

	r.mu.RLock()
	rt, ok := r.names[name]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.TypeOf(rt)
}

// ClassOf returns the class metadata for a struct, pointer to struct or
// interface type. Struct and pointer types share one class.
func (r *Registry) ClassOf(rt reflect.Type) *Class {
	if rt == nil {
		return nil
	}
	switch rt.Kind() {
	case reflect.Struct:
		rt = reflect.PointerTo(rt)
	case reflect.Pointer:
		if rt.Elem().Kind() != reflect.Struct {
			return nil
		}
	case reflect.Interface:
	default:
		return nil
	}

	r.mu.RLock()
	c, ok := r.classes[rt]
	r.mu.RUnlock()
	if ok {
		return c
	}

	c = newClass(r, rt)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.classes[rt]; ok {
		return existing
	}
	r.classes[rt] = c

	return c
}

// ClassFor returns the class of T.
func ClassFor[T any](r *Registry) *Class {
	return r.ClassOf(reflect.TypeFor[T]())
}

// DefineEnum attaches enum metadata to an integer type.
func (r *Registry) DefineEnum(rt reflect.Type, entries ...EnumEntry) *Enum {
	e := &Enum{rt: rt, entries: entries}

	r.mu.Lock()
	r.enums[rt] = e
	if t, ok := r.types[rt]; ok {
		t.kind = KindEnum
	}
	r.mu.Unlock()

	return e
}

// EnumOf returns the enum metadata registered for rt.
func (r *Registry) EnumOf(rt reflect.Type) *Enum {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enums[rt]
}

func (r *Registry) SetThemeColor(rule ColorRule, c LinearColor) {
	r.mu.Lock()
	r.theme[rule] = c
	r.mu.Unlock()
}

func (r *Registry) ThemeColor(rule ColorRule) LinearColor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme[rule]
}
