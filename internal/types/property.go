package types

import "reflect"

// Property is a named, typed member of a class. It is either a plain field,
// reachable through an interior pointer, or backed by getter/setter methods.
type Property struct {
	owner *Class
	name  string
	typ   *Type
	index []int // nil for virtual properties

	getter string
	setter string
	notify bool
}

func (p *Property) Name() string    { return p.name }
func (p *Property) Type() *Type     { return p.typ }
func (p *Property) Owner() *Class   { return p.owner }
func (p *Property) HasGetter() bool { return p.getter != "" }
func (p *Property) HasSetter() bool { return p.setter != "" }
func (p *Property) IsNotify() bool  { return p.notify }

// IsVirtual reports whether the property has no backing field.
func (p *Property) IsVirtual() bool { return p.index == nil }

func structOf(obj reflect.Value) (reflect.Value, bool) {
	v := obj
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}

// Addr returns an interior, settable reference to the field inside obj.
// obj is an object or an addressable struct.
func (p *Property) Addr(obj reflect.Value) reflect.Value {
	if p.index == nil {
		return reflect.Value{}
	}
	s, ok := structOf(obj)
	if !ok {
		return reflect.Value{}
	}
	f, err := s.FieldByIndexErr(p.index)
	if err != nil {
		return reflect.Value{}
	}
	return f
}

func method(s reflect.Value, name string) reflect.Value {
	if s.CanAddr() {
		if m := s.Addr().MethodByName(name); m.IsValid() {
			return m
		}
	}
	return s.MethodByName(name)
}

// Get reads the property of obj into dst, going through the getter when
// there is one.
func (p *Property) Get(obj, dst reflect.Value) (ok bool) {
	s, found := structOf(obj)
	if !found || !dst.CanSet() {
		return false
	}

	if p.getter == "" {
		f := p.Addr(obj)
		if !f.IsValid() {
			return false
		}
		dst.Set(f)
		return true
	}

	m := method(s, p.getter)
	if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() == 0 {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	out := m.Call(nil)
	if len(out) == 2 && isError(m.Type().Out(1)) && !out[1].IsNil() {
		return false
	}
	dst.Set(out[0])
	return true
}

// Set writes src into the property of obj, going through the setter when
// there is one.
func (p *Property) Set(obj, src reflect.Value) (ok bool) {
	s, found := structOf(obj)
	if !found || !src.IsValid() {
		return false
	}

	if p.setter == "" {
		f := p.Addr(obj)
		if !f.IsValid() || !f.CanSet() {
			return false
		}
		f.Set(src)
		return true
	}

	m := method(s, p.setter)
	if !m.IsValid() || m.Type().NumIn() != 1 {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	out := m.Call([]reflect.Value{src})
	if len(out) == 1 && isError(m.Type().Out(0)) && !out[0].IsNil() {
		return false
	}
	return true
}

var errorType = reflect.TypeFor[error]()

func isError(rt reflect.Type) bool { return rt == errorType }
