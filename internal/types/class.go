package types

import (
	"reflect"
	"strings"
)

var notifierMethods = map[string]bool{
	"AddFieldValueChangedDelegate":    true,
	"RemoveFieldValueChangedDelegate": true,
	"Broadcast":                       true,
	"Listeners":                       true,
}

// Class is the reflected shape of an object type: its properties, its
// callable functions and its default object.
//
// Define* calls are expected during setup, before bindings read the class.
type Class struct {
	reg *Registry
	rt  reflect.Type // pointer to struct, or interface

	props       []*Property
	propsByName map[string]*Property

	funcs       []*Function
	funcsByName map[string]*Function

	cdo reflect.Value
}

func newClass(r *Registry, rt reflect.Type) *Class {
	c := &Class{
		reg:         r,
		rt:          rt,
		propsByName: make(map[string]*Property),
		funcsByName: make(map[string]*Function),
	}

	if rt.Kind() == reflect.Pointer {
		for _, f := range reflect.VisibleFields(rt.Elem()) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			tag, hidden := parseTag(f.Tag.Get("bind"))
			if hidden {
				continue
			}

			p := &Property{
				owner:  c,
				name:   f.Name,
				typ:    r.TypeOf(f.Type),
				index:  f.Index,
				getter: tag.getter,
				setter: tag.setter,
				notify: tag.notify,
			}
			c.addProperty(p)
		}
	}

	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !m.IsExported() || notifierMethods[m.Name] {
			continue
		}

		mt := m.Type
		first := 1
		if rt.Kind() == reflect.Interface {
			first = 0
		}

		f := newFunction(c, m.Name, mt, first)
		f.index = i
		f.recv = rt
		c.addFunction(f)
	}

	return c
}

type fieldTag struct {
	getter string
	setter string
	notify bool
}

func parseTag(tag string) (fieldTag, bool) {
	var out fieldTag
	if tag == "-" {
		return out, true
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")
		switch key {
		case "getter":
			out.getter = value
		case "setter":
			out.setter = value
		case "notify":
			out.notify = true
		}
	}

	return out, false
}

func (c *Class) addProperty(p *Property) {
	if existing, ok := c.propsByName[p.name]; ok {
		*existing = *p
		return
	}
	c.props = append(c.props, p)
	c.propsByName[p.name] = p
}

func (c *Class) addFunction(f *Function) {
	if existing, ok := c.funcsByName[f.name]; ok {
		*existing = *f
		return
	}
	c.funcs = append(c.funcs, f)
	c.funcsByName[f.name] = f
}

func (c *Class) Name() string {
	if c.rt.Kind() == reflect.Pointer {
		return c.rt.Elem().Name()
	}
	return c.rt.Name()
}

// Type returns the object type of the class (pointer to struct or interface).
func (c *Class) Type() *Type { return c.reg.TypeOf(c.rt) }

func (c *Class) IsInterface() bool { return c.rt.Kind() == reflect.Interface }

func (c *Class) Properties() []*Property { return c.props }

func (c *Class) FindProperty(name string) *Property { return c.propsByName[name] }

func (c *Class) Functions() []*Function { return c.funcs }

func (c *Class) FindFunction(name string) *Function { return c.funcsByName[name] }

// StaticFunctions lists the functions callable against the default object.
func (c *Class) StaticFunctions() []*Function {
	var out []*Function
	for _, f := range c.funcs {
		if f.static {
			out = append(out, f)
		}
	}
	return out
}

// DefaultObject returns the class default object, a zero instance created on
// first use. Interfaces have none.
func (c *Class) DefaultObject() reflect.Value {
	if c.rt.Kind() != reflect.Pointer {
		return reflect.Value{}
	}
	if !c.cdo.IsValid() {
		c.cdo = reflect.New(c.rt.Elem())
	}
	return c.cdo
}

// IsChildOf reports whether objects of c can be used where o is expected.
func (c *Class) IsChildOf(o *Class) bool {
	if c == nil || o == nil {
		return false
	}
	return c.rt.AssignableTo(o.rt)
}

// Matches reports whether v (an object, an interface holding one, or an
// addressable struct) is an instance of c.
func (c *Class) Matches(v reflect.Value) bool {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return false
	}

	vt := v.Type()
	if vt.Kind() == reflect.Struct {
		vt = reflect.PointerTo(vt)
	}

	if c.rt.Kind() == reflect.Interface {
		return vt.Implements(c.rt)
	}
	return vt == c.rt
}

// DefineFunction names the parameters of a method.
func (c *Class) DefineFunction(name string, params ...string) *Class {
	f := c.funcsByName[name]
	if f == nil {
		return c
	}
	for i := range f.params {
		if i < len(params) {
			f.params[i].Name = params[i]
		}
	}
	return c
}

// DefineStatic registers fn as a static function of the class. Static
// functions ignore the object they are called on.
func (c *Class) DefineStatic(name string, fn any, params ...string) *Class {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return c
	}

	f := newFunction(c, name, fv.Type(), 0)
	f.index = -1
	f.static = true
	f.fn = fv
	c.addFunction(f)

	return c.DefineFunction(name, params...)
}

// DefineProperty attaches custom accessors to a property. When no field of
// that name exists a virtual property is created from the getter's result type.
func (c *Class) DefineProperty(name, getter, setter string) *Class {
	if p, ok := c.propsByName[name]; ok {
		p.getter = getter
		p.setter = setter
		return c
	}

	if getter == "" {
		return c
	}
	m, ok := c.rt.MethodByName(getter)
	if !ok {
		return c
	}
	first := 1
	if c.rt.Kind() == reflect.Interface {
		first = 0
	}
	if m.Type.NumIn() != first || m.Type.NumOut() == 0 {
		return c
	}

	c.addProperty(&Property{
		owner:  c,
		name:   name,
		typ:    c.reg.TypeOf(m.Type.Out(0)),
		getter: getter,
		setter: setter,
	})
	return c
}

// Notify marks a property as broadcasting field change notifications.
func (c *Class) Notify(names ...string) *Class {
	for _, name := range names {
		if p, ok := c.propsByName[name]; ok {
			p.notify = true
		}
	}
	return c
}
