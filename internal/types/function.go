package types

import (
	"fmt"
	"reflect"
)

type Param struct {
	Name string
	Type *Type
}

// Function is a callable member of a class: an exported method, or a static
// function registered with DefineStatic.
type Function struct {
	owner  *Class
	name   string
	params []Param
	ret    *Type
	hasErr bool

	index  int          // method index on recv, -1 for statics
	recv   reflect.Type // receiver the index refers to
	static bool
	fn     reflect.Value
}

func newFunction(c *Class, name string, ft reflect.Type, first int) *Function {
	f := &Function{owner: c, name: name}

	for i := first; i < ft.NumIn(); i++ {
		f.params = append(f.params, Param{
			Name: fmt.Sprintf("Arg%d", i-first),
			Type: c.reg.TypeOf(ft.In(i)),
		})
	}

	outs := ft.NumOut()
	if outs > 0 && isError(ft.Out(outs-1)) {
		f.hasErr = true
		outs--
	}
	if outs > 0 {
		f.ret = c.reg.TypeOf(ft.Out(0))
	}

	return f
}

func (f *Function) Name() string    { return f.name }
func (f *Function) Owner() *Class   { return f.owner }
func (f *Function) Params() []Param { return f.params }
func (f *Function) Return() *Type   { return f.ret }
func (f *Function) IsStatic() bool  { return f.static }

// IsPure reports whether the function can be used as a field path step: no
// parameters and a return value.
func (f *Function) IsPure() bool { return len(f.params) == 0 && f.ret != nil }

// Param returns the parameter with the given name.
func (f *Function) Param(name string) (int, bool) {
	for i, p := range f.params {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Frame is the scratch parameter/return block of one function.
type Frame struct {
	fn     *Function
	Args   []reflect.Value
	Return reflect.Value
}

// NewFrame allocates a frame with default-constructed parameters.
func (f *Function) NewFrame() *Frame {
	fr := &Frame{fn: f, Args: make([]reflect.Value, len(f.params))}
	for i, p := range f.params {
		fr.Args[i] = p.Type.New()
	}
	if f.ret != nil {
		fr.Return = f.ret.New()
	}
	return fr
}

// Reset default-constructs every parameter again.
func (fr *Frame) Reset() {
	for i, p := range fr.fn.params {
		p.Type.Destroy(fr.Args[i])
	}
}

func (fr *Frame) Destroy() {
	fr.Reset()
	if fr.fn.ret != nil {
		fr.fn.ret.Destroy(fr.Return)
	}
}

// Invoke calls the function on owner with the arguments held by fr and stores
// the result in fr.Return. It reports false when the owner cannot receive the
// call, the function returned a non-nil error, or the call panicked.
func (f *Function) Invoke(owner reflect.Value, fr *Frame) (ok bool) {
	call := f.fn
	if !f.static {
		call = f.bind(owner)
		if !call.IsValid() {
			return false
		}
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	var out []reflect.Value
	if call.Type().IsVariadic() {
		out = call.CallSlice(fr.Args)
	} else {
		out = call.Call(fr.Args)
	}

	if f.hasErr {
		if err := out[len(out)-1]; !err.IsNil() {
			return false
		}
	}
	if f.ret != nil && fr.Return.CanSet() {
		fr.Return.Set(out[0])
	}

	return true
}

func (f *Function) bind(owner reflect.Value) reflect.Value {
	obj, ok := ObjectValue(owner)
	if !ok {
		if owner.IsValid() && owner.Kind() == reflect.Struct && owner.CanAddr() {
			obj = owner.Addr()
		} else {
			return reflect.Value{}
		}
	}

	if f.recv != nil && f.recv.Kind() != reflect.Interface && obj.Type() == f.recv {
		return obj.Method(f.index)
	}
	return obj.MethodByName(f.name)
}
