package fieldpath

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tliron/commonlog"

	"github.com/AnatoleLucet/bind/internal/types"
)

var log = commonlog.GetLogger("bind.fieldpath")

var ErrUnresolved = errors.New("unresolved field path")

type step struct {
	Step

	// resolved against the declared types, nil when the declared type does
	// not know the member; looked up by name at run time then
	prop *types.Property
	fn   *types.Function
}

// Resolver walks a field path from a root object down to a leaf value.
// The resolved steps are cached until Rebuild. Getter-backed properties and
// function calls write into scratch storage owned by the resolver.
type Resolver struct {
	reg  *types.Registry
	root *types.Type
	path Path

	steps []step
	leaf  *types.Type

	scratch map[*types.Property]reflect.Value
	frames  map[*types.Function]*types.Frame
}

func NewResolver(reg *types.Registry, root *types.Type, path Path) *Resolver {
	r := &Resolver{
		reg:     reg,
		root:    root,
		path:    path.Clone(),
		scratch: make(map[*types.Property]reflect.Value),
		frames:  make(map[*types.Function]*types.Frame),
	}
	r.Rebuild()
	return r
}

func (r *Resolver) Path() Path { return r.path }

func (r *Resolver) Root() *types.Type { return r.root }

func (r *Resolver) Registry() *types.Registry { return r.reg }

// LeafType is the declared type of the last step, nil if unknown.
func (r *Resolver) LeafType() *types.Type { return r.leaf }

// LeafProperty returns the declared property of the last step, if it is one.
func (r *Resolver) LeafProperty() *types.Property {
	if len(r.steps) == 0 {
		return nil
	}
	return r.steps[len(r.steps)-1].prop
}

// SetRoot changes the declared root type and rebuilds the steps.
func (r *Resolver) SetRoot(root *types.Type) error {
	r.root = root
	return r.Rebuild()
}

// Rebuild resolves every step against the declared types again. Steps the
// declared types cannot resolve are kept and looked up by name on the live
// objects; the returned error lists the first of them.
func (r *Resolver) Rebuild() error {
	r.steps = make([]step, len(r.path))
	r.leaf = nil

	var err error
	t := r.root
	for i, s := range r.path {
		r.steps[i] = step{Step: s}

		var class *types.Class
		if t != nil {
			class = t.Class()
		}
		if class == nil {
			if err == nil {
				err = fmt.Errorf("%w: %s: %s has no members", ErrUnresolved, r.path, t)
			}
			t = nil
			continue
		}

		switch s.Kind {
		case StepFunction:
			fn := class.FindFunction(s.Name)
			if fn == nil || !fn.IsPure() {
				if err == nil {
					err = fmt.Errorf("%w: %s: no function %s on %s", ErrUnresolved, r.path, s.Name, class.Name())
				}
				t = nil
				continue
			}
			r.steps[i].fn = fn
			t = fn.Return()

		default:
			prop := class.FindProperty(s.Name)
			if prop == nil {
				if err == nil {
					err = fmt.Errorf("%w: %s: no property %s on %s", ErrUnresolved, r.path, s.Name, class.Name())
				}
				t = nil
				continue
			}
			r.steps[i].prop = prop
			t = prop.Type()
		}
	}

	r.leaf = t
	return err
}

// RenameFirst renames the first path element when it is old.
func (r *Resolver) RenameFirst(old, to string) bool {
	if len(r.path) == 0 || r.path[0].Name != old {
		return false
	}
	r.path[0].Name = to
	r.Rebuild()
	return true
}

func (r *Resolver) fail(at int, why string) (types.Cell, reflect.Value) {
	log.Debugf("%s: step %d: %s", r.path, at, why)
	return types.Empty(r.leaf), reflect.Value{}
}

// Resolve returns the leaf value reached from root. On failure the cell
// carries the declared leaf type and no value.
func (r *Resolver) Resolve(root reflect.Value) types.Cell {
	c, _ := r.ResolveContainer(root)
	return c
}

// ResolveContainer also returns the container of the leaf: the owning object
// when the leaf lives in an object, the struct value itself otherwise.
func (r *Resolver) ResolveContainer(root reflect.Value) (types.Cell, reflect.Value) {
	if len(r.steps) == 0 {
		return types.Unknown(), reflect.Value{}
	}

	current := root
	var typ *types.Type
	var container reflect.Value

	for i, s := range r.steps {
		owner, class, ok := r.owner(current)
		if !ok {
			return r.fail(i, "no object")
		}
		container = owner

		switch s.Kind {
		case StepFunction:
			fn := s.fn
			if fn == nil || !fn.Owner().Matches(owner) {
				fn = class.FindFunction(s.Name)
			}
			if fn == nil || !fn.IsPure() {
				return r.fail(i, "no function "+s.Name)
			}

			fr := r.frame(fn)
			fr.Reset()
			if !fn.Invoke(owner, fr) {
				return r.fail(i, "call failed")
			}
			current = fr.Return
			typ = fn.Return()

		default:
			prop := s.prop
			if prop == nil || !prop.Owner().Matches(owner) {
				prop = class.FindProperty(s.Name)
			}
			if prop == nil {
				return r.fail(i, "no property "+s.Name)
			}

			if prop.HasGetter() || prop.IsVirtual() {
				buf := r.buffer(prop)
				prop.Type().Destroy(buf)
				if !prop.Get(owner, buf) {
					return r.fail(i, "getter failed")
				}
				current = buf
			} else {
				current = prop.Addr(owner)
				if !current.IsValid() {
					return r.fail(i, "no field")
				}
			}
			typ = prop.Type()
		}
	}

	return types.CellOf(typ, current), container
}

// ResolveOwner resolves everything but the last step and returns the
// container of the leaf property along with that property, fixed up against
// the container's runtime class. Writers use it.
func (r *Resolver) ResolveOwner(root reflect.Value) (reflect.Value, *types.Property, bool) {
	n := len(r.steps)
	if n == 0 || r.steps[n-1].Kind != StepProperty {
		return reflect.Value{}, nil, false
	}

	current := root
	if n > 1 {
		parent := &Resolver{
			reg:     r.reg,
			root:    r.root,
			path:    r.path[:n-1],
			steps:   r.steps[:n-1],
			scratch: r.scratch,
			frames:  r.frames,
		}
		c, _ := parent.ResolveContainer(root)
		if !c.IsValid() {
			return reflect.Value{}, nil, false
		}
		current = c.Value
	}

	owner, class, ok := r.owner(current)
	if !ok {
		log.Debugf("%s: no owner for the leaf", r.path)
		return reflect.Value{}, nil, false
	}

	prop := r.steps[n-1].prop
	if prop == nil || !prop.Owner().Matches(owner) {
		prop = class.FindProperty(r.steps[n-1].Name)
	}
	if prop == nil {
		log.Debugf("%s: no property %s", r.path, r.steps[n-1].Name)
		return reflect.Value{}, nil, false
	}

	return owner, prop, true
}

// owner turns a value into something members can be read from: a non-nil
// object, or an addressable struct.
func (r *Resolver) owner(v reflect.Value) (reflect.Value, *types.Class, bool) {
	if obj, ok := types.ObjectValue(v); ok {
		class := r.reg.ClassOf(obj.Type())
		return obj, class, class != nil
	}
	if v.IsValid() && v.Kind() == reflect.Struct && v.CanAddr() {
		class := r.reg.ClassOf(v.Type())
		return v, class, class != nil
	}
	return reflect.Value{}, nil, false
}

func (r *Resolver) buffer(p *types.Property) reflect.Value {
	buf, ok := r.scratch[p]
	if !ok {
		buf = p.Type().New()
		r.scratch[p] = buf
	}
	return buf
}

func (r *Resolver) frame(fn *types.Function) *types.Frame {
	fr, ok := r.frames[fn]
	if !ok {
		fr = fn.NewFrame()
		r.frames[fn] = fr
	}
	return fr
}

// Destroy releases the scratch storage.
func (r *Resolver) Destroy() {
	for p, buf := range r.scratch {
		p.Type().Destroy(buf)
	}
	for _, fr := range r.frames {
		fr.Destroy()
	}
	clear(r.scratch)
	clear(r.frames)
}
