package internal

import (
	"reflect"

	"github.com/AnatoleLucet/bind/internal/types"
)

// call invokes a function of a class with parameters read from the
// correspondingly named slots of its node.
type call struct {
	o      *Object
	class  *types.Type
	name   string
	static bool

	fn    *types.Function
	frame *types.Frame
}

func (c *call) Class() *types.Type { return c.class }

func (c *call) FunctionName() string { return c.name }

// function is the function declared on the configured class.
func (c *call) function() *types.Function {
	if c.class == nil {
		return nil
	}
	class := c.class.Class()
	if class == nil {
		return nil
	}
	fn := class.FindFunction(c.name)
	if fn == nil || fn.IsStatic() != c.static {
		return nil
	}
	return fn
}

func (c *call) paramSpecs() []ItemSpec {
	fn := c.function()
	if fn == nil {
		return nil
	}
	specs := make([]ItemSpec, 0, len(fn.Params()))
	for _, p := range fn.Params() {
		specs = append(specs, ItemSpec{Name: p.Name, Type: p.Type})
	}
	return specs
}

func (c *call) returnType() *types.Type {
	if fn := c.function(); fn != nil {
		return fn.Return()
	}
	return nil
}

// resolve fixes the function up against the runtime class of owner.
func (c *call) resolve(owner reflect.Value) *types.Function {
	fn := c.function()
	if c.static {
		return fn
	}
	if fn != nil && fn.Owner().Matches(owner) {
		return fn
	}

	obj, ok := types.ObjectValue(owner)
	if !ok {
		return nil
	}
	class := c.o.registry().ClassOf(obj.Type())
	if class == nil {
		return nil
	}
	if fn = class.FindFunction(c.name); fn == nil || fn.IsStatic() {
		return nil
	}
	return fn
}

// params writes every parameter slot into the frame and reports whether
// any of them changed.
func (c *call) params(ctx *Context, fn *types.Function) bool {
	if c.fn != fn || c.frame == nil {
		if c.frame != nil {
			c.frame.Destroy()
		}
		c.fn = fn
		c.frame = fn.NewFrame()
	}

	changed := false
	for i, p := range fn.Params() {
		it := c.o.Item(p.Name)
		if it == nil {
			p.Type.Destroy(c.frame.Args[i])
			continue
		}

		cell, ch := it.GetValue(ctx)
		changed = changed || ch
		if !cell.IsValid() || !ctx.conv.ConvertValue(p.Type, c.frame.Args[i], cell.Type, cell.Value) {
			p.Type.Destroy(c.frame.Args[i])
		}
	}
	return changed
}

// shouldCallFunction skips the call under IfUpdatesNeeded when nothing
// changed since the last one.
func (c *call) shouldCallFunction(changed bool) bool {
	if c.o.policy != PolicyIfUpdatesNeeded {
		return true
	}
	return changed || !c.o.flags.has(flagProduced)
}

func (c *call) invoke(fn *types.Function, owner reflect.Value) types.Cell {
	if !fn.Invoke(owner, c.frame) {
		log.Debugf("%s.%s failed", c.class, c.name)
		return types.Empty(fn.Return())
	}
	if fn.Return() == nil {
		return types.Unknown()
	}
	return types.CellOf(fn.Return(), c.frame.Return)
}

func (c *call) release() {
	if c.frame != nil {
		c.frame.Destroy()
		c.frame = nil
		c.fn = nil
	}
}

func (c *call) validate() error {
	if c.function() == nil {
		return errorf(ErrUnresolvedPath, "no function %s on %s", c.name, c.class)
	}
	return nil
}

// FunctionValue calls a function on its target and produces the result.
type FunctionValue struct {
	Object
	call
}

func NewFunctionValue(class *types.Type, function string) *FunctionValue {
	n := &FunctionValue{}
	n.call = call{o: &n.Object, class: class, name: function}
	n.init(n, KindFunctionValue, PolicyAlways)
	return n
}

func (n *FunctionValue) itemSpecs() []ItemSpec {
	return append([]ItemSpec{{Name: SlotTarget, Type: n.class, Optional: true, Self: true}}, n.paramSpecs()...)
}

func (n *FunctionValue) OutputType() *types.Type { return n.returnType() }

func (n *FunctionValue) terminate(*Context) { n.release() }

func (n *FunctionValue) produce(ctx *Context) types.Cell {
	target, changed := n.Item(SlotTarget).GetValue(ctx)

	fn := n.resolve(target.Value)
	if fn == nil {
		log.Debugf("no function %s for target %s", n.name, target.Type)
		return types.Empty(n.returnType())
	}

	changed = n.params(ctx, fn) || changed
	if !n.shouldCallFunction(changed) {
		return n.cached
	}
	return n.invoke(fn, target.Value)
}

// StaticFunctionValue calls a static function of a class on its default
// object.
type StaticFunctionValue struct {
	Object
	call
}

func NewStaticFunctionValue(class *types.Type, function string) *StaticFunctionValue {
	n := &StaticFunctionValue{}
	n.call = call{o: &n.Object, class: class, name: function, static: true}
	n.init(n, KindStaticFunctionValue, PolicyAlways)
	return n
}

func (n *StaticFunctionValue) itemSpecs() []ItemSpec { return n.paramSpecs() }

func (n *StaticFunctionValue) OutputType() *types.Type { return n.returnType() }

func (n *StaticFunctionValue) terminate(*Context) { n.release() }

func (n *StaticFunctionValue) produce(ctx *Context) types.Cell {
	fn := n.function()
	if fn == nil {
		return types.Unknown()
	}

	changed := n.params(ctx, fn)
	if !n.shouldCallFunction(changed) {
		return n.cached
	}
	return n.invoke(fn, n.class.Class().DefaultObject())
}

// DestinationFunction calls a function on its owner with the values of its
// parameter slots.
type DestinationFunction struct {
	Object
	call
}

func NewDestinationFunction(class *types.Type, function string) *DestinationFunction {
	n := &DestinationFunction{}
	n.call = call{o: &n.Object, class: class, name: function}
	n.init(n, KindDestinationFunction, PolicyIfUpdatesNeeded)
	return n
}

func (n *DestinationFunction) itemSpecs() []ItemSpec {
	return append([]ItemSpec{{Name: SlotFunctionOwner, Type: n.class, Optional: true, Self: true}}, n.paramSpecs()...)
}

func (n *DestinationFunction) terminate(*Context) { n.release() }

func (n *DestinationFunction) consume(ctx *Context) {
	owner, changed := n.Item(SlotFunctionOwner).GetValue(ctx)
	if _, ok := types.ObjectValue(owner.Value); !ok {
		log.Debugf("no owner to call %s on", n.name)
		return
	}

	fn := n.resolve(owner.Value)
	if fn == nil {
		log.Debugf("no function %s for owner %s", n.name, owner.Type)
		return
	}

	changed = n.params(ctx, fn) || changed
	if !n.shouldCallFunction(changed) {
		return
	}
	n.invoke(fn, owner.Value)
}
